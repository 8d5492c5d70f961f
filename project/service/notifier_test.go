package service

import (
	"context"
	"strings"
	"testing"

	"slack-data-bot/project/domain"
)

func TestNotifySuccess(t *testing.T) {
	cp := &fakeSlack{}
	n := NewNotifier(cp)

	n.Notify(context.Background(), "U1", domain.SuccessOutcome("Successfully created new sheet file: 'Budget'", "🔗 <https://example.com|Open in Google Drive>"))

	if len(cp.ephemeralTexts) != 1 {
		t.Fatalf("got %d posts, want 1", len(cp.ephemeralTexts))
	}
	text := cp.ephemeralTexts[0]
	if !strings.HasPrefix(text, "✅ ") {
		t.Errorf("text = %q, want success prefix", text)
	}
	if !strings.Contains(text, "Open in Google Drive") {
		t.Errorf("text = %q, should include details", text)
	}
}

func TestNotifySilentSuccess(t *testing.T) {
	cp := &fakeSlack{}
	n := NewNotifier(cp)

	// メッセージなしの成功（結果が既に投稿済みのタスク）は何も届けない
	n.Notify(context.Background(), "U1", domain.SuccessOutcome("", ""))

	if len(cp.ephemeralTexts) != 0 {
		t.Errorf("got %d posts, want 0", len(cp.ephemeralTexts))
	}
}

func TestNotifyFailureMapping(t *testing.T) {
	cases := []struct {
		kind domain.ErrorKind
		want string
	}{
		{domain.ErrorKindPermissionDenied, "Permission denied"},
		{domain.ErrorKindNotFound, "File not found"},
		{domain.ErrorKindFormatUnsupported, "not supported"},
		{domain.ErrorKindGeneric, "something broke"},
	}

	for _, c := range cases {
		cp := &fakeSlack{}
		n := NewNotifier(cp)

		n.Notify(context.Background(), "U1", domain.FailureOutcome(c.kind, "something broke"))

		if len(cp.ephemeralTexts) != 1 {
			t.Fatalf("kind %q: got %d posts, want 1", c.kind, len(cp.ephemeralTexts))
		}
		text := cp.ephemeralTexts[0]
		if !strings.HasPrefix(text, "❌ ") {
			t.Errorf("kind %q: text = %q, want failure prefix", c.kind, text)
		}
		if !strings.Contains(text, c.want) {
			t.Errorf("kind %q: text = %q, want substring %q", c.kind, text, c.want)
		}
	}
}

func TestTemplateRows(t *testing.T) {
	if rows := TemplateRows("empty"); rows != nil {
		t.Errorf("empty template should have no rows, got %v", rows)
	}
	if rows := TemplateRows("nonsense"); rows != nil {
		t.Errorf("unknown template should have no rows, got %v", rows)
	}

	for _, name := range []string{"task_tracker", "sales_report", "inventory"} {
		rows := TemplateRows(name)
		if len(rows) < 2 {
			t.Errorf("template %q: got %d rows, want header + sample", name, len(rows))
			continue
		}
		if len(rows[0]) != len(rows[1]) {
			t.Errorf("template %q: header and sample row widths differ", name)
		}
	}
}
