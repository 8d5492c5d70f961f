package slack

import (
	"testing"

	"slack-data-bot/project/domain"

	"github.com/slack-go/slack"
)

func TestMainMenuBlocks(t *testing.T) {
	blocks := MainMenuBlocks("Welcome!")
	if len(blocks) == 0 {
		t.Fatal("menu should have blocks")
	}

	// 6つのメニューボタンがすべて揃っている
	want := map[string]bool{
		"list_sheets_menu":  false,
		"create_sheet_menu": false,
		"list_excel_menu":   false,
		"create_excel_menu": false,
		"list_csv_menu":     false,
		"create_csv_menu":   false,
	}
	for _, b := range blocks {
		section, ok := b.(*slack.SectionBlock)
		if !ok || section.Accessory == nil || section.Accessory.ButtonElement == nil {
			continue
		}
		want[section.Accessory.ButtonElement.ActionID] = true
	}
	for actionID, found := range want {
		if !found {
			t.Errorf("menu button %q missing", actionID)
		}
	}
}

func TestBuildResourceListBlocks(t *testing.T) {
	items := []domain.ResourceInfo{
		{ID: "s1", Name: "Budget", Modified: "2026-08-20T10:00:00Z", URL: "https://example.com/s1"},
		{ID: "s2", Name: "Plan", Modified: "2026-08-21T09:00:00Z"},
	}

	blocks := BuildResourceListBlocks(domain.KindSheet, items)

	var buttons []*slack.ButtonBlockElement
	for _, b := range blocks {
		if section, ok := b.(*slack.SectionBlock); ok && section.Accessory != nil && section.Accessory.ButtonElement != nil {
			buttons = append(buttons, section.Accessory.ButtonElement)
		}
	}
	if len(buttons) != 2 {
		t.Fatalf("got %d buttons, want 2", len(buttons))
	}

	// action_id にリソースIDが埋め込まれ、value でも運ばれる
	if buttons[0].ActionID != "get_data_sheet_s1" || buttons[0].Value != "s1" {
		t.Errorf("button = (%q, %q)", buttons[0].ActionID, buttons[0].Value)
	}
}

func TestBuildDataBlocks(t *testing.T) {
	ref := domain.ResourceRef{Kind: domain.KindExcel, ID: "f1"}
	rows := [][]string{{"Name", "Qty"}, {"Apple", "3"}}

	blocks, err := BuildDataBlocks(ref, rows)
	if err != nil {
		t.Fatalf("BuildDataBlocks: %v", err)
	}

	var actions *slack.ActionBlock
	for _, b := range blocks {
		if ab, ok := b.(*slack.ActionBlock); ok {
			actions = ab
		}
	}
	if actions == nil {
		t.Fatal("actions block missing")
	}
	if len(actions.Elements.ElementSet) != 2 {
		t.Fatalf("got %d action elements, want 2", len(actions.Elements.ElementSet))
	}

	// Refresh / Update Cell の value はどちらも記述子 JSON
	descriptor, err := ref.EncodeDescriptor()
	if err != nil {
		t.Fatalf("EncodeDescriptor: %v", err)
	}
	for _, el := range actions.Elements.ElementSet {
		button, ok := el.(*slack.ButtonBlockElement)
		if !ok {
			t.Fatalf("unexpected element type %T", el)
		}
		if button.Value != descriptor {
			t.Errorf("button %q value = %q, want descriptor", button.ActionID, button.Value)
		}

		decoded, err := domain.DecodeDescriptor(button.Value)
		if err != nil {
			t.Errorf("button %q: descriptor does not round trip: %v", button.ActionID, err)
		} else if decoded != ref {
			t.Errorf("button %q: decoded = %+v, want %+v", button.ActionID, decoded, ref)
		}
	}
}

func TestBuildDataBlocksTruncation(t *testing.T) {
	ref := domain.ResourceRef{Kind: domain.KindSheet, ID: "s1"}
	rows := [][]string{{"header"}}
	for i := 0; i < 30; i++ {
		rows = append(rows, []string{"row"})
	}

	blocks, err := BuildDataBlocks(ref, rows)
	if err != nil {
		t.Fatalf("BuildDataBlocks: %v", err)
	}

	// Slack の50ブロック上限に収まる
	if len(blocks) > 50 {
		t.Errorf("got %d blocks, must stay under Slack's 50 block limit", len(blocks))
	}
}

func TestBuildCreateModal(t *testing.T) {
	cases := []struct {
		kind       domain.ResourceKind
		callbackID string
	}{
		{domain.KindSheet, "create_sheet_modal"},
		{domain.KindExcel, "create_excel_modal"},
		{domain.KindCSV, "create_csv_modal"},
	}

	for _, c := range cases {
		view := BuildCreateModal(c.kind)
		if view.CallbackID != c.callbackID {
			t.Errorf("kind %q: callback_id = %q, want %q", c.kind, view.CallbackID, c.callbackID)
		}
		if len(view.Blocks.BlockSet) != 2 {
			t.Errorf("kind %q: got %d blocks, want title + template", c.kind, len(view.Blocks.BlockSet))
		}

		title, ok := view.Blocks.BlockSet[0].(*slack.InputBlock)
		if !ok || title.BlockID != "title_block" {
			t.Errorf("kind %q: first block should be title_block", c.kind)
		}
		template, ok := view.Blocks.BlockSet[1].(*slack.InputBlock)
		if !ok || template.BlockID != "template_block" {
			t.Errorf("kind %q: second block should be template_block", c.kind)
			continue
		}
		if !template.Optional {
			t.Errorf("kind %q: template should be optional", c.kind)
		}
	}
}

func TestBuildUpdateModal(t *testing.T) {
	ref := domain.ResourceRef{Kind: domain.KindCSV, ID: "c1"}

	view, err := BuildUpdateModal(ref)
	if err != nil {
		t.Fatalf("BuildUpdateModal: %v", err)
	}

	if view.CallbackID != "write_data_modal" {
		t.Errorf("callback_id = %q", view.CallbackID)
	}

	// private_metadata の記述子から宛先を復元できる
	decoded, err := domain.DecodeDescriptor(view.PrivateMetadata)
	if err != nil {
		t.Fatalf("DecodeDescriptor: %v", err)
	}
	if decoded != ref {
		t.Errorf("decoded = %+v, want %+v", decoded, ref)
	}

	wantBlocks := []string{"row_block", "col_block", "value_block"}
	if len(view.Blocks.BlockSet) != len(wantBlocks) {
		t.Fatalf("got %d blocks, want %d", len(view.Blocks.BlockSet), len(wantBlocks))
	}
	for i, want := range wantBlocks {
		input, ok := view.Blocks.BlockSet[i].(*slack.InputBlock)
		if !ok || input.BlockID != want {
			t.Errorf("block %d: want input block %q", i, want)
		}
	}

	if _, err := BuildUpdateModal(domain.ResourceRef{}); err == nil {
		t.Error("invalid ref should fail")
	}
}
