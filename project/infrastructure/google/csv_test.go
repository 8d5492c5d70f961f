package google

import (
	"errors"
	"testing"

	"slack-data-bot/project/domain"

	"github.com/google/go-cmp/cmp"
)

func TestParseCSV(t *testing.T) {
	rows, err := parseCSV([]byte("name,qty\napple,3\nbanana,5\n"))
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}

	want := [][]string{{"name", "qty"}, {"apple", "3"}, {"banana", "5"}}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Errorf("rows mismatch (-want +got):\n%s", diff)
	}
}

func TestParseCSVRaggedRows(t *testing.T) {
	// 行ごとの列数の揺れは許容する
	rows, err := parseCSV([]byte("a,b,c\nd\ne,f\n"))
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	if len(rows) != 3 || len(rows[1]) != 1 {
		t.Errorf("rows = %v", rows)
	}
}

func TestParseCSVInvalid(t *testing.T) {
	if _, err := parseCSV([]byte("a,\"unterminated\n")); !errors.Is(err, domain.ErrUnsupportedFormat) {
		t.Errorf("want ErrUnsupportedFormat, got %v", err)
	}
}

func TestEncodeCSVRoundTrip(t *testing.T) {
	want := [][]string{{"Task", "Status"}, {"write, test", "done"}, {"", ""}}

	encoded, err := encodeCSV(want)
	if err != nil {
		t.Fatalf("encodeCSV: %v", err)
	}

	got, err := parseCSV(encoded)
	if err != nil {
		t.Fatalf("parseCSV: %v", err)
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestMimeFor(t *testing.T) {
	if got := mimeFor(domain.KindSheet); got != mimeSpreadsheet {
		t.Errorf("sheet mime = %q", got)
	}
	if got := mimeFor(domain.KindExcel); got != mimeExcel {
		t.Errorf("excel mime = %q", got)
	}
	if got := mimeFor(domain.KindCSV); got != mimeCSV {
		t.Errorf("csv mime = %q", got)
	}
}

func TestWrapErr(t *testing.T) {
	if wrapErr("op", nil) != nil {
		t.Error("wrapErr(nil) should be nil")
	}

	err := wrapErr("op", errors.New("boom"))
	if err == nil || domain.ClassifyRemoteError(err) != domain.ErrorKindGeneric {
		t.Errorf("generic error misclassified: %v", err)
	}
}
