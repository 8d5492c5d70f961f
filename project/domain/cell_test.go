package domain

import (
	"errors"
	"testing"
)

func TestColumnLetter(t *testing.T) {
	cases := []struct {
		index int
		want  string
	}{
		{1, "A"},
		{2, "B"},
		{26, "Z"},
		{27, "AA"},
		{28, "AB"},
		{52, "AZ"},
		{53, "BA"},
		{702, "ZZ"},
		{703, "AAA"},
	}

	for _, c := range cases {
		got, err := ColumnLetter(c.index)
		if err != nil {
			t.Fatalf("ColumnLetter(%d): unexpected error: %v", c.index, err)
		}
		if got != c.want {
			t.Errorf("ColumnLetter(%d) = %q, want %q", c.index, got, c.want)
		}
	}
}

func TestColumnLetterInvalid(t *testing.T) {
	for _, index := range []int{0, -1, -26} {
		if _, err := ColumnLetter(index); !errors.Is(err, ErrInvalid) {
			t.Errorf("ColumnLetter(%d): want ErrInvalid, got %v", index, err)
		}
	}
}

func TestColumnRoundTrip(t *testing.T) {
	for i := 1; i <= 1000; i++ {
		letter, err := ColumnLetter(i)
		if err != nil {
			t.Fatalf("ColumnLetter(%d): %v", i, err)
		}
		back, err := ColumnIndex(letter)
		if err != nil {
			t.Fatalf("ColumnIndex(%q): %v", letter, err)
		}
		if back != i {
			t.Fatalf("round trip mismatch: %d -> %q -> %d", i, letter, back)
		}
	}
}

func TestNormalizeColumn(t *testing.T) {
	cases := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{"1", "A", false},
		{"26", "Z", false},
		{"27", "AA", false},
		{"a", "A", false},
		{" b ", "B", false},
		{"AA", "AA", false},
		{"", "", true},
		{"0", "", true},
		{"-3", "", true},
		{"A1", "", true},
		{"1.5", "", true},
	}

	for _, c := range cases {
		got, err := NormalizeColumn(c.input)
		if c.wantErr {
			if !errors.Is(err, ErrInvalid) {
				t.Errorf("NormalizeColumn(%q): want ErrInvalid, got %v", c.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("NormalizeColumn(%q): unexpected error: %v", c.input, err)
			continue
		}
		if got != c.want {
			t.Errorf("NormalizeColumn(%q) = %q, want %q", c.input, got, c.want)
		}
	}
}

func TestParseRow(t *testing.T) {
	valid := map[string]int{"1": 1, " 2 ": 2, "500": 500}
	for input, want := range valid {
		got, err := ParseRow(input)
		if err != nil {
			t.Errorf("ParseRow(%q): unexpected error: %v", input, err)
			continue
		}
		if got != want {
			t.Errorf("ParseRow(%q) = %d, want %d", input, got, want)
		}
	}

	for _, input := range []string{"", "0", "-1", "abc", "1.5"} {
		if _, err := ParseRow(input); !errors.Is(err, ErrInvalid) {
			t.Errorf("ParseRow(%q): want ErrInvalid, got %v", input, err)
		}
	}
}

func TestParseCellRef(t *testing.T) {
	row, col, err := ParseCellRef("aa10")
	if err != nil {
		t.Fatalf("ParseCellRef(aa10): %v", err)
	}
	if row != 10 || col != "AA" {
		t.Errorf("ParseCellRef(aa10) = (%d, %q), want (10, AA)", row, col)
	}

	for _, ref := range []string{"", "A", "10", "A0", "1A"} {
		if _, _, err := ParseCellRef(ref); !errors.Is(err, ErrInvalid) {
			t.Errorf("ParseCellRef(%q): want ErrInvalid, got %v", ref, err)
		}
	}
}

func TestValidateRange(t *testing.T) {
	for _, r := range []string{"A1:Z10", "a1:b2", " B2:C3 "} {
		if err := ValidateRange(r); err != nil {
			t.Errorf("ValidateRange(%q): unexpected error: %v", r, err)
		}
	}

	for _, r := range []string{"", "A1", "A1:B2:C3", "A0:B2", ":B2"} {
		if err := ValidateRange(r); !errors.Is(err, ErrInvalid) {
			t.Errorf("ValidateRange(%q): want ErrInvalid, got %v", r, err)
		}
	}
}
