package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDescriptorRoundTrip(t *testing.T) {
	refs := []ResourceRef{
		{Kind: KindSheet, ID: "sheet123"},
		{Kind: KindExcel, ID: "file-abc"},
		{Kind: KindCSV, ID: "file_xyz"},
	}

	for _, ref := range refs {
		encoded, err := ref.EncodeDescriptor()
		if err != nil {
			t.Fatalf("EncodeDescriptor(%+v): %v", ref, err)
		}

		decoded, err := DecodeDescriptor(encoded)
		if err != nil {
			t.Fatalf("DecodeDescriptor(%q): %v", encoded, err)
		}

		if diff := cmp.Diff(ref, decoded); diff != "" {
			t.Errorf("descriptor round trip mismatch (-want +got):\n%s", diff)
		}
	}
}

func TestDecodeDescriptorLegacy(t *testing.T) {
	// 旧UIは source を省略してシート扱いにしていた
	ref, err := DecodeDescriptor(`{"source": "", "params": {"sheet_id": "legacy1"}}`)
	if err != nil {
		t.Fatalf("DecodeDescriptor: %v", err)
	}
	if ref.Kind != KindSheet || ref.ID != "legacy1" {
		t.Errorf("got %+v, want {sheet legacy1}", ref)
	}
}

func TestDecodeDescriptorInvalid(t *testing.T) {
	cases := []string{
		"",
		"not json",
		`{"source": "sheet", "params": {}}`,
		`{"source": "unknown", "params": {"file_id": "x"}}`,
		`{"source": "excel", "params": {"sheet_id": "x"}}`,
	}

	for _, c := range cases {
		if _, err := DecodeDescriptor(c); !errors.Is(err, ErrInvalid) {
			t.Errorf("DecodeDescriptor(%q): want ErrInvalid, got %v", c, err)
		}
	}
}

func TestClassifyRemoteError(t *testing.T) {
	cases := []struct {
		err  error
		want ErrorKind
	}{
		{nil, ErrorKindGeneric},
		{fmt.Errorf("wrap: %w", ErrPermissionDenied), ErrorKindPermissionDenied},
		{fmt.Errorf("wrap: %w", ErrNotFound), ErrorKindNotFound},
		{fmt.Errorf("wrap: %w", ErrUnsupportedFormat), ErrorKindFormatUnsupported},
		{errors.New("googleapi: Error 403: The caller does not have permission"), ErrorKindPermissionDenied},
		{errors.New("googleapi: Error 404: File not found"), ErrorKindNotFound},
		{errors.New("unable to read the workbook"), ErrorKindFormatUnsupported},
		{errors.New("connection reset by peer"), ErrorKindGeneric},
	}

	for _, c := range cases {
		if got := ClassifyRemoteError(c.err); got != c.want {
			t.Errorf("ClassifyRemoteError(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}

func TestResourceKindValid(t *testing.T) {
	for _, k := range []ResourceKind{KindSheet, KindExcel, KindCSV} {
		if !k.Valid() {
			t.Errorf("%q should be valid", k)
		}
	}
	if ResourceKind("pdf").Valid() {
		t.Error("pdf should not be valid")
	}
}

func TestAuditEventValidate(t *testing.T) {
	ok := AuditEvent{UserID: "U1", Action: "auth_denied", CreatedAt: 1700000000}
	if err := ok.Validate(); err != nil {
		t.Errorf("Validate: unexpected error: %v", err)
	}

	for _, e := range []AuditEvent{
		{UserID: "U1", CreatedAt: 1700000000},
		{UserID: "U1", Action: "x"},
	} {
		if err := e.Validate(); !errors.Is(err, ErrInvalid) {
			t.Errorf("Validate(%+v): want ErrInvalid, got %v", e, err)
		}
	}
}
