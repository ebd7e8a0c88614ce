package export_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/comboworks-ops/webprinter-platform-sub007/internal/export"
)

func TestParseMode(t *testing.T) {
	for _, m := range export.Modes {
		got, err := export.ParseMode(m.String())
		if err != nil {
			t.Fatalf("ParseMode(%q) error = %v", m, err)
		}
		if got != m {
			t.Errorf("ParseMode(%q) = %v", m, got)
		}
	}

	for _, in := range []string{"", "pdf", "PRINT_PDF", "mode(1)"} {
		if _, err := export.ParseMode(in); !errors.Is(err, export.ErrUnsupportedMode) {
			t.Errorf("ParseMode(%q) err = %v, want ErrUnsupportedMode", in, err)
		}
	}
}

func TestModeString(t *testing.T) {
	if got := export.ModeVector.String(); got != "vector_pdf" {
		t.Errorf("String() = %q, want vector_pdf", got)
	}
	if got := export.Mode(42).String(); got != "mode(42)" {
		t.Errorf("String() = %q, want mode(42)", got)
	}
}

func TestModeJSON(t *testing.T) {
	var opts export.Options
	if err := json.Unmarshal([]byte(`{"mode":"proof_pdf","include_bleed":true}`), &opts); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}
	if opts.Mode != export.ModeProof || !opts.IncludeBleed {
		t.Errorf("opts = %+v", opts)
	}

	if err := json.Unmarshal([]byte(`{"mode":"svg"}`), &opts); !errors.Is(err, export.ErrUnsupportedMode) {
		t.Errorf("err = %v, want ErrUnsupportedMode", err)
	}

	if _, err := json.Marshal(export.Options{}); !errors.Is(err, export.ErrUnsupportedMode) {
		t.Errorf("marshal zero mode err = %v, want ErrUnsupportedMode", err)
	}
}
