package focus

import (
	"strings"
	"testing"
)

func TestExport(t *testing.T) {
	s, err := Decode([]byte(sampleRecord))
	if err != nil {
		t.Fatal(err)
	}

	t.Run("json", func(t *testing.T) {
		out, err := Export(s, FormatJSON)
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		if !strings.HasPrefix(string(out), "{\n") {
			t.Errorf("unexpected json export:\n%s", out)
		}
	})

	t.Run("yaml keeps order", func(t *testing.T) {
		out, err := Export(s, FormatYAML)
		if err != nil {
			t.Fatalf("Export() error = %v", err)
		}
		text := string(out)
		if !strings.Contains(text, "key_decisions:\n  zeta: first in file\n") {
			t.Errorf("decisions not in block style or out of order:\n%s", text)
		}
		if strings.Index(text, "zeta:") > strings.Index(text, "alpha:") {
			t.Error("decision order not preserved")
		}
		if !strings.Contains(text, "- c\n") {
			t.Errorf("next tasks not rendered as a block sequence:\n%s", text)
		}
		if strings.Contains(text, "{") {
			t.Errorf("flow style leaked into yaml:\n%s", text)
		}
	})

	t.Run("unknown format", func(t *testing.T) {
		if _, err := Export(s, "toml"); err == nil {
			t.Error("expected error for unsupported format")
		}
	})
}
