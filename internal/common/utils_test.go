package common

import (
	"path/filepath"
	"reflect"
	"testing"

	"github.com/dtnitsch/llm-pdf-parser/models"
)

func TestSafeStem(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"rates.pdf", "rates"},
		{"/tmp/My Rates (2025).pdf", "My_Rates_2025"},
		{"dir/offer.v2.md", "offer.v2"},
		{"   ", "document"},
		{"___.json", "document"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := SafeStem(tt.in); got != tt.want {
				t.Errorf("SafeStem(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestOutputPath(t *testing.T) {
	got := OutputPath("out", SafeStem("docs/Resort Rates.pdf"), "json")
	want := filepath.Join("out", "Resort_Rates_extracted.json")
	if got != want {
		t.Errorf("OutputPath() = %q, want %q", got, want)
	}
}

func TestOutputStems(t *testing.T) {
	tests := []struct {
		name   string
		inputs []string
		want   map[string]string
	}{
		{
			name:   "distinct stems unchanged",
			inputs: []string{"rates.md", "offers.pdf"},
			want:   map[string]string{"rates.md": "rates", "offers.pdf": "offers"},
		},
		{
			name:   "same stem different extension",
			inputs: []string{"rates.md", "rates.txt"},
			want:   map[string]string{"rates.md": "rates_md", "rates.txt": "rates_txt"},
		},
		{
			name:   "same name different directory",
			inputs: []string{"a/rates.pdf", "b/rates.pdf", "c/Rates.PDF"},
			want:   map[string]string{"a/rates.pdf": "rates_pdf", "b/rates.pdf": "rates_pdf-2", "c/Rates.PDF": "Rates_pdf-3"},
		},
		{
			name:   "derived name clashes with a real stem",
			inputs: []string{"rates_md.json", "rates.md", "rates.txt"},
			want:   map[string]string{"rates_md.json": "rates_md", "rates.md": "rates_md-2", "rates.txt": "rates_txt"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := OutputStems(tt.inputs); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("OutputStems() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSettingsHash(t *testing.T) {
	gap := 3
	base := SettingsHash(models.Rules{}, false, 0)
	if base != SettingsHash(models.Rules{}, false, 0) {
		t.Error("SettingsHash() is not deterministic")
	}
	for name, other := range map[string]string{
		"rules":       SettingsHash(models.Rules{PageGap: &gap}, false, 0),
		"readability": SettingsHash(models.Rules{}, true, 0),
		"max pages":   SettingsHash(models.Rules{}, false, 5),
	} {
		if other == base {
			t.Errorf("SettingsHash() ignores %s", name)
		}
	}
}

func TestDedupeInputs(t *testing.T) {
	got := DedupeInputs([]string{"a.pdf", " ", "./a.pdf", "b.md", "a.pdf"})
	if len(got) != 2 || got[0] != "a.pdf" || got[1] != "b.md" {
		t.Errorf("DedupeInputs() = %v", got)
	}
}

func TestContentHash(t *testing.T) {
	// sha256("abc")
	want := "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad"
	if got := ContentHash([]byte("abc")); got != want {
		t.Errorf("ContentHash() = %s, want %s", got, want)
	}
}

func TestFilterResultFields(t *testing.T) {
	resp := models.NewErrorResponse(nil)

	all := FilterResultFields(resp, "", false)
	if _, ok := all["success"]; !ok {
		t.Errorf("unfiltered map missing success: %v", all)
	}

	got := FilterResultFields(resp, "error", false)
	if len(got) != 1 || got["error"] != "unknown error" {
		t.Errorf("FilterResultFields(error) = %v", got)
	}

	terse := TerseKeys(FilterResultFields(resp, "success, error", false))
	if terse["ok"] != false || terse["e"] != "unknown error" {
		t.Errorf("TerseKeys() = %v", terse)
	}

	// Terse mode accepts verbose names.
	got = FilterResultFields(TerseKeys(structToMap(resp)), "error", true)
	if got["e"] != "unknown error" {
		t.Errorf("FilterResultFields(terse) = %v", got)
	}
}
