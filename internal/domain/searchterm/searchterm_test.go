package searchterm

import (
	"strings"
	"testing"
)

func TestNew_Normalizes(t *testing.T) {
	st, err := New("  Funny   CAT  Shirt ", DefaultMaxResults, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if st.Term() != "funny cat shirt" {
		t.Errorf("Term() = %q", st.Term())
	}
	if st.MaxResults() != DefaultMaxResults {
		t.Errorf("MaxResults() = %d, want %d", st.MaxResults(), DefaultMaxResults)
	}
}

func TestNew_Boundaries(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		max     int
		wantErr bool
	}{
		{"three chars with niche token", "tee", 5, false},
		{"two chars", "te", 5, true},
		{"empty", "", 5, true},
		{"whitespace only", "    ", 5, true},
		{"no niche token", "funny cat mug", 5, true},
		{"max length", strings.Repeat("a", MaxLength-5) + "shirt", 5, false},
		{"too long", strings.Repeat("a", MaxLength) + "shirt", 5, true},
		{"max results upper bound", "dad shirt", MaxMaxResults, false},
		{"max results over bound", "dad shirt", MaxMaxResults + 1, true},
		{"max results lower bound", "dad shirt", 1, false},
		{"max results zero", "dad shirt", 0, true},
		{"max results negative", "dad shirt", -1, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.raw, tt.max, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("New(%q) err = %v, wantErr %v", tt.raw, err, tt.wantErr)
			}
		})
	}
}

func TestNew_CustomNicheTerms(t *testing.T) {
	if _, err := New("funny cat mug", 10, []string{"mug"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := New("funny cat shirt", 10, []string{"mug"}); err == nil {
		t.Fatal("expected error for term outside custom allow-list")
	}
}

func TestNormalize(t *testing.T) {
	if got := Normalize("\tGraphic \n TEE  "); got != "graphic tee" {
		t.Errorf("Normalize() = %q", got)
	}
}
