package keyword

import "testing"

func TestNew_Valid(t *testing.T) {
	k, err := New(" graphic tee ", 0.8, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if k.Text() != "graphic tee" {
		t.Errorf("Text() = %q", k.Text())
	}
	if k.Relevance() != 0.8 || k.Frequency() != 3 {
		t.Errorf("got relevance=%v frequency=%d", k.Relevance(), k.Frequency())
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name string
		text string
		rel  float64
		freq int
	}{
		{"empty text", "  ", 0.5, 1},
		{"relevance above one", "tee", 1.01, 1},
		{"negative relevance", "tee", -0.1, 1},
		{"negative frequency", "tee", 0.5, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := New(tt.text, tt.rel, tt.freq); err == nil {
				t.Error("expected error")
			}
		})
	}
}

func TestTexts(t *testing.T) {
	got := Texts([]Keyword{Reconstruct("a", 1, 1), Reconstruct("b", 0.5, 1)})
	if len(got) != 2 || got[0] != "a" || got[1] != "b" {
		t.Errorf("Texts() = %v", got)
	}
}
