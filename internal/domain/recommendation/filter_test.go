package recommendation

import "testing"

func TestFilter_Apply(t *testing.T) {
	rs := []Recommendation{
		Reconstruct(ProductPage, "Create product pages", 1, 0.9, nil, 0),
		Reconstruct(PPC, "Set up shopping campaigns", 2, 0.75, nil, 0),
		Reconstruct(Content, "Create a guide", 4, 0.85, nil, 0),
	}
	tests := []struct {
		name string
		f    Filter
		want []Tactic
	}{
		{"empty filter keeps all", Filter{}, []Tactic{ProductPage, PPC, Content}},
		{"by tactic", Filter{Tactic: PPC}, []Tactic{PPC}},
		{"min confidence", Filter{MinConfidence: 0.8}, []Tactic{ProductPage, Content}},
		{"max priority", Filter{MaxPriority: 2}, []Tactic{ProductPage, PPC}},
		{"combined", Filter{MinConfidence: 0.8, MaxPriority: 2}, []Tactic{ProductPage}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.f.Apply(rs)
			if len(got) != len(tt.want) {
				t.Fatalf("got %d recommendations, want %d", len(got), len(tt.want))
			}
			for i := range tt.want {
				if got[i].Tactic() != tt.want[i] {
					t.Errorf("got[%d] = %s, want %s", i, got[i].Tactic(), tt.want[i])
				}
			}
		})
	}
}
