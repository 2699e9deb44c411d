package feature

import "testing"

func TestNew_RequiredData(t *testing.T) {
	tests := []struct {
		name    string
		typ     Type
		data    map[string]any
		wantErr bool
	}{
		{"snippet with content", FeaturedSnippet, map[string]any{"content": "x"}, false},
		{"snippet without content", FeaturedSnippet, map[string]any{}, true},
		{"shopping without products", ShoppingAds, nil, true},
		{"shopping with products", ShoppingAds, map[string]any{"products": 3}, false},
		{"image pack without images", ImagePack, map[string]any{"foo": 1}, true},
		{"sitelinks without data", Sitelinks, nil, false},
		{"unknown type", Type("banner"), nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.typ, nil, tt.data)
			if (err != nil) != tt.wantErr {
				t.Errorf("err = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestNew_NegativePosition(t *testing.T) {
	if _, err := New(Reviews, Pos(-1), nil); err == nil {
		t.Fatal("expected error for negative position")
	}
}

func TestNew_ClonesInputs(t *testing.T) {
	p := 2
	data := map[string]any{"images": 4}
	f, err := New(ImagePack, &p, data)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	p = 9
	data["images"] = 100
	if *f.Position() != 2 {
		t.Errorf("Position() = %d, want 2", *f.Position())
	}
	if f.Data()["images"] != 4 {
		t.Errorf("Data() = %v", f.Data())
	}
}

func TestSort_PositionedFirst(t *testing.T) {
	fs := []Feature{
		Reconstruct(ImagePack, nil, nil),
		Reconstruct(ShoppingAds, Pos(3), nil),
		Reconstruct(Reviews, nil, nil),
		Reconstruct(FeaturedSnippet, Pos(0), nil),
	}
	Sort(fs)

	want := []Type{FeaturedSnippet, ShoppingAds, ImagePack, Reviews}
	for i, f := range fs {
		if f.Type() != want[i] {
			t.Errorf("fs[%d] = %s, want %s", i, f.Type(), want[i])
		}
	}
}

func TestHas(t *testing.T) {
	fs := []Feature{Reconstruct(Sitelinks, nil, nil)}
	if !Has(fs, Sitelinks) {
		t.Error("Has(sitelinks) = false")
	}
	if Has(fs, ImagePack) {
		t.Error("Has(image_pack) = true")
	}
}
