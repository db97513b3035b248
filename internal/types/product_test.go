package types

import "testing"

func TestNewProductTruncatesLists(t *testing.T) {
	p := NewProduct(ProductFields{
		ID:       "B0TEST0001",
		Title:    "Test",
		Features: []string{"a", "b", "c", "d", "e", "f", "g"},
		Variants: []string{"1", "2", "3", "4", "5", "6", "7", "8"},
	})

	if len(p.Features) != MaxFeatures {
		t.Errorf("expected %d features, got %d", MaxFeatures, len(p.Features))
	}
	if len(p.Variants) != MaxVariants {
		t.Errorf("expected %d variants, got %d", MaxVariants, len(p.Variants))
	}
}

func TestNewProductDropsOutOfRangeValues(t *testing.T) {
	p := NewProduct(ProductFields{
		Title:   "Test",
		Price:   Int(-1),
		Rating:  Float(7.5),
		Reviews: Int(-3),
	})

	if p.Price != nil {
		t.Errorf("negative price should be dropped, got %d", *p.Price)
	}
	if p.Rating != nil {
		t.Errorf("rating outside [0,5] should be dropped, got %v", *p.Rating)
	}
	if p.Reviews != nil {
		t.Errorf("negative reviews should be dropped, got %d", *p.Reviews)
	}
}

func TestNewProductCopiesInputs(t *testing.T) {
	price := 100
	features := []string{"one"}
	p := NewProduct(ProductFields{Title: "Test", Price: &price, Features: features})

	price = 5
	features[0] = "changed"

	if *p.Price != 100 {
		t.Errorf("price should be copied, got %d", *p.Price)
	}
	if p.Features[0] != "one" {
		t.Errorf("features should be copied, got %q", p.Features[0])
	}
}

func TestUsable(t *testing.T) {
	tests := []struct {
		name string
		in   ProductFields
		want bool
	}{
		{"title only", ProductFields{Title: "x"}, true},
		{"price only", ProductFields{Price: Int(10)}, true},
		{"rating only", ProductFields{Rating: Float(4)}, true},
		{"brand only", ProductFields{Brand: "Sony"}, false},
		{"empty", ProductFields{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewProduct(tt.in).Usable(); got != tt.want {
				t.Errorf("Usable() = %v, want %v", got, tt.want)
			}
		})
	}
}
