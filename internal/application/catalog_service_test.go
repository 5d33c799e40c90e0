package application

import (
	"context"
	"strings"
	"testing"
)

func TestIngredientCacheKeyIsBounded(t *testing.T) {
	tests := []struct {
		prefix string
		key    string
		ok     bool
	}{
		{"", "catalog:ingredients:", true},
		{"o", "catalog:ingredients:o", true},
		{"on", "catalog:ingredients:on", true},
		{"oni", "", false},
		{strings.Repeat("x", 4096), "", false},
		{"1", "", false},
		{"лу", "", false},
		{"a:", "", false},
	}
	for _, tt := range tests {
		key, ok := ingredientCacheKey(tt.prefix)
		if key != tt.key || ok != tt.ok {
			t.Errorf("ingredientCacheKey(%q) = %q, %v; want %q, %v", tt.prefix, key, ok, tt.key, tt.ok)
		}
	}
}

func TestIngredientsUncachedPrefixStillLoads(t *testing.T) {
	f := newFixture(t)
	svc := NewCatalogService(f.store.Catalog, nil, nil)

	got, err := svc.Ingredients(context.Background(), "  ONIO ")
	if err != nil {
		t.Fatalf("Ingredients: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %+v, want both onion units", got)
	}
	for _, v := range got {
		if v.Name != "onion" {
			t.Fatalf("unexpected ingredient %+v", v)
		}
	}
}
