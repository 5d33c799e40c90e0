package entity

import (
	"reflect"
	"testing"
)

func TestBuildShoppingList(t *testing.T) {
	tests := []struct {
		name string
		rows []ShoppingItem
		want []ShoppingItem
	}{
		{
			name: "empty cart",
			rows: nil,
			want: []ShoppingItem{},
		},
		{
			name: "shared ingredient sums across recipes",
			rows: []ShoppingItem{
				{Name: "onion", MeasurementUnit: "g", Amount: 100},
				{Name: "onion", MeasurementUnit: "g", Amount: 50},
				{Name: "salt", MeasurementUnit: "g", Amount: 5},
			},
			want: []ShoppingItem{
				{Name: "onion", MeasurementUnit: "g", Amount: 150},
				{Name: "salt", MeasurementUnit: "g", Amount: 5},
			},
		},
		{
			name: "same name different unit is not merged",
			rows: []ShoppingItem{
				{Name: "milk", MeasurementUnit: "ml", Amount: 200},
				{Name: "milk", MeasurementUnit: "cup", Amount: 1},
				{Name: "milk", MeasurementUnit: "ml", Amount: 300},
			},
			want: []ShoppingItem{
				{Name: "milk", MeasurementUnit: "ml", Amount: 500},
				{Name: "milk", MeasurementUnit: "cup", Amount: 1},
			},
		},
		{
			name: "first occurrence order is kept",
			rows: []ShoppingItem{
				{Name: "sugar", MeasurementUnit: "g", Amount: 10},
				{Name: "egg", MeasurementUnit: "pcs", Amount: 2},
				{Name: "sugar", MeasurementUnit: "g", Amount: 15},
			},
			want: []ShoppingItem{
				{Name: "sugar", MeasurementUnit: "g", Amount: 25},
				{Name: "egg", MeasurementUnit: "pcs", Amount: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := BuildShoppingList(tt.rows)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("BuildShoppingList() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildShoppingListDoesNotMutateInput(t *testing.T) {
	rows := []ShoppingItem{
		{Name: "onion", MeasurementUnit: "g", Amount: 100},
		{Name: "onion", MeasurementUnit: "g", Amount: 50},
	}
	_ = BuildShoppingList(rows)
	if rows[0].Amount != 100 || rows[1].Amount != 50 {
		t.Fatalf("input rows changed: %v", rows)
	}
}

func TestRenderShoppingList(t *testing.T) {
	got := RenderShoppingList([]ShoppingItem{
		{Name: "onion", MeasurementUnit: "g", Amount: 150},
		{Name: "salt", MeasurementUnit: "g", Amount: 5},
	})
	want := "Shopping list\nonion - 150 g\nsalt - 5 g\n"
	if got != want {
		t.Errorf("RenderShoppingList() = %q, want %q", got, want)
	}

	if empty := RenderShoppingList(nil); empty != "Shopping list\n" {
		t.Errorf("RenderShoppingList(nil) = %q", empty)
	}
}
