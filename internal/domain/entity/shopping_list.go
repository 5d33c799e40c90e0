package entity

import (
	"fmt"
	"strings"
)

// ShoppingListTitle is the first line of the rendered shopping list.
const ShoppingListTitle = "Shopping list"

// ShoppingItem is the total amount of one ingredient across a cart.
type ShoppingItem struct {
	Name            string
	MeasurementUnit string
	Amount          int
}

type shoppingKey struct {
	name string
	unit string
}

// BuildShoppingList sums amounts of rows that share the same name and
// measurement unit. Rows with the same name but different units stay
// separate. The result keeps the order in which each pair first appears.
func BuildShoppingList(rows []ShoppingItem) []ShoppingItem {
	out := make([]ShoppingItem, 0, len(rows))
	index := make(map[shoppingKey]int, len(rows))
	for _, row := range rows {
		k := shoppingKey{name: row.Name, unit: row.MeasurementUnit}
		if i, ok := index[k]; ok {
			out[i].Amount += row.Amount
			continue
		}
		index[k] = len(out)
		out = append(out, row)
	}
	return out
}

// RenderShoppingList renders a title line followed by one
// "<name> - <amount> <unit>" line per item.
func RenderShoppingList(items []ShoppingItem) string {
	var b strings.Builder
	b.WriteString(ShoppingListTitle)
	for _, it := range items {
		b.WriteByte('\n')
		fmt.Fprintf(&b, "%s - %d %s", it.Name, it.Amount, it.MeasurementUnit)
	}
	b.WriteByte('\n')
	return b.String()
}
