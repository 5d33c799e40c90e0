package entity

// Ingredient is unique on the (Name, MeasurementUnit) pair.
type Ingredient struct {
	ID              int64
	Name            string
	MeasurementUnit string
}

// Tag has a globally unique name, color and slug.
type Tag struct {
	ID    int64
	Name  string
	Color string
	Slug  string
}
