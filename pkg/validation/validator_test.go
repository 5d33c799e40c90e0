package validation

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/go-playground/validator/v10"
)

type signup struct {
	Email    string `json:"email" validate:"required,email"`
	Username string `json:"username" validate:"required,max=150,username"`
	Password string `json:"password" validate:"required,pwd"`
}

type ingredientIn struct {
	ID     int64 `json:"id" validate:"required"`
	Amount int   `json:"amount" validate:"min=1,max=10000"`
}

type recipeIn struct {
	Ingredients []ingredientIn `json:"ingredients" validate:"required,min=1,dive"`
	Tags        []int64        `json:"tags" validate:"required,min=1,unique"`
}

func newValidator() *validator.Validate {
	v := validator.New()
	register(v)
	return v
}

func TestValidUsername(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"ann", true},
		{"ann.lee+1@x-y_z", true},
		{"me", false},
		{"ME", false},
		{"ann lee", false},
		{"", false},
		{"анна", true},
	}
	for _, tt := range tests {
		if got := ValidUsername(tt.in); got != tt.want {
			t.Errorf("ValidUsername(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestToDetails(t *testing.T) {
	v := newValidator()
	tests := []struct {
		name string
		in   any
		want map[string]string
	}{
		{
			name: "signup",
			in:   signup{Email: "nope", Username: "me", Password: "short"},
			want: map[string]string{
				"email":    "must be a valid email",
				"username": "may contain only letters, digits and @/./+/-/_ and must not be \"me\"",
				"password": "must be between 8 and 72 characters long",
			},
		},
		{
			name: "nested amounts",
			in: recipeIn{
				Ingredients: []ingredientIn{{ID: 1, Amount: 0}, {ID: 2, Amount: 10001}},
				Tags:        []int64{1, 1},
			},
			want: map[string]string{
				"ingredients[0].amount": "must be at least 1",
				"ingredients[1].amount": "must be at most 10000",
				"tags":                  "must contain unique items",
			},
		},
		{
			name: "empty ingredients",
			in:   recipeIn{Ingredients: []ingredientIn{}, Tags: []int64{1}},
			want: map[string]string{"ingredients": "must contain at least 1 items"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDetails(v.Struct(tt.in))
			if !reflect.DeepEqual(got, tt.want) {
				t.Fatalf("ToDetails = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestToDetailsJSONErrors(t *testing.T) {
	var dst struct {
		CookingTime int `json:"cooking_time"`
	}
	err := json.Unmarshal([]byte(`{"cooking_time":"ten"}`), &dst)
	got := ToDetails(err)
	if got["cooking_time"] != "must be of type int" {
		t.Fatalf("ToDetails = %v", got)
	}
	err = json.Unmarshal([]byte(`{`), &dst)
	if got := ToDetails(err); got["payload"] == "" {
		t.Fatalf("ToDetails = %v", got)
	}
	if ToDetails(nil) != nil {
		t.Fatal("nil error should yield nil details")
	}
}
