package reciperepo

import "errors"

var (
	ErrNotFound = errors.New("recipe not found")
	// ErrUnknownEntity is returned when a referenced tag or ingredient
	// id does not resolve to an existing row.
	ErrUnknownEntity = errors.New("unknown related entity")
)

// Filter narrows an owner-scoped listing. Empty slices mean no
// restriction; both filters are conjunctive when supplied.
type Filter struct {
	TagIDs        []int64
	IngredientIDs []int64
}

// RecipeUpdate carries a partial mutation: nil fields are left
// untouched, non-nil relation sets replace the stored set wholesale.
type RecipeUpdate struct {
	Title       *string
	TimeMinutes *int
	Price       *float64
	Link        *string
	TagIDs      *[]int64
	IngredIDs   *[]int64
}
