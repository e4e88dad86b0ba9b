package recipeservice

import (
	"strconv"
	"strings"
)

type ListRecipesRequest struct {
	// Tags and Ingredients are comma-separated id lists taken from the
	// query string; empty means no filter.
	Tags        string
	Ingredients string
}

type CreateRecipeRequest struct {
	Title       string  `json:"title"`
	TimeMinutes int     `json:"time_minutes"` //nolint:tagliatelle
	Price       float64 `json:"price"`
	Link        string  `json:"link"`
	Tags        []int64 `json:"tags"`
	Ingredients []int64 `json:"ingredients"`
}

// UpdateRecipeRequest carries patch semantics: nil means "leave as is".
// For a full update the handler requires the scalar fields and swaps
// nil relation sets for empty ones before calling the service.
type UpdateRecipeRequest struct {
	Title       *string  `json:"title"`
	TimeMinutes *int     `json:"time_minutes"` //nolint:tagliatelle
	Price       *float64 `json:"price"`
	Link        *string  `json:"link"`
	Tags        *[]int64 `json:"tags"`
	Ingredients *[]int64 `json:"ingredients"`
}

// Complete reports whether every field required for a full update is
// present.
func (r UpdateRecipeRequest) Complete() bool {
	return r.Title != nil && r.TimeMinutes != nil && r.Price != nil
}

// ParseIDList parses a comma-separated id list from a query parameter.
func ParseIDList(s string) ([]int64, error) {
	if s == "" {
		return nil, nil
	}

	parts := strings.Split(s, ",")
	ids := make([]int64, 0, len(parts))

	for _, p := range parts {
		id, err := strconv.ParseInt(strings.TrimSpace(p), 10, 64)
		if err != nil {
			return nil, ErrInvalidFilter
		}

		ids = append(ids, id)
	}

	return ids, nil
}
