package models

import (
	"time"
)

// Tag is a user-owned label attached to recipes. Ingredient has the
// same shape but is a distinct entity with its own table.
type Tag struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	UserID int64  `json:"-"`
}

type Ingredient struct {
	ID     int64  `json:"id"`
	Name   string `json:"name"`
	UserID int64  `json:"-"`
}

type Recipe struct {
	ID          int64        `json:"id"`
	UserID      int64        `json:"-"`
	Title       string       `json:"title"`
	TimeMinutes int          `json:"time_minutes"` //nolint:tagliatelle
	Price       float64      `json:"price"`
	Link        string       `json:"link"`
	ImageURL    string       `json:"image_url"` //nolint:tagliatelle
	CreatedAt   time.Time    `json:"-"`
	Tags        []Tag        `json:"tags"`
	Ingredients []Ingredient `json:"ingredients"`
}

// RecipeSummary is the list projection: related tags and ingredients
// are carried as bare ids.
type RecipeSummary struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	TimeMinutes int     `json:"time_minutes"` //nolint:tagliatelle
	Price       float64 `json:"price"`
	Link        string  `json:"link"`
	ImageURL    string  `json:"image_url"` //nolint:tagliatelle
	Tags        []int64 `json:"tags"`
	Ingredients []int64 `json:"ingredients"`
}

// RecipeDetail is the single-item projection: relations are expanded
// into full {id, name} objects.
type RecipeDetail struct {
	ID          int64        `json:"id"`
	Title       string       `json:"title"`
	TimeMinutes int          `json:"time_minutes"` //nolint:tagliatelle
	Price       float64      `json:"price"`
	Link        string       `json:"link"`
	ImageURL    string       `json:"image_url"` //nolint:tagliatelle
	Tags        []Tag        `json:"tags"`
	Ingredients []Ingredient `json:"ingredients"`
}

func (r Recipe) Summary() RecipeSummary {
	tags := make([]int64, 0, len(r.Tags))
	for _, t := range r.Tags {
		tags = append(tags, t.ID)
	}

	ingredients := make([]int64, 0, len(r.Ingredients))
	for _, i := range r.Ingredients {
		ingredients = append(ingredients, i.ID)
	}

	return RecipeSummary{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		ImageURL:    r.ImageURL,
		Tags:        tags,
		Ingredients: ingredients,
	}
}

func (r Recipe) Detail() RecipeDetail {
	tags := r.Tags
	if tags == nil {
		tags = []Tag{}
	}

	ingredients := r.Ingredients
	if ingredients == nil {
		ingredients = []Ingredient{}
	}

	return RecipeDetail{
		ID:          r.ID,
		Title:       r.Title,
		TimeMinutes: r.TimeMinutes,
		Price:       r.Price,
		Link:        r.Link,
		ImageURL:    r.ImageURL,
		Tags:        tags,
		Ingredients: ingredients,
	}
}
