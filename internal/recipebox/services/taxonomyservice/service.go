package taxonomyservice

import (
	"context"
	"errors"
	"fmt"

	"github.com/Leopold1975/recipebox/internal/recipebox/domain/models"
)

var ErrEmptyName = errors.New("name must not be empty")

type Repository interface {
	ListTags(ctx context.Context, userID int64, assignedOnly bool) ([]models.Tag, error)
	CreateTag(context.Context, models.Tag) (models.Tag, error)
	ListIngredients(ctx context.Context, userID int64, assignedOnly bool) ([]models.Ingredient, error)
	CreateIngredient(context.Context, models.Ingredient) (models.Ingredient, error)
}

// TaxonomyService exposes the identical tag and ingredient contracts:
// owner-scoped listing ordered by name descending and owner-stamped
// creation.
type TaxonomyService struct {
	repo Repository
}

func New(repo Repository) *TaxonomyService {
	return &TaxonomyService{
		repo: repo,
	}
}

func (ts *TaxonomyService) ListTags(ctx context.Context, userID int64, assignedOnly bool) ([]models.Tag, error) {
	tags, err := ts.repo.ListTags(ctx, userID, assignedOnly)
	if err != nil {
		return nil, fmt.Errorf("list tags error: %w", err)
	}

	return tags, nil
}

func (ts *TaxonomyService) CreateTag(ctx context.Context, userID int64, name string) (models.Tag, error) {
	if name == "" {
		return models.Tag{}, ErrEmptyName
	}

	tag, err := ts.repo.CreateTag(ctx, models.Tag{ //nolint:exhaustruct
		Name:   name,
		UserID: userID,
	})
	if err != nil {
		return models.Tag{}, fmt.Errorf("create tag error: %w", err)
	}

	return tag, nil
}

func (ts *TaxonomyService) ListIngredients(ctx context.Context, userID int64, assignedOnly bool) ([]models.Ingredient, error) {
	ingredients, err := ts.repo.ListIngredients(ctx, userID, assignedOnly)
	if err != nil {
		return nil, fmt.Errorf("list ingredients error: %w", err)
	}

	return ingredients, nil
}

func (ts *TaxonomyService) CreateIngredient(ctx context.Context, userID int64, name string) (models.Ingredient, error) {
	if name == "" {
		return models.Ingredient{}, ErrEmptyName
	}

	ingredient, err := ts.repo.CreateIngredient(ctx, models.Ingredient{ //nolint:exhaustruct
		Name:   name,
		UserID: userID,
	})
	if err != nil {
		return models.Ingredient{}, fmt.Errorf("create ingredient error: %w", err)
	}

	return ingredient, nil
}
