package taxonomyservice_test

import (
	"context"
	"sort"
	"testing"

	"github.com/Leopold1975/recipebox/internal/recipebox/domain/models"
	"github.com/Leopold1975/recipebox/internal/recipebox/services/taxonomyservice"
	"github.com/stretchr/testify/require"
)

type fakeLabelRepo struct {
	tags        []models.Tag
	ingredients []models.Ingredient
	assigned    map[int64]struct{} // label ids referenced by some recipe
	nextID      int64
}

func newFakeLabelRepo() *fakeLabelRepo {
	return &fakeLabelRepo{
		tags:        nil,
		ingredients: nil,
		assigned:    make(map[int64]struct{}),
		nextID:      0,
	}
}

func (f *fakeLabelRepo) ListTags(_ context.Context, userID int64, assignedOnly bool) ([]models.Tag, error) {
	out := make([]models.Tag, 0, len(f.tags))

	for _, t := range f.tags {
		if t.UserID != userID {
			continue
		}

		if assignedOnly {
			if _, ok := f.assigned[t.ID]; !ok {
				continue
			}
		}

		out = append(out, t)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })

	return out, nil
}

func (f *fakeLabelRepo) CreateTag(_ context.Context, t models.Tag) (models.Tag, error) {
	f.nextID++
	t.ID = f.nextID
	f.tags = append(f.tags, t)

	return t, nil
}

func (f *fakeLabelRepo) ListIngredients(_ context.Context, userID int64, assignedOnly bool) ([]models.Ingredient, error) {
	out := make([]models.Ingredient, 0, len(f.ingredients))

	for _, i := range f.ingredients {
		if i.UserID != userID {
			continue
		}

		if assignedOnly {
			if _, ok := f.assigned[i.ID]; !ok {
				continue
			}
		}

		out = append(out, i)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Name > out[j].Name })

	return out, nil
}

func (f *fakeLabelRepo) CreateIngredient(_ context.Context, i models.Ingredient) (models.Ingredient, error) {
	f.nextID++
	i.ID = f.nextID
	f.ingredients = append(f.ingredients, i)

	return i, nil
}

func TestCreateTagStampsOwner(t *testing.T) {
	repo := newFakeLabelRepo()
	ts := taxonomyservice.New(repo)

	tag, err := ts.CreateTag(context.Background(), 7, "Vegan")
	require.NoError(t, err)
	require.NotZero(t, tag.ID)
	require.Equal(t, "Vegan", tag.Name)
	require.Equal(t, int64(7), tag.UserID)
}

func TestCreateEmptyName(t *testing.T) {
	repo := newFakeLabelRepo()
	ts := taxonomyservice.New(repo)

	_, err := ts.CreateTag(context.Background(), 1, "")
	require.ErrorIs(t, err, taxonomyservice.ErrEmptyName)

	_, err = ts.CreateIngredient(context.Background(), 1, "")
	require.ErrorIs(t, err, taxonomyservice.ErrEmptyName)

	require.Empty(t, repo.tags)
	require.Empty(t, repo.ingredients)
}

func TestListTagsScoped(t *testing.T) {
	repo := newFakeLabelRepo()
	ts := taxonomyservice.New(repo)
	ctx := context.Background()

	_, err := ts.CreateTag(ctx, 1, "Vegan")
	require.NoError(t, err)
	_, err = ts.CreateTag(ctx, 1, "Dessert")
	require.NoError(t, err)
	_, err = ts.CreateTag(ctx, 2, "Fruity")
	require.NoError(t, err)

	tags, err := ts.ListTags(ctx, 1, false)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	require.Equal(t, "Vegan", tags[0].Name)
	require.Equal(t, "Dessert", tags[1].Name)
}

func TestListIngredientsAssignedOnly(t *testing.T) {
	repo := newFakeLabelRepo()
	ts := taxonomyservice.New(repo)
	ctx := context.Background()

	salt, err := ts.CreateIngredient(ctx, 1, "Salt")
	require.NoError(t, err)
	_, err = ts.CreateIngredient(ctx, 1, "Pepper")
	require.NoError(t, err)

	repo.assigned[salt.ID] = struct{}{}

	all, err := ts.ListIngredients(ctx, 1, false)
	require.NoError(t, err)
	require.Len(t, all, 2)

	assigned, err := ts.ListIngredients(ctx, 1, true)
	require.NoError(t, err)
	require.Len(t, assigned, 1)
	require.Equal(t, "Salt", assigned[0].Name)
}
