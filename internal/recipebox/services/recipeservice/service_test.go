package recipeservice_test

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/png"
	"io"
	"sort"
	"testing"

	"github.com/Leopold1975/recipebox/internal/recipebox/domain/models"
	repo "github.com/Leopold1975/recipebox/internal/recipebox/repository/reciperepo"
	"github.com/Leopold1975/recipebox/internal/recipebox/services/recipeservice"
	"github.com/stretchr/testify/require"
)

type nopLogger struct{}

func (nopLogger) Debug(_ ...interface{})            {}
func (nopLogger) Debugf(_ string, _ ...interface{}) {}
func (nopLogger) Info(_ ...interface{})             {}
func (nopLogger) Infof(_ string, _ ...interface{})  {}
func (nopLogger) Warn(_ ...interface{})             {}
func (nopLogger) Warnf(_ string, _ ...interface{})  {}
func (nopLogger) Error(_ ...interface{})            {}
func (nopLogger) Errorf(_ string, _ ...interface{}) {}

type fakeRecipeRepo struct {
	recipes     map[int64]models.Recipe
	tags        map[int64]models.Tag
	ingredients map[int64]models.Ingredient
	nextID      int64
}

func newFakeRecipeRepo() *fakeRecipeRepo {
	return &fakeRecipeRepo{
		recipes:     make(map[int64]models.Recipe),
		tags:        make(map[int64]models.Tag),
		ingredients: make(map[int64]models.Ingredient),
		nextID:      0,
	}
}

func (f *fakeRecipeRepo) addTag(userID int64, name string) models.Tag {
	f.nextID++
	t := models.Tag{ID: f.nextID, Name: name, UserID: userID}
	f.tags[t.ID] = t

	return t
}

func (f *fakeRecipeRepo) addIngredient(userID int64, name string) models.Ingredient {
	f.nextID++
	i := models.Ingredient{ID: f.nextID, Name: name, UserID: userID}
	f.ingredients[i.ID] = i

	return i
}

func (f *fakeRecipeRepo) resolveLabels(tagIDs, ingredIDs []int64) ([]models.Tag, []models.Ingredient, error) {
	tags := make([]models.Tag, 0, len(tagIDs))

	for _, id := range tagIDs {
		t, ok := f.tags[id]
		if !ok {
			return nil, nil, repo.ErrUnknownEntity
		}

		tags = append(tags, t)
	}

	ingredients := make([]models.Ingredient, 0, len(ingredIDs))

	for _, id := range ingredIDs {
		i, ok := f.ingredients[id]
		if !ok {
			return nil, nil, repo.ErrUnknownEntity
		}

		ingredients = append(ingredients, i)
	}

	return tags, ingredients, nil
}

func (f *fakeRecipeRepo) CreateRecipe(_ context.Context, r models.Recipe, tagIDs, ingredIDs []int64) (models.Recipe, error) {
	tags, ingredients, err := f.resolveLabels(tagIDs, ingredIDs)
	if err != nil {
		return models.Recipe{}, err
	}

	f.nextID++
	r.ID = f.nextID
	r.Tags = tags
	r.Ingredients = ingredients
	f.recipes[r.ID] = r

	return r, nil
}

func (f *fakeRecipeRepo) GetRecipe(_ context.Context, userID, recipeID int64) (models.Recipe, error) {
	r, ok := f.recipes[recipeID]
	if !ok || r.UserID != userID {
		return models.Recipe{}, repo.ErrNotFound
	}

	return r, nil
}

func intersects(have []int64, want []int64) bool {
	for _, w := range want {
		for _, h := range have {
			if w == h {
				return true
			}
		}
	}

	return false
}

func (f *fakeRecipeRepo) ListRecipes(_ context.Context, userID int64, flt repo.Filter) ([]models.Recipe, error) {
	out := make([]models.Recipe, 0, len(f.recipes))

	for _, r := range f.recipes {
		if r.UserID != userID {
			continue
		}

		if len(flt.TagIDs) != 0 && !intersects(r.Summary().Tags, flt.TagIDs) {
			continue
		}

		if len(flt.IngredientIDs) != 0 && !intersects(r.Summary().Ingredients, flt.IngredientIDs) {
			continue
		}

		out = append(out, r)
	}

	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })

	return out, nil
}

func (f *fakeRecipeRepo) UpdateRecipe(_ context.Context, userID, recipeID int64, upd repo.RecipeUpdate) (models.Recipe, error) {
	r, ok := f.recipes[recipeID]
	if !ok || r.UserID != userID {
		return models.Recipe{}, repo.ErrNotFound
	}

	if upd.Title != nil {
		r.Title = *upd.Title
	}

	if upd.TimeMinutes != nil {
		r.TimeMinutes = *upd.TimeMinutes
	}

	if upd.Price != nil {
		r.Price = *upd.Price
	}

	if upd.Link != nil {
		r.Link = *upd.Link
	}

	if upd.TagIDs != nil {
		tags, _, err := f.resolveLabels(*upd.TagIDs, nil)
		if err != nil {
			return models.Recipe{}, err
		}

		r.Tags = tags
	}

	if upd.IngredIDs != nil {
		_, ingredients, err := f.resolveLabels(nil, *upd.IngredIDs)
		if err != nil {
			return models.Recipe{}, err
		}

		r.Ingredients = ingredients
	}

	f.recipes[recipeID] = r

	return r, nil
}

func (f *fakeRecipeRepo) DeleteRecipe(_ context.Context, userID, recipeID int64) error {
	r, ok := f.recipes[recipeID]
	if !ok || r.UserID != userID {
		return repo.ErrNotFound
	}

	delete(f.recipes, recipeID)

	return nil
}

func (f *fakeRecipeRepo) SetRecipeImage(_ context.Context, userID, recipeID int64, imageURL string) error {
	r, ok := f.recipes[recipeID]
	if !ok || r.UserID != userID {
		return repo.ErrNotFound
	}

	r.ImageURL = imageURL
	f.recipes[recipeID] = r

	return nil
}

type fakeCache struct {
	entries map[string]models.RecipeDetail
	sets    int
	deletes int
}

func newFakeCache() *fakeCache {
	return &fakeCache{
		entries: make(map[string]models.RecipeDetail),
		sets:    0,
		deletes: 0,
	}
}

func cacheKey(userID, recipeID int64) string {
	return fmt.Sprintf("%d:%d", userID, recipeID)
}

func (f *fakeCache) GetRecipe(_ context.Context, userID, recipeID int64) (models.RecipeDetail, error) {
	d, ok := f.entries[cacheKey(userID, recipeID)]
	if !ok {
		return models.RecipeDetail{}, repo.ErrNotFound
	}

	return d, nil
}

func (f *fakeCache) SetRecipe(_ context.Context, userID int64, r models.RecipeDetail) error {
	f.entries[cacheKey(userID, r.ID)] = r
	f.sets++

	return nil
}

func (f *fakeCache) DeleteRecipe(_ context.Context, userID, recipeID int64) error {
	delete(f.entries, cacheKey(userID, recipeID))
	f.deletes++

	return nil
}

type fakeStorage struct {
	uploaded []string
	deleted  []string
}

func (f *fakeStorage) Upload(_ context.Context, objectKey string, _ io.Reader, _ string) (string, error) {
	url := "http://blob/" + objectKey
	f.uploaded = append(f.uploaded, url)

	return url, nil
}

func (f *fakeStorage) Delete(_ context.Context, imageURL string) error {
	f.deleted = append(f.deleted, imageURL)

	return nil
}

func newService(t *testing.T) (*recipeservice.RecipeService, *fakeRecipeRepo, *fakeCache, *fakeStorage) {
	t.Helper()

	rr := newFakeRecipeRepo()
	cache := newFakeCache()
	storage := &fakeStorage{uploaded: nil, deleted: nil}

	return recipeservice.New(rr, cache, storage, nopLogger{}), rr, cache, storage
}

func pngBytes(t *testing.T) []byte {
	t.Helper()

	var buf bytes.Buffer

	img := image.NewRGBA(image.Rect(0, 0, 2, 2))
	require.NoError(t, png.Encode(&buf, img))

	return buf.Bytes()
}

func TestListScopedAndFiltered(t *testing.T) {
	rs, rr, _, _ := newService(t)
	ctx := context.Background()

	vegan := rr.addTag(1, "Vegan")
	quick := rr.addTag(1, "Quick")
	salt := rr.addIngredient(1, "Salt")

	curry, err := rs.Create(ctx, 1, recipeservice.CreateRecipeRequest{
		Title:       "Curry",
		TimeMinutes: 30,
		Price:       5.50,
		Link:        "",
		Tags:        []int64{vegan.ID},
		Ingredients: []int64{salt.ID},
	})
	require.NoError(t, err)

	_, err = rs.Create(ctx, 1, recipeservice.CreateRecipeRequest{
		Title:       "Toast",
		TimeMinutes: 5,
		Price:       1.00,
		Link:        "",
		Tags:        []int64{quick.ID},
		Ingredients: nil,
	})
	require.NoError(t, err)

	_, err = rs.Create(ctx, 2, recipeservice.CreateRecipeRequest{
		Title:       "Other users recipe",
		TimeMinutes: 10,
		Price:       2.00,
		Link:        "",
		Tags:        nil,
		Ingredients: nil,
	})
	require.NoError(t, err)

	all, err := rs.List(ctx, 1, recipeservice.ListRecipesRequest{Tags: "", Ingredients: ""})
	require.NoError(t, err)
	require.Len(t, all, 2)

	filtered, err := rs.List(ctx, 1, recipeservice.ListRecipesRequest{Tags: "1", Ingredients: ""})
	require.NoError(t, err)
	require.Len(t, filtered, 1)
	require.Equal(t, curry.ID, filtered[0].ID)
	require.Equal(t, []int64{vegan.ID}, filtered[0].Tags)

	conjunctive, err := rs.List(ctx, 1, recipeservice.ListRecipesRequest{Tags: "2", Ingredients: "3"})
	require.NoError(t, err)
	require.Empty(t, conjunctive)

	othersView, err := rs.List(ctx, 2, recipeservice.ListRecipesRequest{Tags: "", Ingredients: ""})
	require.NoError(t, err)
	require.Len(t, othersView, 1)
	require.Equal(t, "Other users recipe", othersView[0].Title)
}

func TestListMalformedFilter(t *testing.T) {
	rs, _, _, _ := newService(t)

	_, err := rs.List(context.Background(), 1, recipeservice.ListRecipesRequest{Tags: "1,abc", Ingredients: ""})
	require.ErrorIs(t, err, recipeservice.ErrInvalidFilter)

	_, err = rs.List(context.Background(), 1, recipeservice.ListRecipesRequest{Tags: "", Ingredients: "x"})
	require.ErrorIs(t, err, recipeservice.ErrInvalidFilter)
}

func TestCreateValidation(t *testing.T) {
	rs, _, _, _ := newService(t)
	ctx := context.Background()

	_, err := rs.Create(ctx, 1, recipeservice.CreateRecipeRequest{
		Title:       "",
		TimeMinutes: 1,
		Price:       1,
		Link:        "",
		Tags:        nil,
		Ingredients: nil,
	})
	require.ErrorIs(t, err, recipeservice.ErrEmptyTitle)

	_, err = rs.Create(ctx, 1, recipeservice.CreateRecipeRequest{
		Title:       "Soup",
		TimeMinutes: -1,
		Price:       1,
		Link:        "",
		Tags:        nil,
		Ingredients: nil,
	})
	require.ErrorIs(t, err, recipeservice.ErrNegativeValue)

	_, err = rs.Create(ctx, 1, recipeservice.CreateRecipeRequest{
		Title:       "Soup",
		TimeMinutes: 1,
		Price:       1,
		Link:        "",
		Tags:        []int64{999},
		Ingredients: nil,
	})
	require.ErrorIs(t, err, recipeservice.ErrUnknownRelation)
}

func TestGetScopingAndCache(t *testing.T) {
	rs, _, cache, _ := newService(t)
	ctx := context.Background()

	created, err := rs.Create(ctx, 1, recipeservice.CreateRecipeRequest{
		Title:       "Curry",
		TimeMinutes: 30,
		Price:       5.50,
		Link:        "",
		Tags:        nil,
		Ingredients: nil,
	})
	require.NoError(t, err)

	_, err = rs.Get(ctx, 2, created.ID)
	require.ErrorIs(t, err, recipeservice.ErrNotFound)

	detail, err := rs.Get(ctx, 1, created.ID)
	require.NoError(t, err)
	require.Equal(t, "Curry", detail.Title)
	require.Equal(t, 1, cache.sets)

	_, err = rs.Get(ctx, 1, created.ID)
	require.NoError(t, err)
	require.Equal(t, 1, cache.sets) // second read is a cache hit
}

func TestUpdateAssociationSemantics(t *testing.T) {
	rs, rr, cache, _ := newService(t)
	ctx := context.Background()

	vegan := rr.addTag(1, "Vegan")
	quick := rr.addTag(1, "Quick")

	created, err := rs.Create(ctx, 1, recipeservice.CreateRecipeRequest{
		Title:       "Curry",
		TimeMinutes: 30,
		Price:       5.50,
		Link:        "",
		Tags:        []int64{vegan.ID},
		Ingredients: nil,
	})
	require.NoError(t, err)

	// Partial update without a tags key leaves associations untouched.
	newTitle := "Green curry"

	updated, err := rs.Update(ctx, 1, created.ID, recipeservice.UpdateRecipeRequest{
		Title:       &newTitle,
		TimeMinutes: nil,
		Price:       nil,
		Link:        nil,
		Tags:        nil,
		Ingredients: nil,
	})
	require.NoError(t, err)
	require.Equal(t, "Green curry", updated.Title)
	require.Len(t, updated.Tags, 1)
	require.Equal(t, "Vegan", updated.Tags[0].Name)

	// A present tags key replaces the set wholesale.
	updated, err = rs.Update(ctx, 1, created.ID, recipeservice.UpdateRecipeRequest{
		Title:       nil,
		TimeMinutes: nil,
		Price:       nil,
		Link:        nil,
		Tags:        &[]int64{quick.ID},
		Ingredients: nil,
	})
	require.NoError(t, err)
	require.Len(t, updated.Tags, 1)
	require.Equal(t, "Quick", updated.Tags[0].Name)

	// An empty set clears all associations.
	updated, err = rs.Update(ctx, 1, created.ID, recipeservice.UpdateRecipeRequest{
		Title:       nil,
		TimeMinutes: nil,
		Price:       nil,
		Link:        nil,
		Tags:        &[]int64{},
		Ingredients: nil,
	})
	require.NoError(t, err)
	require.Empty(t, updated.Tags)

	require.NotZero(t, cache.deletes)
}

func TestUpdateScoping(t *testing.T) {
	rs, _, _, _ := newService(t)
	ctx := context.Background()

	created, err := rs.Create(ctx, 1, recipeservice.CreateRecipeRequest{
		Title:       "Curry",
		TimeMinutes: 30,
		Price:       5.50,
		Link:        "",
		Tags:        nil,
		Ingredients: nil,
	})
	require.NoError(t, err)

	newTitle := "Stolen"

	_, err = rs.Update(ctx, 2, created.ID, recipeservice.UpdateRecipeRequest{
		Title:       &newTitle,
		TimeMinutes: nil,
		Price:       nil,
		Link:        nil,
		Tags:        nil,
		Ingredients: nil,
	})
	require.ErrorIs(t, err, recipeservice.ErrNotFound)
}

func TestUploadImage(t *testing.T) {
	rs, rr, _, storage := newService(t)
	ctx := context.Background()

	created, err := rs.Create(ctx, 1, recipeservice.CreateRecipeRequest{
		Title:       "Curry",
		TimeMinutes: 30,
		Price:       5.50,
		Link:        "",
		Tags:        nil,
		Ingredients: nil,
	})
	require.NoError(t, err)

	url, err := rs.UploadImage(ctx, 1, created.ID, pngBytes(t))
	require.NoError(t, err)
	require.NotEmpty(t, url)
	require.Equal(t, url, rr.recipes[created.ID].ImageURL)
	require.Empty(t, storage.deleted)

	// Re-upload releases the previous object.
	url2, err := rs.UploadImage(ctx, 1, created.ID, pngBytes(t))
	require.NoError(t, err)
	require.NotEqual(t, url, url2)
	require.Equal(t, []string{url}, storage.deleted)
}

func TestUploadImageNotAnImage(t *testing.T) {
	rs, _, _, storage := newService(t)
	ctx := context.Background()

	created, err := rs.Create(ctx, 1, recipeservice.CreateRecipeRequest{
		Title:       "Curry",
		TimeMinutes: 30,
		Price:       5.50,
		Link:        "",
		Tags:        nil,
		Ingredients: nil,
	})
	require.NoError(t, err)

	_, err = rs.UploadImage(ctx, 1, created.ID, []byte("definitely not an image"))
	require.ErrorIs(t, err, recipeservice.ErrNotAnImage)
	require.Empty(t, storage.uploaded)
}

func TestUploadImageScoping(t *testing.T) {
	rs, _, _, _ := newService(t)
	ctx := context.Background()

	created, err := rs.Create(ctx, 1, recipeservice.CreateRecipeRequest{
		Title:       "Curry",
		TimeMinutes: 30,
		Price:       5.50,
		Link:        "",
		Tags:        nil,
		Ingredients: nil,
	})
	require.NoError(t, err)

	_, err = rs.UploadImage(ctx, 2, created.ID, pngBytes(t))
	require.ErrorIs(t, err, recipeservice.ErrNotFound)
}

func TestDeleteReleasesImage(t *testing.T) {
	rs, rr, _, storage := newService(t)
	ctx := context.Background()

	created, err := rs.Create(ctx, 1, recipeservice.CreateRecipeRequest{
		Title:       "Curry",
		TimeMinutes: 30,
		Price:       5.50,
		Link:        "",
		Tags:        nil,
		Ingredients: nil,
	})
	require.NoError(t, err)

	url, err := rs.UploadImage(ctx, 1, created.ID, pngBytes(t))
	require.NoError(t, err)

	require.ErrorIs(t, rs.Delete(ctx, 2, created.ID), recipeservice.ErrNotFound)

	require.NoError(t, rs.Delete(ctx, 1, created.ID))
	require.Empty(t, rr.recipes)
	require.Contains(t, storage.deleted, url)

	require.ErrorIs(t, rs.Delete(ctx, 1, created.ID), recipeservice.ErrNotFound)
}
