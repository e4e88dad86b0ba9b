package recipeservice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/gif"  // register gif for image decoding
	_ "image/jpeg" // register jpeg for image decoding
	_ "image/png"  // register png for image decoding
	"io"

	"github.com/Leopold1975/recipebox/internal/recipebox/domain/models"
	repo "github.com/Leopold1975/recipebox/internal/recipebox/repository/reciperepo"
	"github.com/Leopold1975/recipebox/pkg/logger"
	"github.com/google/uuid"
)

var (
	ErrNotFound        = errors.New("recipe not found")
	ErrInvalidFilter   = errors.New("malformed id list")
	ErrEmptyTitle      = errors.New("title must not be empty")
	ErrNegativeValue   = errors.New("time_minutes and price must be non-negative")
	ErrUnknownRelation = errors.New("unknown tag or ingredient id")
	ErrIncompleteInput = errors.New("title, time_minutes and price are required")
	ErrNotAnImage      = errors.New("payload is not a decodable image")
)

type Repository interface {
	CreateRecipe(ctx context.Context, r models.Recipe, tagIDs, ingredIDs []int64) (models.Recipe, error)
	GetRecipe(ctx context.Context, userID, recipeID int64) (models.Recipe, error)
	ListRecipes(ctx context.Context, userID int64, f repo.Filter) ([]models.Recipe, error)
	UpdateRecipe(ctx context.Context, userID, recipeID int64, upd repo.RecipeUpdate) (models.Recipe, error)
	DeleteRecipe(ctx context.Context, userID, recipeID int64) error
	SetRecipeImage(ctx context.Context, userID, recipeID int64, imageURL string) error
}

type Cache interface {
	GetRecipe(ctx context.Context, userID, recipeID int64) (models.RecipeDetail, error)
	SetRecipe(ctx context.Context, userID int64, r models.RecipeDetail) error
	DeleteRecipe(ctx context.Context, userID, recipeID int64) error
}

type FileStorage interface {
	Upload(ctx context.Context, objectKey string, body io.Reader, contentType string) (string, error)
	Delete(ctx context.Context, imageURL string) error
}

type RecipeService struct {
	recipeRepo  Repository
	recipeCache Cache
	fileStorage FileStorage
	lg          logger.Logger
}

func New(recipeRepo Repository, recipeCache Cache, fileStorage FileStorage, lg logger.Logger) *RecipeService {
	return &RecipeService{
		recipeRepo:  recipeRepo,
		recipeCache: recipeCache,
		fileStorage: fileStorage,
		lg:          lg,
	}
}

// List returns the caller's recipes as summaries, optionally narrowed
// to those whose tag or ingredient set intersects the given id lists.
func (rs *RecipeService) List(ctx context.Context, userID int64, req ListRecipesRequest) ([]models.RecipeSummary, error) {
	tagIDs, err := ParseIDList(req.Tags)
	if err != nil {
		return nil, err
	}

	ingredIDs, err := ParseIDList(req.Ingredients)
	if err != nil {
		return nil, err
	}

	recipes, err := rs.recipeRepo.ListRecipes(ctx, userID, repo.Filter{
		TagIDs:        tagIDs,
		IngredientIDs: ingredIDs,
	})
	if err != nil {
		return nil, fmt.Errorf("list recipes error: %w", err)
	}

	summaries := make([]models.RecipeSummary, 0, len(recipes))
	for _, r := range recipes {
		summaries = append(summaries, r.Summary())
	}

	return summaries, nil
}

func (rs *RecipeService) Create(ctx context.Context, userID int64, req CreateRecipeRequest) (models.RecipeDetail, error) {
	if err := validateFields(req.Title, req.TimeMinutes, req.Price); err != nil {
		return models.RecipeDetail{}, err
	}

	r := models.Recipe{ //nolint:exhaustruct
		UserID:      userID,
		Title:       req.Title,
		TimeMinutes: req.TimeMinutes,
		Price:       req.Price,
		Link:        req.Link,
	}

	created, err := rs.recipeRepo.CreateRecipe(ctx, r, req.Tags, req.Ingredients)
	if err != nil {
		if errors.Is(err, repo.ErrUnknownEntity) {
			return models.RecipeDetail{}, ErrUnknownRelation
		}

		return models.RecipeDetail{}, fmt.Errorf("create recipe error: %w", err)
	}

	return created.Detail(), nil
}

func (rs *RecipeService) Get(ctx context.Context, userID, recipeID int64) (models.RecipeDetail, error) {
	if cached, err := rs.recipeCache.GetRecipe(ctx, userID, recipeID); err == nil {
		return cached, nil
	}

	r, err := rs.recipeRepo.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return models.RecipeDetail{}, ErrNotFound
		}

		return models.RecipeDetail{}, fmt.Errorf("get recipe error: %w", err)
	}

	detail := r.Detail()

	if err := rs.recipeCache.SetRecipe(ctx, userID, detail); err != nil {
		rs.lg.Errorf("set recipe cache error: %s", err.Error())
	}

	return detail, nil
}

func (rs *RecipeService) Update(ctx context.Context, userID, recipeID int64, req UpdateRecipeRequest) (models.RecipeDetail, error) {
	if req.Title != nil && *req.Title == "" {
		return models.RecipeDetail{}, ErrEmptyTitle
	}

	if (req.TimeMinutes != nil && *req.TimeMinutes < 0) || (req.Price != nil && *req.Price < 0) {
		return models.RecipeDetail{}, ErrNegativeValue
	}

	upd := repo.RecipeUpdate{
		Title:       req.Title,
		TimeMinutes: req.TimeMinutes,
		Price:       req.Price,
		Link:        req.Link,
		TagIDs:      req.Tags,
		IngredIDs:   req.Ingredients,
	}

	updated, err := rs.recipeRepo.UpdateRecipe(ctx, userID, recipeID, upd)
	if err != nil {
		switch {
		case errors.Is(err, repo.ErrNotFound):
			return models.RecipeDetail{}, ErrNotFound
		case errors.Is(err, repo.ErrUnknownEntity):
			return models.RecipeDetail{}, ErrUnknownRelation
		}

		return models.RecipeDetail{}, fmt.Errorf("update recipe error: %w", err)
	}

	if err := rs.recipeCache.DeleteRecipe(ctx, userID, recipeID); err != nil {
		rs.lg.Errorf("delete recipe cache error: %s", err.Error())
	}

	return updated.Detail(), nil
}

// Delete removes an owned recipe and releases its stored image.
func (rs *RecipeService) Delete(ctx context.Context, userID, recipeID int64) error {
	r, err := rs.recipeRepo.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("get recipe error: %w", err)
	}

	if err := rs.recipeRepo.DeleteRecipe(ctx, userID, recipeID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrNotFound
		}

		return fmt.Errorf("delete recipe error: %w", err)
	}

	if r.ImageURL != "" {
		if err := rs.fileStorage.Delete(ctx, r.ImageURL); err != nil {
			rs.lg.Errorf("delete recipe image error: %s", err.Error())
		}
	}

	if err := rs.recipeCache.DeleteRecipe(ctx, userID, recipeID); err != nil {
		rs.lg.Errorf("delete recipe cache error: %s", err.Error())
	}

	return nil
}

// UploadImage validates that the payload decodes as an image, stores
// it, persists the reference and releases the previously stored file.
func (rs *RecipeService) UploadImage(ctx context.Context, userID, recipeID int64, data []byte) (string, error) {
	r, err := rs.recipeRepo.GetRecipe(ctx, userID, recipeID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrNotFound
		}

		return "", fmt.Errorf("get recipe error: %w", err)
	}

	_, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return "", ErrNotAnImage
	}

	objectKey := fmt.Sprintf("recipes/%d/%s.%s", recipeID, uuid.NewString(), format)

	imageURL, err := rs.fileStorage.Upload(ctx, objectKey, bytes.NewReader(data), "image/"+format)
	if err != nil {
		return "", fmt.Errorf("upload image error: %w", err)
	}

	if err := rs.recipeRepo.SetRecipeImage(ctx, userID, recipeID, imageURL); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return "", ErrNotFound
		}

		return "", fmt.Errorf("set recipe image error: %w", err)
	}

	if r.ImageURL != "" {
		if err := rs.fileStorage.Delete(ctx, r.ImageURL); err != nil {
			rs.lg.Errorf("delete old recipe image error: %s", err.Error())
		}
	}

	if err := rs.recipeCache.DeleteRecipe(ctx, userID, recipeID); err != nil {
		rs.lg.Errorf("delete recipe cache error: %s", err.Error())
	}

	return imageURL, nil
}

func validateFields(title string, timeMinutes int, price float64) error {
	if title == "" {
		return ErrEmptyTitle
	}

	if timeMinutes < 0 || price < 0 {
		return ErrNegativeValue
	}

	return nil
}
