package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Leopold1975/recipebox/internal/pkg/config"
	"github.com/Leopold1975/recipebox/internal/pkg/redistools"
	"github.com/Leopold1975/recipebox/internal/recipebox/domain/models"
	"github.com/Leopold1975/recipebox/internal/recipebox/repository/reciperepo"
	"github.com/redis/go-redis/v9"
)

// RecipeCache holds recipe detail projections keyed by owner and id,
// so a cached entry can never be read back by another user.
type RecipeCache struct {
	rdb     *redis.Client
	expTime time.Duration
}

func New(ctx context.Context, cfg config.RecipeCache) (RecipeCache, error) {
	rdb := redis.NewClient(&redis.Options{ //nolint:exhaustruct
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := redistools.Connect(ctx, rdb); err != nil {
		return RecipeCache{}, fmt.Errorf("connect error: %w", err)
	}

	return RecipeCache{
		rdb:     rdb,
		expTime: cfg.ExpTime,
	}, nil
}

func key(userID, recipeID int64) string {
	return fmt.Sprintf("recipe:%d:%d", userID, recipeID)
}

func (rc RecipeCache) SetRecipe(ctx context.Context, userID int64, r models.RecipeDetail) error {
	recipeJSON, err := json.Marshal(r)
	if err != nil {
		return fmt.Errorf("marshal error: %w", err)
	}

	if _, err := rc.rdb.Set(ctx, key(userID, r.ID), recipeJSON, rc.expTime).Result(); err != nil {
		return fmt.Errorf("set error: %w", err)
	}

	return nil
}

func (rc RecipeCache) GetRecipe(ctx context.Context, userID, recipeID int64) (models.RecipeDetail, error) {
	recipeJSON, err := rc.rdb.Get(ctx, key(userID, recipeID)).Result()
	if errors.Is(err, redis.Nil) {
		return models.RecipeDetail{}, reciperepo.ErrNotFound
	} else if err != nil {
		return models.RecipeDetail{}, fmt.Errorf("get error: %w", err)
	}

	var r models.RecipeDetail

	if err := json.Unmarshal([]byte(recipeJSON), &r); err != nil {
		return models.RecipeDetail{}, fmt.Errorf("unmarshal error: %w", err)
	}

	return r, nil
}

func (rc RecipeCache) DeleteRecipe(ctx context.Context, userID, recipeID int64) error {
	if _, err := rc.rdb.Del(ctx, key(userID, recipeID)).Result(); err != nil {
		return fmt.Errorf("del error: %w", err)
	}

	return nil
}
