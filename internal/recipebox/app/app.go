package app

import (
	"context"
	"fmt"
	"time"

	"github.com/Leopold1975/recipebox/internal/pkg/config"
	"github.com/Leopold1975/recipebox/internal/recipebox/api/server"
	"github.com/Leopold1975/recipebox/internal/recipebox/repository/imagestore/s3"
	rc "github.com/Leopold1975/recipebox/internal/recipebox/repository/recipecache/redis"
	rr "github.com/Leopold1975/recipebox/internal/recipebox/repository/reciperepo/postgres"
	ur "github.com/Leopold1975/recipebox/internal/recipebox/repository/userrepo/postgres"
	"github.com/Leopold1975/recipebox/internal/recipebox/services/authservice"
	"github.com/Leopold1975/recipebox/internal/recipebox/services/recipeservice"
	"github.com/Leopold1975/recipebox/internal/recipebox/services/taxonomyservice"
	"github.com/Leopold1975/recipebox/pkg/logger"
)

type Server interface {
	Start(context.Context) error
	Shutdown(context.Context) error
}

type RecipeboxApp struct {
	s   Server
	lg  logger.Logger
	cfg config.Config
}

func New(ctx context.Context, cfg config.Config) (RecipeboxApp, error) {
	lg, err := logger.New(cfg.Logger)
	if err != nil {
		return RecipeboxApp{}, fmt.Errorf("can't get logger error: %w", err)
	}

	userRepo, err := ur.New(ctx, cfg.PostgresDB)
	if err != nil {
		return RecipeboxApp{}, fmt.Errorf("postgres user repo initializing error: %w", err)
	}

	recipeRepo, err := rr.New(ctx, cfg.PostgresDB)
	if err != nil {
		return RecipeboxApp{}, fmt.Errorf("postgres recipe repo initializing error: %w", err)
	}

	recipeCache, err := rc.New(ctx, cfg.RecipeCache)
	if err != nil {
		return RecipeboxApp{}, fmt.Errorf("redis recipe cache initializing error: %w", err)
	}

	imageStore, err := s3.New(ctx, cfg.ImageStore)
	if err != nil {
		return RecipeboxApp{}, fmt.Errorf("s3 image store initializing error: %w", err)
	}

	authService := authservice.New(userRepo, cfg.Auth)

	if cfg.Auth.AdminEmail != "" {
		if _, err := authService.EnsureSuperuser(ctx); err != nil {
			return RecipeboxApp{}, fmt.Errorf("ensure superuser error: %w", err)
		}
	}

	taxonomyService := taxonomyservice.New(recipeRepo)
	recipeService := recipeservice.New(recipeRepo, recipeCache, imageStore, lg)

	s := server.New(cfg.Server, authService, taxonomyService, recipeService, lg)

	return RecipeboxApp{
		s:   s,
		lg:  lg,
		cfg: cfg,
	}, nil
}

func (ra *RecipeboxApp) Run(ctx context.Context) {
	ra.lg.Infof("STARTED SERVER ON %s", ra.cfg.Server.Addr)

	go func() {
		if err := ra.s.Start(ctx); err != nil {
			ra.lg.Errorf("server start error: %s", err.Error())
			ctx.Done()

			return
		}
	}()

	<-ctx.Done()

	ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
	defer cancel()

	if err := ra.Stop(ctxS); err != nil { //nolint:contextcheck
		ra.lg.Errorf("server shutdown error: %s", err.Error())
	}
}

func (ra *RecipeboxApp) Stop(ctx context.Context) error {
	if err := ra.s.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	ra.lg.Info("Shutdowned successfully")

	return nil
}
