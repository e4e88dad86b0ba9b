package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/Leopold1975/recipebox/internal/pkg/config"
	"github.com/Leopold1975/recipebox/internal/recipebox/domain/models"
	"github.com/Leopold1975/recipebox/internal/recipebox/services/authservice"
	"github.com/Leopold1975/recipebox/internal/recipebox/services/recipeservice"
	"github.com/Leopold1975/recipebox/pkg/logger"
	"github.com/go-chi/chi/v5"
)

type Server struct {
	serv            *http.Server
	authService     AuthService
	taxonomyService TaxonomyService
	recipeService   RecipeService
}

type AuthService interface {
	Register(context.Context, authservice.CreateUserRequest) (models.User, error)
	Login(ctx context.Context, email, password string) (string, error)
	Identify(ctx context.Context, token string) (models.User, error)
	Profile(ctx context.Context, userID int64) (models.User, error)
	UpdateProfile(context.Context, int64, authservice.UpdateProfileRequest) (models.User, error)
}

type TaxonomyService interface {
	ListTags(ctx context.Context, userID int64, assignedOnly bool) ([]models.Tag, error)
	CreateTag(ctx context.Context, userID int64, name string) (models.Tag, error)
	ListIngredients(ctx context.Context, userID int64, assignedOnly bool) ([]models.Ingredient, error)
	CreateIngredient(ctx context.Context, userID int64, name string) (models.Ingredient, error)
}

type RecipeService interface {
	List(context.Context, int64, recipeservice.ListRecipesRequest) ([]models.RecipeSummary, error)
	Create(context.Context, int64, recipeservice.CreateRecipeRequest) (models.RecipeDetail, error)
	Get(ctx context.Context, userID, recipeID int64) (models.RecipeDetail, error)
	Update(ctx context.Context, userID, recipeID int64, req recipeservice.UpdateRecipeRequest) (models.RecipeDetail, error)
	Delete(ctx context.Context, userID, recipeID int64) error
	UploadImage(ctx context.Context, userID, recipeID int64, data []byte) (string, error)
}

func New(cfg config.Server, as AuthService, ts TaxonomyService, rs RecipeService, lg logger.Logger) *Server {
	s := &Server{ //nolint:exhaustruct
		authService:     as,
		taxonomyService: ts,
		recipeService:   rs,
	}

	r := chi.NewRouter()
	r.Use(loggingMiddleware(lg))

	r.Route("/v1", func(r chi.Router) {
		r.MethodNotAllowed(methodNotAllowed)

		r.Post("/users", s.createUser)
		r.Post("/users/token", s.createToken)

		r.Group(func(r chi.Router) {
			r.Use(s.authenticate)

			r.Get("/users/me", s.getProfile)
			r.Patch("/users/me", s.updateProfile)

			r.Get("/tags", s.listTags)
			r.Post("/tags", s.createTag)
			r.Get("/ingredients", s.listIngredients)
			r.Post("/ingredients", s.createIngredient)

			r.Get("/recipes", s.listRecipes)
			r.Post("/recipes", s.createRecipe)
			r.Get("/recipes/{id}", s.getRecipe)
			r.Put("/recipes/{id}", s.putRecipe)
			r.Patch("/recipes/{id}", s.patchRecipe)
			r.Delete("/recipes/{id}", s.deleteRecipe)
			r.Post("/recipes/{id}/upload_image", s.uploadImage)
		})
	})

	s.serv = &http.Server{ //nolint:exhaustruct
		Addr:         cfg.Addr,
		Handler:      r,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
		IdleTimeout:  cfg.IdleTimeout,
	}

	return s
}

func (s *Server) Start(ctx context.Context) error {
	errCh := make(chan error)

	go func() {
		if err := s.serv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
			close(errCh)
		}
	}()

	select {
	case <-ctx.Done():
		ctxS, cancel := context.WithTimeout(context.Background(), time.Second*5) //nolint:gomnd
		defer cancel()

		if err := s.Shutdown(ctxS); err != nil { //nolint:contextcheck
			return fmt.Errorf("context error: %w server error %w", ctxS.Err(), err)
		}

		if !errors.Is(ctx.Err(), context.Canceled) {
			return fmt.Errorf("context cancelled error: %w", ctx.Err())
		}

		return nil
	case err := <-errCh:
		return fmt.Errorf("listen and serve error: %w", err)
	}
}

func (s *Server) Shutdown(ctx context.Context) error {
	ctxS, cancel := context.WithTimeout(ctx, s.serv.IdleTimeout)
	defer cancel()

	if err := s.serv.Shutdown(ctxS); err != nil {
		return fmt.Errorf("shutdown server error: %w", err)
	}

	return nil
}

// Handler exposes the router for tests.
func (s *Server) Handler() http.Handler {
	return s.serv.Handler
}
