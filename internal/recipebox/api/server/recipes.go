package server

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/Leopold1975/recipebox/internal/recipebox/services/authservice"
	"github.com/Leopold1975/recipebox/internal/recipebox/services/recipeservice"
	"github.com/go-chi/chi/v5"
)

const maxImageSize = 10 << 20 // 10 MiB

func recipeID(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		return 0, recipeservice.ErrNotFound
	}

	return id, nil
}

// Список рецептов пользователя c фильтрацией по тегам и/или ингредиентам
// (GET /recipes).
func (s *Server) listRecipes(w http.ResponseWriter, r *http.Request) {
	u, ok := userFrom(r.Context())
	if !ok {
		handleError(w, authservice.ErrBadCredentials)

		return
	}

	req := recipeservice.ListRecipesRequest{
		Tags:        r.URL.Query().Get("tags"),
		Ingredients: r.URL.Query().Get("ingredients"),
	}

	recipes, err := s.recipeService.List(r.Context(), u.ID, req)
	if err != nil {
		handleError(w, fmt.Errorf("list recipes error: %w", err))

		return
	}

	writeJSON(w, http.StatusOK, recipes)
}

// Создание рецепта
// (POST /recipes).
func (s *Server) createRecipe(w http.ResponseWriter, r *http.Request) {
	u, ok := userFrom(r.Context())
	if !ok {
		handleError(w, authservice.ErrBadCredentials)

		return
	}

	var req recipeservice.CreateRecipeRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleErrorCode(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	recipe, err := s.recipeService.Create(r.Context(), u.ID, req)
	if err != nil {
		handleError(w, fmt.Errorf("create recipe error: %w", err))

		return
	}

	writeJSON(w, http.StatusCreated, recipe)
}

// Получение рецепта с развернутыми тегами и ингредиентами
// (GET /recipes/{id}).
func (s *Server) getRecipe(w http.ResponseWriter, r *http.Request) {
	u, ok := userFrom(r.Context())
	if !ok {
		handleError(w, authservice.ErrBadCredentials)

		return
	}

	id, err := recipeID(r)
	if err != nil {
		handleError(w, err)

		return
	}

	recipe, err := s.recipeService.Get(r.Context(), u.ID, id)
	if err != nil {
		handleError(w, fmt.Errorf("get recipe error: %w", err))

		return
	}

	writeJSON(w, http.StatusOK, recipe)
}

// Полное обновление рецепта: отсутствующие наборы тегов и ингредиентов
// очищаются
// (PUT /recipes/{id}).
func (s *Server) putRecipe(w http.ResponseWriter, r *http.Request) {
	u, ok := userFrom(r.Context())
	if !ok {
		handleError(w, authservice.ErrBadCredentials)

		return
	}

	id, err := recipeID(r)
	if err != nil {
		handleError(w, err)

		return
	}

	var req recipeservice.UpdateRecipeRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleErrorCode(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	if !req.Complete() {
		handleError(w, recipeservice.ErrIncompleteInput)

		return
	}

	if req.Tags == nil {
		req.Tags = &[]int64{}
	}

	if req.Ingredients == nil {
		req.Ingredients = &[]int64{}
	}

	recipe, err := s.recipeService.Update(r.Context(), u.ID, id, req)
	if err != nil {
		handleError(w, fmt.Errorf("update recipe error: %w", err))

		return
	}

	writeJSON(w, http.StatusOK, recipe)
}

// Частичное обновление рецепта: меняются только присланные поля
// (PATCH /recipes/{id}).
func (s *Server) patchRecipe(w http.ResponseWriter, r *http.Request) {
	u, ok := userFrom(r.Context())
	if !ok {
		handleError(w, authservice.ErrBadCredentials)

		return
	}

	id, err := recipeID(r)
	if err != nil {
		handleError(w, err)

		return
	}

	var req recipeservice.UpdateRecipeRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleErrorCode(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	recipe, err := s.recipeService.Update(r.Context(), u.ID, id, req)
	if err != nil {
		handleError(w, fmt.Errorf("update recipe error: %w", err))

		return
	}

	writeJSON(w, http.StatusOK, recipe)
}

// Удаление рецепта вместе с прикрепленным изображением
// (DELETE /recipes/{id}).
func (s *Server) deleteRecipe(w http.ResponseWriter, r *http.Request) {
	u, ok := userFrom(r.Context())
	if !ok {
		handleError(w, authservice.ErrBadCredentials)

		return
	}

	id, err := recipeID(r)
	if err != nil {
		handleError(w, err)

		return
	}

	if err := s.recipeService.Delete(r.Context(), u.ID, id); err != nil {
		handleError(w, fmt.Errorf("delete recipe error: %w", err))

		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Загрузка изображения рецепта
// (POST /recipes/{id}/upload_image).
func (s *Server) uploadImage(w http.ResponseWriter, r *http.Request) {
	u, ok := userFrom(r.Context())
	if !ok {
		handleError(w, authservice.ErrBadCredentials)

		return
	}

	id, err := recipeID(r)
	if err != nil {
		handleError(w, err)

		return
	}

	if err := r.ParseMultipartForm(maxImageSize); err != nil {
		handleErrorCode(w, fmt.Errorf("parse form error: %w", err), http.StatusBadRequest)

		return
	}

	file, _, err := r.FormFile("image")
	if err != nil {
		handleErrorCode(w, fmt.Errorf("form file error: %w", err), http.StatusBadRequest)

		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		handleErrorCode(w, fmt.Errorf("read file error: %w", err), http.StatusBadRequest)

		return
	}

	imageURL, err := s.recipeService.UploadImage(r.Context(), u.ID, id, data)
	if err != nil {
		handleError(w, fmt.Errorf("upload image error: %w", err))

		return
	}

	writeJSON(w, http.StatusOK, UploadImageResponse{
		ID:       id,
		ImageURL: imageURL,
	})
}
