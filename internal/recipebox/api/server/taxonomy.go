package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Leopold1975/recipebox/internal/recipebox/services/authservice"
)

type createLabelRequest struct {
	Name string `json:"name"`
}

func assignedOnly(r *http.Request) bool {
	v := r.URL.Query().Get("assigned_only")

	return v == "1" || v == "true"
}

// Список тегов пользователя
// (GET /tags).
func (s *Server) listTags(w http.ResponseWriter, r *http.Request) {
	u, ok := userFrom(r.Context())
	if !ok {
		handleError(w, authservice.ErrBadCredentials)

		return
	}

	tags, err := s.taxonomyService.ListTags(r.Context(), u.ID, assignedOnly(r))
	if err != nil {
		handleError(w, fmt.Errorf("list tags error: %w", err))

		return
	}

	writeJSON(w, http.StatusOK, tags)
}

// Создание тега
// (POST /tags).
func (s *Server) createTag(w http.ResponseWriter, r *http.Request) {
	u, ok := userFrom(r.Context())
	if !ok {
		handleError(w, authservice.ErrBadCredentials)

		return
	}

	var req createLabelRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleErrorCode(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	tag, err := s.taxonomyService.CreateTag(r.Context(), u.ID, req.Name)
	if err != nil {
		handleError(w, fmt.Errorf("create tag error: %w", err))

		return
	}

	writeJSON(w, http.StatusCreated, tag)
}

// Список ингредиентов пользователя
// (GET /ingredients).
func (s *Server) listIngredients(w http.ResponseWriter, r *http.Request) {
	u, ok := userFrom(r.Context())
	if !ok {
		handleError(w, authservice.ErrBadCredentials)

		return
	}

	ingredients, err := s.taxonomyService.ListIngredients(r.Context(), u.ID, assignedOnly(r))
	if err != nil {
		handleError(w, fmt.Errorf("list ingredients error: %w", err))

		return
	}

	writeJSON(w, http.StatusOK, ingredients)
}

// Создание ингредиента
// (POST /ingredients).
func (s *Server) createIngredient(w http.ResponseWriter, r *http.Request) {
	u, ok := userFrom(r.Context())
	if !ok {
		handleError(w, authservice.ErrBadCredentials)

		return
	}

	var req createLabelRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleErrorCode(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	ingredient, err := s.taxonomyService.CreateIngredient(r.Context(), u.ID, req.Name)
	if err != nil {
		handleError(w, fmt.Errorf("create ingredient error: %w", err))

		return
	}

	writeJSON(w, http.StatusCreated, ingredient)
}
