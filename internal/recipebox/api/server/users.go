package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Leopold1975/recipebox/internal/recipebox/services/authservice"
)

// Регистрация пользователя
// (POST /users).
func (s *Server) createUser(w http.ResponseWriter, r *http.Request) {
	var req authservice.CreateUserRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleErrorCode(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	u, err := s.authService.Register(r.Context(), req)
	if err != nil {
		handleError(w, fmt.Errorf("create user error: %w", err))

		return
	}

	resp := CreateUserResponse{
		ID:    u.ID,
		Email: u.Email,
		Name:  u.Name,
	}

	writeJSON(w, http.StatusCreated, resp)
}

// Обмен учетных данных на токен
// (POST /users/token).
func (s *Server) createToken(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleErrorCode(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	token, err := s.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		handleError(w, fmt.Errorf("login error: %w", err))

		return
	}

	writeJSON(w, http.StatusOK, AuthUserResponse{Token: token})
}

// Профиль текущего пользователя
// (GET /users/me).
func (s *Server) getProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := userFrom(r.Context())
	if !ok {
		handleError(w, authservice.ErrBadCredentials)

		return
	}

	writeJSON(w, http.StatusOK, u.Profile())
}

// Частичное обновление профиля
// (PATCH /users/me).
func (s *Server) updateProfile(w http.ResponseWriter, r *http.Request) {
	u, ok := userFrom(r.Context())
	if !ok {
		handleError(w, authservice.ErrBadCredentials)

		return
	}

	var req authservice.UpdateProfileRequest

	dec := json.NewDecoder(r.Body)

	if err := dec.Decode(&req); err != nil {
		handleErrorCode(w, fmt.Errorf("decode error: %w", err), http.StatusBadRequest)

		return
	}

	updated, err := s.authService.UpdateProfile(r.Context(), u.ID, req)
	if err != nil {
		handleError(w, fmt.Errorf("update profile error: %w", err))

		return
	}

	writeJSON(w, http.StatusOK, updated.Profile())
}
