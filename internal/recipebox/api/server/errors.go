package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/Leopold1975/recipebox/internal/recipebox/services/authservice"
	"github.com/Leopold1975/recipebox/internal/recipebox/services/recipeservice"
	"github.com/Leopold1975/recipebox/internal/recipebox/services/taxonomyservice"
)

type Error struct {
	Err string `json:"error"`
}

func (se Error) ToJSON() []byte {
	b, err := json.Marshal(se)
	if err != nil {
		se.Err = err.Error()

		b, err := json.Marshal(se)
		if err != nil {
			return []byte(`{
				"error": "marshal error"
			  }`)
		}

		return b
	}

	return b
}

// statusFromError maps the service error taxonomy onto status codes.
// Not-found deliberately covers rows owned by another user, so a
// cross-user lookup is indistinguishable from a missing id.
func statusFromError(err error) int {
	switch {
	case errors.Is(err, authservice.ErrEmailRequired),
		errors.Is(err, authservice.ErrPasswordTooShort),
		errors.Is(err, authservice.ErrEmailTaken),
		errors.Is(err, taxonomyservice.ErrEmptyName),
		errors.Is(err, recipeservice.ErrInvalidFilter),
		errors.Is(err, recipeservice.ErrEmptyTitle),
		errors.Is(err, recipeservice.ErrNegativeValue),
		errors.Is(err, recipeservice.ErrUnknownRelation),
		errors.Is(err, recipeservice.ErrIncompleteInput),
		errors.Is(err, recipeservice.ErrNotAnImage):
		return http.StatusBadRequest
	case errors.Is(err, authservice.ErrBadCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, authservice.ErrNotFound),
		errors.Is(err, recipeservice.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

func handleError(w http.ResponseWriter, err error) {
	handleErrorCode(w, err, statusFromError(err))
}

func handleErrorCode(w http.ResponseWriter, err error, code int) {
	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(code)

	e := Error{err.Error()}

	w.Write(e.ToJSON()) //nolint:errcheck
}

func methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	handleErrorCode(w, errors.New("method not allowed"), http.StatusMethodNotAllowed)
}
