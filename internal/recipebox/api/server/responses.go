package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type CreateUserResponse struct {
	ID    int64  `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name"`
}

type AuthUserResponse struct {
	Token string `json:"token"`
}

type UploadImageResponse struct {
	ID       int64  `json:"id"`
	ImageURL string `json:"image_url"` //nolint:tagliatelle
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	bts, err := json.Marshal(v)
	if err != nil {
		handleError(w, fmt.Errorf("encode error: %w", err))

		return
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(code)
	w.Write(bts) //nolint:errcheck
}
