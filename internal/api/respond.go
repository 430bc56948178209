package api

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"github.com/example/ec-storefront/internal/api/middleware"
	"github.com/example/ec-storefront/internal/apperror"
)

const maxJSONBody = 1 << 20

func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("[API] Failed to encode response: %v", err)
	}
}

func respondJSONError(w http.ResponseWriter, message string, status int) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondError maps err to a status code. Storage failures are logged and
// reported without their driver details.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperror.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		log.Printf("[API] %s %s failed: %v", r.Method, r.URL.Path, err)
		if errors.Is(err, apperror.ErrStorage) {
			respondJSONError(w, "storage failure", status)
			return
		}
		respondJSONError(w, "internal error", status)
		return
	}
	respondJSONError(w, err.Error(), status)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxJSONBody))
	if err := dec.Decode(dst); err != nil {
		return apperror.Validation("invalid request body")
	}
	return nil
}

// getUserID returns the authenticated user, or "" for anonymous requests.
func getUserID(r *http.Request) string {
	return middleware.GetUserID(r.Context())
}

func respondLogOnly(r *http.Request, err error) {
	log.Printf("[API] %s %s failed after response started: %v", r.Method, r.URL.Path, err)
}
