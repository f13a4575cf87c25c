package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/trustissue/trustissue/internal/trustissue/middleware"
	"github.com/trustissue/trustissue/internal/trustissue/service"
	"github.com/trustissue/trustissue/internal/trustissue/storage"
)

// maxUploadSize bounds multipart form parsing.
const maxUploadSize = 32 << 20

// Handler handles all HTTP requests
type Handler struct {
	Accounts    *service.Accounts
	Products    *service.Products
	Interests   *service.Interests
	Withdrawals *service.Withdrawals
	Files       *storage.FileStore
	JWTSecret   string
}

// NewHandler creates a new handler
func NewHandler(accounts *service.Accounts, products *service.Products, interests *service.Interests, withdrawals *service.Withdrawals, files *storage.FileStore, jwtSecret string) *Handler {
	return &Handler{
		Accounts:    accounts,
		Products:    products,
		Interests:   interests,
		Withdrawals: withdrawals,
		Files:       files,
		JWTSecret:   jwtSecret,
	}
}

// writeJSON writes v as a JSON response
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeMessage writes a JSON body with a single message field
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

// writeError maps service errors onto the HTTP error taxonomy
func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, service.ErrInvalidInput),
		errors.Is(err, service.ErrConflict),
		errors.Is(err, service.ErrInsufficientBalance):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		writeMessage(w, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrUnauthorized):
		writeMessage(w, http.StatusUnauthorized, err.Error())
	default:
		log.Printf("internal error: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Server error")
	}
}

// idParam parses a numeric chi URL parameter
func idParam(r *http.Request, name string) (int64, error) {
	return strconv.ParseInt(chi.URLParam(r, name), 10, 64)
}

// caller returns the authenticated identity injected by the role guard
func caller(r *http.Request) (middleware.Identity, bool) {
	return middleware.IdentityFromContext(r.Context())
}
