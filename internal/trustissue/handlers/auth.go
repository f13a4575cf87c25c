package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/trustissue/trustissue/internal/trustissue/middleware"
	"github.com/trustissue/trustissue/internal/trustissue/models"
)

// Signup registers a buyer or seller account
func (h *Handler) Signup(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Bad request")
		return
	}

	account, err := h.Accounts.Signup(r.Context(), req.Name, req.Email, req.Password, models.Role(req.Role))
	if err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusCreated, string(account.Role)+" registered successfully")
}

// Login checks credentials for a role and issues a bearer token
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Role     string `json:"role"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Bad request")
		return
	}

	account, err := h.Accounts.Login(r.Context(), models.Role(req.Role), req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	token, err := middleware.GenerateToken(account, h.JWTSecret)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Login successful",
		"token":   token,
		"role":    string(account.Role),
	})
}
