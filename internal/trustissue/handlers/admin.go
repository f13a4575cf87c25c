package handlers

import (
	"encoding/json"
	"net/http"
)

// CreateVerifier registers a verifier account
func (h *Handler) CreateVerifier(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Bad request")
		return
	}

	verifier, err := h.Accounts.CreateVerifier(r.Context(), identity.AccountID, req.Name, req.Email, req.Password)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, verifier)
}

// ListVerifiers lists all verifier accounts
func (h *Handler) ListVerifiers(w http.ResponseWriter, r *http.Request) {
	verifiers, err := h.Accounts.ListVerifiers(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, verifiers)
}

// EditVerifier updates a verifier account
func (h *Handler) EditVerifier(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid verifier id")
		return
	}

	var req struct {
		Name     string `json:"name"`
		Email    string `json:"email"`
		Password string `json:"password"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Bad request")
		return
	}

	if err := h.Accounts.UpdateVerifier(r.Context(), id, req.Name, req.Email, req.Password); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Verifier updated successfully")
}

// DeleteVerifier removes a verifier account
func (h *Handler) DeleteVerifier(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid verifier id")
		return
	}

	if err := h.Accounts.DeleteVerifier(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Verifier deleted successfully")
}

// AllProducts lists every product, optionally filtered by status
func (h *Handler) AllProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Products.ListAll(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// PendingWithdrawals lists the admin withdrawal queue
func (h *Handler) PendingWithdrawals(w http.ResponseWriter, r *http.Request) {
	withdrawals, err := h.Withdrawals.ListPending(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, withdrawals)
}

// ReviewWithdrawal records the admin decision on a pending withdrawal
func (h *Handler) ReviewWithdrawal(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid withdrawal id")
		return
	}

	var req struct {
		Action string `json:"action"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Bad request")
		return
	}

	withdrawal, err := h.Withdrawals.Review(r.Context(), id, req.Action)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, withdrawal)
}

// CreditSeller adds funds to a seller balance, the explicit fund-entry path
func (h *Handler) CreditSeller(w http.ResponseWriter, r *http.Request) {
	var req struct {
		SellerID int64   `json:"seller_id"`
		Amount   float64 `json:"amount"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Bad request")
		return
	}

	if err := h.Accounts.CreditSeller(r.Context(), req.SellerID, req.Amount); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Seller balance credited")
}
