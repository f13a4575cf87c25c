package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/trustissue/trustissue/internal/trustissue/models"
)

// PendingProducts lists the product review queue
func (h *Handler) PendingProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Products.ListPending(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// VerifyProduct records an approve/reject decision on a pending product
func (h *Handler) VerifyProduct(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := idParam(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid product id")
		return
	}

	var req struct {
		Action string `json:"action"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Bad request")
		return
	}

	product, err := h.Products.Review(r.Context(), identity.AccountID, id, req.Action)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// PendingInterests lists the feature review queue
func (h *Handler) PendingInterests(w http.ResponseWriter, r *http.Request) {
	interests, err := h.Interests.ListPendingReview(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, interests)
}

// VerifyInterest records per-feature attestations and the derived status
func (h *Handler) VerifyInterest(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := idParam(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid interest id")
		return
	}

	var req struct {
		FeatureStatus []models.FeatureCheck `json:"feature_status"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Bad request")
		return
	}

	interest, err := h.Interests.Review(r.Context(), identity.AccountID, id, req.FeatureStatus)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, interest)
}

// PaymentUploads lists the payment confirmation queue
func (h *Handler) PaymentUploads(w http.ResponseWriter, r *http.Request) {
	interests, err := h.Interests.ListUploadedPayments(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, interests)
}

// ConfirmPayment records the verifier's decision on an uploaded proof
func (h *Handler) ConfirmPayment(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r, "id")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid interest id")
		return
	}

	var req struct {
		Action string `json:"action"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Bad request")
		return
	}

	interest, err := h.Interests.ConfirmPayment(r.Context(), id, req.Action)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, interest)
}
