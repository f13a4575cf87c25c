package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/trustissue/trustissue/internal/trustissue/storage"
)

// ApprovedProducts lists the buyer-facing catalog
func (h *Handler) ApprovedProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.Products.ListApproved(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// ExpressInterest records a buyer's interest in an approved product
func (h *Handler) ExpressInterest(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		ProductID int64    `json:"product_id"`
		Features  []string `json:"features"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Bad request")
		return
	}

	interest, err := h.Interests.Express(r.Context(), identity.AccountID, req.ProductID, req.Features)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, interest)
}

// MyInterests lists all of the buyer's interests
func (h *Handler) MyInterests(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	interests, err := h.Interests.ListForBuyer(r.Context(), identity.AccountID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, interests)
}

// VerifiedProducts lists the buyer's verified interests, awaiting payment
func (h *Handler) VerifiedProducts(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	interests, err := h.Interests.ListVerifiedForBuyer(r.Context(), identity.AccountID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, interests)
}

// UploadPayment stores the buyer's payment proof for a verified interest
func (h *Handler) UploadPayment(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	id, err := idParam(r, "interestID")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid interest id")
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		writeMessage(w, http.StatusBadRequest, "Bad request")
		return
	}

	file, header, err := r.FormFile("proof")
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "No payment proof uploaded")
		return
	}
	defer file.Close()

	url, err := h.Files.Save(storage.KindPaymentProofs, header.Filename, file)
	if err != nil {
		writeError(w, err)
		return
	}

	interest, err := h.Interests.UploadProof(r.Context(), identity.AccountID, id, url)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, interest)
}

// MyPurchases lists the buyer's interests with a decided payment
func (h *Handler) MyPurchases(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	purchases, err := h.Interests.ListPurchases(r.Context(), identity.AccountID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, purchases)
}
