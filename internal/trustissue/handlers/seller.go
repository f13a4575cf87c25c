package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/trustissue/trustissue/internal/trustissue/service"
	"github.com/trustissue/trustissue/internal/trustissue/storage"
)

// productFields extracts listing fields from a multipart form, saving the
// optional file attachment.
func (h *Handler) productFields(r *http.Request) (service.ProductFields, error) {
	var fields service.ProductFields

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		return fields, err
	}

	fields.Name = r.FormValue("name")
	fields.Description = r.FormValue("description")
	fields.Category = r.FormValue("category")

	if priceStr := r.FormValue("price"); priceStr != "" {
		price, err := strconv.ParseFloat(priceStr, 64)
		if err != nil {
			return fields, err
		}
		fields.Price = price
	}

	file, header, err := r.FormFile("file")
	if err == nil {
		defer file.Close()
		url, err := h.Files.Save(storage.KindProducts, header.Filename, file)
		if err != nil {
			return fields, err
		}
		fields.FileURL = url
	}

	return fields, nil
}

// UploadProduct creates a pending listing
func (h *Handler) UploadProduct(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	fields, err := h.productFields(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Bad request")
		return
	}

	product, err := h.Products.Create(r.Context(), identity.AccountID, fields)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, product)
}

// SellerProducts lists the seller's own products, newest first
func (h *Handler) SellerProducts(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	products, err := h.Products.ListSeller(r.Context(), identity.AccountID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, products)
}

// EditProduct updates a listing's content fields, ownership-scoped
func (h *Handler) EditProduct(w http.ResponseWriter, r *http.Request) {
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

	fields, err := h.productFields(r)
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Bad request")
		return
	}

	product, err := h.Products.Edit(r.Context(), identity.AccountID, id, fields)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a listing, ownership-scoped
func (h *Handler) DeleteProduct(w http.ResponseWriter, r *http.Request) {
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

	if err := h.Products.Delete(r.Context(), identity.AccountID, id); err != nil {
		writeError(w, err)
		return
	}

	writeMessage(w, http.StatusOK, "Product deleted successfully")
}

// SellerInterests lists interests on the seller's products (read-only)
func (h *Handler) SellerInterests(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	interests, err := h.Interests.ListForSeller(r.Context(), identity.AccountID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, interests)
}

// SellerBalance returns the seller's current balance
func (h *Handler) SellerBalance(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	balance, err := h.Accounts.Balance(r.Context(), identity.AccountID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]float64{"balance": balance})
}

// RequestWithdrawal reserves balance and records a pending withdrawal
func (h *Handler) RequestWithdrawal(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	var req struct {
		Amount float64 `json:"amount"`
	}

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Bad request")
		return
	}

	withdrawal, err := h.Withdrawals.Request(r.Context(), identity.AccountID, req.Amount)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, withdrawal)
}

// SellerWithdrawals lists the seller's withdrawal history
func (h *Handler) SellerWithdrawals(w http.ResponseWriter, r *http.Request) {
	identity, ok := caller(r)
	if !ok {
		writeMessage(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	withdrawals, err := h.Withdrawals.ListSeller(r.Context(), identity.AccountID)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, withdrawals)
}
