package handlers

import (
	"net/http"

	"cardledger/internal/services"
)

func (h *Handler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.customers.List(r.Context())
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Customers retrieved successfully", customers)
}

func (h *Handler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	customer, err := h.customers.Get(r.Context(), id)
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Customer retrieved successfully", customer)
}

func (h *Handler) UpdateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	var req services.UpdateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondAppError(w, r, err)
		return
	}
	customer, err := h.customers.Update(r.Context(), id, req)
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Customer updated successfully", customer)
}

func (h *Handler) DeleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	if err := h.customers.Delete(r.Context(), id); err != nil {
		h.respondAppError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Customer deleted successfully", nil)
}
