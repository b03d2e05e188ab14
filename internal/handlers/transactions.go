package handlers

import (
	"net/http"

	"cardledger/internal/models"
)

func (h *Handler) ListCustomerTransactions(w http.ResponseWriter, r *http.Request) {
	h.listCustomerTransactions(w, r, r.URL.Query().Get("type"))
}

func (h *Handler) ListCustomerCredits(w http.ResponseWriter, r *http.Request) {
	h.listCustomerTransactions(w, r, string(models.TransactionCredit))
}

func (h *Handler) ListCustomerDebits(w http.ResponseWriter, r *http.Request) {
	h.listCustomerTransactions(w, r, string(models.TransactionDebit))
}

func (h *Handler) listCustomerTransactions(w http.ResponseWriter, r *http.Request, txType string) {
	id, err := pathID(r, "userId")
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	txns, err := h.customers.ListTransactionsForCustomer(r.Context(), id, txType)
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Transactions retrieved successfully", txns)
}

func (h *Handler) ListCardTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "cardId")
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	txns, err := h.customers.ListTransactionsForCard(r.Context(), id, r.URL.Query().Get("type"))
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Transactions retrieved successfully", txns)
}
