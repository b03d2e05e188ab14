package handlers

import (
	"context"
	"net/http"

	"cardledger/internal/apperr"
	"cardledger/internal/middleware"
	"cardledger/internal/models"
	"cardledger/internal/services"

	"github.com/shopspring/decimal"
)

type postingRequest struct {
	CustomerID int64           `json:"customer_id"`
	CardNumber string          `json:"card_number"`
	Amount     decimal.Decimal `json:"amount"`
}

type postingFunc func(ctx context.Context, req services.PostingRequest) (models.CreditCard, error)

func (h *Handler) Debit(w http.ResponseWriter, r *http.Request) {
	h.post(w, r, h.postings.Debit, "Amount debited successfully")
}

func (h *Handler) Credit(w http.ResponseWriter, r *http.Request) {
	h.post(w, r, h.postings.Credit, "Amount credited successfully")
}

// post runs a posting on behalf of the caller. customer_id may be omitted;
// when given it must be the caller's own id.
func (h *Handler) post(w http.ResponseWriter, r *http.Request, apply postingFunc, message string) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.respondAppError(w, r, apperr.ErrUnauthorized)
		return
	}
	var req postingRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondAppError(w, r, err)
		return
	}
	if req.CustomerID == 0 {
		req.CustomerID = principal.CustomerID
	}
	if req.CustomerID != principal.CustomerID {
		h.respondAppError(w, r, apperr.Forbidden("cannot post to another customer's card"))
		return
	}
	amount, err := amountMinor(req.Amount)
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	card, err := apply(r.Context(), services.PostingRequest{
		CustomerID:  req.CustomerID,
		CardNumber:  req.CardNumber,
		AmountMinor: amount,
	})
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, message, card)
}
