package handlers

import (
	"net/http"

	"cardledger/internal/services"
	"cardledger/internal/validator"

	"github.com/shopspring/decimal"
)

type createCardRequest struct {
	CustomerID     int64           `json:"customer_id" validate:"required,gt=0"`
	InitialBalance decimal.Decimal `json:"initial_balance"`
	CardType       string          `json:"card_type" validate:"required,max=30"`
	Active         *bool           `json:"active"`
}

func (h *Handler) CreateCard(w http.ResponseWriter, r *http.Request) {
	var req createCardRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondAppError(w, r, err)
		return
	}
	if err := validator.Struct(req); err != nil {
		h.respondAppError(w, r, err)
		return
	}
	balance, err := amountMinor(req.InitialBalance)
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	active := true
	if req.Active != nil {
		active = *req.Active
	}
	card, err := h.cards.Create(r.Context(), services.CreateCardRequest{
		CustomerID:     req.CustomerID,
		InitialBalance: balance,
		CardType:       req.CardType,
		Active:         active,
	})
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Credit card created successfully", card)
}

func (h *Handler) GetCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "cardId")
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	card, err := h.cards.Get(r.Context(), id)
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Credit card retrieved successfully", card)
}

func (h *Handler) ListCardsForCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "customerId")
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	cards, err := h.cards.ListForCustomer(r.Context(), id)
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Credit cards retrieved successfully", cards)
}

type updateCardRequest struct {
	CardHolderName string `json:"card_holder_name" validate:"required,max=100"`
}

func (h *Handler) UpdateCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "cardId")
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	var req updateCardRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondAppError(w, r, err)
		return
	}
	if err := validator.Struct(req); err != nil {
		h.respondAppError(w, r, err)
		return
	}
	card, err := h.cards.Update(r.Context(), id, req.CardHolderName)
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Credit card updated successfully", card)
}

func (h *Handler) DeleteCard(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "cardId")
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	if err := h.cards.Delete(r.Context(), id); err != nil {
		h.respondAppError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Credit card deleted successfully", nil)
}
