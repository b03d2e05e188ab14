package handlers

import (
	"net/http"

	"cardledger/internal/apperr"
	"cardledger/internal/middleware"
	"cardledger/internal/services"
)

func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req services.CreateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondAppError(w, r, err)
		return
	}
	customer, err := h.auth.Register(r.Context(), req)
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Customer created successfully", customer)
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
	ExpiresIn int64  `json:"expires_in"`
}

func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		h.respondAppError(w, r, err)
		return
	}
	token, err := h.auth.Login(r.Context(), req.Username, req.Password)
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Login successful", loginResponse{
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: int64(h.cfg.TokenTTL.Seconds()),
	})
}

func (h *Handler) Me(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.PrincipalFromContext(r.Context())
	if !ok {
		h.respondAppError(w, r, apperr.ErrUnauthorized)
		return
	}
	customer, err := h.customers.Get(r.Context(), principal.CustomerID)
	if err != nil {
		h.respondAppError(w, r, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Customer retrieved successfully", customer)
}
