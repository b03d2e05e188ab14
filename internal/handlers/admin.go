package handlers

import (
	"net/http"
	"strings"

	"cardledger/internal/apperr"
	"cardledger/internal/auth"
	"cardledger/internal/websocket"
)

const maxAuditPageSize = 200

func (h *Handler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := parseInt(query.Get("limit"), 50)
	if limit > maxAuditPageSize {
		limit = maxAuditPageSize
	}
	page := parseInt(query.Get("page"), 1)
	offset := (page - 1) * limit
	logs, err := h.audit.List(r.Context(), limit, offset)
	if err != nil {
		h.respondAppError(w, r, apperr.Internal("unable to load audit logs", err))
		return
	}
	respondSuccess(w, http.StatusOK, "Audit logs retrieved successfully", logs)
}

// WSBalances streams balance updates for the token's customer. Browsers
// cannot set headers on websocket requests, so the token may come from the
// query string.
func (h *Handler) WSBalances(w http.ResponseWriter, r *http.Request) {
	token := r.URL.Query().Get("token")
	if token == "" {
		authHeader := r.Header.Get("Authorization")
		if strings.HasPrefix(authHeader, "Bearer ") {
			token = strings.TrimPrefix(authHeader, "Bearer ")
		}
	}
	if token == "" {
		respondError(w, http.StatusUnauthorized, apperr.KindUnauthorized, "missing token")
		return
	}
	claims, err := auth.ParseToken(h.cfg.JWTSecret, token)
	if err != nil {
		respondError(w, http.StatusUnauthorized, apperr.KindUnauthorized, "invalid token")
		return
	}
	websocket.ServeWS(w, r, h.hub, claims.CustomerID)
}
