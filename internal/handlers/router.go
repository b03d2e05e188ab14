package handlers

import (
	"log/slog"
	"net/http"
	"strings"

	"cardledger/internal/config"
	"cardledger/internal/middleware"
	"cardledger/internal/models"
	"cardledger/internal/websocket"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

type Handler struct {
	cfg       config.Config
	customers CustomerService
	cards     CardService
	postings  PostingService
	auth      AuthService
	audit     AuditStore
	hub       *websocket.Hub
	logger    *slog.Logger
}

func New(cfg config.Config, customers CustomerService, cards CardService, postings PostingService, auth AuthService, audit AuditStore, hub *websocket.Hub, logger *slog.Logger) *Handler {
	return &Handler{
		cfg:       cfg,
		customers: customers,
		cards:     cards,
		postings:  postings,
		auth:      auth,
		audit:     audit,
		hub:       hub,
		logger:    logger,
	}
}

func (h *Handler) Routes() http.Handler {
	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(chimiddleware.Logger)
	router.Use(chimiddleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(h.cfg.AllowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	authenticated := middleware.Auth(h.cfg.JWTSecret)
	userOnly := middleware.RequireRole(models.RoleUser)
	anyRole := middleware.RequireRole(models.RoleUser, models.RoleAdmin)

	router.Route("/api", func(r chi.Router) {
		r.Route("/auth", func(r chi.Router) {
			r.Post("/register", h.Register)
			r.Post("/login", h.Login)
			r.With(authenticated).Get("/me", h.Me)
		})

		r.Route("/customers", func(r chi.Router) {
			r.Use(authenticated, anyRole)
			r.Get("/all", h.ListCustomers)
			r.Get("/{id}", h.GetCustomer)
			r.Put("/{id}/update", h.UpdateCustomer)
			r.Delete("/{id}/delete", h.DeleteCustomer)
		})

		r.Route("/creditcards", func(r chi.Router) {
			r.Use(authenticated)
			r.With(userOnly).Post("/", h.CreateCard)
			r.With(userOnly).Post("/debit", h.Debit)
			r.With(userOnly).Post("/credit", h.Credit)
			r.With(anyRole).Get("/customer/{customerId}", h.ListCardsForCustomer)
			r.With(anyRole).Get("/{cardId}", h.GetCard)
			r.With(userOnly).Put("/{cardId}", h.UpdateCard)
			r.With(userOnly).Delete("/{cardId}", h.DeleteCard)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Use(authenticated, userOnly)
			r.Get("/user/{userId}", h.ListCustomerTransactions)
			r.Get("/user/{userId}/credits", h.ListCustomerCredits)
			r.Get("/user/{userId}/debits", h.ListCustomerDebits)
			r.Get("/card/{cardId}", h.ListCardTransactions)
		})

		r.Route("/admin", func(r chi.Router) {
			r.Use(authenticated, middleware.RequireRole(models.RoleAdmin))
			r.Get("/audit", h.ListAuditLogs)
		})
	})

	router.Get("/ws/balances", h.WSBalances)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	return router
}

func allowedOrigins(raw string) []string {
	var origins []string
	for _, origin := range strings.Split(raw, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	if len(origins) == 0 {
		return []string{"*"}
	}
	return origins
}
