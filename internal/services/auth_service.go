package services

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"
	"time"

	"cardledger/internal/apperr"
	"cardledger/internal/auth"
	"cardledger/internal/models"
)

var ErrInvalidCredentials = apperr.Unauthorized("Invalid credentials")

// Registrar creates customer accounts; CustomerService satisfies it.
type Registrar interface {
	Create(ctx context.Context, req CreateCustomerRequest) (models.Customer, error)
}

type AuthService struct {
	customers CustomerStore
	registrar Registrar
	secret    string
	tokenTTL  time.Duration
	logger    *slog.Logger
}

func NewAuthService(customers CustomerStore, registrar Registrar, secret string, tokenTTL time.Duration, logger *slog.Logger) *AuthService {
	return &AuthService{
		customers: customers,
		registrar: registrar,
		secret:    secret,
		tokenTTL:  tokenTTL,
		logger:    logger,
	}
}

func (s *AuthService) Register(ctx context.Context, req CreateCustomerRequest) (models.Customer, error) {
	return s.registrar.Create(ctx, req)
}

// Login returns a bearer token. Unknown usernames and wrong passwords fail
// the same way.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	username = strings.TrimSpace(username)
	if username == "" || password == "" {
		return "", ErrInvalidCredentials
	}
	customer, err := s.customers.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.logger.Warn("login failed", "username", username, "reason", "unknown user")
			return "", ErrInvalidCredentials
		}
		return "", apperr.Internal("failed to load customer", err)
	}
	if !auth.CheckPassword(customer.PasswordHash, password) {
		s.logger.Warn("login failed", "username", username, "reason", "bad password")
		return "", ErrInvalidCredentials
	}
	token, err := auth.GenerateToken(s.secret, customer.ID, customer.Role, s.tokenTTL)
	if err != nil {
		return "", apperr.Internal("failed to issue token", err)
	}
	s.logger.Info("login succeeded", "customer_id", customer.ID)
	return token, nil
}
