package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http/httptest"
	"testing"
	"time"

	"cardledger/internal/auth"
	"cardledger/internal/config"
	"cardledger/internal/models"
	"cardledger/internal/services"
	"cardledger/internal/websocket"
)

const testSecret = "secret"

type stubCustomerService struct {
	createFn         func(ctx context.Context, req services.CreateCustomerRequest) (models.Customer, error)
	updateFn         func(ctx context.Context, customerID int64, req services.UpdateCustomerRequest) (models.Customer, error)
	deleteFn         func(ctx context.Context, customerID int64) error
	getFn            func(ctx context.Context, customerID int64) (models.Customer, error)
	listFn           func(ctx context.Context) ([]models.Customer, error)
	listByCustomerFn func(ctx context.Context, customerID int64, txType string) ([]models.Transaction, error)
	listByCardFn     func(ctx context.Context, cardID int64, txType string) ([]models.Transaction, error)
}

func (s stubCustomerService) Create(ctx context.Context, req services.CreateCustomerRequest) (models.Customer, error) {
	if s.createFn == nil {
		return models.Customer{}, nil
	}
	return s.createFn(ctx, req)
}

func (s stubCustomerService) Update(ctx context.Context, customerID int64, req services.UpdateCustomerRequest) (models.Customer, error) {
	if s.updateFn == nil {
		return models.Customer{ID: customerID}, nil
	}
	return s.updateFn(ctx, customerID, req)
}

func (s stubCustomerService) Delete(ctx context.Context, customerID int64) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, customerID)
}

func (s stubCustomerService) Get(ctx context.Context, customerID int64) (models.Customer, error) {
	if s.getFn == nil {
		return models.Customer{ID: customerID}, nil
	}
	return s.getFn(ctx, customerID)
}

func (s stubCustomerService) List(ctx context.Context) ([]models.Customer, error) {
	if s.listFn == nil {
		return []models.Customer{}, nil
	}
	return s.listFn(ctx)
}

func (s stubCustomerService) ListTransactionsForCustomer(ctx context.Context, customerID int64, txType string) ([]models.Transaction, error) {
	if s.listByCustomerFn == nil {
		return []models.Transaction{}, nil
	}
	return s.listByCustomerFn(ctx, customerID, txType)
}

func (s stubCustomerService) ListTransactionsForCard(ctx context.Context, cardID int64, txType string) ([]models.Transaction, error) {
	if s.listByCardFn == nil {
		return []models.Transaction{}, nil
	}
	return s.listByCardFn(ctx, cardID, txType)
}

type stubCardService struct {
	createFn func(ctx context.Context, req services.CreateCardRequest) (models.CreditCard, error)
	updateFn func(ctx context.Context, cardID int64, holderName string) (models.CreditCard, error)
	deleteFn func(ctx context.Context, cardID int64) error
	getFn    func(ctx context.Context, cardID int64) (models.CreditCard, error)
	listFn   func(ctx context.Context, customerID int64) ([]models.CreditCard, error)
}

func (s stubCardService) Create(ctx context.Context, req services.CreateCardRequest) (models.CreditCard, error) {
	if s.createFn == nil {
		return models.CreditCard{ID: 1, CustomerID: req.CustomerID}, nil
	}
	return s.createFn(ctx, req)
}

func (s stubCardService) Update(ctx context.Context, cardID int64, holderName string) (models.CreditCard, error) {
	if s.updateFn == nil {
		return models.CreditCard{ID: cardID, CardHolderName: holderName}, nil
	}
	return s.updateFn(ctx, cardID, holderName)
}

func (s stubCardService) Delete(ctx context.Context, cardID int64) error {
	if s.deleteFn == nil {
		return nil
	}
	return s.deleteFn(ctx, cardID)
}

func (s stubCardService) Get(ctx context.Context, cardID int64) (models.CreditCard, error) {
	if s.getFn == nil {
		return models.CreditCard{ID: cardID}, nil
	}
	return s.getFn(ctx, cardID)
}

func (s stubCardService) ListForCustomer(ctx context.Context, customerID int64) ([]models.CreditCard, error) {
	if s.listFn == nil {
		return []models.CreditCard{}, nil
	}
	return s.listFn(ctx, customerID)
}

type stubPostingService struct {
	debitFn  func(ctx context.Context, req services.PostingRequest) (models.CreditCard, error)
	creditFn func(ctx context.Context, req services.PostingRequest) (models.CreditCard, error)
}

func (s stubPostingService) Debit(ctx context.Context, req services.PostingRequest) (models.CreditCard, error) {
	if s.debitFn == nil {
		return models.CreditCard{}, nil
	}
	return s.debitFn(ctx, req)
}

func (s stubPostingService) Credit(ctx context.Context, req services.PostingRequest) (models.CreditCard, error) {
	if s.creditFn == nil {
		return models.CreditCard{}, nil
	}
	return s.creditFn(ctx, req)
}

type stubAuthService struct {
	registerFn func(ctx context.Context, req services.CreateCustomerRequest) (models.Customer, error)
	loginFn    func(ctx context.Context, username, password string) (string, error)
}

func (s stubAuthService) Register(ctx context.Context, req services.CreateCustomerRequest) (models.Customer, error) {
	if s.registerFn == nil {
		return models.Customer{ID: 1, Username: req.Username}, nil
	}
	return s.registerFn(ctx, req)
}

func (s stubAuthService) Login(ctx context.Context, username, password string) (string, error) {
	if s.loginFn == nil {
		return "token", nil
	}
	return s.loginFn(ctx, username, password)
}

type stubAuditStore struct {
	listFn func(ctx context.Context, limit, offset int) ([]models.AuditLog, error)
}

func (s stubAuditStore) List(ctx context.Context, limit, offset int) ([]models.AuditLog, error) {
	if s.listFn == nil {
		return []models.AuditLog{}, nil
	}
	return s.listFn(ctx, limit, offset)
}

type testDeps struct {
	customers stubCustomerService
	cards     stubCardService
	postings  stubPostingService
	auth      stubAuthService
	audit     stubAuditStore
}

func newTestHandler(deps testDeps) *Handler {
	cfg := config.Config{
		AppEnv:         "test",
		Port:           "0",
		JWTSecret:      testSecret,
		TokenTTL:       time.Minute,
		AllowedOrigins: "*",
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(cfg, deps.customers, deps.cards, deps.postings, deps.auth, deps.audit, websocket.NewHub(), logger)
}

func tokenFor(t *testing.T, customerID int64, role string) string {
	t.Helper()
	token, err := auth.GenerateToken(testSecret, customerID, role, time.Minute)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	return token
}

// serve sends the request through the full router. An empty token sends no
// Authorization header.
func serve(t *testing.T, h *Handler, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal body: %v", err)
		}
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.Routes().ServeHTTP(rr, req)
	return rr
}

type testEnvelope struct {
	Status  string          `json:"status"`
	Message string          `json:"message"`
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
}

func decodeEnvelope(t *testing.T, rr *httptest.ResponseRecorder) testEnvelope {
	t.Helper()
	var env testEnvelope
	if err := json.NewDecoder(rr.Body).Decode(&env); err != nil {
		t.Fatalf("failed to decode response %q: %v", rr.Body.String(), err)
	}
	return env
}
