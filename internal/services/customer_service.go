package services

import (
	"context"
	"log/slog"
	"strconv"
	"strings"

	"cardledger/internal/apperr"
	"cardledger/internal/auth"
	"cardledger/internal/db"
	"cardledger/internal/models"
	"cardledger/internal/validator"

	"github.com/jmoiron/sqlx"
)

type CustomerService struct {
	txRunner     db.TxRunner
	customers    CustomerStore
	cards        CardStore
	transactions TransactionStore
	audit        AuditStore
	logger       *slog.Logger
	hash         func(string) (string, error)
}

func NewCustomerService(txRunner db.TxRunner, customers CustomerStore, cards CardStore, transactions TransactionStore, audit AuditStore, logger *slog.Logger) *CustomerService {
	return &CustomerService{
		txRunner:     txRunner,
		customers:    customers,
		cards:        cards,
		transactions: transactions,
		audit:        audit,
		logger:       logger,
		hash:         auth.HashPassword,
	}
}

type CreateCustomerRequest struct {
	Username    string `json:"username" validate:"required,username"`
	Password    string `json:"password" validate:"required,password"`
	Name        string `json:"name" validate:"required,max=100"`
	PhoneNumber string `json:"phone_number" validate:"omitempty,max=20"`
	Email       string `json:"email" validate:"omitempty,email"`
	Role        string `json:"role" validate:"omitempty,oneof=USER ADMIN"`
}

// UpdateCustomerRequest leaves nil fields unchanged.
type UpdateCustomerRequest struct {
	Username    *string `json:"username" validate:"omitempty,username"`
	Password    *string `json:"password" validate:"omitempty,password"`
	Name        *string `json:"name" validate:"omitempty,max=100"`
	PhoneNumber *string `json:"phone_number" validate:"omitempty,max=20"`
	Email       *string `json:"email" validate:"omitempty,email"`
}

func (s *CustomerService) Create(ctx context.Context, req CreateCustomerRequest) (models.Customer, error) {
	req.Username = strings.TrimSpace(req.Username)
	req.Name = strings.TrimSpace(req.Name)
	if req.Role == "" {
		req.Role = models.RoleUser
	}
	if err := validator.Struct(req); err != nil {
		return models.Customer{}, err
	}
	hash, err := s.hash(req.Password)
	if err != nil {
		return models.Customer{}, apperr.Internal("failed to hash password", err)
	}
	var created models.Customer
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		row, err := s.customers.Create(ctx, tx, models.Customer{
			Username:     req.Username,
			PasswordHash: hash,
			Name:         req.Name,
			PhoneNumber:  req.PhoneNumber,
			Email:        req.Email,
			Role:         req.Role,
		})
		if err != nil {
			if db.IsUniqueViolation(err) {
				return apperr.Conflict("Username already exists")
			}
			return err
		}
		created = row
		return s.audit.Log(ctx, tx, int64Ptr(row.ID), "customer.create", "customer", strconv.FormatInt(row.ID, 10), auditDetails(map[string]any{
			"username": row.Username,
			"role":     row.Role,
		}))
	})
	if err != nil {
		return models.Customer{}, asInternal(err, "failed to create customer")
	}
	s.logger.Info("customer created", "customer_id", created.ID, "username", created.Username)
	return created, nil
}

func (s *CustomerService) Update(ctx context.Context, customerID int64, req UpdateCustomerRequest) (models.Customer, error) {
	if err := validator.Struct(req); err != nil {
		return models.Customer{}, err
	}
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return models.Customer{}, notFoundOr(err, "Customer not found", "failed to load customer")
	}
	if req.Username != nil {
		customer.Username = strings.TrimSpace(*req.Username)
	}
	if req.Name != nil {
		customer.Name = strings.TrimSpace(*req.Name)
	}
	if req.PhoneNumber != nil {
		customer.PhoneNumber = *req.PhoneNumber
	}
	if req.Email != nil {
		customer.Email = *req.Email
	}
	if req.Password != nil {
		hash, err := s.hash(*req.Password)
		if err != nil {
			return models.Customer{}, apperr.Internal("failed to hash password", err)
		}
		customer.PasswordHash = hash
	}
	err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.customers.Update(ctx, tx, customer)
		if err != nil {
			if db.IsUniqueViolation(err) {
				return apperr.Conflict("Username already exists")
			}
			return err
		}
		if rows == 0 {
			return apperr.NotFound("Customer not found")
		}
		return s.audit.Log(ctx, tx, int64Ptr(customerID), "customer.update", "customer", strconv.FormatInt(customerID, 10), "")
	})
	if err != nil {
		return models.Customer{}, asInternal(err, "failed to update customer")
	}
	return s.Get(ctx, customerID)
}

// Delete removes the customer along with every card and transaction they own.
func (s *CustomerService) Delete(ctx context.Context, customerID int64) error {
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.customers.Delete(ctx, tx, customerID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperr.NotFound("Customer not found")
		}
		return s.audit.Log(ctx, tx, nil, "customer.delete", "customer", strconv.FormatInt(customerID, 10), "")
	})
	if err != nil {
		return asInternal(err, "failed to delete customer")
	}
	s.logger.Info("customer deleted", "customer_id", customerID)
	return nil
}

// Get returns the customer with their cards attached.
func (s *CustomerService) Get(ctx context.Context, customerID int64) (models.Customer, error) {
	customer, err := s.customers.GetByID(ctx, customerID)
	if err != nil {
		return models.Customer{}, notFoundOr(err, "Customer not found", "failed to load customer")
	}
	cards, err := s.cards.ListByCustomer(ctx, customerID)
	if err != nil {
		return models.Customer{}, asInternal(err, "failed to list cards")
	}
	customer.Cards = cards
	return customer, nil
}

func (s *CustomerService) List(ctx context.Context) ([]models.Customer, error) {
	customers, err := s.customers.List(ctx)
	if err != nil {
		return nil, asInternal(err, "failed to list customers")
	}
	for i := range customers {
		cards, err := s.cards.ListByCustomer(ctx, customers[i].ID)
		if err != nil {
			return nil, asInternal(err, "failed to list cards")
		}
		customers[i].Cards = cards
	}
	return customers, nil
}

// ListTransactionsForCustomer flattens the transactions of every card the
// customer owns. txType is matched ignoring case; empty means all.
func (s *CustomerService) ListTransactionsForCustomer(ctx context.Context, customerID int64, txType string) ([]models.Transaction, error) {
	filter, ok := models.ParseTransactionType(txType)
	if !ok {
		return nil, apperr.Validation("transaction type must be CREDIT or DEBIT")
	}
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return nil, notFoundOr(err, "User not found", "failed to load customer")
	}
	txns, err := s.transactions.ListByCustomer(ctx, customerID, filter)
	if err != nil {
		return nil, asInternal(err, "failed to list transactions")
	}
	return txns, nil
}

func (s *CustomerService) ListTransactionsForCard(ctx context.Context, cardID int64, txType string) ([]models.Transaction, error) {
	filter, ok := models.ParseTransactionType(txType)
	if !ok {
		return nil, apperr.Validation("transaction type must be CREDIT or DEBIT")
	}
	if _, err := s.cards.GetByID(ctx, cardID); err != nil {
		return nil, notFoundOr(err, "Card not found", "failed to load card")
	}
	txns, err := s.transactions.ListByCard(ctx, cardID, filter)
	if err != nil {
		return nil, asInternal(err, "failed to list transactions")
	}
	return txns, nil
}
