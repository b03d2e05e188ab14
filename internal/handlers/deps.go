package handlers

import (
	"context"

	"cardledger/internal/models"
	"cardledger/internal/services"
)

type CustomerService interface {
	Create(ctx context.Context, req services.CreateCustomerRequest) (models.Customer, error)
	Update(ctx context.Context, customerID int64, req services.UpdateCustomerRequest) (models.Customer, error)
	Delete(ctx context.Context, customerID int64) error
	Get(ctx context.Context, customerID int64) (models.Customer, error)
	List(ctx context.Context) ([]models.Customer, error)
	ListTransactionsForCustomer(ctx context.Context, customerID int64, txType string) ([]models.Transaction, error)
	ListTransactionsForCard(ctx context.Context, cardID int64, txType string) ([]models.Transaction, error)
}

type CardService interface {
	Create(ctx context.Context, req services.CreateCardRequest) (models.CreditCard, error)
	Update(ctx context.Context, cardID int64, holderName string) (models.CreditCard, error)
	Delete(ctx context.Context, cardID int64) error
	Get(ctx context.Context, cardID int64) (models.CreditCard, error)
	ListForCustomer(ctx context.Context, customerID int64) ([]models.CreditCard, error)
}

type PostingService interface {
	Debit(ctx context.Context, req services.PostingRequest) (models.CreditCard, error)
	Credit(ctx context.Context, req services.PostingRequest) (models.CreditCard, error)
}

type AuthService interface {
	Register(ctx context.Context, req services.CreateCustomerRequest) (models.Customer, error)
	Login(ctx context.Context, username, password string) (string, error)
}

type AuditStore interface {
	List(ctx context.Context, limit, offset int) ([]models.AuditLog, error)
}
