package services

import (
	"context"

	"cardledger/internal/cardnumber"
	"cardledger/internal/models"
	"cardledger/internal/store"
	"cardledger/internal/websocket"
)

type CustomerStore interface {
	Create(ctx context.Context, tx store.Getter, customer models.Customer) (models.Customer, error)
	GetByID(ctx context.Context, customerID int64) (models.Customer, error)
	GetByUsername(ctx context.Context, username string) (models.Customer, error)
	List(ctx context.Context) ([]models.Customer, error)
	Update(ctx context.Context, tx store.Execer, customer models.Customer) (int64, error)
	Touch(ctx context.Context, tx store.Execer, customerID int64) (int64, error)
	Delete(ctx context.Context, tx store.Execer, customerID int64) (int64, error)
}

type CardStore interface {
	Create(ctx context.Context, tx store.Getter, card models.CreditCard) (models.CreditCard, error)
	GetByID(ctx context.Context, cardID int64) (models.CreditCard, error)
	ListByCustomer(ctx context.Context, customerID int64) ([]models.CreditCard, error)
	ExistsByNumber(ctx context.Context, cardNumber string) (bool, error)
	UpdateHolderName(ctx context.Context, tx store.Execer, cardID int64, holderName string) (int64, error)
	Delete(ctx context.Context, tx store.Execer, cardID int64) (int64, error)
}

// PostingCardStore is the slice of card persistence the posting engine needs.
type PostingCardStore interface {
	GetByNumberAndCustomerForUpdate(ctx context.Context, tx store.Getter, cardNumber string, customerID int64) (models.CreditCard, error)
	UpdatePostingState(ctx context.Context, tx store.Execer, card models.CreditCard) (int64, error)
}

type TransactionStore interface {
	Create(ctx context.Context, tx store.Getter, txn models.Transaction) (models.Transaction, error)
	ListByCard(ctx context.Context, cardID int64, txType models.TransactionType) ([]models.Transaction, error)
	ListByCustomer(ctx context.Context, customerID int64, txType models.TransactionType) ([]models.Transaction, error)
}

type AuditStore interface {
	Log(ctx context.Context, tx store.Execer, customerID *int64, action, entityType, entityID, details string) error
}

type BalanceHub interface {
	BroadcastBalance(customerID int64, update websocket.BalanceUpdate)
}

type NumberIssuer interface {
	Issue(ctx context.Context, exists cardnumber.ExistsFunc, reserve cardnumber.ReserveFunc) (string, error)
}

type CardLocker interface {
	Lock(ctx context.Context, key string) (func(), error)
}
