package store

import (
	"context"
	"strconv"

	"cardledger/internal/models"
)

const transactionColumns = `t.id, t.card_id, t.amount, t.type, t.card_type, t.description, t.created_at`

// TransactionStore is append-only: rows are written once and never changed.
type TransactionStore struct {
	db DB
}

func NewTransactionStore(db DB) *TransactionStore {
	return &TransactionStore{db: db}
}

func (s *TransactionStore) Create(ctx context.Context, tx Getter, txn models.Transaction) (models.Transaction, error) {
	var row models.Transaction
	err := tx.GetContext(ctx, &row, `
		INSERT INTO card_transactions (card_id, amount, type, card_type, description)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, card_id, amount, type, card_type, description, created_at
	`, txn.CardID, txn.Amount, string(txn.Type), txn.CardType, txn.Description)
	if err != nil {
		return models.Transaction{}, err
	}
	return row, nil
}

// ListByCard returns the card's transactions oldest first. An empty txType
// returns every type.
func (s *TransactionStore) ListByCard(ctx context.Context, cardID int64, txType models.TransactionType) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM card_transactions t
		WHERE t.card_id = $1
	`
	return s.list(ctx, query, cardID, txType)
}

// ListByCustomer returns transactions across all of the customer's cards.
func (s *TransactionStore) ListByCustomer(ctx context.Context, customerID int64, txType models.TransactionType) ([]models.Transaction, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM card_transactions t
		JOIN credit_cards c ON c.id = t.card_id
		WHERE c.customer_id = $1
	`
	return s.list(ctx, query, customerID, txType)
}

func (s *TransactionStore) list(ctx context.Context, query string, ownerID int64, txType models.TransactionType) ([]models.Transaction, error) {
	args := []any{ownerID}
	if txType != "" {
		args = append(args, string(txType))
		query += " AND t.type = $" + strconv.Itoa(len(args))
	}
	query += " ORDER BY t.created_at, t.id"
	rows := []models.Transaction{}
	if err := s.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, err
	}
	return rows, nil
}
