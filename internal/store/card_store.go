package store

import (
	"context"

	"cardledger/internal/models"
)

const cardColumns = `id, customer_id, card_number, card_holder_name, card_type, active,
		issue_date, expiry_date, balance,
		max_withdrawal_limit, daily_debit_limit, max_credit_limit, daily_credit_limit,
		daily_debited_amount, daily_credited_amount, accounting_day, version, created_at`

type CardStore struct {
	db DB
}

func NewCardStore(db DB) *CardStore {
	return &CardStore{db: db}
}

// Create inserts the card. A taken card number surfaces as a unique
// violation from the driver.
func (s *CardStore) Create(ctx context.Context, tx Getter, card models.CreditCard) (models.CreditCard, error) {
	var row models.CreditCard
	err := tx.GetContext(ctx, &row, `
		INSERT INTO credit_cards (
			customer_id, card_number, card_holder_name, card_type, active,
			issue_date, expiry_date, balance,
			max_withdrawal_limit, daily_debit_limit, max_credit_limit, daily_credit_limit,
			daily_debited_amount, daily_credited_amount, accounting_day, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 0, 0, $13, 0)
		RETURNING `+cardColumns,
		card.CustomerID, card.CardNumber, card.CardHolderName, card.CardType, card.Active,
		card.IssueDate, card.ExpiryDate, card.Balance,
		card.MaxWithdrawalLimit, card.DailyDebitLimit, card.MaxCreditLimit, card.DailyCreditLimit,
		card.AccountingDay)
	if err != nil {
		return models.CreditCard{}, err
	}
	return row, nil
}

func (s *CardStore) GetByID(ctx context.Context, cardID int64) (models.CreditCard, error) {
	var row models.CreditCard
	err := s.db.GetContext(ctx, &row, `SELECT `+cardColumns+` FROM credit_cards WHERE id = $1`, cardID)
	if err != nil {
		return models.CreditCard{}, err
	}
	return row, nil
}

func (s *CardStore) GetByNumberAndCustomerForUpdate(ctx context.Context, tx Getter, cardNumber string, customerID int64) (models.CreditCard, error) {
	var row models.CreditCard
	err := tx.GetContext(ctx, &row, `
		SELECT `+cardColumns+`
		FROM credit_cards
		WHERE card_number = $1 AND customer_id = $2
		FOR UPDATE
	`, cardNumber, customerID)
	if err != nil {
		return models.CreditCard{}, err
	}
	return row, nil
}

func (s *CardStore) ListByCustomer(ctx context.Context, customerID int64) ([]models.CreditCard, error) {
	var rows []models.CreditCard
	err := s.db.SelectContext(ctx, &rows, `
		SELECT `+cardColumns+`
		FROM credit_cards
		WHERE customer_id = $1
		ORDER BY id
	`, customerID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *CardStore) ExistsByNumber(ctx context.Context, cardNumber string) (bool, error) {
	var exists bool
	err := s.db.GetContext(ctx, &exists, `SELECT EXISTS(SELECT 1 FROM credit_cards WHERE card_number = $1)`, cardNumber)
	return exists, err
}

func (s *CardStore) UpdateHolderName(ctx context.Context, tx Execer, cardID int64, holderName string) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE credit_cards
		SET card_holder_name = $1, updated_at = NOW()
		WHERE id = $2
	`, holderName, cardID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// UpdatePostingState writes balance, daily counters and accounting day.
// card.Version must already be incremented; the row only matches when the
// stored version is the one that was read.
func (s *CardStore) UpdatePostingState(ctx context.Context, tx Execer, card models.CreditCard) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE credit_cards
		SET balance = $1,
		    daily_debited_amount = $2,
		    daily_credited_amount = $3,
		    accounting_day = $4,
		    version = $5,
		    updated_at = NOW()
		WHERE id = $6 AND version = $7
	`, card.Balance, card.DailyDebitedAmount, card.DailyCreditedAmount, card.AccountingDay, card.Version, card.ID, card.Version-1)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes the card; its transactions cascade.
func (s *CardStore) Delete(ctx context.Context, tx Execer, cardID int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM credit_cards WHERE id = $1`, cardID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
