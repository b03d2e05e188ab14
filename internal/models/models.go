package models

import (
	"strings"
	"time"
)

const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

type TransactionType string

const (
	TransactionCredit TransactionType = "CREDIT"
	TransactionDebit  TransactionType = "DEBIT"
)

// ParseTransactionType matches CREDIT or DEBIT ignoring case. An empty input
// yields an empty type, meaning no filter.
func ParseTransactionType(value string) (TransactionType, bool) {
	switch strings.ToUpper(strings.TrimSpace(value)) {
	case "":
		return "", true
	case string(TransactionCredit):
		return TransactionCredit, true
	case string(TransactionDebit):
		return TransactionDebit, true
	default:
		return "", false
	}
}

type Customer struct {
	ID           int64        `db:"id" json:"id"`
	Username     string       `db:"username" json:"username"`
	PasswordHash string       `db:"password_hash" json:"-"`
	Name         string       `db:"name" json:"name"`
	PhoneNumber  string       `db:"phone_number" json:"phone_number"`
	Email        string       `db:"email" json:"email"`
	Role         string       `db:"role" json:"role"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
	Cards        []CreditCard `db:"-" json:"credit_cards,omitempty"`
}

// CreditCard amounts are in minor units. Limits are fixed at issuance.
type CreditCard struct {
	ID                  int64     `db:"id" json:"id"`
	CustomerID          int64     `db:"customer_id" json:"customer_id"`
	CardNumber          string    `db:"card_number" json:"card_number"`
	CardHolderName      string    `db:"card_holder_name" json:"card_holder_name"`
	CardType            string    `db:"card_type" json:"card_type"`
	Active              bool      `db:"active" json:"active"`
	IssueDate           time.Time `db:"issue_date" json:"issue_date"`
	ExpiryDate          time.Time `db:"expiry_date" json:"expiry_date"`
	Balance             int64     `db:"balance" json:"balance"`
	MaxWithdrawalLimit  int64     `db:"max_withdrawal_limit" json:"max_withdrawal_limit"`
	DailyDebitLimit     int64     `db:"daily_debit_limit" json:"daily_debit_limit"`
	MaxCreditLimit      int64     `db:"max_credit_limit" json:"max_credit_limit"`
	DailyCreditLimit    int64     `db:"daily_credit_limit" json:"daily_credit_limit"`
	DailyDebitedAmount  int64     `db:"daily_debited_amount" json:"daily_debited_amount"`
	DailyCreditedAmount int64     `db:"daily_credited_amount" json:"daily_credited_amount"`
	AccountingDay       time.Time `db:"accounting_day" json:"accounting_day"`
	Version             int64     `db:"version" json:"version"`
	CreatedAt           time.Time `db:"created_at" json:"created_at"`
}

type Transaction struct {
	ID          int64           `db:"id" json:"id"`
	CardID      int64           `db:"card_id" json:"card_id"`
	Amount      int64           `db:"amount" json:"amount"`
	Type        TransactionType `db:"type" json:"type"`
	CardType    string          `db:"card_type" json:"card_type"`
	Description string          `db:"description" json:"description"`
	CreatedAt   time.Time       `db:"created_at" json:"created_at"`
}

type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	CustomerID *int64    `db:"customer_id" json:"customer_id,omitempty"`
	Action     string    `db:"action" json:"action"`
	EntityType string    `db:"entity_type" json:"entity_type"`
	EntityID   string    `db:"entity_id" json:"entity_id"`
	Details    string    `db:"details" json:"details"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}
