package services

import (
	"context"
	"errors"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"cardledger/internal/apperr"
	"cardledger/internal/cardnumber"
	"cardledger/internal/db"
	"cardledger/internal/models"
	"cardledger/internal/money"
	"cardledger/internal/websocket"

	"github.com/jmoiron/sqlx"
)

const maxPostingAttempts = 3

var (
	errStaleCard = errors.New("card version changed during posting")

	ErrInsufficientBalance     = apperr.Validation("Insufficient balance")
	ErrMaxWithdrawalExceeded   = apperr.Validation("Max withdrawal limit exceeded")
	ErrDailyDebitExceeded      = apperr.Validation("Daily debit limit exceeded")
	ErrMaxCreditExceeded       = apperr.Validation("Amount exceeds max credit limit")
	ErrDailyCreditExceeded     = apperr.Validation("Daily credit limit exceeded")
	ErrBalanceOverflow         = apperr.Validation("Balance limit exceeded")
	ErrNonPositiveAmount       = apperr.Validation("amount must be positive")
	ErrCardNotFoundForCustomer = apperr.NotFound("Card not found for customer")
)

// PostingService applies debits and credits to a single card. Postings on
// one card are serialized by an in-process lock plus a row lock in the
// database; postings on different cards never contend.
type PostingService struct {
	txRunner     db.TxRunner
	cards        PostingCardStore
	transactions TransactionStore
	audit        AuditStore
	hub          BalanceHub
	locks        CardLocker
	dailyReset   bool
	logger       *slog.Logger
	now          func() time.Time
}

func NewPostingService(txRunner db.TxRunner, cards PostingCardStore, transactions TransactionStore, audit AuditStore, hub BalanceHub, locks CardLocker, dailyReset bool, logger *slog.Logger) *PostingService {
	return &PostingService{
		txRunner:     txRunner,
		cards:        cards,
		transactions: transactions,
		audit:        audit,
		hub:          hub,
		locks:        locks,
		dailyReset:   dailyReset,
		logger:       logger,
		now:          time.Now,
	}
}

type PostingRequest struct {
	CustomerID  int64
	CardNumber  string
	AmountMinor int64
}

func (s *PostingService) Debit(ctx context.Context, req PostingRequest) (models.CreditCard, error) {
	return s.post(ctx, req, models.TransactionDebit)
}

func (s *PostingService) Credit(ctx context.Context, req PostingRequest) (models.CreditCard, error) {
	return s.post(ctx, req, models.TransactionCredit)
}

func (s *PostingService) post(ctx context.Context, req PostingRequest, txType models.TransactionType) (models.CreditCard, error) {
	if req.AmountMinor <= 0 {
		return models.CreditCard{}, ErrNonPositiveAmount
	}
	number := strings.TrimSpace(req.CardNumber)
	if number == "" {
		return models.CreditCard{}, apperr.Validation("card number is required")
	}

	unlock, err := s.locks.Lock(ctx, number)
	if err != nil {
		return models.CreditCard{}, err
	}
	defer unlock()

	var updated models.CreditCard
	var txn models.Transaction
	for attempt := 1; ; attempt++ {
		err = s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
			card, err := s.cards.GetByNumberAndCustomerForUpdate(ctx, tx, number, req.CustomerID)
			if err != nil {
				return notFoundOr(err, ErrCardNotFoundForCustomer.Error(), "failed to load card")
			}
			next, err := s.apply(card, txType, req.AmountMinor)
			if err != nil {
				return err
			}
			rows, err := s.cards.UpdatePostingState(ctx, tx, next)
			if err != nil {
				return err
			}
			if rows != 1 {
				return errStaleCard
			}
			txn, err = s.transactions.Create(ctx, tx, models.Transaction{
				CardID:      next.ID,
				Amount:      req.AmountMinor,
				Type:        txType,
				CardType:    next.CardType,
				Description: describe(txType, req.AmountMinor),
			})
			if err != nil {
				return err
			}
			if err := s.audit.Log(ctx, tx, int64Ptr(req.CustomerID), "card."+strings.ToLower(string(txType)), "credit_card", strconv.FormatInt(next.ID, 10), auditDetails(map[string]any{
				"amount":         req.AmountMinor,
				"balance_after":  next.Balance,
				"transaction_id": txn.ID,
				"version":        next.Version,
			})); err != nil {
				return err
			}
			updated = next
			return nil
		})
		if errors.Is(err, errStaleCard) && attempt < maxPostingAttempts {
			continue
		}
		break
	}
	if err != nil {
		if errors.Is(err, errStaleCard) {
			return models.CreditCard{}, apperr.Conflict("card was modified concurrently, retry the posting")
		}
		if apperr.KindOf(err) == apperr.KindValidation {
			s.logger.Info("posting rejected",
				"customer_id", req.CustomerID,
				"card_number", cardnumber.Mask(number),
				"type", txType,
				"amount", req.AmountMinor,
				"reason", apperr.MessageOf(err),
			)
		}
		return models.CreditCard{}, asInternal(err, "failed to post transaction")
	}

	s.hub.BroadcastBalance(req.CustomerID, websocket.BalanceUpdate{
		CardID:     updated.ID,
		CardNumber: cardnumber.Mask(updated.CardNumber),
		Type:       string(txType),
		Amount:     money.FormatMinor(req.AmountMinor),
		Balance:    money.FormatMinor(updated.Balance),
		Version:    updated.Version,
	})
	s.logger.Info("posting applied",
		"customer_id", req.CustomerID,
		"card_id", updated.ID,
		"transaction_id", txn.ID,
		"type", txType,
		"amount", req.AmountMinor,
		"balance", updated.Balance,
	)
	return updated, nil
}

// apply validates the posting against card and returns the mutated copy.
// Checks run in a fixed order and the first failure wins.
func (s *PostingService) apply(card models.CreditCard, txType models.TransactionType, amount int64) (models.CreditCard, error) {
	today := dayOf(s.now().UTC())
	if s.dailyReset && dayOf(card.AccountingDay).Before(today) {
		card.DailyDebitedAmount = 0
		card.DailyCreditedAmount = 0
	}
	switch txType {
	case models.TransactionDebit:
		if amount > card.Balance {
			return card, ErrInsufficientBalance
		}
		if amount > card.MaxWithdrawalLimit {
			return card, ErrMaxWithdrawalExceeded
		}
		if card.DailyDebitedAmount+amount > card.DailyDebitLimit {
			return card, ErrDailyDebitExceeded
		}
		card.Balance -= amount
		card.DailyDebitedAmount += amount
	case models.TransactionCredit:
		if amount > card.MaxCreditLimit {
			return card, ErrMaxCreditExceeded
		}
		if card.DailyCreditedAmount+amount > card.DailyCreditLimit {
			return card, ErrDailyCreditExceeded
		}
		if card.Balance > math.MaxInt64-amount {
			return card, ErrBalanceOverflow
		}
		card.Balance += amount
		card.DailyCreditedAmount += amount
	default:
		return card, apperr.Validation("unknown transaction type")
	}
	if today.After(dayOf(card.AccountingDay)) {
		card.AccountingDay = today
	}
	card.Version++
	return card, nil
}

func describe(txType models.TransactionType, amount int64) string {
	if txType == models.TransactionDebit {
		return "Debited " + money.FormatMinor(amount)
	}
	return "Credited " + money.FormatMinor(amount)
}
