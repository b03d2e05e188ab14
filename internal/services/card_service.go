package services

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"cardledger/internal/apperr"
	"cardledger/internal/cardnumber"
	"cardledger/internal/config"
	"cardledger/internal/db"
	"cardledger/internal/models"

	"github.com/jmoiron/sqlx"
)

// CardPolicy is applied to every card at issuance.
type CardPolicy struct {
	ValidityYears      int
	MaxWithdrawalLimit int64
	DailyDebitLimit    int64
	MaxCreditLimit     int64
	DailyCreditLimit   int64
}

func CardPolicyFromConfig(cfg config.Cards) CardPolicy {
	return CardPolicy{
		ValidityYears:      cfg.ValidityYears,
		MaxWithdrawalLimit: cfg.MaxWithdrawalMinor,
		DailyDebitLimit:    cfg.DailyDebitLimitMinor,
		MaxCreditLimit:     cfg.MaxCreditMinor,
		DailyCreditLimit:   cfg.DailyCreditLimitMinor,
	}
}

type CardService struct {
	txRunner  db.TxRunner
	customers CustomerStore
	cards     CardStore
	audit     AuditStore
	numbers   NumberIssuer
	policy    CardPolicy
	logger    *slog.Logger
	now       func() time.Time
}

func NewCardService(txRunner db.TxRunner, customers CustomerStore, cards CardStore, audit AuditStore, numbers NumberIssuer, policy CardPolicy, logger *slog.Logger) *CardService {
	if policy.ValidityYears <= 0 {
		policy.ValidityYears = 10
	}
	return &CardService{
		txRunner:  txRunner,
		customers: customers,
		cards:     cards,
		audit:     audit,
		numbers:   numbers,
		policy:    policy,
		logger:    logger,
		now:       time.Now,
	}
}

type CreateCardRequest struct {
	CustomerID     int64
	InitialBalance int64
	CardType       string
	Active         bool
}

// Create issues a card to an existing customer. Each number candidate is
// tried in its own transaction so a duplicate-number rollback does not
// poison the next attempt.
func (s *CardService) Create(ctx context.Context, req CreateCardRequest) (models.CreditCard, error) {
	cardType := strings.TrimSpace(req.CardType)
	if cardType == "" {
		return models.CreditCard{}, apperr.Validation("card type is required")
	}
	if req.InitialBalance < 0 {
		return models.CreditCard{}, apperr.Validation("initial balance must not be negative")
	}
	customer, err := s.customers.GetByID(ctx, req.CustomerID)
	if err != nil {
		return models.CreditCard{}, notFoundOr(err, "Customer not found", "failed to load customer")
	}

	issued := dayOf(s.now().UTC())
	template := models.CreditCard{
		CustomerID:         customer.ID,
		CardHolderName:     customer.Name,
		CardType:           cardType,
		Active:             req.Active,
		IssueDate:          issued,
		ExpiryDate:         issued.AddDate(s.policy.ValidityYears, 0, 0),
		Balance:            req.InitialBalance,
		MaxWithdrawalLimit: s.policy.MaxWithdrawalLimit,
		DailyDebitLimit:    s.policy.DailyDebitLimit,
		MaxCreditLimit:     s.policy.MaxCreditLimit,
		DailyCreditLimit:   s.policy.DailyCreditLimit,
		AccountingDay:      issued,
	}

	var created models.CreditCard
	_, err = s.numbers.Issue(ctx, s.cards.ExistsByNumber, func(ctx context.Context, number string) error {
		return s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
			card := template
			card.CardNumber = number
			row, err := s.cards.Create(ctx, tx, card)
			if err != nil {
				return err
			}
			rows, err := s.customers.Touch(ctx, tx, customer.ID)
			if err != nil {
				return err
			}
			if rows == 0 {
				return apperr.NotFound("Customer not found")
			}
			if err := s.audit.Log(ctx, tx, int64Ptr(customer.ID), "card.create", "credit_card", strconv.FormatInt(row.ID, 10), auditDetails(map[string]any{
				"card_type":       cardType,
				"initial_balance": req.InitialBalance,
			})); err != nil {
				return err
			}
			created = row
			return nil
		})
	})
	if err != nil {
		return models.CreditCard{}, asInternal(err, "failed to create card")
	}
	s.logger.Info("card issued",
		"customer_id", customer.ID,
		"card_id", created.ID,
		"card_number", cardnumber.Mask(created.CardNumber),
	)
	return created, nil
}

// Update changes the holder name and nothing else.
func (s *CardService) Update(ctx context.Context, cardID int64, holderName string) (models.CreditCard, error) {
	holderName = strings.TrimSpace(holderName)
	if holderName == "" {
		return models.CreditCard{}, apperr.Validation("card holder name is required")
	}
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.cards.UpdateHolderName(ctx, tx, cardID, holderName)
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperr.NotFound("Card not found")
		}
		return s.audit.Log(ctx, tx, nil, "card.update", "credit_card", strconv.FormatInt(cardID, 10), auditDetails(map[string]any{
			"card_holder_name": holderName,
		}))
	})
	if err != nil {
		return models.CreditCard{}, asInternal(err, "failed to update card")
	}
	return s.Get(ctx, cardID)
}

// Delete removes the card together with its transactions.
func (s *CardService) Delete(ctx context.Context, cardID int64) error {
	err := s.txRunner.WithTx(ctx, func(tx *sqlx.Tx) error {
		rows, err := s.cards.Delete(ctx, tx, cardID)
		if err != nil {
			return err
		}
		if rows == 0 {
			return apperr.NotFound("Card not found")
		}
		return s.audit.Log(ctx, tx, nil, "card.delete", "credit_card", strconv.FormatInt(cardID, 10), "")
	})
	if err != nil {
		return asInternal(err, "failed to delete card")
	}
	s.logger.Info("card deleted", "card_id", cardID)
	return nil
}

func (s *CardService) Get(ctx context.Context, cardID int64) (models.CreditCard, error) {
	card, err := s.cards.GetByID(ctx, cardID)
	if err != nil {
		return models.CreditCard{}, notFoundOr(err, "Card not found", "failed to load card")
	}
	return card, nil
}

func (s *CardService) ListForCustomer(ctx context.Context, customerID int64) ([]models.CreditCard, error) {
	if _, err := s.customers.GetByID(ctx, customerID); err != nil {
		return nil, notFoundOr(err, "Customer not found", "failed to load customer")
	}
	cards, err := s.cards.ListByCustomer(ctx, customerID)
	if err != nil {
		return nil, asInternal(err, "failed to list cards")
	}
	return cards, nil
}
