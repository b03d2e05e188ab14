package services

import (
	"context"
	"database/sql"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"cardledger/internal/models"
	"cardledger/internal/store"
	"cardledger/internal/websocket"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

var fixedNow = time.Date(2024, 5, 10, 14, 30, 0, 0, time.UTC)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeTxRunner runs fn once with a nil tx; the in-memory stores ignore it.
type fakeTxRunner struct {
	err error
}

func (f fakeTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	if f.err != nil {
		return f.err
	}
	return fn(nil)
}

// atomicTxRunner rolls the ledger back to its pre-transaction state when fn
// fails, mirroring a database rollback.
type atomicTxRunner struct {
	mu     sync.Mutex
	ledger *memLedger
}

func (r *atomicTxRunner) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	snap := r.ledger.snapshot()
	if err := fn(nil); err != nil {
		r.ledger.restore(snap)
		return err
	}
	return nil
}

type auditEntry struct {
	action   string
	entityID string
}

type memLedger struct {
	mu        sync.Mutex
	nextID    int64
	customers map[int64]models.Customer
	cards     map[int64]models.CreditCard
	txns      []models.Transaction
	audits    []auditEntry

	// hideExists makes ExistsByNumber always report false, so only the
	// unique constraint catches duplicates.
	hideExists     bool
	createTxnErr   error
	updatePostings int
	staleUpdates   int
}

func newMemLedger() *memLedger {
	return &memLedger{
		customers: make(map[int64]models.Customer),
		cards:     make(map[int64]models.CreditCard),
	}
}

type ledgerSnapshot struct {
	nextID    int64
	customers map[int64]models.Customer
	cards     map[int64]models.CreditCard
	txns      []models.Transaction
	audits    []auditEntry
}

func (m *memLedger) snapshot() ledgerSnapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := ledgerSnapshot{
		nextID:    m.nextID,
		customers: make(map[int64]models.Customer, len(m.customers)),
		cards:     make(map[int64]models.CreditCard, len(m.cards)),
		txns:      append([]models.Transaction(nil), m.txns...),
		audits:    append([]auditEntry(nil), m.audits...),
	}
	for k, v := range m.customers {
		snap.customers[k] = v
	}
	for k, v := range m.cards {
		snap.cards[k] = v
	}
	return snap
}

func (m *memLedger) restore(snap ledgerSnapshot) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextID = snap.nextID
	m.customers = snap.customers
	m.cards = snap.cards
	m.txns = snap.txns
	m.audits = snap.audits
}

func (m *memLedger) id() int64 {
	m.nextID++
	return m.nextID
}

func (m *memLedger) seedCustomer(name string) models.Customer {
	m.mu.Lock()
	defer m.mu.Unlock()
	c := models.Customer{ID: m.id(), Username: name, Name: name, Role: models.RoleUser, PasswordHash: "hash"}
	m.customers[c.ID] = c
	return c
}

func (m *memLedger) seedCard(card models.CreditCard) models.CreditCard {
	m.mu.Lock()
	defer m.mu.Unlock()
	card.ID = m.id()
	if card.CardType == "" {
		card.CardType = "VISA"
	}
	m.cards[card.ID] = card
	return card
}

func (m *memLedger) card(id int64) (models.CreditCard, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cards[id]
	return c, ok
}

func (m *memLedger) transactionsFor(cardID int64) []models.Transaction {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []models.Transaction
	for _, t := range m.txns {
		if t.CardID == cardID {
			out = append(out, t)
		}
	}
	return out
}

// CustomerStore

func (m *memLedger) Create(ctx context.Context, tx store.Getter, customer models.Customer) (models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.Username == customer.Username {
			return models.Customer{}, &pq.Error{Code: "23505"}
		}
	}
	customer.ID = m.id()
	customer.CreatedAt = fixedNow
	customer.UpdatedAt = fixedNow
	m.customers[customer.ID] = customer
	return customer, nil
}

func (m *memLedger) GetByID(ctx context.Context, customerID int64) (models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[customerID]
	if !ok {
		return models.Customer{}, sql.ErrNoRows
	}
	return c, nil
}

func (m *memLedger) GetByUsername(ctx context.Context, username string) (models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.customers {
		if c.Username == username {
			return c, nil
		}
	}
	return models.Customer{}, sql.ErrNoRows
}

func (m *memLedger) List(ctx context.Context) ([]models.Customer, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]models.Customer, 0, len(m.customers))
	for _, c := range m.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *memLedger) Update(ctx context.Context, tx store.Execer, customer models.Customer) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[customer.ID]; !ok {
		return 0, nil
	}
	for _, c := range m.customers {
		if c.ID != customer.ID && c.Username == customer.Username {
			return 0, &pq.Error{Code: "23505"}
		}
	}
	m.customers[customer.ID] = customer
	return 1, nil
}

func (m *memLedger) Touch(ctx context.Context, tx store.Execer, customerID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.customers[customerID]
	if !ok {
		return 0, nil
	}
	c.UpdatedAt = c.UpdatedAt.Add(time.Second)
	m.customers[customerID] = c
	return 1, nil
}

func (m *memLedger) Delete(ctx context.Context, tx store.Execer, customerID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.customers[customerID]; !ok {
		return 0, nil
	}
	delete(m.customers, customerID)
	for id, card := range m.cards {
		if card.CustomerID == customerID {
			m.deleteCardLocked(id)
		}
	}
	return 1, nil
}

func (m *memLedger) deleteCardLocked(cardID int64) {
	delete(m.cards, cardID)
	kept := m.txns[:0]
	for _, t := range m.txns {
		if t.CardID != cardID {
			kept = append(kept, t)
		}
	}
	m.txns = kept
}

// memCards exposes the card methods, which collide by name with the
// customer methods on memLedger.
type memCards struct{ *memLedger }

func (m memCards) Create(ctx context.Context, tx store.Getter, card models.CreditCard) (models.CreditCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cards {
		if c.CardNumber == card.CardNumber {
			return models.CreditCard{}, &pq.Error{Code: "23505"}
		}
	}
	card.ID = m.id()
	m.cards[card.ID] = card
	return card, nil
}

func (m memCards) GetByID(ctx context.Context, cardID int64) (models.CreditCard, error) {
	c, ok := m.card(cardID)
	if !ok {
		return models.CreditCard{}, sql.ErrNoRows
	}
	return c, nil
}

func (m memCards) ListByCustomer(ctx context.Context, customerID int64) ([]models.CreditCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.CreditCard{}
	for _, c := range m.cards {
		if c.CustomerID == customerID {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m memCards) ExistsByNumber(ctx context.Context, cardNumber string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.hideExists {
		return false, nil
	}
	for _, c := range m.cards {
		if c.CardNumber == cardNumber {
			return true, nil
		}
	}
	return false, nil
}

func (m memCards) UpdateHolderName(ctx context.Context, tx store.Execer, cardID int64, holderName string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.cards[cardID]
	if !ok {
		return 0, nil
	}
	c.CardHolderName = holderName
	m.cards[cardID] = c
	return 1, nil
}

func (m memCards) Delete(ctx context.Context, tx store.Execer, cardID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.cards[cardID]; !ok {
		return 0, nil
	}
	m.deleteCardLocked(cardID)
	return 1, nil
}

func (m memCards) GetByNumberAndCustomerForUpdate(ctx context.Context, tx store.Getter, cardNumber string, customerID int64) (models.CreditCard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, c := range m.cards {
		if c.CardNumber == cardNumber && c.CustomerID == customerID {
			return c, nil
		}
	}
	return models.CreditCard{}, sql.ErrNoRows
}

func (m memCards) UpdatePostingState(ctx context.Context, tx store.Execer, card models.CreditCard) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.cards[card.ID]
	if !ok {
		return 0, nil
	}
	if m.staleUpdates > 0 || stored.Version != card.Version-1 {
		if m.staleUpdates > 0 {
			m.staleUpdates--
		}
		return 0, nil
	}
	stored.Balance = card.Balance
	stored.DailyDebitedAmount = card.DailyDebitedAmount
	stored.DailyCreditedAmount = card.DailyCreditedAmount
	stored.AccountingDay = card.AccountingDay
	stored.Version = card.Version
	m.cards[card.ID] = stored
	m.updatePostings++
	return 1, nil
}

// memTransactions exposes the transaction store methods.
type memTransactions struct{ *memLedger }

func (m memTransactions) Create(ctx context.Context, tx store.Getter, txn models.Transaction) (models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.createTxnErr != nil {
		return models.Transaction{}, m.createTxnErr
	}
	txn.ID = m.id()
	txn.CreatedAt = fixedNow
	m.txns = append(m.txns, txn)
	return txn, nil
}

func (m memTransactions) ListByCard(ctx context.Context, cardID int64, txType models.TransactionType) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Transaction{}
	for _, t := range m.txns {
		if t.CardID == cardID && (txType == "" || t.Type == txType) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (m memTransactions) ListByCustomer(ctx context.Context, customerID int64, txType models.TransactionType) ([]models.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []models.Transaction{}
	for _, t := range m.txns {
		card, ok := m.cards[t.CardID]
		if ok && card.CustomerID == customerID && (txType == "" || t.Type == txType) {
			out = append(out, t)
		}
	}
	return out, nil
}

// memAudit records audit actions.
type memAudit struct{ *memLedger }

func (m memAudit) Log(ctx context.Context, tx store.Execer, customerID *int64, action, entityType, entityID, details string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.audits = append(m.audits, auditEntry{action: action, entityID: entityID})
	return nil
}

type stubHub struct {
	mu    sync.Mutex
	calls []websocket.BalanceUpdate
}

func (s *stubHub) BroadcastBalance(_ int64, update websocket.BalanceUpdate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, update)
}

func (s *stubHub) count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.calls)
}
