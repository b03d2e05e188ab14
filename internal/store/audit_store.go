package store

import (
	"context"

	"cardledger/internal/models"

	"github.com/google/uuid"
)

type AuditStore struct {
	db DB
}

func NewAuditStore(db DB) *AuditStore {
	return &AuditStore{db: db}
}

// Log appends an audit row inside the caller's transaction. details must be
// a JSON document.
func (s *AuditStore) Log(ctx context.Context, tx Execer, customerID *int64, action, entityType, entityID, details string) error {
	if details == "" {
		details = "{}"
	}
	_, err := tx.ExecContext(ctx, `
		INSERT INTO audit_logs (id, customer_id, action, entity_type, entity_id, details)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, uuid.NewString(), customerID, action, entityType, entityID, details)
	return err
}

func (s *AuditStore) List(ctx context.Context, limit, offset int) ([]models.AuditLog, error) {
	rows := []models.AuditLog{}
	err := s.db.SelectContext(ctx, &rows, `
		SELECT id, customer_id, action, entity_type, entity_id, details::text AS details, created_at
		FROM audit_logs
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}
	return rows, nil
}
