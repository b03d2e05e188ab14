package services

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"cardledger/internal/apperr"
)

// notFoundOr maps a missing row to a NotFound with msg and leaves every
// other error to asInternal.
func notFoundOr(err error, msg, internalMsg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperr.NotFound(msg)
	}
	return asInternal(err, internalMsg)
}

// asInternal passes typed errors through and wraps anything else.
func asInternal(err error, msg string) error {
	if err == nil {
		return nil
	}
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		return err
	}
	return apperr.Internal(msg, err)
}

func auditDetails(fields map[string]any) string {
	data, err := json.Marshal(fields)
	if err != nil {
		return "{}"
	}
	return string(data)
}

func dayOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func int64Ptr(v int64) *int64 {
	return &v
}
