package store

import (
	"context"

	"cardledger/internal/models"
)

const customerColumns = `id, username, password_hash, name, phone_number, email, role, created_at, updated_at`

type CustomerStore struct {
	db DB
}

func NewCustomerStore(db DB) *CustomerStore {
	return &CustomerStore{db: db}
}

func (s *CustomerStore) Create(ctx context.Context, tx Getter, customer models.Customer) (models.Customer, error) {
	var row models.Customer
	err := tx.GetContext(ctx, &row, `
		INSERT INTO customers (username, password_hash, name, phone_number, email, role)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING `+customerColumns,
		customer.Username, customer.PasswordHash, customer.Name, customer.PhoneNumber, customer.Email, customer.Role)
	if err != nil {
		return models.Customer{}, err
	}
	return row, nil
}

func (s *CustomerStore) GetByID(ctx context.Context, customerID int64) (models.Customer, error) {
	var row models.Customer
	err := s.db.GetContext(ctx, &row, `SELECT `+customerColumns+` FROM customers WHERE id = $1`, customerID)
	if err != nil {
		return models.Customer{}, err
	}
	return row, nil
}

func (s *CustomerStore) GetByUsername(ctx context.Context, username string) (models.Customer, error) {
	var row models.Customer
	err := s.db.GetContext(ctx, &row, `SELECT `+customerColumns+` FROM customers WHERE username = $1`, username)
	if err != nil {
		return models.Customer{}, err
	}
	return row, nil
}

func (s *CustomerStore) List(ctx context.Context) ([]models.Customer, error) {
	var rows []models.Customer
	err := s.db.SelectContext(ctx, &rows, `SELECT `+customerColumns+` FROM customers ORDER BY id`)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (s *CustomerStore) Update(ctx context.Context, tx Execer, customer models.Customer) (int64, error) {
	res, err := tx.ExecContext(ctx, `
		UPDATE customers
		SET username = $1, password_hash = $2, name = $3, phone_number = $4, email = $5, updated_at = NOW()
		WHERE id = $6
	`, customer.Username, customer.PasswordHash, customer.Name, customer.PhoneNumber, customer.Email, customer.ID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Touch bumps updated_at, marking the customer aggregate as changed.
func (s *CustomerStore) Touch(ctx context.Context, tx Execer, customerID int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `UPDATE customers SET updated_at = NOW() WHERE id = $1`, customerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// Delete removes the customer; cards and their transactions cascade.
func (s *CustomerStore) Delete(ctx context.Context, tx Execer, customerID int64) (int64, error) {
	res, err := tx.ExecContext(ctx, `DELETE FROM customers WHERE id = $1`, customerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
