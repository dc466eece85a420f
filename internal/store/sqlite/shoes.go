package sqlite

import (
	"context"
	"database/sql"

	"github.com/shoefit/shoefit-server/internal/domain"
	"github.com/shoefit/shoefit-server/internal/store"
)

// shoeColumns is the ordered list of columns selected in shoe queries.
// Must match the scan order in scanShoe.
const shoeColumns = `id, user_id, catalog_id, brand, model, size, size_system, fit, created_at`

func scanShoe(scanner interface{ Scan(dest ...any) error }) (*domain.OwnedShoe, error) {
	var (
		o          domain.OwnedShoe
		catalogID  sql.NullString
		sizeSystem string
		fit        string
		createdAt  string
	)

	err := scanner.Scan(
		&o.ID,
		&o.UserID,
		&catalogID,
		&o.Brand,
		&o.Model,
		&o.Size,
		&sizeSystem,
		&fit,
		&createdAt,
	)
	if err != nil {
		return nil, err
	}

	o.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	o.CatalogID = catalogID.String
	o.SizeSystem = domain.SizeSystem(sizeSystem)
	o.Fit = domain.Fit(fit)

	return &o, nil
}

// CreateShoe records an owned shoe.
func (s *Store) CreateShoe(ctx context.Context, shoe *domain.OwnedShoe) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shoes (
			id, user_id, catalog_id, brand, model, size, size_system, fit, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		shoe.ID,
		shoe.UserID,
		nullString(shoe.CatalogID),
		shoe.Brand,
		shoe.Model,
		shoe.Size,
		string(shoe.SizeSystem),
		string(shoe.Fit),
		formatTime(shoe.CreatedAt),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetShoe retrieves an owned shoe by ID.
// Returns store.ErrNotFound if the shoe does not exist.
func (s *Store) GetShoe(ctx context.Context, id string) (*domain.OwnedShoe, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+shoeColumns+` FROM shoes WHERE id = ?`, id)

	o, err := scanShoe(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return o, nil
}

// ListShoesByUser returns a user's shoes ordered by brand, model, then creation time.
// The order is stable, so it is also the input order the recommendation engine sees.
func (s *Store) ListShoesByUser(ctx context.Context, userID string) ([]*domain.OwnedShoe, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+shoeColumns+` FROM shoes WHERE user_id = ?
		 ORDER BY brand COLLATE NOCASE, model COLLATE NOCASE, created_at, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shoes []*domain.OwnedShoe
	for rows.Next() {
		o, err := scanShoe(rows)
		if err != nil {
			return nil, err
		}
		shoes = append(shoes, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return shoes, nil
}

// DeleteShoe deletes a shoe owned by userID.
// Returns store.ErrNotFound if the shoe does not exist or belongs to someone else.
func (s *Store) DeleteShoe(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM shoes WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return checkAffected(result)
}
