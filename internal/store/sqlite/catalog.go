package sqlite

import (
	"context"
	"database/sql"
	"strings"

	"github.com/shoefit/shoefit-server/internal/domain"
	"github.com/shoefit/shoefit-server/internal/store"
)

// catalogColumns is the ordered list of columns selected in catalog queries.
// Must match the scan order in scanCatalogEntry.
const catalogColumns = `id, created_at, updated_at, brand, model, category, image_url, blur_hash`

func scanCatalogEntry(scanner interface{ Scan(dest ...any) error }) (*domain.CatalogEntry, error) {
	var (
		c         domain.CatalogEntry
		createdAt string
		updatedAt string
		imageURL  sql.NullString
		blurHash  sql.NullString
	)

	err := scanner.Scan(
		&c.ID,
		&createdAt,
		&updatedAt,
		&c.Brand,
		&c.Model,
		&c.Category,
		&imageURL,
		&blurHash,
	)
	if err != nil {
		return nil, err
	}

	c.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, err
	}
	c.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, err
	}
	c.ImageURL = imageURL.String
	c.BlurHash = blurHash.String

	return &c, nil
}

func (s *Store) queryCatalog(ctx context.Context, query string, args ...any) ([]*domain.CatalogEntry, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*domain.CatalogEntry
	for rows.Next() {
		c, err := scanCatalogEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return entries, nil
}

// CreateCatalogEntry inserts a new catalog entry.
// Returns store.ErrAlreadyExists if the ID, or the brand and model pair
// (ignoring case), is already taken.
func (s *Store) CreateCatalogEntry(ctx context.Context, entry *domain.CatalogEntry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO shoe_catalog (
			id, created_at, updated_at, brand, model, brand_lower, model_lower,
			category, image_url, blur_hash
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		entry.ID,
		formatTime(entry.CreatedAt),
		formatTime(entry.UpdatedAt),
		entry.Brand,
		entry.Model,
		strings.ToLower(entry.Brand),
		strings.ToLower(entry.Model),
		entry.Category,
		nullString(entry.ImageURL),
		nullString(entry.BlurHash),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// GetCatalogEntry retrieves a catalog entry by ID.
// Returns store.ErrNotFound if the entry does not exist.
func (s *Store) GetCatalogEntry(ctx context.Context, id string) (*domain.CatalogEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+catalogColumns+` FROM shoe_catalog WHERE id = ?`, id)

	c, err := scanCatalogEntry(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// GetCatalogEntryByBrandModel looks an entry up by brand and model, ignoring case.
func (s *Store) GetCatalogEntryByBrandModel(ctx context.Context, brand, model string) (*domain.CatalogEntry, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+catalogColumns+` FROM shoe_catalog WHERE brand_lower = ? AND model_lower = ?`,
		strings.ToLower(brand), strings.ToLower(model))

	c, err := scanCatalogEntry(row)
	if err == sql.ErrNoRows {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

// UpdateCatalogEntry performs a full row update on an existing entry.
func (s *Store) UpdateCatalogEntry(ctx context.Context, entry *domain.CatalogEntry) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE shoe_catalog SET
			updated_at = ?,
			brand = ?,
			model = ?,
			brand_lower = ?,
			model_lower = ?,
			category = ?,
			image_url = ?,
			blur_hash = ?
		WHERE id = ?`,
		formatTime(entry.UpdatedAt),
		entry.Brand,
		entry.Model,
		strings.ToLower(entry.Brand),
		strings.ToLower(entry.Model),
		entry.Category,
		nullString(entry.ImageURL),
		nullString(entry.BlurHash),
		entry.ID,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// DeleteCatalogEntry removes an entry. Owned shoes linked to it keep their
// brand and model and lose the link.
func (s *Store) DeleteCatalogEntry(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM shoe_catalog WHERE id = ?`, id)
	if err != nil {
		return err
	}
	return checkAffected(result)
}

// likeEscaper escapes LIKE wildcards so user input matches literally.
var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// ListCatalog returns a page of entries ordered by brand then model.
// A non-empty query keeps entries whose brand or model contains it, ignoring case.
func (s *Store) ListCatalog(ctx context.Context, query string, params store.PaginationParams) (*store.PaginatedResult[*domain.CatalogEntry], error) {
	params.Validate()

	where := ""
	var args []any
	if q := strings.ToLower(strings.TrimSpace(query)); q != "" {
		pattern := "%" + likeEscaper.Replace(q) + "%"
		where = ` WHERE brand_lower LIKE ? ESCAPE '\' OR model_lower LIKE ? ESCAPE '\'`
		args = append(args, pattern, pattern)
	}

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shoe_catalog`+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	entries, err := s.queryCatalog(ctx,
		`SELECT `+catalogColumns+` FROM shoe_catalog`+where+
			` ORDER BY brand_lower, model_lower LIMIT ? OFFSET ?`,
		append(args, params.Limit, params.Offset)...)
	if err != nil {
		return nil, err
	}

	return store.NewPaginatedResult(entries, total, params), nil
}

// ListAllCatalog returns every entry ordered by brand then model.
func (s *Store) ListAllCatalog(ctx context.Context) ([]*domain.CatalogEntry, error) {
	return s.queryCatalog(ctx,
		`SELECT `+catalogColumns+` FROM shoe_catalog ORDER BY brand_lower, model_lower`)
}

// CountCatalog returns the number of catalog entries.
func (s *Store) CountCatalog(ctx context.Context) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM shoe_catalog`).Scan(&n)
	return n, err
}
