package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/magabrotheeeer/dues-ledger/internal/models"
	"github.com/magabrotheeeer/dues-ledger/internal/storage"
)

const entryColumns = `id, polarity, title, category, amount, entry_date,
			      description, created_by, created_at, updated_at`

func scanEntry(row rowScanner) (*models.DiscretionaryEntry, error) {
	var (
		e        models.DiscretionaryEntry
		polarity string
	)
	if err := row.Scan(&e.ID, &polarity, &e.Title, &e.Category, &e.Amount, &e.Date,
		&e.Description, &e.CreatedBy, &e.CreatedAt, &e.UpdatedAt); err != nil {
		return nil, err
	}
	e.Polarity = models.Polarity(polarity)
	return &e, nil
}

// CreateEntry сохраняет запись свободного учёта.
func (s *Storage) CreateEntry(ctx context.Context, e models.DiscretionaryEntry) (*models.DiscretionaryEntry, error) {
	const op = "storage.CreateEntry"
	ctx, cancel, err := s.opContext(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	query := `INSERT INTO discretionary_entries
			      (polarity, title, category, amount, entry_date, description, created_by)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  RETURNING ` + entryColumns
	created, err := scanEntry(s.DB.QueryRowContext(ctx, query,
		string(e.Polarity), e.Title, e.Category, e.Amount, e.Date, e.Description, e.CreatedBy))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return created, nil
}

// UpdateEntry перезаписывает изменяемые поля записи. Направление и автор не меняются.
func (s *Storage) UpdateEntry(ctx context.Context, e models.DiscretionaryEntry) (*models.DiscretionaryEntry, error) {
	const op = "storage.UpdateEntry"
	ctx, cancel, err := s.opContext(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	query := `UPDATE discretionary_entries
			  SET title = $2, category = $3, amount = $4, entry_date = $5,
			      description = $6, updated_at = NOW()
			  WHERE id = $1
			  RETURNING ` + entryColumns
	updated, err := scanEntry(s.DB.QueryRowContext(ctx, query,
		e.ID, e.Title, e.Category, e.Amount, e.Date, e.Description))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return updated, nil
}

// DeleteEntry удаляет запись.
func (s *Storage) DeleteEntry(ctx context.Context, id int64) error {
	const op = "storage.DeleteEntry"
	ctx, cancel, err := s.opContext(ctx, op)
	if err != nil {
		return err
	}
	defer cancel()

	result, err := s.DB.ExecContext(ctx, `DELETE FROM discretionary_entries WHERE id = $1`, id)
	if err != nil {
		return wrapErr(op, err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return wrapErr(op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return nil
}

// GetEntry возвращает запись по ID.
func (s *Storage) GetEntry(ctx context.Context, id int64) (*models.DiscretionaryEntry, error) {
	const op = "storage.GetEntry"
	ctx, cancel, err := s.opContext(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	e, err := scanEntry(s.DB.QueryRowContext(ctx,
		`SELECT `+entryColumns+` FROM discretionary_entries WHERE id = $1`, id))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return e, nil
}

// ListEntries возвращает записи по фильтру, новые первыми.
func (s *Storage) ListEntries(ctx context.Context, f models.EntryFilter) ([]models.DiscretionaryEntry, error) {
	const op = "storage.ListEntries"
	ctx, cancel, err := s.opContext(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var from, to sql.NullTime
	if f.From != nil {
		from = sql.NullTime{Time: *f.From, Valid: true}
	}
	if f.To != nil {
		to = sql.NullTime{Time: *f.To, Valid: true}
	}
	query := `SELECT ` + entryColumns + `
			  FROM discretionary_entries
			  WHERE ($1::text = '' OR polarity = $1::text)
			    AND ($2::timestamptz IS NULL OR entry_date >= $2::timestamptz)
			    AND ($3::timestamptz IS NULL OR entry_date <= $3::timestamptz)
			  ORDER BY entry_date DESC, id DESC
			  LIMIT NULLIF($4::int, 0) OFFSET $5::int`
	rows, err := s.DB.QueryContext(ctx, query, string(f.Polarity), from, to, f.Limit, f.Offset)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.DiscretionaryEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, wrapErr(op, err)
		}
		result = append(result, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}
	return result, nil
}
