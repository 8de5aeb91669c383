package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/magabrotheeeer/dues-ledger/internal/lib/paystatus"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
	"github.com/magabrotheeeer/dues-ledger/internal/storage"
)

const obligationColumns = `id, member_id, kind, month, year, amount, status,
			      paid_at, reference, reviewed_by, created_at, updated_at`

// normalized приводит сырой статус к виду, в котором его хранит paystatus.Spellings.
func normalized(column string) string {
	return "lower(replace(replace(btrim(" + column + "), '-', '_'), ' ', '_'))"
}

var knownStatuses = func() string {
	quoted := make([]string, 0)
	for _, raw := range paystatus.Known() {
		quoted = append(quoted, "'"+raw+"'")
	}
	return "ARRAY[" + strings.Join(quoted, ", ") + "]::text[]"
}()

// statusIn строит условие "статус столбца входит в набор $param". Пустой набор
// пропускает любую строку. Нераспознанные написания считаются unpaid, как и в
// paystatus.Normalize.
func statusIn(column, param string) string {
	n := normalized(column)
	return "(cardinality(" + param + "::text[]) = 0 OR " + n + " = ANY(" + param + "::text[]) OR ('unpaid' = ANY(" +
		param + "::text[]) AND " + n + " <> ALL(" + knownStatuses + ")))"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanObligation(row rowScanner) (*models.Obligation, error) {
	var (
		ob                    models.Obligation
		kind, status          string
		reference, reviewedBy sql.NullString
		paidAt                sql.NullTime
	)
	if err := row.Scan(&ob.ID, &ob.MemberID, &kind, &ob.Period.Month, &ob.Period.Year,
		&ob.Amount, &status, &paidAt, &reference, &reviewedBy, &ob.CreatedAt, &ob.UpdatedAt); err != nil {
		return nil, err
	}
	ob.Kind = models.Kind(kind)
	ob.Status = paystatus.Normalize(status)
	if paidAt.Valid {
		ob.PaidAt = &paidAt.Time
	}
	if reference.Valid {
		ob.Reference = &reference.String
	}
	if reviewedBy.Valid {
		ob.ReviewedBy = &reviewedBy.String
	}
	return &ob, nil
}

func scanObligations(rows *sql.Rows) ([]models.Obligation, error) {
	defer func() {
		_ = rows.Close()
	}()
	var result []models.Obligation
	for rows.Next() {
		ob, err := scanObligation(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ob)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// GetYear возвращает ежемесячные записи участника за год.
func (s *Storage) GetYear(ctx context.Context, memberID string, year int) ([]models.Obligation, error) {
	const op = "storage.GetYear"
	ctx, cancel, err := s.opContext(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	query := `SELECT ` + obligationColumns + `
			  FROM obligations
			  WHERE member_id = $1 AND kind = 'monthly' AND year = $2
			  ORDER BY month`
	rows, err := s.DB.QueryContext(ctx, query, memberID, year)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	result, err := scanObligations(rows)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return result, nil
}

// GetObligation возвращает обязательство по ID.
func (s *Storage) GetObligation(ctx context.Context, id int64) (*models.Obligation, error) {
	const op = "storage.GetObligation"
	ctx, cancel, err := s.opContext(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	query := `SELECT ` + obligationColumns + ` FROM obligations WHERE id = $1`
	ob, err := scanObligation(s.DB.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return ob, nil
}

// GetEntrance возвращает вступительный взнос участника.
func (s *Storage) GetEntrance(ctx context.Context, memberID string) (*models.Obligation, error) {
	const op = "storage.GetEntrance"
	ctx, cancel, err := s.opContext(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	query := `SELECT ` + obligationColumns + `
			  FROM obligations WHERE member_id = $1 AND kind = 'entrance'`
	ob, err := scanObligation(s.DB.QueryRowContext(ctx, query, memberID))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return ob, nil
}

// ListObligations возвращает обязательства по фильтру. Фильтр по статусу
// учитывает все исторические написания статуса.
func (s *Storage) ListObligations(ctx context.Context, f models.ObligationFilter) ([]models.Obligation, error) {
	const op = "storage.ListObligations"
	ctx, cancel, err := s.opContext(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	statuses := []string{}
	if f.Status != "" {
		statuses = paystatus.Spellings(f.Status)
	}
	query := `SELECT ` + obligationColumns + `
			  FROM obligations
			  WHERE ($1::text = '' OR member_id = $1::text)
			    AND ($2::text = '' OR kind = $2::text)
			    AND ` + statusIn("status", "$3") + `
			    AND ($4::int = 0 OR year = $4::int)
			  ORDER BY id
			  LIMIT NULLIF($5::int, 0) OFFSET $6::int`
	rows, err := s.DB.QueryContext(ctx, query, f.MemberID, string(f.Kind), statuses, f.Year, f.Limit, f.Offset)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	result, err := scanObligations(rows)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return result, nil
}

// UpsertMonthly вставляет или обновляет запись по (участник, год, месяц).
func (s *Storage) UpsertMonthly(ctx context.Context, p models.UpsertParams) (*models.Obligation, error) {
	p.Kind = models.KindMonthly
	return s.upsert(ctx, "storage.UpsertMonthly",
		`(member_id, year, month) WHERE kind = 'monthly'`, p)
}

// UpsertEntrance вставляет или обновляет вступительный взнос участника.
func (s *Storage) UpsertEntrance(ctx context.Context, p models.UpsertParams) (*models.Obligation, error) {
	p.Kind = models.KindEntrance
	p.Period = models.Period{}
	return s.upsert(ctx, "storage.UpsertEntrance",
		`(member_id) WHERE kind = 'entrance'`, p)
}

func (s *Storage) upsert(ctx context.Context, op, conflictTarget string, p models.UpsertParams) (*models.Obligation, error) {
	ctx, cancel, err := s.opContext(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	reviewedBy := ""
	if p.Status == models.StatusPaid || p.Status == models.StatusFailed {
		reviewedBy = p.ActorID
	}
	guard := paystatus.Spellings(p.Guard...)
	if guard == nil {
		guard = []string{}
	}

	query := `INSERT INTO obligations (member_id, kind, month, year, amount, status,
			      paid_at, reference, reviewed_by)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, NULLIF($8, ''), NULLIF($9, ''))
			  ON CONFLICT ` + conflictTarget + `
			  DO UPDATE SET
			      amount = EXCLUDED.amount,
			      status = EXCLUDED.status,
			      paid_at = CASE
			          WHEN EXCLUDED.status = 'paid' AND obligations.paid_at IS NOT NULL
			               AND ` + normalized("obligations.status") + ` = ANY($10::text[])
			          THEN obligations.paid_at
			          ELSE EXCLUDED.paid_at END,
			      reference = CASE
			          WHEN $11::boolean AND EXCLUDED.reference IS NULL THEN obligations.reference
			          ELSE EXCLUDED.reference END,
			      reviewed_by = EXCLUDED.reviewed_by,
			      updated_at = NOW()
			  WHERE ` + statusIn("obligations.status", "$12") + `
			  RETURNING ` + obligationColumns

	ob, err := scanObligation(s.DB.QueryRowContext(ctx, query,
		p.MemberID, string(p.Kind), p.Period.Month, p.Period.Year, p.Amount, string(p.Status),
		p.PaidAt, p.Reference, reviewedBy,
		paystatus.Spellings(models.StatusPaid), p.KeepReference, guard))
	if err == nil {
		return ob, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, wrapErr(op, err)
	}

	// Конфликт был, но WHERE отклонил обновление: отдаём текущую запись.
	current, err := s.findByKey(ctx, p)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return current, fmt.Errorf("%s: %w", op, storage.ErrGuardRejected)
}

func (s *Storage) findByKey(ctx context.Context, p models.UpsertParams) (*models.Obligation, error) {
	query := `SELECT ` + obligationColumns + `
			  FROM obligations
			  WHERE member_id = $1 AND kind = $2 AND month = $3 AND year = $4`
	return scanObligation(s.DB.QueryRowContext(ctx, query,
		p.MemberID, string(p.Kind), p.Period.Month, p.Period.Year))
}

// SetStatus переводит обязательство в новый статус одним UPDATE с условием
// на текущий статус (compare-and-swap).
func (s *Storage) SetStatus(ctx context.Context, id int64, change models.StatusChange) (*models.Obligation, bool, error) {
	const op = "storage.SetStatus"
	ctx, cancel, err := s.opContext(ctx, op)
	if err != nil {
		return nil, false, err
	}
	defer cancel()

	from := paystatus.Spellings(change.From...)
	if from == nil {
		from = []string{}
	}
	query := `UPDATE obligations
			  SET status = $2, paid_at = $3, reviewed_by = NULLIF($4, ''), updated_at = NOW()
			  WHERE id = $1
			    AND ` + normalized("status") + ` <> ALL($5::text[])
			    AND ` + statusIn("status", "$6") + `
			  RETURNING ` + obligationColumns
	ob, err := scanObligation(s.DB.QueryRowContext(ctx, query,
		id, string(change.To), change.PaidAt, change.ActorID,
		paystatus.Spellings(change.To), from))
	if err == nil {
		return ob, true, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, false, wrapErr(op, err)
	}

	current, err := scanObligation(s.DB.QueryRowContext(ctx,
		`SELECT `+obligationColumns+` FROM obligations WHERE id = $1`, id))
	if err != nil {
		return nil, false, wrapErr(op, err)
	}
	if current.Status == change.To {
		return current, false, nil
	}
	return current, false, fmt.Errorf("%s: %w", op, storage.ErrTransitionRejected)
}

// DeleteObligation удаляет ошибочно внесённое обязательство.
func (s *Storage) DeleteObligation(ctx context.Context, id int64) error {
	const op = "storage.DeleteObligation"
	ctx, cancel, err := s.opContext(ctx, op)
	if err != nil {
		return err
	}
	defer cancel()

	result, err := s.DB.ExecContext(ctx, `DELETE FROM obligations WHERE id = $1`, id)
	if err != nil {
		return wrapErr(op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return wrapErr(op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, storage.ErrNotFound)
	}
	return nil
}
