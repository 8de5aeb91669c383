package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/dues-ledger/internal/lib/paystatus"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
)

// SumPaid суммирует оплаченные обязательства. Год вступительного взноса
// определяется датой оплаты, а при её отсутствии датой создания записи.
func (s *Storage) SumPaid(ctx context.Context, kind models.Kind, year int) (decimal.Decimal, error) {
	const op = "storage.SumPaid"
	ctx, cancel, err := s.opContext(ctx, op)
	if err != nil {
		return decimal.Zero, err
	}
	defer cancel()

	query := `SELECT COALESCE(SUM(amount), 0)
			  FROM obligations
			  WHERE kind = $1
			    AND ` + normalized("status") + ` = ANY($2::text[])
			    AND ($3::int = 0 OR
			         (kind = 'monthly' AND year = $3::int) OR
			         (kind = 'entrance' AND EXTRACT(YEAR FROM COALESCE(paid_at, created_at))::int = $3::int))`
	var total decimal.Decimal
	err = s.DB.QueryRowContext(ctx, query, string(kind), paystatus.Spellings(models.StatusPaid), year).Scan(&total)
	if err != nil {
		return decimal.Zero, wrapErr(op, err)
	}
	return total, nil
}

// ListMonthlyByYear возвращает ежемесячные записи всех участников за год.
func (s *Storage) ListMonthlyByYear(ctx context.Context, year int) ([]models.Obligation, error) {
	const op = "storage.ListMonthlyByYear"
	ctx, cancel, err := s.opContext(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	query := `SELECT ` + obligationColumns + `
			  FROM obligations
			  WHERE kind = 'monthly' AND year = $1
			  ORDER BY member_id, month`
	rows, err := s.DB.QueryContext(ctx, query, year)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	result, err := scanObligations(rows)
	if err != nil {
		return nil, wrapErr(op, err)
	}
	return result, nil
}

// SumEntries суммирует записи свободного учёта одного направления.
func (s *Storage) SumEntries(ctx context.Context, polarity models.Polarity) (decimal.Decimal, error) {
	const op = "storage.SumEntries"
	ctx, cancel, err := s.opContext(ctx, op)
	if err != nil {
		return decimal.Zero, err
	}
	defer cancel()

	var total decimal.Decimal
	err = s.DB.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM discretionary_entries WHERE polarity = $1`,
		string(polarity)).Scan(&total)
	if err != nil {
		return decimal.Zero, wrapErr(op, err)
	}
	return total, nil
}

// TotalsByCategory группирует записи одного направления по категории.
func (s *Storage) TotalsByCategory(ctx context.Context, polarity models.Polarity) ([]models.CategoryTotal, error) {
	const op = "storage.TotalsByCategory"
	ctx, cancel, err := s.opContext(ctx, op)
	if err != nil {
		return nil, err
	}
	defer cancel()

	rows, err := s.DB.QueryContext(ctx, `
		SELECT category, SUM(amount), COUNT(*)
		FROM discretionary_entries
		WHERE polarity = $1
		GROUP BY category
		ORDER BY category`, string(polarity))
	if err != nil {
		return nil, wrapErr(op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var result []models.CategoryTotal
	for rows.Next() {
		var ct models.CategoryTotal
		if err := rows.Scan(&ct.Category, &ct.Total, &ct.Count); err != nil {
			return nil, wrapErr(op, err)
		}
		result = append(result, ct)
	}
	if err := rows.Err(); err != nil {
		return nil, wrapErr(op, err)
	}
	return result, nil
}
