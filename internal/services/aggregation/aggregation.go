// Package aggregation считает сводные финансовые показатели по требованию:
// задолженность участника, сборы за год, баланс организации и разбивки.
// Ничего не кэширует, всё пересчитывается из хранилища при каждом вызове.
package aggregation

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/magabrotheeeer/dues-ledger/internal/directory"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/month"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/retry"
	"github.com/magabrotheeeer/dues-ledger/internal/lib/sl"
	"github.com/magabrotheeeer/dues-ledger/internal/models"
	"github.com/magabrotheeeer/dues-ledger/internal/storage"
)

// Store — часть хранилища, нужная для расчётов.
type Store interface {
	GetYear(ctx context.Context, memberID string, year int) ([]models.Obligation, error)
	storage.AggregateReader
}

// Directory отдаёт активных участников и их имена для отчёта о должниках.
type Directory interface {
	ListActiveMembers(ctx context.Context) ([]models.Member, error)
	MemberDisplayName(ctx context.Context, memberID string) string
}

// Outstanding — задолженность участника за год.
// Pending входит в Outstanding: заявка без подтверждения долг не закрывает.
type Outstanding struct {
	MemberID     string          `json:"member_id"`
	Year         int             `json:"year"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	NotYetDue    decimal.Decimal `json:"not_yet_due"`
	Paid         decimal.Decimal `json:"paid"`
	Pending      decimal.Decimal `json:"pending"`
	DueMonths    int             `json:"due_months"`
	FutureMonths int             `json:"future_months"`
	UnpaidMonths int             `json:"unpaid_months"`
}

// Collected — сумма сборов. Year=0 означает все годы.
type Collected struct {
	Year     int             `json:"year,omitempty"`
	Monthly  decimal.Decimal `json:"monthly"`
	Entrance decimal.Decimal `json:"entrance"`
	Total    decimal.Decimal `json:"total"`
}

// Balance — баланс организации и его слагаемые.
type Balance struct {
	MonthlyPaid  decimal.Decimal `json:"monthly_paid"`
	EntrancePaid decimal.Decimal `json:"entrance_paid"`
	Income       decimal.Decimal `json:"income"`
	Expense      decimal.Decimal `json:"expense"`
	Balance      decimal.Decimal `json:"balance"`
}

// Debtor — строка отчёта о должниках.
type Debtor struct {
	MemberID     string          `json:"member_id"`
	DisplayName  string          `json:"display_name"`
	Outstanding  decimal.Decimal `json:"outstanding"`
	UnpaidMonths int             `json:"unpaid_months"`
}

// Options задаёт сумму месячного взноса по умолчанию и часы.
type Options struct {
	MonthlyAmount decimal.Decimal
	Now           func() time.Time
	Retry         retry.Policy
}

// Engine считает показатели.
type Engine struct {
	log   *slog.Logger
	store Store
	dir   Directory
	opts  Options
}

// New создаёт Engine. dir нужен только для Arrears и может быть nil.
func New(log *slog.Logger, store Store, dir Directory, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MonthlyAmount.IsZero() {
		opts.MonthlyAmount = decimal.NewFromInt(5)
	}
	if opts.Retry.MaxRetries == 0 && opts.Retry.Initial == 0 {
		opts.Retry = retry.Default
	}
	return &Engine{log: log, store: store, dir: dir, opts: opts}
}

// MemberOutstanding считает задолженность участника за год. Наступившие
// месяцы: все двенадцать для прошлых лет, по текущий для текущего, ни одного
// для будущих. Месяцы без записи считаются неоплаченными на сумму по умолчанию.
func (e *Engine) MemberOutstanding(ctx context.Context, memberID string, year int) (*Outstanding, error) {
	const op = "aggregation.MemberOutstanding"

	if err := (models.Period{Month: 1, Year: year}).Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	obs, err := retry.Do(ctx, e.opts.Retry, func(ctx context.Context) ([]models.Obligation, error) {
		return e.store.GetYear(ctx, memberID, year)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	now := e.opts.Now()
	out := summarize(month.Lines(year, obs, now, e.opts.MonthlyAmount), month.Due(year, now))
	out.MemberID = memberID
	out.Year = year
	return &out, nil
}

func summarize(lines []models.MonthLine, due int) Outstanding {
	out := Outstanding{
		DueMonths:    due,
		FutureMonths: 12 - due,
		Outstanding:  decimal.Zero,
		NotYetDue:    decimal.Zero,
		Paid:         decimal.Zero,
		Pending:      decimal.Zero,
	}
	for _, l := range lines {
		switch l.Bucket {
		case models.BucketPaid:
			out.Paid = out.Paid.Add(l.Amount)
		case models.BucketOutstanding:
			out.Outstanding = out.Outstanding.Add(l.Amount)
			out.UnpaidMonths++
			if l.Status == models.StatusPending {
				out.Pending = out.Pending.Add(l.Amount)
			}
		case models.BucketNotYetDue:
			out.NotYetDue = out.NotYetDue.Add(l.Amount)
		}
	}
	return out
}

// YearCollected суммирует оплаченные ежемесячные взносы за год и вступительные
// взносы, оплаченные в этом году.
func (e *Engine) YearCollected(ctx context.Context, year int) (*Collected, error) {
	const op = "aggregation.YearCollected"
	if err := (models.Period{Month: 1, Year: year}).Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	c, err := e.collected(ctx, year)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

// TotalCollected — сборы за все годы.
func (e *Engine) TotalCollected(ctx context.Context) (*Collected, error) {
	const op = "aggregation.TotalCollected"
	c, err := e.collected(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return c, nil
}

func (e *Engine) collected(ctx context.Context, year int) (*Collected, error) {
	monthly, err := e.sumPaid(ctx, models.KindMonthly, year)
	if err != nil {
		return nil, err
	}
	entrance, err := e.sumPaid(ctx, models.KindEntrance, year)
	if err != nil {
		return nil, err
	}
	return &Collected{Year: year, Monthly: monthly, Entrance: entrance, Total: monthly.Add(entrance)}, nil
}

func (e *Engine) sumPaid(ctx context.Context, kind models.Kind, year int) (decimal.Decimal, error) {
	return retry.Do(ctx, e.opts.Retry, func(ctx context.Context) (decimal.Decimal, error) {
		return e.store.SumPaid(ctx, kind, year)
	})
}

func (e *Engine) sumEntries(ctx context.Context, polarity models.Polarity) (decimal.Decimal, error) {
	return retry.Do(ctx, e.opts.Retry, func(ctx context.Context) (decimal.Decimal, error) {
		return e.store.SumEntries(ctx, polarity)
	})
}

// OrganizationBalance = оплаченные взносы + доходы − расходы.
func (e *Engine) OrganizationBalance(ctx context.Context) (*Balance, error) {
	const op = "aggregation.OrganizationBalance"

	c, err := e.collected(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	income, err := e.sumEntries(ctx, models.PolarityIncome)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	expense, err := e.sumEntries(ctx, models.PolarityExpense)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return &Balance{
		MonthlyPaid:  c.Monthly,
		EntrancePaid: c.Entrance,
		Income:       income,
		Expense:      expense,
		Balance:      c.Total.Add(income).Sub(expense),
	}, nil
}

// CategoryBreakdown возвращает по строке на каждую категорию расходов,
// включая категории без записей.
func (e *Engine) CategoryBreakdown(ctx context.Context) ([]models.CategoryTotal, error) {
	const op = "aggregation.CategoryBreakdown"

	totals, err := e.totals(ctx, models.PolarityExpense)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	byCategory := make(map[models.ExpenseCategory]models.CategoryTotal, len(totals))
	var ignored []string
	for _, t := range totals {
		c, err := models.ParseExpenseCategory(t.Category)
		if err != nil {
			ignored = append(ignored, t.Category)
			continue
		}
		// старые версии писали категорию в другом регистре
		acc, ok := byCategory[c]
		if !ok {
			acc = models.CategoryTotal{Category: string(c), Total: decimal.Zero}
		}
		acc.Total = acc.Total.Add(t.Total)
		acc.Count += t.Count
		byCategory[c] = acc
	}

	out := make([]models.CategoryTotal, 0, len(models.ExpenseCategories()))
	for _, c := range models.ExpenseCategories() {
		t, ok := byCategory[c]
		if !ok {
			t = models.CategoryTotal{Category: string(c), Total: decimal.Zero}
		}
		out = append(out, t)
	}
	if len(ignored) > 0 {
		e.log.Warn("expense entries with unknown category ignored",
			slog.String("op", op), slog.Any("categories", ignored))
	}
	return out, nil
}

// IncomeBySource группирует доходы по источнику.
func (e *Engine) IncomeBySource(ctx context.Context) ([]models.CategoryTotal, error) {
	const op = "aggregation.IncomeBySource"
	totals, err := e.totals(ctx, models.PolarityIncome)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if totals == nil {
		totals = []models.CategoryTotal{}
	}
	return totals, nil
}

func (e *Engine) totals(ctx context.Context, polarity models.Polarity) ([]models.CategoryTotal, error) {
	return retry.Do(ctx, e.opts.Retry, func(ctx context.Context) ([]models.CategoryTotal, error) {
		return e.store.TotalsByCategory(ctx, polarity)
	})
}

// Arrears возвращает участников с задолженностью за год, крупные долги первыми.
// В расчёт попадают активные участники справочника и все, у кого есть записи
// за год. Если справочник недоступен, используются только записи.
func (e *Engine) Arrears(ctx context.Context, year int) ([]Debtor, error) {
	const op = "aggregation.Arrears"
	log := e.log.With(slog.String("op", op), slog.Int("year", year))

	if err := (models.Period{Month: 1, Year: year}).Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	obs, err := retry.Do(ctx, e.opts.Retry, func(ctx context.Context) ([]models.Obligation, error) {
		return e.store.ListMonthlyByYear(ctx, year)
	})
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	byMember := make(map[string][]models.Obligation)
	for _, ob := range obs {
		byMember[ob.MemberID] = append(byMember[ob.MemberID], ob)
	}
	if e.dir != nil {
		members, err := e.dir.ListActiveMembers(ctx)
		if err != nil {
			log.Warn("member directory unavailable, using recorded members only", sl.Err(err))
		}
		for _, m := range members {
			if _, ok := byMember[m.ID]; !ok {
				byMember[m.ID] = nil
			}
		}
	}

	now := e.opts.Now()
	debtors := make([]Debtor, 0)
	for memberID, memberObs := range byMember {
		sum := summarize(month.Lines(year, memberObs, now, e.opts.MonthlyAmount), month.Due(year, now))
		if !sum.Outstanding.IsPositive() {
			continue
		}
		debtors = append(debtors, Debtor{
			MemberID:     memberID,
			Outstanding:  sum.Outstanding,
			UnpaidMonths: sum.UnpaidMonths,
		})
	}
	sort.Slice(debtors, func(i, j int) bool {
		if c := debtors[i].Outstanding.Cmp(debtors[j].Outstanding); c != 0 {
			return c > 0
		}
		return debtors[i].MemberID < debtors[j].MemberID
	})

	for i := range debtors {
		if e.dir != nil {
			debtors[i].DisplayName = e.dir.MemberDisplayName(ctx, debtors[i].MemberID)
		} else {
			debtors[i].DisplayName = directory.Placeholder(debtors[i].MemberID)
		}
	}
	log.Debug("arrears computed", slog.Int("debtors", len(debtors)))
	return debtors, nil
}
