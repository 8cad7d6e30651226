package pipeline

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"fjacquet/ledger-ingest/internal/models"
)

// SummaryFilter narrows a summary to a year, a month of that year and an
// account type. Zero values do not filter.
type SummaryFilter struct {
	UserID      string
	Year        int
	Month       int
	AccountType models.AccountType
}

// CategoryTotal is the expense total of one category.
type CategoryTotal struct {
	Category string        `json:"category"`
	Total    models.Amount `json:"total"`
}

// Summary aggregates a user's stored transactions.
type Summary struct {
	TotalTransactions int             `json:"totalTransactions"`
	TotalCredits      models.Amount   `json:"totalCredits"`
	TotalExpenses     models.Amount   `json:"totalExpenses"`
	NetBalance        models.Amount   `json:"netBalance"`
	CategoryBreakdown []CategoryTotal `json:"categoryBreakdown"`
}

func (f SummaryFilter) matches(t models.PersistedTransaction) bool {
	if f.AccountType != "" && t.AccountType != f.AccountType {
		return false
	}
	if f.Year == 0 {
		return true
	}
	if t.Date.Year() != f.Year {
		return false
	}
	return f.Month == 0 || int(t.Date.Month()) == f.Month
}

// Summarize totals credits and expenses and breaks expenses down by
// category, largest first.
func (s *Service) Summarize(ctx context.Context, filter SummaryFilter) (Summary, error) {
	if s.store == nil {
		return Summary{}, errNoStore
	}
	txs, err := s.store.ListByUser(ctx, filter.UserID)
	if err != nil {
		return Summary{}, err
	}

	credits, expenses := decimal.Zero, decimal.Zero
	byCategory := make(map[string]decimal.Decimal)
	count := 0
	for _, t := range txs {
		if !filter.matches(t) {
			continue
		}
		count++
		switch t.Type {
		case models.TypeCredit:
			credits = credits.Add(t.Amount.Decimal)
		case models.TypeExpense:
			expenses = expenses.Add(t.Amount.Decimal)
			byCategory[t.Category] = byCategory[t.Category].Add(t.Amount.Decimal)
		}
	}

	breakdown := make([]CategoryTotal, 0, len(byCategory))
	for category, total := range byCategory {
		breakdown = append(breakdown, CategoryTotal{Category: category, Total: models.NewAmount(total)})
	}
	sort.Slice(breakdown, func(i, j int) bool {
		if c := breakdown[i].Total.Decimal.Cmp(breakdown[j].Total.Decimal); c != 0 {
			return c > 0
		}
		return breakdown[i].Category < breakdown[j].Category
	})

	return Summary{
		TotalTransactions: count,
		TotalCredits:      models.NewAmount(credits),
		TotalExpenses:     models.NewAmount(expenses),
		NetBalance:        models.NewAmount(credits.Sub(expenses)),
		CategoryBreakdown: breakdown,
	}, nil
}

// ExportFilter selects stored transactions to export. Zero values do not
// filter; Start and End are inclusive calendar days.
type ExportFilter struct {
	UserID   string
	Type     models.TransactionType
	Category string
	Start    time.Time
	End      time.Time
}

func (f ExportFilter) matches(t models.PersistedTransaction) bool {
	if f.Type != "" && t.Type != f.Type {
		return false
	}
	if f.Category != "" && t.Category != f.Category {
		return false
	}
	day := t.CalendarDate()
	if !f.Start.IsZero() && day.Before(models.CalendarDay(f.Start)) {
		return false
	}
	if !f.End.IsZero() && day.After(models.CalendarDay(f.End)) {
		return false
	}
	return true
}

// Export returns the matching transactions, newest date first and, within a
// day, most recently created first.
func (s *Service) Export(ctx context.Context, filter ExportFilter) ([]models.PersistedTransaction, error) {
	if s.store == nil {
		return nil, errNoStore
	}
	txs, err := s.store.ListByUser(ctx, filter.UserID)
	if err != nil {
		return nil, err
	}

	out := make([]models.PersistedTransaction, 0, len(txs))
	for _, t := range txs {
		if filter.matches(t) {
			out = append(out, t)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		di, dj := out[i].CalendarDate(), out[j].CalendarDate()
		if !di.Equal(dj) {
			return di.After(dj)
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}
