// Package duplicates finds stored transactions of one user that probably
// record the same real-world event twice.
package duplicates

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
)

// Defaults for Options.
const (
	DefaultSimilarityThreshold = 0.8
	DefaultRecencyWindow       = 300 * time.Second
)

// Options tune the pair test. Zero values take the defaults.
type Options struct {
	SimilarityThreshold float64
	RecencyWindow       time.Duration
}

func (o Options) withDefaults() Options {
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = DefaultSimilarityThreshold
	}
	if o.RecencyWindow <= 0 {
		o.RecencyWindow = DefaultRecencyWindow
	}
	return o
}

// Report is the outcome of one duplicate scan.
type Report struct {
	Groups          []models.DuplicateGroup `json:"duplicateGroups"`
	TotalDuplicates int                     `json:"totalDuplicates"`
	Message         string                  `json:"message"`
}

// Lister loads every stored transaction of a user.
type Lister interface {
	ListByUser(ctx context.Context, userID string) ([]models.PersistedTransaction, error)
}

// Finder runs duplicate scans against a store. It holds no per-scan state.
type Finder struct {
	store  Lister
	opts   Options
	logger logging.Logger
}

// NewFinder returns a Finder reading from store.
func NewFinder(store Lister, opts Options, logger logging.Logger) *Finder {
	return &Finder{store: store, opts: opts.withDefaults(), logger: logging.OrDefault(logger)}
}

// Find loads the user's transactions once and groups the duplicates.
func (f *Finder) Find(ctx context.Context, userID string) (Report, error) {
	txs, err := f.store.ListByUser(ctx, userID)
	if err != nil {
		return Report{}, fmt.Errorf("failed to list transactions: %w", err)
	}

	groups := FindGroups(txs, f.opts)
	f.logger.Info("Duplicate scan finished",
		logging.Field{Key: logging.FieldUserID, Value: userID},
		logging.Field{Key: logging.FieldCount, Value: len(txs)},
		logging.Field{Key: logging.FieldDuplicateGroups, Value: len(groups)})
	return NewReport(groups), nil
}

// NewReport wraps groups with their count and a summary message.
func NewReport(groups []models.DuplicateGroup) Report {
	if groups == nil {
		groups = []models.DuplicateGroup{}
	}
	msg := "No duplicate transactions found"
	if len(groups) > 0 {
		msg = fmt.Sprintf("Found %d potential duplicate groups", len(groups))
	}
	return Report{Groups: groups, TotalDuplicates: len(groups), Message: msg}
}

type pair struct {
	a, b *models.PersistedTransaction
}

type bucketKey struct {
	user   string
	day    time.Time
	amount string
	txType models.TransactionType
}

// FindGroups returns duplicate groups among txs. Two transactions pair up
// when they share user, calendar date, amount and type and their
// descriptions match case-insensitively, are trigram-similar above the
// threshold, or were created within the recency window of each other.
// Pairs are visited by date and amount descending; a pair becomes a group
// only when neither transaction already belongs to one.
func FindGroups(txs []models.PersistedTransaction, opts Options) []models.DuplicateGroup {
	opts = opts.withDefaults()

	buckets := make(map[bucketKey][]*models.PersistedTransaction)
	for i := range txs {
		tx := &txs[i]
		key := bucketKey{
			user:   tx.UserID,
			day:    tx.CalendarDate(),
			amount: tx.Amount.Decimal.String(),
			txType: tx.Type,
		}
		buckets[key] = append(buckets[key], tx)
	}

	var pairs []pair
	for _, members := range buckets {
		sort.Slice(members, func(i, j int) bool { return members[i].ID < members[j].ID })
		for i := 0; i < len(members); i++ {
			for j := i + 1; j < len(members); j++ {
				if members[i].ID == members[j].ID {
					continue
				}
				if isDuplicate(members[i], members[j], opts) {
					pairs = append(pairs, pair{a: members[i], b: members[j]})
				}
			}
		}
	}

	sort.Slice(pairs, func(i, j int) bool {
		pi, pj := pairs[i], pairs[j]
		di, dj := pi.a.CalendarDate(), pj.a.CalendarDate()
		if !di.Equal(dj) {
			return di.After(dj)
		}
		if c := pi.a.Amount.Decimal.Cmp(pj.a.Amount.Decimal); c != 0 {
			return c > 0
		}
		if pi.a.ID != pj.a.ID {
			return pi.a.ID < pj.a.ID
		}
		return pi.b.ID < pj.b.ID
	})

	grouped := make(map[int64]bool)
	var groups []models.DuplicateGroup
	for _, p := range pairs {
		if grouped[p.a.ID] || grouped[p.b.ID] {
			continue
		}
		grouped[p.a.ID] = true
		grouped[p.b.ID] = true
		groups = append(groups, newGroup(p))
	}
	return groups
}

func isDuplicate(a, b *models.PersistedTransaction, opts Options) bool {
	if strings.EqualFold(a.Description, b.Description) {
		return true
	}
	if Similarity(a.Description, b.Description) > opts.SimilarityThreshold {
		return true
	}
	gap := a.CreatedAt.Sub(b.CreatedAt)
	if gap < 0 {
		gap = -gap
	}
	return gap < opts.RecencyWindow
}

func newGroup(p pair) models.DuplicateGroup {
	members := []models.DuplicateMember{
		{ID: p.a.ID, Description: p.a.Description, CreatedAt: p.a.CreatedAt},
		{ID: p.b.ID, Description: p.b.Description, CreatedAt: p.b.CreatedAt},
	}
	sort.SliceStable(members, func(i, j int) bool { return members[i].CreatedAt.Before(members[j].CreatedAt) })
	return models.DuplicateGroup{
		Date:         p.a.CalendarDate(),
		Amount:       p.a.Amount,
		Type:         p.a.Type,
		Category:     p.a.Category,
		Transactions: members,
	}
}
