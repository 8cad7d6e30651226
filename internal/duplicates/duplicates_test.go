package duplicates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"
)

var base = time.Date(2024, 3, 10, 9, 0, 0, 0, time.UTC)

func tx(id int64, desc, amount string, created time.Time) models.PersistedTransaction {
	return models.PersistedTransaction{
		ID:          id,
		UserID:      "user-1",
		Date:        time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC),
		Description: desc,
		Amount:      models.MustAmount(amount),
		Type:        models.TypeExpense,
		Category:    "Shopping",
		CreatedAt:   created,
	}
}

type fakeLister struct {
	txs []models.PersistedTransaction
	err error
}

func (f *fakeLister) ListByUser(_ context.Context, userID string) ([]models.PersistedTransaction, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []models.PersistedTransaction
	for _, t := range f.txs {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func TestFindGroups_CaseInsensitiveDescriptions(t *testing.T) {
	txs := []models.PersistedTransaction{
		tx(1, "Amazon.in", "1299.00", base),
		tx(2, "AMAZON.IN", "1299.00", base.Add(2*time.Hour)),
	}

	groups := FindGroups(txs, Options{})
	require.Len(t, groups, 1)
	g := groups[0]
	assert.Equal(t, []int64{1, 2}, g.IDs())
	assert.True(t, g.Amount.Equal(models.MustAmount("1299")))
	assert.Equal(t, models.TypeExpense, g.Type)
	assert.Equal(t, "Shopping", g.Category)
	assert.Equal(t, 2*time.Hour, g.RecencyGap())
}

func TestFindGroups_DifferentMerchantsOutsideWindow(t *testing.T) {
	txs := []models.PersistedTransaction{
		tx(1, "Uber", "250", base),
		tx(2, "Zomato", "250", base.Add(10*time.Minute)),
	}
	assert.Empty(t, FindGroups(txs, Options{}))
}

func TestFindGroups_RecentCreationMatches(t *testing.T) {
	txs := []models.PersistedTransaction{
		tx(1, "Uber", "250", base),
		tx(2, "Zomato", "250", base.Add(2*time.Minute)),
	}
	groups := FindGroups(txs, Options{})
	require.Len(t, groups, 1)
	assert.Equal(t, []int64{1, 2}, groups[0].IDs())
}

func TestFindGroups_RequiresSameKey(t *testing.T) {
	other := tx(2, "Amazon.in", "1299", base)
	other.UserID = "user-2"
	credit := tx(3, "Amazon.in", "1299", base)
	credit.Type = models.TypeCredit
	nextDay := tx(4, "Amazon.in", "1299", base)
	nextDay.Date = nextDay.Date.AddDate(0, 0, 1)
	diffAmount := tx(5, "Amazon.in", "1300", base)

	txs := []models.PersistedTransaction{tx(1, "Amazon.in", "1299", base), other, credit, nextDay, diffAmount}
	assert.Empty(t, FindGroups(txs, Options{}))
}

func TestFindGroups_AmountScaleIgnored(t *testing.T) {
	txs := []models.PersistedTransaction{
		tx(1, "Rent", "15000", base),
		tx(2, "rent", "15000.00", base.Add(time.Hour)),
	}
	assert.Len(t, FindGroups(txs, Options{}), 1)
}

func TestFindGroups_ThreeWayClusterKeepsFirstPair(t *testing.T) {
	txs := []models.PersistedTransaction{
		tx(3, "Netflix", "649", base.Add(2*time.Hour)),
		tx(1, "Netflix", "649", base),
		tx(2, "NETFLIX", "649", base.Add(time.Hour)),
	}
	groups := FindGroups(txs, Options{})
	require.Len(t, groups, 1)
	assert.Equal(t, []int64{1, 2}, groups[0].IDs())
}

func TestFindGroups_OrderedByDateThenAmount(t *testing.T) {
	early := []models.PersistedTransaction{tx(1, "Cafe", "100", base), tx(2, "Cafe", "100", base)}
	late := []models.PersistedTransaction{tx(3, "Cafe", "50", base), tx(4, "Cafe", "50", base)}
	big := []models.PersistedTransaction{tx(5, "Cafe", "500", base), tx(6, "Cafe", "500", base)}
	for i := range late {
		late[i].Date = late[i].Date.AddDate(0, 0, 1)
	}

	txs := append(append(early, late...), big...)
	groups := FindGroups(txs, Options{})
	require.Len(t, groups, 3)
	assert.Equal(t, []int64{3, 4}, groups[0].IDs())
	assert.Equal(t, []int64{5, 6}, groups[1].IDs())
	assert.Equal(t, []int64{1, 2}, groups[2].IDs())
}

func TestFindGroups_MembersOrderedByCreation(t *testing.T) {
	txs := []models.PersistedTransaction{
		tx(1, "Swiggy", "320", base.Add(time.Hour)),
		tx(2, "swiggy", "320", base),
	}
	groups := FindGroups(txs, Options{})
	require.Len(t, groups, 1)
	assert.Equal(t, []int64{2, 1}, groups[0].IDs())
}

func TestFindGroups_CustomThreshold(t *testing.T) {
	txs := []models.PersistedTransaction{
		tx(1, "cat", "10", base),
		tx(2, "cats", "10", base.Add(time.Hour)),
	}
	assert.Empty(t, FindGroups(txs, Options{}))
	assert.Len(t, FindGroups(txs, Options{SimilarityThreshold: 0.4}), 1)
}

func TestFinder_Find(t *testing.T) {
	lister := &fakeLister{txs: []models.PersistedTransaction{
		tx(1, "Amazon.in", "1299", base),
		tx(2, "AMAZON.IN", "1299", base.Add(time.Hour)),
	}}
	logger := logging.NewMockLogger()
	finder := NewFinder(lister, Options{}, logger)

	report, err := finder.Find(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, 1, report.TotalDuplicates)
	assert.Equal(t, "Found 1 potential duplicate groups", report.Message)
	assert.True(t, logger.HasEntry("INFO", "Duplicate scan finished"))

	again, err := finder.Find(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, report, again)

	none, err := finder.Find(context.Background(), "user-2")
	require.NoError(t, err)
	assert.Equal(t, 0, none.TotalDuplicates)
	assert.NotNil(t, none.Groups)
	assert.Equal(t, "No duplicate transactions found", none.Message)
}

func TestFinder_FindStoreError(t *testing.T) {
	finder := NewFinder(&fakeLister{err: errors.New("connection refused")}, Options{}, nil)
	_, err := finder.Find(context.Background(), "user-1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}
