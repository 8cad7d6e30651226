package common

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"fjacquet/ledger-ingest/internal/logging"
	"fjacquet/ledger-ingest/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTransactions() []models.CandidateTransaction {
	return []models.CandidateTransaction{
		{
			Date:        "01/01/2024",
			Description: "Coffee Shop",
			Amount:      models.MustAmount("150"),
			Type:        models.TypeExpense,
			Category:    "Outside Food",
		},
		{
			Date:        "02/01/2024",
			Description: "Salary, January",
			Amount:      models.MustAmount("50000.5"),
			Type:        models.TypeCredit,
			Category:    "Other",
			Bank:        "HDFC",
		},
	}
}

func TestWriteTransactionsCSV_RoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteTransactionsCSV(sampleTransactions(), &buf))

	out := buf.String()
	assert.Contains(t, out, "date,time,user,description,original_description,amount,type,category,bank,account_id\n")
	assert.Contains(t, out, "01/01/2024,,,Coffee Shop,,150.00,expense,Outside Food,,")
	assert.Contains(t, out, `"Salary, January"`)

	back, err := ReadTransactionsCSV(&buf)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, "Salary, January", back[1].Description)
	assert.True(t, back[1].Amount.Equal(models.MustAmount("50000.50")))
	assert.Equal(t, "HDFC", back[1].Bank)
}

func TestWriteTransactionsCSV_Nil(t *testing.T) {
	assert.Error(t, WriteTransactionsCSV(nil, &bytes.Buffer{}))
}

func TestWriteTransactionsToCSV_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "transactions.csv")
	logger := logging.NewMockLogger()

	require.NoError(t, WriteTransactionsToCSV(sampleTransactions(), path, logger))

	content, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(content), "Coffee Shop")
	assert.True(t, logger.HasEntry("INFO", "Wrote transactions to CSV file"))
}

func TestSetDelimiter(t *testing.T) {
	SetDelimiter(';')
	defer SetDelimiter(',')

	var buf bytes.Buffer
	require.NoError(t, WriteTransactionsCSV(sampleTransactions()[:1], &buf))
	assert.Contains(t, buf.String(), "date;time;user;description")
}

func TestReadTransactionsCSV_SkipsCommentHeader(t *testing.T) {
	var buf bytes.Buffer
	buf.WriteString("# Consolidated from source files:\n# - a.csv\n#\n")
	require.NoError(t, WriteTransactionsCSV(sampleTransactions(), &buf))

	back, err := ReadTransactionsCSV(&buf)
	require.NoError(t, err)
	require.Len(t, back, 2)
	assert.Equal(t, "Coffee Shop", back[0].Description)
}
