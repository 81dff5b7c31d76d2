package repository

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/creditai/pricing-service/internal/models"
)

func sampleDecisions() []models.Decision {
	return []models.Decision{
		{
			ID:                 "d-1",
			Timestamp:          time.Date(2025, 3, 14, 9, 30, 0, 0, time.UTC),
			ApplicantID:        "app-1",
			Country:            models.CountryUSA,
			CreditScore:        720,
			LoanAmount:         15000,
			BaseRate:           0.12,
			RiskAdjustment:     -0.0085,
			MarketAdjustment:   -0.01,
			ProfitAdjustment:   -0.0025,
			TotalAdjustment:    -0.0083,
			FinalRate:          0.1117,
			DefaultProbability: 0.0732,
			ExpectedProfit:     1113.24,
			Reasoning:          []string{"Standard risk assessment"},
		},
		{
			ID:                 "d-2",
			Timestamp:          time.Date(2025, 3, 15, 11, 0, 0, 0, time.UTC),
			ApplicantID:        "app-2",
			Country:            models.CountryIndia,
			CreditScore:        810,
			LoanAmount:         8000,
			BaseRate:           0.18,
			RiskAdjustment:     -0.012,
			MarketAdjustment:   -0.02,
			ProfitAdjustment:   0,
			TotalAdjustment:    -0.0132,
			FinalRate:          0.1668,
			DefaultProbability: 0.041,
			ExpectedProfit:     1148.6,
			Reasoning:          []string{"Standard risk assessment", "Excellent CIBIL score - prime borrower"},
		},
	}
}

func TestFileStoreRoundTrip(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "decisions.json"), "")
	decisions := sampleDecisions()

	require.NoError(t, store.Save(decisions))
	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, decisions, loaded)
}

func TestFileStoreSaveNilWritesEmptyArray(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "decisions.json"), "")

	require.NoError(t, store.Save(nil))
	raw, err := os.ReadFile(store.Path())
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(raw), "["))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Empty(t, loaded)
}

func TestFileStoreCreatesSnapshotDir(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "nested", "data", "decisions.json"), "")

	require.NoError(t, store.Save(sampleDecisions()))
	_, err := os.Stat(store.Path())
	require.NoError(t, err)
}

func TestFileStoreLoadMissingFile(t *testing.T) {
	store := NewFileStore(filepath.Join(t.TempDir(), "absent.json"), "")

	_, err := store.Load()
	var serr *models.SerializationError
	require.ErrorAs(t, err, &serr)
}

func TestFileStoreLoadCorruptJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	_, err := NewFileStore(path, "").Load()
	var serr *models.SerializationError
	require.ErrorAs(t, err, &serr)
}

func TestFileStoreEncryptedRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.json")
	store := NewFileStore(path, "hunter2")
	decisions := sampleDecisions()

	require.NoError(t, store.Save(decisions))

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "decision_id")
	assert.Contains(t, string(raw), `"salt"`)
	assert.Contains(t, string(raw), `"hmac"`)

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, decisions, loaded)
}

func TestFileStoreEncryptedWrongPassphrase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "decisions.json")
	require.NoError(t, NewFileStore(path, "hunter2").Save(sampleDecisions()))

	_, err := NewFileStore(path, "letmein").Load()
	var serr *models.SerializationError
	require.ErrorAs(t, err, &serr)
	assert.Contains(t, err.Error(), "integrity check failed")
}

func TestFileStoreSaveIsAtomic(t *testing.T) {
	dir := t.TempDir()
	store := NewFileStore(filepath.Join(dir, "decisions.json"), "")

	require.NoError(t, store.Save(sampleDecisions()))
	require.NoError(t, store.Save(sampleDecisions()[:1]))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	// No temp files are left behind after a successful replace.
	require.Len(t, entries, 1)
	assert.Equal(t, "decisions.json", entries[0].Name())

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}
