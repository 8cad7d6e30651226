package store

import (
	"context"
	"fmt"
	"sync"

	"fjacquet/ledger-ingest/internal/models"
)

// MemoryStore is an in-process TransactionStore used for dry runs and tests.
type MemoryStore struct {
	mu      sync.Mutex
	nextID  int64
	txs     []models.PersistedTransaction
	uploads map[string]models.Upload

	// InsertError makes InsertBatch fail when set.
	InsertError error
	// ListError makes ListByUser fail when set.
	ListError error
}

// NewMemoryStore returns an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{uploads: make(map[string]models.Upload)}
}

// InsertBatch assigns increasing ids and keeps copies of txs.
func (m *MemoryStore) InsertBatch(_ context.Context, txs []models.PersistedTransaction) ([]models.PersistedTransaction, error) {
	if m.InsertError != nil {
		return nil, storeErr("insert", DriverMemory, m.InsertError)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	saved := make([]models.PersistedTransaction, len(txs))
	for i, t := range txs {
		m.nextID++
		t.ID = m.nextID
		saved[i] = t
	}
	m.txs = append(m.txs, saved...)
	return saved, nil
}

// ListByUser returns the user's transactions in insertion order.
func (m *MemoryStore) ListByUser(_ context.Context, userID string) ([]models.PersistedTransaction, error) {
	if m.ListError != nil {
		return nil, storeErr("list", DriverMemory, m.ListError)
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.PersistedTransaction
	for _, t := range m.txs {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

// RecordUpload stores the upload.
func (m *MemoryStore) RecordUpload(_ context.Context, u models.Upload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.uploads[u.ID]; ok {
		return storeErr("record upload", DriverMemory, fmt.Errorf("upload %s already exists", u.ID))
	}
	m.uploads[u.ID] = u
	return nil
}

// MarkUploadProcessed flags the upload.
func (m *MemoryStore) MarkUploadProcessed(_ context.Context, uploadID string, count int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.uploads[uploadID]
	if !ok {
		return storeErr("mark upload", DriverMemory, fmt.Errorf("upload %s not found", uploadID))
	}
	u.Processed = true
	u.TransactionsCount = count
	m.uploads[uploadID] = u
	return nil
}

// Upload returns a recorded upload.
func (m *MemoryStore) Upload(uploadID string) (models.Upload, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.uploads[uploadID]
	return u, ok
}

// Close is a no-op.
func (m *MemoryStore) Close() error { return nil }
