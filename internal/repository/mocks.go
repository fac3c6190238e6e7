package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/kitbuilder587/search-pipeline/internal/domain"
)

// MockHistoryRepository - in-memory реализация для тестов сервисного слоя.
type MockHistoryRepository struct {
	mu      sync.RWMutex
	records map[int64]domain.HistoryRecord
	nextID  int64

	// FailWith makes every operation fail; used to test StorageError paths.
	FailWith error

	// Now is overridable for deterministic timestamps.
	Now func() time.Time
}

func NewMockHistoryRepository() *MockHistoryRepository {
	return &MockHistoryRepository{
		records: make(map[int64]domain.HistoryRecord),
		nextID:  1,
		Now:     time.Now,
	}
}

func (m *MockHistoryRepository) Record(ctx context.Context, word string) error {
	if m.FailWith != nil {
		return m.FailWith
	}

	word = domain.NormalizeWord(word)
	if word == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for id, rec := range m.records {
		if rec.Word == word {
			delete(m.records, id)
		}
	}

	rec := domain.HistoryRecord{ID: m.nextID, Word: word, CreatedAt: m.Now()}
	m.records[rec.ID] = rec
	m.nextID++
	return nil
}

func (m *MockHistoryRepository) Query(ctx context.Context, prefix string, limit int) ([]domain.HistoryRecord, error) {
	if m.FailWith != nil {
		return nil, m.FailWith
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []domain.HistoryRecord
	for _, rec := range m.records {
		if strings.HasPrefix(rec.Word, prefix) {
			out = append(out, rec)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID > out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (m *MockHistoryRepository) Delete(ctx context.Context, id int64) error {
	if m.FailWith != nil {
		return m.FailWith
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.records[id]; !ok {
		return domain.ErrRecordNotFound
	}
	delete(m.records, id)
	return nil
}

func (m *MockHistoryRepository) Clear(ctx context.Context) error {
	if m.FailWith != nil {
		return m.FailWith
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.records = make(map[int64]domain.HistoryRecord)
	return nil
}

func (m *MockHistoryRepository) Close() error {
	return nil
}

// Len - количество записей, для ассертов в тестах.
func (m *MockHistoryRepository) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.records)
}
