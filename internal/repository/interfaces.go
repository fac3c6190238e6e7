package repository

import (
	"context"

	"github.com/kitbuilder587/search-pipeline/internal/domain"
)

// HistoryRepository - хранилище истории поиска.
// Инвариант: на слово максимум одна запись (case-sensitive); Record
// сначала удаляет старую запись, потом вставляет новую.
type HistoryRepository interface {
	// Record trims the word, no-ops on an empty result, then upserts
	// (delete old record, insert fresh one with the current timestamp).
	Record(ctx context.Context, word string) error

	// Query returns up to limit records whose word starts with prefix,
	// most recent first. Empty prefix matches everything.
	Query(ctx context.Context, prefix string, limit int) ([]domain.HistoryRecord, error)

	// Delete removes one record by id. Returns domain.ErrRecordNotFound
	// if it is already gone; callers treat that as non-fatal.
	Delete(ctx context.Context, id int64) error

	// Clear removes all records.
	Clear(ctx context.Context) error

	Close() error
}
