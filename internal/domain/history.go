package domain

import (
	"strings"
	"time"
)

// HistoryRecord - одна запись истории поиска.
// На каждое слово существует максимум одна запись: повторный поиск
// удаляет старую и вставляет новую, поэтому CreatedAt всегда отражает
// последний поиск этого слова.
type HistoryRecord struct {
	ID        int64
	Word      string
	CreatedAt time.Time
}

// NormalizeWord trims the word the way HistoryRepository.Record does.
// An empty result means the word must not be recorded.
func NormalizeWord(word string) string {
	return strings.TrimSpace(word)
}
