package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/kitbuilder587/search-pipeline/internal/domain"
)

type HistoryRepo struct {
	db *DB
}

func NewHistoryRepo(db *DB) *HistoryRepo {
	return &HistoryRepo{db: db}
}

func (r *HistoryRepo) Record(ctx context.Context, word string) error {
	word = domain.NormalizeWord(word)
	if word == "" {
		return nil
	}

	// delete-then-insert в одной транзакции: новая запись получает свежие id и created_at
	tx, err := r.db.Pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrStorage, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM search_records WHERE word = $1`, word); err != nil {
		return fmt.Errorf("%w: delete duplicate: %v", domain.ErrStorage, err)
	}

	if _, err := tx.Exec(ctx, `INSERT INTO search_records (word) VALUES ($1)`, word); err != nil {
		return fmt.Errorf("%w: insert record: %v", domain.ErrStorage, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrStorage, err)
	}
	return nil
}

func (r *HistoryRepo) Query(ctx context.Context, prefix string, limit int) ([]domain.HistoryRecord, error) {
	query := `
        SELECT id, word, created_at
        FROM search_records
        WHERE word LIKE $1 || '%'
        ORDER BY created_at DESC, id DESC
    `
	args := []any{escapeLike(prefix)}
	if limit > 0 {
		query += ` LIMIT $2`
		args = append(args, limit)
	}

	rows, err := r.db.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: query records: %v", domain.ErrStorage, err)
	}
	defer rows.Close()

	var records []domain.HistoryRecord
	for rows.Next() {
		var rec domain.HistoryRecord
		if err := rows.Scan(&rec.ID, &rec.Word, &rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan record: %v", domain.ErrStorage, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterate records: %v", domain.ErrStorage, err)
	}

	return records, nil
}

func (r *HistoryRepo) Delete(ctx context.Context, id int64) error {
	result, err := r.db.Pool.Exec(ctx, `DELETE FROM search_records WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("%w: delete record: %v", domain.ErrStorage, err)
	}

	if result.RowsAffected() == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

func (r *HistoryRepo) Clear(ctx context.Context) error {
	if _, err := r.db.Pool.Exec(ctx, `DELETE FROM search_records`); err != nil {
		return fmt.Errorf("%w: clear records: %v", domain.ErrStorage, err)
	}
	return nil
}

func (r *HistoryRepo) Close() error {
	r.db.Close()
	return nil
}

// GetByWord - точечная выборка, используется интеграционными тестами
func (r *HistoryRepo) GetByWord(ctx context.Context, word string) (*domain.HistoryRecord, error) {
	var rec domain.HistoryRecord
	err := r.db.Pool.QueryRow(ctx,
		`SELECT id, word, created_at FROM search_records WHERE word = $1`, word,
	).Scan(&rec.ID, &rec.Word, &rec.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRecordNotFound
		}
		return nil, fmt.Errorf("%w: get by word: %v", domain.ErrStorage, err)
	}
	return &rec, nil
}

// escapeLike экранирует метасимволы LIKE, чтобы prefix был буквальным
func escapeLike(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '%', '_', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}
