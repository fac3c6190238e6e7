package sqlite

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/kitbuilder587/search-pipeline/internal/domain"
)

// HistoryRepo - встраиваемый бэкенд истории на SQLite.
// Один писатель за раз: сериализуем через database/sql (max 1 conn).
type HistoryRepo struct {
	db *sql.DB

	insertRecord *sql.Stmt
	deleteByWord *sql.Stmt
	deleteByID   *sql.Stmt
}

func Open(path string) (*HistoryRepo, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("%w: open sqlite: %v", domain.ErrStorage, err)
	}

	// одна запись/чтение за раз достаточно для локальной истории
	db.SetMaxOpenConns(1)

	repo := &HistoryRepo{db: db}
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, err
	}
	if err := repo.prepareStatements(); err != nil {
		db.Close()
		return nil, err
	}

	return repo, nil
}

func (r *HistoryRepo) migrate() error {
	_, err := r.db.Exec(`
		CREATE TABLE IF NOT EXISTS search_records (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			word TEXT NOT NULL UNIQUE,
			created_at DATETIME NOT NULL DEFAULT (STRFTIME('%Y-%m-%d %H:%M:%f', 'NOW'))
		);
		CREATE INDEX IF NOT EXISTS idx_search_records_created_at
			ON search_records (created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("%w: migrate: %v", domain.ErrStorage, err)
	}
	return nil
}

func (r *HistoryRepo) prepareStatements() error {
	var err error

	r.insertRecord, err = r.db.Prepare(`INSERT INTO search_records (word) VALUES (?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare insert: %v", domain.ErrStorage, err)
	}

	r.deleteByWord, err = r.db.Prepare(`DELETE FROM search_records WHERE word = ?`)
	if err != nil {
		return fmt.Errorf("%w: prepare delete by word: %v", domain.ErrStorage, err)
	}

	r.deleteByID, err = r.db.Prepare(`DELETE FROM search_records WHERE id = ?`)
	if err != nil {
		return fmt.Errorf("%w: prepare delete by id: %v", domain.ErrStorage, err)
	}

	return nil
}

func (r *HistoryRepo) Record(ctx context.Context, word string) error {
	word = domain.NormalizeWord(word)
	if word == "" {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("%w: begin: %v", domain.ErrStorage, err)
	}
	defer tx.Rollback()

	if _, err := tx.StmtContext(ctx, r.deleteByWord).ExecContext(ctx, word); err != nil {
		return fmt.Errorf("%w: delete duplicate: %v", domain.ErrStorage, err)
	}

	if _, err := tx.StmtContext(ctx, r.insertRecord).ExecContext(ctx, word); err != nil {
		return fmt.Errorf("%w: insert record: %v", domain.ErrStorage, err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", domain.ErrStorage, err)
	}
	return nil
}

func (r *HistoryRepo) Query(ctx context.Context, prefix string, limit int) ([]domain.HistoryRecord, error) {
	query := `
		SELECT id, word, created_at
		FROM search_records
		WHERE word GLOB ? || '*'
		ORDER BY created_at DESC, id DESC
	`
	args := []any{escapeGlob(prefix)}
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
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
	result, err := r.deleteByID.ExecContext(ctx, id)
	if err != nil {
		return fmt.Errorf("%w: delete record: %v", domain.ErrStorage, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: rows affected: %v", domain.ErrStorage, err)
	}
	if affected == 0 {
		return domain.ErrRecordNotFound
	}
	return nil
}

func (r *HistoryRepo) Clear(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, `DELETE FROM search_records`); err != nil {
		return fmt.Errorf("%w: clear records: %v", domain.ErrStorage, err)
	}
	return nil
}

func (r *HistoryRepo) Close() error {
	return r.db.Close()
}

// escapeGlob экранирует метасимволы GLOB; GLOB выбран вместо LIKE,
// потому что LIKE в SQLite нечувствителен к регистру для ASCII
func escapeGlob(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[':
			out = append(out, '[', s[i], ']')
		default:
			out = append(out, s[i])
		}
	}
	return string(out)
}
