package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/entity"
	"github.com/yourusername/telegram-gatekeeper-bot/internal/domain/repository"
)

// SQLiteViolationRepository SQLite asosidagi audit log
type SQLiteViolationRepository struct {
	db *sql.DB
}

var _ repository.ViolationRepository = (*SQLiteViolationRepository)(nil)

// NewSQLiteViolationRepository bazani ochish va sxemani yaratish
func NewSQLiteViolationRepository(dbPath string) (*SQLiteViolationRepository, error) {
	if dbPath == "" {
		return nil, errors.New("db path bo'sh bo'lmasligi kerak")
	}

	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("db papkasini yaratib bo'lmadi: %w", err)
	}

	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("sqlite ochilmadi: %w", err)
	}

	if err := createViolationSchema(db); err != nil {
		db.Close()
		return nil, err
	}

	return &SQLiteViolationRepository{db: db}, nil
}

func createViolationSchema(db *sql.DB) error {
	const schema = `
CREATE TABLE IF NOT EXISTS violations (
	id TEXT PRIMARY KEY,
	user_id TEXT NOT NULL,
	reason TEXT NOT NULL,
	text TEXT,
	warnings INTEGER NOT NULL,
	banned INTEGER NOT NULL DEFAULT 0,
	ts TIMESTAMP NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_violations_user_ts ON violations (user_id, ts);
CREATE INDEX IF NOT EXISTS idx_violations_ts ON violations (ts);
`
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("schema yaratib bo'lmadi: %w", err)
	}
	return nil
}

// Append yozuv qo'shish (faqat INSERT, yangilanmaydi)
func (s *SQLiteViolationRepository) Append(ctx context.Context, v entity.Violation) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO violations (id, user_id, reason, text, warnings, banned, ts) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		v.ID, v.UserID, v.Reason, v.Text, v.Warnings, v.Banned, v.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("violation yozilmadi: %w", err)
	}
	return nil
}

// Recent oxirgi yozuvlar
func (s *SQLiteViolationRepository) Recent(ctx context.Context, limit int) ([]entity.Violation, error) {
	query := `SELECT id, user_id, reason, text, warnings, banned, ts FROM violations ORDER BY ts DESC`
	var args []any
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.query(ctx, query, args...)
}

// ByUser foydalanuvchi yozuvlari
func (s *SQLiteViolationRepository) ByUser(ctx context.Context, userID string, limit int) ([]entity.Violation, error) {
	query := `SELECT id, user_id, reason, text, warnings, banned, ts FROM violations WHERE user_id = ? ORDER BY ts DESC`
	args := []any{userID}
	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}
	return s.query(ctx, query, args...)
}

func (s *SQLiteViolationRepository) query(ctx context.Context, query string, args ...any) ([]entity.Violation, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []entity.Violation{}
	for rows.Next() {
		var v entity.Violation
		var text sql.NullString
		var ts time.Time
		if err := rows.Scan(&v.ID, &v.UserID, &v.Reason, &text, &v.Warnings, &v.Banned, &ts); err != nil {
			return nil, err
		}
		v.Text = text.String
		v.CreatedAt = ts
		out = append(out, v)
	}
	return out, rows.Err()
}

// Close bazani yopish
func (s *SQLiteViolationRepository) Close() error {
	return s.db.Close()
}
