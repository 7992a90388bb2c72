package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/gogotex/docshare/internal/document"
	"github.com/mattn/go-sqlite3"
)

// SQLiteRepo implements Repository on a single SQLite table. created_at is
// stored as unix milliseconds so range deletes compare integers.
type SQLiteRepo struct {
	db *sql.DB
}

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS documents (
	id          TEXT PRIMARY KEY,
	delete_code TEXT NOT NULL,
	custom      INTEGER NOT NULL DEFAULT 0,
	title       TEXT NOT NULL,
	author      TEXT,
	content     TEXT NOT NULL,
	font_size   TEXT NOT NULL,
	text_color  TEXT NOT NULL,
	text_format TEXT NOT NULL,
	line_height TEXT NOT NULL,
	theme       TEXT NOT NULL,
	created_at  INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_documents_created_at ON documents (created_at);
`

const sqliteColumns = `id, delete_code, custom, title, author, content, font_size, text_color, text_format, line_height, theme, created_at`

func NewSQLiteRepo(db *sql.DB) *SQLiteRepo {
	return &SQLiteRepo{db: db}
}

// Migrate creates the table and index. Idempotent; call once at startup.
func (s *SQLiteRepo) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, sqliteSchema); err != nil {
		return fmt.Errorf("migrate sqlite: %w", classifySQLite(err))
	}
	return nil
}

func (s *SQLiteRepo) Insert(ctx context.Context, d *document.Document) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO documents (`+sqliteColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		d.ID, d.DeleteCode, d.Custom, d.Title, d.Author, d.Content,
		d.FontSize, d.TextColor, d.TextFormat, d.LineHeight, d.Theme, d.CreatedAt.UnixMilli(),
	)
	if err != nil {
		var se sqlite3.Error
		if errors.As(err, &se) && (se.ExtendedCode == sqlite3.ErrConstraintPrimaryKey || se.ExtendedCode == sqlite3.ErrConstraintUnique) {
			return document.Errorf(document.ErrConflict, "ID %q is already taken", d.ID)
		}
		return fmt.Errorf("insert document: %w", classifySQLite(err))
	}
	return nil
}

func (s *SQLiteRepo) Exists(ctx context.Context, id string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, `SELECT 1 FROM documents WHERE id = ?`, id).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("lookup document: %w", classifySQLite(err))
	}
	return true, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanDocument(row rowScanner) (*document.Document, error) {
	var (
		d       document.Document
		author  sql.NullString
		created int64
	)
	err := row.Scan(&d.ID, &d.DeleteCode, &d.Custom, &d.Title, &author, &d.Content,
		&d.FontSize, &d.TextColor, &d.TextFormat, &d.LineHeight, &d.Theme, &created)
	if err != nil {
		return nil, err
	}
	if author.Valid {
		a := author.String
		d.Author = &a
	}
	d.CreatedAt = time.UnixMilli(created).UTC()
	return &d, nil
}

func (s *SQLiteRepo) Get(ctx context.Context, id string) (*document.Document, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+sqliteColumns+` FROM documents WHERE id = ?`, id)
	d, err := scanDocument(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, document.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", classifySQLite(err))
	}
	return d, nil
}

func (s *SQLiteRepo) DeleteWithCode(ctx context.Context, id, code string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = ? AND delete_code = ?`, id, code)
	if err != nil {
		return false, fmt.Errorf("delete document: %w", classifySQLite(err))
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("delete document: %w", err)
	}
	return n > 0, nil
}

func (s *SQLiteRepo) DeleteOlderThan(ctx context.Context, threshold time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE created_at < ?`, ceilMillis(threshold).UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("delete expired: %w", classifySQLite(err))
	}
	return res.RowsAffected()
}

func (s *SQLiteRepo) ListOlderThan(ctx context.Context, threshold time.Time) ([]*document.Document, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+sqliteColumns+` FROM documents WHERE created_at < ? ORDER BY created_at`, ceilMillis(threshold).UnixMilli())
	if err != nil {
		return nil, fmt.Errorf("list expired: %w", classifySQLite(err))
	}
	defer rows.Close()
	out := []*document.Document{}
	for rows.Next() {
		d, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("scan expired: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list expired: %w", classifySQLite(err))
	}
	return out, nil
}

func (s *SQLiteRepo) Ping(ctx context.Context) error {
	if err := s.db.PingContext(ctx); err != nil {
		return fmt.Errorf("sqlite ping: %w", classifySQLite(err))
	}
	return nil
}

// classifySQLite marks lock contention and timeouts as document.ErrUnavailable.
func classifySQLite(err error) error {
	var se sqlite3.Error
	if errors.As(err, &se) && (se.Code == sqlite3.ErrBusy || se.Code == sqlite3.ErrLocked) {
		return fmt.Errorf("%w: %v", document.ErrUnavailable, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", document.ErrUnavailable, err)
	}
	return err
}
