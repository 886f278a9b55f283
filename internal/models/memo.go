package models

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"

	"github.com/bellmemo/bell-memo/internal/constants"
	interrors "github.com/bellmemo/bell-memo/internal/errors"
)

// Memo is a single note record. Everything except ID is optional and maps to NULL.
type Memo struct {
	ID      uuid.UUID `json:"id"`
	Title   *string   `json:"title"`
	Content *string   `json:"content"`
	Created *int64    `json:"created"`
	Updated *int64    `json:"updated"`
}

// NewMemo builds a memo with a fresh random ID and both timestamps set to ts.
func NewMemo(title, content string, ts int64) *Memo {
	return &Memo{
		ID:      uuid.New(),
		Title:   &title,
		Content: &content,
		Created: &ts,
		Updated: &ts,
	}
}

// TitleOrEmpty dereferences Title for display
func (m *Memo) TitleOrEmpty() string {
	if m.Title == nil {
		return ""
	}
	return *m.Title
}

// ContentOrEmpty dereferences Content for display
func (m *Memo) ContentOrEmpty() string {
	if m.Content == nil {
		return ""
	}
	return *m.Content
}

const memoColumns = "id, title, content, created, updated"

type MemoRepository struct {
	db *sql.DB
}

func NewMemoRepository(db *sql.DB) *MemoRepository {
	return &MemoRepository{db: db}
}

// Insert persists all memos in a single transaction. Either every memo is
// stored or none is. A duplicate ID yields ErrConstraintViolation.
func (r *MemoRepository) Insert(ctx context.Context, memos ...*Memo) error {
	if len(memos) == 0 {
		return nil
	}
	for i, m := range memos {
		if m == nil || m.ID == uuid.Nil {
			return fmt.Errorf("%w: memo %d has no id", interrors.ErrInvalidMemoID, i)
		}
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin insert: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // no-op after Commit

	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (?, ?, ?, ?, ?)", constants.MemoTable, memoColumns,
	))
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, m := range memos {
		_, err := stmt.ExecContext(ctx,
			m.ID.String(),
			nullString(m.Title),
			nullString(m.Content),
			nullInt64(m.Created),
			nullInt64(m.Updated),
		)
		if err != nil {
			if isConstraintError(err) {
				return fmt.Errorf("%w: memo %s: %w", interrors.ErrConstraintViolation, m.ID, err)
			}
			return fmt.Errorf("failed to insert memo %s: %w", m.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit insert: %w", err)
	}
	return nil
}

func (r *MemoRepository) GetByID(ctx context.Context, id uuid.UUID) (*Memo, error) {
	row := r.db.QueryRowContext(ctx, fmt.Sprintf(
		"SELECT %s FROM %s WHERE id = ?", memoColumns, constants.MemoTable,
	), id.String())

	memo, err := scanMemo(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, interrors.ErrMemoNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: get memo: %w", interrors.ErrDatabaseQuery, err)
	}
	return memo, nil
}

// List returns memos newest first. A limit of zero or less returns everything.
func (r *MemoRepository) List(ctx context.Context, limit, offset int) ([]*Memo, error) {
	query := fmt.Sprintf(
		"SELECT %s FROM %s ORDER BY created IS NULL, created DESC, id",
		memoColumns, constants.MemoTable,
	)
	var args []interface{}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
		if offset > 0 {
			query += " OFFSET ?"
			args = append(args, offset)
		}
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: list memos: %w", interrors.ErrDatabaseQuery, err)
	}
	defer rows.Close()

	memos := []*Memo{}
	for rows.Next() {
		memo, err := scanMemo(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan memo: %w", interrors.ErrDatabaseQuery, err)
		}
		memos = append(memos, memo)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating rows: %w", interrors.ErrDatabaseQuery, err)
	}

	return memos, nil
}

func (r *MemoRepository) Count(ctx context.Context) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, fmt.Sprintf("SELECT COUNT(*) FROM %s", constants.MemoTable)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("%w: count memos: %w", interrors.ErrDatabaseQuery, err)
	}
	return n, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanMemo(row rowScanner) (*Memo, error) {
	var (
		id               string
		title, content   sql.NullString
		created, updated sql.NullInt64
	)
	if err := row.Scan(&id, &title, &content, &created, &updated); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(strings.TrimSpace(id))
	if err != nil {
		return nil, fmt.Errorf("%w: %q", interrors.ErrInvalidMemoID, id)
	}

	memo := &Memo{ID: parsed}
	if title.Valid {
		memo.Title = &title.String
	}
	if content.Valid {
		memo.Content = &content.String
	}
	if created.Valid {
		memo.Created = &created.Int64
	}
	if updated.Valid {
		memo.Updated = &updated.Int64
	}
	return memo, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64(n *int64) sql.NullInt64 {
	if n == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *n, Valid: true}
}

func isConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code == sqlite3.ErrConstraint
	}
	return false
}
