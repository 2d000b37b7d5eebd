package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/simple-diaries/apiserver/types"
)

const entryColumns = `id, title, content, entry_date, user_id, created_at, updated_at`

// EntryRepository handles persistence for diary entries.
type EntryRepository struct {
	db *sql.DB
}

func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

func (r *EntryRepository) GetByID(ctx context.Context, id int64) (types.Entry, error) {
	const query = `
		SELECT ` + entryColumns + `
		FROM diary_entries
		WHERE id = $1`
	entry, err := scanEntry(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Entry{}, ErrNotFound
		}
		return types.Entry{}, err
	}
	return entry, nil
}

func (r *EntryRepository) Create(ctx context.Context, entry types.Entry) (types.Entry, error) {
	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	const query = `
		INSERT INTO diary_entries (title, content, entry_date, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		entry.Title,
		entry.Content,
		entry.EntryDate,
		entry.UserID,
		entry.CreatedAt,
		entry.UpdatedAt,
	).Scan(&entry.ID); err != nil {
		return types.Entry{}, err
	}
	return entry, nil
}

// Update rewrites title, content, and entry date of an entry owned by ownerID.
// The existence and ownership checks run in the same transaction as the
// update, with the row locked, so the checked state cannot change underneath.
// A missing row yields ErrNotFound; a row owned by someone else ErrForbidden.
func (r *EntryRepository) Update(ctx context.Context, entry types.Entry, ownerID int64) (types.Entry, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return types.Entry{}, err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stored, err := lockEntry(ctx, tx, entry.ID, ownerID)
	if err != nil {
		return types.Entry{}, err
	}

	stored.Title = entry.Title
	stored.Content = entry.Content
	stored.EntryDate = entry.EntryDate
	stored.UpdatedAt = time.Now()

	const query = `
		UPDATE diary_entries
		SET title = $1,
			content = $2,
			entry_date = $3,
			updated_at = $4
		WHERE id = $5`
	if _, err := tx.ExecContext(
		ctx,
		query,
		stored.Title,
		stored.Content,
		stored.EntryDate,
		stored.UpdatedAt,
		stored.ID,
	); err != nil {
		return types.Entry{}, err
	}

	if err := tx.Commit(); err != nil {
		return types.Entry{}, err
	}
	return stored, nil
}

// Delete removes an entry owned by ownerID under the same transactional
// guard as Update.
func (r *EntryRepository) Delete(ctx context.Context, id, ownerID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := lockEntry(ctx, tx, id, ownerID); err != nil {
		return err
	}

	const query = `DELETE FROM diary_entries WHERE id = $1`
	if _, err := tx.ExecContext(ctx, query, id); err != nil {
		return err
	}

	return tx.Commit()
}

// lockEntry fetches an entry FOR UPDATE and verifies ownership.
// Existence is checked before ownership, in that order.
func lockEntry(ctx context.Context, tx *sql.Tx, id, ownerID int64) (types.Entry, error) {
	const query = `
		SELECT ` + entryColumns + `
		FROM diary_entries
		WHERE id = $1
		FOR UPDATE`
	entry, err := scanEntry(tx.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Entry{}, ErrNotFound
		}
		return types.Entry{}, err
	}
	if entry.UserID != ownerID {
		return types.Entry{}, ErrForbidden
	}
	return entry, nil
}

// ListByUser returns a page of the user's entries, newest diary date first.
func (r *EntryRepository) ListByUser(ctx context.Context, userID int64, offset, limit int) ([]types.Entry, int, error) {
	const countQuery = `SELECT COUNT(1) FROM diary_entries WHERE user_id = $1`
	const listQuery = `
		SELECT ` + entryColumns + `
		FROM diary_entries
		WHERE user_id = $1
		ORDER BY entry_date DESC, id DESC
		OFFSET $2 LIMIT $3`
	return r.page(ctx, countQuery, listQuery, []any{userID}, offset, limit)
}

// FindByDate returns a page of the user's entries for one exact diary date.
func (r *EntryRepository) FindByDate(ctx context.Context, userID int64, date types.Date, offset, limit int) ([]types.Entry, int, error) {
	const countQuery = `SELECT COUNT(1) FROM diary_entries WHERE user_id = $1 AND entry_date = $2`
	const listQuery = `
		SELECT ` + entryColumns + `
		FROM diary_entries
		WHERE user_id = $1 AND entry_date = $2
		ORDER BY entry_date DESC, id DESC
		OFFSET $3 LIMIT $4`
	return r.page(ctx, countQuery, listQuery, []any{userID, date}, offset, limit)
}

// FindInRange returns a page of the user's entries with diary dates in
// [start, end], both inclusive.
func (r *EntryRepository) FindInRange(ctx context.Context, userID int64, start, end types.Date, offset, limit int) ([]types.Entry, int, error) {
	const countQuery = `
		SELECT COUNT(1) FROM diary_entries
		WHERE user_id = $1 AND entry_date BETWEEN $2 AND $3`
	const listQuery = `
		SELECT ` + entryColumns + `
		FROM diary_entries
		WHERE user_id = $1 AND entry_date BETWEEN $2 AND $3
		ORDER BY entry_date DESC, id DESC
		OFFSET $4 LIMIT $5`
	return r.page(ctx, countQuery, listQuery, []any{userID, start, end}, offset, limit)
}

// SearchKeyword returns a page of the user's entries whose title or content
// contains the keyword, case-insensitively.
func (r *EntryRepository) SearchKeyword(ctx context.Context, userID int64, keyword string, offset, limit int) ([]types.Entry, int, error) {
	const countQuery = `
		SELECT COUNT(1) FROM diary_entries
		WHERE user_id = $1
		AND (title ILIKE '%' || $2 || '%' OR content ILIKE '%' || $2 || '%')`
	const listQuery = `
		SELECT ` + entryColumns + `
		FROM diary_entries
		WHERE user_id = $1
		AND (title ILIKE '%' || $2 || '%' OR content ILIKE '%' || $2 || '%')
		ORDER BY entry_date DESC, id DESC
		OFFSET $3 LIMIT $4`
	return r.page(ctx, countQuery, listQuery, []any{userID, keyword}, offset, limit)
}

// SearchKeywordInRange combines the keyword match with an inclusive
// diary-date range.
func (r *EntryRepository) SearchKeywordInRange(ctx context.Context, userID int64, keyword string, start, end types.Date, offset, limit int) ([]types.Entry, int, error) {
	const countQuery = `
		SELECT COUNT(1) FROM diary_entries
		WHERE user_id = $1
		AND (title ILIKE '%' || $2 || '%' OR content ILIKE '%' || $2 || '%')
		AND entry_date BETWEEN $3 AND $4`
	const listQuery = `
		SELECT ` + entryColumns + `
		FROM diary_entries
		WHERE user_id = $1
		AND (title ILIKE '%' || $2 || '%' OR content ILIKE '%' || $2 || '%')
		AND entry_date BETWEEN $3 AND $4
		ORDER BY entry_date DESC, id DESC
		OFFSET $5 LIMIT $6`
	return r.page(ctx, countQuery, listQuery, []any{userID, keyword, start, end}, offset, limit)
}

// page runs a COUNT query followed by the paged list query with
// OFFSET/LIMIT appended to args.
func (r *EntryRepository) page(ctx context.Context, countQuery, listQuery string, args []any, offset, limit int) ([]types.Entry, int, error) {
	if offset < 0 {
		offset = 0
	}
	if limit < 1 {
		limit = 10
	}

	var total int
	if err := r.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	listArgs := append(append([]any{}, args...), offset, limit)
	rows, err := r.db.QueryContext(ctx, listQuery, listArgs...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := make([]types.Entry, 0, limit)
	for rows.Next() {
		var entry types.Entry
		if err := rows.Scan(
			&entry.ID,
			&entry.Title,
			&entry.Content,
			&entry.EntryDate,
			&entry.UserID,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		); err != nil {
			return nil, 0, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, 0, err
	}

	return entries, total, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (types.Entry, error) {
	var entry types.Entry
	err := row.Scan(
		&entry.ID,
		&entry.Title,
		&entry.Content,
		&entry.EntryDate,
		&entry.UserID,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	return entry, err
}
