package types

import "time"

const (
	// MaxEntryTitleLen is the longest accepted entry title.
	MaxEntryTitleLen = 200

	// MaxEntryContentLen is the longest accepted entry body.
	MaxEntryContentLen = 10000
)

// Entry represents a single diary entry. Every entry belongs to
// exactly one user and is never visible to anyone else.
type Entry struct {
	// ID is the unique identifier of the entry.
	ID int64 `json:"id" db:"id"`

	// Title is the entry headline, at most MaxEntryTitleLen characters.
	Title string `json:"title" db:"title"`

	// Content is the entry body, at most MaxEntryContentLen characters.
	Content string `json:"content" db:"content"`

	// EntryDate is the diary date the entry is written for.
	// It is independent of CreatedAt, which records the save time.
	EntryDate Date `json:"entry_date" db:"entry_date"`

	// UserID is the owning user. Immutable after creation.
	UserID int64 `json:"user_id" db:"user_id"`

	// CreatedAt is the timestamp when the entry was created.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the entry.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}
