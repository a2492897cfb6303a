// Package sqlite implements the persistence port on top of database/sql and modernc.org/sqlite.
// Uniqueness is enforced by the schema; constraint failures are mapped to conflict errors.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/isdelr/quill-be/internal/database"
	"github.com/isdelr/quill-be/internal/repository"
	msqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// timeLayout is fixed-width so stored timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Open opens and migrates the database at path and returns a Store over it.
func Open(path string) (*repository.Store, error) {
	db, err := database.New(path)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(db); err != nil {
		db.Close()
		return nil, err
	}
	return NewStore(db), nil
}

// NewStore wraps an already migrated database.
func NewStore(db *sql.DB) *repository.Store {
	return repository.NewStore(
		NewUserRepository(db),
		NewArticleRepository(db),
		NewCommentRepository(db),
		NewFollowRepository(db),
		NewEventRepository(db),
		db.Close,
	)
}

func formatTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t, nil
}

// constraintKind classifies a SQLite constraint failure.
type constraintKind int

const (
	notConstraint constraintKind = iota
	uniqueConstraint
	foreignKeyConstraint
	checkConstraint
)

// classify inspects err for a SQLite constraint violation and returns the offending
// column (for unique violations) alongside its kind.
func classify(err error) (constraintKind, string) {
	var se *msqlite.Error
	if !errors.As(err, &se) || se.Code()&0xff != sqlite3.SQLITE_CONSTRAINT {
		return notConstraint, ""
	}
	msg := se.Error()
	switch {
	case strings.Contains(msg, "UNIQUE constraint failed: "):
		return uniqueConstraint, uniqueColumn(msg)
	case strings.Contains(msg, "PRIMARY KEY"), se.Code() == sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return uniqueConstraint, uniqueColumn(msg)
	case strings.Contains(msg, "FOREIGN KEY"):
		return foreignKeyConstraint, ""
	case strings.Contains(msg, "CHECK"):
		return checkConstraint, ""
	}
	return notConstraint, ""
}

// uniqueColumn extracts "email" from "... UNIQUE constraint failed: users.email (2067)".
func uniqueColumn(msg string) string {
	_, rest, found := strings.Cut(msg, "constraint failed: ")
	if !found {
		return ""
	}
	rest = strings.TrimPrefix(rest, "UNIQUE constraint failed: ")
	if i := strings.IndexAny(rest, ", ("); i >= 0 {
		rest = rest[:i]
	}
	if _, col, ok := strings.Cut(rest, "."); ok {
		return col
	}
	return rest
}
