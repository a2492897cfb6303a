package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/isdelr/quill-be/internal/models"
)

const userColumns = "id, email, username, password_hash, bio, image, created_at, updated_at"

// UserRepository stores users in the users table.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create inserts a new user.
func (r *UserRepository) Create(ctx context.Context, user models.User) (models.User, error) {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO users("+userColumns+") VALUES(?, ?, ?, ?, ?, ?, ?, ?)",
		user.ID, user.Email, user.Username, user.PasswordHash, user.Bio, nullString(user.Image),
		formatTime(user.CreatedAt), formatTime(user.UpdatedAt),
	)
	if err != nil {
		return models.User{}, userWriteError(err)
	}
	return r.FindByID(ctx, user.ID)
}

// FindByID retrieves a single user by their ID.
func (r *UserRepository) FindByID(ctx context.Context, id string) (models.User, error) {
	return r.findOne(ctx, "id = ?", id)
}

// FindByEmail retrieves a single user by their email, case-insensitively.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (models.User, error) {
	return r.findOne(ctx, "email = ?", email)
}

// FindByUsername retrieves a single user by their username.
func (r *UserRepository) FindByUsername(ctx context.Context, username string) (models.User, error) {
	return r.findOne(ctx, "username = ?", username)
}

// Update reads, patches and writes the user inside one transaction.
func (r *UserRepository) Update(ctx context.Context, id string, patch models.UserPatch) (models.User, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return models.User{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	current, err := scanUser(tx.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE id = ?", id))
	if err != nil {
		return models.User{}, err
	}
	next := patch.Apply(current)

	_, err = tx.ExecContext(ctx,
		"UPDATE users SET email = ?, username = ?, password_hash = ?, bio = ?, image = ?, updated_at = ? WHERE id = ?",
		next.Email, next.Username, next.PasswordHash, next.Bio, nullString(next.Image), formatTime(next.UpdatedAt), id,
	)
	if err != nil {
		return models.User{}, userWriteError(err)
	}
	if err := tx.Commit(); err != nil {
		return models.User{}, fmt.Errorf("failed to commit user update: %w", err)
	}
	return next, nil
}

func (r *UserRepository) findOne(ctx context.Context, where string, arg any) (models.User, error) {
	row := r.db.QueryRowContext(ctx, "SELECT "+userColumns+" FROM users WHERE "+where, arg)
	return scanUser(row)
}

func scanUser(scanner interface{ Scan(...any) error }) (models.User, error) {
	var (
		user                 models.User
		image                sql.NullString
		createdAt, updatedAt string
	)
	err := scanner.Scan(&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.Bio, &image, &createdAt, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.User{}, models.NewNotFoundError("user")
		}
		return models.User{}, fmt.Errorf("failed to scan user: %w", err)
	}
	if image.Valid {
		user.Image = &image.String
	}
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return models.User{}, err
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return models.User{}, err
	}
	return user, nil
}

func userWriteError(err error) error {
	if kind, column := classify(err); kind == uniqueConstraint {
		return models.NewConflictError(column)
	}
	return fmt.Errorf("failed to write user: %w", err)
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}
