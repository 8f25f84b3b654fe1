package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/msomdec/recipe-community/internal/domain"
)

// UserRepository implements domain.UserRepository using SQLite.
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new SQLite-backed UserRepository.
func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{db: db.SqlDB}
}

const userColumns = `id, email, display_name, bio, password_hash, photo_key, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner, u *domain.User) error {
	return row.Scan(&u.ID, &u.Email, &u.DisplayName, &u.Bio, &u.PasswordHash, &u.PhotoKey, &u.CreatedAt, &u.UpdatedAt)
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	now := time.Now().UTC()
	result, err := r.db.ExecContext(ctx,
		`INSERT INTO users (email, display_name, bio, password_hash, photo_key, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		user.Email, user.DisplayName, user.Bio, user.PasswordHash, user.PhotoKey, now, now,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return domain.ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last insert id: %w", err)
	}

	user.ID = id
	user.CreatedAt = now
	user.UpdatedAt = now
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	user := &domain.User{}
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id)
	if err := scanUser(row, user); err != nil {
		return nil, notFoundOr(err, "query user by id")
	}
	return user, nil
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	user := &domain.User{}
	row := r.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE email = ?`, email)
	if err := scanUser(row, user); err != nil {
		return nil, notFoundOr(err, "query user by email")
	}
	return user, nil
}

func (r *UserRepository) UpdateProfile(ctx context.Context, id int64, displayName, bio string) error {
	result, err := r.db.ExecContext(ctx,
		`UPDATE users SET display_name = ?, bio = ?, updated_at = ? WHERE id = ?`,
		displayName, bio, time.Now().UTC(), id,
	)
	if err != nil {
		return fmt.Errorf("update user profile: %w", err)
	}
	return requireRow(result)
}

func (r *UserRepository) SetPhotoKey(ctx context.Context, id int64, key string) (string, error) {
	return swapPhotoKey(ctx, r.db, "users", id, key)
}

func collectUsers(rows *sql.Rows) ([]domain.User, error) {
	var users []domain.User
	for rows.Next() {
		var u domain.User
		if err := scanUser(rows, &u); err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

func requireRow(result sql.Result) error {
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if rows == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// swapPhotoKey sets photo_key on a row of table and returns the old value in
// one transaction. table is always a package constant.
func swapPhotoKey(ctx context.Context, db *sql.DB, table string, id int64, key string) (string, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var old string
	if err := tx.QueryRowContext(ctx, `SELECT photo_key FROM `+table+` WHERE id = ?`, id).Scan(&old); err != nil {
		return "", notFoundOr(err, "get "+table+" photo key")
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE `+table+` SET photo_key = ?, updated_at = ? WHERE id = ?`,
		key, time.Now().UTC(), id,
	); err != nil {
		return "", fmt.Errorf("set %s photo key: %w", table, err)
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return old, nil
}
