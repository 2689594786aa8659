package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Kattu2003/PRODUCT/config"
	"github.com/Kattu2003/PRODUCT/types"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// createdAtLayout matches JavaScript's Date.toISOString output.
const createdAtLayout = "2006-01-02T15:04:05.000Z07:00"

// UserRepository handles persistence for users.
type UserRepository struct {
	db     *sql.DB
	driver string
}

func NewUserRepository(db *sql.DB, driver string) *UserRepository {
	return &UserRepository{db: db, driver: driver}
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (types.User, error) {
	const query = `
		SELECT email, firstName, lastName, role, passwordHash, passwordSalt, createdAt
		FROM users
		WHERE email = ?`
	var (
		user                types.User
		firstName, lastName sql.NullString
		role, createdAt     string
	)
	err := r.db.QueryRowContext(ctx, r.rebind(query), email).Scan(
		&user.Email,
		&firstName,
		&lastName,
		&role,
		&user.PasswordHash,
		&user.PasswordSalt,
		&createdAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.User{}, ErrNotFound
		}
		return types.User{}, err
	}

	user.FirstName = firstName.String
	user.LastName = lastName.String
	user.Role = types.NormalizeRole(role)
	user.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt)
	if err != nil {
		return types.User{}, fmt.Errorf("parse createdAt for %s: %w", user.Email, err)
	}
	return user, nil
}

// Insert stores a new user. The email primary key rejects duplicates with ErrDuplicate.
func (r *UserRepository) Insert(ctx context.Context, user types.User) error {
	const query = `
		INSERT INTO users (email, firstName, lastName, role, passwordHash, passwordSalt, createdAt)
		VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(
		ctx,
		r.rebind(query),
		user.Email,
		user.FirstName,
		user.LastName,
		string(user.Role),
		user.PasswordHash,
		user.PasswordSalt,
		user.CreatedAt.UTC().Format(createdAtLayout),
	)
	if err != nil {
		if isDuplicateKey(err) {
			return ErrDuplicate
		}
		return err
	}
	return nil
}

// rebind rewrites ? placeholders as $1, $2, ... for postgres.
func (r *UserRepository) rebind(query string) string {
	if r.driver != config.DriverPostgres {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	for _, ch := range query {
		if ch == '?' {
			n++
			fmt.Fprintf(&b, "$%d", n)
			continue
		}
		b.WriteRune(ch)
	}
	return b.String()
}

func isDuplicateKey(err error) bool {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		return pqErr.Code == "23505"
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		switch liteErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY, sqlite3.SQLITE_CONSTRAINT_UNIQUE:
			return true
		}
	}
	return false
}
