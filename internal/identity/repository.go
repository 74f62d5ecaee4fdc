package identity

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	// ErrUserNotFound indicates no account matches the lookup.
	ErrUserNotFound = errors.New("user not found")
	// ErrEmailTaken indicates the email is already registered.
	ErrEmailTaken = errors.New("email is already registered")
)

// Repository persists user accounts.
type Repository interface {
	Create(ctx context.Context, user User) error
	FindByID(ctx context.Context, id string) (User, error)
	FindByEmail(ctx context.Context, email string) (User, error)
	List(ctx context.Context, offset, limit int) ([]User, error)
	SetActive(ctx context.Context, id string, active bool) error
	SetVerified(ctx context.Context, id string, verified bool) error
	SetRole(ctx context.Context, id, role string) error
	UpdatePassword(ctx context.Context, id string, hash []byte) error
	Delete(ctx context.Context, id string) error
}

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *pgxpool.Pool
}

// NewPostgresRepository builds a Postgres-backed identity repository.
func NewPostgresRepository(db *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new user.
func (r *PostgresRepository) Create(ctx context.Context, user User) error {
	userID, err := uuid.Parse(user.ID)
	if err != nil {
		return err
	}
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = $1)`, user.Email).Scan(&exists); err != nil {
		return err
	}
	if exists {
		return ErrEmailTaken
	}
	_, err = r.db.Exec(ctx, `INSERT INTO users (id, name, email, password_hash, verified, active, role, created_at)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		userID, user.Name, user.Email, user.PasswordHash, user.Verified, user.Active, user.Role, user.CreatedAt.UTC())
	return err
}

const userColumns = `id, name, email, password_hash, verified, active, role, created_at`

// FindByID fetches a user by identifier.
func (r *PostgresRepository) FindByID(ctx context.Context, id string) (User, error) {
	userID, err := uuid.Parse(id)
	if err != nil {
		return User{}, ErrUserNotFound
	}
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, userID))
}

// FindByEmail fetches a user by email address.
func (r *PostgresRepository) FindByEmail(ctx context.Context, email string) (User, error) {
	return scanUser(r.db.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE email = $1`, email))
}

// List returns a page of users ordered by creation time.
func (r *PostgresRepository) List(ctx context.Context, offset, limit int) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at OFFSET $1 LIMIT $2`, offset, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		user, err := scanUserRow(rows)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, rows.Err()
}

// SetActive toggles the account's active flag.
func (r *PostgresRepository) SetActive(ctx context.Context, id string, active bool) error {
	return r.update(ctx, `UPDATE users SET active = $1 WHERE id = $2`, active, id)
}

// SetVerified toggles the account's verified flag.
func (r *PostgresRepository) SetVerified(ctx context.Context, id string, verified bool) error {
	return r.update(ctx, `UPDATE users SET verified = $1 WHERE id = $2`, verified, id)
}

// SetRole changes the account's role.
func (r *PostgresRepository) SetRole(ctx context.Context, id, role string) error {
	return r.update(ctx, `UPDATE users SET role = $1 WHERE id = $2`, role, id)
}

// UpdatePassword replaces the account's password hash.
func (r *PostgresRepository) UpdatePassword(ctx context.Context, id string, hash []byte) error {
	return r.update(ctx, `UPDATE users SET password_hash = $1 WHERE id = $2`, hash, id)
}

// Delete removes the account. The wallet and its transactions cascade at the
// schema level.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrUserNotFound
	}
	cmd, err := r.db.Exec(ctx, `DELETE FROM users WHERE id = $1`, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

func (r *PostgresRepository) update(ctx context.Context, query string, value any, id string) error {
	userID, err := uuid.Parse(id)
	if err != nil {
		return ErrUserNotFound
	}
	cmd, err := r.db.Exec(ctx, query, value, userID)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (User, error) {
	user, err := scanUserRow(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, ErrUserNotFound
	}
	return user, err
}

func scanUserRow(row rowScanner) (User, error) {
	var (
		user      User
		id        uuid.UUID
		createdAt time.Time
	)
	if err := row.Scan(&id, &user.Name, &user.Email, &user.PasswordHash, &user.Verified, &user.Active, &user.Role, &createdAt); err != nil {
		return User{}, err
	}
	user.ID = id.String()
	user.CreatedAt = createdAt.UTC()
	return user, nil
}
