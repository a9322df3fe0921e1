package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/knowlympics/knowlympics-backend/internal/model"
)

// UserRepository handles users table access.
type UserRepository struct {
	pool *pgxpool.Pool
}

func NewUserRepository(pool *pgxpool.Pool) *UserRepository {
	return &UserRepository{pool: pool}
}

const userColumns = `id, username, email, COALESCE(name, ''), password_hash, role, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }, u *model.User) error {
	return row.Scan(&u.ID, &u.Username, &u.Email, &u.Name, &u.PasswordHash, &u.Role, &u.CreatedAt, &u.UpdatedAt)
}

// Create inserts a user. Returns ErrConflict on a duplicate username or email.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, name, password_hash, role)
		 VALUES ($1, $2, NULLIF($3, ''), $4, $5)
		 RETURNING id, created_at, updated_at`,
		u.Username, u.Email, u.Name, u.PasswordHash, u.Role,
	).Scan(&u.ID, &u.CreatedAt, &u.UpdatedAt)
	return mapError(err)
}

func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	var u model.User
	err := scanUser(r.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id), &u)
	if err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

// GetByIdentifier finds a user by username or email (case-insensitive).
func (r *UserRepository) GetByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	var u model.User
	err := scanUser(r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users
		 WHERE LOWER(username) = LOWER($1) OR LOWER(email) = LOWER($1)
		 LIMIT 1`, identifier), &u)
	if err != nil {
		return nil, mapError(err)
	}
	return &u, nil
}

// ListInactiveSince returns learners with no attempt after since.
func (r *UserRepository) ListInactiveSince(ctx context.Context, since time.Time) ([]model.User, error) {
	return r.list(ctx,
		`SELECT `+userColumns+` FROM users u
		 WHERE u.role = 'user'
		   AND NOT EXISTS (SELECT 1 FROM attempts a WHERE a.user_id = u.id AND a.created_at > $1)
		 ORDER BY u.id`, since)
}

// ListActiveBetween returns learners with at least one attempt in [from, to).
func (r *UserRepository) ListActiveBetween(ctx context.Context, from, to time.Time) ([]model.User, error) {
	return r.list(ctx,
		`SELECT `+userColumns+` FROM users u
		 WHERE EXISTS (SELECT 1 FROM attempts a
		               WHERE a.user_id = u.id AND a.created_at >= $1 AND a.created_at < $2)
		 ORDER BY u.id`, from, to)
}

func (r *UserRepository) list(ctx context.Context, query string, args ...any) ([]model.User, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var users []model.User
	for rows.Next() {
		var u model.User
		if err := scanUser(rows, &u); err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, rows.Err()
}
