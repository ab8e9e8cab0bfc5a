package directory

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// PostgresRepository implements Repository using PostgreSQL.
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new PostgresRepository.
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Upsert inserts or refreshes a user record keyed by external_id.
func (r *PostgresRepository) Upsert(ctx context.Context, user User) (User, error) {
	const query = `
		INSERT INTO users (id, external_id, email, name, created_at, updated_at, last_login_at)
		VALUES ($1, $2, $3, $4, $5, $5, $5)
		ON CONFLICT (external_id) DO UPDATE
		SET email = EXCLUDED.email,
		    name = EXCLUDED.name,
		    updated_at = EXCLUDED.updated_at,
		    last_login_at = EXCLUDED.last_login_at
		RETURNING id, external_id, email, name, created_at, updated_at, last_login_at
	`

	now := time.Now()
	var row userRow
	if err := r.db.GetContext(ctx, &row, query, uuid.New(), user.ExternalID, user.Email, user.Name, now); err != nil {
		return User{}, err
	}

	return row.toUser(), nil
}

// FindByExternalID returns the user with the given external ID, or nil.
func (r *PostgresRepository) FindByExternalID(ctx context.Context, externalID string) (*User, error) {
	const query = `
		SELECT id, external_id, email, name, created_at, updated_at, last_login_at
		FROM users
		WHERE external_id = $1
	`

	var row userRow
	if err := r.db.GetContext(ctx, &row, query, externalID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}

	user := row.toUser()
	return &user, nil
}

// userRow is a database row representation of User.
type userRow struct {
	ID          uuid.UUID `db:"id"`
	ExternalID  string    `db:"external_id"`
	Email       string    `db:"email"`
	Name        string    `db:"name"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
	LastLoginAt time.Time `db:"last_login_at"`
}

func (r *userRow) toUser() User {
	return User{
		ID:          r.ID,
		ExternalID:  r.ExternalID,
		Email:       r.Email,
		Name:        r.Name,
		CreatedAt:   r.CreatedAt,
		UpdatedAt:   r.UpdatedAt,
		LastLoginAt: r.LastLoginAt,
	}
}
