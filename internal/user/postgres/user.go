package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	userDatamodel "github.com/frahmantamala/permit-service/internal/core/datamodel/user"
	"github.com/frahmantamala/permit-service/internal/user"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
)

const (
	uniqueViolation = "23505"

	selectUsers = `SELECT id, name, email, id_number FROM users`

	// A conflicting email inserts nothing and so returns no row.
	insertUser = `INSERT INTO users (name, email, id_number) VALUES (?, ?, ?)
ON CONFLICT (email) DO NOTHING
RETURNING id`
)

type UserRepository struct {
	db *sqlx.DB
}

// NewUserRepository builds the repository. Queries are written with ?
// placeholders and rebound for the driver behind db.
func NewUserRepository(db *sqlx.DB) user.RepositoryAPI {
	return &UserRepository{db: db}
}

func (r *UserRepository) GetAll(ctx context.Context) ([]*userDatamodel.User, error) {
	users := []*userDatamodel.User{}
	if err := r.db.SelectContext(ctx, &users, selectUsers+` ORDER BY id ASC`); err != nil {
		return nil, fmt.Errorf("select users: %w", err)
	}
	return users, nil
}

func (r *UserRepository) GetByCredentials(ctx context.Context, email, idNumber string) ([]*userDatamodel.User, error) {
	users := []*userDatamodel.User{}
	query := r.db.Rebind(selectUsers + ` WHERE email = ? AND id_number = ? ORDER BY id ASC`)
	if err := r.db.SelectContext(ctx, &users, query, email, idNumber); err != nil {
		return nil, fmt.Errorf("select users by credentials: %w", err)
	}
	return users, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*userDatamodel.User, error) {
	var u userDatamodel.User
	if err := r.db.GetContext(ctx, &u, r.db.Rebind(selectUsers+` WHERE id = ?`), id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, user.ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}
	return &u, nil
}

func (r *UserRepository) Create(ctx context.Context, u *userDatamodel.User) error {
	err := r.db.QueryRowxContext(ctx, r.db.Rebind(insertUser), u.Name, u.Email, u.IDNumber).Scan(&u.ID)
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return user.ErrEmailTaken
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return user.ErrEmailTaken
	}
	return fmt.Errorf("insert user: %w", err)
}
