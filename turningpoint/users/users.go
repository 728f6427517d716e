package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const sqlStateUniqueViolation = "23505"

// creates a new user repository
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// inserts a user; duplicates surface as ErrDuplicateEmail / ErrDuplicateGoogleID
func (r *Repository) CreateUser(ctx context.Context, in NewUser) (*User, error) {
	user, err := scanUser(r.db.QueryRow(
		ctx,
		queryCreate,
		in.Email,
		in.Name,
		in.PasswordHash,
		in.GoogleID,
	))

	if err != nil {
		return nil, mapWriteError("create user", err)
	}

	return user, nil
}

// finds a user by their ID, nil when absent
func (r *Repository) FindUserByID(ctx context.Context, id int64) (*User, error) {
	return r.findOne(ctx, "find user by id", queryFindByID, id)
}

// finds a user by email, nil when absent
func (r *Repository) FindUserByEmail(ctx context.Context, email string) (*User, error) {
	return r.findOne(ctx, "find user by email", queryFindByEmail, email)
}

// finds a user by their Google subject id, nil when absent
func (r *Repository) FindUserByGoogleID(ctx context.Context, googleID string) (*User, error) {
	return r.findOne(ctx, "find user by google id", queryFindByGoogleID, googleID)
}

// applies a partial update and returns the updated record
func (r *Repository) UpdateUser(ctx context.Context, id int64, patch Patch) (*User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, queryUpdate, id, patch.Name, patch.GoogleID))

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrUserNotFound
	}

	if err != nil {
		return nil, mapWriteError("update user", err)
	}

	return user, nil
}

// checks the database is reachable
func (r *Repository) Ping(ctx context.Context) error {
	return r.db.Ping(ctx)
}

func (r *Repository) findOne(ctx context.Context, op, query string, arg any) (*User, error) {
	user, err := scanUser(r.db.QueryRow(ctx, query, arg))

	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}

	if err != nil {
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}

	return user, nil
}

func scanUser(row pgx.Row) (*User, error) {
	var user User

	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Name,
		&user.PasswordHash,
		&user.GoogleID,
		&user.CreatedAt,
		&user.UpdatedAt,
	)

	if err != nil {
		return nil, err
	}

	return &user, nil
}

// translates unique violations into the package's duplicate errors
func mapWriteError(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == sqlStateUniqueViolation {
		switch pgErr.ConstraintName {
		case constraintEmail:
			return ErrDuplicateEmail
		case constraintGoogleID:
			return ErrDuplicateGoogleID
		}
	}

	return fmt.Errorf("failed to %s: %w", op, err)
}
