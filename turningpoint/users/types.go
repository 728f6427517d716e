package users

import (
	"errors"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrDuplicateEmail    = errors.New("users: email already exists")
	ErrDuplicateGoogleID = errors.New("users: google id already linked to another account")
	ErrUserNotFound      = errors.New("users: user not found")
)

// handles user database operations
type Repository struct {
	db *pgxpool.Pool
}

// represents an account in the system; PasswordHash is empty for accounts
// that only ever signed in with Google
type User struct {
	ID           int64     `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	GoogleID     *string   `json:"googleId"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// the user as it may leave the server (token claims, API responses)
type Profile struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	GoogleID  *string   `json:"googleId"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// fields for inserting a user
type NewUser struct {
	Email        string
	Name         string
	PasswordHash string
	GoogleID     *string
}

// partial update; nil fields are left untouched
type Patch struct {
	Name     *string
	GoogleID *string
}

// strips the password hash
func (u *User) Profile() Profile {
	return Profile{
		ID:        u.ID,
		Email:     u.Email,
		Name:      u.Name,
		GoogleID:  u.GoogleID,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

func (u *User) HasPassword() bool {
	return u.PasswordHash != ""
}
