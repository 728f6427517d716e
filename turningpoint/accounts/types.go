package accounts

import (
	"context"

	"codeberg.org/turningpoint/server/internal/auth"
	"codeberg.org/turningpoint/server/turningpoint/users"
)

// persistence the orchestrators depend on; users.Repository and
// users.MemoryStore both satisfy it
type Store interface {
	CreateUser(ctx context.Context, in users.NewUser) (*users.User, error)
	FindUserByID(ctx context.Context, id int64) (*users.User, error)
	FindUserByEmail(ctx context.Context, email string) (*users.User, error)
	FindUserByGoogleID(ctx context.Context, googleID string) (*users.User, error)
	UpdateUser(ctx context.Context, id int64, patch users.Patch) (*users.User, error)
	Ping(ctx context.Context) error
}

type Hasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, hashed string) bool
}

type TokenCodec interface {
	IssuePair(profile users.Profile) (auth.TokenPair, error)
	Verify(token string) auth.Verification
}

type IdentityVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Identity, error)
}

// orchestrates registration, login, refresh and Google sign-in
type Service struct {
	store  Store
	hasher Hasher
	tokens TokenCodec
	google IdentityVerifier
}

// what every successful orchestrator returns; User never carries a password
type Session struct {
	auth.TokenPair
	User users.Profile `json:"user"`
}

// already shape-validated registration data
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}
