package accounts

import (
	"context"
	"fmt"
	"strings"

	"codeberg.org/turningpoint/server/internal/auth"
	"codeberg.org/turningpoint/server/internal/errors"
	"codeberg.org/turningpoint/server/internal/logger"
	"codeberg.org/turningpoint/server/turningpoint/users"
)

var errGoogleNotConfigured = fmt.Errorf("google sign-in is not configured")

// google may be nil, in which case LoginWithGoogle always fails
func NewService(store Store, hasher Hasher, tokens TokenCodec, google IdentityVerifier) *Service {
	return &Service{
		store:  store,
		hasher: hasher,
		tokens: tokens,
		google: google,
	}
}

// checks the backing store is reachable
func (s *Service) Ping(ctx context.Context) error {
	return s.store.Ping(ctx)
}

// email/password login. ErrEmailNotFound and ErrInvalidCredentials are
// returned as-is; anything unexpected becomes ErrAuthenticationFailed.
func (s *Service) ValidateUserCredentials(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.store.FindUserByEmail(ctx, email)
	if err != nil {
		return nil, ErrAuthenticationFailed.WithCause(err)
	}

	if user == nil {
		return nil, ErrEmailNotFound
	}

	// OAuth-only accounts have no password to compare against
	if !user.HasPassword() {
		logger.FromContext(ctx).Debug("password login for oauth-only account", "user_id", user.ID)
		return nil, ErrInvalidCredentials
	}

	if !s.hasher.Verify(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	session, err := s.newSession(user)
	if err != nil {
		return nil, ErrAuthenticationFailed.WithCause(err)
	}

	logger.FromContext(ctx).Info("user logged in", "user_id", user.ID, "email", user.Email)

	return session, nil
}

// hashes the password, inserts the user and signs a token pair. A duplicate
// email is detected by the store's unique constraint at write time.
func (s *Service) CreateUserWithTokens(ctx context.Context, in RegisterInput) (*Session, error) {
	hashed, err := s.hasher.Hash(in.Password)
	if errors.Is(err, auth.ErrPasswordTooLong) {
		return nil, ErrPasswordTooLong
	}

	if err != nil {
		return nil, ErrAuthenticationFailed.WithCause(err)
	}

	user, err := s.store.CreateUser(ctx, users.NewUser{
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: hashed,
	})

	if isDuplicate(err) {
		return nil, ErrEmailAlreadyExists.WithCause(err)
	}

	if err != nil {
		return nil, ErrAuthenticationFailed.WithCause(err)
	}

	session, err := s.newSession(user)
	if err != nil {
		return nil, ErrAuthenticationFailed.WithCause(err)
	}

	logger.FromContext(ctx).Info("user registered", "user_id", user.ID, "email", user.Email)

	return session, nil
}

// trades a refresh token for a new pair signed over the stored user.
// The only error it returns is ErrRefreshTokenInvalid; store faults are logged.
func (s *Service) ReIssueTokens(ctx context.Context, refreshToken string) (*Session, error) {
	result := s.tokens.Verify(refreshToken)
	if !result.Valid {
		return nil, ErrRefreshTokenInvalid
	}

	log := logger.FromContext(ctx)

	user, err := s.store.FindUserByID(ctx, result.Claims.Profile.ID)
	if err != nil {
		log.Error("failed to look up user for token refresh", "error", err, "user_id", result.Claims.Profile.ID)
		return nil, ErrRefreshTokenInvalid
	}

	if user == nil {
		log.Warn("refresh token for unknown user", "user_id", result.Claims.Profile.ID)
		return nil, ErrRefreshTokenInvalid
	}

	session, err := s.newSession(user)
	if err != nil {
		log.Error("failed to sign refreshed tokens", "error", err, "user_id", user.ID)
		return nil, ErrRefreshTokenInvalid
	}

	return session, nil
}

// verifies a Google ID token and signs the caller in, linking or creating
// the local account as needed
func (s *Service) LoginWithGoogle(ctx context.Context, idToken string) (*Session, error) {
	if s.google == nil {
		return nil, ErrGoogleAuthFailed.WithCause(errGoogleNotConfigured)
	}

	identity, err := s.google.VerifyIDToken(ctx, idToken)
	if err != nil {
		return nil, ErrGoogleAuthFailed.WithCause(err)
	}

	return s.LoginWithIdentity(ctx, identity)
}

// resolves a verified Google identity to a local user: by subject id first,
// then by email (linking the account), otherwise a new OAuth-only account
func (s *Service) LoginWithIdentity(ctx context.Context, identity *auth.Identity) (*Session, error) {
	if identity == nil || identity.Subject == "" {
		return nil, ErrGoogleAuthFailed
	}

	if identity.Email == "" {
		return nil, ErrGoogleEmailMissing
	}

	user, err := s.resolveGoogleUser(ctx, identity)
	if err != nil {
		return nil, err
	}

	session, err := s.newSession(user)
	if err != nil {
		return nil, ErrAuthenticationFailed.WithCause(err)
	}

	logger.FromContext(ctx).Info("user logged in with google", "user_id", user.ID, "email", user.Email)

	return session, nil
}

func (s *Service) resolveGoogleUser(ctx context.Context, identity *auth.Identity) (*users.User, error) {
	log := logger.FromContext(ctx)
	subject := identity.Subject

	user, err := s.store.FindUserByGoogleID(ctx, subject)
	if err != nil {
		return nil, ErrAuthenticationFailed.WithCause(err)
	}

	if user != nil {
		return user, nil
	}

	user, err = s.store.FindUserByEmail(ctx, identity.Email)
	if err != nil {
		return nil, ErrAuthenticationFailed.WithCause(err)
	}

	if user != nil {
		// only an address Google has verified may take over an existing account
		if !identity.EmailVerified {
			log.Warn("refused to link unverified google email", "user_id", user.ID)
			return nil, ErrGoogleEmailUnverified
		}

		if user.GoogleID != nil && *user.GoogleID != subject {
			return nil, ErrGoogleAccountConflict
		}

		linked, err := s.store.UpdateUser(ctx, user.ID, users.Patch{GoogleID: &subject})
		if isDuplicate(err) {
			return nil, ErrGoogleAccountConflict.WithCause(err)
		}

		if err != nil {
			return nil, ErrAuthenticationFailed.WithCause(err)
		}

		log.Info("linked google account", "user_id", linked.ID)
		return linked, nil
	}

	created, err := s.store.CreateUser(ctx, users.NewUser{
		Email:    identity.Email,
		Name:     displayName(identity),
		GoogleID: &subject,
	})

	if errors.Is(err, users.ErrDuplicateGoogleID) {
		return s.concurrentGoogleUser(ctx, subject, err)
	}

	if errors.Is(err, users.ErrDuplicateEmail) {
		return nil, ErrEmailAlreadyExists.WithCause(err)
	}

	if err != nil {
		return nil, ErrAuthenticationFailed.WithCause(err)
	}

	log.Info("user registered with google", "user_id", created.ID, "email", created.Email)
	return created, nil
}

// a concurrent login created the account for subject between lookup and insert
func (s *Service) concurrentGoogleUser(ctx context.Context, subject string, cause error) (*users.User, error) {
	user, err := s.store.FindUserByGoogleID(ctx, subject)
	if err != nil {
		return nil, ErrAuthenticationFailed.WithCause(err)
	}

	if user == nil {
		return nil, ErrGoogleAccountConflict.WithCause(cause)
	}

	return user, nil
}

// loads the current profile of an authenticated user
func (s *Service) GetProfile(ctx context.Context, id int64) (*users.Profile, error) {
	user, err := s.store.FindUserByID(ctx, id)
	if err != nil {
		return nil, ErrAuthenticationFailed.WithCause(err)
	}

	if user == nil {
		return nil, ErrUserNotFound
	}

	profile := user.Profile()
	return &profile, nil
}

func (s *Service) newSession(user *users.User) (*Session, error) {
	profile := user.Profile()

	pair, err := s.tokens.IssuePair(profile)
	if err != nil {
		return nil, err
	}

	return &Session{TokenPair: pair, User: profile}, nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, users.ErrDuplicateEmail) || errors.Is(err, users.ErrDuplicateGoogleID)
}

// the provider's display name, or the local part of the email
func displayName(identity *auth.Identity) string {
	if name := strings.TrimSpace(identity.Name); name != "" {
		return name
	}

	local, _, _ := strings.Cut(identity.Email, "@")
	return local
}
