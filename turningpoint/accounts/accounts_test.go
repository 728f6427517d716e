package accounts

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"codeberg.org/turningpoint/server/internal/auth"
	"codeberg.org/turningpoint/server/internal/config"
	apperrors "codeberg.org/turningpoint/server/internal/errors"
	"codeberg.org/turningpoint/server/turningpoint/users"
)

const testSecret = "test-secret-key-for-testing"

var errStoreDown = errors.New("connection refused")

// mock for the Google ID token verifier
type mockVerifier struct {
	mock.Mock
}

func (m *mockVerifier) VerifyIDToken(ctx context.Context, idToken string) (*auth.Identity, error) {
	args := m.Called(ctx, idToken)

	identity, _ := args.Get(0).(*auth.Identity)
	return identity, args.Error(1)
}

// counts lookups so tests can assert the store was never touched
type countingStore struct {
	*users.MemoryStore
	calls atomic.Int64
}

func (s *countingStore) FindUserByID(ctx context.Context, id int64) (*users.User, error) {
	s.calls.Add(1)
	return s.MemoryStore.FindUserByID(ctx, id)
}

func (s *countingStore) FindUserByEmail(ctx context.Context, email string) (*users.User, error) {
	s.calls.Add(1)
	return s.MemoryStore.FindUserByEmail(ctx, email)
}

// fails every read
type faultyStore struct {
	*users.MemoryStore
}

func (faultyStore) FindUserByID(context.Context, int64) (*users.User, error) {
	return nil, errStoreDown
}

func (faultyStore) FindUserByEmail(context.Context, string) (*users.User, error) {
	return nil, errStoreDown
}

func (faultyStore) FindUserByGoogleID(context.Context, string) (*users.User, error) {
	return nil, errStoreDown
}

type fixture struct {
	service  *Service
	store    *countingStore
	codec    *auth.Codec
	verifier *mockVerifier
}

func newTestCodec(secret string) *auth.Codec {
	return auth.NewCodec(config.TokenConfig{
		Secret:     secret,
		Issuer:     "turning-point",
		AccessTTL:  15 * time.Minute,
		RefreshTTL: 7 * 24 * time.Hour,
	})
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store := &countingStore{MemoryStore: users.NewMemoryStore()}
	codec := newTestCodec(testSecret)
	verifier := &mockVerifier{}

	return &fixture{
		service:  NewService(store, auth.NewHasher(bcrypt.MinCost), codec, verifier),
		store:    store,
		codec:    codec,
		verifier: verifier,
	}
}

func (f *fixture) register(t *testing.T, name, email, password string) *Session {
	t.Helper()

	session, err := f.service.CreateUserWithTokens(context.Background(), RegisterInput{
		Name:     name,
		Email:    email,
		Password: password,
	})
	require.NoError(t, err)

	return session
}

func assertNoPassword(t *testing.T, session *Session) {
	t.Helper()

	raw, err := json.Marshal(session)
	require.NoError(t, err)

	var body map[string]any
	require.NoError(t, json.Unmarshal(raw, &body))

	user, ok := body["user"].(map[string]any)
	require.True(t, ok, "session should carry a user object")
	assert.NotContains(t, user, "password")
	assert.NotContains(t, strings.ToLower(string(raw)), "$2a$")
}

func assertAppError(t *testing.T, err error, target *apperrors.AppError) {
	t.Helper()

	require.Error(t, err)
	assert.True(t, errors.Is(err, target), "expected %q, got %v", target.Message, err)
}

func TestCreateUserWithTokens_Success(t *testing.T) {
	f := newFixture(t)

	session := f.register(t, "Ann", "ann@x.com", "Secret1!")

	assert.Equal(t, "ann@x.com", session.User.Email)
	assert.Equal(t, "Ann", session.User.Name)
	assert.Nil(t, session.User.GoogleID)
	assertNoPassword(t, session)

	access := f.codec.Verify(session.AccessToken)
	refresh := f.codec.Verify(session.RefreshToken)

	require.True(t, access.Valid)
	require.True(t, refresh.Valid)
	assert.Equal(t, session.User, access.Claims.Profile)
	assert.Equal(t, session.User.ID, refresh.Claims.Profile.ID)

	stored, err := f.store.MemoryStore.FindUserByEmail(context.Background(), "ann@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret1!", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("Secret1!")))
}

func TestCreateUserWithTokens_DuplicateEmail(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Ann", "ann@x.com", "Secret1!")

	session, err := f.service.CreateUserWithTokens(context.Background(), RegisterInput{
		Name:     "Impostor",
		Email:    "ann@x.com",
		Password: "Other123",
	})

	assert.Nil(t, session)
	assertAppError(t, err, ErrEmailAlreadyExists)
	assert.Equal(t, 1, f.store.Len())
}

func TestCreateUserWithTokens_PasswordTooLong(t *testing.T) {
	f := newFixture(t)

	_, err := f.service.CreateUserWithTokens(context.Background(), RegisterInput{
		Name:     "Ann",
		Email:    "ann@x.com",
		Password: strings.Repeat("é", 40),
	})

	assertAppError(t, err, ErrPasswordTooLong)
	assert.Equal(t, 0, f.store.Len())
}

func TestValidateUserCredentials_Success(t *testing.T) {
	f := newFixture(t)
	registered := f.register(t, "Ann", "ann@x.com", "Secret1!")

	session, err := f.service.ValidateUserCredentials(context.Background(), "ann@x.com", "Secret1!")

	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, session.User.ID)
	assert.True(t, f.codec.Verify(session.AccessToken).Valid)
	assertNoPassword(t, session)
}

func TestValidateUserCredentials_WrongPassword(t *testing.T) {
	f := newFixture(t)
	f.register(t, "Ann", "ann@x.com", "Secret1!")

	session, err := f.service.ValidateUserCredentials(context.Background(), "ann@x.com", "wrong-password")

	assert.Nil(t, session)
	assertAppError(t, err, ErrInvalidCredentials)
}

func TestValidateUserCredentials_UnknownEmail(t *testing.T) {
	f := newFixture(t)

	session, err := f.service.ValidateUserCredentials(context.Background(), "nobody@x.com", "Secret1!")

	assert.Nil(t, session)
	assertAppError(t, err, ErrEmailNotFound)
}

func TestValidateUserCredentials_OAuthOnlyAccount(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.verifier.On("VerifyIDToken", ctx, "google-token").
		Return(&auth.Identity{Subject: "g123", Email: "new@x.com", Name: "New"}, nil)

	_, err := f.service.LoginWithGoogle(ctx, "google-token")
	require.NoError(t, err)

	_, err = f.service.ValidateUserCredentials(ctx, "new@x.com", "")
	assertAppError(t, err, ErrInvalidCredentials)
}

func TestValidateUserCredentials_StoreFault(t *testing.T) {
	service := NewService(
		faultyStore{users.NewMemoryStore()},
		auth.NewHasher(bcrypt.MinCost),
		newTestCodec(testSecret),
		nil,
	)

	_, err := service.ValidateUserCredentials(context.Background(), "ann@x.com", "Secret1!")

	assertAppError(t, err, ErrAuthenticationFailed)
	assert.ErrorIs(t, err, errStoreDown)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.False(t, appErr.Operational)
	assert.Equal(t, 500, appErr.HTTPStatus)
}

func TestReIssueTokens_Success(t *testing.T) {
	f := newFixture(t)
	registered := f.register(t, "Ann", "ann@x.com", "Secret1!")

	session, err := f.service.ReIssueTokens(context.Background(), registered.RefreshToken)

	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, session.User.ID)
	assert.True(t, f.codec.Verify(session.AccessToken).Valid)
	assert.True(t, f.codec.Verify(session.RefreshToken).Valid)
	assertNoPassword(t, session)
}

func TestReIssueTokens_UsesStoredRecord(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered := f.register(t, "Ann", "ann@x.com", "Secret1!")

	renamed := "Ann Lee"
	_, err := f.store.UpdateUser(ctx, registered.User.ID, users.Patch{Name: &renamed})
	require.NoError(t, err)

	session, err := f.service.ReIssueTokens(ctx, registered.RefreshToken)

	require.NoError(t, err)
	assert.Equal(t, "Ann Lee", session.User.Name)
	assert.Equal(t, "Ann Lee", f.codec.Verify(session.AccessToken).Claims.Name)
}

func TestReIssueTokens_ForeignSecretSkipsStore(t *testing.T) {
	f := newFixture(t)
	registered := f.register(t, "Ann", "ann@x.com", "Secret1!")

	foreign, err := newTestCodec("a-different-secret").IssuePair(registered.User)
	require.NoError(t, err)

	before := f.store.calls.Load()
	session, err := f.service.ReIssueTokens(context.Background(), foreign.RefreshToken)

	assert.Nil(t, session)
	assertAppError(t, err, ErrRefreshTokenInvalid)
	assert.Equal(t, before, f.store.calls.Load(), "no lookup should reach the store")
}

func TestReIssueTokens_Garbage(t *testing.T) {
	f := newFixture(t)

	for _, token := range []string{"", "garbage", "a.b.c"} {
		_, err := f.service.ReIssueTokens(context.Background(), token)
		assertAppError(t, err, ErrRefreshTokenInvalid)
	}

	assert.Zero(t, f.store.calls.Load())
}

func TestReIssueTokens_UnknownUser(t *testing.T) {
	f := newFixture(t)

	pair, err := f.codec.IssuePair(users.Profile{ID: 999, Email: "ghost@x.com"})
	require.NoError(t, err)

	_, err = f.service.ReIssueTokens(context.Background(), pair.RefreshToken)
	assertAppError(t, err, ErrRefreshTokenInvalid)
}

func TestReIssueTokens_StoreFaultIsInvalid(t *testing.T) {
	codec := newTestCodec(testSecret)
	service := NewService(faultyStore{users.NewMemoryStore()}, auth.NewHasher(bcrypt.MinCost), codec, nil)

	pair, err := codec.IssuePair(users.Profile{ID: 1, Email: "ann@x.com"})
	require.NoError(t, err)

	_, err = service.ReIssueTokens(context.Background(), pair.RefreshToken)

	assertAppError(t, err, ErrRefreshTokenInvalid)
	assert.NotErrorIs(t, err, errStoreDown, "store faults must not leak through refresh")
}

func TestLoginWithGoogle_CreatesUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.verifier.On("VerifyIDToken", ctx, "google-token").
		Return(&auth.Identity{Subject: "g123", Email: "new@x.com", Name: "New"}, nil)

	session, err := f.service.LoginWithGoogle(ctx, "google-token")

	require.NoError(t, err)
	require.NotNil(t, session.User.GoogleID)
	assert.Equal(t, "g123", *session.User.GoogleID)
	assert.Equal(t, "New", session.User.Name)
	assertNoPassword(t, session)

	stored, err := f.store.MemoryStore.FindUserByGoogleID(ctx, "g123")
	require.NoError(t, err)
	assert.Equal(t, "", stored.PasswordHash)
	assert.Equal(t, "new@x.com", stored.Email)

	f.verifier.AssertExpectations(t)
}

func TestLoginWithGoogle_LinksExistingEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	registered := f.register(t, "New", "new@x.com", "Secret1!")

	f.verifier.On("VerifyIDToken", ctx, "google-token").
		Return(&auth.Identity{Subject: "g123", Email: "new@x.com", Name: "New Person", EmailVerified: true}, nil)

	session, err := f.service.LoginWithGoogle(ctx, "google-token")

	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, session.User.ID)
	require.NotNil(t, session.User.GoogleID)
	assert.Equal(t, "g123", *session.User.GoogleID)
	assert.Equal(t, 1, f.store.Len())

	// the local password keeps working after linking
	_, err = f.service.ValidateUserCredentials(ctx, "new@x.com", "Secret1!")
	assert.NoError(t, err)
}

func TestLoginWithGoogle_Idempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.verifier.On("VerifyIDToken", ctx, "first").
		Return(&auth.Identity{Subject: "g123", Email: "new@x.com", Name: "New"}, nil)
	f.verifier.On("VerifyIDToken", ctx, "second").
		Return(&auth.Identity{Subject: "g123", Email: "changed@x.com", Name: "New"}, nil)

	first, err := f.service.LoginWithGoogle(ctx, "first")
	require.NoError(t, err)

	second, err := f.service.LoginWithGoogle(ctx, "second")
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, "new@x.com", second.User.Email, "subject id lookup wins over provider email")
	assert.Equal(t, 1, f.store.Len())
}

func TestLoginWithGoogle_NameFallsBackToEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.verifier.On("VerifyIDToken", ctx, "google-token").
		Return(&auth.Identity{Subject: "g9", Email: "jane.doe@x.com"}, nil)

	session, err := f.service.LoginWithGoogle(ctx, "google-token")

	require.NoError(t, err)
	assert.Equal(t, "jane.doe", session.User.Name)
}

func TestLoginWithGoogle_VerificationFails(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.verifier.On("VerifyIDToken", ctx, "bad-token").Return(nil, errors.New("idtoken: invalid signature"))

	session, err := f.service.LoginWithGoogle(ctx, "bad-token")

	assert.Nil(t, session)
	assertAppError(t, err, ErrGoogleAuthFailed)
	assert.Equal(t, 0, f.store.Len())
}

func TestLoginWithGoogle_MissingEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.verifier.On("VerifyIDToken", ctx, "google-token").Return(&auth.Identity{Subject: "g123"}, nil)

	_, err := f.service.LoginWithGoogle(ctx, "google-token")

	assertAppError(t, err, ErrGoogleEmailMissing)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 400, appErr.HTTPStatus)
}

func TestLoginWithGoogle_RefusesRelinking(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	other := "g-original"
	_, err := f.store.CreateUser(ctx, users.NewUser{Email: "new@x.com", Name: "New", GoogleID: &other})
	require.NoError(t, err)

	f.verifier.On("VerifyIDToken", ctx, "google-token").
		Return(&auth.Identity{Subject: "g-other", Email: "new@x.com", EmailVerified: true}, nil)

	_, err = f.service.LoginWithGoogle(ctx, "google-token")

	assertAppError(t, err, ErrGoogleAccountConflict)

	stored, err := f.store.MemoryStore.FindUserByEmail(ctx, "new@x.com")
	require.NoError(t, err)
	assert.Equal(t, "g-original", *stored.GoogleID)
}

func TestLoginWithGoogle_NotConfigured(t *testing.T) {
	service := NewService(users.NewMemoryStore(), auth.NewHasher(bcrypt.MinCost), newTestCodec(testSecret), nil)

	_, err := service.LoginWithGoogle(context.Background(), "google-token")

	assertAppError(t, err, ErrGoogleAuthFailed)
}

func TestLoginWithIdentity_StoreFault(t *testing.T) {
	service := NewService(faultyStore{users.NewMemoryStore()}, auth.NewHasher(bcrypt.MinCost), newTestCodec(testSecret), nil)

	_, err := service.LoginWithIdentity(context.Background(), &auth.Identity{Subject: "g1", Email: "a@x.com"})

	assertAppError(t, err, ErrAuthenticationFailed)
}

func TestGetProfile(t *testing.T) {
	f := newFixture(t)
	registered := f.register(t, "Ann", "ann@x.com", "Secret1!")

	profile, err := f.service.GetProfile(context.Background(), registered.User.ID)
	require.NoError(t, err)
	assert.Equal(t, registered.User, *profile)

	_, err = f.service.GetProfile(context.Background(), 404)
	assertAppError(t, err, ErrUserNotFound)
}

// records whether a password comparison happened
type spyHasher struct {
	*auth.BcryptHasher
	verified atomic.Int64
}

func (h *spyHasher) Verify(plaintext, hashed string) bool {
	h.verified.Add(1)
	return h.BcryptHasher.Verify(plaintext, hashed)
}

// loses the insert race: another login links subject just before our insert
type racingStore struct {
	*users.MemoryStore
}

func (s racingStore) CreateUser(ctx context.Context, in users.NewUser) (*users.User, error) {
	if in.GoogleID != nil {
		if _, err := s.MemoryStore.CreateUser(ctx, users.NewUser{
			Email:    "winner@x.com",
			Name:     "Winner",
			GoogleID: in.GoogleID,
		}); err != nil {
			return nil, err
		}
	}

	return s.MemoryStore.CreateUser(ctx, in)
}

func TestValidateUserCredentials_OAuthOnlySkipsHasher(t *testing.T) {
	store := users.NewMemoryStore()
	hasher := &spyHasher{BcryptHasher: auth.NewHasher(bcrypt.MinCost)}
	service := NewService(store, hasher, newTestCodec(testSecret), nil)
	ctx := context.Background()

	subject := "g123"
	_, err := store.CreateUser(ctx, users.NewUser{Email: "new@x.com", Name: "New", GoogleID: &subject})
	require.NoError(t, err)

	_, err = service.ValidateUserCredentials(ctx, "new@x.com", "anything")

	assertAppError(t, err, ErrInvalidCredentials)
	assert.Zero(t, hasher.verified.Load())
}

func TestLoginWithGoogle_UnverifiedEmailDoesNotLink(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	victim := f.register(t, "Victim", "victim@x.com", "Secret1!")

	f.verifier.On("VerifyIDToken", ctx, "google-token").
		Return(&auth.Identity{Subject: "g-attacker", Email: "victim@x.com", Name: "Mallory"}, nil)

	session, err := f.service.LoginWithGoogle(ctx, "google-token")

	assert.Nil(t, session)
	assertAppError(t, err, ErrGoogleEmailUnverified)

	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, 401, appErr.HTTPStatus)

	stored, err := f.store.MemoryStore.FindUserByID(ctx, victim.User.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.GoogleID, "account must stay unlinked")
}

func TestLoginWithGoogle_UnverifiedEmailCanStillSignUp(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.verifier.On("VerifyIDToken", ctx, "google-token").
		Return(&auth.Identity{Subject: "g5", Email: "fresh@x.com", Name: "Fresh"}, nil).Twice()

	first, err := f.service.LoginWithGoogle(ctx, "google-token")
	require.NoError(t, err)

	second, err := f.service.LoginWithGoogle(ctx, "google-token")
	require.NoError(t, err)

	assert.Equal(t, first.User.ID, second.User.ID)
	assert.Equal(t, 1, f.store.Len())
}

func TestLoginWithIdentity_LostCreateRaceReturnsWinner(t *testing.T) {
	store := racingStore{users.NewMemoryStore()}
	service := NewService(store, auth.NewHasher(bcrypt.MinCost), newTestCodec(testSecret), nil)

	session, err := service.LoginWithIdentity(context.Background(), &auth.Identity{
		Subject: "g7",
		Email:   "loser@x.com",
		Name:    "Loser",
	})

	require.NoError(t, err)
	assert.Equal(t, "winner@x.com", session.User.Email)
	require.NotNil(t, session.User.GoogleID)
	assert.Equal(t, "g7", *session.User.GoogleID)
	assert.Equal(t, 1, store.Len())
}
