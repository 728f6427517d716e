package users

import (
	"context"
	"sync"
	"time"
)

// in-process user store with the same contract as Repository; used by tests
// and by local development when no DATABASE_URL is configured
type MemoryStore struct {
	mu     sync.RWMutex
	nextID int64
	byID   map[int64]*User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byID: make(map[int64]*User)}
}

func (s *MemoryStore) CreateUser(_ context.Context, in NewUser) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkUnique(0, in.Email, in.GoogleID); err != nil {
		return nil, err
	}

	s.nextID++
	ts := now()

	user := &User{
		ID:           s.nextID,
		Email:        in.Email,
		Name:         in.Name,
		PasswordHash: in.PasswordHash,
		GoogleID:     cloneString(in.GoogleID),
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}

	s.byID[user.ID] = user

	return clone(user), nil
}

func (s *MemoryStore) FindUserByID(_ context.Context, id int64) (*User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if user, ok := s.byID[id]; ok {
		return clone(user), nil
	}

	return nil, nil
}

func (s *MemoryStore) FindUserByEmail(_ context.Context, email string) (*User, error) {
	return s.find(func(u *User) bool { return u.Email == email }), nil
}

func (s *MemoryStore) FindUserByGoogleID(_ context.Context, googleID string) (*User, error) {
	return s.find(func(u *User) bool { return u.GoogleID != nil && *u.GoogleID == googleID }), nil
}

func (s *MemoryStore) UpdateUser(_ context.Context, id int64, patch Patch) (*User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.byID[id]
	if !ok {
		return nil, ErrUserNotFound
	}

	if patch.GoogleID != nil {
		if err := s.checkUnique(id, "", patch.GoogleID); err != nil {
			return nil, err
		}
		user.GoogleID = cloneString(patch.GoogleID)
	}

	if patch.Name != nil {
		user.Name = *patch.Name
	}

	user.UpdatedAt = now()

	return clone(user), nil
}

func (s *MemoryStore) Ping(context.Context) error {
	return nil
}

// number of stored users
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.byID)
}

func (s *MemoryStore) find(match func(*User) bool) *User {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.byID {
		if match(user) {
			return clone(user)
		}
	}

	return nil
}

// caller must hold mu; self is skipped so a user can be re-linked to its own id
func (s *MemoryStore) checkUnique(self int64, email string, googleID *string) error {
	for id, user := range s.byID {
		if id == self {
			continue
		}

		if email != "" && user.Email == email {
			return ErrDuplicateEmail
		}

		if googleID != nil && user.GoogleID != nil && *user.GoogleID == *googleID {
			return ErrDuplicateGoogleID
		}
	}

	return nil
}

// postgres keeps microseconds
func now() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

func clone(u *User) *User {
	cp := *u
	cp.GoogleID = cloneString(u.GoogleID)
	return &cp
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}

	v := *s
	return &v
}
