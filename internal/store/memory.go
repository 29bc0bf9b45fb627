package store

import (
	"context"
	"sync"
	"time"

	"github.com/edulink/auth-service/internal/models"
)

// MemoryStore is the reference IdentityStore implementation used in tests
// and as the behavioral model for real backends. It returns copies, so
// callers can never mutate stored state without Save.
type MemoryStore struct {
	mu    sync.RWMutex
	users map[string]models.User // keyed by user ID
	now   func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users: make(map[string]models.User),
		now:   time.Now,
	}
}

func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FindBySocialID(ctx context.Context, socialID string) (*models.User, error) {
	if socialID == "" {
		return nil, ErrNotFound
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.SocialID == socialID {
			out := u
			return &out, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) FindByEmailOrSocialID(ctx context.Context, email, socialID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matches []models.User
	for _, u := range s.users {
		if u.Email == email || (socialID != "" && u.SocialID == socialID) {
			matches = append(matches, u)
		}
	}
	switch len(matches) {
	case 0:
		return nil, ErrNotFound
	case 1:
		out := matches[0]
		return &out, nil
	default:
		return nil, ErrConflict
	}
}

func (s *MemoryStore) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, u := range s.users {
		if u.Email == email {
			return true, nil
		}
	}
	return false, nil
}

// Save is last-write-wins per record, matching what the service assumes
// of the real store.
func (s *MemoryStore) Save(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now
	s.users[user.ID] = *user
	return nil
}
