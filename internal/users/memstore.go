package users

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/tinegaCollins/user-manager/internal/domain"
)

// MemoryStore keeps users in process memory. It is meant for local
// development and tests; contents are lost on restart.
type MemoryStore struct {
	mu    sync.RWMutex
	byID  map[string]domain.User
	email map[string]string // email -> id
	now   func() time.Time
}

type MemoryOption func(*MemoryStore)

// WithClock overrides the timestamp source.
func WithClock(now func() time.Time) MemoryOption {
	return func(s *MemoryStore) { s.now = now }
}

func NewMemoryStore(opts ...MemoryOption) *MemoryStore {
	s := &MemoryStore{
		byID:  make(map[string]domain.User),
		email: make(map[string]string),
		now:   func() time.Time { return time.Now().UTC() },
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

func (s *MemoryStore) List(_ context.Context, f Filter, p Page) ([]domain.User, int64, error) {
	s.mu.RLock()
	matched := make([]domain.User, 0, len(s.byID))
	for _, u := range s.byID {
		if f.matches(u) {
			matched = append(matched, u)
		}
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID > matched[j].ID
	})

	total := int64(len(matched))
	start := min(p.Skip, len(matched))
	end := len(matched)
	if p.Take < end-start {
		end = start + p.Take
	}
	return matched[start:end], total, nil
}

func (s *MemoryStore) GetByID(_ context.Context, id string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &u, nil
}

func (s *MemoryStore) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.email[email]
	if !ok {
		return nil, ErrNotFound
	}
	u := s.byID[id]
	return &u, nil
}

func (s *MemoryStore) Create(_ context.Context, u *domain.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, taken := s.email[u.Email]; taken {
		return ErrEmailTaken
	}
	now := s.now()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.byID[u.ID] = *u
	s.email[u.Email] = u.ID
	return nil
}

func (s *MemoryStore) Update(_ context.Context, id string, p Patch) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	if p.Email != nil && *p.Email != u.Email {
		if _, taken := s.email[*p.Email]; taken {
			return nil, ErrEmailTaken
		}
		delete(s.email, u.Email)
		u.Email = *p.Email
		s.email[u.Email] = u.ID
	}
	if p.Name != nil {
		u.Name = *p.Name
	}
	if p.Phone != nil {
		u.Phone = *p.Phone
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.IsActive != nil {
		u.IsActive = *p.IsActive
	}
	if now := s.now(); now.After(u.CreatedAt) {
		u.UpdatedAt = now
	} else {
		u.UpdatedAt = u.CreatedAt
	}
	s.byID[id] = u
	return &u, nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) (*domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	delete(s.byID, id)
	delete(s.email, u.Email)
	return &u, nil
}

func (s *MemoryStore) DeleteAll(_ context.Context) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := int64(len(s.byID))
	s.byID = make(map[string]domain.User)
	s.email = make(map[string]string)
	return n, nil
}

func (s *MemoryStore) Stats(_ context.Context) (Stats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var st Stats
	for _, u := range s.byID {
		st.Total++
		if u.IsActive {
			st.Active++
		}
		if u.Role == domain.RoleAdmin {
			st.Admins++
		}
	}
	return st, nil
}

func (s *MemoryStore) Ping(context.Context) error { return nil }

func (s *MemoryStore) Close() {}

var _ Store = (*MemoryStore)(nil)
