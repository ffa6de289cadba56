package store

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"lanshare/internal/app/user"
)

// MemoryStore is the process-lifetime fallback implementation of Store.
// All state is guarded by one mutex; every returned record is a copy so callers
// can never mutate shared state.
type MemoryStore struct {
	mu sync.RWMutex

	// users maps user id to record.
	users map[string]*user.User

	// byUsername maps the lowercased username to user id.
	byUsername map[string]string

	// uploads maps stored filename to metadata.
	uploads map[string]*Upload
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:      make(map[string]*user.User),
		byUsername: make(map[string]string),
		uploads:    make(map[string]*Upload),
	}
}

func (s *MemoryStore) CreateUser(ctx context.Context, u *user.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byUsername[strings.ToLower(u.Username)]; taken {
		return ErrUsernameTaken
	}

	if u.Email != "" {
		for _, existing := range s.users {
			if existing.Email != "" && strings.EqualFold(existing.Email, u.Email) {
				return ErrEmailTaken
			}
		}
	}

	cp := *u
	s.users[u.ID] = &cp
	s.byUsername[strings.ToLower(u.Username)] = u.ID

	return nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.byUsername[strings.ToLower(username)]
	if !ok {
		return nil, ErrNotFound
	}

	cp := *s.users[id]
	return &cp, nil
}

func (s *MemoryStore) GetUserByID(ctx context.Context, id string) (*user.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	cp := *u
	return &cp, nil
}

func (s *MemoryStore) SetOnline(ctx context.Context, id string, online bool, connID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}

	u.IsOnline = online
	u.ConnID = connID
	if !online {
		u.ConnID = ""
		u.LastSeen = time.Now()
	}

	return nil
}

func (s *MemoryStore) UpdateEmail(ctx context.Context, id string, email string) (*user.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}

	if email != "" {
		for otherID, existing := range s.users {
			if otherID != id && existing.Email != "" && strings.EqualFold(existing.Email, email) {
				return nil, ErrEmailTaken
			}
		}
	}

	u.Email = email

	cp := *u
	return &cp, nil
}

func (s *MemoryStore) UpdatePassword(ctx context.Context, id string, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[id]
	if !ok {
		return ErrNotFound
	}

	u.PasswordHash = passwordHash
	return nil
}

func (s *MemoryStore) CreateUpload(ctx context.Context, rec *Upload) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *rec
	s.uploads[rec.StoredName] = &cp
	return nil
}

func (s *MemoryStore) ListUploads(ctx context.Context) ([]Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]Upload, 0, len(s.uploads))
	for _, rec := range s.uploads {
		list = append(list, *rec)
	}

	sort.Slice(list, func(i, j int) bool {
		return list[i].UploadedAt.After(list[j].UploadedAt)
	})

	return list, nil
}

func (s *MemoryStore) GetUpload(ctx context.Context, storedName string) (*Upload, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rec, ok := s.uploads[storedName]
	if !ok {
		return nil, ErrNotFound
	}

	cp := *rec
	return &cp, nil
}

func (s *MemoryStore) DeleteUpload(ctx context.Context, storedName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.uploads[storedName]; !ok {
		return ErrNotFound
	}

	delete(s.uploads, storedName)
	return nil
}

func (s *MemoryStore) Kind() string { return "memory" }

func (s *MemoryStore) Close() {}
