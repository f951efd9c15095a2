package repository

import (
	"context"
	"strings"
	"sync"
	"time"

	"insight-server/internal/model"
)

// MemoryUserStore is an in-memory stand-in for UserRepository used by tests
// and local tooling. It mirrors the SQL repository's observable behavior:
// case-insensitive email uniqueness and lookup, and not-found errors when an
// update touches no row.
type MemoryUserStore struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]model.User
}

func NewMemoryUserStore() *MemoryUserStore {
	return &MemoryUserStore{nextID: 1, users: map[int64]model.User{}}
}

func (s *MemoryUserStore) FindByID(_ context.Context, id int64) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return model.User{}, model.ErrUserNotFound
	}
	return user, nil
}

func (s *MemoryUserStore) FindByEmail(_ context.Context, email string) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if user, ok := s.byEmail(email); ok {
		return user, nil
	}
	return model.User{}, model.ErrUserNotFound
}

func (s *MemoryUserStore) ExistsByEmail(_ context.Context, email string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, ok := s.byEmail(email)
	return ok, nil
}

func (s *MemoryUserStore) Create(_ context.Context, u model.User) (model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byEmail(u.Email); ok {
		return model.User{}, model.ErrUserAlreadyExists
	}

	u.ID = s.nextID
	s.nextID++
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	s.users[u.ID] = u
	return u, nil
}

func (s *MemoryUserStore) List(_ context.Context) ([]model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	return out, nil
}

func (s *MemoryUserStore) UpdatePassword(_ context.Context, id int64, passwordHash string) error {
	return s.update(id, func(u *model.User) { u.PasswordHash = passwordHash })
}

func (s *MemoryUserStore) UpdateProfile(_ context.Context, id int64, name string, email string) error {
	return s.update(id, func(u *model.User) {
		u.Name = name
		u.Email = email
	})
}

func (s *MemoryUserStore) UpdateRole(_ context.Context, id int64, role model.Role) error {
	return s.update(id, func(u *model.User) { u.Role = role })
}

func (s *MemoryUserStore) UpdateProfilePhoto(_ context.Context, id int64, path *string) error {
	return s.update(id, func(u *model.User) { u.ProfilePhoto = path })
}

func (s *MemoryUserStore) Delete(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[id]; !ok {
		return model.ErrUserNotFound
	}
	delete(s.users, id)
	return nil
}

func (s *MemoryUserStore) Count(_ context.Context) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.users), nil
}

func (s *MemoryUserStore) CountByRole(_ context.Context, role model.Role) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, user := range s.users {
		if user.Role == role {
			count++
		}
	}
	return count, nil
}

// byEmail assumes the caller holds the lock.
func (s *MemoryUserStore) byEmail(email string) (model.User, bool) {
	for _, user := range s.users {
		if strings.EqualFold(user.Email, email) {
			return user, true
		}
	}
	return model.User{}, false
}

func (s *MemoryUserStore) update(id int64, apply func(*model.User)) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[id]
	if !ok {
		return model.ErrUserNotFound
	}
	apply(&user)
	user.UpdatedAt = time.Now().UTC()
	s.users[id] = user
	return nil
}
