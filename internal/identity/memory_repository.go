package identity

import (
	"context"
	"sort"
	"sync"
)

type memoryRepository struct {
	mu    sync.RWMutex
	users map[string]User // keyed by id
}

// NewMemoryRepository builds an in-memory user store for testing.
func NewMemoryRepository() Repository {
	return &memoryRepository{users: make(map[string]User)}
}

func (r *memoryRepository) Create(_ context.Context, user User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.users {
		if existing.Email == user.Email {
			return ErrEmailTaken
		}
	}
	r.users[user.ID] = user
	return nil
}

func (r *memoryRepository) FindByID(_ context.Context, id string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return User{}, ErrUserNotFound
	}
	return user, nil
}

func (r *memoryRepository) FindByEmail(_ context.Context, email string) (User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return User{}, ErrUserNotFound
}

func (r *memoryRepository) List(_ context.Context, offset, limit int) ([]User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	all := make([]User, 0, len(r.users))
	for _, user := range r.users {
		all = append(all, user)
	}
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.Before(all[j].CreatedAt) })
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit > 0 && limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *memoryRepository) SetActive(_ context.Context, id string, active bool) error {
	return r.mutate(id, func(u *User) { u.Active = active })
}

func (r *memoryRepository) SetVerified(_ context.Context, id string, verified bool) error {
	return r.mutate(id, func(u *User) { u.Verified = verified })
}

func (r *memoryRepository) SetRole(_ context.Context, id, role string) error {
	return r.mutate(id, func(u *User) { u.Role = role })
}

func (r *memoryRepository) UpdatePassword(_ context.Context, id string, hash []byte) error {
	return r.mutate(id, func(u *User) { u.PasswordHash = hash })
}

func (r *memoryRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return ErrUserNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *memoryRepository) mutate(id string, fn func(*User)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return ErrUserNotFound
	}
	fn(&user)
	r.users[id] = user
	return nil
}
