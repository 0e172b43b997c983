package memstore

import (
	"context"
	"time"

	"github.com/xiebiao/bookreview/internal/domain/user"
	apperrors "github.com/xiebiao/bookreview/pkg/errors"
)

// UserRepository 实现user.Repository
type UserRepository struct {
	s *Store
}

var _ user.Repository = (*UserRepository)(nil)

func (r *UserRepository) Create(ctx context.Context, u *user.User) error {
	defer r.s.autocommit(ctx)()
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, existing := range r.s.users {
		if existing.Email == u.Email {
			return apperrors.ErrEmailDuplicate
		}
	}

	r.s.nextUserID++
	u.ID = r.s.nextUserID
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
		u.UpdatedAt = u.CreatedAt
	}
	r.s.users[u.ID] = *u
	return nil
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &u, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, u := range r.s.users {
		if u.Email == email {
			found := u
			return &found, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

// SeedUser 直接写入一个用户（密码不加密），返回ID
func (s *Store) SeedUser(name, email string) uint {
	u := user.NewUser(name, email, "")
	_ = s.Users().Create(context.Background(), u)
	return u.ID
}
