package memory

import (
	"context"
	"strings"

	"github.com/jhoicas/pedidos-api/internal/domain"
	"github.com/jhoicas/pedidos-api/internal/domain/entity"
	"github.com/jhoicas/pedidos-api/internal/domain/repository"
)

var _ repository.UserRepository = (*UserRepo)(nil)

// UserRepo usuarios en memoria.
type UserRepo struct {
	c *conn
}

func (r *UserRepo) Create(_ context.Context, u *entity.User) error {
	return r.c.with(func(s *state) error {
		for _, cur := range s.users {
			if cur.ID == u.ID || strings.EqualFold(cur.Email, u.Email) {
				return domain.ErrDuplicate
			}
		}
		s.users[u.ID] = *u
		s.track(u.ID)
		return nil
	})
}

func (r *UserRepo) GetByID(_ context.Context, id string) (*entity.User, error) {
	var out *entity.User
	err := r.c.with(func(s *state) error {
		if u, ok := s.users[id]; ok {
			out = &u
		}
		return nil
	})
	return out, err
}

func (r *UserRepo) GetByEmail(_ context.Context, email string) (*entity.User, error) {
	var out *entity.User
	err := r.c.with(func(s *state) error {
		for _, u := range s.users {
			if strings.EqualFold(u.Email, email) {
				out = &u
				return nil
			}
		}
		return nil
	})
	return out, err
}
