package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"studytrack/internal/modules/account/domain"
	accountout "studytrack/internal/modules/account/port/out"
	"studytrack/internal/platform/clock"
	"studytrack/internal/platform/id"
)

type AccountService struct {
	clock clock.Clock
	ids   id.Generator
	store accountout.UserStore
	mu    sync.Mutex
}

func NewAccountService(clock clock.Clock, ids id.Generator, store accountout.UserStore) *AccountService {
	return &AccountService{clock: clock, ids: ids, store: store}
}

func (s *AccountService) Register(ctx context.Context, name string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.registerLocked(ctx, name)
}

func (s *AccountService) registerLocked(ctx context.Context, name string) (domain.User, error) {
	name, err := domain.NormalizeName(name)
	if err != nil {
		return domain.User{}, err
	}
	users, err := s.store.Load(ctx)
	if err != nil {
		return domain.User{}, err
	}
	for _, u := range users {
		if strings.EqualFold(u.Name, name) {
			return domain.User{}, fmt.Errorf("%w: %s", domain.ErrDuplicateUserName, name)
		}
	}
	user := domain.User{ID: s.ids.New(), Name: name, CreatedAt: s.clock.Now()}
	if err := s.store.Save(ctx, append(users, user)); err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (s *AccountService) List(ctx context.Context) ([]domain.User, error) {
	return s.store.Load(ctx)
}

func (s *AccountService) Resolve(ctx context.Context, ref string) (domain.User, error) {
	users, err := s.store.Load(ctx)
	if err != nil {
		return domain.User{}, err
	}
	return domain.Find(users, ref)
}

// Ensure returns the user called name, registering it on first use.
func (s *AccountService) Ensure(ctx context.Context, name string) (domain.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	users, err := s.store.Load(ctx)
	if err != nil {
		return domain.User{}, err
	}
	if u, err := domain.Find(users, name); err == nil {
		return u, nil
	}
	return s.registerLocked(ctx, name)
}
