package localstore

import (
	"context"
	"encoding/json"
	"errors"
	"sync"

	pkgerrors "github.com/pkg/errors"

	domuser "example.com/shop-demo/internal/domain/user"
	"example.com/shop-demo/internal/infra/persistence"
)

// UserRepository keeps all accounts as one JSON array in the "users" slot.
type UserRepository struct {
	mu    sync.Mutex
	slots persistence.Store
}

func NewUserRepository(slots persistence.Store) *UserRepository {
	return &UserRepository{slots: slots}
}

func (r *UserRepository) List(ctx context.Context) ([]*domuser.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.load(ctx)
}

func (r *UserRepository) GetByID(ctx context.Context, id int64) (*domuser.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, u := range users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, domuser.ErrUserNotFound
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domuser.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	email = domuser.NormalizeEmail(email)
	for _, u := range users {
		if domuser.NormalizeEmail(u.Email) == email {
			return u, nil
		}
	}
	return nil, domuser.ErrUserNotFound
}

func (r *UserRepository) Create(ctx context.Context, u *domuser.User) (*domuser.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	var maxID int64
	email := domuser.NormalizeEmail(u.Email)
	for _, existing := range users {
		if domuser.NormalizeEmail(existing.Email) == email {
			return nil, domuser.ErrEmailAlreadyUsed
		}
		if existing.ID > maxID {
			maxID = existing.ID
		}
	}

	created := *u
	created.ID = maxID + 1
	created.Email = email
	users = append(users, &created)
	if err := r.store(ctx, users); err != nil {
		return nil, err
	}
	out := created
	return &out, nil
}

func (r *UserRepository) Update(ctx context.Context, u *domuser.User) (*domuser.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	users, err := r.load(ctx)
	if err != nil {
		return nil, err
	}

	idx := -1
	email := domuser.NormalizeEmail(u.Email)
	for i, existing := range users {
		if existing.ID == u.ID {
			idx = i
			continue
		}
		if domuser.NormalizeEmail(existing.Email) == email {
			return nil, domuser.ErrEmailAlreadyUsed
		}
	}
	if idx < 0 {
		return nil, domuser.ErrUserNotFound
	}

	updated := *u
	updated.Email = email
	users[idx] = &updated
	if err := r.store(ctx, users); err != nil {
		return nil, err
	}
	out := updated
	return &out, nil
}

func (r *UserRepository) load(ctx context.Context) ([]*domuser.User, error) {
	raw, err := r.slots.Get(ctx, UsersKey)
	if errors.Is(err, persistence.ErrSlotNotFound) {
		return []*domuser.User{}, nil
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "read users slot")
	}

	var users []*domuser.User
	if err := json.Unmarshal(raw, &users); err != nil {
		return nil, pkgerrors.Wrap(err, "decode users")
	}
	return users, nil
}

func (r *UserRepository) store(ctx context.Context, users []*domuser.User) error {
	raw, err := json.Marshal(users)
	if err != nil {
		return pkgerrors.Wrap(err, "encode users")
	}
	return r.slots.Set(ctx, UsersKey, raw)
}
