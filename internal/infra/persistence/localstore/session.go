package localstore

import (
	"context"
	"encoding/json"
	"errors"

	pkgerrors "github.com/pkg/errors"

	domuser "example.com/shop-demo/internal/domain/user"
	"example.com/shop-demo/internal/infra/persistence"
)

// SessionRepository holds the signed-in user in the "currentUser" slot.
type SessionRepository struct {
	slots persistence.Store
}

func NewSessionRepository(slots persistence.Store) *SessionRepository {
	return &SessionRepository{slots: slots}
}

func (r *SessionRepository) Get(ctx context.Context) (*domuser.Session, error) {
	raw, err := r.slots.Get(ctx, SessionKey)
	if errors.Is(err, persistence.ErrSlotNotFound) {
		return nil, domuser.ErrNoSession
	}
	if err != nil {
		return nil, pkgerrors.Wrap(err, "read session slot")
	}

	var s domuser.Session
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, pkgerrors.Wrap(err, "decode session")
	}
	return &s, nil
}

func (r *SessionRepository) Put(ctx context.Context, s *domuser.Session) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return pkgerrors.Wrap(err, "encode session")
	}
	return r.slots.Set(ctx, SessionKey, raw)
}

func (r *SessionRepository) Delete(ctx context.Context) error {
	return r.slots.Delete(ctx, SessionKey)
}
