package user

import (
	"context"
	"errors"
	"strings"

	dom "example.com/shop-demo/internal/domain/user"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

// Service manages the signed-in user's own profile. Every change is written
// to the user list and mirrored into the current session.
type Service struct {
	repo     dom.Repository
	sessions dom.SessionRepository
	hasher   PasswordHasher
}

func NewService(repo dom.Repository, sessions dom.SessionRepository, hasher PasswordHasher) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		hasher:   hasher,
	}
}

type UpdateProfileInput struct {
	ID        int64
	FirstName *string
	LastName  *string
	Email     *string
	Mobile    *string
}

type ChangePasswordInput struct {
	ID              int64
	CurrentPassword string
	NewPassword     string
	ConfirmPassword string
}

func (s *Service) GetProfile(ctx context.Context, id int64) (*dom.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) UpdateProfile(ctx context.Context, in UpdateProfileInput) (*dom.User, error) {
	u, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return nil, err
	}

	if in.FirstName != nil {
		u.FirstName = strings.TrimSpace(*in.FirstName)
	}
	if in.LastName != nil {
		u.LastName = strings.TrimSpace(*in.LastName)
	}
	if in.Email != nil {
		u.Email = dom.NormalizeEmail(*in.Email)
	}
	if in.Mobile != nil {
		u.Mobile = strings.TrimSpace(*in.Mobile)
	}

	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		return nil, err
	}
	if err := s.refreshSession(ctx, updated); err != nil {
		return nil, err
	}
	return updated, nil
}

// ChangePassword checks, in order: the current password, that the new one
// differs from it, and that the confirmation matches.
func (s *Service) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	u, err := s.repo.GetByID(ctx, in.ID)
	if err != nil {
		return err
	}

	if err := s.hasher.Compare(u.PasswordHash, in.CurrentPassword); err != nil {
		return dom.ErrCurrentPasswordIncorrect
	}
	if in.NewPassword == in.CurrentPassword {
		return dom.ErrSamePassword
	}
	if in.NewPassword != in.ConfirmPassword {
		return dom.ErrPasswordMismatch
	}

	hash, err := s.hasher.Hash(in.NewPassword)
	if err != nil {
		return err
	}
	u.PasswordHash = hash

	updated, err := s.repo.Update(ctx, u)
	if err != nil {
		return err
	}
	return s.refreshSession(ctx, updated)
}

func (s *Service) refreshSession(ctx context.Context, u *dom.User) error {
	session, err := s.sessions.Get(ctx)
	if err != nil {
		if errors.Is(err, dom.ErrNoSession) {
			return nil
		}
		return err
	}
	if session.User.ID != u.ID {
		return nil
	}
	session.User = *u
	return s.sessions.Put(ctx, session)
}
