package auth

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	domuser "example.com/shop-demo/internal/domain/user"
)

type PasswordHasher interface {
	Hash(password string) (string, error)
	Compare(hash string, password string) error
}

type Claims struct {
	UserID  int64
	TokenID string
	Email   string
	Name    string
}

type TokenService interface {
	GenerateToken(u *domuser.User, tokenID string) (string, error)
	ParseToken(token string) (*Claims, error)
}

// WelcomeNotifier is told about new accounts. Failures never block signup.
type WelcomeNotifier interface {
	Welcome(ctx context.Context, u *domuser.User) error
}

type Service struct {
	userRepo domuser.Repository
	sessions domuser.SessionRepository
	hasher   PasswordHasher
	tokens   TokenService
	notifier WelcomeNotifier
	log      logrus.FieldLogger
	now      func() time.Time
}

func NewService(
	userRepo domuser.Repository,
	sessions domuser.SessionRepository,
	hasher PasswordHasher,
	tokens TokenService,
	notifier WelcomeNotifier,
	log logrus.FieldLogger,
) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{
		userRepo: userRepo,
		sessions: sessions,
		hasher:   hasher,
		tokens:   tokens,
		notifier: notifier,
		log:      log.WithField("component", "auth"),
		now:      time.Now,
	}
}

// DemoUser is a seed account with its cleartext password.
type DemoUser struct {
	FirstName string
	LastName  string
	Email     string
	Mobile    string
	Password  string
}

var DemoUsers = []DemoUser{
	{FirstName: "Umang", LastName: "Panchal", Email: "umang@gmail.com", Mobile: "1234567890", Password: "Password@123"},
	{FirstName: "Pruthvi", LastName: "Darji", Email: "pruthvi@gmail.com", Mobile: "1111111111", Password: "Secure@456"},
	{FirstName: "Demo", LastName: "User", Email: "demo@gmail.com", Mobile: "2222222222", Password: "MyPass@789"},
}

// SeedDemoUsers creates the demo accounts when there are no users at all.
func (s *Service) SeedDemoUsers(ctx context.Context) error {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return err
	}
	if len(users) > 0 {
		return nil
	}

	for _, d := range DemoUsers {
		hash, err := s.hasher.Hash(d.Password)
		if err != nil {
			return err
		}
		if _, err := s.userRepo.Create(ctx, &domuser.User{
			FirstName:    d.FirstName,
			LastName:     d.LastName,
			Email:        d.Email,
			Mobile:       d.Mobile,
			PasswordHash: hash,
		}); err != nil {
			return err
		}
	}
	s.log.WithField("count", len(DemoUsers)).Info("seeded demo users")
	return nil
}

type SignupInput struct {
	FirstName string
	LastName  string
	Email     string
	Mobile    string
	Password  string
}

func (s *Service) Signup(ctx context.Context, in SignupInput) (*domuser.User, error) {
	email := domuser.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domuser.ErrInvalidCredential
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, err
	}

	u, err := s.userRepo.Create(ctx, &domuser.User{
		FirstName:    strings.TrimSpace(in.FirstName),
		LastName:     strings.TrimSpace(in.LastName),
		Email:        email,
		Mobile:       strings.TrimSpace(in.Mobile),
		PasswordHash: hash,
	})
	if err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if err := s.notifier.Welcome(ctx, u); err != nil {
			s.log.WithError(err).WithField("user_id", u.ID).Warn("welcome mail not sent")
		}
	}
	return u, nil
}

type LoginInput struct {
	Email    string
	Password string
}

type LoginResult struct {
	Token string
	User  *domuser.User
}

func (s *Service) Login(ctx context.Context, in LoginInput) (*LoginResult, error) {
	email := domuser.NormalizeEmail(in.Email)
	if email == "" || in.Password == "" {
		return nil, domuser.ErrInvalidCredential
	}

	u, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, domuser.ErrUserNotFound) {
			return nil, domuser.ErrEmailNotFound
		}
		return nil, err
	}

	if err := s.hasher.Compare(u.PasswordHash, in.Password); err != nil {
		return nil, domuser.ErrInvalidPassword
	}

	tokenID := uuid.NewString()
	token, err := s.tokens.GenerateToken(u, tokenID)
	if err != nil {
		return nil, err
	}

	if err := s.sessions.Put(ctx, &domuser.Session{
		User:      *u,
		TokenID:   tokenID,
		CreatedAt: s.now().UTC(),
	}); err != nil {
		return nil, err
	}

	return &LoginResult{
		Token: token,
		User:  u,
	}, nil
}

func (s *Service) Logout(ctx context.Context) error {
	return s.sessions.Delete(ctx)
}

// Authenticate accepts a token only while it belongs to the current session.
func (s *Service) Authenticate(ctx context.Context, token string) (*Claims, error) {
	claims, err := s.tokens.ParseToken(token)
	if err != nil {
		return nil, domuser.ErrUnauthorized
	}

	session, err := s.sessions.Get(ctx)
	if err != nil {
		if errors.Is(err, domuser.ErrNoSession) {
			return nil, domuser.ErrUnauthorized
		}
		return nil, err
	}
	if session.TokenID != claims.TokenID || session.User.ID != claims.UserID {
		return nil, domuser.ErrUnauthorized
	}
	return claims, nil
}

// IsAuthenticated reports whether someone is signed in.
func (s *Service) IsAuthenticated(ctx context.Context) bool {
	_, err := s.sessions.Get(ctx)
	return err == nil
}
