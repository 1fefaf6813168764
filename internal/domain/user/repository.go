package user

import "context"

type Repository interface {
	Create(ctx context.Context, u *User) (*User, error)
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	List(ctx context.Context) ([]*User, error)
	Update(ctx context.Context, u *User) (*User, error)
}

type SessionRepository interface {
	Get(ctx context.Context) (*Session, error)
	Put(ctx context.Context, s *Session) error
	Delete(ctx context.Context) error
}
