package security

import (
	"errors"

	pkgerrors "github.com/pkg/errors"
	"golang.org/x/crypto/bcrypt"

	domuser "example.com/shop-demo/internal/domain/user"
)

// BcryptService hashes account passwords. Costs outside bcrypt's range fall
// back to the default.
type BcryptService struct {
	cost int
}

func NewBcryptService(cost int) *BcryptService {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return &BcryptService{cost: cost}
}

func (s *BcryptService) Hash(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", pkgerrors.Wrap(err, "hash password")
	}
	return string(hash), nil
}

// Compare reports domuser.ErrInvalidPassword on a mismatch and wraps any
// other failure, such as a malformed stored hash.
func (s *BcryptService) Compare(hash string, password string) error {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	switch {
	case err == nil:
		return nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return domuser.ErrInvalidPassword
	default:
		return pkgerrors.Wrap(err, "compare password")
	}
}
