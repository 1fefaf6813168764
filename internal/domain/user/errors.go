package user

import "errors"

var (
	ErrUserNotFound             = errors.New("user not found")
	ErrEmailAlreadyUsed         = errors.New("email already exists")
	ErrEmailNotFound            = errors.New("email not found")
	ErrInvalidPassword          = errors.New("invalid password")
	ErrUnauthorized             = errors.New("unauthorized")
	ErrInvalidCredential        = errors.New("invalid credential")
	ErrCurrentPasswordIncorrect = errors.New("current password is incorrect")
	ErrSamePassword             = errors.New("new password cannot be the same as the current password")
	ErrPasswordMismatch         = errors.New("new passwords do not match")
	ErrNoSession                = errors.New("no active session")
)
