package entity

import "errors"

var (
	ErrLeadNotFound    = errors.New("lead not found")
	ErrBookingNotFound = errors.New("booking not found")
	ErrUserNotFound    = errors.New("user not found")
	ErrTokenNotFound   = errors.New("calendar token not found")
	ErrUsernameTaken   = errors.New("username already exists")
)
