package entity

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type Role string

const (
	RoleAdmin Role = "admin"
	RoleStaff Role = "staff"
)

// User is a front-desk staff account. Chiropractor is the data partition the
// account works in.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash string    `json:"-"`
	Chiropractor string    `json:"chiropractor"`
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

func NewUser(username, passwordHash, chiropractor string, role Role) *User {
	if role == "" {
		role = RoleStaff
	}
	return &User{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: passwordHash,
		Chiropractor: chiropractor,
		Role:         role,
		CreatedAt:    time.Now(),
	}
}

type UserRepositoryInterface interface {
	Create(ctx context.Context, u *User) error
	FindByUsername(ctx context.Context, username string) (*User, error)
}
