package usecase

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/xavierca1/frontdesk/internal/entity"
)

const minPasswordLength = 8

var errInvalidCredentials = &DomainError{Code: CodeUnauthorized, Message: "invalid username or password"}

type AuthUseCase struct {
	Users  entity.UserRepositoryInterface
	Issuer TokenIssuer
	Audit  *AuditTrail
}

func NewAuthUseCase(users entity.UserRepositoryInterface, issuer TokenIssuer, audit *AuditTrail) *AuthUseCase {
	return &AuthUseCase{Users: users, Issuer: issuer, Audit: audit}
}

func (uc *AuthUseCase) Login(ctx context.Context, input LoginInput) (*LoginOutput, error) {
	username := strings.TrimSpace(input.Username)
	if username == "" || input.Password == "" {
		return nil, errInvalidCredentials
	}

	user, err := uc.Users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, entity.ErrUserNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, databaseError("failed to load user", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errInvalidCredentials
	}

	token, expiresAt, err := uc.Issuer.Issue(user)
	if err != nil {
		return nil, &TechnicalError{Code: "SESSION_ERROR", Message: "failed to issue session", Err: err}
	}

	actor := Actor{Username: user.Username, Chiropractor: user.Chiropractor, Role: user.Role}
	uc.Audit.Record(ctx, actor, user.Chiropractor, entity.AuditActionLogin, entity.AuditEntityUser, user.ID, nil)
	return &LoginOutput{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

func (uc *AuthUseCase) CreateUser(ctx context.Context, username, password, chiropractor string, role entity.Role) (*entity.User, error) {
	username = strings.TrimSpace(username)
	chiropractor = strings.TrimSpace(chiropractor)
	switch {
	case username == "":
		return nil, &DomainError{Code: CodeValidation, Message: "username is required"}
	case chiropractor == "":
		return nil, &DomainError{Code: CodeValidation, Message: "chiropractor is required"}
	case len(password) < minPasswordLength:
		return nil, &DomainError{Code: CodeValidation, Message: "password must have at least 8 characters"}
	case role != "" && role != entity.RoleAdmin && role != entity.RoleStaff:
		return nil, &DomainError{Code: CodeValidation, Message: "role must be admin or staff"}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, &TechnicalError{Code: "HASH_ERROR", Message: "failed to hash password", Err: err}
	}

	user := entity.NewUser(username, string(hash), chiropractor, role)
	if err := uc.Users.Create(ctx, user); err != nil {
		if errors.Is(err, entity.ErrUsernameTaken) {
			return nil, &DomainError{Code: CodeConflict, Message: "username already exists"}
		}
		return nil, databaseError("failed to save user", err)
	}

	uc.Audit.Record(ctx, SystemActor("deskctl", chiropractor), chiropractor, entity.AuditActionCreate, entity.AuditEntityUser, user.ID, map[string]any{
		"username": user.Username,
		"role":     string(user.Role),
	})
	return user, nil
}
