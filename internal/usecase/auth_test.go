package usecase_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/xavierca1/frontdesk/internal/entity"
	"github.com/xavierca1/frontdesk/internal/mocks"
	"github.com/xavierca1/frontdesk/internal/usecase"
)

func hashed(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestLoginSuccess(t *testing.T) {
	users := new(mocks.UserRepository)
	issuer := new(mocks.TokenIssuer)
	audit, auditRepo := newAudit()
	user := &entity.User{ID: "u1", Username: "recepcja", PasswordHash: hashed(t, "tajne-haslo"), Chiropractor: "anna", Role: entity.RoleStaff}
	expires := time.Now().Add(time.Hour)

	users.On("FindByUsername", mock.Anything, "recepcja").Return(user, nil)
	issuer.On("Issue", user).Return("signed.jwt", expires, nil)

	out, err := usecase.NewAuthUseCase(users, issuer, audit).Login(context.Background(), usecase.LoginInput{
		Username: " recepcja ", Password: "tajne-haslo",
	})

	require.NoError(t, err)
	assert.Equal(t, "signed.jwt", out.Token)
	assert.Equal(t, expires, out.ExpiresAt)
	auditRepo.AssertCalled(t, "Create", mock.Anything, mock.MatchedBy(func(a *entity.AuditLog) bool {
		return a.Action == entity.AuditActionLogin && a.Username == "recepcja"
	}))
}

func TestLoginRejectsWrongPasswordAndUnknownUser(t *testing.T) {
	users := new(mocks.UserRepository)
	issuer := new(mocks.TokenIssuer)
	user := &entity.User{ID: "u1", Username: "recepcja", PasswordHash: hashed(t, "tajne-haslo")}

	users.On("FindByUsername", mock.Anything, "recepcja").Return(user, nil)
	users.On("FindByUsername", mock.Anything, "ghost").Return(nil, entity.ErrUserNotFound)

	uc := usecase.NewAuthUseCase(users, issuer, nil)

	for _, in := range []usecase.LoginInput{
		{Username: "recepcja", Password: "zle"},
		{Username: "ghost", Password: "cokolwiek"},
		{Username: "", Password: ""},
	} {
		_, err := uc.Login(context.Background(), in)
		var de *usecase.DomainError
		require.ErrorAs(t, err, &de)
		assert.Equal(t, usecase.CodeUnauthorized, de.Code)
	}
	issuer.AssertNotCalled(t, "Issue", mock.Anything)
}

func TestCreateUser(t *testing.T) {
	users := new(mocks.UserRepository)
	audit, _ := newAudit()
	users.On("Create", mock.Anything, mock.Anything).Return(nil)

	uc := usecase.NewAuthUseCase(users, nil, audit)
	u, err := uc.CreateUser(context.Background(), "anna", "bardzo-tajne", "anna", "")

	require.NoError(t, err)
	assert.Equal(t, entity.RoleStaff, u.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("bardzo-tajne")))
}

func TestCreateUserErrors(t *testing.T) {
	users := new(mocks.UserRepository)
	users.On("Create", mock.Anything, mock.Anything).Return(entity.ErrUsernameTaken)
	uc := usecase.NewAuthUseCase(users, nil, nil)

	_, err := uc.CreateUser(context.Background(), "anna", "krotkie", "anna", entity.RoleStaff)
	assert.ErrorContains(t, err, "at least 8")

	_, err = uc.CreateUser(context.Background(), "anna", "bardzo-tajne", "anna", "owner")
	assert.ErrorContains(t, err, "role")

	_, err = uc.CreateUser(context.Background(), "anna", "bardzo-tajne", "anna", entity.RoleAdmin)
	var de *usecase.DomainError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, usecase.CodeConflict, de.Code)
}
