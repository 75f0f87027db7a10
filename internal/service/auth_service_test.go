package service_test

import (
	"context"
	"testing"

	"ammotrack/internal/config"
	"ammotrack/internal/dto"
	"ammotrack/internal/model"
	"ammotrack/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func buildAuthSvc(t *testing.T) (service.AuthService, *stubUserRepo) {
	t.Helper()
	users := newStubUserRepo()
	cfg := &config.Config{
		JWTSecret:          "test-secret",
		JWTExpirationHours: 1,
		JWTRefreshHours:    24,
	}
	svc := service.NewAuthService(users, nil, &stubAuditService{}, nil, cfg)
	return svc, users
}

func seedUser(t *testing.T, users *stubUserRepo, username, password string) *model.User {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	u := &model.User{
		Username:     username,
		Name:         "Test User",
		PasswordHash: string(hash),
		Role:         "clerk",
		Active:       true,
	}
	require.NoError(t, users.Create(context.Background(), u))
	return u
}

func TestLogin_Success(t *testing.T) {
	svc, users := buildAuthSvc(t)
	seedUser(t, users, "clerk1", "correct horse")

	resp, err := svc.Login(context.Background(), dto.LoginRequest{Username: "clerk1", Password: "correct horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, "clerk1", resp.User.Username)
}

func TestLogin_WrongPassword(t *testing.T) {
	svc, users := buildAuthSvc(t)
	seedUser(t, users, "clerk1", "correct horse")

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "clerk1", Password: "battery staple"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLogin_UnknownUser(t *testing.T) {
	svc, _ := buildAuthSvc(t)
	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "ghost", Password: "x"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestLogin_DeactivatedUser(t *testing.T) {
	svc, users := buildAuthSvc(t)
	u := seedUser(t, users, "clerk1", "correct horse")
	require.NoError(t, users.Deactivate(context.Background(), u.ID))

	_, err := svc.Login(context.Background(), dto.LoginRequest{Username: "clerk1", Password: "correct horse"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestCreateUser_StoresHashNotPlaintext(t *testing.T) {
	svc, users := buildAuthSvc(t)

	resp, err := svc.CreateUser(context.Background(), testActor, dto.CreateUserRequest{
		Username: "newclerk",
		Name:     "New Clerk",
		Password: "super secret pw",
		Role:     "clerk",
	})
	require.NoError(t, err)

	stored, err := users.FindByUsername(context.Background(), resp.Username)
	require.NoError(t, err)
	assert.NotEqual(t, "super secret pw", stored.PasswordHash)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(stored.PasswordHash), []byte("super secret pw")))
}

func TestChangePassword(t *testing.T) {
	svc, users := buildAuthSvc(t)
	u := seedUser(t, users, "clerk1", "old password")

	// Wrong current password is an auth failure, not a validation error.
	err := svc.ChangePassword(context.Background(), u.ID, dto.ChangePasswordRequest{
		CurrentPassword: "not it",
		NewPassword:     "new password!",
	})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)

	require.NoError(t, svc.ChangePassword(context.Background(), u.ID, dto.ChangePasswordRequest{
		CurrentPassword: "old password",
		NewPassword:     "new password!",
	}))

	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "clerk1", Password: "new password!"})
	assert.NoError(t, err)
	_, err = svc.Login(context.Background(), dto.LoginRequest{Username: "clerk1", Password: "old password"})
	assert.ErrorIs(t, err, service.ErrInvalidCredentials)
}

func TestRefresh_RoundTrip(t *testing.T) {
	svc, users := buildAuthSvc(t)
	seedUser(t, users, "clerk1", "correct horse")

	login, err := svc.Login(context.Background(), dto.LoginRequest{Username: "clerk1", Password: "correct horse"})
	require.NoError(t, err)

	refreshed, err := svc.Refresh(context.Background(), login.RefreshToken)
	require.NoError(t, err)
	assert.NotEmpty(t, refreshed.AccessToken)
	assert.Equal(t, "clerk1", refreshed.User.Username)
}

func TestRefresh_Garbage(t *testing.T) {
	svc, _ := buildAuthSvc(t)
	_, err := svc.Refresh(context.Background(), "not.a.token")
	assert.Error(t, err)
}
