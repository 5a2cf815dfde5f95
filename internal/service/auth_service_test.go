package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"cadesk/internal/config"
	"cadesk/internal/domain"
	"cadesk/internal/service"
	"cadesk/mocks"
)

func jwtConfig() config.JWTConfig {
	return config.JWTConfig{
		Secret:             "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 7 * 24 * time.Hour,
		Issuer:             "cadesk-test",
	}
}

func hashOf(t *testing.T, password string) string {
	t.Helper()
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(h)
}

func TestLogin_SuccessRoundTripsClaims(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	clientRepo := new(mocks.MockClientRepo)
	svc := service.NewAuthService(userRepo, clientRepo, jwtConfig())

	clientID := uuid.New()
	user := &domain.User{
		ID:           uuid.New(),
		ClientID:     &clientID,
		Email:        "ram@democlient.in",
		PasswordHash: hashOf(t, "correct-horse"),
		Role:         domain.RoleClient,
		IsActive:     true,
	}
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	clientRepo.On("GetByID", mock.Anything, clientID).
		Return(&domain.Client{ID: clientID, IsActive: true}, nil)

	pair, err := svc.Login(context.Background(), service.LoginInput{
		Email:    user.Email,
		Password: "correct-horse",
	})
	require.NoError(t, err)

	claims, err := svc.ValidateToken(pair.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, domain.RoleClient, claims.Role)
	require.NotNil(t, claims.ClientID)
	assert.Equal(t, clientID, *claims.ClientID)
}

func TestLogin_WrongPassword(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	svc := service.NewAuthService(userRepo, new(mocks.MockClientRepo), jwtConfig())

	user := &domain.User{
		ID:           uuid.New(),
		Email:        "staff@cadesk.in",
		PasswordHash: hashOf(t, "right"),
		Role:         domain.RoleStaff,
		IsActive:     true,
	}
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	_, err := svc.Login(context.Background(), service.LoginInput{Email: user.Email, Password: "wrong"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_UnknownEmailLooksLikeBadCredentials(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	svc := service.NewAuthService(userRepo, new(mocks.MockClientRepo), jwtConfig())

	userRepo.On("GetByEmail", mock.Anything, "nobody@x.in").Return(nil, domain.ErrNotFound)

	_, err := svc.Login(context.Background(), service.LoginInput{Email: "nobody@x.in", Password: "whatever"})
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestLogin_InactiveClientBlocked(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	clientRepo := new(mocks.MockClientRepo)
	svc := service.NewAuthService(userRepo, clientRepo, jwtConfig())

	clientID := uuid.New()
	user := &domain.User{
		ID:           uuid.New(),
		ClientID:     &clientID,
		Email:        "ram@democlient.in",
		PasswordHash: hashOf(t, "pw"),
		Role:         domain.RoleClient,
		IsActive:     true,
	}
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)
	clientRepo.On("GetByID", mock.Anything, clientID).
		Return(&domain.Client{ID: clientID, IsActive: false}, nil)

	_, err := svc.Login(context.Background(), service.LoginInput{Email: user.Email, Password: "pw"})
	assert.ErrorIs(t, err, domain.ErrClientInactive)
}

func TestValidateToken_RejectsRefreshTokenOnAccessPath(t *testing.T) {
	userRepo := new(mocks.MockUserRepo)
	svc := service.NewAuthService(userRepo, new(mocks.MockClientRepo), jwtConfig())

	user := &domain.User{
		ID:           uuid.New(),
		Email:        "staff@cadesk.in",
		PasswordHash: hashOf(t, "pw"),
		Role:         domain.RoleManager,
		IsActive:     true,
	}
	userRepo.On("GetByEmail", mock.Anything, user.Email).Return(user, nil)

	pair, err := svc.Login(context.Background(), service.LoginInput{Email: user.Email, Password: "pw"})
	require.NoError(t, err)

	_, err = svc.ValidateToken(pair.RefreshToken)
	assert.Error(t, err)
}

func TestValidateToken_Garbage(t *testing.T) {
	svc := service.NewAuthService(new(mocks.MockUserRepo), new(mocks.MockClientRepo), jwtConfig())

	_, err := svc.ValidateToken("not.a.jwt")
	assert.Error(t, err)
}
