package services

import (
	"bank-lab/auth"
	"bank-lab/domain"
	"bank-lab/errors"
	"bank-lab/mocks"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestAuthService_Register(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewAuthService(mockRepo, auth.NewTokenIssuer("test-secret", time.Hour), []string{"Root"})

	t.Run("should register successfully when input is valid", func(t *testing.T) {
		req := require.New(t)

		// Expect CreateUser to be called with a hashed password (not the plain one)
		mockRepo.EXPECT().
			CreateUser("test@example.com", "alice", gomock.Not("password123")).
			Return(domain.User{ID: "user-uuid", Username: "alice", IsActive: true}, nil).
			Times(1)

		user, err := svc.Register("test@example.com", "alice", "password123")

		req.NoError(err)
		req.Equal(domain.UserID("user-uuid"), user.ID)
	})

	t.Run("should grant admin role to configured usernames", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			CreateUser("root@example.com", "root", gomock.Any(), domain.RoleAdmin).
			Return(domain.User{ID: "root-uuid"}, nil).
			Times(1)

		_, err := svc.Register("root@example.com", "root", "password123")
		req.NoError(err)
	})

	t.Run("should fail when password complexity is not met", func(t *testing.T) {
		req := require.New(t)

		// Repository should NEVER be called
		mockRepo.EXPECT().CreateUser(gomock.Any(), gomock.Any(), gomock.Any()).Times(0)

		_, err := svc.Register("test@example.com", "alice", "onlyletters")

		req.ErrorIs(err, errors.ErrInvalidPassword)
	})

	t.Run("should fail when user already exists in repository", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			CreateUser("duplicate@example.com", "alice", gomock.Any()).
			Return(domain.User{}, errors.ErrUserAlreadyExists).
			Times(1)

		_, err := svc.Register("duplicate@example.com", "alice", "password123")

		req.ErrorIs(err, errors.ErrUserAlreadyExists)
	})
}

func TestAuthService_Login(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	issuer := auth.NewTokenIssuer("test-secret", time.Hour)
	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewAuthService(mockRepo, issuer, nil)

	hashedPassword, err := auth.HashPassword("password123")
	require.NoError(t, err)
	storedUser := domain.User{
		ID:           "uuid-123",
		Username:     "alice",
		PasswordHash: hashedPassword,
		Roles:        []string{"user"},
		IsActive:     true,
	}

	t.Run("should login successfully with correct credentials", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			GetUserByUsername("alice").
			Return(storedUser, nil).
			Times(1)

		token, err := svc.Login("alice", "password123")
		req.NoError(err)

		identity, err := issuer.Verify(token.String())
		req.NoError(err)
		req.Equal(storedUser.ID, identity.UserID)
		req.Equal("alice", identity.Username)
	})

	t.Run("should return invalid credentials when password matches nothing", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().GetUserByUsername("alice").Return(storedUser, nil).Times(1)

		_, err := svc.Login("alice", "wrongpassword1")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should return invalid credentials when user is not found", func(t *testing.T) {
		req := require.New(t)

		mockRepo.EXPECT().
			GetUserByUsername("unknown").
			Return(domain.User{}, errors.ErrUserNotFound).
			Times(1)

		_, err := svc.Login("unknown", "anyPassword1")

		req.ErrorIs(err, errors.ErrInvalidCredentials)
	})

	t.Run("should refuse inactive users", func(t *testing.T) {
		req := require.New(t)
		inactive := storedUser
		inactive.IsActive = false

		mockRepo.EXPECT().GetUserByUsername("alice").Return(inactive, nil).Times(1)

		_, err := svc.Login("alice", "password123")

		req.ErrorIs(err, errors.ErrInactiveUser)
	})
}

func TestAuthService_Me(t *testing.T) {
	req := require.New(t)
	ctrl := gomock.NewController(t)
	mockRepo := mocks.NewMockIUserRepository(ctrl)
	svc := NewAuthService(mockRepo, auth.NewTokenIssuer("test-secret", time.Hour), nil)

	mockRepo.EXPECT().GetUser(domain.UserID("u1")).Return(domain.User{ID: "u1", IsActive: true}, nil)
	mockRepo.EXPECT().GetUser(domain.UserID("gone")).Return(domain.User{}, errors.ErrUserNotFound)

	user, err := svc.Me("u1")
	req.NoError(err)
	req.Equal(domain.UserID("u1"), user.ID)

	_, err = svc.Me("gone")
	req.ErrorIs(err, errors.ErrInvalidToken)
}
