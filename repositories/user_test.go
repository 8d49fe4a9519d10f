package repositories

import (
	"bank-lab/errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Create_And_Get_User(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openDB(t))

	user, err := repository.CreateUser("alice@example.com", "alice", "hash")
	req.NoError(err)
	req.NotEmpty(user.ID)
	req.True(user.IsActive)
	req.Equal([]string{RoleUser}, user.Roles)

	byName, err := repository.GetUserByUsername("Alice")
	req.NoError(err)
	req.Equal(user.ID, byName.ID)
	req.Equal("hash", byName.PasswordHash)

	byID, err := repository.GetUser(user.ID)
	req.NoError(err)
	req.Equal("alice@example.com", byID.Email)
}

func Test_Create_User_With_Extra_Role(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openDB(t))

	user, err := repository.CreateUser("root@example.com", "root", "hash", "admin")
	req.NoError(err)

	stored, err := repository.GetUser(user.ID)
	req.NoError(err)
	req.Equal([]string{RoleUser, "admin"}, stored.Roles)
}

func Test_Create_User_Duplicate_Username_Or_Email(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openDB(t))

	_, err := repository.CreateUser("alice@example.com", "alice", "hash")
	req.NoError(err)

	_, err = repository.CreateUser("other@example.com", "ALICE", "hash")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)

	_, err = repository.CreateUser("Alice@Example.com", "alice2", "hash")
	req.ErrorIs(err, errors.ErrUserAlreadyExists)
}

func Test_Get_Unknown_User(t *testing.T) {
	req := require.New(t)
	repository := NewUserRepository(openDB(t))

	_, err := repository.GetUserByUsername("nobody")
	req.ErrorIs(err, errors.ErrUserNotFound)
	_, err = repository.GetUser("missing")
	req.ErrorIs(err, errors.ErrUserNotFound)
}
