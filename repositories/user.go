//go:generate go run go.uber.org/mock/mockgen -source=user.go -destination=../mocks/mock_user_repository.go -package=mocks
package repositories

import (
	"bank-lab/domain"
	"bank-lab/errors"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/google/uuid"
)

const RoleUser = "user"

type IUserRepository interface {
	CreateUser(email, username, hashedPassword string, roles ...string) (domain.User, error)
	GetUserByUsername(username string) (domain.User, error)
	GetUser(id domain.UserID) (domain.User, error)
}

type UserRepository struct {
	db *badger.DB
}

func NewUserRepository(db *badger.DB) IUserRepository {
	return &UserRepository{db: db}
}

func userKey(id domain.UserID) string {
	return "user:" + id.String()
}

// Usernames and emails are unique regardless of case.
func usernameKey(username string) string {
	return "user_name:" + strings.ToLower(username)
}

func emailKey(email string) string {
	return "user_email:" + strings.ToLower(email)
}

// CreateUser persists an active user with a fresh ID.
// Every user gets the "user" role on top of the given ones.
func (u UserRepository) CreateUser(email, username, hashedPassword string, roles ...string) (domain.User, error) {
	user := domain.User{
		ID:           domain.UserID(uuid.New().String()),
		Email:        email,
		Username:     username,
		PasswordHash: hashedPassword,
		Roles:        append([]string{RoleUser}, roles...),
		IsActive:     true,
		CreatedAt:    time.Now().UTC(),
	}

	err := u.db.Update(func(txn *badger.Txn) error {
		for _, key := range []string{usernameKey(username), emailKey(email)} {
			taken, err := exists(txn, key)
			if err != nil {
				return err
			}
			if taken {
				return errors.ErrUserAlreadyExists
			}
		}
		if err := setRecord(txn, userKey(user.ID), fromUser(user)); err != nil {
			return err
		}
		if err := txn.Set([]byte(usernameKey(username)), []byte(user.ID)); err != nil {
			return err
		}
		return txn.Set([]byte(emailKey(email)), []byte(user.ID))
	})
	if err != nil {
		return domain.User{}, err
	}
	return user, nil
}

func (u UserRepository) GetUserByUsername(username string) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		id, err := getString(txn, usernameKey(username))
		if err != nil {
			return notFound(err, errors.ErrUserNotFound)
		}
		user, err = loadUser(txn, domain.UserID(id))
		return err
	})
	return user, err
}

func (u UserRepository) GetUser(id domain.UserID) (domain.User, error) {
	var user domain.User
	err := u.db.View(func(txn *badger.Txn) error {
		var err error
		user, err = loadUser(txn, id)
		return err
	})
	return user, err
}

func loadUser(txn *badger.Txn, id domain.UserID) (domain.User, error) {
	var disk DiskUser
	if err := getRecord(txn, userKey(id), &disk); err != nil {
		return domain.User{}, notFound(err, errors.ErrUserNotFound)
	}
	return disk.toDomain(), nil
}
