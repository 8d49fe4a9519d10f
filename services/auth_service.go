package services

import (
	"bank-lab/auth"
	"bank-lab/domain"
	"bank-lab/errors"
	"bank-lab/repositories"
	stdErrors "errors"
	"fmt"
	"strings"

	"github.com/samber/lo"
)

type IAuthService interface {
	Register(email, username, password string) (domain.User, error)
	Login(username, password string) (Token, error)
	Me(userID domain.UserID) (domain.User, error)
}

type TokenGenerator interface {
	Generate(user domain.User) (string, error)
}

type AuthService struct {
	userRepository repositories.IUserRepository
	tokens         TokenGenerator
	admins         []string
}

type Token string

func (t Token) String() string {
	return string(t)
}

// NewAuthService grants the admin role at registration to the listed usernames.
func NewAuthService(repo repositories.IUserRepository, tokens TokenGenerator, admins []string) IAuthService {
	return &AuthService{
		userRepository: repo,
		tokens:         tokens,
		admins:         lo.Map(admins, func(name string, _ int) string { return strings.ToLower(strings.TrimSpace(name)) }),
	}
}

func (s *AuthService) Register(email, username, password string) (domain.User, error) {
	// Validated before any expensive cryptographic operation.
	if err := auth.ValidateRegister(auth.RegisterRequest{Email: email, Username: username, Password: password}); err != nil {
		return domain.User{}, err
	}

	// The repository never sees plain passwords.
	hashedPassword, err := auth.HashPassword(password)
	if err != nil {
		return domain.User{}, fmt.Errorf("hashing failed: %w", err)
	}

	var roles []string
	if lo.Contains(s.admins, strings.ToLower(username)) {
		roles = append(roles, domain.RoleAdmin)
	}
	return s.userRepository.CreateUser(email, username, hashedPassword, roles...)
}

func (s *AuthService) Login(username, password string) (Token, error) {
	user, err := s.userRepository.GetUserByUsername(username)
	if err != nil {
		// Same answer for unknown users and wrong passwords.
		return "", errors.ErrInvalidCredentials
	}

	match, err := auth.ComparePassword(password, user.PasswordHash)
	if err != nil || !match {
		return "", errors.ErrInvalidCredentials
	}
	if !user.IsActive {
		return "", errors.ErrInactiveUser
	}

	token, err := s.tokens.Generate(user)
	if err != nil {
		return "", err
	}
	return Token(token), nil
}

func (s *AuthService) Me(userID domain.UserID) (domain.User, error) {
	user, err := s.userRepository.GetUser(userID)
	if stdErrors.Is(err, errors.ErrUserNotFound) {
		// A valid token for a user that no longer exists.
		return domain.User{}, errors.ErrInvalidToken
	}
	if err != nil {
		return domain.User{}, err
	}
	if !user.IsActive {
		return domain.User{}, errors.ErrInactiveUser
	}
	return user, nil
}
