// Package auth implements user accounts and token verification for the
// relay. The session gateway only sees it through token claims.
package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// Roles recognised by the relay. The clients historically sent "police"
// for watchers; "watcher" is accepted as an alias on the wire.
const (
	RoleDriver = "driver"
	RolePolice = "police"
)

// NormalizeRole maps a wire role onto a stored role. Anything that is not
// a driver is a police watcher.
func NormalizeRole(role string) string {
	if strings.ToLower(strings.TrimSpace(role)) == RoleDriver {
		return RoleDriver
	}
	return RolePolice
}

var (
	// ErrUnauthenticated is returned for a missing or invalid token.
	ErrUnauthenticated = errors.New("unauthenticated")
	// ErrInvalidCredentials is returned on a failed password check.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Claims are the verified contents of an auth token.
type Claims struct {
	Identity string
	Role     string
}

type tokenClaims struct {
	jwt.RegisteredClaims
	ID   string `json:"id"`
	Role string `json:"role"`
}

const bcryptCost = 10

// Service issues and verifies tokens against the user store.
type Service struct {
	store  *Store
	secret []byte
}

// NewService returns a service signing tokens with the given secret.
func NewService(store *Store, secret string) *Service {
	return &Service{store: store, secret: []byte(secret)}
}

// Signup registers a new account and returns it with a signed token.
func (s *Service) Signup(username, password, role string) (*User, string, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, "", fmt.Errorf("username and password required: %w", ErrInvalidCredentials)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, "", fmt.Errorf("hash password: %w", err)
	}

	user, err := s.store.CreateUser(username, string(hash), NormalizeRole(role))
	if err != nil {
		return nil, "", err
	}

	token, err := s.Token(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Login verifies credentials and returns the account with a fresh token.
func (s *Service) Login(username, password string) (*User, string, error) {
	user, err := s.store.GetByUsername(username)
	if err != nil {
		return nil, "", err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.Token(user)
	if err != nil {
		return nil, "", err
	}
	return user, token, nil
}

// Token signs {id, role} claims for the socket layer to verify at connect
// time.
func (s *Service) Token(user *User) (string, error) {
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt: jwt.NewNumericDate(time.Now()),
		},
		ID:   user.ID,
		Role: user.Role,
	})
	signed, err := t.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns its claims.
func (s *Service) Verify(token string) (Claims, error) {
	if token == "" {
		return Claims{}, ErrUnauthenticated
	}

	parsed, err := jwt.ParseWithClaims(token, &tokenClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !parsed.Valid {
		return Claims{}, ErrUnauthenticated
	}

	tc, ok := parsed.Claims.(*tokenClaims)
	if !ok || tc.ID == "" {
		return Claims{}, ErrUnauthenticated
	}
	return Claims{Identity: tc.ID, Role: tc.Role}, nil
}
