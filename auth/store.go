package auth

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

var (
	// ErrUserExists is returned when signing up an existing username.
	ErrUserExists = errors.New("user already exists")
	// ErrNotFound is returned when a username is not registered.
	ErrNotFound = errors.New("user not found")
)

// User is a registered account.
type User struct {
	ID        string
	Username  string
	Password  string // bcrypt hash
	Role      string
	CreatedAt time.Time
}

// Store persists users in sqlite.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id TEXT PRIMARY KEY,
	username TEXT NOT NULL UNIQUE,
	password TEXT NOT NULL,
	role TEXT NOT NULL,
	created_at TIMESTAMP NOT NULL
);`

// OpenStore opens the user database, creating the schema if needed.
func OpenStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate users: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database.
func (s *Store) Close() error {
	return s.db.Close()
}

// CreateUser inserts a new account. Usernames are stored lowercased.
func (s *Store) CreateUser(username, passwordHash, role string) (*User, error) {
	user := &User{
		ID:        uuid.New().String(),
		Username:  strings.ToLower(strings.TrimSpace(username)),
		Password:  passwordHash,
		Role:      role,
		CreatedAt: time.Now(),
	}

	_, err := s.db.Exec(
		`INSERT INTO users (id, username, password, role, created_at) VALUES (?, ?, ?, ?, ?)`,
		user.ID, user.Username, user.Password, user.Role, user.CreatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("insert user: %w", err)
	}
	return user, nil
}

// GetByUsername looks an account up by its lowercased username.
func (s *Store) GetByUsername(username string) (*User, error) {
	row := s.db.QueryRow(
		`SELECT id, username, password, role, created_at FROM users WHERE username = ?`,
		strings.ToLower(strings.TrimSpace(username)),
	)

	var u User
	if err := row.Scan(&u.ID, &u.Username, &u.Password, &u.Role, &u.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("query user: %w", err)
	}
	return &u, nil
}
