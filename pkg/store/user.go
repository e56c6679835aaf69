package store

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/richard-senior/pronosticos/internal/logger"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUserExists is returned when registering a taken username
	ErrUserExists = errors.New("user already exists")
	// ErrInvalidCredentials is returned for an unknown user or a wrong password
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidUser is returned when a registration lacks a username or password
	ErrInvalidUser = errors.New("invalid user")
)

// Compile-time check to ensure User implements Persistable interface
var _ Persistable = (*User)(nil)

// User is a dashboard account
type User struct {
	ID           string    `json:"id" column:"id" dbtype:"TEXT NOT NULL" primary:"true"`
	Username     string    `json:"username" column:"username" dbtype:"TEXT NOT NULL UNIQUE" index:"true"`
	PasswordHash string    `json:"-" column:"password_hash" dbtype:"TEXT NOT NULL"`
	Email        string    `json:"email" column:"email" dbtype:"TEXT"`
	Name         string    `json:"name" column:"name" dbtype:"TEXT"`
	CreatedAt    time.Time `json:"createdAt" column:"created_at" dbtype:"DATETIME"`
}

func (u *User) GetTableName() string {
	return "app_user"
}

func (u *User) GetPrimaryKey() map[string]interface{} {
	return map[string]interface{}{"id": u.ID}
}

func (u *User) SetPrimaryKey(pk map[string]interface{}) error {
	id, ok := pk["id"].(string)
	if !ok {
		return fmt.Errorf("user primary key must be a string id")
	}
	u.ID = id
	return nil
}

func (u *User) BeforeSave() error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	return nil
}

func (u *User) AfterSave() error    { return nil }
func (u *User) BeforeDelete() error { return nil }
func (u *User) AfterDelete() error  { return nil }

// DisplayName returns the user's name, falling back to the username
func (u *User) DisplayName() string {
	if u.Name != "" {
		return u.Name
	}
	return u.Username
}

// CredentialStore registers and authenticates users
type CredentialStore struct {
	db   *DB
	cost int
}

// NewCredentialStore creates the user table if needed
func NewCredentialStore(db *DB) (*CredentialStore, error) {
	if err := db.CreateTable(&User{}); err != nil {
		return nil, err
	}
	return &CredentialStore{db: db, cost: bcrypt.DefaultCost}, nil
}

// WithHashCost sets the bcrypt cost used for new passwords
func (s *CredentialStore) WithHashCost(cost int) *CredentialStore {
	s.cost = cost
	return s
}

// Exists reports whether the username is taken
func (s *CredentialStore) Exists(username string) (bool, error) {
	_, err := s.find(username)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	return err == nil, err
}

// Register creates a new user
func (s *CredentialStore) Register(username, password, email, name string) (*User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, fmt.Errorf("%w: username must not be empty", ErrInvalidUser)
	}
	if password == "" {
		return nil, fmt.Errorf("%w: password must not be empty", ErrInvalidUser)
	}

	taken, err := s.Exists(username)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, fmt.Errorf("%w: %s", ErrUserExists, username)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		Username:     username,
		PasswordHash: string(hash),
		Email:        strings.TrimSpace(email),
		Name:         strings.TrimSpace(name),
	}
	if err := s.db.Insert(user); err != nil {
		return nil, err
	}
	logger.Info("Registered user", username)
	return user, nil
}

// ValidateLogin returns the user when the password matches
func (s *CredentialStore) ValidateLogin(username, password string) (*User, error) {
	user, err := s.find(strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *CredentialStore) find(username string) (*User, error) {
	rows, err := s.db.FindWhere(&User{}, "username = ?", username)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNotFound
	}
	return rows[0].(*User), nil
}
