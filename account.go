package accounts

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/rs/xid"
)

type ID string

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

type ActivationState string

const (
	StatePending ActivationState = "pending"
	StateActive  ActivationState = "active"
)

type AuthProvider string

const (
	ProviderLocal AuthProvider = "local"
	ProviderOAuth AuthProvider = "oauth"
)

// Account is the single record the directory stores per email.
// Credential holds a bcrypt hash and is set only for local accounts;
// OAuth-provisioned accounts carry no credential and are born active.
type Account struct {
	ID          ID
	DisplayName string
	Email       string
	Credential  string
	State       ActivationState
	Role        Role
	Provider    AuthProvider
	Proficiency string
	CreatedAt   time.Time
}

var (
	ErrInvalidDisplayName  = errors.New("invalid display name")
	ErrInvalidEmail        = errors.New("invalid email address")
	ErrInvalidCredential   = errors.New("invalid credential")
	ErrExistingEmail       = errors.New("email in use")
	ErrNotFound            = errors.New("account not found")
	ErrInvalidToken        = errors.New("invalid token")
	ErrAuthorizationDenied = errors.New("authorization denied")
	ErrSyncFailed          = errors.New("proficiency sync failed")
	ErrLMSConnection       = errors.New("lms rejected connection")
)

var emailRegexp = regexp.MustCompile(`^\S+@\S+\.\S+$`)

// NewAccount validates the display name and email and returns a new
// pending local Account holding the canonical form of the email.
func NewAccount(displayName string, email string) (*Account, error) {
	if strings.TrimSpace(displayName) == "" {
		return nil, ErrInvalidDisplayName
	}

	if !emailRegexp.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	return &Account{
		DisplayName: displayName,
		Email:       CanonicalEmail(email),
		State:       StatePending,
		Role:        RoleStudent,
		Provider:    ProviderLocal,
	}, nil
}

// CanonicalEmail is the form the directory keys on. Comparisons are
// case-insensitive, so every lookup and insert goes through here.
func CanonicalEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func NewID() ID {
	return ID(xid.New().String())
}

func isValidID(id string) bool {
	if _, err := xid.FromString(id); err != nil {
		return false
	}
	return true
}

func hashCredential(credential string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(credential), 12)
	if err != nil {
		return "", errors.New("error hashing credential")
	}
	return string(hash), nil
}

// hashMatchesCredential is the stored-hash comparison. Password login does
// not call it today; it resolves by email only. See LoginWithPassword.
func hashMatchesCredential(hash, credential string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(credential))
	return err == nil
}
