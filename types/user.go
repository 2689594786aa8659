package types

import (
	"strings"
	"time"
)

// Role is the account type chosen at signup.
type Role string

const (
	RoleUser      Role = "user"
	RoleTherapist Role = "therapist"
)

// NormalizeRole coerces any value other than "therapist" to RoleUser.
func NormalizeRole(raw string) Role {
	if raw == string(RoleTherapist) {
		return RoleTherapist
	}
	return RoleUser
}

// NormalizeEmail returns the lookup key for an email address.
func NormalizeEmail(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// User represents a registered account.
// Email is the primary key and is always stored normalized.
type User struct {
	// Email is the normalized (lower-cased) address.
	Email string `json:"email" db:"email"`

	// FirstName is optional and may be empty.
	FirstName string `json:"firstName" db:"firstName"`

	// LastName is optional and may be empty.
	LastName string `json:"lastName" db:"lastName"`

	// Role is either RoleUser or RoleTherapist.
	Role Role `json:"role" db:"role"`

	// PasswordHash is the hex-encoded PBKDF2 derived key.
	// This field is never exposed in API responses.
	PasswordHash string `json:"-" db:"passwordHash"`

	// PasswordSalt is the hex-encoded per-account salt.
	// This field is never exposed in API responses.
	PasswordSalt string `json:"-" db:"passwordSalt"`

	// CreatedAt is the UTC time the account was created. It never changes.
	CreatedAt time.Time `json:"createdAt" db:"createdAt"`
}

// FullName is the display name built from first and last name.
func (u User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}

// Account returns the public view of the user.
func (u User) Account() Account {
	return Account{
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		FullName:  u.FullName(),
	}
}

// Account is what API callers see of a user.
type Account struct {
	Email     string `json:"email"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Role      Role   `json:"role"`
	FullName  string `json:"fullName"`
}
