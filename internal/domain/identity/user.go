package identity

import (
	"regexp"
	"strings"
	"time"

	"github.com/crm/backend/internal/domain/shared"
	"golang.org/x/crypto/bcrypt"
)

// UserRole defines the access level of a user profile
type UserRole string

const (
	RoleAdmin   UserRole = "admin"
	RoleManager UserRole = "manager"
	RoleMember  UserRole = "member"
)

// IsValid checks if the role is one of the known values
func (r UserRole) IsValid() bool {
	switch r {
	case RoleAdmin, RoleManager, RoleMember:
		return true
	}
	return false
}

const bcryptCost = 12

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// User is the profile aggregate backing both authentication modes.
// PasswordHash is empty for profiles created by the static provider.
type User struct {
	shared.BaseAggregateRoot
	Email        string
	FullName     string
	AvatarURL    *string
	Role         UserRole
	Department   *string
	IsActive     bool
	PasswordHash string
	LastLoginAt  *time.Time
}

// NewUser creates a user profile without credentials
func NewUser(email, fullName string, role UserRole) (*User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if strings.TrimSpace(fullName) == "" {
		return nil, shared.NewDomainError("INVALID_FULL_NAME", "Full name is required")
	}
	if !role.IsValid() {
		return nil, shared.NewDomainError("INVALID_ROLE", "Role must be admin, manager or member")
	}

	user := &User{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Email:             strings.ToLower(strings.TrimSpace(email)),
		FullName:          strings.TrimSpace(fullName),
		Role:              role,
		IsActive:          true,
	}
	user.AddDomainEvent(NewUserCreatedEvent(user))
	return user, nil
}

// NewUserWithPassword creates a user profile with local credentials
func NewUserWithPassword(email, fullName, password string, role UserRole) (*User, error) {
	user, err := NewUser(email, fullName, role)
	if err != nil {
		return nil, err
	}
	if err := user.SetPassword(password); err != nil {
		return nil, err
	}
	return user, nil
}

// SetPassword hashes and stores a new password
func (u *User) SetPassword(password string) error {
	if len(password) < 8 {
		return shared.NewDomainError("INVALID_PASSWORD", "Password must be at least 8 characters")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return shared.NewDomainError("PASSWORD_HASH_FAILED", "Failed to hash password")
	}
	u.PasswordHash = string(hash)
	u.touch()
	return nil
}

// VerifyPassword checks a candidate password against the stored hash
func (u *User) VerifyPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) == nil
}

// ChangeFullName updates the display name
func (u *User) ChangeFullName(fullName string) error {
	if strings.TrimSpace(fullName) == "" {
		return shared.NewDomainError("INVALID_FULL_NAME", "Full name is required")
	}
	u.FullName = strings.TrimSpace(fullName)
	u.touch()
	return nil
}

// ChangeRole updates the access role
func (u *User) ChangeRole(role UserRole) error {
	if !role.IsValid() {
		return shared.NewDomainError("INVALID_ROLE", "Role must be admin, manager or member")
	}
	u.Role = role
	u.touch()
	return nil
}

// SetAvatarURL updates the avatar location, nil clears it
func (u *User) SetAvatarURL(url *string) {
	u.AvatarURL = normalizeOptional(url)
	u.touch()
}

// SetDepartment updates the department, nil clears it
func (u *User) SetDepartment(department *string) {
	u.Department = normalizeOptional(department)
	u.touch()
}

// Activate re-enables a deactivated profile
func (u *User) Activate() {
	u.IsActive = true
	u.touch()
}

// Deactivate disables the profile without deleting it
func (u *User) Deactivate() {
	u.IsActive = false
	u.touch()
}

// RecordLogin stamps a successful sign-in
func (u *User) RecordLogin() {
	now := time.Now()
	u.LastLoginAt = &now
	u.touch()
}

// CanSignIn reports whether the profile may authenticate
func (u *User) CanSignIn() bool {
	return u.IsActive
}

func (u *User) touch() {
	u.UpdatedAt = time.Now()
	u.IncrementVersion()
}

func validateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return shared.NewDomainError("INVALID_EMAIL", "Email is required")
	}
	if !emailPattern.MatchString(email) {
		return shared.NewDomainError("INVALID_EMAIL", "Email format is invalid")
	}
	return nil
}

// normalizeOptional maps empty or whitespace-only strings to nil
func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
