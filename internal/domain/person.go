package domain

import (
	"fmt"
	"net/mail"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

// Role is a closed set of privileges in ascending order.
type Role string

const (
	RoleUser       Role = "user"
	RoleCritic     Role = "critic"
	RoleModerator  Role = "moderator"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "superadmin"
)

var roleRank = map[Role]int{
	RoleUser:       1,
	RoleCritic:     2,
	RoleModerator:  3,
	RoleAdmin:      4,
	RoleSuperAdmin: 5,
}

func (r Role) IsValid() bool {
	_, ok := roleRank[r]
	return ok
}

// Rank is 0 for unknown roles.
func (r Role) Rank() int {
	return roleRank[r]
}

// AtLeast reports whether r carries at least the privileges of min.
func (r Role) AtLeast(min Role) bool {
	return r.IsValid() && r.Rank() >= min.Rank()
}

// AccountState is a user's moderation status, independent of the role.
type AccountState string

const (
	AccountStateActive     AccountState = "active"
	AccountStateRestricted AccountState = "restricted"
	AccountStateWarned     AccountState = "warned"
	AccountStateDisabled   AccountState = "disabled"
)

func (s AccountState) IsValid() bool {
	switch s {
	case AccountStateActive, AccountStateRestricted, AccountStateWarned, AccountStateDisabled:
		return true
	}
	return false
}

// Person is a registered user of the platform.
type Person struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	AvatarURL    string
	Role         Role
	State        AccountState
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// AuthorSummary is the display projection of a person attached to listed content.
type AuthorSummary struct {
	ID        string
	Name      string
	AvatarURL string
	Role      Role
}

// NewPerson creates an active person with a bcrypt password hash.
func NewPerson(name, email, password string, role Role) (*Person, error) {
	name = strings.TrimSpace(name)
	email = strings.ToLower(strings.TrimSpace(email))
	if name == "" {
		return nil, fmt.Errorf("%w: name cannot be empty", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email '%s'", ErrInvalidInput, email)
	}
	if len(password) < 8 {
		return nil, fmt.Errorf("%w: password must have at least 8 characters", ErrInvalidInput)
	}
	if role == "" {
		role = RoleUser
	}
	if !role.IsValid() {
		return nil, fmt.Errorf("%w: unknown role '%s'", ErrInvalidInput, role)
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	now := time.Now().UTC()
	return &Person{
		ID:           primitive.NewObjectID().Hex(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		State:        AccountStateActive,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// CheckPassword compares password with the stored hash.
func (p *Person) CheckPassword(password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(p.PasswordHash), []byte(password)) == nil
}

func (p *Person) Summary() *AuthorSummary {
	return &AuthorSummary{ID: p.ID, Name: p.Name, AvatarURL: p.AvatarURL, Role: p.Role}
}
