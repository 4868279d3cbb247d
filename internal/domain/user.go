package domain

import (
	"time"

	"github.com/google/uuid"
)

type UserRole string

const (
	RoleAdmin    UserRole = "ADMIN"
	RoleCustomer UserRole = "CUSTOMER"
)

type UserStatus string

const (
	UserStatusActive   UserStatus = "ACTIVE"
	UserStatusInactive UserStatus = "INACTIVE"
)

func (s UserStatus) Valid() bool {
	return s == UserStatusActive || s == UserStatusInactive
}

type User struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	Email        string     `db:"email" json:"email"`
	PasswordHash []byte     `db:"password_hash" json:"-"`
	Role         UserRole   `db:"role" json:"role"`
	Status       UserStatus `db:"status" json:"status"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`

	Profile *Profile `db:"-" json:"profile,omitempty"`
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func (u *User) IsActive() bool {
	return u != nil && u.Status == UserStatusActive
}

// DisplayName prefers the profile name and falls back to the email local part.
func (u *User) DisplayName() string {
	if u == nil {
		return ""
	}
	if u.Profile != nil && u.Profile.FullName != nil && *u.Profile.FullName != "" {
		return *u.Profile.FullName
	}
	for i := 0; i < len(u.Email); i++ {
		if u.Email[i] == '@' && i > 0 {
			return u.Email[:i]
		}
	}
	return u.Email
}

type Profile struct {
	UserID         uuid.UUID `db:"user_id" json:"-"`
	FullName       *string   `db:"full_name" json:"full_name,omitempty"`
	Phone          *string   `db:"phone" json:"phone,omitempty"`
	Address        *string   `db:"address" json:"address,omitempty"`
	Gender         *string   `db:"gender" json:"gender,omitempty"`
	IdentityNumber *string   `db:"identity_number" json:"identity_number,omitempty"`
}

// ProfileFields carries optional profile changes; nil fields are left untouched.
type ProfileFields struct {
	FullName       *string
	Phone          *string
	Address        *string
	Gender         *string
	IdentityNumber *string
}

type CustomerListItem struct {
	User
	FullName     *string `db:"full_name" json:"full_name,omitempty"`
	Phone        *string `db:"phone" json:"phone,omitempty"`
	BookingCount int     `db:"booking_count" json:"booking_count"`
}
