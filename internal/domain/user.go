package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	UserStatusActive   UserStatus = "Active"
	UserStatusInactive UserStatus = "Inactive"
)

type (
	UserStatus string

	User struct {
		ID        uuid.UUID  `json:"id"`
		Name      string     `json:"name"`
		Email     string     `json:"email"`
		Status    UserStatus `json:"status"`
		CreatedAt time.Time  `json:"created_at"`
		UpdatedAt time.Time  `json:"updated_at"`
	}
)

// ParseUserStatus validates a status string coming from the API or the bus.
func ParseUserStatus(raw string) (UserStatus, bool) {
	switch UserStatus(raw) {
	case UserStatusActive, UserStatusInactive:
		return UserStatus(raw), true
	default:
		return "", false
	}
}

func (u *User) IsActive() bool {
	return u.Status == UserStatusActive
}
