package domain

import (
	"strconv"
	"time"
)

// User is an account holder. Accounts are optional; see the auth config.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ProfileKey returns the profile record key owned by the user.
func (u *User) ProfileKey() string {
	return "user:" + strconv.FormatInt(u.ID, 10)
}
