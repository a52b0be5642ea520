package users

import "time"

// User is a registered account. The password hash never leaves this package.
type User struct {
	ID           string
	Username     string
	PasswordHash string
	CreatedAt    time.Time
}
