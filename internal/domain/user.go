package domain

import "time"

// User is the registered identity. Email is unique and matched exactly.
type User struct {
	ID           string
	Username     string
	Email        string
	PasswordHash string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Subject returns the claim set embedded in access tokens for this user.
func (u *User) Subject() Subject {
	return Subject{ID: u.ID, Username: u.Username, Email: u.Email}
}
