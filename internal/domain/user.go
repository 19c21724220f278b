package domain

import "time"

// User is an account that can file enquiries, handle them or administer
// other accounts depending on its Role.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Identity returns the token-facing view of the user.
func (u *User) Identity() Identity {
	return Identity{ID: u.ID, Role: u.Role}
}

// UserRef is the populated summary of a referenced user.
type UserRef struct {
	ID    string
	Name  string
	Email string
}
