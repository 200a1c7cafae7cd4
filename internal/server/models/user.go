package models

import "time"

// User is a registered author. Email is stored trimmed and lower-cased and
// is unique across users.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Avatar       string
	Bio          string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// PublicUser is the projection of a User that may be sent to clients.
// It never carries the password hash.
type PublicUser struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Email  string  `json:"email"`
	Avatar string  `json:"avatar"`
	Bio    *string `json:"bio,omitempty"`
	Role   string  `json:"role,omitempty"`
}

// Public returns the client-safe projection without the bio.
func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Avatar: u.Avatar}
}

// Profile returns the client-safe projection including the bio.
func (u *User) Profile() PublicUser {
	p := u.Public()
	bio := u.Bio
	p.Bio = &bio
	return p
}
