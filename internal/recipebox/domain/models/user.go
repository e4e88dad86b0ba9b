package models

import "time"

type User struct {
	ID           int64     `json:"id"` //nolint:tagliatelle
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`    //nolint:tagliatelle
	IsStaff      bool      `json:"is_staff"`     //nolint:tagliatelle
	IsSuperuser  bool      `json:"is_superuser"` //nolint:tagliatelle
	CreatedAt    time.Time `json:"-"`
}

// Profile is the read projection exposed on the me endpoint.
type Profile struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func (u User) Profile() Profile {
	return Profile{
		Email: u.Email,
		Name:  u.Name,
	}
}
