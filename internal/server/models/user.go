// Package models defines server-side data models persisted in the database.
package models

import (
	"database/sql/driver"
	"fmt"
	"strings"
	"time"
)

// User is a registered account. PasswordHash never leaves the server.
type User struct {
	ID           string
	Email        string
	PasswordHash string
	Name         string
	Roles        Roles
	CreatedAt    time.Time
}

// PublicUser is the view of a User returned to callers.
type PublicUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Name  string `json:"name,omitempty"`
}

func (u *User) Public() PublicUser {
	return PublicUser{ID: u.ID, Email: u.Email, Name: u.Name}
}

// Roles is stored as a comma-separated text column.
type Roles []string

func (r Roles) Value() (driver.Value, error) {
	return strings.Join(r, ","), nil
}

func (r *Roles) Scan(src any) error {
	var s string
	switch v := src.(type) {
	case string:
		s = v
	case []byte:
		s = string(v)
	case nil:
		*r = nil
		return nil
	default:
		return fmt.Errorf("roles: unsupported type %T", src)
	}

	var out Roles
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	*r = out
	return nil
}

func (r Roles) Has(role string) bool {
	for _, v := range r {
		if v == role {
			return true
		}
	}
	return false
}
