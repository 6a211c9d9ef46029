// Package model defines domain entities shared by the gateway and the backend services.
package model

import "time"

// User is a record owned by the user service.
// Timestamps are microseconds since the Unix epoch.
type User struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	CreatedAt int64  `json:"created_at"`
	UpdatedAt int64  `json:"updated_at"`
}

// NewUser returns a user stamped with the given creation time.
// CreatedAt and UpdatedAt are equal at creation.
func NewUser(name string, now time.Time) *User {
	ts := now.UnixMicro()
	return &User{
		Name:      name,
		CreatedAt: ts,
		UpdatedAt: ts,
	}
}
