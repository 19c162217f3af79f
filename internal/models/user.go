// Package models defines the data types persisted and served by marketplay.
package models

import "time"

// User is a registered account, keyed externally by its identity provider subject.
type User struct {
	ID          int64     `json:"id"`
	FirebaseUID string    `json:"firebase_uid"`
	Email       string    `json:"email,omitempty"`
	Phone       string    `json:"phone,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}

// Identity is the verified caller resolved from a bearer credential.
type Identity struct {
	UID     string `json:"uid"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	Picture string `json:"picture"`
}
