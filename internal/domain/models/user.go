package models

import "time"

// Scope is the privilege level of an account.
type Scope string

const (
	ScopeUser  Scope = "user"
	ScopeAdmin Scope = "admin"
)

// Valid reports whether s is a known scope.
func (s Scope) Valid() bool {
	return s == ScopeUser || s == ScopeAdmin
}

// User is a stored credential entry.
type User struct {
	Username     string    `bson:"username" json:"username"`
	PasswordHash string    `bson:"password_hash" json:"-"`
	Scope        Scope     `bson:"scope" json:"scope"`
	CreatedAt    time.Time `bson:"created_at" json:"created_at"`
}

// Identity is what a successful authentication yields.
type Identity struct {
	Username string `json:"username"`
	Scope    Scope  `json:"scope"`
}
