package domain

import (
	"strings"
	"time"
)

// User represents a person who can own or be assigned tasks.
type User struct {
	ID        string
	FullName  string
	Email     string
	Telephone string
	CreatedAt time.Time
}

// NormalizeEmail lower-cases and trims an email address. The normalized
// form is the natural key for upsert-by-email and the uniqueness invariant.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
