package id

import "github.com/google/uuid"

// New returns a random UUID v4 string. Report identifiers must be globally
// unique and stable for the record's lifetime; they are generated once at
// creation and never rewritten.
func New() string {
	return uuid.NewString()
}
