package repository

import "github.com/google/uuid"

// newID mints a row identifier. The schema stores them as plain strings so
// both backends share the format.
func newID() string {
	return uuid.NewString()
}
