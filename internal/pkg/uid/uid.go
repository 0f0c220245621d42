// Package uid generates identifiers: snowflake numbers for primary keys,
// UUIDs for correlation ids, and random hex strings for opaque tokens.
package uid

import "github.com/google/uuid"

// NumberID generates unique int64 identifiers.
type NumberID interface {
	Generate() int64
}

// StringID generates unique string identifiers.
type StringID interface {
	Generate() string
}

// UUID generates time ordered UUIDv7 strings, used for correlation ids.
type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

func (*UUID) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
