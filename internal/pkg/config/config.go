// Package config exposes typed access to runtime configuration.
package config

import (
	"io"
	"time"
)

// Config reads configuration values by dotted key (for example "mail.host").
//
// Missing keys return the zero value of the requested type.
type Config interface {
	io.Closer

	GetSecond(key string) time.Duration
	GetMinute(key string) time.Duration
	GetHour(key string) time.Duration
	GetDay(key string) time.Duration

	GetInt(key string) int
	GetInt32(key string) int32
	GetInt64(key string) int64
	GetUint(key string) uint
	GetFloat64(key string) float64
	GetBool(key string) bool

	GetString(key string) string
	GetBinary(key string) []byte
	// GetArray splits a comma separated value, trimming blanks and dropping empty items.
	GetArray(key string) []string
	// GetMap parses "k:v,k:v" pairs.
	GetMap(key string) map[string]string
}
