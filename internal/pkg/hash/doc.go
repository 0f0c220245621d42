// Package hash provides hashing for passwords and for short lived secrets.
//
// Passwords go through Password (bcrypt or argon2id). Values that must be
// looked up by their hash, like refresh tokens and OTP codes, go through
// HMACSHA256 so the same input always yields the same digest.
package hash
