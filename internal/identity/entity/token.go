package entity

import "time"

type RefreshToken struct {
	ID        int64
	UserID    int64
	Token     string
	ExpiresAt time.Time
}

// UserRefreshToken joins a stored refresh token with the owner's current state.
type UserRefreshToken struct {
	UserID                   int64
	Username                 string
	UserEmail                string
	UserStatus               UserStatus
	RefreshID                int64
	RefreshRevoked           bool
	RefreshReplacedByTokenID *int64
	RefreshExpiresAt         time.Time
}

type RotateRefreshToken struct {
	NewID        int64
	OldID        int64
	UserID       int64
	NewToken     string
	NewExpiresAt time.Time
}
