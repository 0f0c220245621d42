package entity

import "time"

// OTP is a stored one-time code. CodeHash is the keyed hash of the code; the
// plain code only ever leaves the process inside the email.
type OTP struct {
	ID        int64
	UserID    int64
	CodeHash  string
	Purpose   OTPPurpose
	Used      bool
	UsedAt    *time.Time
	CreatedAt time.Time
	ExpiresAt time.Time
}

// ConsumeOTP selects the newest unused, unexpired code of a user matching CodeHash.
type ConsumeOTP struct {
	UserID   int64
	CodeHash string
	Now      time.Time
}

// ResendPolicy bounds how often a user may ask for another code.
type ResendPolicy struct {
	Cooldown     time.Duration
	MaxPerWindow int
	Window       time.Duration
}
