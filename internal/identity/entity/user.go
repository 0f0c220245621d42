package entity

import "time"

type User struct {
	ID        int64
	Username  string
	Email     string
	FullName  string
	Status    UserStatus
	CreatedAt time.Time
	UpdatedAt time.Time
}

// UserCredential is a user row including the stored password hash.
type UserCredential struct {
	ID       int64
	Username string
	Email    string
	Password string
	Status   UserStatus
}

type NewUser struct {
	ID       int64
	Username string
	Email    string
	FullName string
	Password string
	Status   UserStatus
	// Role is bound to the user in the policy table together with the insert.
	Role string
}
