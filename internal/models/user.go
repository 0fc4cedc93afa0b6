package models

import (
	"time"
)

// GenderUnset marks a profile that has not been completed yet. Users created
// through federated login start with it and are sent to the profile setup
// page after signing in.
const GenderUnset = "default"

const RoleUser = "ROLE_USER"

type User struct {
	ID        string    `json:"id" dynamodbav:"id"`
	Username  string    `json:"username" dynamodbav:"username"`
	Usernick  string    `json:"usernick" dynamodbav:"usernick"`
	Name      string    `json:"name" dynamodbav:"name"`
	Password  string    `json:"-" dynamodbav:"password"`
	Gender    string    `json:"gender" dynamodbav:"gender"`
	Roles     []string  `json:"roles" dynamodbav:"roles"`
	Provider  string    `json:"provider,omitempty" dynamodbav:"provider,omitempty"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

func (u *User) GetPK() string {
	return "USER#" + u.Username
}

func (u *User) GetSK() string {
	return "METADATA"
}

// ProfileComplete reports whether the user has filled in the profile fields
// that federated signups leave at their defaults.
func (u *User) ProfileComplete() bool {
	return u.Gender != "" && u.Gender != GenderUnset
}
