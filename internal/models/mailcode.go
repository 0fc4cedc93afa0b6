package models

import "time"

// MailCodeData is the Redis payload for one outstanding email verification
// code. Only the bcrypt hash of the code is stored.
type MailCodeData struct {
	CodeHash  string    `json:"code_hash"`
	Mail      string    `json:"mail"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}
