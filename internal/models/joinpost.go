package models

import "time"

// JoinPost is a recruiting post: a user looking for travel companions for a
// trip.
type JoinPost struct {
	ID           string    `json:"id" dynamodbav:"id"`
	UserID       string    `json:"user_id" dynamodbav:"user_id"`
	UserNickname string    `json:"user_nickname" dynamodbav:"user_nickname"`
	TripID       string    `json:"trip_id" dynamodbav:"trip_id"`
	Title        string    `json:"title" dynamodbav:"title"`
	Content      string    `json:"content" dynamodbav:"content"`
	CreatedAt    time.Time `json:"created_at" dynamodbav:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" dynamodbav:"updated_at"`
}

func (p *JoinPost) GetPK() string {
	return "JOINPOST#" + p.ID
}

func (p *JoinPost) GetSK() string {
	return "METADATA"
}
