package models

import "time"

type Trip struct {
	ID        string    `json:"id" dynamodbav:"id"`
	TripName  string    `json:"trip_name" dynamodbav:"trip_name"`
	StartDate string    `json:"start_date" dynamodbav:"start_date"`
	EndDate   string    `json:"end_date" dynamodbav:"end_date"`
	CreatedAt time.Time `json:"created_at" dynamodbav:"created_at"`
}

func (t *Trip) GetPK() string {
	return "TRIP#" + t.ID
}

func (t *Trip) GetSK() string {
	return "METADATA"
}

// Team groups users travelling together on one trip. Members join with the
// team's invite code; the leader cannot leave the team.
type Team struct {
	ID         string    `json:"id" dynamodbav:"id"`
	TripID     string    `json:"trip_id" dynamodbav:"trip_id"`
	TripName   string    `json:"trip_name" dynamodbav:"trip_name"`
	LeaderID   string    `json:"leader_id" dynamodbav:"leader_id"`
	InviteCode string    `json:"invite_code" dynamodbav:"invite_code"`
	CreatedAt  time.Time `json:"created_at" dynamodbav:"created_at"`
}

func (t *Team) GetPK() string {
	return "TEAM#" + t.ID
}

func (t *Team) GetSK() string {
	return "METADATA"
}

// TeamMembership summarises one team of a user, with the leader flag the
// team list page needs.
type TeamMembership struct {
	TeamID   string `json:"id"`
	TripName string `json:"trip_name"`
	IsLeader bool   `json:"is_leader"`
}
