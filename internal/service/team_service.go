package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kimoju01/omg-project/internal/models"
	"github.com/sirupsen/logrus"
)

var (
	ErrTeamNotFound      = errors.New("team not found")
	ErrLeaderCannotLeave = errors.New("team leader cannot leave the team")
)

// TeamStore is the persistence contract for teams and memberships.
type TeamStore interface {
	Create(ctx context.Context, team *models.Team) error
	GetByID(ctx context.Context, teamID string) (*models.Team, error)
	GetByInviteCode(ctx context.Context, inviteCode string) (*models.Team, error)
	AddMember(ctx context.Context, team *models.Team, userID string) error
	RemoveMember(ctx context.Context, teamID, userID string) error
	ListUserTeams(ctx context.Context, userID string) ([]models.TeamMembership, error)
}

type TeamService struct {
	store  TeamStore
	logger *logrus.Logger
}

func NewTeamService(store TeamStore, logger *logrus.Logger) *TeamService {
	return &TeamService{
		store:  store,
		logger: logger,
	}
}

type CreateTeamInput struct {
	TripID   string
	TripName string
	LeaderID string
}

// CreateTeam creates the team with a fresh invite code and enrols the leader
// as its first member.
func (s *TeamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	team := &models.Team{
		ID:         uuid.New().String(),
		TripID:     input.TripID,
		TripName:   input.TripName,
		LeaderID:   input.LeaderID,
		InviteCode: uuid.New().String()[:8],
	}

	if err := s.store.Create(ctx, team); err != nil {
		return nil, err
	}

	if err := s.store.AddMember(ctx, team, input.LeaderID); err != nil {
		return nil, fmt.Errorf("failed to enrol team leader: %w", err)
	}

	s.logger.WithFields(logrus.Fields{
		"team_id":     team.ID,
		"invite_code": team.InviteCode,
	}).Info("Team created")

	return team, nil
}

func (s *TeamService) FindByInviteCode(ctx context.Context, inviteCode string) (*models.Team, error) {
	team, err := s.store.GetByInviteCode(ctx, inviteCode)
	if err != nil {
		return nil, err
	}
	if team == nil {
		return nil, ErrTeamNotFound
	}
	return team, nil
}

// JoinByInviteCode adds the user to the team the invite code belongs to.
func (s *TeamService) JoinByInviteCode(ctx context.Context, inviteCode, userID string) (*models.Team, error) {
	team, err := s.FindByInviteCode(ctx, inviteCode)
	if err != nil {
		return nil, err
	}

	if err := s.store.AddMember(ctx, team, userID); err != nil {
		return nil, err
	}

	return team, nil
}

// LeaveTeam removes the user from the team. The leader cannot leave.
func (s *TeamService) LeaveTeam(ctx context.Context, teamID, userID string) error {
	team, err := s.store.GetByID(ctx, teamID)
	if err != nil {
		return err
	}
	if team == nil {
		return ErrTeamNotFound
	}

	if team.LeaderID == userID {
		return ErrLeaderCannotLeave
	}

	return s.store.RemoveMember(ctx, teamID, userID)
}

func (s *TeamService) GetUserTeams(ctx context.Context, userID string) ([]models.TeamMembership, error) {
	return s.store.ListUserTeams(ctx, userID)
}
