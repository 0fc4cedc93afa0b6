package service

import (
	"context"
	"testing"

	"github.com/kimoju01/omg-project/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTeamStore struct {
	teams   map[string]*models.Team
	byCode  map[string]string
	members map[string][]models.TeamMembership
}

func newFakeTeamStore() *fakeTeamStore {
	return &fakeTeamStore{
		teams:   make(map[string]*models.Team),
		byCode:  make(map[string]string),
		members: make(map[string][]models.TeamMembership),
	}
}

func (f *fakeTeamStore) Create(_ context.Context, team *models.Team) error {
	f.teams[team.ID] = team
	f.byCode[team.InviteCode] = team.ID
	return nil
}

func (f *fakeTeamStore) GetByID(_ context.Context, teamID string) (*models.Team, error) {
	return f.teams[teamID], nil
}

func (f *fakeTeamStore) GetByInviteCode(_ context.Context, inviteCode string) (*models.Team, error) {
	teamID, ok := f.byCode[inviteCode]
	if !ok {
		return nil, nil
	}
	return f.teams[teamID], nil
}

func (f *fakeTeamStore) AddMember(_ context.Context, team *models.Team, userID string) error {
	f.members[userID] = append(f.members[userID], models.TeamMembership{
		TeamID:   team.ID,
		TripName: team.TripName,
		IsLeader: team.LeaderID == userID,
	})
	return nil
}

func (f *fakeTeamStore) RemoveMember(_ context.Context, teamID, userID string) error {
	kept := f.members[userID][:0]
	for _, m := range f.members[userID] {
		if m.TeamID != teamID {
			kept = append(kept, m)
		}
	}
	f.members[userID] = kept
	return nil
}

func (f *fakeTeamStore) ListUserTeams(_ context.Context, userID string) ([]models.TeamMembership, error) {
	return f.members[userID], nil
}

func TestCreateTeamEnrolsLeader(t *testing.T) {
	store := newFakeTeamStore()
	svc := NewTeamService(store, testLogger())
	ctx := context.Background()

	team, err := svc.CreateTeam(ctx, CreateTeamInput{
		TripID:   "trip-1",
		TripName: "Jeju",
		LeaderID: "u-leader",
	})
	require.NoError(t, err)

	assert.Len(t, team.InviteCode, 8)
	assert.Equal(t, "u-leader", team.LeaderID)

	memberships, err := svc.GetUserTeams(ctx, "u-leader")
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	assert.True(t, memberships[0].IsLeader)
	assert.Equal(t, "Jeju", memberships[0].TripName)
}

func TestJoinByInviteCode(t *testing.T) {
	store := newFakeTeamStore()
	svc := NewTeamService(store, testLogger())
	ctx := context.Background()

	team, err := svc.CreateTeam(ctx, CreateTeamInput{TripID: "trip-1", TripName: "Jeju", LeaderID: "u-leader"})
	require.NoError(t, err)

	joined, err := svc.JoinByInviteCode(ctx, team.InviteCode, "u-member")
	require.NoError(t, err)
	assert.Equal(t, team.ID, joined.ID)

	memberships, err := svc.GetUserTeams(ctx, "u-member")
	require.NoError(t, err)
	require.Len(t, memberships, 1)
	assert.False(t, memberships[0].IsLeader)

	_, err = svc.JoinByInviteCode(ctx, "no-such-c", "u-member")
	assert.ErrorIs(t, err, ErrTeamNotFound)
}

func TestLeaveTeam(t *testing.T) {
	store := newFakeTeamStore()
	svc := NewTeamService(store, testLogger())
	ctx := context.Background()

	team, err := svc.CreateTeam(ctx, CreateTeamInput{TripID: "trip-1", TripName: "Jeju", LeaderID: "u-leader"})
	require.NoError(t, err)

	_, err = svc.JoinByInviteCode(ctx, team.InviteCode, "u-member")
	require.NoError(t, err)

	require.NoError(t, svc.LeaveTeam(ctx, team.ID, "u-member"))

	memberships, err := svc.GetUserTeams(ctx, "u-member")
	require.NoError(t, err)
	assert.Empty(t, memberships)

	assert.ErrorIs(t, svc.LeaveTeam(ctx, team.ID, "u-leader"), ErrLeaderCannotLeave)
	assert.ErrorIs(t, svc.LeaveTeam(ctx, "no-such-team", "u-member"), ErrTeamNotFound)
}
