package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/kimoju01/omg-project/internal/models"
	"github.com/sirupsen/logrus"
)

// TeamRepository stores teams in the single table as three item kinds: the
// team metadata, an invite-code pointer for lookup by code, and membership
// items written to both the team partition and the member's user partition
// so either side can be listed with a Query.
type TeamRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *logrus.Logger
}

func NewTeamRepository(client *dynamodb.Client, tableName string, logger *logrus.Logger) *TeamRepository {
	return &TeamRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func (r *TeamRepository) Create(ctx context.Context, team *models.Team) error {
	team.CreatedAt = time.Now()

	item, err := attributevalue.MarshalMap(team)
	if err != nil {
		return fmt.Errorf("failed to marshal team: %w", err)
	}
	item["PK"] = &types.AttributeValueMemberS{Value: team.GetPK()}
	item["SK"] = &types.AttributeValueMemberS{Value: team.GetSK()}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to create team in DynamoDB")
		return fmt.Errorf("failed to create team: %w", err)
	}

	// Invite-code pointer item.
	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item: map[string]types.AttributeValue{
			"PK":      &types.AttributeValueMemberS{Value: "INVITE#" + team.InviteCode},
			"SK":      &types.AttributeValueMemberS{Value: "METADATA"},
			"team_id": &types.AttributeValueMemberS{Value: team.ID},
		},
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to store invite code in DynamoDB")
		return fmt.Errorf("failed to store invite code: %w", err)
	}

	return nil
}

func (r *TeamRepository) GetByID(ctx context.Context, teamID string) (*models.Team, error) {
	team := &models.Team{ID: teamID}

	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: team.GetPK()},
			"SK": &types.AttributeValueMemberS{Value: team.GetSK()},
		},
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to get team from DynamoDB")
		return nil, fmt.Errorf("failed to get team: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var dbTeam models.Team
	if err := attributevalue.UnmarshalMap(result.Item, &dbTeam); err != nil {
		return nil, fmt.Errorf("failed to unmarshal team: %w", err)
	}

	return &dbTeam, nil
}

func (r *TeamRepository) GetByInviteCode(ctx context.Context, inviteCode string) (*models.Team, error) {
	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "INVITE#" + inviteCode},
			"SK": &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to resolve invite code in DynamoDB")
		return nil, fmt.Errorf("failed to resolve invite code: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	teamIDAttr, ok := result.Item["team_id"].(*types.AttributeValueMemberS)
	if !ok {
		return nil, fmt.Errorf("invite code item missing team_id")
	}

	return r.GetByID(ctx, teamIDAttr.Value)
}

// AddMember writes the membership on both partitions.
func (r *TeamRepository) AddMember(ctx context.Context, team *models.Team, userID string) error {
	_, err := r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item: map[string]types.AttributeValue{
			"PK":      &types.AttributeValueMemberS{Value: team.GetPK()},
			"SK":      &types.AttributeValueMemberS{Value: "MEMBER#" + userID},
			"user_id": &types.AttributeValueMemberS{Value: userID},
		},
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to add team member in DynamoDB")
		return fmt.Errorf("failed to add team member: %w", err)
	}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item: map[string]types.AttributeValue{
			"PK":        &types.AttributeValueMemberS{Value: "USERID#" + userID},
			"SK":        &types.AttributeValueMemberS{Value: "TEAM#" + team.ID},
			"team_id":   &types.AttributeValueMemberS{Value: team.ID},
			"trip_name": &types.AttributeValueMemberS{Value: team.TripName},
			"leader_id": &types.AttributeValueMemberS{Value: team.LeaderID},
		},
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to add user team item in DynamoDB")
		return fmt.Errorf("failed to add user team item: %w", err)
	}

	return nil
}

func (r *TeamRepository) RemoveMember(ctx context.Context, teamID, userID string) error {
	team := &models.Team{ID: teamID}

	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: team.GetPK()},
			"SK": &types.AttributeValueMemberS{Value: "MEMBER#" + userID},
		},
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to remove team member in DynamoDB")
		return fmt.Errorf("failed to remove team member: %w", err)
	}

	_, err = r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: "USERID#" + userID},
			"SK": &types.AttributeValueMemberS{Value: "TEAM#" + teamID},
		},
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to remove user team item in DynamoDB")
		return fmt.Errorf("failed to remove user team item: %w", err)
	}

	return nil
}

// ListUserTeams queries the user partition for membership items.
func (r *TeamRepository) ListUserTeams(ctx context.Context, userID string) ([]models.TeamMembership, error) {
	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: "USERID#" + userID},
			":prefix": &types.AttributeValueMemberS{Value: "TEAM#"},
		},
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to list user teams from DynamoDB")
		return nil, fmt.Errorf("failed to list user teams: %w", err)
	}

	memberships := make([]models.TeamMembership, 0, len(result.Items))
	for _, item := range result.Items {
		var row struct {
			TeamID   string `dynamodbav:"team_id"`
			TripName string `dynamodbav:"trip_name"`
			LeaderID string `dynamodbav:"leader_id"`
		}
		if err := attributevalue.UnmarshalMap(item, &row); err != nil {
			return nil, fmt.Errorf("failed to unmarshal team membership: %w", err)
		}
		memberships = append(memberships, models.TeamMembership{
			TeamID:   row.TeamID,
			TripName: row.TripName,
			IsLeader: row.LeaderID == userID,
		})
	}

	return memberships, nil
}
