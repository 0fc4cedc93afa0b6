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

type TripRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *logrus.Logger
}

func NewTripRepository(client *dynamodb.Client, tableName string, logger *logrus.Logger) *TripRepository {
	return &TripRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func (r *TripRepository) Create(ctx context.Context, trip *models.Trip) error {
	trip.CreatedAt = time.Now()

	item, err := attributevalue.MarshalMap(trip)
	if err != nil {
		return fmt.Errorf("failed to marshal trip: %w", err)
	}
	item["PK"] = &types.AttributeValueMemberS{Value: trip.GetPK()}
	item["SK"] = &types.AttributeValueMemberS{Value: trip.GetSK()}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to create trip in DynamoDB")
		return fmt.Errorf("failed to create trip: %w", err)
	}

	return nil
}

func (r *TripRepository) GetByID(ctx context.Context, tripID string) (*models.Trip, error) {
	trip := &models.Trip{ID: tripID}

	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: trip.GetPK()},
			"SK": &types.AttributeValueMemberS{Value: trip.GetSK()},
		},
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to get trip from DynamoDB")
		return nil, fmt.Errorf("failed to get trip: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var dbTrip models.Trip
	if err := attributevalue.UnmarshalMap(result.Item, &dbTrip); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trip: %w", err)
	}

	return &dbTrip, nil
}
