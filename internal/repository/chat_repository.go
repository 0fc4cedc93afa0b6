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

// ChatRepository persists chat history. Messages sort by their SK, which
// embeds the creation timestamp, so a partition Query returns them in order.
type ChatRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *logrus.Logger
}

func NewChatRepository(client *dynamodb.Client, tableName string, logger *logrus.Logger) *ChatRepository {
	return &ChatRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func (r *ChatRepository) Save(ctx context.Context, message *models.ChatMessage) error {
	if message.CreatedAt.IsZero() {
		message.CreatedAt = time.Now()
	}

	item, err := attributevalue.MarshalMap(message)
	if err != nil {
		return fmt.Errorf("failed to marshal chat message: %w", err)
	}
	item["PK"] = &types.AttributeValueMemberS{Value: message.GetPK()}
	item["SK"] = &types.AttributeValueMemberS{Value: message.GetSK()}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to save chat message in DynamoDB")
		return fmt.Errorf("failed to save chat message: %w", err)
	}

	return nil
}

func (r *ChatRepository) ListByRoom(ctx context.Context, roomID string) ([]models.ChatMessage, error) {
	result, err := r.client.Query(ctx, &dynamodb.QueryInput{
		TableName:              aws.String(r.tableName),
		KeyConditionExpression: aws.String("PK = :pk AND begins_with(SK, :prefix)"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":pk":     &types.AttributeValueMemberS{Value: "CHAT#" + roomID},
			":prefix": &types.AttributeValueMemberS{Value: "MSG#"},
		},
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to list chat messages from DynamoDB")
		return nil, fmt.Errorf("failed to list chat messages: %w", err)
	}

	messages := make([]models.ChatMessage, 0, len(result.Items))
	for _, item := range result.Items {
		var message models.ChatMessage
		if err := attributevalue.UnmarshalMap(item, &message); err != nil {
			return nil, fmt.Errorf("failed to unmarshal chat message: %w", err)
		}
		messages = append(messages, message)
	}

	return messages, nil
}
