package repository

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/dynamodb/attributevalue"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/kimoju01/omg-project/internal/models"
	"github.com/sirupsen/logrus"
)

type JoinPostRepository struct {
	client    *dynamodb.Client
	tableName string
	logger    *logrus.Logger
}

func NewJoinPostRepository(client *dynamodb.Client, tableName string, logger *logrus.Logger) *JoinPostRepository {
	return &JoinPostRepository{
		client:    client,
		tableName: tableName,
		logger:    logger,
	}
}

func (r *JoinPostRepository) Create(ctx context.Context, post *models.JoinPost) error {
	now := time.Now()
	post.CreatedAt = now
	post.UpdatedAt = now

	item, err := attributevalue.MarshalMap(post)
	if err != nil {
		return fmt.Errorf("failed to marshal join post: %w", err)
	}
	item["PK"] = &types.AttributeValueMemberS{Value: post.GetPK()}
	item["SK"] = &types.AttributeValueMemberS{Value: post.GetSK()}

	_, err = r.client.PutItem(ctx, &dynamodb.PutItemInput{
		TableName: aws.String(r.tableName),
		Item:      item,
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to create join post in DynamoDB")
		return fmt.Errorf("failed to create join post: %w", err)
	}

	return nil
}

func (r *JoinPostRepository) GetByID(ctx context.Context, postID string) (*models.JoinPost, error) {
	post := &models.JoinPost{ID: postID}

	result, err := r.client.GetItem(ctx, &dynamodb.GetItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: post.GetPK()},
			"SK": &types.AttributeValueMemberS{Value: post.GetSK()},
		},
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to get join post from DynamoDB")
		return nil, fmt.Errorf("failed to get join post: %w", err)
	}
	if result.Item == nil {
		return nil, nil
	}

	var dbPost models.JoinPost
	if err := attributevalue.UnmarshalMap(result.Item, &dbPost); err != nil {
		return nil, fmt.Errorf("failed to unmarshal join post: %w", err)
	}

	return &dbPost, nil
}

// ListAll scans the join-post partition range. The post list page shows
// every open post, newest first.
func (r *JoinPostRepository) ListAll(ctx context.Context) ([]models.JoinPost, error) {
	result, err := r.client.Scan(ctx, &dynamodb.ScanInput{
		TableName:        aws.String(r.tableName),
		FilterExpression: aws.String("begins_with(PK, :prefix) AND SK = :sk"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":prefix": &types.AttributeValueMemberS{Value: "JOINPOST#"},
			":sk":     &types.AttributeValueMemberS{Value: "METADATA"},
		},
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to scan join posts from DynamoDB")
		return nil, fmt.Errorf("failed to list join posts: %w", err)
	}

	posts := make([]models.JoinPost, 0, len(result.Items))
	for _, item := range result.Items {
		var post models.JoinPost
		if err := attributevalue.UnmarshalMap(item, &post); err != nil {
			return nil, fmt.Errorf("failed to unmarshal join post: %w", err)
		}
		posts = append(posts, post)
	}

	sort.Slice(posts, func(i, j int) bool {
		return posts[i].CreatedAt.After(posts[j].CreatedAt)
	})

	return posts, nil
}

func (r *JoinPostRepository) ListByUserID(ctx context.Context, userID string) ([]models.JoinPost, error) {
	posts, err := r.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	filtered := posts[:0]
	for _, post := range posts {
		if post.UserID == userID {
			filtered = append(filtered, post)
		}
	}

	return filtered, nil
}

func (r *JoinPostRepository) ExistsByTripID(ctx context.Context, tripID string) (bool, error) {
	posts, err := r.ListAll(ctx)
	if err != nil {
		return false, err
	}

	for _, post := range posts {
		if post.TripID == tripID {
			return true, nil
		}
	}

	return false, nil
}

func (r *JoinPostRepository) Update(ctx context.Context, post *models.JoinPost) error {
	post.UpdatedAt = time.Now()

	_, err := r.client.UpdateItem(ctx, &dynamodb.UpdateItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: post.GetPK()},
			"SK": &types.AttributeValueMemberS{Value: post.GetSK()},
		},
		UpdateExpression: aws.String("SET title = :title, content = :content, updated_at = :updated_at"),
		ExpressionAttributeValues: map[string]types.AttributeValue{
			":title":      &types.AttributeValueMemberS{Value: post.Title},
			":content":    &types.AttributeValueMemberS{Value: post.Content},
			":updated_at": &types.AttributeValueMemberS{Value: post.UpdatedAt.Format(time.RFC3339)},
		},
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to update join post in DynamoDB")
		return fmt.Errorf("failed to update join post: %w", err)
	}

	return nil
}

func (r *JoinPostRepository) Delete(ctx context.Context, postID string) error {
	post := &models.JoinPost{ID: postID}

	_, err := r.client.DeleteItem(ctx, &dynamodb.DeleteItemInput{
		TableName: aws.String(r.tableName),
		Key: map[string]types.AttributeValue{
			"PK": &types.AttributeValueMemberS{Value: post.GetPK()},
			"SK": &types.AttributeValueMemberS{Value: post.GetSK()},
		},
	})
	if err != nil {
		r.logger.WithError(err).Error("Failed to delete join post from DynamoDB")
		return fmt.Errorf("failed to delete join post: %w", err)
	}

	return nil
}
