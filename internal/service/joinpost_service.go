package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/kimoju01/omg-project/internal/models"
	"github.com/sirupsen/logrus"
)

var ErrJoinPostNotFound = errors.New("join post not found")

// JoinPostStore is the persistence contract for recruiting posts.
type JoinPostStore interface {
	Create(ctx context.Context, post *models.JoinPost) error
	GetByID(ctx context.Context, postID string) (*models.JoinPost, error)
	ListAll(ctx context.Context) ([]models.JoinPost, error)
	ListByUserID(ctx context.Context, userID string) ([]models.JoinPost, error)
	ExistsByTripID(ctx context.Context, tripID string) (bool, error)
	Update(ctx context.Context, post *models.JoinPost) error
	Delete(ctx context.Context, postID string) error
}

type JoinPostService struct {
	store  JoinPostStore
	logger *logrus.Logger
}

func NewJoinPostService(store JoinPostStore, logger *logrus.Logger) *JoinPostService {
	return &JoinPostService{
		store:  store,
		logger: logger,
	}
}

type JoinPostInput struct {
	UserID       string
	UserNickname string
	TripID       string
	Title        string
	Content      string
}

func (s *JoinPostService) Create(ctx context.Context, input JoinPostInput) (*models.JoinPost, error) {
	post := &models.JoinPost{
		ID:           uuid.New().String(),
		UserID:       input.UserID,
		UserNickname: input.UserNickname,
		TripID:       input.TripID,
		Title:        input.Title,
		Content:      input.Content,
	}

	if err := s.store.Create(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

func (s *JoinPostService) FindAll(ctx context.Context) ([]models.JoinPost, error) {
	return s.store.ListAll(ctx)
}

func (s *JoinPostService) FindByUserID(ctx context.Context, userID string) ([]models.JoinPost, error) {
	return s.store.ListByUserID(ctx, userID)
}

func (s *JoinPostService) FindByID(ctx context.Context, postID string) (*models.JoinPost, error) {
	post, err := s.store.GetByID(ctx, postID)
	if err != nil {
		return nil, err
	}
	if post == nil {
		return nil, ErrJoinPostNotFound
	}
	return post, nil
}

func (s *JoinPostService) UpdateContent(ctx context.Context, postID, title, content string) (*models.JoinPost, error) {
	post, err := s.FindByID(ctx, postID)
	if err != nil {
		return nil, err
	}

	post.Title = title
	post.Content = content
	if err := s.store.Update(ctx, post); err != nil {
		return nil, err
	}

	return post, nil
}

func (s *JoinPostService) Delete(ctx context.Context, postID string) error {
	return s.store.Delete(ctx, postID)
}

func (s *JoinPostService) ExistsByTripID(ctx context.Context, tripID string) (bool, error) {
	return s.store.ExistsByTripID(ctx, tripID)
}
