package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/kimoju01/omg-project/internal/models"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// UserStore is the persistence contract the auth flows need from the user
// repository.
type UserStore interface {
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, username string) error
	ExistsByUsernick(ctx context.Context, usernick string) (bool, error)
}

type UserService struct {
	store  UserStore
	logger *logrus.Logger
}

func NewUserService(store UserStore, logger *logrus.Logger) *UserService {
	return &UserService{
		store:  store,
		logger: logger,
	}
}

type SignUpInput struct {
	Username string
	Password string
	Usernick string
	Name     string
	Gender   string
}

// SignUp creates a local account. The username is the user's email address;
// federated and local accounts share the namespace.
func (s *UserService) SignUp(ctx context.Context, input SignUpInput) (*models.User, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	gender := input.Gender
	if gender == "" {
		gender = models.GenderUnset
	}

	user := &models.User{
		ID:       uuid.New().String(),
		Username: input.Username,
		Usernick: input.Usernick,
		Name:     input.Name,
		Password: string(hashed),
		Gender:   gender,
		Roles:    []string{models.RoleUser},
	}

	if err := s.store.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.WithFields(logrus.Fields{
		"username": user.Username,
		"usernick": user.Usernick,
	}).Info("User signed up")

	return user, nil
}

// Authenticate checks local credentials. Both an unknown username and a
// wrong password come back as ErrInvalidCredentials so the sign-in form
// cannot be used to probe for accounts.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.store.GetByUsername(ctx, username)
}

func (s *UserService) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	user, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

func (s *UserService) ExistsByUsernick(ctx context.Context, usernick string) (bool, error) {
	return s.store.ExistsByUsernick(ctx, usernick)
}

type UserEditInput struct {
	Usernick string
	Name     string
	Gender   string
}

func (s *UserService) UpdateUser(ctx context.Context, username string, input UserEditInput) (*models.User, error) {
	user, err := s.store.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}

	if input.Usernick != "" {
		user.Usernick = input.Usernick
	}
	if input.Name != "" {
		user.Name = input.Name
	}
	if input.Gender != "" {
		user.Gender = input.Gender
	}

	if err := s.store.Update(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

func (s *UserService) DeleteUser(ctx context.Context, username string) error {
	return s.store.Delete(ctx, username)
}
