package application

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/todo-api/internal/domain/entity"
	repo "github.com/oksasatya/todo-api/internal/domain/repository"
	"github.com/oksasatya/todo-api/pkg/helpers"
)

type UserService struct {
	Repo              repo.UserRepository
	JWT               *helpers.JWTManager
	Logger            *logrus.Logger
	UsernameMinLength int
	PasswordMinLength int
	BcryptCost        int
}

func NewUserService(repo repo.UserRepository, jwt *helpers.JWTManager, logger *logrus.Logger) *UserService {
	if logger == nil {
		logger = helpers.DiscardLogger()
	}
	return &UserService{
		Repo:              repo,
		JWT:               jwt,
		Logger:            logger,
		UsernameMinLength: 1,
		PasswordMinLength: 6,
		BcryptCost:        10,
	}
}

type LoginResult struct {
	Token     string
	ExpiresAt time.Time
}

// Register validates the credentials, hashes the password and stores a new user.
func (s *UserService) Register(ctx context.Context, username, password string) (*entity.User, error) {
	username = strings.TrimSpace(username)
	if len(username) < max(s.UsernameMinLength, 1) {
		return nil, ErrUsernameTooShort
	}
	if len(password) < s.PasswordMinLength {
		return nil, ErrPasswordTooShort
	}

	hash, err := helpers.HashPassword(password, s.BcryptCost)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Username: username, Password: hash}
	if err := s.Repo.Create(ctx, u); err != nil {
		if helpers.IsPGUniqueViolation(err) {
			s.Logger.WithField("username", username).Debug("username already taken")
		}
		return nil, &RequestError{Detail: helpers.PGErrorDetail(err), Err: err}
	}
	s.Logger.WithField("user_id", u.ID).Info("user registered")
	return u, nil
}

func (s *UserService) GetUser(ctx context.Context, userID string) (*entity.User, error) {
	if userID == "" {
		return nil, ErrUserIDRequired
	}
	if _, err := uuid.Parse(userID); err != nil {
		return nil, ErrInvalidUserID
	}
	u, err := s.Repo.GetByID(ctx, userID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, &RequestError{Detail: helpers.PGErrorDetail(err), Err: err}
	}
	return u, nil
}

// Login checks the credentials and issues an access token whose subject is the user id.
func (s *UserService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.Repo.GetByUsername(ctx, strings.TrimSpace(username))
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, &RequestError{Detail: helpers.PGErrorDetail(err), Err: err}
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}

	token, exp, err := s.JWT.GenerateAccessToken(u.ID)
	if err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate access token failed")
		return nil, err
	}
	return &LoginResult{Token: token, ExpiresAt: exp}, nil
}
