package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"gorm.io/gorm"

	"github.com/Skotchmaster/recipe_api/internal/hash"
	"github.com/Skotchmaster/recipe_api/internal/logging"
	"github.com/Skotchmaster/recipe_api/internal/models"
	"github.com/Skotchmaster/recipe_api/internal/repo"
	"github.com/Skotchmaster/recipe_api/internal/transport"
)

const (
	MinPasswordLength = 8
	MaxFieldLength    = 255
)

const (
	msgBlank        = "This field may not be blank."
	msgRequired     = "This field is required."
	msgInvalidEmail = "Enter a valid email address."
	msgEmailTaken   = "user with this email already exists."
	msgTooLong      = "Ensure this field has no more than 255 characters."
)

var msgShortPassword = fmt.Sprintf("Ensure this field has at least %d characters.", MinPasswordLength)

type UserService struct {
	Repo   *repo.GormRepo
	Events Publisher
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateEmail(ve *ValidationError, email string) {
	if email == "" {
		ve.Add("email", msgBlank)
		return
	}
	if utf8.RuneCountInString(email) > MaxFieldLength {
		ve.Add("email", msgTooLong)
		return
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		ve.Add("email", msgInvalidEmail)
	}
}

func validatePassword(ve *ValidationError, password string) {
	if password == "" {
		ve.Add("password", msgBlank)
		return
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		ve.Add("password", msgShortPassword)
	}
}

func validateName(ve *ValidationError, name string) {
	if utf8.RuneCountInString(name) > MaxFieldLength {
		ve.Add("name", msgTooLong)
	}
}

func (s *UserService) Register(ctx context.Context, req transport.RegisterRequest) (*models.User, error) {
	l := logging.FromContext(ctx).With("svc", "user.register")

	email := NormalizeEmail(req.Email)
	name := strings.TrimSpace(req.Name)

	ve := &ValidationError{}
	validateEmail(ve, email)
	validatePassword(ve, req.Password)
	validateName(ve, name)
	if err := ve.Err(); err != nil {
		return nil, err
	}

	pwHash, err := hash.HashPassword(req.Password)
	if err != nil {
		l.Error("register_error", "status", 500, "reason", "cannot hash the password", "error", err)
		return nil, err
	}

	user := &models.User{
		Email:        email,
		PasswordHash: pwHash,
		Name:         name,
		IsActive:     true,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, user); err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fieldError("email", msgEmailTaken)
		}
		return nil, err
	}

	publish(ctx, s.Events, TopicUserEvents, email, UserEvent{
		Type:   EventUserRegistered,
		UserID: user.ID,
		Email:  user.Email,
	})
	return user, nil
}

// Authenticate checks the credentials and issues a fresh token, replacing the
// previous one. Unknown email, wrong password and inactive user all yield
// ErrInvalidCredentials.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (string, error) {
	email = NormalizeEmail(email)
	if email == "" || password == "" {
		return "", ErrInvalidCredentials
	}

	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrInvalidCredentials
		}
		return "", err
	}
	if !user.IsActive || !hash.CheckPassword(user.PasswordHash, password) {
		return "", ErrInvalidCredentials
	}

	key, err := NewTokenKey()
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}
	if _, err := s.Repo.ReplaceToken(ctx, user.ID, key); err != nil {
		return "", err
	}

	publish(ctx, s.Events, TopicUserEvents, user.Email, UserEvent{
		Type:   EventTokenIssued,
		UserID: user.ID,
		Email:  user.Email,
	})
	return key, nil
}

func (s *UserService) Resolve(ctx context.Context, key string) (*models.User, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, ErrUnauthenticated
	}

	user, err := s.Repo.UserByToken(ctx, key)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnauthenticated
		}
		return nil, err
	}
	if !user.IsActive {
		return nil, ErrUnauthenticated
	}
	return user, nil
}

func (s *UserService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.Repo.UserByID(ctx, userID)
	if err != nil {
		return nil, storeErr(err, "user")
	}
	return user, nil
}

// UpdateProfile changes the caller's own email, password or name. A full
// update (partial=false) requires email and password.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, req transport.ProfileRequest, partial bool) (*models.User, error) {
	ve := &ValidationError{}
	fields := make(map[string]any)

	if !partial {
		if req.Email == nil {
			ve.Add("email", msgRequired)
		}
		if req.Password == nil {
			ve.Add("password", msgRequired)
		}
	}

	if req.Email != nil {
		email := NormalizeEmail(*req.Email)
		before := len(ve.Fields["email"])
		validateEmail(ve, email)
		if len(ve.Fields["email"]) == before {
			taken, err := s.Repo.EmailTaken(ctx, email, userID)
			if err != nil {
				return nil, err
			}
			if taken {
				ve.Add("email", msgEmailTaken)
			}
			fields["email"] = email
		}
	}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		validateName(ve, name)
		fields["name"] = name
	}
	if req.Password != nil {
		before := len(ve.Fields["password"])
		validatePassword(ve, *req.Password)
		if len(ve.Fields["password"]) == before {
			pwHash, err := hash.HashPassword(*req.Password)
			if err != nil {
				return nil, err
			}
			fields["password_hash"] = pwHash
		}
	}
	if err := ve.Err(); err != nil {
		return nil, err
	}

	user, err := s.Repo.UpdateUser(ctx, userID, fields)
	if err != nil {
		if errors.Is(err, repo.ErrUserAlreadyExist) {
			return nil, fieldError("email", msgEmailTaken)
		}
		return nil, storeErr(err, "user")
	}
	return user, nil
}
