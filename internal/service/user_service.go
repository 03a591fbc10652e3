package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/Aquabet/webapp/internal/auth"
	"github.com/Aquabet/webapp/internal/events"
	"github.com/Aquabet/webapp/internal/metrics"
	"github.com/Aquabet/webapp/internal/model"
	"github.com/Aquabet/webapp/internal/repository"
)

var (
	ErrUserAlreadyExists  = errors.New("user already exists")
	ErrUserNotFound       = errors.New("user not found")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid verification token")
)

type RegisterInput struct {
	Email     string
	Password  string
	FirstName *string
	LastName  *string
}

// RegisterResult distinguishes a fresh registration from a verification
// resend for an existing unverified account.
type RegisterResult struct {
	User   *model.User
	Resent bool
}

type ProfileUpdate struct {
	FirstName *string
	LastName  *string
	Password  *string
}

type UserService interface {
	Register(ctx context.Context, in RegisterInput) (*RegisterResult, error)
	Authenticate(ctx context.Context, email, password string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	UpdateProfile(ctx context.Context, user *model.User, upd ProfileUpdate) error
	VerifyEmail(ctx context.Context, token string) error
}

type userService struct {
	users   repository.UserRepository
	emails  events.EmailPublisher
	metrics metrics.Emitter
}

func NewUserService(users repository.UserRepository, emails events.EmailPublisher, m metrics.Emitter) UserService {
	return &userService{users: users, emails: emails, metrics: m}
}

func (s *userService) Register(ctx context.Context, in RegisterInput) (*RegisterResult, error) {
	existing, err := s.findByEmail(ctx, in.Email)
	switch {
	case err == nil:
		if existing.Verified() {
			return nil, ErrUserAlreadyExists
		}
		return s.resendVerification(ctx, existing)
	case errors.Is(err, sql.ErrNoRows):
		// fresh registration
	default:
		return nil, err
	}

	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	token := uuid.NewString()
	user := &model.User{
		ID:                uuid.New(),
		Email:             in.Email,
		PasswordHash:      hash,
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		AccountCreated:    now,
		AccountUpdated:    now,
		VerificationToken: &token,
	}

	start := time.Now()
	err = s.users.Create(ctx, user)
	metrics.Since(s.metrics, "db.create_user", start)
	if err != nil {
		// a concurrent registration can win the race between the
		// existence check and the insert
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, ErrUserAlreadyExists
		}
		return nil, err
	}

	s.dispatchVerification(ctx, user.Email, token)
	return &RegisterResult{User: user}, nil
}

// resendVerification rotates the token on an unverified account and sends it
// again instead of failing the duplicate registration.
func (s *userService) resendVerification(ctx context.Context, user *model.User) (*RegisterResult, error) {
	token := uuid.NewString()
	user.VerificationToken = &token
	user.AccountUpdated = time.Now()

	start := time.Now()
	err := s.users.Update(ctx, user)
	metrics.Since(s.metrics, "db.update_user", start)
	if err != nil {
		return nil, err
	}

	s.dispatchVerification(ctx, user.Email, token)
	return &RegisterResult{User: user, Resent: true}, nil
}

// dispatchVerification is fire-and-forget: a missing topic or network outage
// must not fail the registration.
func (s *userService) dispatchVerification(ctx context.Context, email, token string) {
	if err := s.emails.PublishVerification(ctx, email, token); err != nil {
		slog.Error("failed to dispatch verification message", "email", email, "error", err)
	}
}

func (s *userService) Authenticate(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	if !auth.CheckPassword(user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

func (s *userService) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, err := s.findByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, user *model.User, upd ProfileUpdate) error {
	if upd.FirstName != nil {
		user.FirstName = upd.FirstName
	}
	if upd.LastName != nil {
		user.LastName = upd.LastName
	}
	if upd.Password != nil {
		hash, err := auth.HashPassword(*upd.Password)
		if err != nil {
			return err
		}
		user.PasswordHash = hash
	}
	user.AccountUpdated = time.Now()

	start := time.Now()
	err := s.users.Update(ctx, user)
	metrics.Since(s.metrics, "db.update_user", start)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrUserNotFound
	}
	return err
}

func (s *userService) VerifyEmail(ctx context.Context, token string) error {
	start := time.Now()
	user, err := s.users.FindByVerificationToken(ctx, token)
	metrics.Since(s.metrics, "db.find_user_by_token", start)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrInvalidToken
		}
		return err
	}

	user.VerificationToken = nil
	user.AccountUpdated = time.Now()

	start = time.Now()
	err = s.users.Update(ctx, user)
	metrics.Since(s.metrics, "db.update_user", start)
	return err
}

func (s *userService) findByEmail(ctx context.Context, email string) (*model.User, error) {
	start := time.Now()
	user, err := s.users.FindByEmail(ctx, email)
	metrics.Since(s.metrics, "db.find_user_by_email", start)
	return user, err
}
