package user

import (
	"context"
	"errors"
	"log/slog"
	"time"

	appErrors "github.com/frahmantamala/permit-service/internal"
	"github.com/frahmantamala/permit-service/internal/auth"
	userDatamodel "github.com/frahmantamala/permit-service/internal/core/datamodel/user"
	"github.com/frahmantamala/permit-service/internal/core/events"
)

type RepositoryAPI interface {
	GetAll(ctx context.Context) ([]*userDatamodel.User, error)
	GetByCredentials(ctx context.Context, email, idNumber string) ([]*userDatamodel.User, error)
	GetByID(ctx context.Context, id int64) (*userDatamodel.User, error)
	// Create inserts u unless the email exists, in which case it returns ErrEmailTaken.
	Create(ctx context.Context, u *userDatamodel.User) error
}

type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// TokenPolicy sets how long minted tokens live. Lookups hand out long lived
// tokens while the token returned on registration is short lived.
type TokenPolicy struct {
	ReadTTL   time.Duration
	CreateTTL time.Duration
}

type Service struct {
	repo      RepositoryAPI
	tokens    auth.TokenGenerator
	policy    TokenPolicy
	publisher EventPublisher
	logger    *slog.Logger
}

func NewService(repo RepositoryAPI, tokens auth.TokenGenerator, policy TokenPolicy, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		tokens:    tokens,
		policy:    policy,
		publisher: publisher,
		logger:    logger,
	}
}

// FindByCredentials returns the users matching both email and id number, or
// every user when either is missing. Each carries a fresh token.
func (s *Service) FindByCredentials(ctx context.Context, query LookupQuery) ([]*User, error) {
	var (
		rows []*userDatamodel.User
		err  error
	)
	if query.IsComplete() {
		rows, err = s.repo.GetByCredentials(ctx, query.Email, query.IDNumber)
	} else {
		rows, err = s.repo.GetAll(ctx)
	}
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to fetch users", "error", err)
		return nil, appErrors.NewPersistenceError("Failed to fetch users", err)
	}

	users := make([]*User, 0, len(rows))
	for _, row := range rows {
		u := FromDataModel(row)
		token, err := s.tokens.GenerateToken(u.ID, u.Email, s.policy.ReadTTL)
		if err != nil {
			s.logger.ErrorContext(ctx, "failed to sign token", "user_id", u.ID, "error", err)
			return nil, appErrors.NewInternalError("Failed to issue token", err)
		}
		u.Token = token
		users = append(users, u)
	}
	return users, nil
}

// Create registers a user and returns the stored row with a short lived token.
func (s *Service) Create(ctx context.Context, dto CreateUserDTO) (*User, string, error) {
	dto.Normalize()
	if appErr := dto.Validate(); appErr != nil {
		return nil, "", appErr
	}

	row := ToDataModel(&User{Name: dto.Name, Email: dto.Email, IDNumber: dto.IDNumber})
	if err := s.repo.Create(ctx, row); err != nil {
		if errors.Is(err, ErrEmailTaken) {
			s.logger.InfoContext(ctx, "user already exists", "email", dto.Email)
			return nil, "", appErrors.NewConflictError("User with this email already exists", appErrors.ErrCodeDuplicateEmail)
		}
		s.logger.ErrorContext(ctx, "failed to create user", "error", err)
		return nil, "", appErrors.NewPersistenceError("Failed to create user", err)
	}

	stored, err := s.repo.GetByID(ctx, row.ID)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to re-read created user", "user_id", row.ID, "error", err)
		return nil, "", appErrors.NewPersistenceError("Failed to create user", err)
	}

	u := FromDataModel(stored)
	token, err := s.tokens.GenerateToken(u.ID, u.Email, s.policy.CreateTTL)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to sign token", "user_id", u.ID, "error", err)
		return nil, "", appErrors.NewInternalError("Failed to issue token", err)
	}

	s.logger.InfoContext(ctx, "user created", "user_id", u.ID)
	if s.publisher != nil {
		if err := s.publisher.Publish(ctx, events.NewUserRegisteredEvent(u.ID, u.Email)); err != nil {
			s.logger.WarnContext(ctx, "failed to publish event", "error", err)
		}
	}
	return u, token, nil
}
