package permit

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	appErrors "github.com/frahmantamala/permit-service/internal"
	"github.com/frahmantamala/permit-service/internal/core/common/validation"
	permitDatamodel "github.com/frahmantamala/permit-service/internal/core/datamodel/permit"
	"github.com/frahmantamala/permit-service/internal/core/events"
)

var (
	ErrPermitNotFound        = errors.New("permit not found")
	ErrDuplicatePermitNumber = errors.New("permit number already exists")
)

type RepositoryAPI interface {
	Create(ctx context.Context, permit *permitDatamodel.Permit) error
	GetAll(ctx context.Context) ([]*permitDatamodel.Permit, error)
	GetByID(ctx context.Context, id int64) (*permitDatamodel.Permit, error)
	UpdateByPermitNumber(ctx context.Context, permitNumber string, updates map[string]any) (int64, error)
}

// EventPublisher receives domain events after a successful write.
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

type Service struct {
	repo      RepositoryAPI
	publisher EventPublisher
	logger    *slog.Logger
}

// NewService wires the permit service. publisher may be nil.
func NewService(repo RepositoryAPI, publisher EventPublisher, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		publisher: publisher,
		logger:    logger,
	}
}

// Create validates and stores a permit, returning its id.
func (s *Service) Create(ctx context.Context, payload Payload) (int64, error) {
	v := validation.NewValidator()
	v.Field(FieldPermitNumber, payload[FieldPermitNumber]).Required()
	v.Field(FieldSubmittedAt, payload[FieldSubmittedAt]).Timestamp()
	if appErr := v.Validate(); appErr != nil {
		s.logger.WarnContext(ctx, "permit validation failed", "error", appErr.GetDetailedMessage())
		return 0, appErr
	}

	record := Normalize(payload)
	if err := s.repo.Create(ctx, record); err != nil {
		s.logger.ErrorContext(ctx, "failed to create permit", "permit_number", record.PermitNumber, "error", err)
		if errors.Is(err, ErrDuplicatePermitNumber) {
			return 0, appErrors.NewConflictError(
				fmt.Sprintf("Permit %s already exists", record.PermitNumber),
				appErrors.ErrCodeDuplicatePermitNumber).WithCause(err)
		}
		return 0, appErrors.NewPersistenceError("Failed to create permit", err)
	}

	s.logger.InfoContext(ctx, "permit created", "permit_id", record.ID, "permit_number", record.PermitNumber)
	s.publish(ctx, events.NewPermitCreatedEvent(record.ID, record.PermitNumber))
	return record.ID, nil
}

// ListAll returns every permit in id order.
func (s *Service) ListAll(ctx context.Context) ([]*Permit, error) {
	records, err := s.repo.GetAll(ctx)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to list permits", "error", err)
		return nil, appErrors.NewPersistenceError("Failed to fetch permits", err)
	}

	permits := make([]*Permit, 0, len(records))
	for _, record := range records {
		permits = append(permits, FromDataModel(record, s.logger))
	}
	return permits, nil
}

func (s *Service) GetByID(ctx context.Context, id int64) (*Permit, error) {
	record, err := s.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrPermitNotFound) {
			return nil, appErrors.NewNotFoundError("Permit not found", appErrors.ErrCodePermitNotFound)
		}
		s.logger.ErrorContext(ctx, "failed to fetch permit", "permit_id", id, "error", err)
		return nil, appErrors.NewPersistenceError("Failed to fetch permit", err)
	}
	return FromDataModel(record, s.logger), nil
}

// UpdateByPermitNumber records closeout data. Fields outside CloseoutFields
// and fields without a value are ignored.
func (s *Service) UpdateByPermitNumber(ctx context.Context, permitNumber string, payload Payload) error {
	updates := CloseoutUpdates(payload)
	if len(updates) == 0 {
		return appErrors.NewValidationError("No valid fields to update", appErrors.ErrCodeNoUpdatableFields)
	}

	affected, err := s.repo.UpdateByPermitNumber(ctx, permitNumber, updates)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to update permit", "permit_number", permitNumber, "error", err)
		return appErrors.NewPersistenceError("Failed to update permit", err)
	}
	if affected == 0 {
		return appErrors.NewNotFoundError("Permit not found", appErrors.ErrCodePermitNotFound)
	}

	fields := make([]string, 0, len(updates))
	for field := range updates {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	s.logger.InfoContext(ctx, "permit updated", "permit_number", permitNumber, "fields", fields)
	s.publish(ctx, events.NewPermitClosedEvent(permitNumber, fields))
	return nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.WarnContext(ctx, "failed to publish event", "event_type", event.EventType(), "error", err)
	}
}
