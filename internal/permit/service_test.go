package permit_test

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	appErrors "github.com/frahmantamala/permit-service/internal"
	permitDatamodel "github.com/frahmantamala/permit-service/internal/core/datamodel/permit"
	"github.com/frahmantamala/permit-service/internal/core/events"
	"github.com/frahmantamala/permit-service/internal/permit"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

// MockRepository keeps permits in memory and mimics the unique permit_number.
type MockRepository struct {
	permits    []*permitDatamodel.Permit
	shouldFail bool
	failError  error
}

func NewMockRepository() *MockRepository {
	return &MockRepository{}
}

func (m *MockRepository) Create(_ context.Context, p *permitDatamodel.Permit) error {
	if m.shouldFail {
		return m.failError
	}
	for _, existing := range m.permits {
		if existing.PermitNumber == p.PermitNumber {
			return permit.ErrDuplicatePermitNumber
		}
	}
	p.ID = int64(len(m.permits) + 1)
	stored := *p
	m.permits = append(m.permits, &stored)
	return nil
}

func (m *MockRepository) GetAll(_ context.Context) ([]*permitDatamodel.Permit, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.permits, nil
}

func (m *MockRepository) GetByID(_ context.Context, id int64) (*permitDatamodel.Permit, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	for _, p := range m.permits {
		if p.ID == id {
			return p, nil
		}
	}
	return nil, permit.ErrPermitNotFound
}

func (m *MockRepository) UpdateByPermitNumber(_ context.Context, permitNumber string, updates map[string]any) (int64, error) {
	if m.shouldFail {
		return 0, m.failError
	}
	for _, p := range m.permits {
		if p.PermitNumber != permitNumber {
			continue
		}
		for column, value := range updates {
			text := value.(string)
			switch column {
			case permit.FieldClearanceDate:
				p.ClearanceDate = &text
			case permit.FieldClearanceTime:
				p.ClearanceTime = &text
			case permit.FieldClearanceSignature:
				p.ClearanceSignature = &text
			case permit.FieldConnections:
				p.Connections = &text
			case permit.FieldCancellationConsentPerson:
				p.CancellationConsentPerson = &text
			}
		}
		return 1, nil
	}
	return 0, nil
}

func (m *MockRepository) SetShouldFail(shouldFail bool, err error) {
	m.shouldFail = shouldFail
	m.failError = err
}

type RecordingPublisher struct {
	mu     sync.Mutex
	events []events.Event
}

func (p *RecordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return nil
}

func (p *RecordingPublisher) Types() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	types := make([]string, 0, len(p.events))
	for _, e := range p.events {
		types = append(types, e.EventType())
	}
	return types
}

var _ = Describe("Permit Service", func() {
	var (
		ctx       context.Context
		mockRepo  *MockRepository
		publisher *RecordingPublisher
		service   *permit.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		mockRepo = NewMockRepository()
		publisher = &RecordingPublisher{}
		service = permit.NewService(mockRepo, publisher, quietLogger())
	})

	expectAppError := func(err error, status int, code appErrors.ErrorCode) {
		appErr, ok := appErrors.AsAppError(err)
		Expect(ok).To(BeTrue(), "expected AppError, got %v", err)
		Expect(appErr.StatusCode).To(Equal(status))
		Expect(appErr.Code).To(Equal(code))
	}

	Describe("Create", func() {
		It("should store the permit and return its id", func() {
			id, err := service.Create(ctx, mustPayload(`{"permit_number":"P-100","earth_points":[{"loc":"A"}]}`))
			Expect(err).NotTo(HaveOccurred())
			Expect(id).To(Equal(int64(1)))
			Expect(mockRepo.permits).To(HaveLen(1))
			Expect(*mockRepo.permits[0].EarthPoints).To(MatchJSON(`[{"loc":"A"}]`))
			Expect(publisher.Types()).To(Equal([]string{events.EventTypePermitCreated}))
		})

		It("should reject a missing permit number without writing", func() {
			_, err := service.Create(ctx, mustPayload(`{"issued_to":"crew A"}`))
			expectAppError(err, 400, appErrors.ErrCodeValidationFailed)
			Expect(mockRepo.permits).To(BeEmpty())
			Expect(publisher.Types()).To(BeEmpty())
		})

		It("should reject a blank permit number", func() {
			_, err := service.Create(ctx, mustPayload(`{"permit_number":"   "}`))
			expectAppError(err, 400, appErrors.ErrCodeValidationFailed)
			Expect(mockRepo.permits).To(BeEmpty())
		})

		It("should reject an unparseable submitted_at", func() {
			_, err := service.Create(ctx, mustPayload(`{"permit_number":"P-1","submitted_at":"yesterday"}`))
			expectAppError(err, 400, appErrors.ErrCodeValidationFailed)

			appErr, _ := appErrors.AsAppError(err)
			details := appErr.Details.(appErrors.ValidationErrors)
			Expect(details.Errors[0].Field).To(Equal("submitted_at"))
			Expect(details.Errors[0].Code).To(Equal(string(appErrors.ErrCodeInvalidTimestamp)))
		})

		It("should stamp the current time when submitted_at is an empty string", func() {
			before := time.Now().UTC().Add(-time.Second)
			id, err := service.Create(ctx, mustPayload(`{"permit_number":"P-101","submitted_at":""}`))
			Expect(err).NotTo(HaveOccurred())

			stored, err := service.GetByID(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(stored.SubmittedAt).To(BeTemporally(">=", before))
		})

		It("should report a duplicate permit number as a conflict", func() {
			_, err := service.Create(ctx, mustPayload(`{"permit_number":"P-1"}`))
			Expect(err).NotTo(HaveOccurred())

			_, err = service.Create(ctx, mustPayload(`{"permit_number":"P-1"}`))
			expectAppError(err, 409, appErrors.ErrCodeDuplicatePermitNumber)
			Expect(mockRepo.permits).To(HaveLen(1))
		})

		It("should forward the storage diagnostic on failure", func() {
			mockRepo.SetShouldFail(true, errors.New("connection refused"))

			_, err := service.Create(ctx, mustPayload(`{"permit_number":"P-1"}`))
			expectAppError(err, 500, appErrors.ErrCodePersistenceFailed)

			appErr, _ := appErrors.AsAppError(err)
			Expect(appErr.Details).To(Equal("connection refused"))
		})
	})

	Describe("ListAll", func() {
		It("should return an empty list when there are no permits", func() {
			permits, err := service.ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(permits).NotTo(BeNil())
			Expect(permits).To(BeEmpty())
		})

		It("should decode every structured field", func() {
			_, err := service.Create(ctx, mustPayload(`{"permit_number":"P-1","connections":["L1"],"mv_lv_equipment":[{"id":7}]}`))
			Expect(err).NotTo(HaveOccurred())

			permits, err := service.ListAll(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(permits).To(HaveLen(1))
			Expect(permits[0].Connections).To(Equal([]any{"L1"}))
			Expect(permits[0].MVLVEquipment).To(Equal([]any{map[string]any{"id": json.Number("7")}}))
			Expect(permits[0].SafeWorkLimits).To(Equal([]any{}))
		})

		It("should wrap storage faults", func() {
			mockRepo.SetShouldFail(true, errors.New("boom"))
			_, err := service.ListAll(ctx)
			expectAppError(err, 500, appErrors.ErrCodePersistenceFailed)
		})
	})

	Describe("GetByID", func() {
		It("should return NotFound for an unknown id", func() {
			_, err := service.GetByID(ctx, 99)
			expectAppError(err, 404, appErrors.ErrCodePermitNotFound)
		})

		It("should round-trip a structured field", func() {
			id, err := service.Create(ctx, mustPayload(`{"permit_number":"P-100","earth_points":[{"loc":"A"}]}`))
			Expect(err).NotTo(HaveOccurred())

			p, err := service.GetByID(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(p.EarthPoints).To(Equal([]any{map[string]any{"loc": "A"}}))
		})
	})

	Describe("UpdateByPermitNumber", func() {
		BeforeEach(func() {
			_, err := service.Create(ctx, mustPayload(`{"permit_number":"P-1","issued_to":"crew A"}`))
			Expect(err).NotTo(HaveOccurred())
		})

		It("should apply closeout fields and publish a closed event", func() {
			err := service.UpdateByPermitNumber(ctx, "P-1", mustPayload(`{"clearance_signature":"JO","connections":["L1"]}`))
			Expect(err).NotTo(HaveOccurred())

			stored := mockRepo.permits[0]
			Expect(*stored.ClearanceSignature).To(Equal("JO"))
			Expect(*stored.Connections).To(MatchJSON(`["L1"]`))
			Expect(*stored.IssuedTo).To(Equal("crew A"))
			Expect(publisher.Types()).To(ContainElement(events.EventTypePermitClosed))
		})

		It("should reject an empty update set and leave the row unchanged", func() {
			err := service.UpdateByPermitNumber(ctx, "P-1", mustPayload(`{"clearance_date":null,"issued_to":"crew B"}`))
			expectAppError(err, 400, appErrors.ErrCodeNoUpdatableFields)
			Expect(*mockRepo.permits[0].IssuedTo).To(Equal("crew A"))
			Expect(mockRepo.permits[0].ClearanceDate).To(BeNil())
		})

		It("should return NotFound for an unknown permit number", func() {
			err := service.UpdateByPermitNumber(ctx, "P-404", mustPayload(`{"clearance_date":"2024-01-01"}`))
			expectAppError(err, 404, appErrors.ErrCodePermitNotFound)
		})
	})

	It("should work without a publisher", func() {
		service = permit.NewService(mockRepo, nil, quietLogger())
		_, err := service.Create(ctx, mustPayload(`{"permit_number":"P-9"}`))
		Expect(err).NotTo(HaveOccurred())
	})
})
