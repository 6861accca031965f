package user_test

import (
	"context"
	"errors"
	"time"

	appErrors "github.com/frahmantamala/permit-service/internal"
	"github.com/frahmantamala/permit-service/internal/auth"
	userDatamodel "github.com/frahmantamala/permit-service/internal/core/datamodel/user"
	"github.com/frahmantamala/permit-service/internal/core/events"
	"github.com/frahmantamala/permit-service/internal/user"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

type MockRepository struct {
	users      []*userDatamodel.User
	shouldFail bool
	failError  error
}

func (m *MockRepository) GetAll(_ context.Context) ([]*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	return m.users, nil
}

func (m *MockRepository) GetByCredentials(_ context.Context, email, idNumber string) ([]*userDatamodel.User, error) {
	if m.shouldFail {
		return nil, m.failError
	}
	var matched []*userDatamodel.User
	for _, u := range m.users {
		if u.Email == email && u.IDNumber == idNumber {
			matched = append(matched, u)
		}
	}
	return matched, nil
}

func (m *MockRepository) GetByID(_ context.Context, id int64) (*userDatamodel.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, user.ErrNotFound
}

func (m *MockRepository) Create(_ context.Context, u *userDatamodel.User) error {
	if m.shouldFail {
		return m.failError
	}
	for _, existing := range m.users {
		if existing.Email == u.Email {
			return user.ErrEmailTaken
		}
	}
	u.ID = int64(len(m.users) + 1)
	stored := *u
	m.users = append(m.users, &stored)
	return nil
}

type RecordingPublisher struct {
	events []events.Event
}

func (p *RecordingPublisher) Publish(_ context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return nil
}

var _ = Describe("User Service", func() {
	var (
		ctx       context.Context
		repo      *MockRepository
		tokens    *auth.JWTTokenGenerator
		publisher *RecordingPublisher
		service   *user.Service
		policy    user.TokenPolicy
	)

	BeforeEach(func() {
		ctx = context.Background()
		repo = &MockRepository{}
		tokens = auth.NewJWTTokenGenerator(testSecret, "permit-service")
		publisher = &RecordingPublisher{}
		policy = user.TokenPolicy{ReadTTL: 120 * 24 * time.Hour, CreateTTL: time.Hour}
		service = user.NewService(repo, tokens, policy, publisher, quietLogger())
	})

	expectAppError := func(err error, status int, code appErrors.ErrorCode) {
		appErr, ok := appErrors.AsAppError(err)
		Expect(ok).To(BeTrue(), "expected AppError, got %v", err)
		Expect(appErr.StatusCode).To(Equal(status))
		Expect(appErr.Code).To(Equal(code))
	}

	lifetime := func(token string) time.Duration {
		claims, err := tokens.ValidateToken(token)
		Expect(err).NotTo(HaveOccurred())
		return claims.ExpiresAt.Time.Sub(claims.IssuedAt.Time)
	}

	Describe("Create", func() {
		It("should store the user and return a one hour token", func() {
			u, token, err := service.Create(ctx, user.CreateUserDTO{Name: "A", Email: "a@x.com", IDNumber: "1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(u.ID).To(Equal(int64(1)))
			Expect(u.Email).To(Equal("a@x.com"))
			Expect(lifetime(token)).To(Equal(time.Hour))

			claims, err := tokens.ValidateToken(token)
			Expect(err).NotTo(HaveOccurred())
			Expect(claims.Subject).To(Equal("1"))
			Expect(claims.Email).To(Equal("a@x.com"))

			Expect(publisher.events).To(HaveLen(1))
			Expect(publisher.events[0].EventType()).To(Equal(events.EventTypeUserRegistered))
		})

		It("should store the trimmed fields on the row", func() {
			_, _, err := service.Create(ctx, user.CreateUserDTO{Name: " A ", Email: " a@x.com", IDNumber: "1 "})
			Expect(err).NotTo(HaveOccurred())

			Expect(repo.users).To(HaveLen(1))
			Expect(*repo.users[0]).To(Equal(userDatamodel.User{ID: 1, Name: "A", Email: "a@x.com", IDNumber: "1"}))
		})

		It("should reject missing fields", func() {
			_, _, err := service.Create(ctx, user.CreateUserDTO{Name: "A", Email: "a@x.com"})
			expectAppError(err, 400, appErrors.ErrCodeValidationFailed)
			Expect(repo.users).To(BeEmpty())
		})

		It("should return a conflict for a taken email without a second row", func() {
			_, _, err := service.Create(ctx, user.CreateUserDTO{Name: "A", Email: "a@x.com", IDNumber: "1"})
			Expect(err).NotTo(HaveOccurred())

			_, _, err = service.Create(ctx, user.CreateUserDTO{Name: "B", Email: "a@x.com", IDNumber: "2"})
			expectAppError(err, 409, appErrors.ErrCodeDuplicateEmail)
			Expect(repo.users).To(HaveLen(1))
			Expect(publisher.events).To(HaveLen(1))
		})

		It("should wrap storage faults", func() {
			repo.shouldFail = true
			repo.failError = errors.New("disk full")

			_, _, err := service.Create(ctx, user.CreateUserDTO{Name: "A", Email: "a@x.com", IDNumber: "1"})
			expectAppError(err, 500, appErrors.ErrCodePersistenceFailed)
		})
	})

	Describe("FindByCredentials", func() {
		BeforeEach(func() {
			for _, dto := range []user.CreateUserDTO{
				{Name: "A", Email: "a@x.com", IDNumber: "1"},
				{Name: "B", Email: "b@x.com", IDNumber: "2"},
			} {
				_, _, err := service.Create(ctx, dto)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("should filter when both email and id number are given", func() {
			users, err := service.FindByCredentials(ctx, user.LookupQuery{Email: "b@x.com", IDNumber: "2"})
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(1))
			Expect(users[0].Name).To(Equal("B"))
		})

		It("should return everyone when a filter value is missing", func() {
			users, err := service.FindByCredentials(ctx, user.LookupQuery{Email: "b@x.com"})
			Expect(err).NotTo(HaveOccurred())
			Expect(users).To(HaveLen(2))
		})

		It("should return an empty list when nothing matches", func() {
			users, err := service.FindByCredentials(ctx, user.LookupQuery{Email: "b@x.com", IDNumber: "9"})
			Expect(err).NotTo(HaveOccurred())
			Expect(users).NotTo(BeNil())
			Expect(users).To(BeEmpty())
		})

		It("should attach a 120 day token carrying the user's id and email", func() {
			users, err := service.FindByCredentials(ctx, user.LookupQuery{})
			Expect(err).NotTo(HaveOccurred())

			for _, u := range users {
				claims, err := tokens.ValidateToken(u.Token)
				Expect(err).NotTo(HaveOccurred())

				id, err := claims.UserID()
				Expect(err).NotTo(HaveOccurred())
				Expect(id).To(Equal(u.ID))
				Expect(claims.Email).To(Equal(u.Email))
				Expect(lifetime(u.Token)).To(Equal(120 * 24 * time.Hour))
			}
		})

		It("should wrap storage faults", func() {
			repo.shouldFail = true
			repo.failError = errors.New("connection reset")

			_, err := service.FindByCredentials(ctx, user.LookupQuery{})
			expectAppError(err, 500, appErrors.ErrCodePersistenceFailed)
		})
	})
})
