package service

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"github.com/mjolner/svc-commerce-events/internal/domain"
	"github.com/mjolner/svc-commerce-events/internal/infrastructure"
)

type UserServiceSuite struct {
	suite.Suite

	userRepo   *fakeUserRepo
	outboxRepo *fakeOutboxRepo
	cacheRepo  *fakeCacheRepo
	service    UserService
}

func TestUserServiceSuite(t *testing.T) {
	suite.Run(t, new(UserServiceSuite))
}

func (s *UserServiceSuite) SetupTest() {
	s.userRepo = &fakeUserRepo{}
	s.outboxRepo = &fakeOutboxRepo{}
	s.cacheRepo = newFakeCacheRepo()

	s.service = NewUserService(
		s.userRepo,
		s.outboxRepo,
		s.cacheRepo,
		nil,
		infrastructure.NewTestLogger(),
		&infrastructure.NoOpMetrics{},
	)
}

func (s *UserServiceSuite) activeUser() *domain.User {
	now := time.Now().UTC()

	return &domain.User{
		ID:        uuid.New(),
		Name:      "Grace Hopper",
		Email:     "grace@example.com",
		Status:    domain.UserStatusActive,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (s *UserServiceSuite) requireDomainError(err error, statusCode int) *domain.DomainError {
	s.Require().Error(err)

	var domainErr *domain.DomainError
	s.Require().ErrorAs(err, &domainErr)
	s.Require().Equal(statusCode, domainErr.StatusCode)

	return domainErr
}

func (s *UserServiceSuite) TestCreateUserRejectsEmptyName() {
	_, err := s.service.CreateUser(context.Background(), "", "grace@example.com")
	s.requireDomainError(err, http.StatusBadRequest)
}

func (s *UserServiceSuite) TestCreateUserRejectsInvalidEmail() {
	_, err := s.service.CreateUser(context.Background(), "Grace Hopper", "not-an-email")
	s.requireDomainError(err, http.StatusBadRequest)
}

func (s *UserServiceSuite) TestCreateUserRejectsDuplicateEmail() {
	s.userRepo.findByEmail = s.activeUser()

	_, err := s.service.CreateUser(context.Background(), "Grace Hopper", "grace@example.com")

	domainErr := s.requireDomainError(err, http.StatusConflict)
	s.Require().ErrorIs(domainErr, domain.ErrDuplicateEmail)
}

func (s *UserServiceSuite) TestCreateUserPropagatesLookupFailure() {
	s.userRepo.findByEmailErr = errors.New("database down")

	_, err := s.service.CreateUser(context.Background(), "Grace Hopper", "grace@example.com")
	s.Require().Error(err)
}

func (s *UserServiceSuite) TestChangeUserStatusUnknownUser() {
	s.userRepo.findByIDErr = domain.ErrUserNotFound

	_, _, err := s.service.ChangeUserStatus(context.Background(), uuid.New(), domain.UserStatusInactive, "")
	s.requireDomainError(err, http.StatusNotFound)
}

func (s *UserServiceSuite) TestChangeUserStatusSameStatusIsNoOp() {
	user := s.activeUser()
	s.userRepo.findByIDUser = user

	// No transaction, no outbox row, no event. The caller sees the unchanged
	// user and changed=false.
	got, changed, err := s.service.ChangeUserStatus(context.Background(), user.ID, domain.UserStatusActive, "")
	s.Require().NoError(err)
	s.Require().False(changed)
	s.Require().Equal(user.ID, got.ID)
	s.Require().Equal(domain.UserStatusActive, got.Status)
}

func (s *UserServiceSuite) TestFetchUserServesFromCache() {
	user := s.activeUser()

	encoded, err := json.Marshal(user)
	s.Require().NoError(err)
	s.Require().NoError(s.cacheRepo.Set(context.Background(), userCacheKey(user.ID), encoded, 0))

	got, err := s.service.FetchUser(context.Background(), user.ID)
	s.Require().NoError(err)
	s.Require().Equal(user.ID, got.ID)
	s.Require().Equal(user.Email, got.Email)
	s.Require().Zero(s.userRepo.findByIDCalls, "a cache hit must not touch the database")
}

func (s *UserServiceSuite) TestFetchUserFallsBackToRepositoryAndCaches() {
	user := s.activeUser()
	s.userRepo.findByIDUser = user

	got, err := s.service.FetchUser(context.Background(), user.ID)
	s.Require().NoError(err)
	s.Require().Equal(user.ID, got.ID)
	s.Require().Equal(1, s.userRepo.findByIDCalls)

	cached, err := s.cacheRepo.Get(context.Background(), userCacheKey(user.ID))
	s.Require().NoError(err)
	s.Require().NotNil(cached, "a miss must populate the cache")
}

func (s *UserServiceSuite) TestFetchUserDegradesOnCacheFailure() {
	user := s.activeUser()
	s.userRepo.findByIDUser = user
	s.cacheRepo.getErr = errors.New("cache down")
	s.cacheRepo.setErr = errors.New("cache down")

	got, err := s.service.FetchUser(context.Background(), user.ID)
	s.Require().NoError(err, "cache trouble must never fail a read")
	s.Require().Equal(user.ID, got.ID)
}

func (s *UserServiceSuite) TestFetchUserUnknownUser() {
	s.userRepo.findByIDErr = domain.ErrUserNotFound

	_, err := s.service.FetchUser(context.Background(), uuid.New())
	s.requireDomainError(err, http.StatusNotFound)
}
