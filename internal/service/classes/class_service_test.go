package classes

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/avoronov/fitbook/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockInstanceRepository struct {
	mock.Mock
}

func (m *MockInstanceRepository) CreateIfAbsent(ctx context.Context, inst *domain.ClassInstance) (bool, error) {
	args := m.Called(ctx, inst)
	return args.Bool(0), args.Error(1)
}

func (m *MockInstanceRepository) GetByID(ctx context.Context, id int64) (*domain.ClassInstance, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.ClassInstance), args.Error(1)
}

func (m *MockInstanceRepository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.ClassInstance, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).([]domain.ClassInstance), args.Error(1)
}

func (m *MockInstanceRepository) ListWeekStartsAfter(ctx context.Context, after time.Time) ([]time.Time, error) {
	args := m.Called(ctx, after)
	return args.Get(0).([]time.Time), args.Error(1)
}

func (m *MockInstanceRepository) DeleteStartedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockBookingRepository struct {
	mock.Mock
}

func (m *MockBookingRepository) BookMember(ctx context.Context, instanceID int64, memberID string) (*domain.Booking, error) {
	args := m.Called(ctx, instanceID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) CancelMember(ctx context.Context, instanceID int64, memberID string) (*domain.Booking, error) {
	args := m.Called(ctx, instanceID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) MarkAttended(ctx context.Context, bookingID string, instanceID int64, memberID string) (*domain.Booking, error) {
	args := m.Called(ctx, bookingID, instanceID, memberID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Booking), args.Error(1)
}

func (m *MockBookingRepository) ListByMember(ctx context.Context, memberID string) ([]domain.Booking, error) {
	args := m.Called(ctx, memberID)
	return args.Get(0).([]domain.Booking), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetWeekSchedule(ctx context.Context, weekStart time.Time) ([]domain.ClassInstance, error) {
	args := m.Called(ctx, weekStart)
	return args.Get(0).([]domain.ClassInstance), args.Error(1)
}

func (m *MockCache) SetWeekSchedule(ctx context.Context, weekStart time.Time, instances []domain.ClassInstance) error {
	args := m.Called(ctx, weekStart, instances)
	return args.Error(0)
}

var weekStart = time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)

func sampleInstances() []domain.ClassInstance {
	return []domain.ClassInstance{
		{
			ID:            1,
			TemplateID:    "mon-18",
			WeekStart:     weekStart,
			StartDatetime: weekStart.Add(18 * time.Hour),
			Capacity:      20,
			SpotsLeft:     17,
		},
	}
}

func TestClassService_ListWeek_CacheMiss(t *testing.T) {
	mockRepo := &MockInstanceRepository{}
	mockCache := &MockCache{}
	service := NewClassService(mockRepo, &MockBookingRepository{}, mockCache, time.UTC)

	ctx := context.Background()
	instances := sampleInstances()

	mockCache.On("GetWeekSchedule", ctx, weekStart).Return(([]domain.ClassInstance)(nil), nil).Once()
	mockRepo.On("ListBetween", ctx, weekStart, weekStart.AddDate(0, 0, 7)).Return(instances, nil).Once()
	mockCache.On("SetWeekSchedule", ctx, weekStart, instances).Return(nil).Once()

	result, err := service.ListWeek(ctx, weekStart)

	require.NoError(t, err)
	assert.Equal(t, instances, result)
	mockCache.AssertExpectations(t)
	mockRepo.AssertExpectations(t)
}

func TestClassService_ListWeek_CacheHit(t *testing.T) {
	mockRepo := &MockInstanceRepository{}
	mockCache := &MockCache{}
	service := NewClassService(mockRepo, &MockBookingRepository{}, mockCache, time.UTC)

	ctx := context.Background()
	instances := sampleInstances()

	mockCache.On("GetWeekSchedule", ctx, weekStart).Return(instances, nil).Once()

	result, err := service.ListWeek(ctx, weekStart)

	require.NoError(t, err)
	assert.Equal(t, instances, result)
	mockRepo.AssertNotCalled(t, "ListBetween")
}

func TestClassService_ListWeek_NormalizesToWeekStart(t *testing.T) {
	mockRepo := &MockInstanceRepository{}
	service := NewClassService(mockRepo, &MockBookingRepository{}, nil, time.UTC)

	ctx := context.Background()
	midweek := weekStart.AddDate(0, 0, 3).Add(15 * time.Hour)

	mockRepo.On("ListBetween", ctx, weekStart, weekStart.AddDate(0, 0, 7)).Return(sampleInstances(), nil).Once()

	_, err := service.ListWeek(ctx, midweek)
	require.NoError(t, err)
	mockRepo.AssertExpectations(t)
}

func TestClassService_ListWeek_RepositoryError(t *testing.T) {
	mockRepo := &MockInstanceRepository{}
	mockCache := &MockCache{}
	service := NewClassService(mockRepo, &MockBookingRepository{}, mockCache, time.UTC)

	ctx := context.Background()
	expectedErr := errors.New("database error")

	mockCache.On("GetWeekSchedule", ctx, weekStart).Return(([]domain.ClassInstance)(nil), nil).Once()
	mockRepo.On("ListBetween", ctx, weekStart, weekStart.AddDate(0, 0, 7)).Return(([]domain.ClassInstance)(nil), expectedErr).Once()

	result, err := service.ListWeek(ctx, weekStart)

	assert.Error(t, err)
	assert.Nil(t, result)
	mockCache.AssertNotCalled(t, "SetWeekSchedule")
}

func TestClassService_MemberBookings(t *testing.T) {
	mockBookings := &MockBookingRepository{}
	service := NewClassService(&MockInstanceRepository{}, mockBookings, nil, time.UTC)

	ctx := context.Background()
	bookings := []domain.Booking{{ID: "b-1", InstanceID: 1, MemberID: "m1", Status: domain.BookingStatusConfirmed}}

	mockBookings.On("ListByMember", ctx, "m1").Return(bookings, nil).Once()

	result, err := service.MemberBookings(ctx, "m1")

	require.NoError(t, err)
	assert.Equal(t, bookings, result)
}
