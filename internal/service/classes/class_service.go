package classes

import (
	"context"
	"time"

	"github.com/avoronov/fitbook/internal/domain"
	"github.com/avoronov/fitbook/internal/repository"
)

type ClassUseCase interface {
	ListWeek(ctx context.Context, weekStart time.Time) ([]domain.ClassInstance, error)
	ListUpcoming(ctx context.Context, days int) ([]domain.ClassInstance, error)
	GetByID(ctx context.Context, id int64) (*domain.ClassInstance, error)
	MemberBookings(ctx context.Context, memberID string) ([]domain.Booking, error)
}

type Cache interface {
	GetWeekSchedule(ctx context.Context, weekStart time.Time) ([]domain.ClassInstance, error)
	SetWeekSchedule(ctx context.Context, weekStart time.Time, instances []domain.ClassInstance) error
}

// ClassService is the read side consumed by the UI layer: weekly schedule,
// single occurrences, a member's booking history.
type ClassService struct {
	instances repository.InstanceRepository
	bookings  repository.BookingRepository
	cache     Cache
	loc       *time.Location
	now       func() time.Time
}

type ClassServiceOption func(*ClassService)

func WithClock(now func() time.Time) ClassServiceOption {
	return func(s *ClassService) {
		s.now = now
	}
}

func NewClassService(instances repository.InstanceRepository, bookings repository.BookingRepository, cache Cache, loc *time.Location, opts ...ClassServiceOption) *ClassService {
	service := &ClassService{
		instances: instances,
		bookings:  bookings,
		cache:     cache,
		loc:       loc,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *ClassService) ListWeek(ctx context.Context, weekStart time.Time) ([]domain.ClassInstance, error) {
	week := domain.WeekStartOf(weekStart, s.loc)

	if s.cache != nil {
		if cached, err := s.cache.GetWeekSchedule(ctx, week); err == nil && cached != nil {
			return cached, nil
		}
	}

	instances, err := s.instances.ListBetween(ctx, week, week.AddDate(0, 0, 7))
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		_ = s.cache.SetWeekSchedule(ctx, week, instances)
	}
	return instances, nil
}

func (s *ClassService) ListUpcoming(ctx context.Context, days int) ([]domain.ClassInstance, error) {
	now := s.now()
	return s.instances.ListBetween(ctx, now, now.AddDate(0, 0, days))
}

func (s *ClassService) GetByID(ctx context.Context, id int64) (*domain.ClassInstance, error) {
	return s.instances.GetByID(ctx, id)
}

func (s *ClassService) MemberBookings(ctx context.Context, memberID string) ([]domain.Booking, error) {
	return s.bookings.ListByMember(ctx, memberID)
}

var _ ClassUseCase = (*ClassService)(nil)
