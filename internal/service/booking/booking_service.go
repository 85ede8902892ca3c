package booking

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/avoronov/fitbook/internal/domain"
	"github.com/avoronov/fitbook/internal/kafka"
	"github.com/avoronov/fitbook/internal/repository"
)

type BookingUseCase interface {
	Book(ctx context.Context, instanceID int64, memberID string) (*domain.Booking, error)
	Cancel(ctx context.Context, instanceID int64, memberID string) (*domain.Booking, error)
	CheckIn(ctx context.Context, instanceID int64, memberID, bookingID string) (*domain.Booking, error)
}

type Cache interface {
	InvalidateWeek(ctx context.Context, weekStart time.Time) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

const (
	persistenceRetries = 3
	retryBaseDelay     = 100 * time.Millisecond
)

// BookingService is the capacity-safe reservation engine. Every roster
// mutation it triggers is a single guarded transaction in the store, so the
// service itself stays stateless between calls.
type BookingService struct {
	instances    repository.InstanceRepository
	bookings     repository.BookingRepository
	cache        Cache
	producer     Producer
	eventsTopic  string
	cancelWindow time.Duration
	now          func() time.Time
}

type BookingServiceOption func(*BookingService)

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func NewBookingService(
	instances repository.InstanceRepository,
	bookings repository.BookingRepository,
	cache Cache,
	producer Producer,
	eventsTopic string,
	cancelWindow time.Duration,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		instances:    instances,
		bookings:     bookings,
		cache:        cache,
		producer:     producer,
		eventsTopic:  eventsTopic,
		cancelWindow: cancelWindow,
		now:          time.Now,
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) Book(ctx context.Context, instanceID int64, memberID string) (*domain.Booking, error) {
	if memberID == "" {
		return nil, errors.New("member id is required")
	}

	inst, err := s.instances.GetByID(ctx, instanceID)
	if err != nil {
		return nil, err
	}
	if !inst.StartDatetime.After(s.now()) {
		return nil, domain.ErrInstanceInPast
	}

	var booking *domain.Booking
	err = s.withRetry(ctx, func() error {
		var bookErr error
		booking, bookErr = s.bookings.BookMember(ctx, instanceID, memberID)
		return bookErr
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.EventClassBooked, inst, booking)
	s.invalidate(ctx, inst.WeekStart)
	return booking, nil
}

func (s *BookingService) Cancel(ctx context.Context, instanceID int64, memberID string) (*domain.Booking, error) {
	if memberID == "" {
		return nil, errors.New("member id is required")
	}

	inst, err := s.instances.GetByID(ctx, instanceID)
	if err != nil {
		if errors.Is(err, domain.ErrInstanceNotFound) {
			return nil, domain.ErrNoActiveBooking
		}
		return nil, err
	}
	// Cutoff is enforced here, not at the API layer, so no caller can slip
	// past it.
	if !s.now().Before(inst.StartDatetime.Add(-s.cancelWindow)) {
		return nil, domain.ErrCancellationWindowPassed
	}

	var booking *domain.Booking
	err = s.withRetry(ctx, func() error {
		var cancelErr error
		booking, cancelErr = s.bookings.CancelMember(ctx, instanceID, memberID)
		return cancelErr
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.EventClassCancelled, inst, booking)
	s.invalidate(ctx, inst.WeekStart)
	return booking, nil
}

func (s *BookingService) CheckIn(ctx context.Context, instanceID int64, memberID, bookingID string) (*domain.Booking, error) {
	if memberID == "" {
		return nil, errors.New("member id is required")
	}
	if bookingID == "" {
		return nil, errors.New("booking id is required")
	}

	inst, err := s.instances.GetByID(ctx, instanceID)
	if err != nil {
		if errors.Is(err, domain.ErrInstanceNotFound) {
			return nil, domain.ErrNoActiveBooking
		}
		return nil, err
	}
	now := s.now()
	if now.Before(inst.StartDatetime) || now.After(inst.EndDatetime()) {
		return nil, domain.ErrCheckInWindowClosed
	}

	var booking *domain.Booking
	err = s.withRetry(ctx, func() error {
		var markErr error
		booking, markErr = s.bookings.MarkAttended(ctx, bookingID, instanceID, memberID)
		return markErr
	})
	if err != nil {
		return nil, err
	}

	s.publish(ctx, kafka.EventClassCheckedIn, inst, booking)
	return booking, nil
}

// withRetry re-runs fn on transient persistence failures a small fixed number
// of times. Business outcomes pass through untouched.
func (s *BookingService) withRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < persistenceRetries; attempt++ {
		err := fn()
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrPersistence) {
			return err
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Duration(attempt+1) * retryBaseDelay):
		}
	}
	return lastErr
}

func (s *BookingService) publish(ctx context.Context, eventType string, inst *domain.ClassInstance, booking *domain.Booking) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event := kafka.ClassEvent{
		Type:          eventType,
		InstanceID:    inst.ID,
		MemberID:      booking.MemberID,
		BookingID:     booking.ID,
		Status:        string(booking.Status),
		StartDatetime: inst.StartDatetime,
	}
	if err := s.producer.Publish(ctx, s.eventsTopic, booking.ID, event); err != nil {
		log.Printf("booking: publish %s event for booking %s: %v", eventType, booking.ID, err)
	}
}

func (s *BookingService) invalidate(ctx context.Context, weekStart time.Time) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateWeek(ctx, weekStart); err != nil {
		log.Printf("booking: invalidate schedule cache: %v", err)
	}
}

var _ BookingUseCase = (*BookingService)(nil)
