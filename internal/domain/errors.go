package domain

import "errors"

// Expected business outcomes. Callers match these with errors.Is and treat
// them as normal control flow, not failures.
var (
	ErrTemplateInvalid          = errors.New("template invalid")
	ErrInstanceNotFound         = errors.New("class instance not found")
	ErrInstanceInPast           = errors.New("class already started")
	ErrAlreadyBooked            = errors.New("member already booked")
	ErrClassFull                = errors.New("class is full")
	ErrNoActiveBooking          = errors.New("no active booking")
	ErrCancellationWindowPassed = errors.New("cancellation window passed")
	ErrCheckInWindowClosed      = errors.New("check-in window closed")

	// ErrGenerationConflict marks the idempotency race when two generators
	// try to create the same (scheduleKey, weekStart) instance. Safe to retry.
	ErrGenerationConflict = errors.New("instance generation conflict")

	// ErrPersistence wraps transient store failures. Retried with bounded
	// backoff before being surfaced to the caller.
	ErrPersistence = errors.New("persistence failure")
)
