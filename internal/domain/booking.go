package domain

import "time"

type BookingStatus string

const (
	BookingStatusConfirmed BookingStatus = "CONFIRMED"
	BookingStatusCancelled BookingStatus = "CANCELLED"
	BookingStatusAttended  BookingStatus = "ATTENDED"
)

// Booking records one member's reservation on one instance. The only legal
// transitions are CONFIRMED -> CANCELLED and CONFIRMED -> ATTENDED; both end
// states are terminal.
type Booking struct {
	ID         string
	InstanceID int64
	MemberID   string
	Status     BookingStatus
	BookedAt   time.Time
	UpdatedAt  time.Time
}

func (b Booking) Active() bool {
	return b.Status == BookingStatusConfirmed
}
