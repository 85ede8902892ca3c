package domain

import "time"

// ClassInstance is one dated occurrence generated from a template. The roster
// and SpotsLeft always move together in a single store transaction, so
// SpotsLeft + len(BookedMemberIDs) == Capacity holds at every point in time.
type ClassInstance struct {
	ID              int64
	TemplateID      string
	ScheduleKey     string
	WeekStart       time.Time
	StartDatetime   time.Time
	DurationMinutes int
	Capacity        int
	SpotsLeft       int
	BookedMemberIDs []string
	Version         int64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (i ClassInstance) HasMember(memberID string) bool {
	for _, id := range i.BookedMemberIDs {
		if id == memberID {
			return true
		}
	}
	return false
}

func (i ClassInstance) EndDatetime() time.Time {
	return i.StartDatetime.Add(time.Duration(i.DurationMinutes) * time.Minute)
}
