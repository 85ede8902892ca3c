package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ClassTemplate is the weekly definition of a class. Templates are seeded
// from configuration at startup and only change through admin operations.
// Weekday follows the club convention: 0 = Monday .. 6 = Sunday.
type ClassTemplate struct {
	ID              string
	Name            string
	Instructor      string
	Weekday         int
	StartTime       string // "HH:MM", club-local time
	DurationMinutes int
	Capacity        int
	Difficulty      string
	AgeGroup        string
	PriceCents      int64
	Tags            []string
	IsInviteOnly    bool
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

func (t ClassTemplate) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("%w: missing id", ErrTemplateInvalid)
	}
	if t.Name == "" {
		return fmt.Errorf("%w: template %s has no name", ErrTemplateInvalid, t.ID)
	}
	if t.Weekday < 0 || t.Weekday > 6 {
		return fmt.Errorf("%w: template %s weekday %d out of range", ErrTemplateInvalid, t.ID, t.Weekday)
	}
	if _, _, err := parseClock(t.StartTime); err != nil {
		return fmt.Errorf("%w: template %s start time %q: %v", ErrTemplateInvalid, t.ID, t.StartTime, err)
	}
	if t.DurationMinutes <= 0 {
		return fmt.Errorf("%w: template %s duration must be positive", ErrTemplateInvalid, t.ID)
	}
	if t.Capacity <= 0 {
		return fmt.Errorf("%w: template %s capacity must be positive", ErrTemplateInvalid, t.ID)
	}
	return nil
}

// ScheduleKey is a deterministic digest of the slot a template occupies.
// Together with the week start it uniquely identifies an instance, which is
// what makes generation idempotent.
func (t ClassTemplate) ScheduleKey() string {
	sum := sha256.Sum256([]byte(t.ID + "|" + strconv.Itoa(t.Weekday) + "|" + t.StartTime))
	return hex.EncodeToString(sum[:])[:16]
}

// StartInWeek resolves the concrete start instant of this template inside the
// week beginning at weekStart (a Monday midnight in loc). The result is UTC.
func (t ClassTemplate) StartInWeek(weekStart time.Time, loc *time.Location) (time.Time, error) {
	hour, minute, err := parseClock(t.StartTime)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: template %s start time %q: %v", ErrTemplateInvalid, t.ID, t.StartTime, err)
	}
	if t.Weekday < 0 || t.Weekday > 6 {
		return time.Time{}, fmt.Errorf("%w: template %s weekday %d out of range", ErrTemplateInvalid, t.ID, t.Weekday)
	}
	day := weekStart.In(loc)
	start := time.Date(day.Year(), day.Month(), day.Day()+t.Weekday, hour, minute, 0, 0, loc)
	return start.UTC(), nil
}

func parseClock(s string) (hour, minute int, err error) {
	parts := strings.Split(s, ":")
	if len(parts) != 2 {
		return 0, 0, fmt.Errorf("expected HH:MM")
	}
	hour, err = strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, 0, fmt.Errorf("bad hour %q", parts[0])
	}
	minute, err = strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, 0, fmt.Errorf("bad minute %q", parts[1])
	}
	return hour, minute, nil
}

// WeekStartOf truncates an instant to the Monday midnight of its week in loc.
func WeekStartOf(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	// time.Weekday puts Sunday at 0; shift so Monday is day 0.
	offset := (int(local.Weekday()) + 6) % 7
	return time.Date(local.Year(), local.Month(), local.Day()-offset, 0, 0, 0, 0, loc)
}
