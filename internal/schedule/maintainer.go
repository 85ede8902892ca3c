package schedule

import (
	"context"
	"log"
	"time"

	"github.com/avoronov/fitbook/internal/domain"
)

// Maintainer keeps the rolling horizon of future instances populated and
// prunes occurrences past the retention window. Run is safe to invoke
// repeatedly and concurrently with itself: pruning uses a strict time
// predicate and generation is idempotent.
type Maintainer struct {
	instances   InstanceStore
	generator   *Generator
	retention   time.Duration
	targetWeeks int
	loc         *time.Location
	now         func() time.Time
}

type MaintainerOption func(*Maintainer)

func WithMaintainerClock(now func() time.Time) MaintainerOption {
	return func(m *Maintainer) {
		m.now = now
	}
}

func NewMaintainer(instances InstanceStore, generator *Generator, retention time.Duration, targetWeeks int, loc *time.Location, opts ...MaintainerOption) *Maintainer {
	m := &Maintainer{
		instances:   instances,
		generator:   generator,
		retention:   retention,
		targetWeeks: targetWeeks,
		loc:         loc,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

type Summary struct {
	Pruned  int64
	Created int
	Skipped int
	Failed  int
}

// Run prunes expired instances, then tops the horizon up when fewer than
// targetWeeks future weeks are populated. A failure in either half is logged
// and does not abort the other.
func (m *Maintainer) Run(ctx context.Context) (Summary, error) {
	now := m.now()

	var summary Summary
	pruned, err := m.instances.DeleteStartedBefore(ctx, now.Add(-m.retention))
	if err != nil {
		log.Printf("maintainer: prune failed: %v", err)
	} else {
		summary.Pruned = pruned
	}

	populated, err := m.populatedWeeks(ctx, now)
	if err != nil {
		log.Printf("maintainer: counting future weeks failed, regenerating full horizon: %v", err)
		populated = 0
	}
	if populated >= m.targetWeeks {
		return summary, nil
	}

	report, err := m.generator.GenerateHorizon(ctx, m.targetWeeks)
	summary.Created = report.Created
	summary.Skipped = report.Skipped
	summary.Failed = report.Failed
	if err != nil {
		return summary, err
	}
	return summary, nil
}

// populatedWeeks counts distinct week slots, from the current week forward,
// that already hold at least one future instance.
func (m *Maintainer) populatedWeeks(ctx context.Context, now time.Time) (int, error) {
	weeks, err := m.instances.ListWeekStartsAfter(ctx, now)
	if err != nil {
		return 0, err
	}
	currentWeek := domain.WeekStartOf(now, m.loc)
	count := 0
	for _, w := range weeks {
		if !w.Before(currentWeek) {
			count++
		}
	}
	return count, nil
}
