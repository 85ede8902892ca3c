package schedule

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/avoronov/fitbook/internal/domain"
)

type TemplateSource interface {
	List(ctx context.Context) ([]domain.ClassTemplate, error)
}

type InstanceStore interface {
	CreateIfAbsent(ctx context.Context, inst *domain.ClassInstance) (bool, error)
	ListWeekStartsAfter(ctx context.Context, after time.Time) ([]time.Time, error)
	DeleteStartedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

const (
	persistenceRetries = 3
	retryBaseDelay     = 100 * time.Millisecond
)

// Generator expands weekly templates into dated class instances. Generation
// is idempotent per (scheduleKey, weekStart): re-running a week never
// produces duplicates.
type Generator struct {
	templates TemplateSource
	instances InstanceStore
	loc       *time.Location
	now       func() time.Time
}

type GeneratorOption func(*Generator)

func WithGeneratorClock(now func() time.Time) GeneratorOption {
	return func(g *Generator) {
		g.now = now
	}
}

func NewGenerator(templates TemplateSource, instances InstanceStore, loc *time.Location, opts ...GeneratorOption) *Generator {
	g := &Generator{
		templates: templates,
		instances: instances,
		loc:       loc,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

type Report struct {
	Created int
	Skipped int
	Failed  int
}

func (r *Report) add(other Report) {
	r.Created += other.Created
	r.Skipped += other.Skipped
	r.Failed += other.Failed
}

// GenerateWeek materialises every template inside the week that contains
// weekStart. A malformed template is logged and skipped; the rest of the
// batch proceeds. Slots whose start has already passed are skipped.
func (g *Generator) GenerateWeek(ctx context.Context, weekStart time.Time) (Report, error) {
	templates, err := g.templates.List(ctx)
	if err != nil {
		return Report{}, fmt.Errorf("list templates: %w", err)
	}

	week := domain.WeekStartOf(weekStart, g.loc)
	now := g.now()

	var report Report
	for _, t := range templates {
		if err := t.Validate(); err != nil {
			log.Printf("generator: skipping template %s: %v", t.ID, err)
			report.Failed++
			continue
		}
		start, err := t.StartInWeek(week, g.loc)
		if err != nil {
			log.Printf("generator: skipping template %s: %v", t.ID, err)
			report.Failed++
			continue
		}
		if !start.After(now) {
			report.Skipped++
			continue
		}

		inst := &domain.ClassInstance{
			TemplateID:      t.ID,
			ScheduleKey:     t.ScheduleKey(),
			WeekStart:       week,
			StartDatetime:   start,
			DurationMinutes: t.DurationMinutes,
			Capacity:        t.Capacity,
			SpotsLeft:       t.Capacity,
			BookedMemberIDs: []string{},
		}
		created, err := g.createWithRetry(ctx, inst)
		if err != nil {
			log.Printf("generator: template %s week %s: %v", t.ID, week.Format("2006-01-02"), err)
			report.Failed++
			continue
		}
		if created {
			report.Created++
		} else {
			report.Skipped++
		}
	}
	return report, nil
}

// GenerateHorizon populates each week offset in [0, weeksAhead) starting from
// the current week.
func (g *Generator) GenerateHorizon(ctx context.Context, weeksAhead int) (Report, error) {
	base := domain.WeekStartOf(g.now(), g.loc)

	var report Report
	for offset := 0; offset < weeksAhead; offset++ {
		week := base.AddDate(0, 0, offset*7)
		weekReport, err := g.GenerateWeek(ctx, week)
		if err != nil {
			return report, fmt.Errorf("generate week %s: %w", week.Format("2006-01-02"), err)
		}
		report.add(weekReport)
	}
	return report, nil
}

func (g *Generator) createWithRetry(ctx context.Context, inst *domain.ClassInstance) (bool, error) {
	var lastErr error
	for attempt := 0; attempt < persistenceRetries; attempt++ {
		created, err := g.instances.CreateIfAbsent(ctx, inst)
		if err == nil {
			return created, nil
		}
		if errors.Is(err, domain.ErrGenerationConflict) {
			// Another generator won the race; the slot exists.
			return false, nil
		}
		if !errors.Is(err, domain.ErrPersistence) {
			return false, err
		}
		lastErr = err
		select {
		case <-ctx.Done():
			return false, ctx.Err()
		case <-time.After(time.Duration(attempt+1) * retryBaseDelay):
		}
	}
	return false, lastErr
}
