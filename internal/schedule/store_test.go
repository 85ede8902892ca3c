package schedule

import (
	"context"
	"sync"
	"time"

	"github.com/avoronov/fitbook/internal/domain"
)

// memTemplates is a fixed in-memory template source.
type memTemplates struct {
	templates []domain.ClassTemplate
}

func (m *memTemplates) List(ctx context.Context) ([]domain.ClassTemplate, error) {
	return m.templates, nil
}

// memInstances implements InstanceStore with the same uniqueness semantics as
// the SQL store: one instance per (scheduleKey, weekStart).
type memInstances struct {
	mu        sync.Mutex
	nextID    int64
	instances map[string]*domain.ClassInstance
}

func newMemInstances() *memInstances {
	return &memInstances{instances: make(map[string]*domain.ClassInstance)}
}

func slotKey(inst *domain.ClassInstance) string {
	return inst.ScheduleKey + "|" + inst.WeekStart.Format("2006-01-02")
}

func (m *memInstances) CreateIfAbsent(ctx context.Context, inst *domain.ClassInstance) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	key := slotKey(inst)
	if _, ok := m.instances[key]; ok {
		return false, nil
	}
	m.nextID++
	inst.ID = m.nextID
	stored := *inst
	m.instances[key] = &stored
	return true, nil
}

func (m *memInstances) ListWeekStartsAfter(ctx context.Context, after time.Time) ([]time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	seen := make(map[string]time.Time)
	for _, inst := range m.instances {
		if inst.StartDatetime.After(after) {
			seen[inst.WeekStart.Format("2006-01-02")] = inst.WeekStart
		}
	}
	weeks := make([]time.Time, 0, len(seen))
	for _, w := range seen {
		weeks = append(weeks, w)
	}
	return weeks, nil
}

func (m *memInstances) DeleteStartedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var deleted int64
	for key, inst := range m.instances {
		if inst.StartDatetime.Before(cutoff) {
			delete(m.instances, key)
			deleted++
		}
	}
	return deleted, nil
}

func (m *memInstances) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.instances)
}

func (m *memInstances) all() []domain.ClassInstance {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.ClassInstance, 0, len(m.instances))
	for _, inst := range m.instances {
		out = append(out, *inst)
	}
	return out
}
