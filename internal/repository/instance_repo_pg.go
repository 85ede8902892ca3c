package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/avoronov/fitbook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type InstanceRepository interface {
	// CreateIfAbsent inserts the instance unless one already exists for its
	// (scheduleKey, weekStart) slot. Returns false without error when the
	// slot was already populated.
	CreateIfAbsent(ctx context.Context, inst *domain.ClassInstance) (bool, error)
	GetByID(ctx context.Context, id int64) (*domain.ClassInstance, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]domain.ClassInstance, error)
	ListWeekStartsAfter(ctx context.Context, after time.Time) ([]time.Time, error)
	DeleteStartedBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

type PGInstanceRepository struct {
	db *pgxpool.Pool
}

func NewInstanceRepository(db *pgxpool.Pool) InstanceRepository {
	return &PGInstanceRepository{db: db}
}

func (r *PGInstanceRepository) CreateIfAbsent(ctx context.Context, inst *domain.ClassInstance) (bool, error) {
	if inst.BookedMemberIDs == nil {
		inst.BookedMemberIDs = []string{}
	}
	err := r.db.QueryRow(ctx, `INSERT INTO class_instances
		(template_id, schedule_key, week_start, start_datetime, duration_minutes, capacity, spots_left, booked_member_ids)
		VALUES ($1, $2, $3, $4, $5, $6, $6, $7)
		ON CONFLICT (schedule_key, week_start) DO NOTHING
		RETURNING id, version, created_at, updated_at`,
		inst.TemplateID, inst.ScheduleKey, inst.WeekStart, inst.StartDatetime,
		inst.DurationMinutes, inst.Capacity, inst.BookedMemberIDs).
		Scan(&inst.ID, &inst.Version, &inst.CreatedAt, &inst.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			// Lost the insert race or the slot was generated earlier.
			return false, nil
		}
		return false, fmt.Errorf("%w: create instance %s/%s: %w", domain.ErrPersistence, inst.ScheduleKey, inst.WeekStart.Format("2006-01-02"), err)
	}
	inst.SpotsLeft = inst.Capacity
	return true, nil
}

func (r *PGInstanceRepository) GetByID(ctx context.Context, id int64) (*domain.ClassInstance, error) {
	row := r.db.QueryRow(ctx, `SELECT id, template_id, schedule_key, week_start, start_datetime, duration_minutes, capacity, spots_left, booked_member_ids, version, created_at, updated_at
		FROM class_instances WHERE id=$1`, id)
	inst, err := scanInstance(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrInstanceNotFound
		}
		return nil, fmt.Errorf("%w: get instance %d: %w", domain.ErrPersistence, id, err)
	}
	return inst, nil
}

func (r *PGInstanceRepository) ListBetween(ctx context.Context, from, to time.Time) ([]domain.ClassInstance, error) {
	rows, err := r.db.Query(ctx, `SELECT id, template_id, schedule_key, week_start, start_datetime, duration_minutes, capacity, spots_left, booked_member_ids, version, created_at, updated_at
		FROM class_instances WHERE start_datetime >= $1 AND start_datetime < $2 ORDER BY start_datetime, id`, from, to)
	if err != nil {
		return nil, fmt.Errorf("%w: list instances: %w", domain.ErrPersistence, err)
	}
	defer rows.Close()

	instances := make([]domain.ClassInstance, 0)
	for rows.Next() {
		inst, err := scanInstance(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan instance: %w", domain.ErrPersistence, err)
		}
		instances = append(instances, *inst)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list instances: %w", domain.ErrPersistence, err)
	}
	return instances, nil
}

func (r *PGInstanceRepository) ListWeekStartsAfter(ctx context.Context, after time.Time) ([]time.Time, error) {
	rows, err := r.db.Query(ctx, `SELECT DISTINCT week_start FROM class_instances WHERE start_datetime > $1 ORDER BY week_start`, after)
	if err != nil {
		return nil, fmt.Errorf("%w: list week starts: %w", domain.ErrPersistence, err)
	}
	defer rows.Close()

	weeks := make([]time.Time, 0)
	for rows.Next() {
		var w time.Time
		if err := rows.Scan(&w); err != nil {
			return nil, fmt.Errorf("%w: scan week start: %w", domain.ErrPersistence, err)
		}
		weeks = append(weeks, w)
	}
	return weeks, rows.Err()
}

func (r *PGInstanceRepository) DeleteStartedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	cmd, err := r.db.Exec(ctx, `DELETE FROM class_instances WHERE start_datetime < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("%w: prune instances: %w", domain.ErrPersistence, err)
	}
	return cmd.RowsAffected(), nil
}

func scanInstance(row pgx.Row) (*domain.ClassInstance, error) {
	var inst domain.ClassInstance
	if err := row.Scan(&inst.ID, &inst.TemplateID, &inst.ScheduleKey, &inst.WeekStart, &inst.StartDatetime,
		&inst.DurationMinutes, &inst.Capacity, &inst.SpotsLeft, &inst.BookedMemberIDs, &inst.Version,
		&inst.CreatedAt, &inst.UpdatedAt); err != nil {
		return nil, err
	}
	return &inst, nil
}

var _ InstanceRepository = (*PGInstanceRepository)(nil)
