package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/avoronov/fitbook/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type TemplateRepository interface {
	Upsert(ctx context.Context, t *domain.ClassTemplate) error
	GetByID(ctx context.Context, id string) (*domain.ClassTemplate, error)
	List(ctx context.Context) ([]domain.ClassTemplate, error)
	Delete(ctx context.Context, id string) error
}

type PGTemplateRepository struct {
	db *pgxpool.Pool
}

func NewTemplateRepository(db *pgxpool.Pool) TemplateRepository {
	return &PGTemplateRepository{db: db}
}

func (r *PGTemplateRepository) Upsert(ctx context.Context, t *domain.ClassTemplate) error {
	if err := t.Validate(); err != nil {
		return err
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}
	err := r.db.QueryRow(ctx, `INSERT INTO class_templates
		(id, name, instructor, weekday, start_time, duration_minutes, capacity, difficulty, age_group, price_cents, tags, invite_only)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			instructor = EXCLUDED.instructor,
			weekday = EXCLUDED.weekday,
			start_time = EXCLUDED.start_time,
			duration_minutes = EXCLUDED.duration_minutes,
			capacity = EXCLUDED.capacity,
			difficulty = EXCLUDED.difficulty,
			age_group = EXCLUDED.age_group,
			price_cents = EXCLUDED.price_cents,
			tags = EXCLUDED.tags,
			invite_only = EXCLUDED.invite_only,
			updated_at = now()
		RETURNING created_at, updated_at`,
		t.ID, t.Name, t.Instructor, t.Weekday, t.StartTime, t.DurationMinutes, t.Capacity,
		t.Difficulty, t.AgeGroup, t.PriceCents, t.Tags, t.IsInviteOnly).
		Scan(&t.CreatedAt, &t.UpdatedAt)
	if err != nil {
		return fmt.Errorf("%w: upsert template %s: %w", domain.ErrPersistence, t.ID, err)
	}
	return nil
}

func (r *PGTemplateRepository) GetByID(ctx context.Context, id string) (*domain.ClassTemplate, error) {
	row := r.db.QueryRow(ctx, `SELECT id, name, instructor, weekday, start_time, duration_minutes, capacity, difficulty, age_group, price_cents, tags, invite_only, created_at, updated_at
		FROM class_templates WHERE id=$1`, id)
	t, err := scanTemplate(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: template %s", domain.ErrTemplateInvalid, id)
		}
		return nil, fmt.Errorf("%w: get template %s: %w", domain.ErrPersistence, id, err)
	}
	return t, nil
}

func (r *PGTemplateRepository) List(ctx context.Context) ([]domain.ClassTemplate, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, instructor, weekday, start_time, duration_minutes, capacity, difficulty, age_group, price_cents, tags, invite_only, created_at, updated_at
		FROM class_templates ORDER BY weekday, start_time, id`)
	if err != nil {
		return nil, fmt.Errorf("%w: list templates: %w", domain.ErrPersistence, err)
	}
	defer rows.Close()

	templates := make([]domain.ClassTemplate, 0)
	for rows.Next() {
		t, err := scanTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan template: %w", domain.ErrPersistence, err)
		}
		templates = append(templates, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: list templates: %w", domain.ErrPersistence, err)
	}
	return templates, nil
}

func (r *PGTemplateRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.db.Exec(ctx, `DELETE FROM class_templates WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("%w: delete template %s: %w", domain.ErrPersistence, id, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%w: template %s", domain.ErrTemplateInvalid, id)
	}
	return nil
}

func scanTemplate(row pgx.Row) (*domain.ClassTemplate, error) {
	var t domain.ClassTemplate
	if err := row.Scan(&t.ID, &t.Name, &t.Instructor, &t.Weekday, &t.StartTime, &t.DurationMinutes,
		&t.Capacity, &t.Difficulty, &t.AgeGroup, &t.PriceCents, &t.Tags, &t.IsInviteOnly,
		&t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

var _ TemplateRepository = (*PGTemplateRepository)(nil)
