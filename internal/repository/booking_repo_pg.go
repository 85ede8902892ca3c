package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/avoronov/fitbook/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type BookingRepository interface {
	// BookMember atomically claims a spot on the instance and records the
	// confirmed booking. Fails with ErrClassFull, ErrAlreadyBooked or
	// ErrInstanceNotFound without mutating anything.
	BookMember(ctx context.Context, instanceID int64, memberID string) (*domain.Booking, error)
	// CancelMember atomically releases the member's spot and marks the
	// active booking cancelled. Fails with ErrNoActiveBooking.
	CancelMember(ctx context.Context, instanceID int64, memberID string) (*domain.Booking, error)
	// MarkAttended flips a confirmed booking to attended. The roster is not
	// touched.
	MarkAttended(ctx context.Context, bookingID string, instanceID int64, memberID string) (*domain.Booking, error)
	ListByMember(ctx context.Context, memberID string) ([]domain.Booking, error)
}

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

func (r *PGBookingRepository) BookMember(ctx context.Context, instanceID int64, memberID string) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: begin book tx: %w", domain.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	// Roster insert and spot decrement happen in one guarded statement; two
	// racers for the last spot cannot both pass the spots_left predicate.
	cmd, err := tx.Exec(ctx, `UPDATE class_instances
		SET booked_member_ids = array_append(booked_member_ids, $2),
		    spots_left = spots_left - 1,
		    version = version + 1,
		    updated_at = now()
		WHERE id = $1 AND spots_left > 0 AND NOT ($2 = ANY(booked_member_ids))`,
		instanceID, memberID)
	if err != nil {
		return nil, fmt.Errorf("%w: claim spot on instance %d: %w", domain.ErrPersistence, instanceID, err)
	}
	if cmd.RowsAffected() == 0 {
		return nil, r.classifyBookFailure(ctx, tx, instanceID, memberID)
	}

	booking := &domain.Booking{
		ID:         uuid.NewString(),
		InstanceID: instanceID,
		MemberID:   memberID,
		Status:     domain.BookingStatusConfirmed,
	}
	if err := tx.QueryRow(ctx, `INSERT INTO bookings (id, instance_id, member_id, status)
		VALUES ($1, $2, $3, $4)
		RETURNING booked_at, updated_at`,
		booking.ID, booking.InstanceID, booking.MemberID, booking.Status).
		Scan(&booking.BookedAt, &booking.UpdatedAt); err != nil {
		return nil, fmt.Errorf("%w: insert booking: %w", domain.ErrPersistence, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit book tx: %w", domain.ErrPersistence, err)
	}
	return booking, nil
}

// classifyBookFailure runs inside the same transaction so the verdict matches
// the state the guarded UPDATE saw.
func (r *PGBookingRepository) classifyBookFailure(ctx context.Context, tx pgx.Tx, instanceID int64, memberID string) error {
	var spotsLeft int
	var already bool
	err := tx.QueryRow(ctx, `SELECT spots_left, $2 = ANY(booked_member_ids) FROM class_instances WHERE id=$1`,
		instanceID, memberID).Scan(&spotsLeft, &already)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrInstanceNotFound
		}
		return fmt.Errorf("%w: inspect instance %d: %w", domain.ErrPersistence, instanceID, err)
	}
	if already {
		return domain.ErrAlreadyBooked
	}
	return domain.ErrClassFull
}

func (r *PGBookingRepository) CancelMember(ctx context.Context, instanceID int64, memberID string) (*domain.Booking, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("%w: begin cancel tx: %w", domain.ErrPersistence, err)
	}
	defer tx.Rollback(ctx)

	var booking domain.Booking
	err = tx.QueryRow(ctx, `UPDATE bookings SET status=$3, updated_at=now()
		WHERE instance_id=$1 AND member_id=$2 AND status=$4
		RETURNING id, instance_id, member_id, status, booked_at, updated_at`,
		instanceID, memberID, domain.BookingStatusCancelled, domain.BookingStatusConfirmed).
		Scan(&booking.ID, &booking.InstanceID, &booking.MemberID, &booking.Status, &booking.BookedAt, &booking.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoActiveBooking
		}
		return nil, fmt.Errorf("%w: cancel booking: %w", domain.ErrPersistence, err)
	}

	cmd, err := tx.Exec(ctx, `UPDATE class_instances
		SET booked_member_ids = array_remove(booked_member_ids, $2),
		    spots_left = spots_left + 1,
		    version = version + 1,
		    updated_at = now()
		WHERE id = $1 AND $2 = ANY(booked_member_ids)`,
		instanceID, memberID)
	if err != nil {
		return nil, fmt.Errorf("%w: release spot on instance %d: %w", domain.ErrPersistence, instanceID, err)
	}
	if cmd.RowsAffected() == 0 {
		// Booking row said confirmed but the roster disagrees; roll back
		// rather than double-credit a spot.
		return nil, domain.ErrNoActiveBooking
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("%w: commit cancel tx: %w", domain.ErrPersistence, err)
	}
	return &booking, nil
}

func (r *PGBookingRepository) MarkAttended(ctx context.Context, bookingID string, instanceID int64, memberID string) (*domain.Booking, error) {
	var booking domain.Booking
	err := r.db.QueryRow(ctx, `UPDATE bookings SET status=$4, updated_at=now()
		WHERE id=$1 AND instance_id=$2 AND member_id=$3 AND status=$5
		RETURNING id, instance_id, member_id, status, booked_at, updated_at`,
		bookingID, instanceID, memberID, domain.BookingStatusAttended, domain.BookingStatusConfirmed).
		Scan(&booking.ID, &booking.InstanceID, &booking.MemberID, &booking.Status, &booking.BookedAt, &booking.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNoActiveBooking
		}
		return nil, fmt.Errorf("%w: mark attended: %w", domain.ErrPersistence, err)
	}
	return &booking, nil
}

func (r *PGBookingRepository) ListByMember(ctx context.Context, memberID string) ([]domain.Booking, error) {
	rows, err := r.db.Query(ctx, `SELECT id, instance_id, member_id, status, booked_at, updated_at
		FROM bookings WHERE member_id=$1 ORDER BY booked_at DESC`, memberID)
	if err != nil {
		return nil, fmt.Errorf("%w: list bookings: %w", domain.ErrPersistence, err)
	}
	defer rows.Close()

	bookings := make([]domain.Booking, 0)
	for rows.Next() {
		var b domain.Booking
		if err := rows.Scan(&b.ID, &b.InstanceID, &b.MemberID, &b.Status, &b.BookedAt, &b.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%w: scan booking: %w", domain.ErrPersistence, err)
		}
		bookings = append(bookings, b)
	}
	return bookings, rows.Err()
}

var _ BookingRepository = (*PGBookingRepository)(nil)
