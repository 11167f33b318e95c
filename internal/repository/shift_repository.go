package repository

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"worksync/api/internal/models"
)

var (
	ErrShiftNotFound = errors.New("shift not found")
	// ErrShiftStateConflict means the shift exists but its status does not
	// permit the requested clock transition.
	ErrShiftStateConflict = errors.New("shift state conflict")
)

const shiftColumns = `id, employee_id, start_at, end_at, status, department, notes, clock_in, clock_out, created_by, created_at`

type ShiftRepository struct {
	pool *pgxpool.Pool
}

func NewShiftRepository(pool *pgxpool.Pool) *ShiftRepository {
	return &ShiftRepository{pool: pool}
}

func (r *ShiftRepository) Create(ctx context.Context, shift models.Shift) error {
	const query = `
		INSERT INTO shifts (
			id, employee_id, start_at, end_at, status, department, notes, created_by, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	_, err := r.pool.Exec(ctx, query,
		shift.ID,
		shift.EmployeeID,
		shift.Start,
		shift.End,
		shift.Status,
		shift.Department,
		shift.Notes,
		shift.CreatedBy,
		shift.CreatedAt,
	)
	return err
}

func (r *ShiftRepository) GetByID(ctx context.Context, id string) (models.Shift, error) {
	const query = `SELECT ` + shiftColumns + ` FROM shifts WHERE id = $1`

	row := r.pool.QueryRow(ctx, query, id)
	return scanShift(row)
}

// SetClockIn moves a shift scheduled -> in_progress, recording the clock-in
// instant. The status predicate keeps a double clock-in from re-opening a
// shift even under concurrent callers.
func (r *ShiftRepository) SetClockIn(ctx context.Context, id string, at time.Time) error {
	const query = `
		UPDATE shifts
		SET status = $3, clock_in = $2
		WHERE id = $1 AND status = $4
	`
	cmd, err := r.pool.Exec(ctx, query, id, at, models.ShiftStatusInProgress, models.ShiftStatusScheduled)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrShiftStateConflict
	}
	return nil
}

// SetClockOut moves a shift in_progress -> completed.
func (r *ShiftRepository) SetClockOut(ctx context.Context, id string, at time.Time) error {
	const query = `
		UPDATE shifts
		SET status = $3, clock_out = $2
		WHERE id = $1 AND status = $4
	`
	cmd, err := r.pool.Exec(ctx, query, id, at, models.ShiftStatusCompleted, models.ShiftStatusInProgress)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
		return ErrShiftStateConflict
	}
	return nil
}

// ListByEmployee returns the shifts assigned to an employee, soonest first.
func (r *ShiftRepository) ListByEmployee(ctx context.Context, employeeID string) ([]models.Shift, error) {
	const query = `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE employee_id = $1
		ORDER BY start_at ASC
	`
	return r.list(ctx, query, employeeID)
}

// ListByCreator returns the shifts an admin created, soonest first.
func (r *ShiftRepository) ListByCreator(ctx context.Context, createdBy string) ([]models.Shift, error) {
	const query = `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE created_by = $1
		ORDER BY start_at ASC
	`
	return r.list(ctx, query, createdBy)
}

// ListStartingBetween returns scheduled shifts starting inside the window,
// used by the reminder job.
func (r *ShiftRepository) ListStartingBetween(ctx context.Context, from, to time.Time) ([]models.Shift, error) {
	const query = `
		SELECT ` + shiftColumns + `
		FROM shifts
		WHERE status = $3 AND start_at >= $1 AND start_at < $2
		ORDER BY start_at ASC
	`

	rows, err := r.pool.Query(ctx, query, from, to, models.ShiftStatusScheduled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShifts(rows)
}

func (r *ShiftRepository) list(ctx context.Context, query string, arg string) ([]models.Shift, error) {
	rows, err := r.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectShifts(rows)
}

func collectShifts(rows pgx.Rows) ([]models.Shift, error) {
	var shifts []models.Shift
	for rows.Next() {
		shift, err := scanShift(rows)
		if err != nil {
			return nil, err
		}
		shifts = append(shifts, shift)
	}
	return shifts, rows.Err()
}

func scanShift(row pgx.Row) (models.Shift, error) {
	var shift models.Shift
	if err := row.Scan(
		&shift.ID,
		&shift.EmployeeID,
		&shift.Start,
		&shift.End,
		&shift.Status,
		&shift.Department,
		&shift.Notes,
		&shift.ClockIn,
		&shift.ClockOut,
		&shift.CreatedBy,
		&shift.CreatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Shift{}, ErrShiftNotFound
		}
		return models.Shift{}, err
	}
	return shift, nil
}
