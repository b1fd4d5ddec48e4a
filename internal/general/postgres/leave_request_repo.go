package postgres

import (
	"context"
	"fmt"

	"fleetdesk/internal/domain/fleet"
	"fleetdesk/internal/ports"
)

// LeaveRequestRepo persists driver leave requests.
type LeaveRequestRepo struct{}

// NewLeaveRequestRepo constructs a new LeaveRequestRepo.
func NewLeaveRequestRepo() ports.LeaveRequestRepository {
	return &LeaveRequestRepo{}
}

// Create inserts a leave request row.
func (repo *LeaveRequestRepo) Create(ctx context.Context, lr *fleet.LeaveRequest) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO leave_requests (
			id, driver_id, status, start_time, end_time, reason, notes, schedule_id, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`,
		lr.ID,
		lr.DriverID,
		string(lr.Status),
		lr.StartTime,
		lr.EndTime,
		lr.Reason,
		lr.Notes,
		lr.ScheduleID,
		lr.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert leave request: %w", err)
	}
	return nil
}

// GetByID fetches a leave request by primary key.
func (repo *LeaveRequestRepo) GetByID(ctx context.Context, id string) (*fleet.LeaveRequest, error) {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return nil, err
	}

	var (
		out        fleet.LeaveRequest
		statusText string
	)
	err = tx.QueryRow(ctx, `
		SELECT id, driver_id, status, start_time, end_time, reason, notes, schedule_id, created_at
		FROM leave_requests
		WHERE id = $1
	`, id).Scan(
		&out.ID, &out.DriverID, &statusText, &out.StartTime, &out.EndTime,
		&out.Reason, &out.Notes, &out.ScheduleID, &out.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("select leave request: %w", err)
	}

	out.Status = fleet.AbsenceStatus(statusText)
	return &out, nil
}

// Update rewrites the mutable columns of a leave request.
func (repo *LeaveRequestRepo) Update(ctx context.Context, lr *fleet.LeaveRequest) error {
	tx, err := MustTxFromContext(ctx)
	if err != nil {
		return err
	}

	tag, err := tx.Exec(ctx, `
		UPDATE leave_requests
		SET status = $2, schedule_id = $3
		WHERE id = $1
	`, lr.ID, string(lr.Status), lr.ScheduleID)
	if err != nil {
		return fmt.Errorf("update leave request: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("update leave request %s: row missing", lr.ID)
	}
	return nil
}
