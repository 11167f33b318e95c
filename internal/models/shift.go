package models

import "time"

type ShiftStatus string

const (
	ShiftStatusScheduled  ShiftStatus = "scheduled"
	ShiftStatusInProgress ShiftStatus = "in_progress"
	ShiftStatusCompleted  ShiftStatus = "completed"
	ShiftStatusCancelled  ShiftStatus = "cancelled"
)

// Shift is a scheduled work interval assigned to an employee. Status only
// moves scheduled -> in_progress (clock-in) and in_progress -> completed
// (clock-out); the lifecycle gateway enforces this, not the store.
type Shift struct {
	ID         string
	EmployeeID string
	Start      time.Time
	End        time.Time
	Status     ShiftStatus
	Department string
	Notes      string
	ClockIn    *time.Time
	ClockOut   *time.Time
	CreatedBy  string
	CreatedAt  time.Time
}
