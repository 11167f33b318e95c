// Package shifts exposes the shift lifecycle operations and keeps a local
// mirror of the caller's shifts. The mirror is mutated only after the
// remote write succeeds, so a failed call never needs a rollback.
package shifts

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"worksync/api/internal/faults"
	"worksync/api/internal/ids"
	"worksync/api/internal/models"
	"worksync/api/internal/session"
)

// Store is the remote shift record store.
type Store interface {
	GetByID(ctx context.Context, id string) (models.Shift, error)
	Create(ctx context.Context, shift models.Shift) error
	SetClockIn(ctx context.Context, id string, at time.Time) error
	SetClockOut(ctx context.Context, id string, at time.Time) error
	ListByEmployee(ctx context.Context, employeeID string) ([]models.Shift, error)
	ListByCreator(ctx context.Context, createdBy string) ([]models.Shift, error)
}

// SessionSource supplies the current session the gateway scopes its
// queries and writes to.
type SessionSource interface {
	Snapshot() session.Snapshot
}

// CreateInput is the caller-supplied part of a new shift. Status,
// CreatedBy, and CreatedAt are assigned by the gateway.
type CreateInput struct {
	EmployeeID string
	Start      time.Time
	End        time.Time
	Department string
	Notes      string
}

type Gateway struct {
	mu       sync.Mutex
	store    Store
	sessions SessionSource
	log      zerolog.Logger
	now      func() time.Time
	mirror   []models.Shift
}

func NewGateway(store Store, sessions SessionSource, log zerolog.Logger) *Gateway {
	return &Gateway{
		store:    store,
		sessions: sessions,
		log:      log,
		now:      time.Now,
	}
}

// ClockIn transitions a scheduled shift to in-progress, recording the
// current instant. Returns false without touching remote or local state
// when there is no active session or the shift is not in Scheduled.
func (g *Gateway) ClockIn(ctx context.Context, shiftID string) (bool, string) {
	sess, ok := g.activeSession()
	if !ok {
		return false, faults.Message(faults.PermissionDenied)
	}

	shift, err := g.store.GetByID(ctx, shiftID)
	if err != nil {
		g.log.Warn().Err(err).Str("shift_id", shiftID).Msg("clock in lookup failed")
		return false, faults.MessageFor(err)
	}
	if shift.EmployeeID != sess.UID {
		return false, faults.Message(faults.PermissionDenied)
	}
	if shift.Status != models.ShiftStatusScheduled {
		return false, faults.Message(faults.Unknown)
	}

	at := g.now()
	if err := g.store.SetClockIn(ctx, shiftID, at); err != nil {
		g.log.Warn().Err(err).Str("shift_id", shiftID).Msg("clock in failed")
		return false, faults.MessageFor(err)
	}

	g.applyMirror(shiftID, func(s *models.Shift) {
		s.Status = models.ShiftStatusInProgress
		s.ClockIn = &at
	})
	return true, ""
}

// ClockOut transitions an in-progress shift to completed. A completed
// shift cannot be re-opened; the Scheduled precondition on ClockIn and the
// InProgress precondition here enforce the one-way lifecycle.
func (g *Gateway) ClockOut(ctx context.Context, shiftID string) (bool, string) {
	sess, ok := g.activeSession()
	if !ok {
		return false, faults.Message(faults.PermissionDenied)
	}

	shift, err := g.store.GetByID(ctx, shiftID)
	if err != nil {
		g.log.Warn().Err(err).Str("shift_id", shiftID).Msg("clock out lookup failed")
		return false, faults.MessageFor(err)
	}
	if shift.EmployeeID != sess.UID {
		return false, faults.Message(faults.PermissionDenied)
	}
	if shift.Status != models.ShiftStatusInProgress {
		return false, faults.Message(faults.Unknown)
	}

	at := g.now()
	if err := g.store.SetClockOut(ctx, shiftID, at); err != nil {
		g.log.Warn().Err(err).Str("shift_id", shiftID).Msg("clock out failed")
		return false, faults.MessageFor(err)
	}

	g.applyMirror(shiftID, func(s *models.Shift) {
		s.Status = models.ShiftStatusCompleted
		s.ClockOut = &at
	})
	return true, ""
}

// CreateShift writes a new Scheduled shift stamped with the caller and the
// current instant, appending it to the mirror on success. Role enforcement
// (admin or super-admin) is the caller's responsibility. Returns the new
// shift id, or "" on failure.
func (g *Gateway) CreateShift(ctx context.Context, input CreateInput) string {
	sess, ok := g.activeSession()
	if !ok {
		return ""
	}

	shift := models.Shift{
		ID:         ids.New(),
		EmployeeID: input.EmployeeID,
		Start:      input.Start,
		End:        input.End,
		Status:     models.ShiftStatusScheduled,
		Department: input.Department,
		Notes:      input.Notes,
		CreatedBy:  sess.UID,
		CreatedAt:  g.now(),
	}

	if err := g.store.Create(ctx, shift); err != nil {
		g.log.Warn().Err(err).Msg("create shift failed")
		return ""
	}

	g.mu.Lock()
	g.mirror = append(g.mirror, shift)
	g.mu.Unlock()
	return shift.ID
}

// LoadShifts refreshes the mirror with a role-scoped query: employees see
// shifts assigned to them, admins see shifts they created, both ordered by
// start ascending. A failed remote load leaves the prior mirror intact;
// calling while signed out clears it, so one account's shifts never carry
// over into the next session.
func (g *Gateway) LoadShifts(ctx context.Context) (bool, string) {
	sess, ok := g.activeSession()
	if !ok {
		g.mu.Lock()
		g.mirror = nil
		g.mu.Unlock()
		return false, faults.Message(faults.PermissionDenied)
	}

	var (
		loaded []models.Shift
		err    error
	)
	if sess.Role == models.RoleEmployee {
		loaded, err = g.store.ListByEmployee(ctx, sess.UID)
	} else {
		loaded, err = g.store.ListByCreator(ctx, sess.UID)
	}
	if err != nil {
		g.log.Warn().Err(err).Str("uid", sess.UID).Msg("load shifts failed")
		return false, faults.MessageFor(err)
	}

	g.mu.Lock()
	g.mirror = loaded
	g.mu.Unlock()
	return true, ""
}

// Shifts returns a copy of the mirrored shift list.
func (g *Gateway) Shifts() []models.Shift {
	g.mu.Lock()
	defer g.mu.Unlock()
	out := make([]models.Shift, len(g.mirror))
	copy(out, g.mirror)
	return out
}

func (g *Gateway) activeSession() (models.Session, bool) {
	snap := g.sessions.Snapshot()
	if snap.Session == nil {
		return models.Session{}, false
	}
	return *snap.Session, true
}

func (g *Gateway) applyMirror(shiftID string, mutate func(*models.Shift)) {
	g.mu.Lock()
	defer g.mu.Unlock()
	for i := range g.mirror {
		if g.mirror[i].ID == shiftID {
			mutate(&g.mirror[i])
			return
		}
	}
}
