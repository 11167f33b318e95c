package shifts

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"worksync/api/internal/faults"
	"worksync/api/internal/models"
	"worksync/api/internal/session"
)

type fakeStore struct {
	shifts  map[string]models.Shift
	failAll error
}

func newFakeStore() *fakeStore {
	return &fakeStore{shifts: make(map[string]models.Shift)}
}

func (f *fakeStore) GetByID(_ context.Context, id string) (models.Shift, error) {
	if f.failAll != nil {
		return models.Shift{}, f.failAll
	}
	shift, ok := f.shifts[id]
	if !ok {
		return models.Shift{}, faults.ErrNotFound
	}
	return shift, nil
}

func (f *fakeStore) Create(_ context.Context, shift models.Shift) error {
	if f.failAll != nil {
		return f.failAll
	}
	f.shifts[shift.ID] = shift
	return nil
}

func (f *fakeStore) SetClockIn(_ context.Context, id string, at time.Time) error {
	if f.failAll != nil {
		return f.failAll
	}
	shift := f.shifts[id]
	shift.Status = models.ShiftStatusInProgress
	shift.ClockIn = &at
	f.shifts[id] = shift
	return nil
}

func (f *fakeStore) SetClockOut(_ context.Context, id string, at time.Time) error {
	if f.failAll != nil {
		return f.failAll
	}
	shift := f.shifts[id]
	shift.Status = models.ShiftStatusCompleted
	shift.ClockOut = &at
	f.shifts[id] = shift
	return nil
}

func (f *fakeStore) ListByEmployee(_ context.Context, employeeID string) ([]models.Shift, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	return f.collect(func(s models.Shift) bool { return s.EmployeeID == employeeID }), nil
}

func (f *fakeStore) ListByCreator(_ context.Context, createdBy string) ([]models.Shift, error) {
	if f.failAll != nil {
		return nil, f.failAll
	}
	return f.collect(func(s models.Shift) bool { return s.CreatedBy == createdBy }), nil
}

func (f *fakeStore) collect(match func(models.Shift) bool) []models.Shift {
	var out []models.Shift
	for _, shift := range f.shifts {
		if match(shift) {
			out = append(out, shift)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Start.Before(out[j].Start) })
	return out
}

type staticSession struct {
	snap session.Snapshot
}

func (s staticSession) Snapshot() session.Snapshot { return s.snap }

// switchSession lets a test change the session between calls.
type switchSession struct {
	snap session.Snapshot
}

func (s *switchSession) Snapshot() session.Snapshot { return s.snap }

func sessionFor(uid string, role models.Role) staticSession {
	return staticSession{snap: session.Snapshot{
		Session: &models.Session{UID: uid, Role: role},
	}}
}

func noSession() staticSession {
	return staticSession{snap: session.Snapshot{}}
}

func scheduledShift(id string, employeeID string, start time.Time) models.Shift {
	return models.Shift{
		ID:         id,
		EmployeeID: employeeID,
		Start:      start,
		End:        start.Add(8 * time.Hour),
		Status:     models.ShiftStatusScheduled,
		CreatedBy:  "mgr1",
		CreatedAt:  start.Add(-24 * time.Hour),
	}
}

func TestClockInHappyPath(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	store.shifts["s1"] = scheduledShift("s1", "emp1", start)

	g := NewGateway(store, sessionFor("emp1", models.RoleEmployee), zerolog.Nop())
	loaded, _ := g.LoadShifts(ctx)
	require.True(t, loaded)

	ok, msg := g.ClockIn(ctx, "s1")
	assert.True(t, ok)
	assert.Empty(t, msg)

	assert.Equal(t, models.ShiftStatusInProgress, store.shifts["s1"].Status)
	require.NotNil(t, store.shifts["s1"].ClockIn)

	mirror := g.Shifts()
	require.Len(t, mirror, 1)
	assert.Equal(t, models.ShiftStatusInProgress, mirror[0].Status)
	assert.NotNil(t, mirror[0].ClockIn)
}

func TestClockInRejectsNonScheduledStatuses(t *testing.T) {
	tests := []struct {
		name   string
		status models.ShiftStatus
	}{
		{name: "in progress", status: models.ShiftStatusInProgress},
		{name: "completed", status: models.ShiftStatusCompleted},
		{name: "cancelled", status: models.ShiftStatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := newFakeStore()
			shift := scheduledShift("s1", "emp1", time.Now())
			shift.Status = tt.status
			store.shifts["s1"] = shift

			g := NewGateway(store, sessionFor("emp1", models.RoleEmployee), zerolog.Nop())

			ok, msg := g.ClockIn(ctx, "s1")
			assert.False(t, ok)
			assert.NotEmpty(t, msg)
			assert.Equal(t, tt.status, store.shifts["s1"].Status, "remote state must be untouched")
			assert.Nil(t, store.shifts["s1"].ClockIn)
		})
	}
}

func TestClockOutThenClockInDoesNotReopen(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	shift := scheduledShift("s1", "emp1", time.Now())
	shift.Status = models.ShiftStatusInProgress
	store.shifts["s1"] = shift

	g := NewGateway(store, sessionFor("emp1", models.RoleEmployee), zerolog.Nop())

	ok, _ := g.ClockOut(ctx, "s1")
	require.True(t, ok)
	assert.Equal(t, models.ShiftStatusCompleted, store.shifts["s1"].Status)

	ok, _ = g.ClockIn(ctx, "s1")
	assert.False(t, ok, "a completed shift must not be re-opened")
	assert.Equal(t, models.ShiftStatusCompleted, store.shifts["s1"].Status)
}

func TestClockRequiresActiveSession(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.shifts["s1"] = scheduledShift("s1", "emp1", time.Now())

	g := NewGateway(store, noSession(), zerolog.Nop())

	ok, _ := g.ClockIn(ctx, "s1")
	assert.False(t, ok)
	ok, _ = g.ClockOut(ctx, "s1")
	assert.False(t, ok)
	assert.Equal(t, models.ShiftStatusScheduled, store.shifts["s1"].Status)
}

func TestClockInRejectsOtherEmployeesShift(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.shifts["s1"] = scheduledShift("s1", "emp1", time.Now())

	g := NewGateway(store, sessionFor("emp2", models.RoleEmployee), zerolog.Nop())

	ok, msg := g.ClockIn(ctx, "s1")
	assert.False(t, ok)
	assert.Equal(t, faults.Message(faults.PermissionDenied), msg)
	assert.Equal(t, models.ShiftStatusScheduled, store.shifts["s1"].Status)
}

func TestCreateShiftRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	g := NewGateway(store, sessionFor("mgr1", models.RoleAdmin), zerolog.Nop())

	start := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	input := CreateInput{
		EmployeeID: "emp1",
		Start:      start,
		End:        start.Add(8 * time.Hour),
		Department: "ops",
		Notes:      "front desk",
	}

	id := g.CreateShift(ctx, input)
	require.NotEmpty(t, id)

	ok, _ := g.LoadShifts(ctx)
	require.True(t, ok)

	mirror := g.Shifts()
	require.Len(t, mirror, 1)
	created := mirror[0]
	assert.Equal(t, id, created.ID)
	assert.Equal(t, input.EmployeeID, created.EmployeeID)
	assert.Equal(t, input.Start, created.Start)
	assert.Equal(t, input.End, created.End)
	assert.Equal(t, input.Department, created.Department)
	assert.Equal(t, input.Notes, created.Notes)
	assert.Equal(t, models.ShiftStatusScheduled, created.Status)
	assert.Equal(t, "mgr1", created.CreatedBy)
	assert.False(t, created.CreatedAt.IsZero())
}

func TestCreateShiftWithoutSessionReturnsEmptyID(t *testing.T) {
	store := newFakeStore()
	g := NewGateway(store, noSession(), zerolog.Nop())

	id := g.CreateShift(context.Background(), CreateInput{EmployeeID: "emp1"})
	assert.Empty(t, id)
	assert.Empty(t, store.shifts)
}

func TestLoadShiftsIsRoleScoped(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	mine := scheduledShift("s1", "emp1", base.Add(2*time.Hour))
	other := scheduledShift("s2", "emp2", base)
	byMe := scheduledShift("s3", "emp3", base.Add(time.Hour))
	byMe.CreatedBy = "emp1"
	store.shifts["s1"] = mine
	store.shifts["s2"] = other
	store.shifts["s3"] = byMe

	employee := NewGateway(store, sessionFor("emp1", models.RoleEmployee), zerolog.Nop())
	ok, _ := employee.LoadShifts(ctx)
	require.True(t, ok)
	mirror := employee.Shifts()
	require.Len(t, mirror, 1)
	assert.Equal(t, "s1", mirror[0].ID, "employees query by employeeId")

	admin := NewGateway(store, sessionFor("emp1", models.RoleAdmin), zerolog.Nop())
	ok, _ = admin.LoadShifts(ctx)
	require.True(t, ok)
	mirror = admin.Shifts()
	require.Len(t, mirror, 1)
	assert.Equal(t, "s3", mirror[0].ID, "admins query by createdBy")
}

func TestLoadShiftsOrdersByStartAscending(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	store.shifts["late"] = scheduledShift("late", "emp1", base.Add(48*time.Hour))
	store.shifts["early"] = scheduledShift("early", "emp1", base)
	store.shifts["mid"] = scheduledShift("mid", "emp1", base.Add(24*time.Hour))

	g := NewGateway(store, sessionFor("emp1", models.RoleEmployee), zerolog.Nop())
	ok, _ := g.LoadShifts(ctx)
	require.True(t, ok)

	mirror := g.Shifts()
	require.Len(t, mirror, 3)
	assert.Equal(t, []string{"early", "mid", "late"}, []string{mirror[0].ID, mirror[1].ID, mirror[2].ID})
}

func TestLoadShiftsFailureKeepsPriorMirror(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.shifts["s1"] = scheduledShift("s1", "emp1", time.Now())

	g := NewGateway(store, sessionFor("emp1", models.RoleEmployee), zerolog.Nop())
	ok, _ := g.LoadShifts(ctx)
	require.True(t, ok)
	require.Len(t, g.Shifts(), 1)

	store.failAll = errors.New("connection refused")
	ok, msg := g.LoadShifts(ctx)
	assert.False(t, ok)
	assert.Equal(t, faults.Message(faults.NetworkUnavailable), msg)
	assert.Len(t, g.Shifts(), 1, "prior mirror must survive a failed load")
}

func TestLoadShiftsSignedOutClearsMirror(t *testing.T) {
	// A remote failure preserves the mirror, but signing out must not: the
	// next account on this device may not see the previous account's shifts.
	ctx := context.Background()
	store := newFakeStore()
	store.shifts["s1"] = scheduledShift("s1", "emp1", time.Now())

	source := &switchSession{snap: session.Snapshot{
		Session: &models.Session{UID: "emp1", Role: models.RoleEmployee},
	}}
	g := NewGateway(store, source, zerolog.Nop())
	ok, _ := g.LoadShifts(ctx)
	require.True(t, ok)
	require.Len(t, g.Shifts(), 1)

	source.snap = session.Snapshot{}
	ok, _ = g.LoadShifts(ctx)
	assert.False(t, ok)
	assert.Empty(t, g.Shifts())
}

func TestClockFailureLeavesMirrorUnchanged(t *testing.T) {
	ctx := context.Background()
	store := newFakeStore()
	store.shifts["s1"] = scheduledShift("s1", "emp1", time.Now())

	g := NewGateway(store, sessionFor("emp1", models.RoleEmployee), zerolog.Nop())
	ok, _ := g.LoadShifts(ctx)
	require.True(t, ok)

	store.failAll = errors.New("write unavailable")
	ok, _ = g.ClockIn(ctx, "s1")
	assert.False(t, ok)

	mirror := g.Shifts()
	require.Len(t, mirror, 1)
	assert.Equal(t, models.ShiftStatusScheduled, mirror[0].Status)
	assert.Nil(t, mirror[0].ClockIn)
}
