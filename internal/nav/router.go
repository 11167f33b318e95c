// Package nav maps the current session to the set of navigable screens.
// The mapping is a static table consumed by pure functions, so it is
// testable without any navigation framework.
package nav

import (
	"worksync/api/internal/models"
	"worksync/api/internal/session"
)

type Screen string

const (
	// ScreenLoading is the neutral waiting state shown while the session
	// is still resolving; it is never part of any role's screen set.
	ScreenLoading        Screen = "loading"
	ScreenLogin          Screen = "login"
	ScreenHome           Screen = "home"
	ScreenCreateAdmin    Screen = "create_admin"
	ScreenCreateEmployee Screen = "create_employee"
	ScreenCreateShift    Screen = "create_shift"
	ScreenShiftsCalendar Screen = "shifts_calendar"
	ScreenSuccess        Screen = "success"
)

var screensByRole = map[models.Role][]Screen{
	models.RoleSuperAdmin: {ScreenHome, ScreenCreateAdmin, ScreenSuccess},
	models.RoleAdmin:      {ScreenHome, ScreenCreateEmployee, ScreenCreateShift, ScreenSuccess},
	models.RoleEmployee:   {ScreenHome, ScreenShiftsCalendar},
}

// Screens returns the navigable screen set for a snapshot. While loading
// nothing is navigable, even if a tentative cached session is present:
// the preview must never unlock a role-gated screen.
func Screens(snap session.Snapshot) []Screen {
	if snap.Loading {
		return nil
	}
	if snap.Session == nil {
		return []Screen{ScreenLogin}
	}

	screens := screensByRole[snap.Session.Role]
	out := make([]Screen, len(screens))
	copy(out, screens)
	return out
}

// CanNavigate reports whether a screen is reachable in the given snapshot.
func CanNavigate(snap session.Snapshot, screen Screen) bool {
	for _, s := range Screens(snap) {
		if s == screen {
			return true
		}
	}
	return false
}

// HomeScreen returns the landing screen for a snapshot: the waiting state
// while the session resolves, login when unauthenticated, home otherwise.
func HomeScreen(snap session.Snapshot) Screen {
	if snap.Loading {
		return ScreenLoading
	}
	if snap.Session == nil {
		return ScreenLogin
	}
	return ScreenHome
}
