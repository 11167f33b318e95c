package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"worksync/api/internal/faults"
	"worksync/api/internal/ids"
	"worksync/api/internal/models"
	"worksync/api/internal/repository"
)

type shiftResponse struct {
	ID         string     `json:"id"`
	EmployeeID string     `json:"employeeId"`
	Start      time.Time  `json:"start"`
	End        time.Time  `json:"end"`
	Status     string     `json:"status"`
	Department string     `json:"department,omitempty"`
	Notes      string     `json:"notes,omitempty"`
	ClockIn    *time.Time `json:"clockIn,omitempty"`
	ClockOut   *time.Time `json:"clockOut,omitempty"`
	CreatedBy  string     `json:"createdBy"`
	CreatedAt  time.Time  `json:"createdAt"`
}

// ListShifts is role-scoped: employees get shifts assigned to them, admins
// and super-admins get shifts they created. Both orderings are by start
// ascending, done in the repository.
func (h HandlerSet) ListShifts(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var (
		shifts []models.Shift
		err    error
	)
	if models.ParseRole(user.Role) == models.RoleEmployee {
		shifts, err = h.shifts.ListByEmployee(c.Request.Context(), user.ID)
	} else {
		shifts, err = h.shifts.ListByCreator(c.Request.Context(), user.ID)
	}
	if err != nil {
		h.log.Error().Err(err).Str("uid", user.ID).Msg("list shifts failed")
		cat := faults.Classify(err)
		c.JSON(faults.HTTPStatus(cat), gin.H{"error": string(cat), "message": faults.Message(cat)})
		return
	}

	items := make([]shiftResponse, 0, len(shifts))
	for _, shift := range shifts {
		items = append(items, toShiftResponse(shift))
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

type createShiftRequest struct {
	EmployeeID string    `json:"employeeId" binding:"required"`
	Start      time.Time `json:"start" binding:"required"`
	End        time.Time `json:"end" binding:"required"`
	Department string    `json:"department"`
	Notes      string    `json:"notes"`
}

func (h HandlerSet) CreateShift(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	var req createShiftRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_argument", "message": err.Error()})
		return
	}
	if !req.End.After(req.Start) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_argument", "message": "shift end must be after start"})
		return
	}

	shift := models.Shift{
		ID:         ids.New(),
		EmployeeID: req.EmployeeID,
		Start:      req.Start,
		End:        req.End,
		Status:     models.ShiftStatusScheduled,
		Department: req.Department,
		Notes:      req.Notes,
		CreatedBy:  user.ID,
		CreatedAt:  time.Now(),
	}

	if err := h.shifts.Create(c.Request.Context(), shift); err != nil {
		h.log.Error().Err(err).Msg("create shift failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	h.notifyShiftAssigned(c, shift)

	c.JSON(http.StatusCreated, toShiftResponse(shift))
}

// ClockIn is permitted only for the assigned employee, and only while the
// shift is still scheduled.
func (h HandlerSet) ClockIn(c *gin.Context) {
	h.clock(c, models.ShiftStatusScheduled, h.shifts.SetClockIn)
}

// ClockOut is permitted only for the assigned employee, and only while the
// shift is in progress; a completed shift cannot be re-opened.
func (h HandlerSet) ClockOut(c *gin.Context) {
	h.clock(c, models.ShiftStatusInProgress, h.shifts.SetClockOut)
}

func (h HandlerSet) clock(c *gin.Context, required models.ShiftStatus, apply func(ctx context.Context, id string, at time.Time) error) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	shiftID := c.Param("id")
	shift, err := h.shifts.GetByID(c.Request.Context(), shiftID)
	if err != nil {
		if errors.Is(err, repository.ErrShiftNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		h.log.Error().Err(err).Str("shift_id", shiftID).Msg("load shift failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	if shift.EmployeeID != user.ID {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission_denied"})
		return
	}
	if shift.Status != required {
		c.JSON(http.StatusConflict, gin.H{"error": "invalid_status", "status": string(shift.Status)})
		return
	}

	if err := apply(c.Request.Context(), shiftID, time.Now()); err != nil {
		if errors.Is(err, repository.ErrShiftStateConflict) {
			c.JSON(http.StatusConflict, gin.H{"error": "invalid_status"})
			return
		}
		h.log.Error().Err(err).Str("shift_id", shiftID).Msg("clock update failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	updated, err := h.shifts.GetByID(c.Request.Context(), shiftID)
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
		return
	}
	c.JSON(http.StatusOK, toShiftResponse(updated))
}

func (h HandlerSet) notifyShiftAssigned(c *gin.Context, shift models.Shift) {
	n := models.Notification{
		ID:        ids.New(),
		Type:      models.NotificationShiftAssigned,
		Title:     "New shift assigned",
		Body:      "You have a shift starting " + shift.Start.Format(time.RFC1123) + ".",
		Recipient: shift.EmployeeID,
		CreatedAt: time.Now(),
	}
	if err := h.notifications.Create(c.Request.Context(), n); err != nil {
		h.log.Warn().Err(err).Str("shift_id", shift.ID).Msg("shift assigned notification failed")
	}
}

func toShiftResponse(shift models.Shift) shiftResponse {
	return shiftResponse{
		ID:         shift.ID,
		EmployeeID: shift.EmployeeID,
		Start:      shift.Start,
		End:        shift.End,
		Status:     string(shift.Status),
		Department: shift.Department,
		Notes:      shift.Notes,
		ClockIn:    shift.ClockIn,
		ClockOut:   shift.ClockOut,
		CreatedBy:  shift.CreatedBy,
		CreatedAt:  shift.CreatedAt,
	}
}
