package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"worksync/api/internal/ids"
	"worksync/api/internal/models"
	"worksync/api/internal/security"
)

// creatableBy is the who-may-create-whom table: one generic account
// creation operation replaces separate admin/employee endpoints.
var creatableBy = map[models.Role][]models.Role{
	models.RoleAdmin:    {models.RoleSuperAdmin},
	models.RoleEmployee: {models.RoleAdmin, models.RoleSuperAdmin},
}

func canCreate(caller models.Role, target models.Role) bool {
	for _, allowed := range creatableBy[target] {
		if caller == allowed {
			return true
		}
	}
	return false
}

type createAccountRequest struct {
	Name       string `json:"name" binding:"required"`
	Email      string `json:"email" binding:"required,email"`
	Password   string `json:"password" binding:"required,min=8"`
	Role       string `json:"role" binding:"required"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	Department string `json:"department"`
}

// CreateAccount provisions a privileged account of the requested target
// role, subject to the capability table: super-admins create admins,
// admins and super-admins create employees.
func (h HandlerSet) CreateAccount(c *gin.Context) {
	caller, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthenticated"})
		return
	}

	var req createAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_argument", "message": err.Error()})
		return
	}

	target := models.ParseRole(req.Role)
	if string(target) != req.Role {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_argument", "message": "unknown role"})
		return
	}
	if !canCreate(models.ParseRole(caller.Role), target) {
		c.JSON(http.StatusForbidden, gin.H{"error": "permission_denied"})
		return
	}

	email := strings.TrimSpace(strings.ToLower(req.Email))
	passwordHash, err := security.HashPassword(req.Password)
	if err != nil {
		h.log.Error().Err(err).Msg("hash password failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	user := models.User{
		ID:           ids.New(),
		Email:        email,
		PasswordHash: passwordHash,
		DisplayName:  req.Name,
		Role:         string(target),
		Phone:        req.Phone,
		Address:      req.Address,
		CreatedBy:    &caller.ID,
	}
	if req.Department != "" {
		user.Department = &req.Department
	}

	if err := h.users.Create(c.Request.Context(), user); err != nil {
		h.log.Error().Err(err).Str("email", email).Msg("create account failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	h.notifyAccountCreated(c, caller, user)

	c.JSON(http.StatusCreated, gin.H{"uid": user.ID, "email": user.Email})
}

func (h HandlerSet) notifyAccountCreated(c *gin.Context, caller models.User, user models.User) {
	n := models.Notification{
		ID:        ids.New(),
		Type:      models.NotificationSystem,
		Title:     "Welcome to WorkSync",
		Body:      "Your account was created by " + caller.DisplayName + ".",
		Recipient: user.ID,
		CreatedAt: time.Now(),
	}
	if err := h.notifications.Create(c.Request.Context(), n); err != nil {
		h.log.Warn().Err(err).Str("uid", user.ID).Msg("welcome notification failed")
	}
}
