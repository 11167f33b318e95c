package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"worksync/api/internal/faults"
	"worksync/api/internal/models"
	"worksync/api/internal/security"
)

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type userResponse struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"displayName"`
	Role        string `json:"role"`
	Department  string `json:"department,omitempty"`
}

type loginResponse struct {
	AccessToken string       `json:"accessToken"`
	User        userResponse `json:"user"`
}

func (h HandlerSet) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	id, err := h.identity.SignInWithPassword(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		cat := faults.Classify(err)
		c.JSON(faults.HTTPStatus(cat), gin.H{"error": string(cat), "message": faults.Message(cat)})
		return
	}

	user, err := h.users.GetByID(c.Request.Context(), id.UID)
	if err != nil {
		cat := faults.Classify(err)
		c.JSON(faults.HTTPStatus(cat), gin.H{"error": string(cat), "message": faults.Message(cat)})
		return
	}

	role := models.ParseRole(user.Role)
	token, err := security.GenerateAccessToken(
		h.cfg.Security.JWTAccessSecret,
		user.ID,
		string(role),
		h.cfg.Security.JWTAccessTTL,
	)
	if err != nil {
		h.log.Error().Err(err).Msg("issue access token failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "token_issue_failed"})
		return
	}

	c.JSON(http.StatusOK, loginResponse{
		AccessToken: token,
		User:        toUserResponse(user),
	})
}

func (h HandlerSet) Logout(c *gin.Context) {
	if err := h.identity.SignOut(c.Request.Context()); err != nil {
		h.log.Warn().Err(err).Msg("sign out failed")
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type resetPasswordRequest struct {
	Email string `json:"email" binding:"required,email"`
}

func (h HandlerSet) ResetPassword(c *gin.Context) {
	var req resetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Always report success so the endpoint cannot be used to probe which
	// emails have accounts.
	if err := h.identity.SendPasswordResetEmail(c.Request.Context(), req.Email); err != nil {
		h.log.Warn().Err(err).Msg("password reset request failed")
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

type resetPasswordConfirmRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

// ResetPasswordConfirm completes the reset flow: the token issued by
// ResetPassword is exchanged for a new password.
func (h HandlerSet) ResetPasswordConfirm(c *gin.Context) {
	var req resetPasswordConfirmRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.identity.ConfirmPasswordReset(c.Request.Context(), req.Email, req.Token, req.NewPassword); err != nil {
		cat := faults.Classify(err)
		c.JSON(faults.HTTPStatus(cat), gin.H{"error": string(cat), "message": faults.Message(cat)})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h HandlerSet) Me(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}
	c.JSON(http.StatusOK, toUserResponse(user))
}

func toUserResponse(user models.User) userResponse {
	resp := userResponse{
		ID:          user.ID,
		Email:       user.Email,
		DisplayName: user.DisplayName,
		Role:        string(models.ParseRole(user.Role)),
	}
	if user.Department != nil {
		resp.Department = *user.Department
	}
	return resp
}
