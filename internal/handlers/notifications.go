package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"worksync/api/internal/repository"
)

type notificationResponse struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Title     string    `json:"title"`
	Body      string    `json:"body"`
	Read      bool      `json:"read"`
	CreatedAt time.Time `json:"createdAt"`
}

func (h HandlerSet) ListNotifications(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	notifications, err := h.notifications.ListByRecipient(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Error().Err(err).Str("uid", user.ID).Msg("list notifications failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}

	unread, err := h.notifications.CountUnread(c.Request.Context(), user.ID)
	if err != nil {
		h.log.Warn().Err(err).Str("uid", user.ID).Msg("count unread failed")
	}

	items := make([]notificationResponse, 0, len(notifications))
	for _, n := range notifications {
		items = append(items, notificationResponse{
			ID:        n.ID,
			Type:      string(n.Type),
			Title:     n.Title,
			Body:      n.Body,
			Read:      n.Read,
			CreatedAt: n.CreatedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "unreadCount": unread})
}

func (h HandlerSet) MarkNotificationRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	err := h.notifications.MarkRead(c.Request.Context(), c.Param("id"), user.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotificationNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		h.log.Error().Err(err).Msg("mark notification read failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h HandlerSet) MarkAllNotificationsRead(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	if err := h.notifications.MarkAllRead(c.Request.Context(), user.ID); err != nil {
		h.log.Error().Err(err).Msg("mark all notifications read failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
