package models

import "time"

type NotificationType string

const (
	NotificationShiftReminder  NotificationType = "shift_reminder"
	NotificationShiftAssigned  NotificationType = "shift_assigned"
	NotificationShiftChanged   NotificationType = "shift_changed"
	NotificationShiftCancelled NotificationType = "shift_cancelled"
	NotificationAdminMessage   NotificationType = "admin_message"
	NotificationSystem         NotificationType = "system"
)

type Notification struct {
	ID        string
	Type      NotificationType
	Title     string
	Body      string
	Recipient string
	Read      bool
	CreatedAt time.Time
}
