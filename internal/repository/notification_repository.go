package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"worksync/api/internal/models"
)

var ErrNotificationNotFound = errors.New("notification not found")

type NotificationRepository struct {
	pool *pgxpool.Pool
}

func NewNotificationRepository(pool *pgxpool.Pool) *NotificationRepository {
	return &NotificationRepository{pool: pool}
}

func (r *NotificationRepository) Create(ctx context.Context, n models.Notification) error {
	const query = `
		INSERT INTO notifications (
			id, type, title, body, recipient, read, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7
		)
	`

	_, err := r.pool.Exec(ctx, query,
		n.ID,
		n.Type,
		n.Title,
		n.Body,
		n.Recipient,
		n.Read,
		n.CreatedAt,
	)
	return err
}

func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipient string) ([]models.Notification, error) {
	const query = `
		SELECT id, type, title, body, recipient, read, created_at
		FROM notifications
		WHERE recipient = $1
		ORDER BY created_at DESC
	`

	rows, err := r.pool.Query(ctx, query, recipient)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifications []models.Notification
	for rows.Next() {
		var n models.Notification
		if err := rows.Scan(&n.ID, &n.Type, &n.Title, &n.Body, &n.Recipient, &n.Read, &n.CreatedAt); err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, rows.Err()
}

func (r *NotificationRepository) MarkRead(ctx context.Context, id string, recipient string) error {
	const query = `UPDATE notifications SET read = TRUE WHERE id = $1 AND recipient = $2`
	cmd, err := r.pool.Exec(ctx, query, id, recipient)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipient string) error {
	const query = `UPDATE notifications SET read = TRUE WHERE recipient = $1 AND read = FALSE`
	_, err := r.pool.Exec(ctx, query, recipient)
	return err
}

func (r *NotificationRepository) CountUnread(ctx context.Context, recipient string) (int, error) {
	const query = `SELECT COUNT(*) FROM notifications WHERE recipient = $1 AND read = FALSE`
	var count int
	if err := r.pool.QueryRow(ctx, query, recipient).Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}
