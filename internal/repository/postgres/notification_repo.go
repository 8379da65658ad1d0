package postgres

import (
	"context"

	"github.com/and161185/inkwell/internal/model"
)

// NotificationRepo implements NotificationRepository using PostgreSQL.
type NotificationRepo struct{ db *DB }

// NewNotificationRepo constructs a notification repository.
func NewNotificationRepo(db *DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Create inserts an unread notification.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	const q = `
INSERT INTO notifications (user_id, message, is_read)
VALUES ($1, $2, false)
RETURNING id, created_at`
	n.IsRead = false
	return r.db.Pool.QueryRow(ctx, q, n.UserID, n.Message).Scan(&n.ID, &n.CreatedAt)
}

// ListUnread returns a page of unread notifications, oldest first.
func (r *NotificationRepo) ListUnread(ctx context.Context, userID int64, limit, offset int) ([]model.Notification, error) {
	const q = `
SELECT id, user_id, message, is_read, created_at
FROM notifications
WHERE user_id=$1 AND NOT is_read
ORDER BY created_at ASC, id ASC
LIMIT $2 OFFSET $3`
	rows, err := r.db.Pool.Query(ctx, q, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Notification
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(&n.ID, &n.UserID, &n.Message, &n.IsRead, &n.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	return out, rows.Err()
}

// MarkRead flags the given notifications of userID as read.
func (r *NotificationRepo) MarkRead(ctx context.Context, userID int64, ids []int64) (int64, error) {
	const q = `UPDATE notifications SET is_read=true WHERE user_id=$1 AND id = ANY($2)`
	tag, err := r.db.Pool.Exec(ctx, q, userID, ids)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
