package notification

import (
	"context"
	"encoding/json"

	"github.com/jmoiron/sqlx"
)

type Repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// NotifyUser appends one notification record for the given user. Metadata
// carries a reference to the originating entity (booking id, request id).
func (r *Repository) NotifyUser(ctx context.Context, userID int, ntype Type, title, message string, priority Priority, metadata map[string]interface{}) error {
	meta, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO notifications (user_id, type, title, message, priority, read, metadata)
		VALUES ($1, $2, $3, $4, $5, false, $6)
	`, userID, ntype, title, message, priority, meta)
	return err
}

// NotifyAdmins appends one record to the shared admin inbox.
func (r *Repository) NotifyAdmins(ctx context.Context, ntype Type, title, message string, priority Priority, metadata map[string]interface{}) error {
	meta, err := json.Marshal(metadata)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO admin_notifications (type, title, message, priority, read, metadata)
		VALUES ($1, $2, $3, $4, false, $5)
	`, ntype, title, message, priority, meta)
	return err
}

func (r *Repository) ListForUser(ctx context.Context, userID, limit, offset int) ([]Notification, error) {
	if limit <= 0 {
		limit = 50
	}

	var notifications []Notification
	err := r.db.SelectContext(ctx, &notifications, `
		SELECT id, user_id, type, title, message, priority, read, metadata, created_at
		FROM notifications
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2 OFFSET $3
	`, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *Repository) ListForAdmins(ctx context.Context, limit, offset int) ([]AdminNotification, error) {
	if limit <= 0 {
		limit = 50
	}

	var notifications []AdminNotification
	err := r.db.SelectContext(ctx, &notifications, `
		SELECT id, type, title, message, priority, read, metadata, created_at
		FROM admin_notifications
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`, limit, offset)
	if err != nil {
		return nil, err
	}

	return notifications, nil
}

func (r *Repository) MarkRead(ctx context.Context, userID, notificationID int) error {
	_, err := r.db.ExecContext(ctx, `
		UPDATE notifications
		SET read = true
		WHERE id = $1 AND user_id = $2
	`, notificationID, userID)
	return err
}
