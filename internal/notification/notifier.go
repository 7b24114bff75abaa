package notification

import "context"

// Notifier is the sink every user-visible lifecycle transition writes to.
type Notifier interface {
	NotifyUser(ctx context.Context, userID int, ntype Type, title, message string, priority Priority, metadata map[string]interface{}) error
	NotifyAdmins(ctx context.Context, ntype Type, title, message string, priority Priority, metadata map[string]interface{}) error
}

var _ Notifier = (*Repository)(nil)
