package sqlite

import (
	"database/sql"
	"time"

	"github.com/wildtrail/wildtrail/internal/domain"
)

// ─── Notifications ──────────────────────────────────────────────────────────

// InsertNotification creates a new notification.
func (d *DB) InsertNotification(n domain.Notification) (int64, error) {
	result, err := d.db.Exec(
		`INSERT INTO notifications (user_id, type, title, body, created_at, shown)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		n.UserID, string(n.Type), n.Title, n.Body, unixMilli(n.CreatedAt), n.Shown,
	)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

// NotificationCountSince returns how many notifications userID received at
// or after since. Callers pass the start of the local day.
func (d *DB) NotificationCountSince(userID string, since time.Time) (int, error) {
	var count int
	err := d.db.QueryRow(
		`SELECT COUNT(*) FROM notifications WHERE user_id = ? AND created_at >= ?`,
		userID, unixMilli(since),
	).Scan(&count)
	return count, err
}

// ListPendingNotifications returns unshown notifications, newest first.
func (d *DB) ListPendingNotifications(userID string, limit int) ([]domain.Notification, error) {
	rows, err := d.db.Query(
		`SELECT id, user_id, type, title, body, created_at, shown
		 FROM notifications WHERE user_id = ? AND shown = 0
		 ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notifs []domain.Notification
	for rows.Next() {
		n, err := scanNotifRows(rows)
		if err != nil {
			return nil, err
		}
		notifs = append(notifs, *n)
	}
	return notifs, rows.Err()
}

// MarkNotificationShown marks one of userID's notifications as shown.
// Returns false when userID has no notification with that id.
func (d *DB) MarkNotificationShown(userID string, id int64) (bool, error) {
	result, err := d.db.Exec(`UPDATE notifications SET shown = 1 WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return false, err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func scanNotifRows(rows *sql.Rows) (*domain.Notification, error) {
	var n domain.Notification
	var createdAt int64
	err := rows.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Body, &createdAt, &n.Shown)
	if err != nil {
		return nil, err
	}
	n.CreatedAt = fromUnixMilli(createdAt)
	return &n, nil
}
