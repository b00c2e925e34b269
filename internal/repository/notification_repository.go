package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/stagebook/internal/model"
)

// NotificationRepo manages persistence for in-app notifications.
type NotificationRepo struct{ db *sql.DB }

func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// Create inserts an unread notification and sets its ID.
func (r *NotificationRepo) Create(ctx context.Context, n *model.Notification) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO notifications (type, user_id, event_id, performance_id, title, message, action_url)
		 VALUES (?,?,?,?,?,?,?)`,
		string(n.Type), n.UserID, nullUint(n.EventID), nullUint(n.PerformanceID),
		n.Title, n.Message, nullString(n.ActionURL))
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	n.ID = uint64(id)
	return nil
}

// ListUnread returns the user's unread notifications newest first.  The
// event title comes from the linked event, or from the performance's
// event when only a performance is linked.
func (r *NotificationRepo) ListUnread(ctx context.Context, userID uint64) ([]model.NotificationView, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT n.id, n.type, n.user_id, n.event_id, n.performance_id, n.title, n.message,
				n.is_read, n.read_at, n.action_url, n.created_at,
				COALESCE(e.title, pe.title), a.name
		   FROM notifications n
		   LEFT JOIN events e        ON e.id = n.event_id
		   LEFT JOIN performances p  ON p.id = n.performance_id
		   LEFT JOIN events pe       ON pe.id = p.event_id
		   LEFT JOIN artists a       ON a.id = p.artist_id
		  WHERE n.user_id = ? AND n.is_read = FALSE
		  ORDER BY n.created_at DESC, n.id DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.NotificationView
	for rows.Next() {
		var (
			v                  model.NotificationView
			typ                string
			eventID, perfID    sql.NullInt64
			readAt             sql.NullTime
			actionURL          sql.NullString
			eventTitle, artist sql.NullString
		)
		if err := rows.Scan(&v.ID, &typ, &v.UserID, &eventID, &perfID, &v.Title, &v.Message,
			&v.IsRead, &readAt, &actionURL, &v.CreatedAt, &eventTitle, &artist); err != nil {
			return nil, err
		}
		v.Type = model.NotificationType(typ)
		v.EventID = uintPtr(eventID)
		v.PerformanceID = uintPtr(perfID)
		v.ReadAt = timePtr(readAt)
		v.ActionURL = stringPtr(actionURL)
		v.EventTitle = stringPtr(eventTitle)
		v.ArtistName = stringPtr(artist)
		out = append(out, v)
	}
	return out, rows.Err()
}

// MarkRead marks one notification read if it belongs to userID.  It
// reports whether a row matched.
func (r *NotificationRepo) MarkRead(ctx context.Context, id, userID uint64, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = ? WHERE id = ? AND user_id = ? AND is_read = FALSE`,
		at.UTC(), id, userID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// MarkAllRead marks every unread notification of userID read.
func (r *NotificationRepo) MarkAllRead(ctx context.Context, userID uint64, at time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE notifications SET is_read = TRUE, read_at = ? WHERE user_id = ? AND is_read = FALSE`,
		at.UTC(), userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
