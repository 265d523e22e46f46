package store

import (
	"context"
	"time"

	"github.com/AdamBeresnev/bracket-admin/internal/notify"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type NotificationStore struct {
	db *sqlx.DB
}

func NewNotificationStore(db *sqlx.DB) *NotificationStore {
	return &NotificationStore{db: db}
}

func (s *NotificationStore) CreateNotifications(ctx context.Context, tx *sqlx.Tx, notes []notify.Notification) error {
	if len(notes) == 0 {
		return nil
	}
	_, err := tx.NamedExecContext(ctx, `INSERT INTO notifications (id, user_id, tournament_id, kind, message, created_at)
		VALUES (:id, :user_id, :tournament_id, :kind, :message, :created_at)`, notes)
	return err
}

func (s *NotificationStore) GetNotifications(ctx context.Context, userID uuid.UUID, unreadOnly bool, limit int) ([]notify.Notification, error) {
	var notes []notify.Notification
	query := "SELECT * FROM notifications WHERE user_id = ?"
	if unreadOnly {
		query += " AND read_at IS NULL"
	}
	query += " ORDER BY created_at DESC, rowid DESC LIMIT ?"
	err := s.db.SelectContext(ctx, &notes, query, userID, limit)
	return notes, err
}

// MarkRead returns sql.ErrNoRows when the notification is not the user's.
func (s *NotificationStore) MarkRead(ctx context.Context, userID, id uuid.UUID, at time.Time) error {
	res, err := s.db.ExecContext(ctx, "UPDATE notifications SET read_at = COALESCE(read_at, ?) WHERE id = ? AND user_id = ?", at, id, userID)
	if err != nil {
		return err
	}
	return expectRow(res)
}

func (s *NotificationStore) MarkAllRead(ctx context.Context, userID uuid.UUID, at time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE notifications SET read_at = ? WHERE user_id = ? AND read_at IS NULL", at, userID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}
