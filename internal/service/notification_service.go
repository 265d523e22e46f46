package service

import (
	"context"
	"fmt"

	"github.com/AdamBeresnev/bracket-admin/internal/logger"
	"github.com/AdamBeresnev/bracket-admin/internal/notify"
	"github.com/AdamBeresnev/bracket-admin/internal/store"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/jonboulle/clockwork"
)

const notificationPageSize = 50

type NotificationService struct {
	db       *sqlx.DB
	store    *store.NotificationStore
	users    *store.UserStore
	mailer   notify.Mailer
	renderer *notify.Renderer
	clock    clockwork.Clock
}

func NewNotificationService(db *sqlx.DB, store *store.NotificationStore, users *store.UserStore, mailer notify.Mailer, renderer *notify.Renderer, clock clockwork.Clock) *NotificationService {
	return &NotificationService{db: db, store: store, users: users, mailer: mailer, renderer: renderer, clock: clock}
}

func (s *NotificationService) New(userID uuid.UUID, tournamentID *uuid.UUID, kind notify.Kind, format string, args ...interface{}) notify.Notification {
	return notify.Notification{
		ID:           uuid.New(),
		UserID:       userID,
		TournamentID: tournamentID,
		Kind:         kind,
		Message:      fmt.Sprintf(format, args...),
		CreatedAt:    s.clock.Now().UTC(),
	}
}

// Queue stores notifications in the caller's transaction.
func (s *NotificationService) Queue(ctx context.Context, tx *sqlx.Tx, notes []notify.Notification) error {
	if err := s.store.CreateNotifications(ctx, tx, notes); err != nil {
		return fmt.Errorf("failed to store notifications: %w", err)
	}
	return nil
}

// Deliver emails notifications that were committed. Failures are logged, the
// notification itself stays readable in the app.
func (s *NotificationService) Deliver(ctx context.Context, notes []notify.Notification) {
	if len(notes) == 0 || s.mailer == nil || s.renderer == nil {
		return
	}

	ids := make([]uuid.UUID, 0, len(notes))
	for _, n := range notes {
		ids = append(ids, n.UserID)
	}
	emails, err := s.users.GetEmails(ctx, ids)
	if err != nil {
		logger.Error("failed to load notification recipients", "error", err)
		return
	}

	for _, n := range notes {
		to, ok := emails[n.UserID]
		if !ok {
			continue
		}
		msg, err := s.renderer.Render(n, "")
		if err != nil {
			logger.Error("failed to render notification", "notification", n.ID, "error", err)
			continue
		}
		msg.To = to
		if err := s.mailer.Send(ctx, msg); err != nil {
			logger.Warn("failed to send notification email", "notification", n.ID, "error", err)
		}
	}
}

func (s *NotificationService) List(ctx context.Context, userID uuid.UUID, unreadOnly bool) ([]notify.Notification, error) {
	return s.store.GetNotifications(ctx, userID, unreadOnly, notificationPageSize)
}

func (s *NotificationService) MarkRead(ctx context.Context, userID, id uuid.UUID) error {
	return notFound(s.store.MarkRead(ctx, userID, id, s.clock.Now().UTC()), ErrNotificationMissing)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, userID uuid.UUID) (int64, error) {
	return s.store.MarkAllRead(ctx, userID, s.clock.Now().UTC())
}
