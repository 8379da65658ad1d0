package service

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/inkwell/internal/errs"
	"github.com/and161185/inkwell/internal/model"
	"github.com/and161185/inkwell/internal/repository"
)

const (
	defaultNotificationPage = 10
	maxNotificationPage     = 100
	maxNotificationLen      = 500
)

// Notifier pushes a stored notification to an outer channel (websocket, broker).
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

// NotificationSender persists and delivers a message to a user.
type NotificationSender interface {
	Send(ctx context.Context, userID int64, message string) (*model.Notification, error)
}

// NotificationService manages per-user notifications.
type NotificationService interface {
	NotificationSender
	Unread(ctx context.Context, userID int64, limit, offset int) ([]model.Notification, error)
	MarkRead(ctx context.Context, userID int64, ids []int64) (int64, error)
}

// NotificationServiceImpl implements NotificationService.
type NotificationServiceImpl struct {
	repo      repository.NotificationRepository
	notifiers []Notifier
	log       *zap.Logger
}

// NewNotificationService constructs NotificationService. Nil notifiers are skipped.
func NewNotificationService(repo repository.NotificationRepository, log *zap.Logger, notifiers ...Notifier) *NotificationServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	s := &NotificationServiceImpl{repo: repo, log: log}
	for _, n := range notifiers {
		if n != nil {
			s.notifiers = append(s.notifiers, n)
		}
	}
	return s
}

var _ NotificationService = (*NotificationServiceImpl)(nil)

// Send stores the notification and pushes it to every notifier.
// Push failures are logged; the stored row is the source of truth.
func (s *NotificationServiceImpl) Send(ctx context.Context, userID int64, message string) (*model.Notification, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return nil, validationf("message is required")
	}
	if r := []rune(message); len(r) > maxNotificationLen {
		message = string(r[:maxNotificationLen])
	}
	n := &model.Notification{UserID: userID, Message: message}
	if err := s.repo.Create(ctx, n); err != nil {
		return nil, err
	}
	for _, nt := range s.notifiers {
		if err := nt.Notify(ctx, *n); err != nil {
			s.log.Warn("notification push failed",
				zap.Int64("notification_id", n.ID),
				zap.Int64("user_id", userID),
				zap.Error(err),
			)
		}
	}
	return n, nil
}

// Unread lists unread notifications, newest first. An empty page is errs.ErrNotFound.
func (s *NotificationServiceImpl) Unread(ctx context.Context, userID int64, limit, offset int) ([]model.Notification, error) {
	limit, offset = clampPage(limit, offset, defaultNotificationPage, maxNotificationPage)
	list, err := s.repo.ListUnread(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, errs.ErrNotFound
	}
	return list, nil
}

// MarkRead marks ids as read. Ids of other users are ignored; if none match, errs.ErrNotFound.
func (s *NotificationServiceImpl) MarkRead(ctx context.Context, userID int64, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, validationf("ids are required")
	}
	n, err := s.repo.MarkRead(ctx, userID, ids)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, errs.ErrNotFound
	}
	return n, nil
}

// notify is best effort: content operations succeed even if the notification cannot be stored.
func notify(ctx context.Context, s NotificationSender, log *zap.Logger, userID int64, msg string) {
	if s == nil {
		return
	}
	if _, err := s.Send(ctx, userID, msg); err != nil {
		log.Warn("notification not sent", zap.Int64("user_id", userID), zap.Error(err))
	}
}
