package notification

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.uber.org/zap"

	"TaskFlow/internal/auth"
	"TaskFlow/internal/mail"
	"TaskFlow/internal/metrics"
	"TaskFlow/internal/store"
)

type notificationStore interface {
	CreateMany(ctx context.Context, ns []*Notification) error
	List(ctx context.Context, recipient primitive.ObjectID, unread *bool, lo store.ListOptions) (*store.Page[Notification], error)
	CountUnread(ctx context.Context, recipient primitive.ObjectID) (int64, error)
	MarkRead(ctx context.Context, recipient, id primitive.ObjectID, at time.Time) error
	MarkAllRead(ctx context.Context, recipient primitive.ObjectID, at time.Time) (int64, error)
	Delete(ctx context.Context, recipient, id primitive.ObjectID) error
	DeleteForRef(ctx context.Context, refType string, ids []primitive.ObjectID) (int64, error)
}

type userLookup interface {
	FindByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*auth.User, error)
}

type mailer interface {
	Send(ctx context.Context, to []string, subject, template string, data interface{}) error
}

// NotificationService stores in-app notifications and mails their recipients.
type NotificationService struct {
	repo    notificationStore
	users   userLookup
	mailer  mailer
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

func NewNotificationService(repo *NotificationRepository, users *auth.UserRepository, m *mail.Mailer, mt *metrics.Metrics, logger *zap.Logger) *NotificationService {
	return newNotificationService(repo, users, m, mt, logger)
}

func newNotificationService(repo notificationStore, users userLookup, m mailer, mt *metrics.Metrics, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		repo:    repo,
		users:   users,
		mailer:  m,
		metrics: mt,
		logger:  logger.Named("notification"),
		now:     time.Now,
	}
}

// Notify creates one notification per distinct recipient and, when n.Email
// is set, mails each of them. Mail failures are logged and never returned.
func (s *NotificationService) Notify(ctx context.Context, n Notice) error {
	recipients := store.UniqueIDs(n.Recipients, n.Exclude...)
	if len(recipients) == 0 {
		return nil
	}

	now := s.now()
	docs := make([]*Notification, 0, len(recipients))
	for _, r := range recipients {
		docs = append(docs, &Notification{
			ID:        primitive.NewObjectID(),
			Recipient: r,
			Kind:      n.Kind,
			Message:   n.Message,
			RefType:   n.Ref.Type,
			RefID:     store.IDPtr(n.Ref.ID),
			CreatedAt: now,
			UpdatedAt: now,
		})
	}
	if err := s.repo.CreateMany(ctx, docs); err != nil {
		return err
	}
	s.metrics.NotificationsTotal.WithLabelValues(n.Kind).Add(float64(len(docs)))
	s.logger.Debug("notifications created", zap.String("kind", n.Kind), zap.Int("count", len(docs)))

	if n.Email != nil {
		s.sendEmails(ctx, recipients, n.Email)
	}
	return nil
}

func (s *NotificationService) sendEmails(ctx context.Context, recipients []primitive.ObjectID, e *Email) {
	users, err := s.users.FindByIDs(ctx, recipients)
	if err != nil {
		s.logger.Warn("failed to load notification recipients", zap.Error(err))
		return
	}
	addrs := make([]string, 0, len(users))
	for _, u := range users {
		if u.Email != "" {
			addrs = append(addrs, u.Email)
		}
	}
	if len(addrs) == 0 {
		return
	}
	if err := s.mailer.Send(ctx, addrs, e.Subject, e.Template, e.Data); err != nil {
		s.logger.Warn("notification email failed", zap.String("template", e.Template), zap.Error(err))
	}
}

func (s *NotificationService) List(ctx context.Context, recipient primitive.ObjectID, unread *bool, lo store.ListOptions) (*store.Page[Notification], error) {
	return s.repo.List(ctx, recipient, unread, lo)
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	return s.repo.CountUnread(ctx, recipient)
}

// MarkRead returns store.ErrNotFound for notifications owned by someone else.
func (s *NotificationService) MarkRead(ctx context.Context, recipient, id primitive.ObjectID) error {
	return s.repo.MarkRead(ctx, recipient, id, s.now())
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipient primitive.ObjectID) (int64, error) {
	return s.repo.MarkAllRead(ctx, recipient, s.now())
}

func (s *NotificationService) Delete(ctx context.Context, recipient, id primitive.ObjectID) error {
	return s.repo.Delete(ctx, recipient, id)
}

// Forget drops the notifications pointing at deleted documents.
func (s *NotificationService) Forget(ctx context.Context, refType string, ids ...primitive.ObjectID) {
	if _, err := s.repo.DeleteForRef(ctx, refType, ids); err != nil {
		s.logger.Warn("failed to delete stale notifications", zap.String("ref_type", refType), zap.Error(err))
	}
}
