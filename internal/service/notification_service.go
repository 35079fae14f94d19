package service

import (
	"context"

	"Lee_Tube/internal/model"
	"Lee_Tube/internal/ws"

	"github.com/sirupsen/logrus"
)

// NotificationStore 通知持久化
type NotificationStore interface {
	Create(ctx context.Context, n *model.Notification) error
	ListByRecipient(ctx context.Context, recipientID uint64, cursor uint64, limit int) ([]model.Notification, uint64, error)
	CountUnread(ctx context.Context, recipientID uint64) (int64, error)
	MarkRead(ctx context.Context, recipientID uint64, ids []uint64) error
	MarkAllRead(ctx context.Context, recipientID uint64) error
}

type NotificationService struct {
	repo     NotificationStore
	registry ws.Registry
}

func NewNotificationService(repo NotificationStore, registry ws.Registry) *NotificationService {
	return &NotificationService{repo: repo, registry: registry}
}

// Notify 先落库再尽力推送。收件人不在线就静默丢弃；
// 任何失败只记日志，绝不回传给触发它的业务操作——
// 连接层的panic也在这里兜住，不准穿透到触发它的请求
func (s *NotificationService) Notify(ctx context.Context, n *model.Notification) {
	defer func() {
		if rec := recover(); rec != nil {
			logrus.Errorf("notification push panic: recipient=%d panic=%v", n.RecipientID, rec)
		}
	}()

	if s.repo != nil {
		if err := s.repo.Create(ctx, n); err != nil {
			logrus.Warnf("notification persist failed: recipient=%d err=%v", n.RecipientID, err)
		}
	}

	conn, ok := s.registry.Lookup(n.RecipientID)
	if !ok {
		return
	}
	ev := model.NotificationEvent{
		Event:      "newNotification",
		Type:       n.Type,
		ActorID:    n.ActorID,
		TargetKind: n.TargetKind,
		TargetID:   n.TargetID,
		Message:    n.Message,
	}
	if err := conn.WriteJSON(ev); err != nil {
		logrus.Warnf("notification push failed: recipient=%d err=%v", n.RecipientID, err)
	}
}

func (s *NotificationService) List(ctx context.Context, recipientID uint64, cursor uint64, limit int) ([]model.Notification, uint64, error) {
	return s.repo.ListByRecipient(ctx, recipientID, cursor, limit)
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID uint64) (int64, error) {
	return s.repo.CountUnread(ctx, recipientID)
}

func (s *NotificationService) MarkRead(ctx context.Context, recipientID uint64, ids []uint64) error {
	return s.repo.MarkRead(ctx, recipientID, ids)
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uint64) error {
	return s.repo.MarkAllRead(ctx, recipientID)
}
