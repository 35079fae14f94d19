package service

import (
	"context"
	"errors"

	"Lee_Tube/internal/model"
	"Lee_Tube/internal/pkg"
)

// SubscriptionStore 订阅关系持久化
type SubscriptionStore interface {
	Toggle(ctx context.Context, subscriberKey string, subscriberID, channelID uint64) (bool, error)
	IsSubscribed(ctx context.Context, subscriberKey string, channelID uint64) (bool, error)
	SetNotifications(ctx context.Context, subscriberKey string, channelID uint64, on bool) (int64, error)
	ListSubscribers(ctx context.Context, channelID uint64, cursor uint64, limit int) ([]model.Subscription, uint64, error)
	ListSubscribedChannels(ctx context.Context, subscriberKey string, cursor uint64, limit int) ([]model.Subscription, uint64, error)
}

// ChannelChecker 频道存在性检查（频道就是用户）
type ChannelChecker interface {
	Exists(ctx context.Context, id uint64) (bool, error)
}

type SubscriptionService struct {
	repo     SubscriptionStore
	channels ChannelChecker
	notifier Notifier
}

func NewSubscriptionService(repo SubscriptionStore, channels ChannelChecker, notifier Notifier) *SubscriptionService {
	return &SubscriptionService{repo: repo, channels: channels, notifier: notifier}
}

// Toggle 订阅开关。登录用户不能订阅自己的频道；
// 未登录时用会话ID顶替订阅者身份，和反应台账同一套身份空间约定
func (s *SubscriptionService) Toggle(ctx context.Context, subscriberKey string, subscriberID, channelID uint64) (bool, error) {
	if channelID == 0 || subscriberKey == "" {
		return false, pkg.ErrInvalidArgument
	}
	if subscriberID != 0 && subscriberID == channelID {
		return false, pkg.ErrInvalidArgument.WithMessage("cannot subscribe to own channel")
	}
	exists, err := s.channels.Exists(ctx, channelID)
	if err != nil {
		return false, err
	}
	if !exists {
		return false, pkg.ErrNotFound.WithMessage("channel not found")
	}

	subscribed, err := s.repo.Toggle(ctx, subscriberKey, subscriberID, channelID)
	if errors.Is(err, pkg.ErrConflict) {
		subscribed, err = s.repo.Toggle(ctx, subscriberKey, subscriberID, channelID)
	}
	if err != nil {
		return false, err
	}

	if subscribed && s.notifier != nil && subscriberID != 0 {
		s.notifier.Notify(ctx, &model.Notification{
			RecipientID: channelID,
			ActorID:     subscriberID,
			Type:        model.NotifySubscribe,
			Message:     "you have a new subscriber",
		})
	}
	return subscribed, nil
}

func (s *SubscriptionService) IsSubscribed(ctx context.Context, subscriberKey string, channelID uint64) (bool, error) {
	if channelID == 0 || subscriberKey == "" {
		return false, pkg.ErrInvalidArgument
	}
	return s.repo.IsSubscribed(ctx, subscriberKey, channelID)
}

// SetNotifications 通知开关，前提是订阅关系存在
func (s *SubscriptionService) SetNotifications(ctx context.Context, subscriberKey string, channelID uint64, on bool) error {
	if channelID == 0 || subscriberKey == "" {
		return pkg.ErrInvalidArgument
	}
	affected, err := s.repo.SetNotifications(ctx, subscriberKey, channelID, on)
	if err != nil {
		return err
	}
	if affected == 0 {
		// 可能未订阅，也可能开关已是目标值；未订阅才需要报错
		subscribed, err := s.repo.IsSubscribed(ctx, subscriberKey, channelID)
		if err != nil {
			return err
		}
		if !subscribed {
			return pkg.ErrNotFound.WithMessage("not subscribed")
		}
	}
	return nil
}

func (s *SubscriptionService) ListSubscribers(ctx context.Context, channelID uint64, cursor uint64, limit int) ([]model.Subscription, uint64, error) {
	if channelID == 0 {
		return nil, 0, pkg.ErrInvalidArgument
	}
	return s.repo.ListSubscribers(ctx, channelID, cursor, limit)
}

func (s *SubscriptionService) ListSubscribedChannels(ctx context.Context, subscriberKey string, cursor uint64, limit int) ([]model.Subscription, uint64, error) {
	if subscriberKey == "" {
		return nil, 0, pkg.ErrInvalidArgument
	}
	return s.repo.ListSubscribedChannels(ctx, subscriberKey, cursor, limit)
}
