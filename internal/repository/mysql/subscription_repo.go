package mysql

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"Lee_Tube/internal/model"
	"Lee_Tube/internal/pkg"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SubscriptionRepository struct {
	DB *gorm.DB
}

// SubscriberCountReconcilerRepo 订阅数对账仓储
type SubscriberCountReconcilerRepo struct {
	DB *gorm.DB
}

// ChannelCount 对账用的 (频道, 冗余计数) 对
type ChannelCount struct {
	ID              uint64
	SubscriberCount int64
}

func NewSubscriptionRepository() *SubscriptionRepository {
	return &SubscriptionRepository{DB: DB}
}

func NewSubscriberCountReconcilerRepo() *SubscriberCountReconcilerRepo {
	return &SubscriberCountReconcilerRepo{DB: DB}
}

// Toggle 订阅开关：行存在则退订，不存在则订阅，和反应台账一样靠唯一键裁决并发。
// 冗余的 users.subscriber_count 在同一事务里调整，偏差由对账任务兜底。
func (r *SubscriptionRepository) Toggle(ctx context.Context, subscriberKey string, subscriberID, channelID uint64) (bool, error) {
	var subscribed bool
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rel model.Subscription
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("subscriber_key=? AND channel_id=?", subscriberKey, channelID).
			First(&rel).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rel = model.Subscription{
				SubscriberKey: subscriberKey,
				SubscriberID:  subscriberID,
				ChannelID:     channelID,
				Notifications: true,
			}
			if err = tx.Create(&rel).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return pkg.ErrConflict
				}
				return err
			}
			subscribed = true
			if err = r.adjustCount(tx, channelID, +1); err != nil {
				return err
			}
			return r.insertOutbox(tx, "subscribe", subscriberKey, channelID)
		}
		if err != nil {
			return err
		}
		if err = tx.Delete(&model.Subscription{}, rel.ID).Error; err != nil {
			return err
		}
		subscribed = false
		if err = r.adjustCount(tx, channelID, -1); err != nil {
			return err
		}
		return r.insertOutbox(tx, "unsubscribe", subscriberKey, channelID)
	})
	return subscribed, err
}

func (r *SubscriptionRepository) IsSubscribed(ctx context.Context, subscriberKey string, channelID uint64) (bool, error) {
	var n int64
	if err := r.DB.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("subscriber_key=? AND channel_id=?", subscriberKey, channelID).
		Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// SetNotifications 通知开关独立于订阅本身
func (r *SubscriptionRepository) SetNotifications(ctx context.Context, subscriberKey string, channelID uint64, on bool) (int64, error) {
	tx := r.DB.WithContext(ctx).
		Model(&model.Subscription{}).
		Where("subscriber_key=? AND channel_id=?", subscriberKey, channelID).
		Update("notifications", on)
	return tx.RowsAffected, tx.Error
}

// ListSubscribers 频道的订阅者列表（游标分页，limit+1 探测下一页）
func (r *SubscriptionRepository) ListSubscribers(ctx context.Context, channelID uint64, cursor uint64, limit int) ([]model.Subscription, uint64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	q := r.DB.WithContext(ctx).Model(&model.Subscription{}).
		Where("channel_id=?", channelID)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	var rows []model.Subscription
	if err := q.Order("id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	var next uint64
	if len(rows) > limit {
		next = rows[limit-1].ID
		rows = rows[:limit]
	}
	return rows, next, nil
}

// ListSubscribedChannels 某个订阅者订阅的频道列表
func (r *SubscriptionRepository) ListSubscribedChannels(ctx context.Context, subscriberKey string, cursor uint64, limit int) ([]model.Subscription, uint64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	q := r.DB.WithContext(ctx).Model(&model.Subscription{}).
		Where("subscriber_key=?", subscriberKey)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	var rows []model.Subscription
	if err := q.Order("id DESC").Limit(limit + 1).Find(&rows).Error; err != nil {
		return nil, 0, err
	}
	var next uint64
	if len(rows) > limit {
		next = rows[limit-1].ID
		rows = rows[:limit]
	}
	return rows, next, nil
}

// ListNotifiableSubscriberIDs 开着通知开关的登录订阅者（新视频推送的收件人集合）。
// 匿名会话没有可达的收件箱，直接排除；limit 兜住超大频道的扇出
func (r *SubscriptionRepository) ListNotifiableSubscriberIDs(ctx context.Context, channelID uint64, limit int) ([]uint64, error) {
	if limit <= 0 || limit > 1000 {
		limit = 1000
	}
	var ids []uint64
	err := r.DB.WithContext(ctx).Model(&model.Subscription{}).
		Where("channel_id=? AND notifications=? AND subscriber_id > 0", channelID, true).
		Order("id").
		Limit(limit).
		Pluck("subscriber_id", &ids).Error
	return ids, err
}

func (r *SubscriptionRepository) adjustCount(tx *gorm.DB, channelID uint64, delta int64) error {
	return tx.Model(&model.User{}).
		Where("id=?", channelID).
		UpdateColumn("subscriber_count", gorm.Expr("GREATEST(0, subscriber_count + ?)", delta)).Error
}

func (r *SubscriptionRepository) insertOutbox(tx *gorm.DB, event, subscriberKey string, channelID uint64) error {
	payload, _ := json.Marshal(map[string]any{
		"event_time":     time.Now().UTC().Format(time.RFC3339Nano),
		"event_type":     event,
		"subscriber_key": subscriberKey,
		"channel_id":     channelID,
	})
	ob := &model.EngagementOutbox{
		EventType:  event,
		ActorKey:   subscriberKey,
		TargetKind: "channel",
		TargetID:   channelID,
		Payload:    string(payload),
		Status:     0,
	}
	return tx.Create(ob).Error
}

// ReconcileList 按主键游标分批取用户与其冗余订阅数
func (r *SubscriberCountReconcilerRepo) ReconcileList(ctx context.Context, batchSize int, lastID uint64) ([]ChannelCount, uint64, error) {
	var list []ChannelCount
	if err := r.DB.WithContext(ctx).Model(&model.User{}).
		Select("id", "subscriber_count").
		Where("id > ?", lastID).
		Order("id ASC").
		Limit(batchSize).
		Find(&list).Error; err != nil {
		return nil, lastID, err
	}
	if len(list) == 0 {
		return nil, lastID, nil
	}
	return list, list[len(list)-1].ID, nil
}

// RealSubscribers 订阅表里的真实数量
func (r *SubscriberCountReconcilerRepo) RealSubscribers(ctx context.Context, channelID uint64) (int64, error) {
	var n int64
	if err := r.DB.WithContext(ctx).Model(&model.Subscription{}).
		Where("channel_id=?", channelID).
		Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}

// ReconcileSubscribers 用真实值修正冗余计数
func (r *SubscriberCountReconcilerRepo) ReconcileSubscribers(ctx context.Context, channelID uint64, real int64) error {
	return r.DB.WithContext(ctx).Model(&model.User{}).Where("id=?", channelID).
		UpdateColumn("subscriber_count", real).Error
}
