package mysql

import (
	"context"

	"Lee_Tube/internal/model"

	"gorm.io/gorm"
)

type NotificationRepository struct {
	DB *gorm.DB
}

func NewNotificationRepository() *NotificationRepository {
	return &NotificationRepository{DB: DB}
}

func (r *NotificationRepository) Create(ctx context.Context, n *model.Notification) error {
	return r.DB.WithContext(ctx).Create(n).Error
}

// ListByRecipient 通知列表，游标分页
func (r *NotificationRepository) ListByRecipient(ctx context.Context, recipientID uint64, cursor uint64, limit int) ([]model.Notification, uint64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	q := r.DB.WithContext(ctx).Model(&model.Notification{}).
		Where("recipient_id=?", recipientID)
	if cursor > 0 {
		q = q.Where("id < ?", cursor)
	}
	var rows []model.Notification
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

func (r *NotificationRepository) CountUnread(ctx context.Context, recipientID uint64) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&model.Notification{}).
		Where("recipient_id=? AND is_read=false", recipientID).
		Count(&n).Error
	return n, err
}

// MarkRead 只允许本人标记自己的通知
func (r *NotificationRepository) MarkRead(ctx context.Context, recipientID uint64, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	return r.DB.WithContext(ctx).
		Model(&model.Notification{}).
		Where("recipient_id=? AND id IN ?", recipientID, ids).
		Update("is_read", true).Error
}

func (r *NotificationRepository) MarkAllRead(ctx context.Context, recipientID uint64) error {
	return r.DB.WithContext(ctx).
		Model(&model.Notification{}).
		Where("recipient_id=? AND is_read=false", recipientID).
		Update("is_read", true).Error
}
