package model

import "time"

// Subscription 订阅关系：(subscriber_key, channel_id) 唯一，
// 行存在即已订阅；notifications 开关独立于订阅本身
type Subscription struct {
	ID            uint64 `gorm:"primaryKey"`
	SubscriberKey string `gorm:"size:64;not null;uniqueIndex:uk_subscriber_channel,priority:1"`
	SubscriberID  uint64 `gorm:"not null;default:0;index"` // 匿名会话订阅时为 0
	ChannelID     uint64 `gorm:"not null;uniqueIndex:uk_subscriber_channel,priority:2;index:idx_channel"`
	Notifications bool   `gorm:"not null;default:true"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

func (Subscription) TableName() string {
	return "subscriptions"
}
