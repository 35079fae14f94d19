package model

import "time"

// 通知类型
const (
	NotifyLike      = "like"
	NotifySubscribe = "subscribe"
	NotifyComment   = "comment"
	NotifyUpload    = "upload"
)

// Notification 持久化的通知行；实时推送只是尽力而为的附加路径
type Notification struct {
	ID          uint64 `gorm:"primaryKey"`
	RecipientID uint64 `gorm:"not null;index:idx_recipient_read,priority:1"`
	ActorID     uint64 `gorm:"not null"`
	Type        string `gorm:"size:16;not null"`
	TargetKind  string `gorm:"size:16"`
	TargetID    uint64 `gorm:"not null;default:0"`
	Message     string `gorm:"size:255;not null"`
	IsRead      bool   `gorm:"not null;default:false;index:idx_recipient_read,priority:2"`
	CreatedAt   time.Time
}

func (Notification) TableName() string {
	return "notifications"
}

// NotificationEvent 推送到在线连接的事件体
type NotificationEvent struct {
	Event      string `json:"event"`
	Type       string `json:"type"`
	ActorID    uint64 `json:"actor_id"`
	TargetKind string `json:"target_kind,omitempty"`
	TargetID   uint64 `json:"target_id,omitempty"`
	Message    string `json:"message"`
}
