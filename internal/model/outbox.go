package model

import "time"

// EngagementOutbox 互动事件外发表，由后台 relayer 批量投递到 kafka
type EngagementOutbox struct {
	ID         uint64 `gorm:"primaryKey"`
	EventType  string `gorm:"size:32;not null"` // like / dislike / unreact / subscribe / unsubscribe
	ActorKey   string `gorm:"size:64;not null"`
	TargetKind string `gorm:"size:16;not null"`
	TargetID   uint64 `gorm:"not null"`
	Payload    string `gorm:"type:json;not null"`
	Status     int8   `gorm:"not null;default:0;comment:'0=pending,1=sent,2=failed'"`
	Retry      int    `gorm:"not null;default:0"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (EngagementOutbox) TableName() string { return "engagement_outbox" }
