package model

import "time"

type Tweet struct {
	ID        uint64 `gorm:"primaryKey"`
	OwnerID   uint64 `gorm:"not null;index:idx_tweet_owner"`
	Content   string `gorm:"size:500;not null"`
	Status    int    `gorm:"not null;default:0"` // 0=normal 1=deleted
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (Tweet) TableName() string {
	return "tweets"
}
