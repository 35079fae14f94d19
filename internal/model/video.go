package model

import "time"

type Video struct {
	ID           uint64    `gorm:"primaryKey;index:idx_owner_time,priority:3,sort:desc"`
	OwnerID      uint64    `gorm:"not null;index:idx_owner_time,priority:1"`
	Title        string    `gorm:"size:200;not null"`
	Description  string    `gorm:"type:text"`
	VideoURL     string    `gorm:"size:512;not null"`
	ThumbnailURL string    `gorm:"size:512"`
	Status       int       `gorm:"not null;default:0"` // 0=normal 1=deleted
	CreatedAt    time.Time `gorm:"index:idx_owner_time,priority:2,sort:desc"`
	UpdatedAt    time.Time
}

func (Video) TableName() string {
	return "videos"
}
