package model

import "time"

type User struct {
	ID              uint64 `gorm:"primaryKey"`
	Username        string `gorm:"uniqueIndex;size:32;not null"`
	Password        string `gorm:"size:255;not null"`
	Role            int    `gorm:"default:0"` // 0=user 1=admin
	Email           string `gorm:"uniqueIndex;size:64;not null"`
	Avatar          string `gorm:"size:255"`
	SubscriberCount int64  `gorm:"not null;default:0"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

// AuthorSummary 嵌入在评论视图里的作者摘要
type AuthorSummary struct {
	ID       uint64 `json:"id"`
	Username string `json:"username"`
	Avatar   string `json:"avatar"`
}

func (u *User) Summary() AuthorSummary {
	return AuthorSummary{ID: u.ID, Username: u.Username, Avatar: u.Avatar}
}
