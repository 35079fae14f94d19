package model

import "time"

type Comment struct {
	ID         uint64    `gorm:"primaryKey"`
	VideoID    uint64    `gorm:"not null;index:idx_video_top,priority:1"`
	OwnerID    uint64    `gorm:"not null;index"`
	ParentID   uint64    `gorm:"not null;default:0;index:idx_video_top,priority:2"` // 0=顶层评论；否则指向顶层祖先
	Content    string    `gorm:"size:500;not null"`
	Status     int       `gorm:"not null;default:0"` // 0=normal 1=deleted（软删除，回复树仍可寻址）
	ReportedBy string    `gorm:"type:json"`          // 举报人ID集合，仅供审核台使用
	CreatedAt  time.Time `gorm:"index"`
	UpdatedAt  time.Time
}

func (Comment) TableName() string {
	return "comments"
}

// CommentView 线程读视图：带计数与观看者自身的投票态
type CommentView struct {
	ID               uint64        `json:"id"`
	Content          string        `json:"content"`
	CreatedAt        time.Time     `json:"created_at"`
	Author           AuthorSummary `json:"author"`
	LikeCount        int64         `json:"like_count"`
	DislikeCount     int64         `json:"dislike_count"`
	IsLikedByUser    bool          `json:"is_liked_by_user"`
	IsDislikedByUser bool          `json:"is_disliked_by_user"`
	Replies          []CommentView `json:"replies,omitempty"`
}

// CommentThread 分页后的两级评论树
type CommentThread struct {
	Comments   []CommentView `json:"comments"`
	Total      int64         `json:"total"`
	Page       int           `json:"page"`
	TotalPages int64         `json:"total_pages"`
}
