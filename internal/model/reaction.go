package model

import "time"

// 目标类型
const (
	TargetVideo   = "video"
	TargetComment = "comment"
	TargetTweet   = "tweet"
)

// 反应动作
const (
	ActionLike    int8 = 1
	ActionDislike int8 = 2
)

// Reaction 互动台账行：(actor_key, target_kind, target_id) 全局唯一，
// 没有行即中性态，不存在第三种枚举值
type Reaction struct {
	ID         uint64 `gorm:"primaryKey"`
	ActorKey   string `gorm:"size:64;not null;uniqueIndex:uk_actor_target,priority:1"` // "u:<id>" 或匿名会话 "s:<uuid>"
	UserID     uint64 `gorm:"not null;default:0;index"`                                // 匿名时为 0
	TargetKind string `gorm:"size:16;not null;uniqueIndex:uk_actor_target,priority:2;index:idx_target_action,priority:1"`
	TargetID   uint64 `gorm:"not null;uniqueIndex:uk_actor_target,priority:3;index:idx_target_action,priority:2"`
	Action     int8   `gorm:"not null;index:idx_target_action,priority:3"` // 1=like 2=dislike
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (Reaction) TableName() string {
	return "reactions"
}

// ReactionCounts 单个目标的聚合计数
type ReactionCounts struct {
	LikeCount    int64 `json:"like_count"`
	DislikeCount int64 `json:"dislike_count"`
}

// ActionName 动作枚举到API字符串
func ActionName(action int8) string {
	switch action {
	case ActionLike:
		return "like"
	case ActionDislike:
		return "dislike"
	default:
		return "none"
	}
}

// ParseAction API字符串到动作枚举，0 表示非法
func ParseAction(s string) int8 {
	switch s {
	case "like":
		return ActionLike
	case "dislike":
		return ActionDislike
	default:
		return 0
	}
}

// ValidTargetKind 校验目标类型
func ValidTargetKind(kind string) bool {
	return kind == TargetVideo || kind == TargetComment || kind == TargetTweet
}
