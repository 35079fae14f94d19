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

type ReactionRepository struct {
	DB *gorm.DB
}

func NewReactionRepository() *ReactionRepository {
	return &ReactionRepository{DB: DB}
}

// Toggle 对 (actor, target) 执行一次反应翻转，整个翻转在一个事务里完成：
//   - 无行：插入；并发插入输掉唯一键竞争时返回 ErrConflict，由上层重试一次走更新分支
//   - 已有同向行：删除（toggle-off），结果态 none
//   - 已有反向行：原地改 action
//
// 唯一键 (actor_key, target_kind, target_id) 是唯一的正确性机制，
// 不做无守护的先读后写。事务内同时落一条 outbox 事件。
func (r *ReactionRepository) Toggle(ctx context.Context, actorKey string, userID uint64, kind string, targetID uint64, action int8) (int8, error) {
	var state int8
	err := r.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rel model.Reaction
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("actor_key=? AND target_kind=? AND target_id=?", actorKey, kind, targetID).
			First(&rel).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			rel = model.Reaction{
				ActorKey:   actorKey,
				UserID:     userID,
				TargetKind: kind,
				TargetID:   targetID,
				Action:     action,
			}
			if err = tx.Create(&rel).Error; err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					// 并发插入抢先提交了同一个唯一键
					return pkg.ErrConflict
				}
				return err
			}
			state = action
			return r.insertOutbox(tx, model.ActionName(action), actorKey, kind, targetID)
		}
		if err != nil {
			return err
		}
		if rel.Action == action {
			// 同向重复 -> 取消
			if err = tx.Where("id=? AND action=?", rel.ID, action).
				Delete(&model.Reaction{}).Error; err != nil {
				return err
			}
			state = 0
			return r.insertOutbox(tx, "unreact", actorKey, kind, targetID)
		}
		// 反向 -> 原地翻转
		if err = tx.Model(&model.Reaction{}).
			Where("id=?", rel.ID).
			Update("action", action).Error; err != nil {
			return err
		}
		state = action
		return r.insertOutbox(tx, model.ActionName(action), actorKey, kind, targetID)
	})
	return state, err
}

// CountsFor 按 action 聚合单个目标的计数，走 idx_target_action 覆盖索引
func (r *ReactionRepository) CountsFor(ctx context.Context, kind string, targetID uint64) (model.ReactionCounts, error) {
	counts, err := r.BulkCounts(ctx, kind, []uint64{targetID})
	if err != nil {
		return model.ReactionCounts{}, err
	}
	return counts[targetID], nil
}

// BulkCounts 批量聚合，渲染列表时避免 N+1
func (r *ReactionRepository) BulkCounts(ctx context.Context, kind string, targetIDs []uint64) (map[uint64]model.ReactionCounts, error) {
	out := make(map[uint64]model.ReactionCounts, len(targetIDs))
	if len(targetIDs) == 0 {
		return out, nil
	}
	var rows []struct {
		TargetID uint64
		Action   int8
		Cnt      int64
	}
	if err := r.DB.WithContext(ctx).
		Model(&model.Reaction{}).
		Select("target_id, action, COUNT(*) AS cnt").
		Where("target_kind=? AND target_id IN ?", kind, targetIDs).
		Group("target_id, action").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		c := out[row.TargetID]
		switch row.Action {
		case model.ActionLike:
			c.LikeCount = row.Cnt
		case model.ActionDislike:
			c.DislikeCount = row.Cnt
		}
		out[row.TargetID] = c
	}
	return out, nil
}

// ViewerState 单点查询观看者对目标的当前态，0 表示中性
func (r *ReactionRepository) ViewerState(ctx context.Context, actorKey, kind string, targetID uint64) (int8, error) {
	states, err := r.BulkViewerStates(ctx, actorKey, kind, []uint64{targetID})
	if err != nil {
		return 0, err
	}
	return states[targetID], nil
}

// BulkViewerStates 批量查询观看者状态，匿名（空 key）直接返回空表
func (r *ReactionRepository) BulkViewerStates(ctx context.Context, actorKey, kind string, targetIDs []uint64) (map[uint64]int8, error) {
	out := make(map[uint64]int8, len(targetIDs))
	if actorKey == "" || len(targetIDs) == 0 {
		return out, nil
	}
	var rows []model.Reaction
	if err := r.DB.WithContext(ctx).
		Select("target_id", "action").
		Where("actor_key=? AND target_kind=? AND target_id IN ?", actorKey, kind, targetIDs).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		out[row.TargetID] = row.Action
	}
	return out, nil
}

// DeleteAllFor 目标被删除时级联清掉它名下的所有反应行
func (r *ReactionRepository) DeleteAllFor(ctx context.Context, kind string, targetID uint64) error {
	return r.DB.WithContext(ctx).
		Where("target_kind=? AND target_id=?", kind, targetID).
		Delete(&model.Reaction{}).Error
}

func (r *ReactionRepository) insertOutbox(tx *gorm.DB, event, actorKey, kind string, targetID uint64) error {
	payload, _ := json.Marshal(map[string]any{
		"event_time":  time.Now().UTC().Format(time.RFC3339Nano),
		"event_type":  event,
		"actor_key":   actorKey,
		"target_kind": kind,
		"target_id":   targetID,
	})
	ob := &model.EngagementOutbox{
		EventType:  event,
		ActorKey:   actorKey,
		TargetKind: kind,
		TargetID:   targetID,
		Payload:    string(payload),
		Status:     0,
	}
	return tx.Create(ob).Error
}
