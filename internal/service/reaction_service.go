package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"Lee_Tube/internal/model"
	"Lee_Tube/internal/pkg"
)

// ReactionStore 反应台账：一行一个 (actor, target) 反应，唯一键裁决并发
type ReactionStore interface {
	Toggle(ctx context.Context, actorKey string, userID uint64, kind string, targetID uint64, action int8) (int8, error)
	CountsFor(ctx context.Context, kind string, targetID uint64) (model.ReactionCounts, error)
	BulkCounts(ctx context.Context, kind string, targetIDs []uint64) (map[uint64]model.ReactionCounts, error)
	ViewerState(ctx context.Context, actorKey, kind string, targetID uint64) (int8, error)
	BulkViewerStates(ctx context.Context, actorKey, kind string, targetIDs []uint64) (map[uint64]int8, error)
	DeleteAllFor(ctx context.Context, kind string, targetID uint64) error
}

// TargetOps 每种可反应目标提供的能力集，台账本身不认识具体实体
type TargetOps interface {
	Exists(ctx context.Context, id uint64) (bool, error)
	OwnerOf(ctx context.Context, id uint64) (uint64, error)
}

// CountCache 计数缓存，nil 时直接回源
type CountCache interface {
	GetCached(ctx context.Context, kind string, targetID uint64) (model.ReactionCounts, bool, error)
	Set(ctx context.Context, kind string, targetID uint64, counts model.ReactionCounts) error
	Delete(ctx context.Context, kind string, targetID uint64) error
	TryLock(ctx context.Context, kind string, targetID uint64, token string) (bool, error)
	Unlock(ctx context.Context, kind string, targetID uint64, token string) error
}

// Notifier 尽力而为的通知投递，实现方自己吞掉所有失败
type Notifier interface {
	Notify(ctx context.Context, n *model.Notification)
}

type ReactionService struct {
	store    ReactionStore
	cache    CountCache
	targets  map[string]TargetOps
	notifier Notifier
}

// ToggleResult 翻转后的新鲜计数和本人状态
type ToggleResult struct {
	LikeCount    int64  `json:"like_count"`
	DislikeCount int64  `json:"dislike_count"`
	ViewerState  string `json:"viewer_state"`
}

func NewReactionService(store ReactionStore, cache CountCache, targets map[string]TargetOps, notifier Notifier) *ReactionService {
	return &ReactionService{
		store:    store,
		cache:    cache,
		targets:  targets,
		notifier: notifier,
	}
}

// Toggle 一次反应翻转的完整编排：
// 校验 -> 目标存在性 -> 台账翻转（唯一键竞争输了重试一次）->
// 计数失效 -> 新鲜计数 -> 新增的like才通知属主。
// 评论和动态的反应必须登录；视频反应允许匿名会话身份。
func (s *ReactionService) Toggle(ctx context.Context, actorKey string, userID uint64, kind string, targetID uint64, actionStr string) (*ToggleResult, error) {
	if !model.ValidTargetKind(kind) {
		return nil, pkg.ErrInvalidArgument.WithMessage("invalid target kind")
	}
	action := model.ParseAction(actionStr)
	if action == 0 {
		return nil, pkg.ErrInvalidArgument.WithMessage("action must be like or dislike")
	}
	if targetID == 0 || actorKey == "" {
		return nil, pkg.ErrInvalidArgument
	}
	if kind != model.TargetVideo && userID == 0 {
		return nil, pkg.ErrUnauthorized.WithMessage("login required")
	}

	ops, ok := s.targets[kind]
	if !ok {
		return nil, pkg.ErrInvalidArgument.WithMessage("invalid target kind")
	}
	exists, err := ops.Exists(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, pkg.ErrNotFound.WithMessage(kind + " not found")
	}

	state, err := s.store.Toggle(ctx, actorKey, userID, kind, targetID, action)
	if errors.Is(err, pkg.ErrConflict) {
		// 并发插入输了唯一键竞争：重读后会落到更新/删除分支，只补偿一次
		state, err = s.store.Toggle(ctx, actorKey, userID, kind, targetID, action)
	}
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		_ = s.cache.Delete(ctx, kind, targetID)
	}

	counts, err := s.Counts(ctx, kind, targetID)
	if err != nil {
		return nil, err
	}

	// 只有落成 like 的结果态才通知，取消和踩都不通知；自己反应自己不通知
	if state == model.ActionLike && s.notifier != nil {
		if owner, err := ops.OwnerOf(ctx, targetID); err == nil && owner != 0 && owner != userID {
			s.notifier.Notify(ctx, &model.Notification{
				RecipientID: owner,
				ActorID:     userID,
				Type:        model.NotifyLike,
				TargetKind:  kind,
				TargetID:    targetID,
				Message:     "your " + kind + " received a new like",
			})
		}
	}

	return &ToggleResult{
		LikeCount:    counts.LikeCount,
		DislikeCount: counts.DislikeCount,
		ViewerState:  model.ActionName(state),
	}, nil
}

// Counts 读计数：缓存命中直接回，miss 则拿锁回源重建，拿不到锁短暂退避再读一次
func (s *ReactionService) Counts(ctx context.Context, kind string, targetID uint64) (model.ReactionCounts, error) {
	if !model.ValidTargetKind(kind) || targetID == 0 {
		return model.ReactionCounts{}, pkg.ErrInvalidArgument
	}
	if s.cache == nil {
		return s.store.CountsFor(ctx, kind, targetID)
	}

	if v, ok, err := s.cache.GetCached(ctx, kind, targetID); err == nil && ok {
		return v, nil
	}

	token := fmt.Sprintf("%s-%d-%d", kind, targetID, time.Now().UnixNano())
	got, _ := s.cache.TryLock(ctx, kind, targetID, token)
	if got {
		defer func() { _ = s.cache.Unlock(ctx, kind, targetID, token) }()

		// 双检，锁等待期间可能已有人重建
		if v, ok, err := s.cache.GetCached(ctx, kind, targetID); err == nil && ok {
			return v, nil
		}

		v, err := s.store.CountsFor(ctx, kind, targetID)
		if err != nil {
			return model.ReactionCounts{}, err
		}
		_ = s.cache.Set(ctx, kind, targetID, v)
		return v, nil
	}

	// 没拿到锁，短暂退避后再读一次缓存，避免全体打DB
	time.Sleep(50 * time.Millisecond)
	if v, ok, err := s.cache.GetCached(ctx, kind, targetID); err == nil && ok {
		return v, nil
	}
	return s.store.CountsFor(ctx, kind, targetID)
}

// ViewerState 观看者对目标的当前态
func (s *ReactionService) ViewerState(ctx context.Context, actorKey, kind string, targetID uint64) (string, error) {
	if !model.ValidTargetKind(kind) || targetID == 0 {
		return "", pkg.ErrInvalidArgument
	}
	if actorKey == "" {
		return "none", nil
	}
	state, err := s.store.ViewerState(ctx, actorKey, kind, targetID)
	if err != nil {
		return "", err
	}
	return model.ActionName(state), nil
}

// Cleanup 目标被删除时级联清理它的反应行和计数缓存
func (s *ReactionService) Cleanup(ctx context.Context, kind string, targetID uint64) error {
	if err := s.store.DeleteAllFor(ctx, kind, targetID); err != nil {
		return err
	}
	if s.cache != nil {
		_ = s.cache.Delete(ctx, kind, targetID)
	}
	return nil
}
