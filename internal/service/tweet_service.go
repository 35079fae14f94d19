package service

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"Lee_Tube/internal/model"
	"Lee_Tube/internal/pkg"

	"gorm.io/gorm"
)

const MaxTweetLength = 500

// TweetStore 动态持久化
type TweetStore interface {
	Create(ctx context.Context, tweet *model.Tweet) error
	FindByID(ctx context.Context, id uint64) (*model.Tweet, error)
	ListByOwner(ctx context.Context, ownerID uint64, offset, limit int) ([]model.Tweet, error)
	SoftDelete(ctx context.Context, id uint64) (int64, error)
}

type TweetService struct {
	repo      TweetStore
	reactions *ReactionService
}

func NewTweetService(repo TweetStore, reactions *ReactionService) *TweetService {
	return &TweetService{repo: repo, reactions: reactions}
}

func (s *TweetService) Create(ctx context.Context, ownerID uint64, content string) (*model.Tweet, error) {
	if ownerID == 0 {
		return nil, pkg.ErrUnauthorized
	}
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return nil, pkg.ErrInvalidArgument.WithMessage("content required")
	}
	if utf8.RuneCountInString(trimmed) > MaxTweetLength {
		return nil, pkg.ErrInvalidArgument.WithMessage("content too long")
	}

	tweet := &model.Tweet{OwnerID: ownerID, Content: trimmed}
	if err := s.repo.Create(ctx, tweet); err != nil {
		return nil, err
	}
	return tweet, nil
}

func (s *TweetService) ListByOwner(ctx context.Context, ownerID uint64, page, size int) ([]model.Tweet, error) {
	if ownerID == 0 {
		return nil, pkg.ErrInvalidArgument
	}
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = 20
	}
	return s.repo.ListByOwner(ctx, ownerID, (page-1)*size, size)
}

// Delete 软删除动态并级联清理反应；已删除时幂等成功
func (s *TweetService) Delete(ctx context.Context, id, actorID uint64, isAdmin bool) error {
	if id == 0 {
		return pkg.ErrInvalidArgument.WithMessage("invalid tweet id")
	}
	tweet, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if tweet.OwnerID != actorID && !isAdmin {
		return pkg.ErrUnauthorized.WithMessage("no permission")
	}

	affected, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return nil
	}
	return s.reactions.Cleanup(ctx, model.TargetTweet, id)
}
