package service

import (
	"context"
	"errors"
	"strings"

	"Lee_Tube/internal/model"
	"Lee_Tube/internal/pkg"

	"gorm.io/gorm"
)

// VideoStore 视频元数据持久化。文件本体在对象存储，这里只收URL
type VideoStore interface {
	Create(ctx context.Context, video *model.Video) error
	FindByID(ctx context.Context, id uint64) (*model.Video, error)
	ListByOwner(ctx context.Context, ownerID uint64, offset, limit int) ([]model.Video, error)
	SoftDelete(ctx context.Context, id uint64) (int64, error)
}

// VideoCommentCleaner 视频删除时级联软删它的评论
type VideoCommentCleaner interface {
	SoftDeleteByVideo(ctx context.Context, videoID uint64) error
}

// SubscriberAudience 新视频推送的收件人集合
type SubscriberAudience interface {
	ListNotifiableSubscriberIDs(ctx context.Context, channelID uint64, limit int) ([]uint64, error)
}

type VideoService struct {
	repo      VideoStore
	comments  VideoCommentCleaner
	reactions *ReactionService
	audience  SubscriberAudience
	notifier  Notifier
}

func NewVideoService(repo VideoStore, comments VideoCommentCleaner, reactions *ReactionService, audience SubscriberAudience, notifier Notifier) *VideoService {
	return &VideoService{
		repo:      repo,
		comments:  comments,
		reactions: reactions,
		audience:  audience,
		notifier:  notifier,
	}
}

func (s *VideoService) Publish(ctx context.Context, ownerID uint64, title, description, videoURL, thumbnailURL string) (*model.Video, error) {
	if ownerID == 0 {
		return nil, pkg.ErrUnauthorized
	}
	if strings.TrimSpace(title) == "" {
		return nil, pkg.ErrInvalidArgument.WithMessage("title required")
	}
	if strings.TrimSpace(videoURL) == "" {
		return nil, pkg.ErrInvalidArgument.WithMessage("video url required")
	}

	video := &model.Video{
		OwnerID:      ownerID,
		Title:        strings.TrimSpace(title),
		Description:  description,
		VideoURL:     videoURL,
		ThumbnailURL: thumbnailURL,
	}
	if err := s.repo.Create(ctx, video); err != nil {
		return nil, err
	}

	// 给开着通知开关的订阅者推新视频，尽力而为
	if s.notifier != nil && s.audience != nil {
		if ids, err := s.audience.ListNotifiableSubscriberIDs(ctx, ownerID, 0); err == nil {
			for _, id := range ids {
				s.notifier.Notify(ctx, &model.Notification{
					RecipientID: id,
					ActorID:     ownerID,
					Type:        model.NotifyUpload,
					TargetKind:  model.TargetVideo,
					TargetID:    video.ID,
					Message:     "a channel you subscribe to uploaded a new video",
				})
			}
		}
	}
	return video, nil
}

func (s *VideoService) Get(ctx context.Context, id uint64) (*model.Video, error) {
	if id == 0 {
		return nil, pkg.ErrInvalidArgument.WithMessage("invalid video id")
	}
	video, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.ErrNotFound.WithMessage("video not found")
	}
	return video, err
}

func (s *VideoService) ListByOwner(ctx context.Context, ownerID uint64, page, size int) ([]model.Video, error) {
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

// Delete 软删除视频并级联清理：名下评论软删、反应行和计数缓存清掉。
// 已删除时幂等成功，仅无权限时报错
func (s *VideoService) Delete(ctx context.Context, id, actorID uint64, isAdmin bool) error {
	if id == 0 {
		return pkg.ErrInvalidArgument.WithMessage("invalid video id")
	}
	video, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if video.OwnerID != actorID && !isAdmin {
		return pkg.ErrUnauthorized.WithMessage("no permission")
	}

	affected, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return nil
	}
	if err := s.comments.SoftDeleteByVideo(ctx, id); err != nil {
		return err
	}
	return s.reactions.Cleanup(ctx, model.TargetVideo, id)
}
