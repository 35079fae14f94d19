package mysql

import (
	"context"

	"Lee_Tube/internal/model"

	"gorm.io/gorm"
)

type VideoRepository struct {
	DB *gorm.DB
}

func NewVideoRepository() *VideoRepository {
	return &VideoRepository{DB: DB}
}

func (r *VideoRepository) Create(ctx context.Context, video *model.Video) error {
	return r.DB.WithContext(ctx).Create(video).Error
}

func (r *VideoRepository) FindByID(ctx context.Context, id uint64) (*model.Video, error) {
	var video model.Video
	err := r.DB.WithContext(ctx).First(&video, "id = ? AND status = 0", id).Error
	return &video, err
}

// ListByOwner 频道页视频列表，走 idx_owner_time
func (r *VideoRepository) ListByOwner(ctx context.Context, ownerID uint64, offset, limit int) ([]model.Video, error) {
	var list []model.Video
	err := r.DB.WithContext(ctx).
		Where("owner_id = ? AND status = 0", ownerID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}

// SoftDelete affected=0 表示已删除或不存在（幂等）
func (r *VideoRepository) SoftDelete(ctx context.Context, id uint64) (int64, error) {
	tx := r.DB.WithContext(ctx).
		Model(&model.Video{}).
		Where("id = ? AND status = 0", id).
		Update("status", 1)
	return tx.RowsAffected, tx.Error
}

func (r *VideoRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&model.Video{}).
		Where("id = ? AND status = 0", id).
		Count(&n).Error
	return n > 0, err
}

func (r *VideoRepository) OwnerOf(ctx context.Context, id uint64) (uint64, error) {
	var video model.Video
	err := r.DB.WithContext(ctx).
		Select("id", "owner_id").
		First(&video, "id = ? AND status = 0", id).Error
	if err != nil {
		return 0, err
	}
	return video.OwnerID, nil
}
