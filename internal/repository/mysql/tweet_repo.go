package mysql

import (
	"context"

	"Lee_Tube/internal/model"

	"gorm.io/gorm"
)

type TweetRepository struct {
	DB *gorm.DB
}

func NewTweetRepository() *TweetRepository {
	return &TweetRepository{DB: DB}
}

func (r *TweetRepository) Create(ctx context.Context, tweet *model.Tweet) error {
	return r.DB.WithContext(ctx).Create(tweet).Error
}

func (r *TweetRepository) FindByID(ctx context.Context, id uint64) (*model.Tweet, error) {
	var tweet model.Tweet
	err := r.DB.WithContext(ctx).First(&tweet, "id = ? AND status = 0", id).Error
	return &tweet, err
}

func (r *TweetRepository) ListByOwner(ctx context.Context, ownerID uint64, offset, limit int) ([]model.Tweet, error) {
	var list []model.Tweet
	err := r.DB.WithContext(ctx).
		Where("owner_id = ? AND status = 0", ownerID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}

func (r *TweetRepository) SoftDelete(ctx context.Context, id uint64) (int64, error) {
	tx := r.DB.WithContext(ctx).
		Model(&model.Tweet{}).
		Where("id = ? AND status = 0", id).
		Update("status", 1)
	return tx.RowsAffected, tx.Error
}

func (r *TweetRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&model.Tweet{}).
		Where("id = ? AND status = 0", id).
		Count(&n).Error
	return n > 0, err
}

func (r *TweetRepository) OwnerOf(ctx context.Context, id uint64) (uint64, error) {
	var tweet model.Tweet
	err := r.DB.WithContext(ctx).
		Select("id", "owner_id").
		First(&tweet, "id = ? AND status = 0", id).Error
	if err != nil {
		return 0, err
	}
	return tweet.OwnerID, nil
}
