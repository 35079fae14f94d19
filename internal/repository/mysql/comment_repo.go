package mysql

import (
	"context"

	"Lee_Tube/internal/model"

	"gorm.io/gorm"
)

type CommentRepository struct {
	DB *gorm.DB
}

func NewCommentRepository() *CommentRepository {
	return &CommentRepository{DB: DB}
}

func (r *CommentRepository) Create(ctx context.Context, comment *model.Comment) error {
	return r.DB.WithContext(ctx).Create(comment).Error
}

func (r *CommentRepository) FindByID(ctx context.Context, id uint64) (*model.Comment, error) {
	var comment model.Comment
	err := r.DB.WithContext(ctx).First(&comment, "id = ? AND status = 0", id).Error
	return &comment, err
}

// CountTopLevel 视频下未删除的顶层评论总数，与回复数无关
func (r *CommentRepository) CountTopLevel(ctx context.Context, videoID uint64) (int64, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&model.Comment{}).
		Where("video_id = ? AND parent_id = 0 AND status = 0", videoID).
		Count(&n).Error
	return n, err
}

// ListTopLevel 顶层评论按最新在前分页
func (r *CommentRepository) ListTopLevel(ctx context.Context, videoID uint64, offset, limit int) ([]model.Comment, error) {
	var list []model.Comment
	err := r.DB.WithContext(ctx).
		Where("video_id = ? AND parent_id = 0 AND status = 0", videoID).
		Order("created_at DESC, id DESC").
		Offset(offset).
		Limit(limit).
		Find(&list).Error
	return list, err
}

// ListReplies 一次取出一页顶层评论的全部直接回复（两级树只展开一层）
func (r *CommentRepository) ListReplies(ctx context.Context, parentIDs []uint64) ([]model.Comment, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var list []model.Comment
	err := r.DB.WithContext(ctx).
		Where("parent_id IN ? AND status = 0", parentIDs).
		Order("created_at ASC, id ASC").
		Find(&list).Error
	return list, err
}

func (r *CommentRepository) UpdateContent(ctx context.Context, id uint64, content string) error {
	return r.DB.WithContext(ctx).
		Model(&model.Comment{}).
		Where("id = ? AND status = 0", id).
		Update("content", content).Error
}

// SoftDelete 软删除，回复树保持可寻址；affected=0 说明已删除（幂等）
func (r *CommentRepository) SoftDelete(ctx context.Context, id uint64) (int64, error) {
	tx := r.DB.WithContext(ctx).
		Model(&model.Comment{}).
		Where("id = ? AND status = 0", id).
		Update("status", 1)
	return tx.RowsAffected, tx.Error
}

// SoftDeleteByVideo 视频被删时，它名下的评论一并软删
func (r *CommentRepository) SoftDeleteByVideo(ctx context.Context, videoID uint64) error {
	return r.DB.WithContext(ctx).
		Model(&model.Comment{}).
		Where("video_id = ? AND status = 0", videoID).
		Update("status", 1).Error
}

// UpdateReportedBy 覆盖举报人集合（JSON），审核台只读这个字段
func (r *CommentRepository) UpdateReportedBy(ctx context.Context, id uint64, reportedBy string) error {
	return r.DB.WithContext(ctx).
		Model(&model.Comment{}).
		Where("id = ?", id).
		Update("reported_by", reportedBy).Error
}

// Exists 供反应台账做目标存在性检查，软删除视为不存在
func (r *CommentRepository) Exists(ctx context.Context, id uint64) (bool, error) {
	var n int64
	err := r.DB.WithContext(ctx).
		Model(&model.Comment{}).
		Where("id = ? AND status = 0", id).
		Count(&n).Error
	return n > 0, err
}

// OwnerOf 目标属主，通知投递时用
func (r *CommentRepository) OwnerOf(ctx context.Context, id uint64) (uint64, error) {
	var comment model.Comment
	err := r.DB.WithContext(ctx).
		Select("id", "owner_id").
		First(&comment, "id = ? AND status = 0", id).Error
	if err != nil {
		return 0, err
	}
	return comment.OwnerID, nil
}
