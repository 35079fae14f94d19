package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"unicode/utf8"

	"Lee_Tube/internal/model"
	"Lee_Tube/internal/pkg"

	"gorm.io/gorm"
)

const (
	MaxCommentLength = 500
	DefaultPageSize  = 10
	MaxPageSize      = 50
)

// CommentStore 评论持久化
type CommentStore interface {
	Create(ctx context.Context, comment *model.Comment) error
	FindByID(ctx context.Context, id uint64) (*model.Comment, error)
	CountTopLevel(ctx context.Context, videoID uint64) (int64, error)
	ListTopLevel(ctx context.Context, videoID uint64, offset, limit int) ([]model.Comment, error)
	ListReplies(ctx context.Context, parentIDs []uint64) ([]model.Comment, error)
	UpdateContent(ctx context.Context, id uint64, content string) error
	SoftDelete(ctx context.Context, id uint64) (int64, error)
	UpdateReportedBy(ctx context.Context, id uint64, reportedBy string) error
}

// AuthorStore 批量取作者摘要
type AuthorStore interface {
	FindByIDs(ctx context.Context, ids []uint64) (map[uint64]model.User, error)
}

type CommentService struct {
	repo      CommentStore
	users     AuthorStore
	videos    TargetOps
	reactions *ReactionService
	notifier  Notifier
}

func NewCommentService(repo CommentStore, users AuthorStore, videos TargetOps, reactions *ReactionService, notifier Notifier) *CommentService {
	return &CommentService{
		repo:      repo,
		users:     users,
		videos:    videos,
		reactions: reactions,
		notifier:  notifier,
	}
}

// GetThread 装配两级评论树：顶层最新在前分页，每条顶层评论带全部直接回复，
// 计数和观看者状态一律批量查，不做逐节点查询
func (s *CommentService) GetThread(ctx context.Context, videoID uint64, viewerKey string, page, size int) (*model.CommentThread, error) {
	if videoID == 0 {
		return nil, pkg.ErrInvalidArgument.WithMessage("invalid video id")
	}
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > MaxPageSize {
		size = DefaultPageSize
	}

	exists, err := s.videos.Exists(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, pkg.ErrNotFound.WithMessage("video not found")
	}

	total, err := s.repo.CountTopLevel(ctx, videoID)
	if err != nil {
		return nil, err
	}
	thread := &model.CommentThread{
		Comments:   []model.CommentView{},
		Total:      total,
		Page:       page,
		TotalPages: (total + int64(size) - 1) / int64(size),
	}
	if total == 0 {
		return thread, nil
	}

	tops, err := s.repo.ListTopLevel(ctx, videoID, (page-1)*size, size)
	if err != nil {
		return nil, err
	}
	if len(tops) == 0 {
		return thread, nil
	}

	topIDs := make([]uint64, 0, len(tops))
	for _, c := range tops {
		topIDs = append(topIDs, c.ID)
	}
	replies, err := s.repo.ListReplies(ctx, topIDs)
	if err != nil {
		return nil, err
	}

	// 一页涉及的所有评论ID和作者ID
	allIDs := make([]uint64, 0, len(tops)+len(replies))
	authorIDs := make([]uint64, 0, len(tops)+len(replies))
	for _, c := range tops {
		allIDs = append(allIDs, c.ID)
		authorIDs = append(authorIDs, c.OwnerID)
	}
	for _, c := range replies {
		allIDs = append(allIDs, c.ID)
		authorIDs = append(authorIDs, c.OwnerID)
	}

	counts, err := s.reactions.store.BulkCounts(ctx, model.TargetComment, allIDs)
	if err != nil {
		return nil, err
	}
	states, err := s.reactions.store.BulkViewerStates(ctx, viewerKey, model.TargetComment, allIDs)
	if err != nil {
		return nil, err
	}
	authors, err := s.users.FindByIDs(ctx, authorIDs)
	if err != nil {
		return nil, err
	}

	makeView := func(c model.Comment) model.CommentView {
		author := authors[c.OwnerID]
		cnt := counts[c.ID]
		return model.CommentView{
			ID:               c.ID,
			Content:          c.Content,
			CreatedAt:        c.CreatedAt,
			Author:           author.Summary(),
			LikeCount:        cnt.LikeCount,
			DislikeCount:     cnt.DislikeCount,
			IsLikedByUser:    states[c.ID] == model.ActionLike,
			IsDislikedByUser: states[c.ID] == model.ActionDislike,
		}
	}

	replyViews := make(map[uint64][]model.CommentView, len(tops))
	for _, c := range replies {
		replyViews[c.ParentID] = append(replyViews[c.ParentID], makeView(c))
	}
	for _, c := range tops {
		view := makeView(c)
		view.Replies = replyViews[c.ID]
		thread.Comments = append(thread.Comments, view)
	}
	return thread, nil
}

// Add 发顶层评论
func (s *CommentService) Add(ctx context.Context, videoID, ownerID uint64, content string) (*model.Comment, error) {
	if ownerID == 0 {
		return nil, pkg.ErrUnauthorized
	}
	if videoID == 0 {
		return nil, pkg.ErrInvalidArgument.WithMessage("invalid video id")
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}
	exists, err := s.videos.Exists(ctx, videoID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, pkg.ErrNotFound.WithMessage("video not found")
	}

	comment := &model.Comment{
		VideoID: videoID,
		OwnerID: ownerID,
		Content: strings.TrimSpace(content),
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if s.notifier != nil {
		if owner, err := s.videos.OwnerOf(ctx, videoID); err == nil && owner != 0 && owner != ownerID {
			s.notifier.Notify(ctx, &model.Notification{
				RecipientID: owner,
				ActorID:     ownerID,
				Type:        model.NotifyComment,
				TargetKind:  model.TargetVideo,
				TargetID:    videoID,
				Message:     "your video received a new comment",
			})
		}
	}
	return comment, nil
}

// Reply 回复评论。对回复的回复在写入时拍平：parent 统一记到顶层祖先，
// 读侧只展开一层就能拿到完整两级树
func (s *CommentService) Reply(ctx context.Context, parentID, ownerID uint64, content string) (*model.Comment, error) {
	if ownerID == 0 {
		return nil, pkg.ErrUnauthorized
	}
	if parentID == 0 {
		return nil, pkg.ErrInvalidArgument.WithMessage("invalid parent comment id")
	}
	if err := validateContent(content); err != nil {
		return nil, err
	}

	parent, err := s.repo.FindByID(ctx, parentID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, pkg.ErrNotFound.WithMessage("parent comment not found")
	}
	if err != nil {
		return nil, err
	}

	topID := parent.ID
	if parent.ParentID != 0 {
		topID = parent.ParentID
	}
	comment := &model.Comment{
		VideoID:  parent.VideoID,
		OwnerID:  ownerID,
		ParentID: topID,
		Content:  strings.TrimSpace(content),
	}
	if err := s.repo.Create(ctx, comment); err != nil {
		return nil, err
	}

	if s.notifier != nil && parent.OwnerID != ownerID {
		s.notifier.Notify(ctx, &model.Notification{
			RecipientID: parent.OwnerID,
			ActorID:     ownerID,
			Type:        model.NotifyComment,
			TargetKind:  model.TargetComment,
			TargetID:    parent.ID,
			Message:     "your comment received a new reply",
		})
	}
	return comment, nil
}

// Update 编辑内容，作者或管理员
func (s *CommentService) Update(ctx context.Context, id, actorID uint64, isAdmin bool, content string) error {
	if err := validateContent(content); err != nil {
		return err
	}
	comment, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkg.ErrNotFound.WithMessage("comment not found")
	}
	if err != nil {
		return err
	}
	if comment.OwnerID != actorID && !isAdmin {
		return pkg.ErrUnauthorized.WithMessage("no permission")
	}
	return s.repo.UpdateContent(ctx, id, strings.TrimSpace(content))
}

// Delete 软删除并级联清掉这条评论名下的反应行；已删除时幂等成功
func (s *CommentService) Delete(ctx context.Context, id, actorID uint64, isAdmin bool) error {
	comment, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if comment.OwnerID != actorID && !isAdmin {
		return pkg.ErrUnauthorized.WithMessage("no permission")
	}
	affected, err := s.repo.SoftDelete(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return nil
	}
	return s.reactions.Cleanup(ctx, model.TargetComment, id)
}

// Report 举报评论，重复举报幂等
func (s *CommentService) Report(ctx context.Context, id, reporterID uint64) error {
	if reporterID == 0 {
		return pkg.ErrUnauthorized
	}
	comment, err := s.repo.FindByID(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return pkg.ErrNotFound.WithMessage("comment not found")
	}
	if err != nil {
		return err
	}

	var reporters []uint64
	if comment.ReportedBy != "" {
		_ = json.Unmarshal([]byte(comment.ReportedBy), &reporters)
	}
	for _, id := range reporters {
		if id == reporterID {
			return nil
		}
	}
	reporters = append(reporters, reporterID)
	raw, _ := json.Marshal(reporters)
	return s.repo.UpdateReportedBy(ctx, comment.ID, string(raw))
}

func validateContent(content string) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return pkg.ErrInvalidArgument.WithMessage("comment content cannot be empty")
	}
	if utf8.RuneCountInString(trimmed) > MaxCommentLength {
		return pkg.ErrInvalidArgument.WithMessage("comment too long, maximum 500 characters allowed")
	}
	return nil
}
