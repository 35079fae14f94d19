package service

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"Lee_Tube/internal/model"
	"Lee_Tube/internal/pkg"

	"gorm.io/gorm"
)

// fakeLedger 内存版反应台账，语义和 mysql 实现一致：
// 一个 (actor, target) 至多一行，同动作翻转删行，反动作翻转改行
type fakeLedger struct {
	mu        sync.Mutex
	rows      map[string]int8
	conflicts int // 前 N 次 Toggle 先输一次唯一键竞争
	calls     int
}

func newFakeLedger() *fakeLedger {
	return &fakeLedger{rows: map[string]int8{}}
}

func ledgerKey(actorKey, kind string, targetID uint64) string {
	return fmt.Sprintf("%s|%s|%d", actorKey, kind, targetID)
}

func (f *fakeLedger) Toggle(_ context.Context, actorKey string, _ uint64, kind string, targetID uint64, action int8) (int8, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.conflicts > 0 {
		f.conflicts--
		return 0, pkg.ErrConflict
	}
	key := ledgerKey(actorKey, kind, targetID)
	cur, ok := f.rows[key]
	if !ok {
		f.rows[key] = action
		return action, nil
	}
	if cur == action {
		delete(f.rows, key)
		return 0, nil
	}
	f.rows[key] = action
	return action, nil
}

func (f *fakeLedger) CountsFor(ctx context.Context, kind string, targetID uint64) (model.ReactionCounts, error) {
	m, err := f.BulkCounts(ctx, kind, []uint64{targetID})
	return m[targetID], err
}

func (f *fakeLedger) BulkCounts(_ context.Context, kind string, targetIDs []uint64) (map[uint64]model.ReactionCounts, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make(map[uint64]model.ReactionCounts, len(targetIDs))
	for _, id := range targetIDs {
		suffix := fmt.Sprintf("|%s|%d", kind, id)
		var c model.ReactionCounts
		for k, action := range f.rows {
			if len(k) >= len(suffix) && k[len(k)-len(suffix):] == suffix {
				if action == model.ActionLike {
					c.LikeCount++
				} else {
					c.DislikeCount++
				}
			}
		}
		out[id] = c
	}
	return out, nil
}

func (f *fakeLedger) ViewerState(_ context.Context, actorKey, kind string, targetID uint64) (int8, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.rows[ledgerKey(actorKey, kind, targetID)], nil
}

func (f *fakeLedger) BulkViewerStates(_ context.Context, actorKey, kind string, targetIDs []uint64) (map[uint64]int8, error) {
	out := make(map[uint64]int8)
	if actorKey == "" {
		return out, nil
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range targetIDs {
		if action, ok := f.rows[ledgerKey(actorKey, kind, id)]; ok {
			out[id] = action
		}
	}
	return out, nil
}

func (f *fakeLedger) DeleteAllFor(_ context.Context, kind string, targetID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	suffix := fmt.Sprintf("|%s|%d", kind, targetID)
	for k := range f.rows {
		if len(k) >= len(suffix) && k[len(k)-len(suffix):] == suffix {
			delete(f.rows, k)
		}
	}
	return nil
}

func (f *fakeLedger) rowCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.rows)
}

// fakeCache 内存版计数缓存
type fakeCache struct {
	mu      sync.Mutex
	data    map[string]model.ReactionCounts
	sets    int
	deletes int
	noLock  bool
}

func newFakeCache() *fakeCache {
	return &fakeCache{data: map[string]model.ReactionCounts{}}
}

func cacheKey(kind string, targetID uint64) string {
	return fmt.Sprintf("%s:%d", kind, targetID)
}

func (f *fakeCache) GetCached(_ context.Context, kind string, targetID uint64) (model.ReactionCounts, bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.data[cacheKey(kind, targetID)]
	return v, ok, nil
}

func (f *fakeCache) Set(_ context.Context, kind string, targetID uint64, counts model.ReactionCounts) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sets++
	f.data[cacheKey(kind, targetID)] = counts
	return nil
}

func (f *fakeCache) Delete(_ context.Context, kind string, targetID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes++
	delete(f.data, cacheKey(kind, targetID))
	return nil
}

func (f *fakeCache) TryLock(_ context.Context, _ string, _ uint64, _ string) (bool, error) {
	return !f.noLock, nil
}

func (f *fakeCache) Unlock(_ context.Context, _ string, _ uint64, _ string) error {
	return nil
}

// fakeTargets 固定的目标存在性与属主表
type fakeTargets struct {
	owners map[uint64]uint64
}

func (f *fakeTargets) Exists(_ context.Context, id uint64) (bool, error) {
	_, ok := f.owners[id]
	return ok, nil
}

func (f *fakeTargets) OwnerOf(_ context.Context, id uint64) (uint64, error) {
	owner, ok := f.owners[id]
	if !ok {
		return 0, gorm.ErrRecordNotFound
	}
	return owner, nil
}

// fakeNotifier 只记录投递请求
type fakeNotifier struct {
	mu   sync.Mutex
	sent []*model.Notification
}

func (f *fakeNotifier) Notify(_ context.Context, n *model.Notification) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, n)
}

func (f *fakeNotifier) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.sent)
}

// fakeCommentStore 内存版评论存储，软删除行为与 mysql 实现一致
type fakeCommentStore struct {
	mu     sync.Mutex
	nextID uint64
	rows   map[uint64]*model.Comment
}

func newFakeCommentStore() *fakeCommentStore {
	return &fakeCommentStore{rows: map[uint64]*model.Comment{}}
}

func (f *fakeCommentStore) Create(_ context.Context, comment *model.Comment) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	comment.ID = f.nextID
	cp := *comment
	f.rows[comment.ID] = &cp
	return nil
}

func (f *fakeCommentStore) FindByID(_ context.Context, id uint64) (*model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok || c.Status != 0 {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *c
	return &cp, nil
}

func (f *fakeCommentStore) CountTopLevel(_ context.Context, videoID uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, c := range f.rows {
		if c.VideoID == videoID && c.ParentID == 0 && c.Status == 0 {
			n++
		}
	}
	return n, nil
}

func (f *fakeCommentStore) ListTopLevel(_ context.Context, videoID uint64, offset, limit int) ([]model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var tops []model.Comment
	for _, c := range f.rows {
		if c.VideoID == videoID && c.ParentID == 0 && c.Status == 0 {
			tops = append(tops, *c)
		}
	}
	// 新的在前
	sort.Slice(tops, func(i, j int) bool { return tops[i].ID > tops[j].ID })
	if offset >= len(tops) {
		return nil, nil
	}
	end := offset + limit
	if end > len(tops) {
		end = len(tops)
	}
	return tops[offset:end], nil
}

func (f *fakeCommentStore) ListReplies(_ context.Context, parentIDs []uint64) ([]model.Comment, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := make(map[uint64]bool, len(parentIDs))
	for _, id := range parentIDs {
		want[id] = true
	}
	var replies []model.Comment
	for _, c := range f.rows {
		if c.ParentID != 0 && want[c.ParentID] && c.Status == 0 {
			replies = append(replies, *c)
		}
	}
	sort.Slice(replies, func(i, j int) bool { return replies[i].ID < replies[j].ID })
	return replies, nil
}

func (f *fakeCommentStore) UpdateContent(_ context.Context, id uint64, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.rows[id]; ok {
		c.Content = content
	}
	return nil
}

func (f *fakeCommentStore) SoftDelete(_ context.Context, id uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.rows[id]
	if !ok || c.Status != 0 {
		return 0, nil
	}
	c.Status = 1
	return 1, nil
}

func (f *fakeCommentStore) UpdateReportedBy(_ context.Context, id uint64, reportedBy string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if c, ok := f.rows[id]; ok {
		c.ReportedBy = reportedBy
	}
	return nil
}

// fakeAuthorStore 固定的作者表
type fakeAuthorStore struct {
	users map[uint64]model.User
}

func (f *fakeAuthorStore) FindByIDs(_ context.Context, ids []uint64) (map[uint64]model.User, error) {
	out := make(map[uint64]model.User)
	for _, id := range ids {
		if u, ok := f.users[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

// fakeSubStore 内存版订阅存储
type fakeSubStore struct {
	mu        sync.Mutex
	nextID    uint64
	rows      map[string]*model.Subscription
	conflicts int
}

func newFakeSubStore() *fakeSubStore {
	return &fakeSubStore{rows: map[string]*model.Subscription{}}
}

func subKey(subscriberKey string, channelID uint64) string {
	return fmt.Sprintf("%s|%d", subscriberKey, channelID)
}

func (f *fakeSubStore) Toggle(_ context.Context, subscriberKey string, subscriberID, channelID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.conflicts > 0 {
		f.conflicts--
		return false, pkg.ErrConflict
	}
	key := subKey(subscriberKey, channelID)
	if _, ok := f.rows[key]; ok {
		delete(f.rows, key)
		return false, nil
	}
	f.nextID++
	f.rows[key] = &model.Subscription{
		ID:            f.nextID,
		SubscriberKey: subscriberKey,
		SubscriberID:  subscriberID,
		ChannelID:     channelID,
		Notifications: true,
	}
	return true, nil
}

func (f *fakeSubStore) IsSubscribed(_ context.Context, subscriberKey string, channelID uint64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.rows[subKey(subscriberKey, channelID)]
	return ok, nil
}

func (f *fakeSubStore) SetNotifications(_ context.Context, subscriberKey string, channelID uint64, on bool) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.rows[subKey(subscriberKey, channelID)]
	if !ok || s.Notifications == on {
		return 0, nil
	}
	s.Notifications = on
	return 1, nil
}

func (f *fakeSubStore) ListSubscribers(_ context.Context, channelID uint64, cursor uint64, limit int) ([]model.Subscription, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Subscription
	for _, s := range f.rows {
		if s.ChannelID == channelID && s.ID > cursor {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	var next uint64
	if len(out) > 0 {
		next = out[len(out)-1].ID
	}
	return out, next, nil
}

func (f *fakeSubStore) ListSubscribedChannels(_ context.Context, subscriberKey string, cursor uint64, limit int) ([]model.Subscription, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Subscription
	for _, s := range f.rows {
		if s.SubscriberKey == subscriberKey && s.ID > cursor {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	var next uint64
	if len(out) > 0 {
		next = out[len(out)-1].ID
	}
	return out, next, nil
}

// fakeNotifStore 内存版通知存储
type fakeNotifStore struct {
	mu         sync.Mutex
	rows       []model.Notification
	failCreate bool
}

func (f *fakeNotifStore) Create(_ context.Context, n *model.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.failCreate {
		return fmt.Errorf("store down")
	}
	n.ID = uint64(len(f.rows) + 1)
	f.rows = append(f.rows, *n)
	return nil
}

func (f *fakeNotifStore) ListByRecipient(_ context.Context, recipientID uint64, cursor uint64, limit int) ([]model.Notification, uint64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Notification
	for _, n := range f.rows {
		if n.RecipientID == recipientID && (cursor == 0 || n.ID < cursor) {
			out = append(out, n)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	var next uint64
	if len(out) > 0 {
		next = out[len(out)-1].ID
	}
	return out, next, nil
}

func (f *fakeNotifStore) CountUnread(_ context.Context, recipientID uint64) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var n int64
	for _, row := range f.rows {
		if row.RecipientID == recipientID && !row.IsRead {
			n++
		}
	}
	return n, nil
}

func (f *fakeNotifStore) MarkRead(_ context.Context, recipientID uint64, ids []uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	want := make(map[uint64]bool, len(ids))
	for _, id := range ids {
		want[id] = true
	}
	for i := range f.rows {
		if f.rows[i].RecipientID == recipientID && want[f.rows[i].ID] {
			f.rows[i].IsRead = true
		}
	}
	return nil
}

func (f *fakeNotifStore) MarkAllRead(_ context.Context, recipientID uint64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.rows {
		if f.rows[i].RecipientID == recipientID {
			f.rows[i].IsRead = true
		}
	}
	return nil
}

// fakeConn 记录推送的连接
type fakeConn struct {
	mu       sync.Mutex
	written  []any
	failNext bool
	closed   bool
}

func (c *fakeConn) WriteJSON(v any) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failNext {
		return fmt.Errorf("broken pipe")
	}
	c.written = append(c.written, v)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}
