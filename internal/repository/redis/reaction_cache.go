package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"Lee_Tube/internal/model"

	"github.com/redis/go-redis/v9"
)

const (
	ReactionCntTTL     = 24 * time.Hour
	ReactionLockTTL    = 300 * time.Millisecond
	ReactionCntPrefix  = "react:cnt"  // 缓存某个目标的 like/dislike 计数
	ReactionLockPrefix = "lock:react" // 计数重建锁
	ReactionDelayedDel = 500 * time.Millisecond
)

// ReactionCountCache 反应计数缓存。写侧只做失效（删Key+延迟二删），
// 读侧拿锁回源重建，避免计数Key被并发写坏
type ReactionCountCache struct {
	cntTTL time.Duration
}

func NewReactionCountCache() *ReactionCountCache {
	return &ReactionCountCache{cntTTL: ReactionCntTTL}
}

func (r *ReactionCountCache) cntKey(kind string, targetID uint64) string {
	return fmt.Sprintf("%s:%s:%d", ReactionCntPrefix, kind, targetID)
}

func (r *ReactionCountCache) lockKey(kind string, targetID uint64) string {
	return fmt.Sprintf("%s:%s:%d", ReactionLockPrefix, kind, targetID)
}

// GetCached 读缓存计数，第二个返回值表示是否命中
func (r *ReactionCountCache) GetCached(ctx context.Context, kind string, targetID uint64) (model.ReactionCounts, bool, error) {
	vals, err := Client.HGetAll(ctx, r.cntKey(kind, targetID)).Result()
	if err != nil {
		return model.ReactionCounts{}, false, err
	}
	if len(vals) == 0 {
		return model.ReactionCounts{}, false, nil
	}
	var counts model.ReactionCounts
	counts.LikeCount, _ = strconv.ParseInt(vals["like"], 10, 64)
	counts.DislikeCount, _ = strconv.ParseInt(vals["dislike"], 10, 64)
	return counts, true, nil
}

// Set 回填计数
func (r *ReactionCountCache) Set(ctx context.Context, kind string, targetID uint64, counts model.ReactionCounts) error {
	key := r.cntKey(kind, targetID)
	if err := Client.HSet(ctx, key,
		"like", counts.LikeCount,
		"dislike", counts.DislikeCount,
	).Err(); err != nil {
		return err
	}
	return Client.Expire(ctx, key, r.cntTTL).Err()
}

// Delete 写后失效：立刻删Key，再延迟二删抵消并发回填窗口
func (r *ReactionCountCache) Delete(ctx context.Context, kind string, targetID uint64) error {
	key := r.cntKey(kind, targetID)
	if err := Client.Del(ctx, key).Err(); err != nil && !errors.Is(err, redis.Nil) {
		return err
	}
	go func() {
		t := time.NewTimer(ReactionDelayedDel)
		defer t.Stop()
		<-t.C
		_ = Client.Del(context.Background(), key).Err()
	}()
	return nil
}

// TryLock 计数重建锁，SetNX + token
func (r *ReactionCountCache) TryLock(ctx context.Context, kind string, targetID uint64, token string) (bool, error) {
	return Client.SetNX(ctx, r.lockKey(kind, targetID), token, ReactionLockTTL).Result()
}

// Unlock 用lua保证只释放自己的锁
func (r *ReactionCountCache) Unlock(ctx context.Context, kind string, targetID uint64, token string) error {
	_, err := redis.NewScript(`
if redis.call("get", KEYS[1]) == ARGV[1] then
  return redis.call("del", KEYS[1])
else
  return 0
end`).Run(ctx, Client, []string{r.lockKey(kind, targetID)}, token).Result()
	return err
}
