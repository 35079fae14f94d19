package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"testing"

	"Lee_Tube/internal/model"
	"Lee_Tube/internal/pkg"
)

func newReactionFixture() (*ReactionService, *fakeLedger, *fakeCache, *fakeNotifier) {
	ledger := newFakeLedger()
	cache := newFakeCache()
	notifier := &fakeNotifier{}
	targets := map[string]TargetOps{
		model.TargetVideo:   &fakeTargets{owners: map[uint64]uint64{10: 100, 11: 101}},
		model.TargetComment: &fakeTargets{owners: map[uint64]uint64{20: 200}},
		model.TargetTweet:   &fakeTargets{owners: map[uint64]uint64{30: 300}},
	}
	svc := NewReactionService(ledger, cache, targets, notifier)
	return svc, ledger, cache, notifier
}

// TestReactionToggleSemantics 翻转语义：首次点亮、重复取消、反向切换
func TestReactionToggleSemantics(t *testing.T) {
	ctx := context.Background()
	svc, ledger, _, _ := newReactionFixture()

	t.Run("FirstLike", func(t *testing.T) {
		res, err := svc.Toggle(ctx, "u:1", 1, model.TargetVideo, 10, "like")
		if err != nil {
			t.Fatalf("toggle err: %v", err)
		}
		if res.ViewerState != "like" || res.LikeCount != 1 || res.DislikeCount != 0 {
			t.Fatalf("unexpected result: %+v", res)
		}
	})

	t.Run("SameActionRemoves", func(t *testing.T) {
		res, err := svc.Toggle(ctx, "u:1", 1, model.TargetVideo, 10, "like")
		if err != nil {
			t.Fatalf("toggle err: %v", err)
		}
		if res.ViewerState != "none" || res.LikeCount != 0 {
			t.Fatalf("expected cleared like, got %+v", res)
		}
		if ledger.rowCount() != 0 {
			t.Fatalf("ledger should be empty, got %d rows", ledger.rowCount())
		}
	})

	t.Run("OppositeActionSwitches", func(t *testing.T) {
		if _, err := svc.Toggle(ctx, "u:1", 1, model.TargetVideo, 10, "like"); err != nil {
			t.Fatalf("toggle err: %v", err)
		}
		res, err := svc.Toggle(ctx, "u:1", 1, model.TargetVideo, 10, "dislike")
		if err != nil {
			t.Fatalf("toggle err: %v", err)
		}
		if res.ViewerState != "dislike" || res.LikeCount != 0 || res.DislikeCount != 1 {
			t.Fatalf("expected switch to dislike, got %+v", res)
		}
		// 切换是改行不是加行
		if ledger.rowCount() != 1 {
			t.Fatalf("expected single ledger row, got %d", ledger.rowCount())
		}
	})
}

// TestReactionToggleSequence like->dislike->dislike 应回到中性态
func TestReactionToggleSequence(t *testing.T) {
	ctx := context.Background()
	svc, ledger, _, _ := newReactionFixture()

	for _, action := range []string{"like", "dislike", "dislike"} {
		if _, err := svc.Toggle(ctx, "u:7", 7, model.TargetVideo, 10, action); err != nil {
			t.Fatalf("toggle %s err: %v", action, err)
		}
	}
	state, err := svc.ViewerState(ctx, "u:7", model.TargetVideo, 10)
	if err != nil {
		t.Fatalf("viewer state err: %v", err)
	}
	if state != "none" {
		t.Fatalf("expected none, got %s", state)
	}
	if ledger.rowCount() != 0 {
		t.Fatalf("expected empty ledger, got %d rows", ledger.rowCount())
	}
}

// TestReactionCountsAcrossActors 多个行为主体的计数彼此独立累加
func TestReactionCountsAcrossActors(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newReactionFixture()

	actors := []struct {
		key    string
		uid    uint64
		action string
	}{
		{"u:1", 1, "like"},
		{"u:2", 2, "like"},
		{"s:abc", 0, "like"},
		{"u:3", 3, "dislike"},
	}
	for _, a := range actors {
		if _, err := svc.Toggle(ctx, a.key, a.uid, model.TargetVideo, 10, a.action); err != nil {
			t.Fatalf("toggle %s err: %v", a.key, err)
		}
	}

	counts, err := svc.Counts(ctx, model.TargetVideo, 10)
	if err != nil {
		t.Fatalf("counts err: %v", err)
	}
	if counts.LikeCount != 3 || counts.DislikeCount != 1 {
		t.Fatalf("expected 3/1, got %+v", counts)
	}
}

// TestReactionConcurrentToggles N个行为主体并发乱序翻转同一目标：
// 结束后计数等于各主体终态之和，且每个主体至多一行
func TestReactionConcurrentToggles(t *testing.T) {
	ctx := context.Background()
	// 不挂缓存：这里校验的是台账本身的计数准确性
	ledger := newFakeLedger()
	svc := NewReactionService(ledger, nil, map[string]TargetOps{
		model.TargetVideo: &fakeTargets{owners: map[uint64]uint64{10: 100}},
	}, &fakeNotifier{})

	const actors = 16
	const steps = 40

	finals := make([]int8, actors)
	var wg sync.WaitGroup
	for i := 0; i < actors; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(int64(i + 1)))
			key := fmt.Sprintf("u:%d", i+1)
			var state int8
			for s := 0; s < steps; s++ {
				action, name := model.ActionLike, "like"
				if r.Intn(2) == 1 {
					action, name = model.ActionDislike, "dislike"
				}
				if _, err := svc.Toggle(ctx, key, uint64(i+1), model.TargetVideo, 10, name); err != nil {
					t.Errorf("actor %d toggle err: %v", i+1, err)
					return
				}
				// 本主体的操作各自有序，终态可以在本地推演
				if state == action {
					state = 0
				} else {
					state = action
				}
			}
			finals[i] = state
		}(i)
	}
	wg.Wait()

	var wantLike, wantDislike int64
	wantRows := 0
	for _, state := range finals {
		switch state {
		case model.ActionLike:
			wantLike++
			wantRows++
		case model.ActionDislike:
			wantDislike++
			wantRows++
		}
	}

	counts, err := svc.Counts(ctx, model.TargetVideo, 10)
	if err != nil {
		t.Fatal(err)
	}
	if counts.LikeCount != wantLike || counts.DislikeCount != wantDislike {
		t.Fatalf("counts drifted: got %+v, want %d/%d", counts, wantLike, wantDislike)
	}
	if ledger.rowCount() != wantRows {
		t.Fatalf("at-most-one-row violated: %d rows for %d reacted actors", ledger.rowCount(), wantRows)
	}
	for i, state := range finals {
		got, err := svc.ViewerState(ctx, fmt.Sprintf("u:%d", i+1), model.TargetVideo, 10)
		if err != nil {
			t.Fatal(err)
		}
		if got != model.ActionName(state) {
			t.Fatalf("actor %d state %s, want %s", i+1, got, model.ActionName(state))
		}
	}
}

// TestReactionConflictRetry 并发插入输了唯一键竞争时只重试一次
func TestReactionConflictRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("RetryOnceSucceeds", func(t *testing.T) {
		svc, ledger, _, _ := newReactionFixture()
		ledger.conflicts = 1
		res, err := svc.Toggle(ctx, "u:1", 1, model.TargetVideo, 10, "like")
		if err != nil {
			t.Fatalf("toggle should survive one conflict: %v", err)
		}
		if res.ViewerState != "like" {
			t.Fatalf("unexpected state %s", res.ViewerState)
		}
		if ledger.calls != 2 {
			t.Fatalf("expected 2 store calls, got %d", ledger.calls)
		}
	})

	t.Run("SecondConflictSurfaces", func(t *testing.T) {
		svc, ledger, _, _ := newReactionFixture()
		ledger.conflicts = 2
		_, err := svc.Toggle(ctx, "u:1", 1, model.TargetVideo, 10, "like")
		if !errors.Is(err, pkg.ErrConflict) {
			t.Fatalf("expected conflict error, got %v", err)
		}
	})
}

// TestReactionValidation 参数与权限校验
func TestReactionValidation(t *testing.T) {
	ctx := context.Background()
	svc, _, _, _ := newReactionFixture()

	t.Run("InvalidKind", func(t *testing.T) {
		_, err := svc.Toggle(ctx, "u:1", 1, "playlist", 10, "like")
		if !errors.Is(err, pkg.ErrInvalidArgument) {
			t.Fatalf("expected invalid argument, got %v", err)
		}
	})

	t.Run("InvalidAction", func(t *testing.T) {
		_, err := svc.Toggle(ctx, "u:1", 1, model.TargetVideo, 10, "love")
		if !errors.Is(err, pkg.ErrInvalidArgument) {
			t.Fatalf("expected invalid argument, got %v", err)
		}
	})

	t.Run("MissingTarget", func(t *testing.T) {
		_, err := svc.Toggle(ctx, "u:1", 1, model.TargetVideo, 999, "like")
		if !errors.Is(err, pkg.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("AnonymousVideoAllowed", func(t *testing.T) {
		res, err := svc.Toggle(ctx, "s:sess-1", 0, model.TargetVideo, 10, "like")
		if err != nil {
			t.Fatalf("anonymous video reaction should pass: %v", err)
		}
		if res.ViewerState != "like" {
			t.Fatalf("unexpected state %s", res.ViewerState)
		}
	})

	t.Run("AnonymousCommentRejected", func(t *testing.T) {
		_, err := svc.Toggle(ctx, "s:sess-1", 0, model.TargetComment, 20, "like")
		if !errors.Is(err, pkg.ErrUnauthorized) {
			t.Fatalf("expected unauthorized, got %v", err)
		}
	})
}

// TestReactionNotifications 只有落成like的结果态才通知属主，自己反应自己不通知
func TestReactionNotifications(t *testing.T) {
	ctx := context.Background()

	t.Run("NewLikeNotifiesOwner", func(t *testing.T) {
		svc, _, _, notifier := newReactionFixture()
		if _, err := svc.Toggle(ctx, "u:1", 1, model.TargetVideo, 10, "like"); err != nil {
			t.Fatal(err)
		}
		if notifier.count() != 1 {
			t.Fatalf("expected 1 notification, got %d", notifier.count())
		}
		n := notifier.sent[0]
		if n.RecipientID != 100 || n.Type != model.NotifyLike || n.TargetID != 10 {
			t.Fatalf("unexpected notification: %+v", n)
		}
	})

	t.Run("ToggleOffDoesNotNotify", func(t *testing.T) {
		svc, _, _, notifier := newReactionFixture()
		_, _ = svc.Toggle(ctx, "u:1", 1, model.TargetVideo, 10, "like")
		_, _ = svc.Toggle(ctx, "u:1", 1, model.TargetVideo, 10, "like")
		if notifier.count() != 1 {
			t.Fatalf("toggle-off should not notify, got %d", notifier.count())
		}
	})

	t.Run("DislikeDoesNotNotify", func(t *testing.T) {
		svc, _, _, notifier := newReactionFixture()
		if _, err := svc.Toggle(ctx, "u:1", 1, model.TargetVideo, 10, "dislike"); err != nil {
			t.Fatal(err)
		}
		if notifier.count() != 0 {
			t.Fatalf("dislike should not notify, got %d", notifier.count())
		}
	})

	t.Run("OwnerLikingOwnTarget", func(t *testing.T) {
		svc, _, _, notifier := newReactionFixture()
		// 视频10属于用户100
		if _, err := svc.Toggle(ctx, "u:100", 100, model.TargetVideo, 10, "like"); err != nil {
			t.Fatal(err)
		}
		if notifier.count() != 0 {
			t.Fatalf("self-like should not notify, got %d", notifier.count())
		}
	})
}

// TestReactionCountCache 缓存命中直接回，翻转后失效，miss时重建
func TestReactionCountCache(t *testing.T) {
	ctx := context.Background()
	svc, _, cache, _ := newReactionFixture()

	if _, err := svc.Toggle(ctx, "u:1", 1, model.TargetVideo, 10, "like"); err != nil {
		t.Fatal(err)
	}
	// Toggle内部失效一次再回源重建
	if cache.deletes == 0 {
		t.Fatal("toggle should invalidate cached counts")
	}
	if cache.sets == 0 {
		t.Fatal("fresh read should rebuild the cache")
	}

	setsBefore := cache.sets
	counts, err := svc.Counts(ctx, model.TargetVideo, 10)
	if err != nil {
		t.Fatal(err)
	}
	if counts.LikeCount != 1 {
		t.Fatalf("expected like=1, got %+v", counts)
	}
	if cache.sets != setsBefore {
		t.Fatal("cache hit should not rebuild")
	}
}

// TestReactionCleanup 目标删除后反应行清空、计数归零
func TestReactionCleanup(t *testing.T) {
	ctx := context.Background()
	svc, ledger, _, _ := newReactionFixture()

	_, _ = svc.Toggle(ctx, "u:1", 1, model.TargetVideo, 10, "like")
	_, _ = svc.Toggle(ctx, "u:2", 2, model.TargetVideo, 10, "dislike")
	_, _ = svc.Toggle(ctx, "u:1", 1, model.TargetVideo, 11, "like")

	if err := svc.Cleanup(ctx, model.TargetVideo, 10); err != nil {
		t.Fatal(err)
	}
	if ledger.rowCount() != 1 {
		t.Fatalf("expected only other target's row to survive, got %d", ledger.rowCount())
	}
	counts, err := svc.Counts(ctx, model.TargetVideo, 10)
	if err != nil {
		t.Fatal(err)
	}
	if counts.LikeCount != 0 || counts.DislikeCount != 0 {
		t.Fatalf("expected zero counts, got %+v", counts)
	}
}
