package service

import (
	"context"
	"errors"
	"testing"

	"Lee_Tube/internal/model"
	"Lee_Tube/internal/pkg"
)

func newSubscriptionFixture() (*SubscriptionService, *fakeSubStore, *fakeNotifier) {
	repo := newFakeSubStore()
	notifier := &fakeNotifier{}
	channels := &fakeTargets{owners: map[uint64]uint64{100: 100, 101: 101}}
	svc := NewSubscriptionService(repo, channels, notifier)
	return svc, repo, notifier
}

// TestSubscriptionToggle 订阅开关语义
func TestSubscriptionToggle(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newSubscriptionFixture()

	t.Run("SubscribeThenUnsubscribe", func(t *testing.T) {
		subscribed, err := svc.Toggle(ctx, "u:1", 1, 100)
		if err != nil {
			t.Fatal(err)
		}
		if !subscribed {
			t.Fatal("first toggle should subscribe")
		}

		got, err := svc.IsSubscribed(ctx, "u:1", 100)
		if err != nil || !got {
			t.Fatalf("expected subscribed, got %v err=%v", got, err)
		}

		subscribed, err = svc.Toggle(ctx, "u:1", 1, 100)
		if err != nil {
			t.Fatal(err)
		}
		if subscribed {
			t.Fatal("second toggle should unsubscribe")
		}
	})

	t.Run("SelfSubscribeRejected", func(t *testing.T) {
		_, err := svc.Toggle(ctx, "u:100", 100, 100)
		if !errors.Is(err, pkg.ErrInvalidArgument) {
			t.Fatalf("expected invalid argument, got %v", err)
		}
	})

	t.Run("MissingChannel", func(t *testing.T) {
		_, err := svc.Toggle(ctx, "u:1", 1, 999)
		if !errors.Is(err, pkg.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("AnonymousSessionSubscribes", func(t *testing.T) {
		subscribed, err := svc.Toggle(ctx, "s:sess-9", 0, 100)
		if err != nil || !subscribed {
			t.Fatalf("anonymous subscribe should pass: %v %v", subscribed, err)
		}
	})
}

// TestSubscriptionConflictRetry 唯一键竞争输了重试一次
func TestSubscriptionConflictRetry(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newSubscriptionFixture()
	repo.conflicts = 1

	subscribed, err := svc.Toggle(ctx, "u:1", 1, 100)
	if err != nil {
		t.Fatalf("toggle should survive one conflict: %v", err)
	}
	if !subscribed {
		t.Fatal("expected subscribed after retry")
	}
}

// TestSubscriptionNotifications 只有登录用户订阅时通知频道主
func TestSubscriptionNotifications(t *testing.T) {
	ctx := context.Background()

	t.Run("LoginSubscribeNotifies", func(t *testing.T) {
		svc, _, notifier := newSubscriptionFixture()
		if _, err := svc.Toggle(ctx, "u:1", 1, 100); err != nil {
			t.Fatal(err)
		}
		if notifier.count() != 1 {
			t.Fatalf("expected 1 notification, got %d", notifier.count())
		}
		n := notifier.sent[0]
		if n.RecipientID != 100 || n.Type != model.NotifySubscribe {
			t.Fatalf("unexpected notification: %+v", n)
		}
	})

	t.Run("UnsubscribeDoesNotNotify", func(t *testing.T) {
		svc, _, notifier := newSubscriptionFixture()
		_, _ = svc.Toggle(ctx, "u:1", 1, 100)
		_, _ = svc.Toggle(ctx, "u:1", 1, 100)
		if notifier.count() != 1 {
			t.Fatalf("unsubscribe should not notify, got %d", notifier.count())
		}
	})

	t.Run("AnonymousSubscribeDoesNotNotify", func(t *testing.T) {
		svc, _, notifier := newSubscriptionFixture()
		if _, err := svc.Toggle(ctx, "s:sess-1", 0, 100); err != nil {
			t.Fatal(err)
		}
		if notifier.count() != 0 {
			t.Fatalf("anonymous subscribe should not notify, got %d", notifier.count())
		}
	})
}

// TestSetNotifications 通知开关以订阅关系存在为前提
func TestSetNotifications(t *testing.T) {
	ctx := context.Background()
	svc, repo, _ := newSubscriptionFixture()

	t.Run("NotSubscribed", func(t *testing.T) {
		err := svc.SetNotifications(ctx, "u:1", 100, false)
		if !errors.Is(err, pkg.ErrNotFound) {
			t.Fatalf("expected not found, got %v", err)
		}
	})

	t.Run("TogglesFlag", func(t *testing.T) {
		if _, err := svc.Toggle(ctx, "u:1", 1, 100); err != nil {
			t.Fatal(err)
		}
		if err := svc.SetNotifications(ctx, "u:1", 100, false); err != nil {
			t.Fatal(err)
		}
		if repo.rows[subKey("u:1", 100)].Notifications {
			t.Fatal("notifications flag should be off")
		}
		// 已是目标值时幂等成功
		if err := svc.SetNotifications(ctx, "u:1", 100, false); err != nil {
			t.Fatalf("repeat set should be a no-op: %v", err)
		}
	})
}

// TestSubscriptionLists 订阅者与已订阅频道的游标列表
func TestSubscriptionLists(t *testing.T) {
	ctx := context.Background()
	svc, _, _ := newSubscriptionFixture()

	for _, key := range []string{"u:1", "u:2", "s:sess-1"} {
		uid := uint64(0)
		if key == "u:1" {
			uid = 1
		} else if key == "u:2" {
			uid = 2
		}
		if _, err := svc.Toggle(ctx, key, uid, 100); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := svc.Toggle(ctx, "u:1", 1, 101); err != nil {
		t.Fatal(err)
	}

	subs, _, err := svc.ListSubscribers(ctx, 100, 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(subs) != 3 {
		t.Fatalf("expected 3 subscribers, got %d", len(subs))
	}

	channels, _, err := svc.ListSubscribedChannels(ctx, "u:1", 0, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(channels) != 2 {
		t.Fatalf("expected 2 channels, got %d", len(channels))
	}
}
