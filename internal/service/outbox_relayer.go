package service

import (
	"context"
	"time"

	"Lee_Tube/internal/model"
	"Lee_Tube/internal/pkg"
	"Lee_Tube/internal/repository/mysql"

	"github.com/sirupsen/logrus"
)

// OutboxStore 外发表读写
type OutboxStore interface {
	List(ctx context.Context, batchSize int) ([]model.EngagementOutbox, error)
	RetryUpdate(ctx context.Context, id uint64) error
	SuccessUpdate(ctx context.Context, id uint64) error
}

// EventSender 事件投递出口，*pkg.KafkaProducer 直接满足
type EventSender interface {
	Send(ctx context.Context, key string, value []byte) error
}

// OutboxRelayer 互动事件投递器：定时批量把 outbox 里的待发事件送进 kafka
type OutboxRelayer struct {
	repo      OutboxStore
	sender    EventSender
	batchSize int
	interval  time.Duration
}

func NewOutboxRelayer(sender EventSender) *OutboxRelayer {
	return &OutboxRelayer{
		repo:      mysql.NewOutboxRepository(),
		sender:    sender,
		batchSize: 200,
		interval:  time.Second,
	}
}

func (r *OutboxRelayer) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.drainOnce(ctx)
		}
	}
}

func (r *OutboxRelayer) drainOnce(ctx context.Context) {
	rows, err := r.repo.List(ctx, r.batchSize)
	if err != nil {
		logrus.Warnf("outbox query err: %v", err)
		return
	}
	for i := range rows {
		ob := rows[i]
		key := pkg.MakeEventKey(ob.TargetKind, ob.TargetID)
		if err = r.sender.Send(ctx, key, []byte(ob.Payload)); err != nil {
			logrus.Warnf("outbox send err: id=%d err=%v", ob.ID, err)
			_ = r.repo.RetryUpdate(ctx, ob.ID)
			continue
		}
		_ = r.repo.SuccessUpdate(ctx, ob.ID)
	}
}

// LogSender 兜底 sender：kafka 不可用时只打日志，事件不会阻塞业务
func LogSender(ctx context.Context, key string, value []byte) error {
	logrus.Infof("OUTBOX SEND key=%s payload=%s", key, value)
	return nil
}

// SenderFunc 函数适配 EventSender
type SenderFunc func(ctx context.Context, key string, value []byte) error

func (f SenderFunc) Send(ctx context.Context, key string, value []byte) error {
	return f(ctx, key, value)
}

// SubscriberCountReconciler 冗余订阅数对账：周期性比对订阅表的真实值，
// 修正 users.subscriber_count 的偏差
type SubscriberCountReconciler struct {
	repo      *mysql.SubscriberCountReconcilerRepo
	batchSize int
	interval  time.Duration
	lastID    uint64
}

func NewSubscriberCountReconciler() *SubscriberCountReconciler {
	return &SubscriberCountReconciler{
		repo:      mysql.NewSubscriberCountReconcilerRepo(),
		batchSize: 500,
		interval:  5 * time.Minute,
	}
}

func (r *SubscriberCountReconciler) Run(ctx context.Context) {
	t := time.NewTicker(r.interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			r.reconcileOnce(ctx)
		}
	}
}

func (r *SubscriberCountReconciler) reconcileOnce(ctx context.Context) {
	channels, nextID, err := r.repo.ReconcileList(ctx, r.batchSize, r.lastID)
	if err != nil {
		logrus.Warnf("reconcile list err: %v", err)
		return
	}
	if len(channels) == 0 {
		// 扫完一轮，从头再来
		r.lastID = 0
		return
	}
	r.lastID = nextID

	for _, ch := range channels {
		real, err := r.repo.RealSubscribers(ctx, ch.ID)
		if err != nil {
			continue
		}
		if real != ch.SubscriberCount {
			_ = r.repo.ReconcileSubscribers(ctx, ch.ID, real)
		}
	}
}
