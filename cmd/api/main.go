package main

import (
	"context"

	"Lee_Tube/internal/config"
	"Lee_Tube/internal/model"
	"Lee_Tube/internal/pkg"
	"Lee_Tube/internal/repository/mysql"
	"Lee_Tube/internal/repository/redis"
	"Lee_Tube/internal/router"
	"Lee_Tube/internal/service"
	"Lee_Tube/internal/ws"

	"github.com/sirupsen/logrus"
)

func main() {
	config.Init()
	pkg.SetSecrets(config.Conf.JWT.AccessSecret, config.Conf.JWT.RefreshSecret)

	if err := mysql.InitDB(config.Conf.Mysql.DSN()); err != nil {
		panic(err)
	}

	// 连接redis
	if err := redis.Init(config.Conf.Redis.Addr, config.Conf.Redis.Password, config.Conf.Redis.DB); err != nil {
		panic(err)
	}
	defer redis.Close()

	// 自动建表（开发阶段 OK）
	mysql.DB.AutoMigrate(
		&model.User{},
		&model.Video{},
		&model.Tweet{},
		&model.Comment{},
		&model.Reaction{},
		&model.Subscription{},
		&model.Notification{},
		&model.EngagementOutbox{},
	)

	// kafka 不可用时降级成日志出口，互动事件不阻塞启动
	var sender service.EventSender
	producer, err := pkg.NewKafkaProducer(pkg.KafkaConfig{
		Brokers: config.Conf.Kafka.Brokers,
		Topic:   config.Conf.Kafka.Topic,
	})
	if err != nil {
		logrus.Warnf("kafka unavailable, fall back to log sender: %v", err)
		sender = service.SenderFunc(service.LogSender)
	} else {
		sender = producer
		defer producer.Close()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go service.NewOutboxRelayer(sender).Run(ctx)
	go service.NewSubscriberCountReconciler().Run(ctx)

	registry := ws.NewMemoryRegistry()

	// Gin
	r := router.InitRouter(registry)
	if err := r.Run(config.Conf.Server.Addr); err != nil {
		logrus.Fatalf("server exit: %v", err)
	}
}
