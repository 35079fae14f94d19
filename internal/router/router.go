package router

import (
	"Lee_Tube/internal/handler"
	"Lee_Tube/internal/middleware"
	"Lee_Tube/internal/model"
	"Lee_Tube/internal/repository/mysql"
	"Lee_Tube/internal/repository/redis"
	"Lee_Tube/internal/service"
	"Lee_Tube/internal/ws"

	"github.com/gin-gonic/gin"
)

func InitRouter(registry ws.Registry) *gin.Engine {
	r := gin.Default()

	userRepo := mysql.NewUserRepository()
	videoRepo := mysql.NewVideoRepository()
	tweetRepo := mysql.NewTweetRepository()
	commentRepo := mysql.NewCommentRepository()
	reactionRepo := mysql.NewReactionRepository()
	subRepo := mysql.NewSubscriptionRepository()
	notifRepo := mysql.NewNotificationRepository()

	notifSvc := service.NewNotificationService(notifRepo, registry)
	reactionSvc := service.NewReactionService(reactionRepo, redis.NewReactionCountCache(), map[string]service.TargetOps{
		model.TargetVideo:   videoRepo,
		model.TargetComment: commentRepo,
		model.TargetTweet:   tweetRepo,
	}, notifSvc)
	commentSvc := service.NewCommentService(commentRepo, userRepo, videoRepo, reactionSvc, notifSvc)
	videoSvc := service.NewVideoService(videoRepo, commentRepo, reactionSvc, subRepo, notifSvc)
	tweetSvc := service.NewTweetService(tweetRepo, reactionSvc)
	subSvc := service.NewSubscriptionService(subRepo, userRepo, notifSvc)

	user := handler.NewUserHandler(service.NewUserService())
	video := handler.NewVideoHandler(videoSvc)
	tweet := handler.NewTweetHandler(tweetSvc)
	comment := handler.NewCommentHandler(commentSvc)
	reaction := handler.NewReactionHandler(reactionSvc)
	sub := handler.NewSubscriptionHandler(subSvc)
	notif := handler.NewNotificationHandler(notifSvc, registry)

	// 用户相关接口
	userGroup := r.Group("/api/user")
	{
		userGroup.POST("/register", user.Register)
		userGroup.POST("/login", user.Login)
		userGroup.POST("/refresh", user.Refresh)
		userGroup.GET("/:id", user.Profile)
		userGroup.GET("/:id/tweets", tweet.ListByOwner)
	}

	// 登录态接口
	authGroup := r.Group("/api/auth")
	authGroup.Use(middleware.AuthMiddleware())
	{
		authGroup.POST("/logout", user.Logout)
		authGroup.POST("/password", user.ChangePassword)
	}

	// 视频：读匿名可访问，写要登录
	r.GET("/api/video/:id", video.Get)
	videoAuth := r.Group("/api/video")
	videoAuth.Use(middleware.AuthMiddleware())
	{
		videoAuth.POST("", video.Publish)
		videoAuth.DELETE("/:id", video.Delete)
	}

	// 评论树读接口带可选身份，用来标注观看者自己的反应状态
	commentRead := r.Group("/api/video/:id/comments")
	commentRead.Use(middleware.OptionalAuthMiddleware())
	{
		commentRead.GET("", comment.Thread)
	}
	r.POST("/api/video/:id/comments", middleware.AuthMiddleware(), comment.Add)

	commentGroup := r.Group("/api/comment")
	commentGroup.Use(middleware.AuthMiddleware())
	{
		commentGroup.POST("/:id/replies", comment.Reply)
		commentGroup.PUT("/:id", comment.Update)
		commentGroup.DELETE("/:id", comment.Delete)
		commentGroup.POST("/:id/report", comment.Report)
	}

	// 动态相关接口
	tweetGroup := r.Group("/api/tweet")
	tweetGroup.Use(middleware.AuthMiddleware())
	{
		tweetGroup.POST("", tweet.Create)
		tweetGroup.DELETE("/:id", tweet.Delete)
	}

	// 反应接口：匿名会话也能操作，业务层限制非视频目标必须登录
	reactGroup := r.Group("/api/react")
	reactGroup.Use(middleware.OptionalAuthMiddleware())
	{
		reactGroup.POST("/:kind/:id", reaction.Toggle)
		reactGroup.GET("/:kind/:id/count", reaction.Count)
		reactGroup.GET("/:kind/:id/state", reaction.State)
	}

	// 订阅接口：匿名会话可订阅，通知开关等个性化能力仍走匿名键
	channelGroup := r.Group("/api/channel")
	channelGroup.Use(middleware.OptionalAuthMiddleware())
	{
		channelGroup.POST("/:id/subscribe", sub.Toggle)
		channelGroup.GET("/:id/subscribe", sub.Status)
		channelGroup.PUT("/:id/notifications", sub.SetNotifications)
		channelGroup.GET("/:id/subscribers", sub.ListSubscribers)
		channelGroup.GET("/:id/videos", video.ListByChannel)
	}
	r.GET("/api/subscriptions", middleware.OptionalAuthMiddleware(), sub.ListSubscriptions)

	// 通知相关接口
	notifGroup := r.Group("/api/notification")
	notifGroup.Use(middleware.AuthMiddleware())
	{
		notifGroup.GET("/list", notif.List)
		notifGroup.POST("/read", notif.MarkRead)
		notifGroup.POST("/read-all", notif.MarkAllRead)
	}

	// websocket 用 query token 鉴权，升级前没法带 Authorization 头
	r.GET("/api/ws", notif.Connect)

	return r
}
