package main

import (
	"context"
	"log"
	"time"

	"chatlab/config"
	"chatlab/internal/domain/conversation"
	"chatlab/internal/domain/message"
	"chatlab/internal/domain/user"
	"chatlab/internal/handler"
	"chatlab/internal/realtime"
	chatredis "chatlab/internal/redis"
	"chatlab/internal/repository"
	"chatlab/internal/server"
	"chatlab/internal/services"
	"chatlab/internal/storage"
	"chatlab/pkg/database"
	"chatlab/pkg/logger"
)

func main() {
	cfg := config.LoadConfig()

	logMode := logger.DevelopmentMode
	if cfg.AppMode == server.ReleaseMode {
		logMode = logger.ProductionMode
	}
	l := logger.New(logMode)
	logger.SetGlobalLogger(l)

	database.Connect(cfg)
	if err := database.DB.AutoMigrate(
		&user.User{},
		&user.Contact{},
		&conversation.Conversation{},
		&conversation.Participant{},
		&message.Message{},
		&message.MessageRead{},
	); err != nil {
		log.Fatalf("Failed to apply GORM migrations: %v", err)
	}

	redisClient := chatredis.NewClient(chatredis.Config{
		Host:     cfg.RedisHost,
		Port:     cfg.RedisPort,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	publisher := chatredis.NewPublisher(redisClient)
	presence := chatredis.NewPresenceStore(redisClient, publisher, 5*time.Minute)
	limiter := chatredis.NewRateLimiter(redisClient, chatredis.DefaultRateLimitConfig())

	// Uploads are disabled when no bucket is configured; everything else
	// keeps working.
	var store *storage.Client
	if cfg.S3Bucket != "" {
		s3Client, err := storage.NewClient(context.Background(), storage.S3Config{
			Region:     cfg.S3Region,
			Bucket:     cfg.S3Bucket,
			AccessKey:  cfg.S3AccessKey,
			SecretKey:  cfg.S3SecretKey,
			Endpoint:   cfg.S3Endpoint,
			PublicBase: cfg.S3PublicBase,
			PresignTTL: 15 * time.Minute,
		})
		if err != nil {
			log.Fatalf("Failed to init object storage: %v", err)
		}
		store = s3Client
	} else {
		l.Warnf("S3_BUCKET not set, file uploads disabled")
	}

	userRepo := repository.NewUserRepository(database.DB)
	convRepo := repository.NewConversationRepository(database.DB)
	messageRepo := repository.NewMessageRepository(database.DB)

	authService := services.NewAuthService(userRepo, cfg)
	userService := services.NewUserService(userRepo)
	conversationService := services.NewConversationService(convRepo, userRepo, messageRepo)
	messageService := services.NewMessageService(messageRepo, convRepo)
	uploadService := services.NewUploadService(store)

	hub := realtime.NewHub(userService, conversationService, messageService, presence)
	hubCtx, cancelHub := context.WithCancel(context.Background())
	defer cancelHub()
	go hub.Run(hubCtx)

	srv := server.New(cfg, l)
	srv.SetupRoutes(&server.Handlers{
		Auth:          handler.NewAuthHandler(authService),
		Users:         handler.NewUserHandler(userService, conversationService),
		Conversations: handler.NewConversationHandler(conversationService),
		Messages:      handler.NewMessageHandler(messageService),
		Uploads:       handler.NewUploadHandler(uploadService),
		Realtime:      realtime.NewHandler(authService, hub),
	}, authService, limiter)

	if err := srv.Start(); err != nil {
		log.Fatalf("Server exited with error: %v", err)
	}
}
