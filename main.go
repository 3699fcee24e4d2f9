package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"newsdesk/auth"
	"newsdesk/config"
	"newsdesk/database"
	"newsdesk/events"
	"newsdesk/handlers"
	"newsdesk/logger"
	"newsdesk/mailer"
	"newsdesk/media"
	"newsdesk/middleware"
	"newsdesk/otp"
	"newsdesk/repository"
	"newsdesk/routes"
	"newsdesk/scheduler"
	"newsdesk/services"
	"newsdesk/websocket"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	if err := logger.Init(cfg.LogLevel); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Log

	if err := cfg.Validate(); err != nil {
		log.Fatal("Invalid configuration", zap.Error(err))
	}

	db, err := database.Connect(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer func() {
		if err := database.Disconnect(); err != nil {
			log.Error("MongoDB disconnect failed", zap.Error(err))
		}
	}()

	indexCtx, indexCancel := context.WithTimeout(context.Background(), 30*time.Second)
	if err := database.EnsureIndexes(indexCtx, db); err != nil {
		log.Fatal("Failed to create indexes", zap.Error(err))
	}
	indexCancel()

	admins := repository.NewAdminRepository(db)
	users := repository.NewUserRepository(db)
	posts := repository.NewPostRepository(db)
	comments := repository.NewCommentRepository(db)
	reviews := repository.NewReviewRepository(db)

	jobs := scheduler.New()

	var store otp.Store
	if cfg.RedisAddr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr, Password: cfg.RedisPassword, DB: cfg.RedisDB})
		pingCtx, pingCancel := context.WithTimeout(context.Background(), 5*time.Second)
		err := rdb.Ping(pingCtx).Err()
		pingCancel()
		if err != nil {
			log.Fatal("Failed to connect to Redis", zap.String("addr", cfg.RedisAddr), zap.Error(err))
		}
		defer rdb.Close()
		store = otp.NewRedisStore(rdb)
		log.Info("OTP store: redis", zap.String("addr", cfg.RedisAddr))
	} else {
		mem := otp.NewMemoryStore()
		if err := jobs.AddSweepJob("*/5 * * * *", "otp", mem); err != nil {
			log.Fatal("Failed to schedule OTP sweep", zap.Error(err))
		}
		store = mem
		log.Info("OTP store: memory")
	}

	mail := mailer.New(mailer.SMTPConfig{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		FromName: cfg.MailFromName,
	})
	uploader, err := media.New(cfg.CloudinaryURL)
	if err != nil {
		log.Fatal("Failed to configure image uploads", zap.Error(err))
	}

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	hub := websocket.NewHub(admins)
	go hub.Run(rootCtx)

	publishers := events.Multi{hub}
	if len(cfg.KafkaBrokers) > 0 {
		kafka := events.NewKafkaPublisher(cfg.KafkaBrokers, events.KafkaTopics{
			PostPublished: cfg.KafkaTopicPostPublished,
			PostDeleted:   cfg.KafkaTopicPostDeleted,
		})
		defer func() {
			if err := kafka.Close(); err != nil {
				log.Error("Kafka writer close failed", zap.Error(err))
			}
		}()
		publishers = append(publishers, kafka)
		log.Info("Post events: kafka", zap.Strings("brokers", cfg.KafkaBrokers))
	}

	tokens := auth.NewTokens(cfg.JWTSecret, cfg.JWTTTL)
	adminService := services.NewAdminService(admins, users, posts, store, mail, uploader, tokens, cfg.AdminOTPTTL)
	userService := services.NewUserService(users, store, mail, uploader, tokens, cfg.UserOTPTTL)
	postService := services.NewPostService(posts, comments, reviews, admins, users, uploader, publishers)
	commentService := services.NewCommentService(comments, posts, users)
	reviewService := services.NewReviewService(reviews, posts, users)

	if err := jobs.AddPublishJob(cfg.PublishSchedule, postService); err != nil {
		log.Fatal("Invalid publish schedule", zap.String("schedule", cfg.PublishSchedule), zap.Error(err))
	}

	authLimiter := middleware.NewIPRateLimiter(cfg.RateLimitPerMinute, time.Minute)
	if err := jobs.AddSweepJob("*/10 * * * *", "ratelimit", authLimiter); err != nil {
		log.Fatal("Failed to schedule rate limit sweep", zap.Error(err))
	}
	jobs.Start()

	gin.SetMode(cfg.GinMode)
	router := routes.SetupRouter(routes.Handlers{
		Admins:    handlers.NewAdminHandler(adminService),
		Users:     handlers.NewUserHandler(userService),
		Posts:     handlers.NewPostHandler(postService),
		Comments:  handlers.NewCommentHandler(commentService),
		Reviews:   handlers.NewReviewHandler(reviewService),
		WebSocket: hub.Handler(tokens),
	}, middleware.NewAuthenticator(tokens, admins, users), routes.Options{
		CORSOrigins: cfg.CORSOrigins,
		AuthLimiter: authLimiter,
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info("Server listening", zap.String("port", cfg.Port))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	<-rootCtx.Done()
	log.Info("Shutting down", zap.Int("websocket_users", hub.ConnectedUsers()))

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	select {
	case <-jobs.Stop().Done():
	case <-shutdownCtx.Done():
		log.Warn("Scheduler jobs still running at exit")
	}

	log.Info("Server stopped")
}
