// Command seeder fills a development database with fake admins, readers and posts.
package main

import (
	"context"
	"flag"
	"time"

	"newsdesk/config"
	"newsdesk/database"
	"newsdesk/logger"
	"newsdesk/repository"

	"github.com/brianvoe/gofakeit/v6"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const defaultPassword = "password123"

func main() {
	nAdmins := flag.Int("admins", 5, "number of admins to create")
	nUsers := flag.Int("users", 20, "number of readers to create")
	nPosts := flag.Int("posts", 50, "number of posts to create")
	seed := flag.Int64("seed", 0, "faker seed (0 picks a random one)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}
	if err := logger.Init(cfg.LogLevel); err != nil {
		panic(err)
	}
	defer logger.Sync()
	log := logger.Log

	if *nAdmins < 0 || *nUsers < 0 || *nPosts < 0 {
		log.Fatal("Counts must not be negative")
	}

	db, err := database.Connect(cfg.MongoURI, cfg.MongoDatabase)
	if err != nil {
		log.Fatal("Failed to connect to MongoDB", zap.Error(err))
	}
	defer database.Disconnect()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	if err := database.EnsureIndexes(ctx, db); err != nil {
		log.Fatal("Failed to create indexes", zap.Error(err))
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(defaultPassword), bcrypt.DefaultCost)
	if err != nil {
		log.Fatal("Failed to hash seed password", zap.Error(err))
	}

	admins := repository.NewAdminRepository(db)
	users := repository.NewUserRepository(db)
	s := &seeder{
		faker:        gofakeit.New(*seed),
		admins:       admins,
		followers:    admins,
		users:        users,
		posts:        repository.NewPostRepository(db),
		passwordHash: string(hash),
		now:          time.Now(),
	}

	counts, err := s.run(ctx, *nAdmins, *nUsers, *nPosts)
	if err != nil {
		log.Fatal("Seeding failed", zap.Error(err), zap.Any("created", counts))
	}
	log.Info("Seeding complete",
		zap.Int("admins", counts.Admins),
		zap.Int("users", counts.Users),
		zap.Int("posts", counts.Posts),
		zap.Int("follows", counts.Follows),
		zap.String("password", defaultPassword))
}
