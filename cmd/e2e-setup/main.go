package main

import (
	"context"
	"flag"
	"log"
	"os"
	"time"

	"telegram-agency-bot/internal/config"
	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/domain/ports/repository"
	pg "telegram-agency-bot/internal/infra/db/postgres"
	red "telegram-agency-bot/internal/infra/redis"
)

// Resets the database to a clean, predictable state for manual end-to-end
// testing: applies the schema, truncates data, drops stale wizard sessions,
// and registers the configured admins as users.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	schemaPath := flag.String("schema", "deploy/postgres/init.sql", "path to schema file")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	pool, err := pg.Connect(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	log.Println("--- E2E environment setup ---")

	schema, err := os.ReadFile(*schemaPath)
	if err != nil {
		log.Fatalf("read schema: %v", err)
	}
	if _, err := pool.Exec(ctx, string(schema)); err != nil {
		log.Fatalf("apply schema: %v", err)
	}
	log.Println("schema applied")

	const truncate = `TRUNCATE users, courses, purchases, course_access,
		broadcasts, recurring_broadcasts, broadcast_deliveries
		RESTART IDENTITY CASCADE`
	if _, err := pool.Exec(ctx, truncate); err != nil {
		log.Fatalf("truncate: %v", err)
	}
	log.Println("tables truncated")

	redisClient, err := red.NewClient(ctx, &cfg.Redis)
	if err != nil {
		log.Printf("redis unavailable, skipping session flush: %v", err)
	} else {
		defer redisClient.Close()
		sessions := red.NewWizardSessionRepo(redisClient, cfg.Redis.SessionTTL)
		for _, adminID := range cfg.Bot.AdminIDs {
			_ = sessions.Clear(ctx, adminID, adminID)
		}
		log.Println("wizard sessions cleared")
	}

	userRepo := pg.NewUserRepo(pool)
	for _, adminID := range cfg.Bot.AdminIDs {
		u, err := model.NewUser(adminID, "admin")
		if err != nil {
			log.Fatalf("admin user: %v", err)
		}
		if err := userRepo.Save(ctx, repository.NoTX, u); err != nil {
			log.Fatalf("save admin user: %v", err)
		}
	}
	log.Printf("registered %d admin users", len(cfg.Bot.AdminIDs))

	log.Println("--- setup complete ---")
}
