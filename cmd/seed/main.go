package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"telegram-agency-bot/internal/config"
	"telegram-agency-bot/internal/domain/model"
	"telegram-agency-bot/internal/domain/ports/repository"
	pg "telegram-agency-bot/internal/infra/db/postgres"
)

// Seeds sample users, courses, and purchases so the segments, analytics,
// and broadcast flows have something to chew on locally.
func main() {
	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	users := flag.Int("users", 50, "number of sample users")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, true)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := pg.Connect(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer pool.Close()

	userRepo := pg.NewUserRepo(pool)
	courseRepo := pg.NewCourseRepo(pool)
	purchaseRepo := pg.NewPurchaseRepo(pool)

	if existing, err := userRepo.CountUsers(ctx, repository.NoTX); err != nil {
		log.Fatalf("count users: %v", err)
	} else if existing > 0 {
		fmt.Printf("%d users already present. No changes.\n", existing)
		return
	}

	courses := []struct {
		remoteID string
		title    string
		price    int64
	}{
		{"seed-bots", "Telegram Bots from Scratch", 490000},
		{"seed-funnels", "Sales Funnels for Agencies", 990000},
		{"seed-content", "Content That Converts", 290000},
	}
	courseIDs := make([]string, 0, len(courses))
	for _, c := range courses {
		course, err := model.NewCourse("", c.remoteID, c.title, c.price)
		if err != nil {
			log.Fatalf("course %s: %v", c.remoteID, err)
		}
		if err := courseRepo.Upsert(ctx, repository.NoTX, course); err != nil {
			log.Fatalf("upsert course: %v", err)
		}
		courseIDs = append(courseIDs, course.ID)
	}

	rng := rand.New(rand.NewSource(42))
	now := time.Now()
	for i := 0; i < *users; i++ {
		tgID := int64(100000 + i)
		u, err := model.NewUser(tgID, fmt.Sprintf("sample_user_%02d", i))
		if err != nil {
			log.Fatalf("user %d: %v", tgID, err)
		}
		// Spread join dates and activity so cohorts and the inactive
		// segment are non-trivial.
		u.JoinedAt = now.AddDate(0, 0, -rng.Intn(60))
		u.LastActivityAt = now.AddDate(0, 0, -rng.Intn(21))
		if err := userRepo.Save(ctx, repository.NoTX, u); err != nil {
			log.Fatalf("save user: %v", err)
		}

		if rng.Intn(3) == 0 {
			courseID := courseIDs[rng.Intn(len(courseIDs))]
			p, err := model.NewPurchase(uuid.NewString(), tgID, courseID, courses[0].price, "")
			if err != nil {
				log.Fatalf("purchase: %v", err)
			}
			if err := p.MarkStatus(model.PaymentCompleted); err != nil {
				log.Fatalf("mark purchase: %v", err)
			}
			if err := purchaseRepo.Save(ctx, repository.NoTX, p); err != nil {
				log.Fatalf("save purchase: %v", err)
			}
		}
	}

	fmt.Printf("Seeded %d users, %d courses.\n", *users, len(courseIDs))
}
