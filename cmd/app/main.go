package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"telegram-agency-bot/internal/application"
	"telegram-agency-bot/internal/config"
	"telegram-agency-bot/internal/domain/ports/adapter"
	"telegram-agency-bot/internal/domain/ports/repository"
	cat "telegram-agency-bot/internal/infra/adapters/catalog"
	tele "telegram-agency-bot/internal/infra/adapters/telegram"
	pg "telegram-agency-bot/internal/infra/db/postgres"
	"telegram-agency-bot/internal/infra/httpapi"
	"telegram-agency-bot/internal/infra/logging"
	red "telegram-agency-bot/internal/infra/redis"
	"telegram-agency-bot/internal/infra/sched"
	"telegram-agency-bot/internal/infra/session"
	"telegram-agency-bot/internal/infra/worker"
	"telegram-agency-bot/internal/usecase"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// .env is optional; real deployments set the environment directly.
	_ = godotenv.Load()

	cfgPath := flag.String("config", "config.yaml", "path to YAML config file")
	devMode := flag.Bool("dev", false, "developer mode: noop telegram sends, in-memory sessions, demo catalog")
	flag.Parse()

	cfg, err := config.LoadConfig(*cfgPath, *devMode)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	logger := logging.New(cfg.Log, cfg.Runtime.Dev)
	if cfg.Runtime.Dev {
		logger.Warn().Msg("developer mode enabled")
	}

	// ---- Postgres ----
	pool, err := pg.Connect(ctx, cfg.Database.URL)
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connect failed")
	}
	defer pool.Close()
	pg.StartPoolStatsReporter(ctx, pool, 15*time.Second)

	// ---- Redis ----
	var sessionRepo repository.WizardSessionRepository
	var rateLimiter *red.RateLimiter
	if cfg.Runtime.Dev {
		sessionRepo = session.NewMemoryStore(cfg.Redis.SessionTTL)
	} else {
		redisClient, err := red.NewClient(ctx, &cfg.Redis)
		if err != nil {
			logger.Fatal().Err(err).Msg("redis connect failed")
		}
		sessionRepo = red.NewWizardSessionRepo(redisClient, cfg.Redis.SessionTTL)
		rateLimiter = red.NewRateLimiter(redisClient)
	}

	// ---- Repositories ----
	userRepo := pg.NewUserRepo(pool)
	courseRepo := pg.NewCourseRepo(pool)
	purchaseRepo := pg.NewPurchaseRepo(pool)
	accessRepo := pg.NewCourseAccessRepo(pool)
	broadcastRepo := pg.NewBroadcastRepo(pool)
	recurringRepo := pg.NewRecurringRepo(pool)
	deliveryRepo := pg.NewDeliveryLogRepo(pool)
	txManager := pg.NewTxManager(pool)

	// ---- Course catalog ----
	var catalog adapter.CourseCatalogAdapter
	if cfg.Catalog.Demo || cfg.Runtime.Dev {
		catalog = cat.NewDemoCatalog()
		logger.Info().Msg("using demo course catalog")
	} else {
		catalog, err = cat.NewHTTPClient(&cfg.Catalog, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("catalog client failed")
		}
		if err := catalog.Ping(ctx); err != nil {
			logger.Warn().Err(err).Msg("course catalog unreachable at startup")
		}
	}

	// ---- Telegram bot ----
	// The bot adapter and the use cases reference each other (the
	// dispatcher sends through the bot, the bot routes into the facade),
	// so the facade shell is created first and filled below.
	facade := &application.BotFacade{}
	var bot adapter.TelegramBotAdapter
	var realBot *tele.RealTelegramBotAdapter
	if cfg.Runtime.Dev {
		bot = tele.NewNoopBotAdapter(logger)
	} else {
		realBot, err = tele.NewRealTelegramBotAdapter(&cfg.Bot, facade, rateLimiter, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("telegram auth failed")
		}
		bot = realBot
	}

	// ---- Fan-out ----
	sendPool := worker.NewPool(cfg.Bot.Workers, logger)
	sendPool.Start(ctx)
	defer sendPool.Stop()
	dispatcher := usecase.NewDispatcher(bot, deliveryRepo, sendPool, cfg.Broadcast.MessagesPerSecond, logger)

	// ---- Use cases ----
	inactiveAfter := time.Duration(cfg.Broadcast.InactiveAfterDays) * 24 * time.Hour
	segmentUC := usecase.NewSegmentUseCase(userRepo, inactiveAfter, logger)
	broadcastUC := usecase.NewBroadcastUseCase(broadcastRepo, recurringRepo, segmentUC, dispatcher, bot, logger)
	wizardUC := usecase.NewWizardUseCase(sessionRepo, segmentUC, broadcastUC, logger)
	userUC := usecase.NewUserUseCase(userRepo, logger)
	courseUC := usecase.NewCourseUseCase(courseRepo, purchaseRepo, accessRepo, catalog, txManager, logger)
	statsUC := usecase.NewStatsUseCase(userRepo, courseRepo, purchaseRepo, logger)

	facade.Users = userUC
	facade.Wizard = wizardUC
	facade.Broadcasts = broadcastUC
	facade.Courses = courseUC
	facade.Stats = statsUC

	if n, err := courseUC.SyncCatalog(ctx); err != nil {
		logger.Warn().Err(err).Msg("initial catalog sync failed")
	} else {
		logger.Info().Int("courses", n).Msg("catalog synced")
	}
	go facade.SyncCatalogLoop(ctx, time.Hour)

	// ---- Update intake ----
	if realBot != nil && strings.ToLower(cfg.Bot.Mode) == "polling" {
		go func() {
			if err := realBot.StartPolling(ctx); err != nil && ctx.Err() == nil {
				logger.Error().Err(err).Msg("telegram polling stopped")
			}
		}()
	}

	// ---- HTTP: health, metrics, webhook, admin API ----
	var webhook httpapi.WebhookHandler
	if realBot != nil {
		webhook = realBot
	}
	server := httpapi.NewServer(cfg, facade, webhook, logger)
	go func() {
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("http server failed")
		}
	}()

	// ---- Scheduler ----
	runner := sched.NewBroadcastRunner(cfg.Broadcast.RunnerInterval, broadcastRepo, recurringRepo, broadcastUC, logger)
	runner.Tick(ctx) // catch up anything that came due while we were down
	go func() { _ = runner.Run(ctx) }()

	// ---- Graceful shutdown ----
	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)
	<-sigc
	logger.Info().Msg("shutdown requested")
	cancel()
	if realBot != nil {
		realBot.StopPolling()
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	_ = server.Shutdown(shutdownCtx)
}
