package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/robfig/cron/v3"

	"github.com/mining-game-bot/internal/alert"
	"github.com/mining-game-bot/internal/api"
	"github.com/mining-game-bot/internal/chain"
	"github.com/mining-game-bot/internal/config"
	"github.com/mining-game-bot/internal/gamequery"
	"github.com/mining-game-bot/internal/service"
	"github.com/mining-game-bot/internal/strategy"
	"github.com/mining-game-bot/internal/txlog"
	"github.com/mining-game-bot/internal/userconfig"
	"github.com/mining-game-bot/pkg/logger"
)

func main() {
	log := logger.New()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	// Transaction audit log
	var auditLog txlog.Sink
	if cfg.CassandraEnabled {
		cassandraSink, err := txlog.NewCassandraSink(cfg.Cassandra, log)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize Cassandra audit log: %v\n", err)
			os.Exit(1)
		}
		defer cassandraSink.Close()
		auditLog = cassandraSink
	} else {
		log.Warn("Cassandra disabled, transaction audit log is in-memory only")
		auditLog = txlog.NewMemorySink()
	}

	// User configuration store
	var users userconfig.Store
	if cfg.RedisEnabled {
		redisStore, err := userconfig.NewRedisStore(cfg.Redis)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to initialize Redis user store: %v\n", err)
			os.Exit(1)
		}
		defer redisStore.Close()
		users = redisStore
		log.Info("Connected to Redis", logger.F("addr", cfg.Redis.Addr))
	} else {
		log.Warn("Redis disabled, user configuration is in-memory only")
		users = userconfig.NewMemoryStore()
	}

	if cfg.UsersFile != "" {
		seeded, err := userconfig.Seed(context.Background(), users, cfg.UsersFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to seed user configuration: %v\n", err)
			os.Exit(1)
		}
		log.Info("Seeded user configuration",
			logger.F("file", cfg.UsersFile),
			logger.F("users", strconv.Itoa(seeded)))
	}

	// External collaborators
	games := gamequery.NewHTTPClient(cfg.GameAPIURL, cfg.RequestTimeout)
	sender := chain.NewRelayClient(cfg.RelayURL, cfg.ReceiptPollInterval, cfg.RequestTimeout)

	var alerts alert.Notifier
	if cfg.AlertWebhookURL != "" {
		alerts = alert.NewWebhook(cfg.AlertWebhookURL, log)
	} else {
		log.Warn("No alert webhook configured, operator alerts are disabled")
		alerts = alert.Noop{}
	}

	bot := service.NewBot(games, sender, users, auditLog, alerts, strategy.HighestPower{}, log)

	// Recurring tasks
	scheduler := cron.New()
	scheduleTask(scheduler, log, cfg.CloseSchedule, "close", cfg.UserAddresses, bot.CloseFinishedMines)
	scheduleTask(scheduler, log, cfg.DispatchSchedule, "dispatch", cfg.UserAddresses, bot.DispatchAvailableTeams)
	scheduleTask(scheduler, log, cfg.ReinforceSchedule, "reinforce", cfg.UserAddresses, bot.ReinforceMines)
	scheduler.Start()
	defer scheduler.Stop()

	// Control API
	handler := api.NewHandler(bot, games, log)

	router := chi.NewRouter()
	router.Use(middleware.RealIP)
	router.Use(middleware.Recoverer)
	router.Use(api.RequestIDMiddleware)
	router.Use(api.LoggingMiddleware(log))
	router.Mount("/", handler.Routes())

	server := &http.Server{
		Addr:    cfg.Address(),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Info("Control server starting", logger.F("addr", cfg.Address()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			fmt.Fprintf(os.Stderr, "Server failed: %v\n", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Server forced to shutdown: %v\n", err)
		os.Exit(1)
	}

	log.Info("Server exited")
}

// scheduleTask registers one orchestrator operation to run for every
// configured user at the given cron schedule.
func scheduleTask(
	scheduler *cron.Cron,
	log *logger.Logger,
	schedule string,
	task string,
	userAddresses []string,
	run func(context.Context, string) (int, error),
) {
	_, err := scheduler.AddFunc(schedule, func() {
		for _, address := range userAddresses {
			count, err := run(context.Background(), address)
			if err != nil {
				log.Error("Scheduled task failed",
					logger.F("task", task),
					logger.F("user", address),
					logger.F("error", err.Error()))
				continue
			}
			log.Info("Scheduled task finished",
				logger.F("task", task),
				logger.F("user", address),
				logger.F("count", strconv.Itoa(count)))
		}
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid %s schedule %q: %v\n", task, schedule, err)
		os.Exit(1)
	}
}
