package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"blumn/internal/auth"
	"blumn/internal/care"
	"blumn/internal/config"
	"blumn/internal/db"
	"blumn/internal/events"
	"blumn/internal/handlers"
	"blumn/internal/live"
	"blumn/internal/middleware"
	"blumn/internal/notify"
	"blumn/internal/settings"
)

func main() {
	configPath := flag.String("config", "config.yml", "path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("❌ Config error: %v", err)
	}

	if err := db.Init(cfg.DBPath); err != nil {
		log.Fatalf("❌ Database error: %v", err)
	}
	defer db.DB.Close()

	if err := settings.Init(db.DB); err != nil {
		log.Fatalf("❌ Settings error: %v", err)
	}
	if err := notify.Init(db.DB); err != nil {
		log.Fatalf("❌ Notification store error: %v", err)
	}

	confirmSvc, err := auth.NewConfirmTokenService(db.DB)
	if err != nil {
		log.Fatalf("❌ Confirm token service error: %v", err)
	}

	auth.CreateDefaultAdmin(cfg)

	bus := events.NewBus()

	dispatcher := notify.NewDispatcher(db.DB, bus, notify.ShoutrrrSender{})
	dispatcher.Start()
	defer dispatcher.Stop()

	hub := live.NewHub(bus)
	defer hub.CloseAll()

	// Daily overdue-care sweep, plus one pass at startup so a freshly
	// restarted server does not stay silent until the next cron tick.
	checker := care.NewChecker(db.DB, bus)
	go func() {
		if err := checker.Run(time.Now().UTC()); err != nil {
			log.Printf("⚠️  Startup care check: %v", err)
		}
	}()

	scheduler := cron.New()
	if _, err := scheduler.AddFunc(cfg.OverdueCron, func() {
		if err := checker.Run(time.Now().UTC()); err != nil {
			log.Printf("⚠️  Scheduled care check: %v", err)
		}
	}); err != nil {
		log.Fatalf("❌ Invalid overdue_cron %q: %v", cfg.OverdueCron, err)
	}
	scheduler.Start()
	defer scheduler.Stop()

	// Hourly housekeeping for expired sessions and confirm tokens.
	housekeeping := time.NewTicker(time.Hour)
	defer housekeeping.Stop()
	go func() {
		for range housekeeping.C {
			auth.CleanupExpiredSessions()
			confirmSvc.CleanupExpired()
		}
	}()

	api := &handlers.API{
		DB:      db.DB,
		Bus:     bus,
		Confirm: confirmSvc,
		Cfg:     cfg,
	}

	mux := http.NewServeMux()
	handlers.RegisterRoutes(mux, api, hub)

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           middleware.CORS(middleware.Logging(middleware.Recover(mux))),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("🌱 Blumn server listening on port %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server error: %v", err)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop

	log.Println("🔒 Shutting down...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("⚠️  Shutdown: %v", err)
	}
}
