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

	"github.com/joho/godotenv"

	"github.com/sternbridge/bullion-quotes/internal/config"
	"github.com/sternbridge/bullion-quotes/internal/db"
	"github.com/sternbridge/bullion-quotes/internal/maintenance"
	"github.com/sternbridge/bullion-quotes/internal/quotes"
	"github.com/sternbridge/bullion-quotes/internal/server"
)

var (
	migrateOnlyFlag = flag.Bool("migrate-only", false, "Run DB migrations and exit")
	sweepOnlyFlag   = flag.Bool("sweep-only", false, "Run the expiry sweep once and exit")
)

func main() {
	flag.Parse()
	_ = godotenv.Load()
	cfg := config.Load()

	if *migrateOnlyFlag {
		if _, err := db.ConnectAndMigrate(); err != nil {
			log.Fatalf("migrate-only failed: %v", err)
		}
		log.Println("migrations completed; exiting as requested")
		return
	}

	dbConn, err := db.ConnectAndMigrate()
	if err != nil {
		log.Fatalf("db connection failed: %v", err)
	}

	retention := time.Duration(cfg.RetentionDays) * 24 * time.Hour
	sweeper := maintenance.NewSweeper(quotes.NewService(dbConn, nil, cfg.StaffAccessCode), retention, cfg.SweepInterval)

	// One-shot mode for external schedulers (cron etc.).
	if *sweepOnlyFlag {
		if _, err := sweeper.RunOnce(context.Background()); err != nil {
			os.Exit(1)
		}
		return
	}

	log.Printf("starting server env=%s port=%s currency=%s", cfg.Env, cfg.Port, cfg.Currency)
	srv := &http.Server{Addr: ":" + cfg.Port, Handler: server.New(dbConn, cfg)}

	sweepCtx, stopSweep := context.WithCancel(context.Background())
	go sweeper.Run(sweepCtx)

	go func() {
		log.Printf("server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("shutdown signal received")
	stopSweep()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("error during shutdown: %v", err)
	}
	log.Println("server gracefully stopped")
}
