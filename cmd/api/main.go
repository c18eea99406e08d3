package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/realscan/realscan/internal/application"
	appauth "github.com/realscan/realscan/internal/application/auth"
	appcodes "github.com/realscan/realscan/internal/application/codes"
	appscans "github.com/realscan/realscan/internal/application/scans"
	appstats "github.com/realscan/realscan/internal/application/stats"
	"github.com/realscan/realscan/internal/application/sweep"
	"github.com/realscan/realscan/internal/config"
	codesdomain "github.com/realscan/realscan/internal/domain/codes"
	scansdomain "github.com/realscan/realscan/internal/domain/scans"
	usersdomain "github.com/realscan/realscan/internal/domain/users"
	mysqlp "github.com/realscan/realscan/internal/infra/db/mysql"
	postgresp "github.com/realscan/realscan/internal/infra/db/postgres"
	"github.com/realscan/realscan/internal/infra/httpserver"
	"github.com/realscan/realscan/internal/infra/realtime"
	"github.com/realscan/realscan/internal/infra/scanlog"
	"github.com/realscan/realscan/internal/middleware"
)

func main() {
	logger := log.New(os.Stdout, "", log.LstdFlags)

	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	cfg, err := config.Load(path)
	if err != nil {
		logger.Fatalf("config load error: %v", err)
	}

	ctx := context.Background()

	// connect DB sesuai driver
	db, codeRepo, scanRepo, userStore, err := openStores(ctx, cfg)
	if err != nil {
		logger.Fatalf("database error: %v", err)
	}
	defer db.Close()

	// append-only scan activity journal
	journal, err := scanlog.New(cfg.Logs.Dir)
	if err != nil {
		logger.Fatalf("scan log init error: %v", err)
	}

	clock := application.SystemClock{}

	codesSvc := &appcodes.Service{
		Repo:        codeRepo,
		Clock:       clock,
		MinDuration: cfg.Limits.MinCodeDuration,
		MaxDuration: cfg.Limits.MaxCodeDuration,
	}
	statsSvc := &appstats.Service{Codes: codeRepo, Scans: scanRepo}
	authSvc := &appauth.Service{
		Users:      userStore,
		Secret:     []byte(cfg.Auth.JWTSecret),
		TokenTTL:   time.Duration(cfg.Auth.TokenTTLHours) * time.Hour,
		BcryptCost: cfg.Auth.BcryptCost,
		Clock:      clock,
	}

	scansSvc := &appscans.Service{
		Repo:     scanRepo,
		Activity: journal,
		Clock:    clock,
		Logger:   logger,
	}

	// realtime hub; it is also the scan service's notifier
	hubCtx, hubCancel := context.WithCancel(ctx)
	hub := realtime.NewHub(scansSvc, logger)
	scansSvc.Notifier = hub
	go hub.Run(hubCtx)

	// background sweep of expired codes
	sweeper := sweep.New(codesSvc, sweep.Config{IntervalHours: cfg.Sweep.IntervalHours}, logger)
	sweeper.Start(ctx)

	router := httpserver.NewRouter(httpserver.Dependencies{
		Codes:  codesSvc,
		Scans:  scansSvc,
		Stats:  statsSvc,
		Auth:   authSvc,
		Hub:    hub,
		Logger: logger,
		Health: map[string]middleware.HealthChecker{
			"database": &middleware.DatabaseHealthChecker{DB: db},
		},
		Secret:  []byte(cfg.Auth.JWTSecret),
		RateCap: cfg.Limits.RateCapacity,
		RatePS:  cfg.Limits.RateRefill,
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Printf("server listening on %s", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Println("shutting down server...")

	sweeper.Stop()
	hubCancel()

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Printf("shutdown error: %v", err)
	}
}

// openStores connects to the configured driver, migrates, and returns
// the repositories behind their ports.
func openStores(ctx context.Context, cfg *config.Config) (*sql.DB, codesdomain.Repository, scansdomain.Repository, usersdomain.Store, error) {
	switch cfg.Database.Driver {
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if err := postgresp.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, nil, err
		}
		return db,
			postgresp.NewCodeRepository(db),
			postgresp.NewScanRepository(db),
			postgresp.NewUserRepository(db),
			nil

	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			return nil, nil, nil, nil, err
		}
		if err := mysqlp.Migrate(ctx, db); err != nil {
			db.Close()
			return nil, nil, nil, nil, err
		}
		return db,
			mysqlp.NewCodeRepository(db),
			mysqlp.NewScanRepository(db),
			mysqlp.NewUserRepository(db),
			nil

	default:
		return nil, nil, nil, nil, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
}
