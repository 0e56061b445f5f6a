package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/joho/godotenv"
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"parcel-tracking-service/internal/adapters/couriers"
	"parcel-tracking-service/internal/adapters/notify"
	"parcel-tracking-service/internal/adapters/repositories"
	"parcel-tracking-service/internal/api"
	"parcel-tracking-service/internal/config"
	"parcel-tracking-service/internal/platform/db"
	"parcel-tracking-service/internal/ports"
	"parcel-tracking-service/internal/services"
)

// main is the application composition root.
// It wires concrete adapters (store, couriers, webhook sink) behind ports,
// starts the sweep loop and serves the command API.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	port := config.Get("PORT", "8080")
	fetchTimeout := config.GetDuration("FETCH_TIMEOUT", 15*time.Second)

	repo, closeDB, err := openRepository()
	if err != nil {
		log.Fatal(err)
	}
	defer closeDB()

	// ACS renders its tracking page client-side, so its adapter drives a
	// headless browser shared for the process lifetime.
	browser, closeBrowser, err := launchBrowser(os.Getenv("CHROME_PATH"))
	if err != nil {
		log.Fatal(err)
	}
	defer closeBrowser()

	registry := buildRegistry(browser, fetchTimeout)

	watches := services.NewWatchList(repo, registry, fetchTimeout)
	tracker := services.NewTracker(registry, fetchTimeout)

	reconciler := services.NewReconciler(watches, registry, notify.NewWebhookSink(), services.ReconcilerConfig{
		Interval:         config.GetDuration("SWEEP_INTERVAL", 5*time.Minute),
		FetchTimeout:     fetchTimeout,
		OrgConcurrency:   config.GetInt("SWEEP_CONCURRENCY", 4),
		FetchConcurrency: config.GetInt("FETCH_CONCURRENCY", 4),
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go reconciler.Run(ctx)

	// Timeouts are tuned for multi-courier fan-out on cold lookups.
	srv := &http.Server{
		Addr:              ":" + port,
		Handler:           api.NewRouter(watches, tracker),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shCtx); err != nil {
			log.Printf("shutdown: %v", err)
		}
	}()

	log.Printf("Server listening addr=:%s", port)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
	log.Printf("Server stopped")
}

// openRepository picks the store backend: postgres when DATABASE_URL is set,
// a local SQLite file otherwise.
func openRepository() (ports.WatchRepository, func(), error) {
	if databaseURL := os.Getenv("DATABASE_URL"); databaseURL != "" {
		conn, err := db.Open(databaseURL)
		if err != nil {
			return nil, nil, err
		}
		if err := repositories.InitPostgresSchema(conn); err != nil {
			conn.Close()
			return nil, nil, err
		}
		return repositories.NewSQLWatchRepository(conn), func() { conn.Close() }, nil
	}

	dbPath := config.Get("DB_PATH", "data/tracker.db")
	conn, err := openSqlite(dbPath)
	if err != nil {
		return nil, nil, err
	}
	if err := repositories.InitSchema(conn); err != nil {
		conn.Close()
		return nil, nil, err
	}
	return repositories.NewSqliteWatchRepository(conn), func() { conn.Close() }, nil
}

func openSqlite(dbPath string) (*sql.DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("openDB: open sqlite database %q: %w", dbPath, err)
	}

	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("openDB: verify sqlite connection to %q: %w", dbPath, err)
	}

	return conn, nil
}

func launchBrowser(chromePath string) (*rod.Browser, func(), error) {
	l := launcher.New().Headless(true)
	if chromePath != "" {
		l = l.Bin(chromePath)
	}

	url, err := l.Launch()
	if err != nil {
		return nil, nil, fmt.Errorf("launch browser: %w", err)
	}

	browser := rod.New().ControlURL(url)
	if err := browser.Connect(); err != nil {
		l.Cleanup()
		return nil, nil, fmt.Errorf("connect browser: %w", err)
	}

	cleanup := func() {
		if err := browser.Close(); err != nil {
			log.Printf("close browser: %v", err)
		}
		l.Cleanup()
	}

	return browser, cleanup, nil
}

func buildRegistry(browser *rod.Browser, fetchTimeout time.Duration) *services.CourierRegistry {
	client := couriers.NewFetchClient(fetchTimeout)
	registry := services.NewCourierRegistry()

	acs := couriers.NewACS(browser)
	geniki := couriers.NewGeniki(client)
	easymail := couriers.NewEasyMail(client)
	speedex := couriers.NewSpeedex(client)
	courierCenter := couriers.NewCourierCenter(client)
	elta := couriers.NewELTA(client)

	registry.Register("acs", acs, acs.Matches)
	registry.Register("geniki", geniki, geniki.Matches)
	registry.Register("easymail", easymail, easymail.Matches)
	registry.Register("speedex", speedex, speedex.Matches)
	registry.Register("couriercenter", courierCenter, courierCenter.Matches)
	registry.Register("elta", elta, elta.Matches)

	return registry
}
