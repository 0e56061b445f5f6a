package main

import (
	"context"
	"log"
	"os"
	"strings"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"

	"parcel-tracking-service/internal/adapters/repositories"
	"parcel-tracking-service/internal/config"
	"parcel-tracking-service/internal/platform/db"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found (using environment variables)")
	}

	databaseURL := os.Getenv("DATABASE_URL")
	if strings.TrimSpace(databaseURL) == "" {
		log.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(databaseURL)
	if err != nil {
		log.Fatal(err)
	}
	defer conn.Close()

	log.Println("Initializing database schema...")
	if err := repositories.InitPostgresSchema(conn); err != nil {
		log.Fatalf("schema initialization failed: %v", err)
	}
	log.Println("Schema ready.")

	seedPath := config.Get("SEED_PATH", "data/seeds/watches.json")
	if _, err := os.Stat(seedPath); err != nil {
		log.Printf("No seed file at %q, skipping seeding.", seedPath)
		return
	}

	log.Println("Seeding database...")
	repo := repositories.NewSQLWatchRepository(conn)
	if err := repositories.SeedFromJSON(context.Background(), repo, seedPath); err != nil {
		log.Fatalf("seeding failed: %v", err)
	}
	log.Println("Seeding complete.")
}
