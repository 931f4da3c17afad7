package main

import (
	"context"
	"log"
	"os"

	"walletlab/internal/config"
	"walletlab/internal/migration"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	databaseURL := ""
	if len(os.Args) > 1 {
		databaseURL = os.Args[1]
	} else {
		cfg, err := config.LoadFile(os.Getenv("CONFIG_FILE"))
		if err != nil {
			log.Fatalf("Failed to load configuration: %v", err)
		}
		databaseURL = cfg.Database.URL
	}
	if databaseURL == "" {
		log.Fatal("Usage: migrate <database_url> (or set DATABASE_URL)")
	}

	db, err := sqlx.Connect("postgres", databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	runner := migration.NewRunner()
	log.Printf("Applying schema version %s", runner.Version())
	if err := runner.Run(context.Background(), db); err != nil {
		log.Fatalf("Migration failed: %v", err)
	}
	log.Println("Migration complete")
}
