package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"walletlab/internal/api"
	"walletlab/internal/config"
	"walletlab/internal/container"
	"walletlab/internal/errors"
	"walletlab/internal/migration"
	"walletlab/ui"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
)

// initDatabase opens the PostgreSQL pool and applies migrations
func initDatabase(ctx context.Context, appConfig *config.Config) (*sqlx.DB, error) {
	if appConfig.Database.URL == "" {
		return nil, errors.ConfigInvalid("DATABASE_URL is required")
	}

	db, err := sqlx.Connect("postgres", appConfig.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	db.SetMaxOpenConns(appConfig.Database.MaxOpenConns)
	db.SetMaxIdleConns(appConfig.Database.MaxIdleConns)
	db.SetConnMaxLifetime(appConfig.Database.ConnMaxLifetime)

	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}

	return db, nil
}

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	appConfig, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	gin.SetMode(appConfig.Server.GinMode)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := initDatabase(ctx, appConfig)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	appContainer, err := container.New(appConfig)
	if err != nil {
		log.Fatalf("Failed to create application container: %v", err)
	}
	if err := appContainer.InitWithDatabase(db); err != nil {
		log.Fatalf("Failed to initialize container: %v", err)
	}
	appContainer.StartBackground()

	server, err := ui.NewServer(ui.Deps{
		Sessions:       appContainer.Sessions,
		Loader:         appContainer.Loader,
		Storage:        appContainer.Storage,
		Users:          appContainer.UserRepo,
		Uploads:        appContainer.UploadRepo,
		Presets:        appContainer.PresetRepo,
		API:            api.NewRouter(api.NewHandler(appContainer.Loader), appConfig.Server.AllowedOrigins),
		CookieName:     appConfig.Session.CookieName,
		MaxUploadBytes: appConfig.Storage.MaxUploadBytes,
	})
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	go func() {
		if err := server.Start(":" + appConfig.Server.Port); err != nil {
			log.Printf("Server stopped: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown error: %v", err)
	}
	if err := appContainer.Shutdown(shutdownCtx); err != nil {
		log.Printf("Container shutdown error: %v", err)
	}
}
