package container

import (
	"context"
	"fmt"
	"log"
	"time"

	"walletlab/adapters/excel"
	"walletlab/adapters/postgres"
	datasetloader "walletlab/internal/dataset"
	"walletlab/internal/config"
	"walletlab/internal/storage"
	"walletlab/internal/workspace"
	"walletlab/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config

	// Infrastructure
	DB      *sqlx.DB
	Storage ports.FileStorage

	// Repositories (data access layer)
	UserRepo   ports.UserRepository
	UploadRepo ports.UploadRepository
	PresetRepo ports.PresetRepository

	// Workspace components
	Workbooks *excel.WorkbookReader
	Loader    *datasetloader.Loader
	Sessions  *workspace.SessionManager

	stopSweeper chan struct{}
}

// New creates a new dependency injection container. Components that do not
// need the database are ready on return.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config:      cfg,
		Workbooks:   excel.NewWorkbookReader(),
		stopSweeper: make(chan struct{}),
	}
	c.Loader = datasetloader.NewLoader(c.Workbooks)
	c.Storage = storage.NewLocalFileStorage(cfg.Storage.UploadDir, cfg.Storage.MaxUploadBytes)
	c.Sessions = workspace.NewSessionManager(c.Loader, cfg.Session.TTL)

	return c, nil
}

// InitWithDatabase initializes components that require database access
func (c *Container) InitWithDatabase(db *sqlx.DB) error {
	if db == nil {
		return fmt.Errorf("database connection cannot be nil")
	}

	c.DB = db

	if err := db.Ping(); err != nil {
		return fmt.Errorf("database connection test failed: %w", err)
	}

	c.UserRepo = postgres.NewUserRepository(db)
	c.UploadRepo = postgres.NewUploadRepository(db)
	c.PresetRepo = postgres.NewPresetRepository(db)

	log.Printf("[Container] Initialized with database connection")
	return nil
}

// StartBackground launches the idle-session sweeper.
func (c *Container) StartBackground() {
	interval := c.Config.Session.TTL / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	c.Sessions.StartSweeper(interval, c.stopSweeper)
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	select {
	case <-c.stopSweeper:
	default:
		close(c.stopSweeper)
	}

	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
