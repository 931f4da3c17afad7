// Package ui serves the workspace page and its JSON endpoints.
package ui

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"
	"time"

	datasetloader "walletlab/internal/dataset"
	"walletlab/internal/workspace"
	"walletlab/ports"

	"github.com/gin-gonic/gin"
)

//go:embed templates/*.html
var embeddedFiles embed.FS

// Deps are the collaborators of the server. Repositories may be nil when no database is configured.
type Deps struct {
	Sessions *workspace.SessionManager
	Loader   *datasetloader.Loader
	Storage  ports.FileStorage
	Users    ports.UserRepository
	Uploads  ports.UploadRepository
	Presets  ports.PresetRepository

	// API is mounted under /api/v1
	API http.Handler

	CookieName     string
	MaxUploadBytes int64
}

// Server represents the web server for the workspace UI
type Server struct {
	router    *gin.Engine
	templates *template.Template
	http      *http.Server

	sessions *workspace.SessionManager
	loader   *datasetloader.Loader
	storage  ports.FileStorage
	users    ports.UserRepository
	uploads  ports.UploadRepository
	presets  ports.PresetRepository
	api      http.Handler

	cookieName string
	maxUpload  int64
}

// NewServer creates a new web server instance
func NewServer(deps Deps) (*Server, error) {
	if deps.Sessions == nil {
		return nil, fmt.Errorf("session manager cannot be nil")
	}
	if deps.Loader == nil {
		deps.Loader = datasetloader.NewLoader(nil)
	}
	if deps.CookieName == "" {
		deps.CookieName = "walletlab_session"
	}

	tmpl, err := template.New("").Funcs(template.FuncMap{
		"upper": strings.ToUpper,
		"join":  strings.Join,
	}).ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	s := &Server{
		router:     gin.Default(),
		templates:  tmpl,
		sessions:   deps.Sessions,
		loader:     deps.Loader,
		storage:    deps.Storage,
		users:      deps.Users,
		uploads:    deps.Uploads,
		presets:    deps.Presets,
		api:        deps.API,
		cookieName: deps.CookieName,
		maxUpload:  deps.MaxUploadBytes,
	}
	s.router.MaxMultipartMemory = 8 << 20

	s.setupMiddleware()
	s.setupRoutes()
	return s, nil
}

// Router exposes the gin engine, mainly for tests
func (s *Server) Router() *gin.Engine {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/", s.handleIndex)
	s.router.GET("/healthz", s.handleHealth)

	api := s.router.Group("/api")
	{
		ws := api.Group("/workspace")
		ws.GET("", s.handleGetWorkspace)
		ws.GET("/columns", s.handleGetColumns)
		ws.GET("/rows", s.handleGetRows)
		ws.POST("/slots/:slot", s.handleUploadSlot)
		ws.POST("/slots/:slot/select", s.handleSelectSlotFile)
		ws.DELETE("/slots/:slot", s.handleClearSlot)
		ws.PUT("/filters", s.handleSetFilters)
		ws.PUT("/analyses", s.handleSetAnalyses)
		ws.POST("/evaluate", s.handleEvaluate)
		ws.GET("/export", s.handleExport)
		ws.POST("/import", s.handleImport)

		api.GET("/files", s.handleListFiles)
		api.GET("/operators", s.handleOperators)
		api.GET("/analysis/methods", s.handleMethods)

		api.POST("/presets/:kind", s.handleCreatePreset)
		api.GET("/presets/:kind", s.handleListPresets)
		api.DELETE("/presets/:kind/:id", s.handleDeletePreset)
	}

	if s.api != nil {
		s.router.Any("/api/v1/*path", gin.WrapH(http.StripPrefix("/api/v1", s.api)))
	}
}

// Start runs the HTTP server until Shutdown is called
func (s *Server) Start(addr string) error {
	s.http = &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	log.Printf("[Server] Listening on %s", addr)
	if err := s.http.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server failed: %w", err)
	}
	return nil
}

// Shutdown stops accepting requests and waits for in-flight ones
func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}
