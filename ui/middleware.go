package ui

import (
	"walletlab/internal/workspace"
	"walletlab/ui/middleware"

	"github.com/gin-gonic/gin"
)

// setupMiddleware configures Gin middleware
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.Session(s.cookieName))
	s.router.Use(middleware.CurrentUser(s.users))
}

// workspaceFor returns the workspace of the request's session
func (s *Server) workspaceFor(c *gin.Context) *workspace.Store {
	return s.sessions.Get(middleware.GetSessionID(c))
}
