package ui

import (
	"encoding/json"
	"log"
	"net/http"

	"walletlab/domain/core"
	"walletlab/domain/preset"
	"walletlab/internal/errors"
	"walletlab/ports"
	"walletlab/ui/middleware"

	"github.com/gin-gonic/gin"
)

func (s *Server) presetsAvailable(c *gin.Context) bool {
	if s.presets == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Preset service not available"})
		return false
	}
	return true
}

// handleCreatePreset saves a named filter, filter chain, analysis or analysis chain
func (s *Server) handleCreatePreset(c *gin.Context) {
	if !s.presetsAvailable(c) {
		return
	}
	kind, err := preset.ParseKind(c.Param("kind"))
	if err != nil {
		respondError(c, "handleCreatePreset", err)
		return
	}

	var req struct {
		Name        string          `json:"name"`
		Description string          `json:"description"`
		Payload     json.RawMessage `json:"payload"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, "handleCreatePreset", errors.InvalidInput("invalid request data: "+err.Error()))
		return
	}

	u := middleware.GetUser(c)
	p, err := preset.NewPreset(kind, req.Name, req.Description, req.Payload, u.Author())
	if err != nil {
		respondError(c, "handleCreatePreset", err)
		return
	}
	if err := s.presets.Create(c.Request.Context(), p); err != nil {
		respondError(c, "handleCreatePreset", err)
		return
	}

	log.Printf("[handleCreatePreset] %s preset %q saved by %s", kind, p.Name, u.ID)
	c.JSON(http.StatusCreated, p)
}

// handleListPresets lists presets of a kind, optionally for one author
func (s *Server) handleListPresets(c *gin.Context) {
	if !s.presetsAvailable(c) {
		return
	}
	kind, err := preset.ParseKind(c.Param("kind"))
	if err != nil {
		respondError(c, "handleListPresets", err)
		return
	}
	limit, err := queryInt(c, "limit", 0)
	if err != nil {
		respondError(c, "handleListPresets", err)
		return
	}

	presets, err := s.presets.List(c.Request.Context(), ports.PresetFilters{
		Kinds:    []preset.Kind{kind},
		AuthorID: core.UserID(c.Query("author_id")),
		Limit:    limit,
	})
	if err != nil {
		respondError(c, "handleListPresets", err)
		return
	}
	if presets == nil {
		presets = []*preset.Preset{}
	}
	c.JSON(http.StatusOK, gin.H{"presets": presets})
}

// handleDeletePreset removes a preset. Only its author may delete it.
func (s *Server) handleDeletePreset(c *gin.Context) {
	if !s.presetsAvailable(c) {
		return
	}
	kind, err := preset.ParseKind(c.Param("kind"))
	if err != nil {
		respondError(c, "handleDeletePreset", err)
		return
	}
	id, err := core.ParsePresetID(c.Param("id"))
	if err != nil {
		respondError(c, "handleDeletePreset", errors.InvalidInput(err.Error()))
		return
	}

	ctx := c.Request.Context()
	existing, err := s.presets.GetByID(ctx, id)
	if err != nil {
		respondError(c, "handleDeletePreset", err)
		return
	}
	if existing.Kind != kind {
		respondError(c, "handleDeletePreset", errors.NotFound(string(kind)+" preset"))
		return
	}

	if err := s.presets.Delete(ctx, id, middleware.GetUser(c).ID); err != nil {
		respondError(c, "handleDeletePreset", err)
		return
	}
	c.Status(http.StatusNoContent)
}
