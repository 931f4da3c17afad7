package ui

import (
	"log"
	"net/http"

	"walletlab/domain/dataset"
	"walletlab/internal/analysis"
	"walletlab/internal/errors"
	"walletlab/internal/filter"
	"walletlab/ui/middleware"

	"github.com/gin-gonic/gin"
)

// respondError writes err with the status its code maps to
func respondError(c *gin.Context, handler string, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[%s] ERROR: %v", handler, err)
	}
	c.JSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}

// handleIndex renders the workspace page
func (s *Server) handleIndex(c *gin.Context) {
	store := s.workspaceFor(c)
	s.renderTemplate(c, "index.html", gin.H{
		"User":    middleware.GetUser(c),
		"State":   store.State(),
		"Slots":   dataset.Slots,
		"Methods": analysis.Methods(),
		"Accept": map[dataset.Slot][]string{
			dataset.SlotDataset:    s.loader.SupportedExtensions(dataset.SlotDataset),
			dataset.SlotDictionary: s.loader.SupportedExtensions(dataset.SlotDictionary),
			dataset.SlotSummary:    s.loader.SupportedExtensions(dataset.SlotSummary),
		},
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":   "ok",
		"sessions": s.sessions.Len(),
		"database": s.users != nil,
	})
}

// handleOperators lists the filter operators for a data type
func (s *Server) handleOperators(c *gin.Context) {
	dataType := dataset.ParseDataType(c.Query("data_type"))
	c.JSON(http.StatusOK, gin.H{
		"data_type": dataType,
		"operators": filter.AvailableOperators(dataType),
	})
}

// handleMethods lists the registered analysis methods
func (s *Server) handleMethods(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"methods": analysis.Methods()})
}
