package ui

import (
	"context"
	"fmt"
	"html/template"
	"net/http"
	"strconv"
	"strings"

	"walletlab/domain/core"
	"walletlab/domain/dataset"
	"walletlab/domain/pipeline"
	"walletlab/domain/preset"
	datasetloader "walletlab/internal/dataset"
	"walletlab/internal/errors"
	"walletlab/internal/filter"
	"walletlab/internal/profiling"
	"walletlab/internal/storage"
	"walletlab/internal/workspace"
	"walletlab/ui/middleware"

	"github.com/gin-gonic/gin"
)

const defaultRowLimit = 100

// columnView is a metadata entry prepared for the column picker
type columnView struct {
	dataset.ColumnMetadata
	DescriptionHTML template.HTML            `json:"description_html"`
	Operators       []filter.OperatorInfo    `json:"operators"`
	Profile         *profiling.ColumnProfile `json:"profile,omitempty"`
}

// handleGetWorkspace returns a snapshot of the session's workspace
func (s *Server) handleGetWorkspace(c *gin.Context) {
	c.JSON(http.StatusOK, s.workspaceFor(c).State())
}

// handleGetColumns returns the merged column metadata. Without a dictionary the types are inferred
// from the dataset.
func (s *Server) handleGetColumns(c *gin.Context) {
	store := s.workspaceFor(c)
	metadata := store.Metadata()
	ds := store.Dataset()

	suggested := false
	if len(metadata) == 0 && ds != nil {
		metadata = datasetloader.MergeColumnMetadata(datasetloader.SuggestDictionary(ds), nil, nil)
		suggested = true
	}

	profiles := make(map[string]profiling.ColumnProfile)
	for _, p := range profiling.ProfileDataset(ds) {
		profiles[p.Column] = p
	}

	columns := make([]columnView, 0, len(metadata))
	for _, meta := range metadata {
		view := columnView{
			ColumnMetadata:  meta,
			DescriptionHTML: renderMarkdown(meta.WhatItIs),
			Operators:       filter.AvailableOperators(meta.DataType),
		}
		if p, ok := profiles[meta.Metric]; ok {
			view.Profile = &p
		}
		columns = append(columns, view)
	}

	c.JSON(http.StatusOK, gin.H{"columns": columns, "suggested": suggested})
}

// handleGetRows pages through the unfiltered dataset
func (s *Server) handleGetRows(c *gin.Context) {
	limit, err := queryInt(c, "limit", defaultRowLimit)
	if err != nil {
		respondError(c, "handleGetRows", err)
		return
	}
	offset, err := queryInt(c, "offset", 0)
	if err != nil {
		respondError(c, "handleGetRows", err)
		return
	}

	rows, total := s.workspaceFor(c).Rows(limit, offset)
	c.JSON(http.StatusOK, gin.H{"rows": rows, "total": total, "limit": limit, "offset": offset})
}

func queryInt(c *gin.Context, key string, fallback int) (int, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return fallback, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, errors.InvalidInput(fmt.Sprintf("%s must be a non-negative integer", key))
	}
	return v, nil
}

// handleSetFilters replaces the active filters
func (s *Server) handleSetFilters(c *gin.Context) {
	var req struct {
		Filters []pipeline.FilterDefinition `json:"filters"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, "handleSetFilters", errors.InvalidInput("invalid request data: "+err.Error()))
		return
	}

	for i := range req.Filters {
		if req.Filters[i].ID.IsEmpty() {
			req.Filters[i].ID = core.NewID()
		}
	}
	filter.Describe(req.Filters)

	if err := s.workspaceFor(c).SetFilters(req.Filters); err != nil {
		respondError(c, "handleSetFilters", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"filters": req.Filters})
}

// handleSetAnalyses replaces the active analysis chains
func (s *Server) handleSetAnalyses(c *gin.Context) {
	var req struct {
		AnalysisChains []pipeline.AnalysisChain `json:"analysis_chains"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, "handleSetAnalyses", errors.InvalidInput("invalid request data: "+err.Error()))
		return
	}

	store := s.workspaceFor(c)
	if err := store.SetAnalysisChains(req.AnalysisChains); err != nil {
		respondError(c, "handleSetAnalyses", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"analysis_chains": store.State().AnalysisChains})
}

// handleEvaluate runs the active filters and chains over the dataset
func (s *Server) handleEvaluate(c *gin.Context) {
	result, err := s.workspaceFor(c).Evaluate()
	if err != nil {
		respondError(c, "handleEvaluate", err)
		return
	}
	c.JSON(http.StatusOK, result)
}

// handleExport downloads the workspace as a JSON document
func (s *Server) handleExport(c *gin.Context) {
	embed := c.Query("embed") == "true" || c.Query("embed") == "1"
	doc := s.workspaceFor(c).Export(c.Query("name"), embed)

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Name+".json"))
	c.JSON(http.StatusOK, doc)
}

// handleImport replaces the workspace with an uploaded document
func (s *Server) handleImport(c *gin.Context) {
	var doc preset.WorkspacePreset
	if err := c.ShouldBindJSON(&doc); err != nil {
		respondError(c, "handleImport", errors.InvalidInput("invalid workspace document: "+err.Error()))
		return
	}

	store := s.workspaceFor(c)
	u := middleware.GetUser(c)
	if err := store.Import(c.Request.Context(), &doc, s.resolveContent(u.ID)); err != nil {
		respondError(c, "handleImport", err)
		return
	}
	c.JSON(http.StatusOK, store.State())
}

// resolveContent reads a stored upload owned by userID
func (s *Server) resolveContent(userID core.UserID) workspace.ContentResolver {
	if s.uploads == nil || s.storage == nil {
		return nil
	}
	return func(ctx context.Context, slot dataset.Slot, fileID core.FileID) ([]byte, error) {
		record, err := s.ownedUpload(ctx, userID, fileID)
		if err != nil {
			return nil, err
		}
		if record.Slot != slot {
			return nil, errors.ValidationError(fmt.Sprintf("file %s belongs to the %s slot", fileID, record.Slot))
		}
		return storage.ReadAll(ctx, s.storage, record.StoragePath)
	}
}
