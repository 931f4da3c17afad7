package ui

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"

	"walletlab/domain/core"
	"walletlab/domain/dataset"
	"walletlab/internal/errors"
	"walletlab/internal/storage"
	"walletlab/internal/workspace"
	"walletlab/ui/middleware"

	"github.com/gin-gonic/gin"
)

func slotParam(c *gin.Context) (dataset.Slot, error) {
	slot, ok := dataset.ParseSlot(c.Param("slot"))
	if !ok {
		return "", errors.InvalidInput(fmt.Sprintf("unknown slot %q", c.Param("slot")))
	}
	return slot, nil
}

// handleUploadSlot parses an uploaded file into a slot and keeps a copy for later selection
func (s *Server) handleUploadSlot(c *gin.Context) {
	slot, err := slotParam(c)
	if err != nil {
		respondError(c, "handleUploadSlot", err)
		return
	}

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		respondError(c, "handleUploadSlot", errors.InvalidInput("no file uploaded"))
		return
	}
	defer file.Close()

	if s.maxUpload > 0 && header.Size > s.maxUpload {
		respondError(c, "handleUploadSlot", errors.InvalidInput(fmt.Sprintf(
			"file size (%.1f MB) exceeds the %.1f MB limit", float64(header.Size)/(1<<20), float64(s.maxUpload)/(1<<20))))
		return
	}

	filename := filepath.Base(header.Filename)
	if !s.acceptsExtension(slot, filename) {
		respondError(c, "handleUploadSlot", errors.UnsupportedFormat(fmt.Sprintf(
			"%s files must be one of %s", slot, strings.Join(s.loader.SupportedExtensions(slot), ", "))))
		return
	}

	content, err := io.ReadAll(file)
	if err != nil {
		respondError(c, "handleUploadSlot", errors.Wrap(err, "failed to read upload"))
		return
	}

	u := middleware.GetUser(c)
	record := dataset.NewUploadedFile(u.ID, slot, filename, int64(len(content)))
	store := s.workspaceFor(c)
	if err := store.LoadSlot(slot, workspace.SlotFile{FileID: record.ID, Filename: filename}, content); err != nil {
		log.Printf("[handleUploadSlot] Failed to load %s file %s: %v", slot, filename, err)
		respondError(c, "handleUploadSlot", err)
		return
	}

	if err := s.persistUpload(c.Request.Context(), record, content); err != nil {
		store.ClearSlot(slot)
		respondError(c, "handleUploadSlot", err)
		return
	}

	log.Printf("[handleUploadSlot] Loaded %s file %s (%d bytes) for user %s", slot, filename, len(content), u.ID)
	c.JSON(http.StatusOK, gin.H{
		"file":  record,
		"state": store.State(),
	})
}

func (s *Server) acceptsExtension(slot dataset.Slot, filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range s.loader.SupportedExtensions(slot) {
		if ext == allowed {
			return true
		}
	}
	return false
}

// persistUpload stores the raw bytes and records the file. Without persistence the upload only
// lives in the session.
func (s *Server) persistUpload(ctx context.Context, record *dataset.UploadedFile, content []byte) error {
	if s.storage == nil || s.uploads == nil {
		return nil
	}

	path, size, err := s.storage.Store(ctx, bytes.NewReader(content), record.Filename)
	if err != nil {
		return errors.Wrap(err, "failed to store upload")
	}
	record.StoragePath = path
	record.SizeBytes = size

	if err := s.uploads.Create(ctx, record); err != nil {
		if delErr := s.storage.Delete(ctx, path); delErr != nil {
			log.Printf("[persistUpload] Failed to remove orphaned file %s: %v", path, delErr)
		}
		return errors.Wrap(err, "failed to record upload")
	}
	return nil
}

// handleSelectSlotFile loads a previously uploaded file into a slot
func (s *Server) handleSelectSlotFile(c *gin.Context) {
	slot, err := slotParam(c)
	if err != nil {
		respondError(c, "handleSelectSlotFile", err)
		return
	}
	if s.uploads == nil || s.storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "File storage not available"})
		return
	}

	var req struct {
		FileID string `json:"file_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, "handleSelectSlotFile", errors.InvalidInput("file_id is required"))
		return
	}

	ctx := c.Request.Context()
	u := middleware.GetUser(c)
	record, err := s.ownedUpload(ctx, u.ID, core.FileID(req.FileID))
	if err != nil {
		respondError(c, "handleSelectSlotFile", err)
		return
	}
	if record.Slot != slot {
		respondError(c, "handleSelectSlotFile", errors.ValidationError(fmt.Sprintf(
			"file %s was uploaded to the %s slot", record.Filename, record.Slot)))
		return
	}

	content, err := storage.ReadAll(ctx, s.storage, record.StoragePath)
	if err != nil {
		respondError(c, "handleSelectSlotFile", err)
		return
	}

	store := s.workspaceFor(c)
	if err := store.LoadSlot(slot, workspace.SlotFile{FileID: record.ID, Filename: record.Filename}, content); err != nil {
		respondError(c, "handleSelectSlotFile", err)
		return
	}
	c.JSON(http.StatusOK, store.State())
}

// ownedUpload fetches a file record and checks it belongs to userID
func (s *Server) ownedUpload(ctx context.Context, userID core.UserID, id core.FileID) (*dataset.UploadedFile, error) {
	record, err := s.uploads.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if record.UserID != userID {
		return nil, errors.Unauthorized("file belongs to another user")
	}
	return record, nil
}

// handleClearSlot empties a slot
func (s *Server) handleClearSlot(c *gin.Context) {
	slot, err := slotParam(c)
	if err != nil {
		respondError(c, "handleClearSlot", err)
		return
	}

	store := s.workspaceFor(c)
	store.ClearSlot(slot)
	c.JSON(http.StatusOK, store.State())
}

// handleListFiles lists the current user's uploads, optionally for one slot
func (s *Server) handleListFiles(c *gin.Context) {
	if s.uploads == nil {
		c.JSON(http.StatusOK, gin.H{"files": []*dataset.UploadedFile{}})
		return
	}

	var slot dataset.Slot
	if raw := c.Query("slot"); raw != "" {
		parsed, ok := dataset.ParseSlot(raw)
		if !ok {
			respondError(c, "handleListFiles", errors.InvalidInput(fmt.Sprintf("unknown slot %q", raw)))
			return
		}
		slot = parsed
	}
	limit, err := queryInt(c, "limit", 50)
	if err != nil {
		respondError(c, "handleListFiles", err)
		return
	}

	files, err := s.uploads.ListByUser(c.Request.Context(), middleware.GetUser(c).ID, slot, limit)
	if err != nil {
		respondError(c, "handleListFiles", err)
		return
	}
	if files == nil {
		files = []*dataset.UploadedFile{}
	}
	c.JSON(http.StatusOK, gin.H{"files": files})
}
