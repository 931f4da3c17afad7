package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ID represents a domain identifier
type ID string

// NewID creates a new unique identifier using UUID v7 for time-ordered generation
func NewID() ID {
	id, err := uuid.NewV7()
	if err != nil {
		id = uuid.New()
	}
	return ID(id.String())
}

// String returns the string representation
func (id ID) String() string {
	return string(id)
}

// IsEmpty checks if the ID is empty
func (id ID) IsEmpty() bool {
	return id == ""
}

// Domain-specific ID types
type (
	PresetID  ID
	FileID    ID
	SessionID ID
	UserID    ID
)

func (id PresetID) String() string  { return ID(id).String() }
func (id FileID) String() string    { return ID(id).String() }
func (id SessionID) String() string { return ID(id).String() }
func (id UserID) String() string    { return ID(id).String() }

// ParsePresetID parses a string into PresetID
func ParsePresetID(s string) (PresetID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("preset ID cannot be empty")
	}
	return PresetID(s), nil
}

// ParseFileID parses a string into FileID
func ParseFileID(s string) (FileID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("file ID cannot be empty")
	}
	return FileID(s), nil
}

// ParseSessionID parses a session cookie value, which must be a UUID
func ParseSessionID(s string) (SessionID, error) {
	parsed, err := uuid.Parse(strings.TrimSpace(s))
	if err != nil {
		return "", fmt.Errorf("invalid session ID: %w", err)
	}
	return SessionID(parsed.String()), nil
}
