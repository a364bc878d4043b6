package core

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// tableNamespace scopes content-derived table IDs.
var tableNamespace = uuid.NewSHA1(uuid.NameSpaceOID, []byte("gotabstat.table"))

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
	TableID   ID
	RequestID ID
)

func (id TableID) String() string   { return ID(id).String() }
func (id RequestID) String() string { return ID(id).String() }

// NewTableID derives a stable identifier from a table's content fingerprint.
// Identical content always yields the identical ID.
func NewTableID(fingerprint Hash) TableID {
	return TableID(uuid.NewSHA1(tableNamespace, []byte(fingerprint)).String())
}

// NewRequestID creates a time-ordered request identifier.
func NewRequestID() RequestID {
	return RequestID(NewID())
}

// ParseTableID parses a string into TableID
func ParseTableID(s string) (TableID, error) {
	if strings.TrimSpace(s) == "" {
		return "", fmt.Errorf("table ID cannot be empty")
	}
	if _, err := uuid.Parse(s); err != nil {
		return "", fmt.Errorf("invalid table ID %q: %w", s, err)
	}
	return TableID(s), nil
}
