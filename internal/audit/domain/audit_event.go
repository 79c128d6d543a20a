// Package domain defines audit events emitted for every PHI field operation.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Operation is the kind of PHI field operation being audited.
type Operation string

const (
	OperationEncrypt    Operation = "encrypt"
	OperationDecrypt    Operation = "decrypt"
	OperationCacheGet   Operation = "cache_get"
	OperationCacheSet   Operation = "cache_set"
	OperationInvalidate Operation = "invalidate"
)

// AuditEvent is an append-only record of one field operation.
//
// It carries identifiers and outcome only, never plaintext, ciphertext or key material.
type AuditEvent struct {
	ID             uuid.UUID
	Operation      Operation
	FieldName      string
	ResourceType   string
	ResourceID     string
	UserID         string
	OrganizationID string
	Classification string
	Success        bool
	Error          string
	Metadata       map[string]any
	CreatedAt      time.Time
}
