// Package dto provides response bodies of the audit API.
package dto

import (
	"time"

	auditDomain "github.com/allisson/phivault/internal/audit/domain"
)

// AuditEventResponse is one audit event in API responses.
type AuditEventResponse struct {
	ID             string         `json:"id"`
	Operation      string         `json:"operation"`
	FieldName      string         `json:"field_name"`
	ResourceType   string         `json:"resource_type,omitempty"`
	ResourceID     string         `json:"resource_id,omitempty"`
	UserID         string         `json:"user_id,omitempty"`
	OrganizationID string         `json:"organization_id,omitempty"`
	Classification string         `json:"classification"`
	Success        bool           `json:"success"`
	Error          string         `json:"error,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      time.Time      `json:"created_at"`
}

// MapAuditEventToResponse converts a domain audit event to an API response.
func MapAuditEventToResponse(event *auditDomain.AuditEvent) AuditEventResponse {
	return AuditEventResponse{
		ID:             event.ID.String(),
		Operation:      string(event.Operation),
		FieldName:      event.FieldName,
		ResourceType:   event.ResourceType,
		ResourceID:     event.ResourceID,
		UserID:         event.UserID,
		OrganizationID: event.OrganizationID,
		Classification: event.Classification,
		Success:        event.Success,
		Error:          event.Error,
		Metadata:       event.Metadata,
		CreatedAt:      event.CreatedAt,
	}
}

// ListAuditEventsResponse is a page of audit events.
type ListAuditEventsResponse struct {
	Data []AuditEventResponse `json:"data"`
}

// MapAuditEventsToListResponse converts a page of domain audit events.
func MapAuditEventsToListResponse(events []*auditDomain.AuditEvent) ListAuditEventsResponse {
	data := make([]AuditEventResponse, 0, len(events))
	for _, event := range events {
		data = append(data, MapAuditEventToResponse(event))
	}
	return ListAuditEventsResponse{Data: data}
}
