// Package domain defines the request context and sensitivity model shared by field
// encryption, the decryption cache and audit.
package domain

import (
	validation "github.com/jellydator/validation"
)

// FieldContext identifies who is touching which field of which record.
//
// It is supplied by the caller on every operation, folded into cache keys and audit
// events, and never persisted on its own.
type FieldContext struct {
	FieldName          string `json:"field_name"`
	ResourceType       string `json:"resource_type,omitempty"`
	ResourceID         string `json:"resource_id,omitempty"`
	UserID             string `json:"user_id,omitempty"`
	OrganizationID     string `json:"organization_id,omitempty"`
	DataClassification string `json:"data_classification,omitempty"`
}

// Validate checks that the field name is present.
func (fc FieldContext) Validate() error {
	return validation.ValidateStruct(&fc,
		validation.Field(&fc.FieldName, validation.Required, validation.Length(1, 255)),
		validation.Field(&fc.ResourceType, validation.Length(0, 255)),
		validation.Field(&fc.ResourceID, validation.Length(0, 255)),
		validation.Field(&fc.UserID, validation.Length(0, 255)),
		validation.Field(&fc.OrganizationID, validation.Length(0, 255)),
	)
}
