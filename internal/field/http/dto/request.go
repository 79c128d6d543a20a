// Package dto provides request and response bodies of the field API.
package dto

import (
	"bytes"
	"encoding/json"

	validation "github.com/jellydator/validation"

	phiDomain "github.com/allisson/phivault/internal/phi/domain"
	customValidation "github.com/allisson/phivault/internal/validation"
)

// FieldContextRequest is the caller supplied context of a field operation.
type FieldContextRequest struct {
	FieldName          string `json:"field_name"`
	ResourceType       string `json:"resource_type"`
	ResourceID         string `json:"resource_id"`
	UserID             string `json:"user_id"`
	OrganizationID     string `json:"organization_id"`
	DataClassification string `json:"data_classification"`
}

// Validate checks the context identifiers.
func (r FieldContextRequest) Validate() error {
	return validation.ValidateStruct(&r,
		validation.Field(&r.FieldName, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.ResourceType, customValidation.Identifier...),
		validation.Field(&r.ResourceID, customValidation.Identifier...),
		validation.Field(&r.UserID, customValidation.Identifier...),
		validation.Field(&r.OrganizationID, customValidation.Identifier...),
		validation.Field(&r.DataClassification, customValidation.Classification),
	)
}

// ToDomain converts the request into a FieldContext.
func (r FieldContextRequest) ToDomain() phiDomain.FieldContext {
	return phiDomain.FieldContext{
		FieldName:          r.FieldName,
		ResourceType:       r.ResourceType,
		ResourceID:         r.ResourceID,
		UserID:             r.UserID,
		OrganizationID:     r.OrganizationID,
		DataClassification: r.DataClassification,
	}
}

// EncryptFieldRequest carries any JSON value to seal. Strings are sealed as is; other
// values follow FieldCipher serialization.
type EncryptFieldRequest struct {
	Value   json.RawMessage     `json:"value"`
	Context FieldContextRequest `json:"context"`
}

// Validate checks the embedded context.
func (r *EncryptFieldRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Context),
	)
}

// DecodedValue unmarshals Value into a Go value; numbers stay json.Number so they are
// re-formatted exactly as sent.
func (r *EncryptFieldRequest) DecodedValue() (any, error) {
	if len(r.Value) == 0 {
		return nil, nil
	}
	var v any
	dec := json.NewDecoder(bytes.NewReader(r.Value))
	dec.UseNumber()
	if err := dec.Decode(&v); err != nil {
		return nil, err
	}
	return v, nil
}

// DecryptFieldRequest carries an envelope to open.
type DecryptFieldRequest struct {
	Envelope string              `json:"envelope"`
	Context  FieldContextRequest `json:"context"`
}

// Validate checks the embedded context. An empty envelope is allowed and decrypts to "".
func (r *DecryptFieldRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Context),
	)
}

// InvalidateResourceRequest names one record to drop from the cache.
type InvalidateResourceRequest struct {
	ResourceID   string              `json:"resource_id"`
	ResourceType string              `json:"resource_type"`
	Context      FieldContextRequest `json:"context"`
}

// Validate checks the resource identifiers. The context only needs an organization.
func (r *InvalidateResourceRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.ResourceID, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.ResourceType, customValidation.Identifier...),
	)
}

// InvalidateUserRequest names one user to drop from the cache.
type InvalidateUserRequest struct {
	UserID         string `json:"user_id"`
	OrganizationID string `json:"organization_id"`
}

// Validate checks the user identifiers.
func (r *InvalidateUserRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.UserID, validation.Required, customValidation.NotBlank, validation.Length(1, 255)),
		validation.Field(&r.OrganizationID, customValidation.Identifier...),
	)
}
