// Package service builds context-bound cache keys and classifies field sensitivity.
package service

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"

	phiDomain "github.com/allisson/phivault/internal/phi/domain"
)

const (
	keyDelimiter = ":"
	wildcard     = "*"
	// envelopeHashLen is the number of hex characters of SHA-256(envelope) kept in a key.
	envelopeHashLen = 16
)

// componentEscaper percent-encodes the delimiter and every glob metacharacter understood by
// redis MATCH and gobwas/glob, so a component can neither forge another segment nor widen
// an invalidation pattern.
var componentEscaper = strings.NewReplacer(
	"%", "%25",
	":", "%3A",
	"*", "%2A",
	"?", "%3F",
	"[", "%5B",
	"]", "%5D",
	"\\", "%5C",
	"{", "%7B",
	"}", "%7D",
)

// KeyBuilder derives cache keys of the form
//
//	<namespace>:<org>:<user>:<resource_type>:<resource_id>:<field>:<sha256(envelope)[:16]>
//
// The segments between namespace and hash form the context fingerprint.
type KeyBuilder struct {
	namespace string
}

// NewKeyBuilder creates a KeyBuilder for namespace.
func NewKeyBuilder(namespace string) *KeyBuilder {
	return &KeyBuilder{namespace: escape(namespace)}
}

// BuildKey returns the cache key for envelope as seen from fc.
func (b *KeyBuilder) BuildKey(envelope string, fc phiDomain.FieldContext) string {
	return b.namespace + keyDelimiter + b.Fingerprint(fc) + keyDelimiter + HashEnvelope(envelope)
}

// Fingerprint returns the access-control scope of fc.
func (b *KeyBuilder) Fingerprint(fc phiDomain.FieldContext) string {
	return strings.Join([]string{
		escape(fc.OrganizationID),
		escape(fc.UserID),
		escape(fc.ResourceType),
		escape(fc.ResourceID),
		escape(fc.FieldName),
	}, keyDelimiter)
}

// ResourcePattern matches every key cached for one resource of an organization, for any
// user, resource type and field. Each wildcard stands for exactly one segment.
func (b *KeyBuilder) ResourcePattern(organizationID, resourceID string) string {
	return strings.Join([]string{
		b.namespace,
		escape(organizationID),
		wildcard,
		wildcard,
		escape(resourceID),
		wildcard,
		wildcard,
	}, keyDelimiter)
}

// UserPattern matches every key cached for one user of an organization.
func (b *KeyBuilder) UserPattern(organizationID, userID string) string {
	return strings.Join([]string{
		b.namespace,
		escape(organizationID),
		escape(userID),
		wildcard,
		wildcard,
		wildcard,
		wildcard,
	}, keyDelimiter)
}

// HashEnvelope returns the first 16 hex characters of SHA-256(envelope).
func HashEnvelope(envelope string) string {
	sum := sha256.Sum256([]byte(envelope))
	return hex.EncodeToString(sum[:])[:envelopeHashLen]
}

func escape(s string) string {
	return componentEscaper.Replace(s)
}
