package domain

import (
	"strings"
	"time"

	"github.com/allisson/phivault/internal/errors"
)

// SensitivityLevel drives how long decrypted plaintext may stay cached.
type SensitivityLevel string

const (
	HighPHI   SensitivityLevel = "high_phi"
	MediumPHI SensitivityLevel = "medium_phi"
	LowPHI    SensitivityLevel = "low_phi"
	NonPHI    SensitivityLevel = "non_phi"
	AuditData SensitivityLevel = "audit_data"
)

// ErrUnknownSensitivity is returned when a level name is not recognised.
var ErrUnknownSensitivity = errors.Wrap(errors.ErrInvalidInput, "unknown sensitivity level")

// ttlTable is the cache exposure window per level.
var ttlTable = map[SensitivityLevel]time.Duration{
	HighPHI:   300 * time.Second,
	MediumPHI: 900 * time.Second,
	LowPHI:    1800 * time.Second,
	NonPHI:    3600 * time.Second,
	AuditData: 600 * time.Second,
}

// Levels returns every level from most to least restrictive PHI tier, then the
// non-PHI tiers.
func Levels() []SensitivityLevel {
	return []SensitivityLevel{HighPHI, MediumPHI, LowPHI, NonPHI, AuditData}
}

// TTL returns the cache TTL for the level. Unknown levels get the MediumPHI window.
func (s SensitivityLevel) TTL() time.Duration {
	if ttl, ok := ttlTable[s]; ok {
		return ttl
	}
	return ttlTable[MediumPHI]
}

// Valid reports whether s is one of the defined levels.
func (s SensitivityLevel) Valid() bool {
	_, ok := ttlTable[s]
	return ok
}

func (s SensitivityLevel) String() string {
	return string(s)
}

// ParseSensitivityLevel accepts level names case-insensitively, plus the aliases
// "high", "medium", "low", "audit", "public" and "none".
func ParseSensitivityLevel(s string) (SensitivityLevel, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "high_phi", "high":
		return HighPHI, nil
	case "medium_phi", "medium":
		return MediumPHI, nil
	case "low_phi", "low":
		return LowPHI, nil
	case "non_phi", "public", "none":
		return NonPHI, nil
	case "audit_data", "audit":
		return AuditData, nil
	default:
		return "", ErrUnknownSensitivity
	}
}
