package service

import (
	"strings"

	phiDomain "github.com/allisson/phivault/internal/phi/domain"
)

// ClassificationRule maps field name indicators to a sensitivity level.
type ClassificationRule struct {
	Level      phiDomain.SensitivityLevel `json:"level"`
	Indicators []string                   `json:"indicators"`
}

// defaultRules is ordered most restrictive first; the first matching rule wins, so a field
// matching several sets always gets the shortest TTL.
var defaultRules = []ClassificationRule{
	{
		Level: phiDomain.HighPHI,
		Indicators: []string{
			"ssn",
			"social_security",
			"medical_record",
			"mrn",
			"diagnosis",
			"condition",
			"medication",
			"prescription",
			"allergy",
			"allergies",
			"lab_result",
			"treatment",
			"insurance_id",
			"policy_number",
			"date_of_birth",
			"dob",
		},
	},
	{
		Level: phiDomain.MediumPHI,
		Indicators: []string{
			"name",
			"address",
			"phone",
			"email",
			"emergency_contact",
			"insurance",
			"provider",
		},
	},
	{
		Level: phiDomain.LowPHI,
		Indicators: []string{
			"city",
			"state",
			"zip",
			"postal",
			"preferences",
		},
	},
}

// Classifier derives a field's SensitivityLevel from its name.
type Classifier struct {
	rules    []ClassificationRule
	fallback phiDomain.SensitivityLevel
}

// NewClassifier creates a Classifier with the built-in rule table. Unmatched fields are
// MediumPHI.
func NewClassifier() *Classifier {
	return NewClassifierWithRules(defaultRules, phiDomain.MediumPHI)
}

// NewClassifierWithRules creates a Classifier over an ordered rule table.
func NewClassifierWithRules(
	rules []ClassificationRule,
	fallback phiDomain.SensitivityLevel,
) *Classifier {
	normalized := make([]ClassificationRule, 0, len(rules))
	for _, r := range rules {
		indicators := make([]string, 0, len(r.Indicators))
		for _, ind := range r.Indicators {
			if ind = strings.ToLower(strings.TrimSpace(ind)); ind != "" {
				indicators = append(indicators, ind)
			}
		}
		normalized = append(normalized, ClassificationRule{Level: r.Level, Indicators: indicators})
	}
	return &Classifier{rules: normalized, fallback: fallback}
}

// Classify returns explicit when it is a valid level, otherwise the level of the first rule
// with an indicator that is a case-insensitive substring of fieldName.
func (c *Classifier) Classify(
	fieldName string,
	explicit *phiDomain.SensitivityLevel,
) phiDomain.SensitivityLevel {
	if explicit != nil && explicit.Valid() {
		return *explicit
	}

	name := strings.ToLower(fieldName)
	for _, rule := range c.rules {
		for _, ind := range rule.Indicators {
			if strings.Contains(name, ind) {
				return rule.Level
			}
		}
	}
	return c.fallback
}

// ClassifyContext honours fc.DataClassification (e.g. "audit" for audit-originated
// records, "public" for non-PHI) before falling back to the field name.
func (c *Classifier) ClassifyContext(fc phiDomain.FieldContext) phiDomain.SensitivityLevel {
	if fc.DataClassification != "" {
		if level, err := phiDomain.ParseSensitivityLevel(fc.DataClassification); err == nil {
			return level
		}
	}
	return c.Classify(fc.FieldName, nil)
}

// Rules returns a copy of the rule table in evaluation order.
func (c *Classifier) Rules() []ClassificationRule {
	out := make([]ClassificationRule, len(c.rules))
	for i, r := range c.rules {
		out[i] = ClassificationRule{
			Level:      r.Level,
			Indicators: append([]string(nil), r.Indicators...),
		}
	}
	return out
}
