package exposure

import (
	"fmt"
	"sort"

	"github.com/hearthward/exposure-core/internal/topology"
)

// ValidationKind classifies a pre-save validation failure.
type ValidationKind string

const (
	// KindInvalidPattern marks a malformed glob in exclude_patterns.
	KindInvalidPattern ValidationKind = "invalid_pattern"

	// KindConflict marks the same identifier appearing in two mutually
	// exclusive manually-entered lists, before normalization has
	// reconciled them. Only the migration import path produces such
	// lists; a normalized Config cannot conflict.
	KindConflict ValidationKind = "conflict"

	// KindAreaNotFound marks an exclude_areas entry absent from the
	// topology.
	KindAreaNotFound ValidationKind = "area_not_found"

	// KindNothingExposed marks a document that resolves to zero exposed
	// entities.
	KindNothingExposed ValidationKind = "nothing_exposed"
)

// ValidationError is one recoverable pre-save violation. Save is
// blocked while any are outstanding.
type ValidationError struct {
	Kind    ValidationKind `json:"kind"`
	Subject string         `json:"subject,omitempty"`
	Message string         `json:"message"`
}

// Validate sweeps the full document against the topology and returns
// every violation at once, never failing fast, so the operator sees
// them together.
//
// The nothing_exposed check runs resolution and is skipped while any
// pattern is invalid, since resolution assumes well-formed patterns.
func Validate(snap *topology.Snapshot, cfg *Config) []ValidationError {
	var errs []ValidationError

	patternsValid := true
	for _, pattern := range cfg.BulkRules.ExcludePatterns {
		if err := ValidatePattern(pattern); err != nil {
			patternsValid = false
			errs = append(errs, ValidationError{
				Kind:    KindInvalidPattern,
				Subject: pattern,
				Message: fmt.Sprintf("malformed pattern %q: unbalanced bracket", pattern),
			})
		}
	}

	for _, areaID := range cfg.BulkRules.ExcludeAreas {
		if !snap.HasArea(areaID) {
			errs = append(errs, ValidationError{
				Kind:    KindAreaNotFound,
				Subject: areaID,
				Message: fmt.Sprintf("excluded area %q not present in topology", areaID),
			})
		}
	}

	if patternsValid {
		exposed := 0
		for _, d := range Resolve(snap, cfg) {
			if d.Outcome == OutcomeExposed {
				exposed++
			}
		}
		if exposed == 0 {
			errs = append(errs, ValidationError{
				Kind:    KindNothingExposed,
				Message: "current rules expose no entities",
			})
		}
	}

	return errs
}

// CheckListConflicts reports identifiers present in both of two
// mutually exclusive manually-entered lists. Used by the migration
// importer on foreign include/exclude lists before they are normalized
// into overrides.
func CheckListConflicts(include, exclude []string) []ValidationError {
	includeSet := toSet(include)

	var conflicting []string
	for _, id := range exclude {
		if includeSet[id] {
			conflicting = append(conflicting, id)
		}
	}
	sort.Strings(conflicting)

	var errs []ValidationError
	for _, id := range conflicting {
		errs = append(errs, ValidationError{
			Kind:    KindConflict,
			Subject: id,
			Message: fmt.Sprintf("%q appears in both the include and exclude lists", id),
		})
	}
	return errs
}
