package exposure

import (
	"github.com/hearthward/exposure-core/internal/topology"
)

// Resolve computes the final decision for every entity in the snapshot.
//
// It is a pure function of the snapshot and the config: safe to call
// repeatedly and concurrently, with no hidden state. Patterns are
// assumed well-formed; validation rejects malformed ones before a
// config can reach resolution.
//
// Precedence per entity, highest first:
//  1. entity override (any source)
//  2. device override (any source) on the owning device
//  3. pattern exclusion
//  4. area exclusion (direct area, else owning device's area)
//  5. domain inclusion
//  6. unset
//
// Exclusion reasons record only the highest-precedence rule that fired.
// Filtering affects propagation bookkeeping only, never decisions.
func Resolve(snap *topology.Snapshot, cfg *Config) map[string]Decision {
	exposeDomains := toSet(cfg.BulkRules.ExposeDomains)
	excludeAreas := toSet(cfg.BulkRules.ExcludeAreas)

	decisions := make(map[string]Decision, len(snap.Entities))
	for i := range snap.Entities {
		e := &snap.Entities[i]
		decisions[e.ID] = resolveEntity(snap, cfg, e, exposeDomains, excludeAreas)
	}
	return decisions
}

func resolveEntity(
	snap *topology.Snapshot,
	cfg *Config,
	e *topology.Entity,
	exposeDomains, excludeAreas map[string]bool,
) Decision {
	if ov, ok := cfg.EntityOverrides[e.ID]; ok {
		if ov.Expose {
			return Decision{Outcome: OutcomeExposed}
		}
		return Decision{Outcome: OutcomeExcluded, Reason: ReasonEntityOverride}
	}

	if e.DeviceID != nil {
		if ov, ok := cfg.DeviceOverrides[*e.DeviceID]; ok {
			if ov.Expose {
				return Decision{Outcome: OutcomeExposed}
			}
			return Decision{Outcome: OutcomeExcluded, Reason: ReasonDeviceOverride}
		}
	}

	if MatchesAny(cfg.BulkRules.ExcludePatterns, e.ID) {
		return Decision{Outcome: OutcomeExcluded, Reason: ReasonPattern}
	}

	if area := snap.EntityArea(e); area != "" && excludeAreas[area] {
		return Decision{Outcome: OutcomeExcluded, Reason: ReasonArea}
	}

	if exposeDomains[e.Domain()] {
		return Decision{Outcome: OutcomeExposed}
	}

	return Decision{Outcome: OutcomeUnset}
}

func toSet(list []string) map[string]bool {
	set := make(map[string]bool, len(list))
	for _, v := range list {
		set[v] = true
	}
	return set
}
