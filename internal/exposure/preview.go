package exposure

import (
	"sort"

	"github.com/hearthward/exposure-core/internal/topology"
)

// Preview aggregates a decision map into what the operator reviews
// before saving: outcome counts, exclusions grouped by reason, metadata
// changes against the persisted document, and the exposed set with its
// effective display config.
type Preview struct {
	Counts            Counts              `json:"counts"`
	ExclusionReasons  map[Reason][]string `json:"exclusion_reasons"`
	ConfigChanges     []ConfigChange      `json:"config_changes"`
	ExposedWithConfig []ExposedEntity     `json:"exposed_with_config"`
}

// Counts holds the number of entities per outcome.
type Counts struct {
	Exposed  int `json:"exposed"`
	Excluded int `json:"excluded"`
	Unset    int `json:"unset"`
}

// ConfigChange lists the metadata fields that differ for one entity
// between the persisted and pending documents.
type ConfigChange struct {
	EntityID string        `json:"entity_id"`
	Changes  []FieldChange `json:"changes"`
}

// FieldChange describes one changed field. Name and room changes carry
// {old, new} where either side may be absent (added/removed); alias
// changes carry the set difference.
type FieldChange struct {
	Field   string   `json:"field"`
	Old     *string  `json:"old,omitempty"`
	New     *string  `json:"new,omitempty"`
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
}

// ExposedEntity is an exposed entity annotated with its effective
// display configuration.
type ExposedEntity struct {
	EntityID string   `json:"entity_id"`
	Name     string   `json:"name"`
	Aliases  []string `json:"aliases,omitempty"`
	Room     string   `json:"room,omitempty"`
}

// BuildPreview assembles a Preview from a decision map, the persisted
// document, and the pending one. Identifier lists are in ascending
// order; each excluded entity appears under exactly its recorded
// (highest-precedence) reason.
func BuildPreview(snap *topology.Snapshot, decisions map[string]Decision, persisted, pending *Config) Preview {
	p := Preview{
		ExclusionReasons: make(map[Reason][]string),
	}

	var exposedIDs []string
	for id, d := range decisions {
		switch d.Outcome {
		case OutcomeExposed:
			p.Counts.Exposed++
			exposedIDs = append(exposedIDs, id)
		case OutcomeExcluded:
			p.Counts.Excluded++
			p.ExclusionReasons[d.Reason] = append(p.ExclusionReasons[d.Reason], id)
		case OutcomeUnset:
			p.Counts.Unset++
		}
	}

	for reason := range p.ExclusionReasons {
		sort.Strings(p.ExclusionReasons[reason])
	}
	sort.Strings(exposedIDs)

	p.ConfigChanges = diffEntityConfigs(persisted, pending)
	p.ExposedWithConfig = annotateExposed(snap, pending, exposedIDs)

	return p
}

// diffEntityConfigs computes per-entity field changes between two
// documents, in ascending entity order.
func diffEntityConfigs(persisted, pending *Config) []ConfigChange {
	ids := make(map[string]bool)
	if persisted != nil {
		for id := range persisted.EntityConfig {
			ids[id] = true
		}
	}
	if pending != nil {
		for id := range pending.EntityConfig {
			ids[id] = true
		}
	}

	ordered := make([]string, 0, len(ids))
	for id := range ids {
		ordered = append(ordered, id)
	}
	sort.Strings(ordered)

	var changes []ConfigChange
	for _, id := range ordered {
		var prev, next EntityConfig
		if persisted != nil {
			prev = persisted.EntityConfig[id]
		}
		if pending != nil {
			next = pending.EntityConfig[id]
		}
		if fields := diffFields(prev, next); len(fields) > 0 {
			changes = append(changes, ConfigChange{EntityID: id, Changes: fields})
		}
	}
	return changes
}

func diffFields(prev, next EntityConfig) []FieldChange {
	var fields []FieldChange

	if !equalStrPtr(prev.Name, next.Name) {
		fields = append(fields, FieldChange{Field: "name", Old: prev.Name, New: next.Name})
	}

	added, removed := stringSetDiff(prev.Aliases, next.Aliases)
	if len(added) > 0 || len(removed) > 0 {
		fields = append(fields, FieldChange{Field: "aliases", Added: added, Removed: removed})
	}

	if !equalStrPtr(prev.Room, next.Room) {
		fields = append(fields, FieldChange{Field: "room", Old: prev.Room, New: next.Room})
	}

	return fields
}

// annotateExposed resolves each exposed entity's effective name, aliases
// and room: configured values first, topology fallbacks otherwise.
func annotateExposed(snap *topology.Snapshot, pending *Config, exposedIDs []string) []ExposedEntity {
	out := make([]ExposedEntity, 0, len(exposedIDs))
	for _, id := range exposedIDs {
		annotated := ExposedEntity{EntityID: id}

		var ec EntityConfig
		if pending != nil {
			ec = pending.EntityConfig[id]
		}

		e := snap.Entity(id)
		if ec.Name != nil {
			annotated.Name = *ec.Name
		} else if e != nil {
			annotated.Name = e.Name
		}

		annotated.Aliases = append([]string(nil), ec.Aliases...)

		if ec.Room != nil {
			annotated.Room = *ec.Room
		} else if e != nil {
			if area := snap.Area(snap.EntityArea(e)); area != nil {
				annotated.Room = area.Name
			}
		}

		out = append(out, annotated)
	}
	return out
}

func equalStrPtr(a, b *string) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// stringSetDiff returns next-minus-prev and prev-minus-next, sorted.
func stringSetDiff(prev, next []string) (added, removed []string) {
	prevSet := toSet(prev)
	nextSet := toSet(next)

	for _, v := range next {
		if !prevSet[v] {
			added = append(added, v)
		}
	}
	for _, v := range prev {
		if !nextSet[v] {
			removed = append(removed, v)
		}
	}
	sort.Strings(added)
	sort.Strings(removed)
	return added, removed
}
