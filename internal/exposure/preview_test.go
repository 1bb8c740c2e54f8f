package exposure

import (
	"reflect"
	"testing"

	"github.com/hearthward/exposure-core/internal/topology"
)

func previewSnapshot() *topology.Snapshot {
	return topology.NewSnapshot(
		[]topology.Entity{
			{ID: "light.kitchen", Name: "Kitchen Light", AreaID: strp("kitchen")},
			{ID: "light.hall", Name: "Hall Light"},
			{ID: "switch.fan", Name: "Fan"},
			{ID: "camera.front", Name: "Front Camera"},
		},
		nil,
		[]topology.Area{{ID: "kitchen", Name: "Kitchen"}},
	)
}

func TestBuildPreview_CountsAndReasons(t *testing.T) {
	snap := previewSnapshot()
	cfg := NewConfig([]string{"light", "switch"})
	cfg.EntityOverrides["switch.fan"] = Override{Expose: false, Source: SourceSelected}
	cfg.BulkRules.ExcludePatterns = []string{"light.hall"}

	decisions := Resolve(snap, cfg)
	p := BuildPreview(snap, decisions, cfg, cfg)

	if p.Counts != (Counts{Exposed: 1, Excluded: 2, Unset: 1}) {
		t.Errorf("counts = %+v", p.Counts)
	}
	if got := p.ExclusionReasons[ReasonEntityOverride]; !reflect.DeepEqual(got, []string{"switch.fan"}) {
		t.Errorf("entity_override reasons = %v", got)
	}
	if got := p.ExclusionReasons[ReasonPattern]; !reflect.DeepEqual(got, []string{"light.hall"}) {
		t.Errorf("pattern reasons = %v", got)
	}
}

func TestBuildPreview_ReasonListsAscending(t *testing.T) {
	snap := topology.NewSnapshot(
		[]topology.Entity{
			{ID: "light.zz"}, {ID: "light.aa"}, {ID: "light.mm"},
		},
		nil, nil,
	)
	cfg := NewConfig(nil)
	cfg.BulkRules.ExcludePatterns = []string{"light.*"}

	p := BuildPreview(snap, Resolve(snap, cfg), cfg, cfg)

	want := []string{"light.aa", "light.mm", "light.zz"}
	if got := p.ExclusionReasons[ReasonPattern]; !reflect.DeepEqual(got, want) {
		t.Errorf("reason list = %v, want ascending %v", got, want)
	}
}

func TestBuildPreview_EachExcludedEntityUnderOneReason(t *testing.T) {
	snap := topology.NewSnapshot(
		[]topology.Entity{{ID: "light.both", AreaID: strp("garage")}},
		nil,
		[]topology.Area{{ID: "garage"}},
	)
	// Matches both a pattern and an excluded area; pattern has higher
	// precedence and must be the only reason recorded.
	cfg := NewConfig(nil)
	cfg.BulkRules.ExcludePatterns = []string{"light.both"}
	cfg.BulkRules.ExcludeAreas = []string{"garage"}

	p := BuildPreview(snap, Resolve(snap, cfg), cfg, cfg)

	if got := p.ExclusionReasons[ReasonPattern]; !reflect.DeepEqual(got, []string{"light.both"}) {
		t.Errorf("pattern list = %v", got)
	}
	if got := p.ExclusionReasons[ReasonArea]; len(got) != 0 {
		t.Errorf("area list should be empty, got %v", got)
	}
}

func TestBuildPreview_ConfigChanges(t *testing.T) {
	snap := previewSnapshot()

	persisted := NewConfig(nil)
	persisted.EntityConfig["light.kitchen"] = EntityConfig{
		Name:    strp("Old Name"),
		Aliases: []string{"cooker light", "kept"},
	}
	persisted.EntityConfig["light.hall"] = EntityConfig{Room: strp("Hallway")}

	pending := NewConfig(nil)
	pending.EntityConfig["light.kitchen"] = EntityConfig{
		Name:    strp("New Name"),
		Aliases: []string{"kept", "stove light"},
		Room:    strp("Kitchen"),
	}
	// light.hall config removed entirely; switch.fan added.
	pending.EntityConfig["switch.fan"] = EntityConfig{Name: strp("Ceiling Fan")}

	p := BuildPreview(snap, map[string]Decision{}, persisted, pending)

	if len(p.ConfigChanges) != 3 {
		t.Fatalf("expected 3 changed entities, got %d: %+v", len(p.ConfigChanges), p.ConfigChanges)
	}

	// Ascending entity order.
	if p.ConfigChanges[0].EntityID != "light.hall" ||
		p.ConfigChanges[1].EntityID != "light.kitchen" ||
		p.ConfigChanges[2].EntityID != "switch.fan" {
		t.Fatalf("change order = %v", p.ConfigChanges)
	}

	kitchen := p.ConfigChanges[1].Changes
	if len(kitchen) != 3 {
		t.Fatalf("kitchen changes = %+v", kitchen)
	}
	if kitchen[0].Field != "name" || *kitchen[0].Old != "Old Name" || *kitchen[0].New != "New Name" {
		t.Errorf("name change = %+v", kitchen[0])
	}
	if kitchen[1].Field != "aliases" ||
		!reflect.DeepEqual(kitchen[1].Added, []string{"stove light"}) ||
		!reflect.DeepEqual(kitchen[1].Removed, []string{"cooker light"}) {
		t.Errorf("aliases change = %+v", kitchen[1])
	}
	if kitchen[2].Field != "room" || kitchen[2].Old != nil || *kitchen[2].New != "Kitchen" {
		t.Errorf("room change = %+v", kitchen[2])
	}

	hall := p.ConfigChanges[0].Changes
	if len(hall) != 1 || hall[0].Field != "room" || *hall[0].Old != "Hallway" || hall[0].New != nil {
		t.Errorf("hall change = %+v", hall)
	}
}

func TestBuildPreview_NoChangesWhenEqual(t *testing.T) {
	snap := previewSnapshot()
	cfg := NewConfig(nil)
	cfg.EntityConfig["light.kitchen"] = EntityConfig{Name: strp("Same")}

	p := BuildPreview(snap, map[string]Decision{}, cfg, cfg.Clone())
	if len(p.ConfigChanges) != 0 {
		t.Errorf("identical documents produced changes: %+v", p.ConfigChanges)
	}
}

func TestBuildPreview_ExposedWithConfig(t *testing.T) {
	snap := previewSnapshot()
	cfg := NewConfig([]string{"light"})
	cfg.EntityConfig["light.kitchen"] = EntityConfig{
		Name:    strp("Cooker Light"),
		Aliases: []string{"stove light"},
	}

	p := BuildPreview(snap, Resolve(snap, cfg), cfg, cfg)

	if len(p.ExposedWithConfig) != 2 {
		t.Fatalf("exposed_with_config = %+v", p.ExposedWithConfig)
	}

	hall := p.ExposedWithConfig[0]
	if hall.EntityID != "light.hall" || hall.Name != "Hall Light" || hall.Room != "" {
		t.Errorf("hall annotation = %+v (topology fallbacks expected)", hall)
	}

	kitchen := p.ExposedWithConfig[1]
	if kitchen.Name != "Cooker Light" {
		t.Errorf("configured name should win: %+v", kitchen)
	}
	if !reflect.DeepEqual(kitchen.Aliases, []string{"stove light"}) {
		t.Errorf("aliases = %v", kitchen.Aliases)
	}
	if kitchen.Room != "Kitchen" {
		t.Errorf("room should fall back to area name: %q", kitchen.Room)
	}
}
