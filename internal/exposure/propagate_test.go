package exposure

import (
	"testing"

	"github.com/hearthward/exposure-core/internal/topology"
)

func strp(s string) *string { return &s }
func boolp(b bool) *bool    { return &b }

// deviceSnapshot builds a topology with one device owning the given
// entity IDs, plus any standalone IDs.
func deviceSnapshot(deviceID string, owned []string, standalone ...string) *topology.Snapshot {
	var entities []topology.Entity
	for _, id := range owned {
		entities = append(entities, topology.Entity{ID: id, DeviceID: strp(deviceID)})
	}
	for _, id := range standalone {
		entities = append(entities, topology.Entity{ID: id})
	}
	devices := []topology.Device{{ID: deviceID}}
	return topology.NewSnapshot(entities, devices, nil)
}

func TestSetEntitySelected_ToggleOff(t *testing.T) {
	snap := deviceSnapshot("dev-1", []string{"light.a"})
	cfg := NewConfig(nil)

	SetEntitySelected(cfg, snap, "light.a", true)
	if ov := cfg.EntityOverrides["light.a"]; ov != (Override{Expose: true, Source: SourceSelected}) {
		t.Fatalf("after first press: %+v", ov)
	}

	// Same value again toggles off.
	SetEntitySelected(cfg, snap, "light.a", true)
	if _, ok := cfg.EntityOverrides["light.a"]; ok {
		t.Error("second press of same value should clear the override")
	}
}

func TestSetEntitySelected_FlipValue(t *testing.T) {
	snap := deviceSnapshot("dev-1", []string{"light.a"})
	cfg := NewConfig(nil)

	SetEntitySelected(cfg, snap, "light.a", true)
	SetEntitySelected(cfg, snap, "light.a", false)

	if ov := cfg.EntityOverrides["light.a"]; ov != (Override{Expose: false, Source: SourceSelected}) {
		t.Errorf("flip should replace, not toggle: %+v", ov)
	}
}

func TestRecalculateDevice_AllSelectedAgreeing(t *testing.T) {
	snap := deviceSnapshot("dev-1", []string{"light.a", "light.b"})
	cfg := NewConfig(nil)

	SetEntitySelected(cfg, snap, "light.a", true)
	if _, ok := cfg.DeviceOverrides["dev-1"]; ok {
		t.Error("device should stay unset while entities disagree or are unset")
	}

	SetEntitySelected(cfg, snap, "light.b", true)
	if ov := cfg.DeviceOverrides["dev-1"]; ov != (Override{Expose: true, Source: SourceImplied}) {
		t.Errorf("device should become implied(true): %+v", ov)
	}
}

func TestRecalculateDevice_DisagreementRevertsImplied(t *testing.T) {
	snap := deviceSnapshot("dev-1", []string{"light.a", "light.b"})
	cfg := NewConfig(nil)

	SetEntitySelected(cfg, snap, "light.a", true)
	SetEntitySelected(cfg, snap, "light.b", true)
	// dev-1 is now implied(true). Flip one entity.
	SetEntitySelected(cfg, snap, "light.b", false)

	if _, ok := cfg.DeviceOverrides["dev-1"]; ok {
		t.Error("implied device should revert to unset on disagreement")
	}
}

func TestRecalculateDevice_SkipsSelectedDevice(t *testing.T) {
	snap := deviceSnapshot("dev-1", []string{"light.a", "light.b"})
	cfg := NewConfig(nil)

	SetDeviceSelected(cfg, snap, "dev-1", false)
	// Entity action would normally recompute the device, but a selected
	// device is never overridden by entity recomputation.
	SetEntitySelected(cfg, snap, "light.a", true)
	SetEntitySelected(cfg, snap, "light.b", true)

	if ov := cfg.DeviceOverrides["dev-1"]; ov != (Override{Expose: false, Source: SourceSelected}) {
		t.Errorf("selected device must stay selected: %+v", ov)
	}
}

func TestSetDeviceSelected_DownwardImplied(t *testing.T) {
	snap := deviceSnapshot("dev-1", []string{"light.a", "light.b", "light.c"})
	cfg := NewConfig(nil)

	SetEntitySelected(cfg, snap, "light.c", true)
	SetDeviceSelected(cfg, snap, "dev-1", false)

	if ov := cfg.EntityOverrides["light.a"]; ov != (Override{Expose: false, Source: SourceImplied}) {
		t.Errorf("unset entity should become implied(false): %+v", ov)
	}
	if ov := cfg.EntityOverrides["light.b"]; ov != (Override{Expose: false, Source: SourceImplied}) {
		t.Errorf("unset entity should become implied(false): %+v", ov)
	}
	if ov := cfg.EntityOverrides["light.c"]; ov != (Override{Expose: true, Source: SourceSelected}) {
		t.Errorf("selected entity must never be overwritten: %+v", ov)
	}
}

func TestSetDeviceSelected_ToggleOffClearsImplied(t *testing.T) {
	snap := deviceSnapshot("dev-1", []string{"light.a", "light.b"})
	cfg := NewConfig(nil)

	SetEntitySelected(cfg, snap, "light.b", true)
	SetDeviceSelected(cfg, snap, "dev-1", false)
	// light.a is implied(false), light.b selected(true).

	SetDeviceSelected(cfg, snap, "dev-1", false) // toggle off

	if _, ok := cfg.DeviceOverrides["dev-1"]; ok {
		t.Error("device override should be cleared by toggle-off")
	}
	if _, ok := cfg.EntityOverrides["light.a"]; ok {
		t.Error("implied entity should revert to unset when device clears")
	}
	if ov := cfg.EntityOverrides["light.b"]; ov != (Override{Expose: true, Source: SourceSelected}) {
		t.Errorf("selected entity untouched by device clear: %+v", ov)
	}
}

// Scenario C from the behavioral contract: explicit entity choices
// survive an explicit device choice in the opposite direction.
func TestDeviceExcludeAllDoesNotOverrideSelectedEntities(t *testing.T) {
	snap := deviceSnapshot("dev-1", []string{"light.e1", "light.e2"})
	cfg := NewConfig(nil)

	SetEntitySelected(cfg, snap, "light.e1", true)
	SetEntitySelected(cfg, snap, "light.e2", true)
	if ov := cfg.DeviceOverrides["dev-1"]; ov != (Override{Expose: true, Source: SourceImplied}) {
		t.Fatalf("expected implied(true) device, got %+v", ov)
	}

	SetDeviceSelected(cfg, snap, "dev-1", false)

	if ov := cfg.DeviceOverrides["dev-1"]; ov != (Override{Expose: false, Source: SourceSelected}) {
		t.Errorf("device = %+v, want selected(false)", ov)
	}
	if ov := cfg.EntityOverrides["light.e1"]; ov != (Override{Expose: true, Source: SourceSelected}) {
		t.Errorf("e1 = %+v, must remain selected(true)", ov)
	}
	if ov := cfg.EntityOverrides["light.e2"]; ov != (Override{Expose: true, Source: SourceSelected}) {
		t.Errorf("e2 = %+v, must remain selected(true)", ov)
	}
}

func TestPropagation_FilteredEntityExcludedBothDirections(t *testing.T) {
	snap := deviceSnapshot("dev-1", []string{"light.a", "light.b"})
	cfg := NewConfig(nil)
	cfg.SetEntityFiltered("light.b", true)

	// Upward: the filtered entity does not count, so one selected
	// entity is enough for agreement.
	SetEntitySelected(cfg, snap, "light.a", true)
	if ov := cfg.DeviceOverrides["dev-1"]; ov != (Override{Expose: true, Source: SourceImplied}) {
		t.Errorf("device should be implied(true) ignoring filtered entity: %+v", ov)
	}

	// Downward: the filtered entity is not a propagation target.
	SetDeviceSelected(cfg, snap, "dev-1", false)
	if _, ok := cfg.EntityOverrides["light.b"]; ok {
		t.Error("filtered entity must not receive implied override")
	}
}

func TestRecalculateDevice_ZeroNonFilteredEntitiesIsNoOp(t *testing.T) {
	snap := deviceSnapshot("dev-1", []string{"light.a"})
	cfg := NewConfig(nil)

	SetDeviceSelected(cfg, snap, "dev-1", true)
	SetDeviceSelected(cfg, snap, "dev-1", true) // toggle off, device unset
	SetEntitySelected(cfg, snap, "light.a", true)
	// Device now implied(true). Filter the only entity, then trigger a
	// recompute: the device state must stay frozen.
	cfg.SetEntityFiltered("light.a", true)
	RecalculateDevice(cfg, snap, "dev-1")

	if ov := cfg.DeviceOverrides["dev-1"]; ov != (Override{Expose: true, Source: SourceImplied}) {
		t.Errorf("device state should be frozen with zero non-filtered entities: %+v", ov)
	}
}

func TestRecalculateDevice_SkipsFilteredDevice(t *testing.T) {
	snap := deviceSnapshot("dev-1", []string{"light.a"})
	cfg := NewConfig(nil)
	cfg.SetDeviceFiltered("dev-1", true)

	SetEntitySelected(cfg, snap, "light.a", true)

	if _, ok := cfg.DeviceOverrides["dev-1"]; ok {
		t.Error("filtered device must not receive implied state")
	}
}

func TestApplyEntityOverride_NilClears(t *testing.T) {
	snap := deviceSnapshot("dev-1", []string{"light.a", "light.b"})
	cfg := NewConfig(nil)

	SetEntitySelected(cfg, snap, "light.a", true)
	SetEntitySelected(cfg, snap, "light.b", true)
	// dev-1 implied(true).

	ApplyEntityOverride(cfg, snap, "light.a", nil)

	if _, ok := cfg.EntityOverrides["light.a"]; ok {
		t.Error("nil should clear the entity override")
	}
	if _, ok := cfg.DeviceOverrides["dev-1"]; ok {
		t.Error("device should recompute to unset after the clear")
	}
}

func TestApplyDeviceOverride_NilClearsImplied(t *testing.T) {
	snap := deviceSnapshot("dev-1", []string{"light.a"})
	cfg := NewConfig(nil)

	SetDeviceSelected(cfg, snap, "dev-1", true)
	if ov := cfg.EntityOverrides["light.a"]; ov != (Override{Expose: true, Source: SourceImplied}) {
		t.Fatalf("setup failed: %+v", ov)
	}

	ApplyDeviceOverride(cfg, snap, "dev-1", nil)

	if _, ok := cfg.DeviceOverrides["dev-1"]; ok {
		t.Error("nil should clear the device override")
	}
	if _, ok := cfg.EntityOverrides["light.a"]; ok {
		t.Error("implied entity should revert to unset")
	}
}

func TestApplyOverride_NonNilDelegatesToSelected(t *testing.T) {
	snap := deviceSnapshot("dev-1", []string{"light.a"})
	cfg := NewConfig(nil)

	ApplyEntityOverride(cfg, snap, "light.a", boolp(false))
	if ov := cfg.EntityOverrides["light.a"]; ov != (Override{Expose: false, Source: SourceSelected}) {
		t.Errorf("entity = %+v", ov)
	}

	ApplyDeviceOverride(cfg, snap, "dev-1", boolp(true))
	if ov := cfg.DeviceOverrides["dev-1"]; ov != (Override{Expose: true, Source: SourceSelected}) {
		t.Errorf("device = %+v", ov)
	}
}

// Propagation convergence: after any edit sequence, every device's
// state matches what a fresh recompute would produce, and no selected
// state was overwritten.
func TestPropagationConvergence(t *testing.T) {
	snap := deviceSnapshot("dev-1", []string{"light.a", "light.b", "light.c"})
	cfg := NewConfig(nil)

	type edit struct {
		device bool
		id     string
		expose bool
	}
	edits := []edit{
		{id: "light.a", expose: true},
		{id: "light.b", expose: true},
		{id: "light.c", expose: true},
		{device: true, id: "dev-1", expose: false},
		{id: "light.a", expose: true}, // toggle off
		{id: "light.a", expose: false},
		{device: true, id: "dev-1", expose: false}, // toggle off
		{id: "light.b", expose: false},
		{id: "light.c", expose: false},
	}

	for i, e := range edits {
		if e.device {
			SetDeviceSelected(cfg, snap, e.id, e.expose)
		} else {
			SetEntitySelected(cfg, snap, e.id, e.expose)
		}

		// A selected device is exempt: recompute skips it by contract.
		if ov, ok := cfg.DeviceOverrides["dev-1"]; ok && ov.Source == SourceSelected {
			continue
		}

		before := cfg.DeviceOverrides["dev-1"]
		RecalculateDevice(cfg, snap, "dev-1")
		after := cfg.DeviceOverrides["dev-1"]
		if before != after {
			t.Errorf("edit %d left device stale: %+v vs recomputed %+v", i, before, after)
		}
	}

	// Final state: all three entities selected(false), device implied(false).
	if ov := cfg.DeviceOverrides["dev-1"]; ov != (Override{Expose: false, Source: SourceImplied}) {
		t.Errorf("final device state = %+v, want implied(false)", ov)
	}
}
