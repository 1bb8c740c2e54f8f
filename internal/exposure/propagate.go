package exposure

import (
	"github.com/hearthward/exposure-core/internal/topology"
)

// Override propagation keeps device-level and entity-level overrides
// mutually consistent without ever silently overwriting a user's direct
// choice. Propagation is strictly directional per edit: downward on a
// device action, upward recompute on an entity action. Filtered items
// are excluded from accounting in both directions; their own stored
// override value is left untouched.

// SetEntitySelected applies a direct user action on one entity.
//
// Pressing the same value again toggles the override off. The owning
// device's state is recomputed afterwards. Other entities are never
// touched.
func SetEntitySelected(cfg *Config, snap *topology.Snapshot, entityID string, expose bool) {
	cfg.ensureMaps()

	cur, ok := cfg.EntityOverrides[entityID]
	if ok && cur.Source == SourceSelected && cur.Expose == expose {
		delete(cfg.EntityOverrides, entityID)
	} else {
		cfg.EntityOverrides[entityID] = Override{Expose: expose, Source: SourceSelected}
	}

	if e := snap.Entity(entityID); e != nil && e.DeviceID != nil {
		RecalculateDevice(cfg, snap, *e.DeviceID)
	}
}

// SetDeviceSelected applies a direct user action on one device.
//
// Pressing the same value again toggles the device off, which clears
// any implied override on its non-filtered entities. Otherwise the
// device becomes selected and every non-filtered owned entity that is
// unset or implied becomes implied(expose); selected entities always
// win over device propagation.
func SetDeviceSelected(cfg *Config, snap *topology.Snapshot, deviceID string, expose bool) {
	cfg.ensureMaps()

	cur, ok := cfg.DeviceOverrides[deviceID]
	if ok && cur.Source == SourceSelected && cur.Expose == expose {
		delete(cfg.DeviceOverrides, deviceID)
		clearImpliedEntities(cfg, snap, deviceID)
		return
	}

	cfg.DeviceOverrides[deviceID] = Override{Expose: expose, Source: SourceSelected}
	for _, e := range snap.EntitiesOwnedBy(deviceID) {
		if cfg.IsEntityFiltered(e.ID) {
			continue
		}
		if ov, exists := cfg.EntityOverrides[e.ID]; exists && ov.Source == SourceSelected {
			continue
		}
		cfg.EntityOverrides[e.ID] = Override{Expose: expose, Source: SourceImplied}
	}
}

// clearImpliedEntities reverts implied overrides on a device's
// non-filtered entities back to unset. Selected entities stay.
func clearImpliedEntities(cfg *Config, snap *topology.Snapshot, deviceID string) {
	for _, e := range snap.EntitiesOwnedBy(deviceID) {
		if cfg.IsEntityFiltered(e.ID) {
			continue
		}
		if ov, exists := cfg.EntityOverrides[e.ID]; exists && ov.Source == SourceImplied {
			delete(cfg.EntityOverrides, e.ID)
		}
	}
}

// RecalculateDevice recomputes a device's implied state from its
// entities, after any entity-level change.
//
// Selected devices are never overridden. When every non-filtered owned
// entity is selected and they all agree, the device becomes
// implied(thatValue); otherwise an implied device reverts to unset.
// Devices with zero non-filtered entities are left unchanged.
func RecalculateDevice(cfg *Config, snap *topology.Snapshot, deviceID string) {
	cfg.ensureMaps()

	if cfg.IsDeviceFiltered(deviceID) {
		return
	}
	if cur, ok := cfg.DeviceOverrides[deviceID]; ok && cur.Source == SourceSelected {
		return
	}

	var counted int
	var agreed, haveValue bool
	allSelected := true
	for _, e := range snap.EntitiesOwnedBy(deviceID) {
		if cfg.IsEntityFiltered(e.ID) {
			continue
		}
		counted++

		ov, exists := cfg.EntityOverrides[e.ID]
		if !exists || ov.Source != SourceSelected {
			allSelected = false
			continue
		}
		if !haveValue {
			agreed = ov.Expose
			haveValue = true
		} else if agreed != ov.Expose {
			allSelected = false
		}
	}

	if counted == 0 {
		return
	}

	if allSelected && haveValue {
		cfg.DeviceOverrides[deviceID] = Override{Expose: agreed, Source: SourceImplied}
		return
	}
	if cur, ok := cfg.DeviceOverrides[deviceID]; ok && cur.Source == SourceImplied {
		delete(cfg.DeviceOverrides, deviceID)
	}
}

// ApplyEntityOverride is the boundary operation behind the override
// endpoint: a non-nil expose behaves like the entity button (with
// toggle-off), nil clears the override outright and recomputes the
// owning device.
func ApplyEntityOverride(cfg *Config, snap *topology.Snapshot, entityID string, expose *bool) {
	cfg.ensureMaps()

	if expose != nil {
		SetEntitySelected(cfg, snap, entityID, *expose)
		return
	}

	delete(cfg.EntityOverrides, entityID)
	if e := snap.Entity(entityID); e != nil && e.DeviceID != nil {
		RecalculateDevice(cfg, snap, *e.DeviceID)
	}
}

// ApplyDeviceOverride is the device counterpart: nil clears the device
// override and reverts implied entity overrides to unset.
func ApplyDeviceOverride(cfg *Config, snap *topology.Snapshot, deviceID string, expose *bool) {
	cfg.ensureMaps()

	if expose != nil {
		SetDeviceSelected(cfg, snap, deviceID, *expose)
		return
	}

	delete(cfg.DeviceOverrides, deviceID)
	clearImpliedEntities(cfg, snap, deviceID)
}
