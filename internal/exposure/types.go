package exposure

// OverrideSource records how an override came to exist.
type OverrideSource string

const (
	// SourceSelected marks an override set by a direct user action on
	// that exact entity or device.
	SourceSelected OverrideSource = "selected"

	// SourceImplied marks an override written by propagation. Never set
	// by direct user action.
	SourceImplied OverrideSource = "implied"
)

// Override is an explicit or inferred expose decision on one entity or
// device. Absence from the override map means "unset".
type Override struct {
	Expose bool           `json:"expose"`
	Source OverrideSource `json:"source"`
}

// BulkRules are the coarse inclusion/exclusion rules applied before
// per-item overrides. Pattern order is irrelevant; any match excludes.
type BulkRules struct {
	ExposeDomains   []string `json:"expose_domains"`
	ExcludeAreas    []string `json:"exclude_areas"`
	ExcludePatterns []string `json:"exclude_patterns"`
}

// EntityConfig is preserved per-entity metadata, independent of the
// expose decision.
type EntityConfig struct {
	Name    *string  `json:"name,omitempty"`
	Aliases []string `json:"aliases,omitempty"`
	Room    *string  `json:"room,omitempty"`
}

// Settings are operator preferences carried with the document.
type Settings struct {
	AutoAliases bool `json:"auto_aliases"`
	Backups     bool `json:"backups"`
}

// Config is the aggregate document: the unit of load and save. All
// resolution is a pure function of one Config value plus a topology
// snapshot.
type Config struct {
	BulkRules        BulkRules               `json:"bulk_rules"`
	EntityOverrides  map[string]Override     `json:"entity_overrides"`
	DeviceOverrides  map[string]Override     `json:"device_overrides"`
	EntityConfig     map[string]EntityConfig `json:"entity_config"`
	FilteredEntities []string                `json:"filtered_entities"`
	FilteredDevices  []string                `json:"filtered_devices"`
	Settings         Settings                `json:"settings"`
}

// NewConfig returns an empty document seeded with the given domain
// inclusion list.
func NewConfig(exposeDomains []string) *Config {
	return &Config{
		BulkRules: BulkRules{
			ExposeDomains: append([]string(nil), exposeDomains...),
		},
		EntityOverrides: make(map[string]Override),
		DeviceOverrides: make(map[string]Override),
		EntityConfig:    make(map[string]EntityConfig),
		Settings:        Settings{Backups: true},
	}
}

// ensureMaps initialises nil maps so callers can write without checks.
func (c *Config) ensureMaps() {
	if c.EntityOverrides == nil {
		c.EntityOverrides = make(map[string]Override)
	}
	if c.DeviceOverrides == nil {
		c.DeviceOverrides = make(map[string]Override)
	}
	if c.EntityConfig == nil {
		c.EntityConfig = make(map[string]EntityConfig)
	}
}

// Clone returns a deep copy. Sessions hand out clones so readers never
// observe a document mid-edit.
func (c *Config) Clone() *Config {
	clone := &Config{
		BulkRules: BulkRules{
			ExposeDomains:   append([]string(nil), c.BulkRules.ExposeDomains...),
			ExcludeAreas:    append([]string(nil), c.BulkRules.ExcludeAreas...),
			ExcludePatterns: append([]string(nil), c.BulkRules.ExcludePatterns...),
		},
		EntityOverrides:  make(map[string]Override, len(c.EntityOverrides)),
		DeviceOverrides:  make(map[string]Override, len(c.DeviceOverrides)),
		EntityConfig:     make(map[string]EntityConfig, len(c.EntityConfig)),
		FilteredEntities: append([]string(nil), c.FilteredEntities...),
		FilteredDevices:  append([]string(nil), c.FilteredDevices...),
		Settings:         c.Settings,
	}
	for id, ov := range c.EntityOverrides {
		clone.EntityOverrides[id] = ov
	}
	for id, ov := range c.DeviceOverrides {
		clone.DeviceOverrides[id] = ov
	}
	for id, ec := range c.EntityConfig {
		ec.Aliases = append([]string(nil), ec.Aliases...)
		clone.EntityConfig[id] = ec
	}
	return clone
}

// IsEntityFiltered reports whether the entity is hidden from propagation
// accounting.
func (c *Config) IsEntityFiltered(entityID string) bool {
	return containsString(c.FilteredEntities, entityID)
}

// IsDeviceFiltered reports whether the device is hidden from propagation
// accounting.
func (c *Config) IsDeviceFiltered(deviceID string) bool {
	return containsString(c.FilteredDevices, deviceID)
}

// SetEntityFiltered adds or removes the entity from the filtered set.
// Filter toggles never trigger propagation; the frozen override value
// stays as-is.
func (c *Config) SetEntityFiltered(entityID string, filtered bool) {
	c.FilteredEntities = setMembership(c.FilteredEntities, entityID, filtered)
}

// SetDeviceFiltered adds or removes the device from the filtered set.
func (c *Config) SetDeviceFiltered(deviceID string, filtered bool) {
	c.FilteredDevices = setMembership(c.FilteredDevices, deviceID, filtered)
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

func setMembership(list []string, s string, member bool) []string {
	if member {
		if containsString(list, s) {
			return list
		}
		return append(list, s)
	}
	out := list[:0]
	for _, v := range list {
		if v != s {
			out = append(out, v)
		}
	}
	return out
}

// Outcome is the final per-entity resolution result.
type Outcome string

const (
	OutcomeExposed  Outcome = "exposed"
	OutcomeExcluded Outcome = "excluded"
	OutcomeUnset    Outcome = "unset"
)

// Reason tags why an entity was excluded. Recorded only for exclusions,
// and only the highest-precedence rule that fired.
type Reason string

const (
	ReasonEntityOverride Reason = "entity_override"
	ReasonDeviceOverride Reason = "device_override"
	ReasonPattern        Reason = "pattern"
	ReasonArea           Reason = "area"
)

// Decision is the resolved verdict for one entity.
type Decision struct {
	Outcome Outcome `json:"outcome"`
	Reason  Reason  `json:"reason,omitempty"`
}
