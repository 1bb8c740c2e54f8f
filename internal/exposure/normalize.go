package exposure

import (
	"encoding/json"
	"fmt"
)

// Overrides arrive in three historical encodings: a bare boolean, an
// object without a source, and the current {expose, source} form. All
// of them normalize to a structured Override before any propagation or
// resolution logic runs; unrecognized values are dropped (unset).

// DecodeConfig parses a JSON document into a normalized Config.
// Legacy override encodings are normalized per NormalizeOverride;
// normalization is idempotent, so re-decoding an encoded Config is a
// no-op.
func DecodeConfig(data []byte) (*Config, error) {
	var raw rawConfig
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	cfg := &Config{
		BulkRules:        raw.BulkRules,
		EntityOverrides:  normalizeOverrideMap(raw.EntityOverrides),
		DeviceOverrides:  normalizeOverrideMap(raw.DeviceOverrides),
		EntityConfig:     raw.EntityConfig,
		FilteredEntities: raw.FilteredEntities,
		FilteredDevices:  raw.FilteredDevices,
		Settings:         raw.Settings,
	}
	cfg.ensureMaps()
	return cfg, nil
}

// rawConfig defers override decoding so legacy encodings survive the
// first unmarshal.
type rawConfig struct {
	BulkRules        BulkRules                  `json:"bulk_rules"`
	EntityOverrides  map[string]json.RawMessage `json:"entity_overrides"`
	DeviceOverrides  map[string]json.RawMessage `json:"device_overrides"`
	EntityConfig     map[string]EntityConfig    `json:"entity_config"`
	FilteredEntities []string                   `json:"filtered_entities"`
	FilteredDevices  []string                   `json:"filtered_devices"`
	Settings         Settings                   `json:"settings"`
}

func normalizeOverrideMap(raw map[string]json.RawMessage) map[string]Override {
	out := make(map[string]Override, len(raw))
	for id, msg := range raw {
		if ov, ok := NormalizeOverride(msg); ok {
			out[id] = ov
		}
	}
	return out
}

// NormalizeOverride converts any historical override encoding into the
// structured form. ok is false for unrecognized values, which callers
// treat as unset (the key is dropped). Never fails.
func NormalizeOverride(raw json.RawMessage) (Override, bool) {
	// Bare boolean: legacy encoding, always a direct user choice.
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return Override{Expose: b, Source: SourceSelected}, true
	}

	// Object form. expose is required; a missing or unrecognized source
	// means the value predates source tracking and was user-set.
	var obj struct {
		Expose *bool   `json:"expose"`
		Source *string `json:"source"`
	}
	if err := json.Unmarshal(raw, &obj); err != nil || obj.Expose == nil {
		return Override{}, false
	}

	source := SourceSelected
	if obj.Source != nil && OverrideSource(*obj.Source) == SourceImplied {
		source = SourceImplied
	}
	return Override{Expose: *obj.Expose, Source: source}, true
}
