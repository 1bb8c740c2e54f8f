package exposure

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestNormalizeOverride(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   Override
		wantOK bool
	}{
		{
			name:   "bare true",
			raw:    `true`,
			want:   Override{Expose: true, Source: SourceSelected},
			wantOK: true,
		},
		{
			name:   "bare false",
			raw:    `false`,
			want:   Override{Expose: false, Source: SourceSelected},
			wantOK: true,
		},
		{
			name:   "object without source",
			raw:    `{"expose": false}`,
			want:   Override{Expose: false, Source: SourceSelected},
			wantOK: true,
		},
		{
			name:   "structured selected",
			raw:    `{"expose": true, "source": "selected"}`,
			want:   Override{Expose: true, Source: SourceSelected},
			wantOK: true,
		},
		{
			name:   "structured implied",
			raw:    `{"expose": true, "source": "implied"}`,
			want:   Override{Expose: true, Source: SourceImplied},
			wantOK: true,
		},
		{
			name:   "unknown source treated as selected",
			raw:    `{"expose": true, "source": "guessed"}`,
			want:   Override{Expose: true, Source: SourceSelected},
			wantOK: true,
		},
		{name: "missing expose", raw: `{"source": "selected"}`, wantOK: false},
		{name: "string value", raw: `"yes"`, wantOK: false},
		{name: "number value", raw: `1`, wantOK: false},
		{name: "null", raw: `null`, wantOK: false},
		{name: "array", raw: `[true]`, wantOK: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := NormalizeOverride(json.RawMessage(tt.raw))
			if ok != tt.wantOK {
				t.Fatalf("ok = %v, want %v", ok, tt.wantOK)
			}
			if ok && got != tt.want {
				t.Errorf("NormalizeOverride(%s) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestNormalizeOverride_Idempotent(t *testing.T) {
	inputs := []string{
		`true`,
		`{"expose": false}`,
		`{"expose": true, "source": "implied"}`,
	}

	for _, raw := range inputs {
		first, ok := NormalizeOverride(json.RawMessage(raw))
		if !ok {
			t.Fatalf("first normalization of %s failed", raw)
		}

		encoded, err := json.Marshal(first)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}

		second, ok := NormalizeOverride(encoded)
		if !ok {
			t.Fatalf("second normalization of %s failed", encoded)
		}
		if first != second {
			t.Errorf("normalization not idempotent for %s: %+v != %+v", raw, first, second)
		}
	}
}

func TestDecodeConfig(t *testing.T) {
	doc := []byte(`{
		"bulk_rules": {
			"expose_domains": ["light", "switch"],
			"exclude_areas": ["garage"],
			"exclude_patterns": ["sensor.*"]
		},
		"entity_overrides": {
			"light.legacy_bool": true,
			"light.legacy_object": {"expose": false},
			"light.modern": {"expose": true, "source": "implied"},
			"light.garbage": "not an override"
		},
		"device_overrides": {
			"dev-1": false
		},
		"entity_config": {
			"light.modern": {"name": "Reading Light", "aliases": ["lamp"]}
		},
		"filtered_entities": ["light.hidden"],
		"settings": {"auto_aliases": true, "backups": true}
	}`)

	cfg, err := DecodeConfig(doc)
	if err != nil {
		t.Fatalf("DecodeConfig() error = %v", err)
	}

	if len(cfg.EntityOverrides) != 3 {
		t.Errorf("expected 3 entity overrides (garbage dropped), got %d", len(cfg.EntityOverrides))
	}
	if _, ok := cfg.EntityOverrides["light.garbage"]; ok {
		t.Error("unrecognized encoding should be dropped, not kept")
	}
	if ov := cfg.EntityOverrides["light.legacy_bool"]; ov != (Override{Expose: true, Source: SourceSelected}) {
		t.Errorf("legacy bool = %+v", ov)
	}
	if ov := cfg.EntityOverrides["light.modern"]; ov != (Override{Expose: true, Source: SourceImplied}) {
		t.Errorf("modern override = %+v", ov)
	}
	if ov := cfg.DeviceOverrides["dev-1"]; ov != (Override{Expose: false, Source: SourceSelected}) {
		t.Errorf("device legacy bool = %+v", ov)
	}
	if !cfg.IsEntityFiltered("light.hidden") {
		t.Error("filtered entity lost in decode")
	}
	if !cfg.Settings.AutoAliases {
		t.Error("settings lost in decode")
	}
}

func TestDecodeConfig_Invalid(t *testing.T) {
	_, err := DecodeConfig([]byte(`{broken`))
	if !errors.Is(err, ErrInvalidDocument) {
		t.Errorf("DecodeConfig() = %v, want ErrInvalidDocument", err)
	}
}

func TestDecodeConfig_EmptyDocumentHasMaps(t *testing.T) {
	cfg, err := DecodeConfig([]byte(`{}`))
	if err != nil {
		t.Fatalf("DecodeConfig() error = %v", err)
	}
	// Maps must be writable without nil checks downstream.
	cfg.EntityOverrides["light.x"] = Override{Expose: true, Source: SourceSelected}
	cfg.EntityConfig["light.x"] = EntityConfig{}
}
