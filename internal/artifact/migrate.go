package artifact

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/hearthward/exposure-core/internal/exposure"
)

// foreignDocument is the shape of a pre-existing assistant
// configuration offered for one-time import. Bulk lists and per-entity
// blocks both map into the initial document.
type foreignDocument struct {
	ExposedDomains  []string                 `yaml:"exposed_domains"`
	IncludeEntities []string                 `yaml:"include_entities"`
	ExcludeEntities []string                 `yaml:"exclude_entities"`
	EntityConfig    map[string]foreignEntity `yaml:"entity_config"`
}

type foreignEntity struct {
	Name    *string  `yaml:"name"`
	Aliases []string `yaml:"aliases"`
	Room    *string  `yaml:"room"`
	Expose  *bool    `yaml:"expose"`
}

// ImportForeign converts a foreign assistant configuration into an
// initial exposure document.
//
// Include/exclude lists and per-entity expose flags become selected
// entity overrides; name/aliases/room become EntityConfig. Identifiers
// present in both the include and exclude lists are conflicts: the
// import is rejected with the full conflict list and no document is
// produced. defaultDomains seeds expose_domains when the foreign file
// carries none.
func ImportForeign(data []byte, defaultDomains []string) (*exposure.Config, []exposure.ValidationError, error) {
	var doc foreignDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, nil, fmt.Errorf("%w: %w", ErrInvalidForeignConfig, err)
	}

	if conflicts := exposure.CheckListConflicts(doc.IncludeEntities, doc.ExcludeEntities); len(conflicts) > 0 {
		return nil, conflicts, nil
	}

	domains := doc.ExposedDomains
	if len(domains) == 0 {
		domains = defaultDomains
	}
	cfg := exposure.NewConfig(domains)

	for _, id := range doc.IncludeEntities {
		cfg.EntityOverrides[id] = exposure.Override{Expose: true, Source: exposure.SourceSelected}
	}
	for _, id := range doc.ExcludeEntities {
		cfg.EntityOverrides[id] = exposure.Override{Expose: false, Source: exposure.SourceSelected}
	}

	for id, fe := range doc.EntityConfig {
		if fe.Name != nil || len(fe.Aliases) > 0 || fe.Room != nil {
			cfg.EntityConfig[id] = exposure.EntityConfig{
				Name:    fe.Name,
				Aliases: fe.Aliases,
				Room:    fe.Room,
			}
		}
		// A per-entity expose flag is a direct operator choice in the
		// foreign tool; it wins over the bulk lists.
		if fe.Expose != nil {
			cfg.EntityOverrides[id] = exposure.Override{Expose: *fe.Expose, Source: exposure.SourceSelected}
		}
	}

	return cfg, nil, nil
}
