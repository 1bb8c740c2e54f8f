package artifact

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/hearthward/exposure-core/internal/exposure"
)

// header marks the file as generated. It appears above the mapping.
const header = "Managed by Exposure Core - DO NOT EDIT\nChanges are overwritten on every save"

// Entry is one row of the managed artifact handed to the
// voice-assistant bridge.
type Entry struct {
	Expose  bool     `yaml:"expose"`
	Name    *string  `yaml:"name,omitempty"`
	Aliases []string `yaml:"aliases,omitempty"`
	Room    *string  `yaml:"room,omitempty"`
}

// Render transforms a decision map plus entity metadata into the
// managed artifact: a YAML mapping from entity identifier to Entry,
// containing only exposed and excluded decisions (never unset), in
// ascending identifier order, under a generated-file header.
//
// Render is a pure transform; writing the file is the Manager's job.
func Render(decisions map[string]exposure.Decision, entityConfig map[string]exposure.EntityConfig) ([]byte, error) {
	ids := make([]string, 0, len(decisions))
	for id, d := range decisions {
		if d.Outcome == exposure.OutcomeUnset {
			continue
		}
		ids = append(ids, id)
	}
	sort.Strings(ids)

	root := &yaml.Node{
		Kind:        yaml.MappingNode,
		HeadComment: header,
	}

	for _, id := range ids {
		entry := Entry{Expose: decisions[id].Outcome == exposure.OutcomeExposed}
		if ec, ok := entityConfig[id]; ok {
			entry.Name = ec.Name
			entry.Aliases = ec.Aliases
			entry.Room = ec.Room
		}

		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: id}
		valueNode := &yaml.Node{}
		if err := valueNode.Encode(entry); err != nil {
			return nil, fmt.Errorf("encoding artifact entry %s: %w", id, err)
		}
		root.Content = append(root.Content, keyNode, valueNode)
	}

	doc := &yaml.Node{
		Kind:    yaml.DocumentNode,
		Content: []*yaml.Node{root},
	}

	out, err := yaml.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("rendering artifact: %w", err)
	}
	return out, nil
}

// Parse decodes a rendered artifact back into its entry mapping.
// Comments are ignored, so Render then Parse round-trips exactly the
// exposed/excluded subset of the decision map.
func Parse(data []byte) (map[string]Entry, error) {
	entries := make(map[string]Entry)
	if err := yaml.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidArtifact, err)
	}
	return entries, nil
}
