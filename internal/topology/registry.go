package topology

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Registry holds the current topology snapshot in memory and mirrors it
// to the repository on update. Reads are lock-free on the snapshot
// itself because snapshots are immutable; the registry only swaps the
// pointer.
type Registry struct {
	repo Repository

	mu   sync.RWMutex
	snap *Snapshot

	// supportedDomains restricts which entities enter the registry.
	// Entities in unsupported domains are dropped at ingest.
	supportedDomains map[string]bool

	onUpdate func(*Snapshot)
}

// NewRegistry creates a registry limited to the given domains. An empty
// list admits every domain.
func NewRegistry(repo Repository, supportedDomains []string) *Registry {
	domains := make(map[string]bool, len(supportedDomains))
	for _, d := range supportedDomains {
		domains[d] = true
	}
	return &Registry{
		repo:             repo,
		snap:             NewSnapshot(nil, nil, nil),
		supportedDomains: domains,
	}
}

// SetOnUpdate registers a callback invoked after each successful update
// with the new snapshot. Used to broadcast topology.updated events.
func (r *Registry) SetOnUpdate(callback func(*Snapshot)) {
	r.mu.Lock()
	r.onUpdate = callback
	r.mu.Unlock()
}

// Snapshot returns the current immutable topology snapshot.
func (r *Registry) Snapshot() *Snapshot {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.snap
}

// Restore loads the persisted mirror into memory. Called once at startup.
func (r *Registry) Restore(ctx context.Context) error {
	entities, devices, areas, err := r.repo.Load(ctx)
	if err != nil {
		return fmt.Errorf("restoring topology: %w", err)
	}

	r.mu.Lock()
	r.snap = NewSnapshot(r.filterSupported(entities), devices, areas)
	r.mu.Unlock()
	return nil
}

// Update replaces the in-memory snapshot and persists the mirror.
// Entities in unsupported domains are dropped.
func (r *Registry) Update(ctx context.Context, entities []Entity, devices []Device, areas []Area) error {
	entities = r.filterSupported(entities)

	if err := r.repo.ReplaceAll(ctx, entities, devices, areas); err != nil {
		return fmt.Errorf("persisting topology: %w", err)
	}

	snap := NewSnapshot(entities, devices, areas)

	r.mu.Lock()
	r.snap = snap
	callback := r.onUpdate
	r.mu.Unlock()

	if callback != nil {
		callback(snap)
	}
	return nil
}

// UpdateFromJSON decodes a snapshot document (the MQTT payload and the
// PUT /topology body share this shape) and applies it.
func (r *Registry) UpdateFromJSON(ctx context.Context, payload []byte) error {
	var doc SnapshotDocument
	if err := json.Unmarshal(payload, &doc); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
	}
	return r.Update(ctx, doc.Entities, doc.Devices, doc.Areas)
}

// SnapshotDocument is the wire shape of a full topology snapshot.
type SnapshotDocument struct {
	Entities []Entity `json:"entities"`
	Devices  []Device `json:"devices"`
	Areas    []Area   `json:"areas"`
}

func (r *Registry) filterSupported(entities []Entity) []Entity {
	if len(r.supportedDomains) == 0 {
		return entities
	}
	filtered := make([]Entity, 0, len(entities))
	for _, e := range entities {
		if r.supportedDomains[e.Domain()] {
			filtered = append(filtered, e)
		}
	}
	return filtered
}
