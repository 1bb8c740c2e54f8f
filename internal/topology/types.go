package topology

import "strings"

// Entity is a single addressable item from the host platform's registry,
// identified in domain.object form (e.g. "light.kitchen").
type Entity struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	DeviceID *string `json:"device_id,omitempty"`
	AreaID   *string `json:"area_id,omitempty"`
}

// Domain returns the entity's domain, the part before the first dot.
// Empty when the identifier has no dot.
func (e Entity) Domain() string {
	idx := strings.IndexByte(e.ID, '.')
	if idx < 0 {
		return ""
	}
	return e.ID[:idx]
}

// Device groups entities that belong to one physical unit.
type Device struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	AreaID *string `json:"area_id,omitempty"`
}

// Area is a physical location referenced by devices and entities.
type Area struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Snapshot is an immutable view of the topology used by one resolution
// pass. Build it with NewSnapshot so the lookup indexes are populated.
type Snapshot struct {
	Entities []Entity
	Devices  []Device
	Areas    []Area

	entityByID      map[string]*Entity
	deviceByID      map[string]*Device
	areaByID        map[string]*Area
	entitiesByOwner map[string][]*Entity
}

// NewSnapshot builds a Snapshot with lookup indexes over the given
// registries. The slices are not copied; callers must not mutate them
// after construction.
func NewSnapshot(entities []Entity, devices []Device, areas []Area) *Snapshot {
	s := &Snapshot{
		Entities: entities,
		Devices:  devices,
		Areas:    areas,

		entityByID:      make(map[string]*Entity, len(entities)),
		deviceByID:      make(map[string]*Device, len(devices)),
		areaByID:        make(map[string]*Area, len(areas)),
		entitiesByOwner: make(map[string][]*Entity),
	}

	for i := range entities {
		e := &entities[i]
		s.entityByID[e.ID] = e
		if e.DeviceID != nil {
			s.entitiesByOwner[*e.DeviceID] = append(s.entitiesByOwner[*e.DeviceID], e)
		}
	}
	for i := range devices {
		s.deviceByID[devices[i].ID] = &devices[i]
	}
	for i := range areas {
		s.areaByID[areas[i].ID] = &areas[i]
	}

	return s
}

// Entity returns the entity with the given ID, or nil.
func (s *Snapshot) Entity(id string) *Entity {
	return s.entityByID[id]
}

// Device returns the device with the given ID, or nil.
func (s *Snapshot) Device(id string) *Device {
	return s.deviceByID[id]
}

// Area returns the area with the given ID, or nil.
func (s *Snapshot) Area(id string) *Area {
	return s.areaByID[id]
}

// HasArea reports whether an area with the given ID exists.
func (s *Snapshot) HasArea(id string) bool {
	_, ok := s.areaByID[id]
	return ok
}

// EntitiesOwnedBy returns the entities belonging to a device.
func (s *Snapshot) EntitiesOwnedBy(deviceID string) []*Entity {
	return s.entitiesByOwner[deviceID]
}

// EntityArea resolves an entity's effective area: its direct area when
// set, otherwise the area of its owning device. Empty string when
// neither applies.
func (s *Snapshot) EntityArea(e *Entity) string {
	if e == nil {
		return ""
	}
	if e.AreaID != nil {
		return *e.AreaID
	}
	if e.DeviceID != nil {
		if d := s.deviceByID[*e.DeviceID]; d != nil && d.AreaID != nil {
			return *d.AreaID
		}
	}
	return ""
}
