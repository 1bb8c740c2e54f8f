// Package topology holds the read-only entity/device/area registry the
// exposure engine resolves against.
//
// The host platform owns the registries; this service keeps an
// in-memory Snapshot fed by MQTT snapshot messages or the topology API,
// mirrored to SQLite so restarts don't start blind. Snapshots are
// immutable once built, so resolution can read them without locking.
package topology
