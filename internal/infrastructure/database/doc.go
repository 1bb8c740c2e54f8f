// Package database provides SQLite connection management and embedded
// schema migrations for Exposure Core.
//
// The store holds the device/entity topology mirror and the saved
// exposure configuration revisions. SQLite is opened with WAL mode and
// foreign keys enabled, and the pool is capped at a single connection
// to match SQLite's one-writer model.
//
// Migrations are embedded by the migrations package and applied at
// startup via Migrate.
package database
