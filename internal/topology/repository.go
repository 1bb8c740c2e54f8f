package topology

import (
	"context"
	"database/sql"
	"fmt"
)

// Repository defines persistence for the topology mirror. The mirror
// lets the service restart with a usable topology before the host
// republishes a snapshot.
type Repository interface {
	ReplaceAll(ctx context.Context, entities []Entity, devices []Device, areas []Area) error
	Load(ctx context.Context) (entities []Entity, devices []Device, areas []Area, err error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed topology repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// ReplaceAll swaps the stored topology for the given snapshot in a
// single transaction. Tables are cleared and repopulated; a failure
// leaves the previous mirror intact.
func (r *SQLiteRepository) ReplaceAll(ctx context.Context, entities []Entity, devices []Device, areas []Area) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning topology transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck // Rollback is no-op after commit

	// Delete children first to satisfy foreign keys.
	for _, table := range []string{"entities", "devices", "areas"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("clearing %s: %w", table, err)
		}
	}

	for _, a := range areas {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO areas (id, name) VALUES (?, ?)",
			a.ID, a.Name,
		); err != nil {
			return fmt.Errorf("inserting area %s: %w", a.ID, err)
		}
	}
	for _, d := range devices {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO devices (id, name, area_id) VALUES (?, ?, ?)",
			d.ID, d.Name, nullStr(d.AreaID),
		); err != nil {
			return fmt.Errorf("inserting device %s: %w", d.ID, err)
		}
	}
	for _, e := range entities {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO entities (id, name, device_id, area_id) VALUES (?, ?, ?, ?)",
			e.ID, e.Name, nullStr(e.DeviceID), nullStr(e.AreaID),
		); err != nil {
			return fmt.Errorf("inserting entity %s: %w", e.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing topology: %w", err)
	}
	return nil
}

// Load returns the stored topology mirror.
func (r *SQLiteRepository) Load(ctx context.Context) ([]Entity, []Device, []Area, error) {
	areas, err := r.loadAreas(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	devices, err := r.loadDevices(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	entities, err := r.loadEntities(ctx)
	if err != nil {
		return nil, nil, nil, err
	}
	return entities, devices, areas, nil
}

func (r *SQLiteRepository) loadAreas(ctx context.Context) ([]Area, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name FROM areas ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying areas: %w", err)
	}
	defer rows.Close()

	var areas []Area
	for rows.Next() {
		var a Area
		if err := rows.Scan(&a.ID, &a.Name); err != nil {
			return nil, fmt.Errorf("scanning area row: %w", err)
		}
		areas = append(areas, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating area rows: %w", err)
	}
	return areas, nil
}

func (r *SQLiteRepository) loadDevices(ctx context.Context) ([]Device, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, area_id FROM devices ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying devices: %w", err)
	}
	defer rows.Close()

	var devices []Device
	for rows.Next() {
		var d Device
		var areaID sql.NullString
		if err := rows.Scan(&d.ID, &d.Name, &areaID); err != nil {
			return nil, fmt.Errorf("scanning device row: %w", err)
		}
		d.AreaID = strPtr(areaID)
		devices = append(devices, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device rows: %w", err)
	}
	return devices, nil
}

func (r *SQLiteRepository) loadEntities(ctx context.Context) ([]Entity, error) {
	rows, err := r.db.QueryContext(ctx, "SELECT id, name, device_id, area_id FROM entities ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("querying entities: %w", err)
	}
	defer rows.Close()

	var entities []Entity
	for rows.Next() {
		var e Entity
		var deviceID, areaID sql.NullString
		if err := rows.Scan(&e.ID, &e.Name, &deviceID, &areaID); err != nil {
			return nil, fmt.Errorf("scanning entity row: %w", err)
		}
		e.DeviceID = strPtr(deviceID)
		e.AreaID = strPtr(areaID)
		entities = append(entities, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating entity rows: %w", err)
	}
	return entities, nil
}

// nullStr converts a *string to sql.NullString for nullable columns.
func nullStr(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// strPtr converts a sql.NullString back to *string.
func strPtr(s sql.NullString) *string {
	if !s.Valid {
		return nil
	}
	v := s.String
	return &v
}
