// Package store keeps port and lane reference data in a SQLite database so the
// server can start from a single file instead of the GeoJSON/JSON pair.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "modernc.org/sqlite"

	"sea-route-server/logger"
	"sea-route-server/preprocessing"
	"sea-route-server/routing"
)

// DB wraps a SQLite database connection.
type DB struct {
	sql  *sql.DB
	path string
}

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*DB, error) {
	sqlDB, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}
	d := &DB{sql: sqlDB, path: path}
	if err := d.migrate(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("migrate db: %w", err)
	}
	logger.Success("DB", fmt.Sprintf("Opened %s", path))
	return d, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.sql.Close()
}

func (d *DB) migrate() error {
	version := 0
	// Missing table on a fresh database leaves version at 0.
	d.sql.QueryRow("SELECT version FROM schema_version ORDER BY version DESC LIMIT 1").Scan(&version)

	if version < 1 {
		_, err := d.sql.Exec(`
			CREATE TABLE IF NOT EXISTS schema_version (version INTEGER PRIMARY KEY);

			CREATE TABLE IF NOT EXISTS ports (
				id   INTEGER PRIMARY KEY,
				name TEXT NOT NULL,
				lat  REAL NOT NULL,
				lon  REAL NOT NULL
			);

			CREATE TABLE IF NOT EXISTS routes (
				id        INTEGER PRIMARY KEY AUTOINCREMENT,
				from_id   INTEGER,
				to_id     INTEGER,
				distance  REAL,
				waypoints TEXT NOT NULL DEFAULT '[]'
			);
			CREATE INDEX IF NOT EXISTS idx_routes_from ON routes(from_id);
			CREATE INDEX IF NOT EXISTS idx_routes_to ON routes(to_id);

			INSERT OR IGNORE INTO schema_version (version) VALUES (1);
		`)
		if err != nil {
			return fmt.Errorf("migration v1: %w", err)
		}
		logger.Info("DB", "Applied migration v1")
	}

	if version < 2 {
		_, err := d.sql.Exec(`
			ALTER TABLE routes ADD COLUMN invalid TEXT NOT NULL DEFAULT '';
			INSERT OR IGNORE INTO schema_version (version) VALUES (2);
		`)
		if err != nil {
			return fmt.Errorf("migration v2: %w", err)
		}
		logger.Info("DB", "Applied migration v2")
	}

	return nil
}

type waypointRow struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// ReplaceDataset swaps the stored ports and routes for ds in one transaction.
func (d *DB) ReplaceDataset(ctx context.Context, ds *preprocessing.Dataset) error {
	tx, err := d.sql.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM routes"); err != nil {
		return fmt.Errorf("clear routes: %w", err)
	}
	if _, err := tx.ExecContext(ctx, "DELETE FROM ports"); err != nil {
		return fmt.Errorf("clear ports: %w", err)
	}

	portStmt, err := tx.PrepareContext(ctx, "INSERT INTO ports (id, name, lat, lon) VALUES (?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer portStmt.Close()
	for _, p := range ds.Ports {
		if _, err := portStmt.ExecContext(ctx, p.ID, p.Name, p.Location.Lat, p.Location.Lon); err != nil {
			return fmt.Errorf("insert port %d: %w", p.ID, err)
		}
	}

	routeStmt, err := tx.PrepareContext(ctx, "INSERT INTO routes (from_id, to_id, distance, waypoints, invalid) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer routeStmt.Close()
	for i, r := range ds.Routes {
		wps := make([]waypointRow, 0, len(r.Waypoints))
		for _, c := range r.Waypoints {
			wps = append(wps, waypointRow{Lat: c.Lat, Lon: c.Lon})
		}
		encoded, err := json.Marshal(wps)
		if err != nil {
			return fmt.Errorf("encode waypoints of route %d: %w", i, err)
		}
		if _, err := routeStmt.ExecContext(ctx, nullInt(r.From), nullInt(r.To), nullFloat(r.Distance), string(encoded), r.Invalid); err != nil {
			return fmt.Errorf("insert route %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	logger.Info("DB", fmt.Sprintf("Stored %d ports and %d routes", len(ds.Ports), len(ds.Routes)))
	return nil
}

// LoadDataset reads every port and route. Rows keep NULL columns as nil fields
// so the network builder can report them.
func (d *DB) LoadDataset(ctx context.Context) (*preprocessing.Dataset, error) {
	ds := &preprocessing.Dataset{}

	rows, err := d.sql.QueryContext(ctx, "SELECT id, name, lat, lon FROM ports ORDER BY id")
	if err != nil {
		return nil, d.loadErr(fmt.Errorf("query ports: %w", err))
	}
	for rows.Next() {
		var p routing.Port
		if err := rows.Scan(&p.ID, &p.Name, &p.Location.Lat, &p.Location.Lon); err != nil {
			rows.Close()
			return nil, d.loadErr(fmt.Errorf("scan port: %w", err))
		}
		ds.Ports = append(ds.Ports, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, d.loadErr(err)
	}

	rows, err = d.sql.QueryContext(ctx, "SELECT id, from_id, to_id, distance, waypoints, invalid FROM routes ORDER BY id")
	if err != nil {
		return nil, d.loadErr(fmt.Errorf("query routes: %w", err))
	}
	defer rows.Close()
	for rows.Next() {
		var (
			rowID    int64
			from, to sql.NullInt64
			dist     sql.NullFloat64
			raw      string
			invalid  string
		)
		if err := rows.Scan(&rowID, &from, &to, &dist, &raw, &invalid); err != nil {
			return nil, d.loadErr(fmt.Errorf("scan route: %w", err))
		}
		var wps []waypointRow
		if err := json.Unmarshal([]byte(raw), &wps); err != nil {
			return nil, d.loadErr(fmt.Errorf("route row %d: waypoints: %w", rowID, err))
		}
		rec := routing.RouteRecord{Waypoints: make([]routing.Coordinate, 0, len(wps)), Invalid: invalid}
		for _, w := range wps {
			rec.Waypoints = append(rec.Waypoints, routing.Coordinate{Lat: w.Lat, Lon: w.Lon})
		}
		if from.Valid {
			v := from.Int64
			rec.From = &v
		}
		if to.Valid {
			v := to.Int64
			rec.To = &v
		}
		if dist.Valid {
			v := dist.Float64
			rec.Distance = &v
		}
		ds.Routes = append(ds.Routes, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, d.loadErr(err)
	}

	if len(ds.Ports) == 0 {
		return nil, d.loadErr(fmt.Errorf("database has no ports"))
	}
	return ds, nil
}

// Describe names the source for logs and the admin API.
func (d *DB) Describe() string { return fmt.Sprintf("sqlite(%s)", d.path) }

func (d *DB) loadErr(err error) error {
	return &preprocessing.DataLoadError{Source: d.path, Err: err}
}

func nullInt(v *int64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

func nullFloat(v *float64) interface{} {
	if v == nil {
		return nil
	}
	return *v
}
