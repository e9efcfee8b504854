package kpi

import (
	"database/sql"
	"time"

	core "github.com/opentransit/crewd/core/metrics/kpi"
	_ "modernc.org/sqlite"
)

// SQLiteStore persists KPI records in a SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database and ensures schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	schema := `CREATE TABLE IF NOT EXISTS roster_kpi (
        instance TEXT,
        day INTEGER,
        runs INTEGER,
        drivers INTEGER,
        driving INTEGER,
        working INTEGER,
        PRIMARY KEY(instance, day)
    );`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteStore{db: db}, nil
}

// Add inserts or updates the KPI record aggregated by day.
func (s *SQLiteStore) Add(r core.Record) error {
	d := core.Day(r.Date)
	_, err := s.db.Exec(`INSERT INTO roster_kpi (instance, day, runs, drivers, driving, working)
        VALUES (?, ?, ?, ?, ?, ?)
        ON CONFLICT(instance, day) DO UPDATE SET
            runs = runs + excluded.runs,
            drivers = drivers + excluded.drivers,
            driving = driving + excluded.driving,
            working = working + excluded.working`,
		r.Instance, d.Unix(), r.Runs, r.Drivers, r.DrivingMin, r.WorkingMin)
	return err
}

// Query returns records in the range [start,end].
func (s *SQLiteStore) Query(instance string, start, end time.Time) ([]core.Record, error) {
	start = core.Day(start)
	end = core.Day(end)
	rows, err := s.db.Query(`SELECT instance, day, runs, drivers, driving, working
        FROM roster_kpi WHERE instance = ? AND day >= ? AND day <= ? ORDER BY day`,
		instance, start.Unix(), end.Unix())
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var res []core.Record
	for rows.Next() {
		var name string
		var ts int64
		var runs, drivers, driving, working int
		if err := rows.Scan(&name, &ts, &runs, &drivers, &driving, &working); err != nil {
			return nil, err
		}
		res = append(res, core.Record{
			Instance:   name,
			Date:       time.Unix(ts, 0).UTC(),
			Runs:       runs,
			Drivers:    drivers,
			DrivingMin: driving,
			WorkingMin: working,
		})
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return res, nil
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }
