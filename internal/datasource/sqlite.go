package datasource

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"

	"github.com/vanderheijden86/stageboard/pkg/snapshot"
)

// StagesTable is the table a SQLite source must contain. Each row is one
// snapshot row; NULL label cells are null cells.
const StagesTable = "stages"

const stagesSchema = `
CREATE TABLE IF NOT EXISTS stages (
	recruit TEXT,
	develop TEXT,
	launch  TEXT,
	grow    TEXT,
	metric  REAL
)`

// SQLiteReader provides read access to a stages database
type SQLiteReader struct {
	db   *sql.DB
	path string
}

// NewSQLiteReader opens a SQLite database for reading
func NewSQLiteReader(source DataSource) (*SQLiteReader, error) {
	if source.Type != SourceTypeSQLite {
		return nil, fmt.Errorf("source is not SQLite: %s", source.Type)
	}

	dsn := fmt.Sprintf("file:%s?mode=ro&_pragma=busy_timeout(5000)", source.Path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("cannot open database: %w", err)
	}

	return &SQLiteReader{
		db:   db,
		path: source.Path,
	}, nil
}

// Close closes the database connection
func (r *SQLiteReader) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

// LoadSnapshot reads every row of the stages table in insertion order.
func (r *SQLiteReader) LoadSnapshot() (*snapshot.Snapshot, error) {
	rows, err := r.db.Query(`SELECT recruit, develop, launch, grow, metric FROM stages ORDER BY rowid`)
	if err != nil {
		return nil, fmt.Errorf("query stages: %w", err)
	}
	defer rows.Close()

	var out []snapshot.Row
	for rows.Next() {
		var labels [4]sql.NullString
		var metric sql.NullFloat64
		if err := rows.Scan(&labels[0], &labels[1], &labels[2], &labels[3], &metric); err != nil {
			return nil, fmt.Errorf("scan stages row: %w", err)
		}
		var row snapshot.Row
		for i, l := range labels {
			if l.Valid {
				row.Labels[i] = snapshot.Str(l.String)
			}
		}
		if metric.Valid {
			row.Metric = snapshot.Num(metric.Float64)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating stages: %w", err)
	}

	return snapshot.FromRows(out), nil
}

// CountRows returns the number of rows in the stages table
func (r *SQLiteReader) CountRows() (int, error) {
	var count int
	if err := r.db.QueryRow("SELECT COUNT(*) FROM stages").Scan(&count); err != nil {
		return 0, err
	}
	return count, nil
}

// WriteSQLite writes rows into a fresh stages table at path, replacing any
// existing rows.
func WriteSQLite(path string, rows []snapshot.Row) error {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("cannot open database: %w", err)
	}
	defer db.Close()

	tx, err := db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.Exec(stagesSchema); err != nil {
		return fmt.Errorf("create stages table: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM stages"); err != nil {
		return fmt.Errorf("clear stages table: %w", err)
	}

	stmt, err := tx.Prepare("INSERT INTO stages (recruit, develop, launch, grow, metric) VALUES (?, ?, ?, ?, ?)")
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, row := range rows {
		args := make([]any, 0, 5)
		for _, l := range row.Labels {
			if l == nil {
				args = append(args, nil)
			} else {
				args = append(args, *l)
			}
		}
		if row.Metric == nil {
			args = append(args, nil)
		} else {
			args = append(args, *row.Metric)
		}
		if _, err := stmt.Exec(args...); err != nil {
			return fmt.Errorf("insert stages row: %w", err)
		}
	}

	return tx.Commit()
}
