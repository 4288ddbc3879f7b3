// Package record stores the assembled topology and the exit events of a run
// in a SQLite database.
package record

import (
	"database/sql"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"

	"github.com/neuralprobe/gem5/api"
	"github.com/neuralprobe/gem5/hw"
)

// ErrExists is returned when the database file is already present.
var ErrExists = errors.New("database already exists")

const schema = `
CREATE TABLE run (
	id TEXT PRIMARY KEY,
	isa TEXT,
	mem_mode TEXT
);
CREATE TABLE component (
	run_id TEXT,
	path TEXT,
	kind TEXT,
	type TEXT,
	clock TEXT,
	params TEXT
);
CREATE TABLE binding (
	run_id TEXT,
	request TEXT,
	response TEXT
);
CREATE TABLE exit_event (
	run_id TEXT,
	tick INTEGER,
	cause TEXT
);`

// Recorder writes simulation results into a database.
type Recorder struct {
	*sql.DB
	path string
}

// Open creates a new database at path. An existing file is never
// overwritten.
func Open(path string) (*Recorder, error) {
	if !strings.HasSuffix(path, ".sqlite3") {
		path += ".sqlite3"
	}

	if _, err := os.Stat(path); err == nil {
		return nil, fmt.Errorf("%w: %s", ErrExists, path)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	return &Recorder{DB: db, path: path}, nil
}

// Path returns the database file name.
func (r *Recorder) Path() string {
	return r.path
}

// Topology stores every component and binding of topo.
func (r *Recorder) Topology(topo *hw.Topology) error {
	tx, err := r.Begin()
	if err != nil {
		return err
	}

	if err := writeTopology(tx, topo); err != nil {
		tx.Rollback()
		return err
	}

	return tx.Commit()
}

func writeTopology(tx *sql.Tx, topo *hw.Topology) error {
	id := topo.ID()

	_, err := tx.Exec(`INSERT INTO run VALUES (?, ?, ?)`,
		id, topo.ISA(), topo.MemMode())
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`INSERT INTO component VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range topo.Components() {
		clock := ""
		if d := c.Clock(); d != nil {
			clock = d.Clock()
		}

		_, err := stmt.Exec(id, c.Path(), c.Kind().String(), c.Type(), clock, c.ParamString(";"))
		if err != nil {
			return err
		}
	}

	bstmt, err := tx.Prepare(`INSERT INTO binding VALUES (?, ?, ?)`)
	if err != nil {
		return err
	}
	defer bstmt.Close()

	for _, b := range topo.Registry().Bindings() {
		if _, err := bstmt.Exec(id, b.Request.Path(), b.Response.Path()); err != nil {
			return err
		}
	}

	return nil
}

// Exit stores the final exit event of the run.
func (r *Recorder) Exit(runID string, ev api.ExitEvent) error {
	_, err := r.Exec(`INSERT INTO exit_event VALUES (?, ?, ?)`,
		runID, sqlTick(ev.Tick), ev.Cause)

	return err
}

// sqlTick clamps a tick to the largest integer SQLite can store.
func sqlTick(t uint64) int64 {
	if t > math.MaxInt64 {
		return math.MaxInt64
	}

	return int64(t)
}
