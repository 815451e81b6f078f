// Package record stores the accesses and evictions of a simulation in a
// SQLite database.
package record

import (
	"database/sql"
	"fmt"
	"os"
	"sync"

	// Need to use SQLite connections.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/xid"
	"github.com/tebeka/atexit"

	"github.com/sarchlab/cachesim/cache"
)

const defaultBatchSize = 100000

const schema = `
CREATE TABLE IF NOT EXISTS accesses (
	seq       INTEGER NOT NULL,
	kind      TEXT    NOT NULL,
	tag       INTEGER NOT NULL,
	set_index INTEGER NOT NULL,
	hit       INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS evictions (
	seq       INTEGER NOT NULL,
	set_index INTEGER NOT NULL,
	way       INTEGER NOT NULL,
	old_tag   INTEGER NOT NULL,
	new_tag   INTEGER NOT NULL,
	counter   INTEGER NOT NULL
);
CREATE TABLE IF NOT EXISTS runs (
	id            TEXT PRIMARY KEY,
	trace         TEXT    NOT NULL,
	size          INTEGER NOT NULL,
	block_size    INTEGER NOT NULL,
	associativity INTEGER NOT NULL,
	replacement   TEXT    NOT NULL,
	write_alloc   TEXT    NOT NULL,
	accesses      INTEGER NOT NULL,
	misses        INTEGER NOT NULL,
	evictions     INTEGER NOT NULL
);`

type accessRow struct {
	seq   uint64
	kind  string
	tag   uint64
	index int
	hit   bool
}

type evictionRow struct {
	seq     uint64
	index   int
	way     int
	oldTag  uint64
	newTag  uint64
	counter uint64
}

// RunSummary describes one finished simulation run.
type RunSummary struct {
	Trace     string
	Config    cache.Config
	Accesses  uint64
	Misses    uint64
	Evictions uint64
}

// Recorder is a cache hook that writes every access and eviction it
// observes into SQLite. Rows are buffered and written in batches.
type Recorder struct {
	mu sync.Mutex

	db        *sql.DB
	path      string
	batchSize int

	seq       uint64
	accesses  []accessRow
	evictions []evictionRow

	err    error
	closed bool
}

// New creates a recorder writing into <name>.sqlite3. An empty name
// generates a unique one. It is an error for the file to exist already.
func New(name string) (*Recorder, error) {
	if name == "" {
		name = "cachesim_" + xid.New().String()
	}

	filename := name + ".sqlite3"

	if _, err := os.Stat(filename); err == nil {
		return nil, fmt.Errorf("file %s already exists", filename)
	}

	db, err := sql.Open("sqlite3", filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", filename, err)
	}

	r, err := NewWithDB(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	r.path = filename

	return r, nil
}

// NewWithDB creates a recorder on an open database.
func NewWithDB(db *sql.DB) (*Recorder, error) {
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to create tables: %w", err)
	}

	r := &Recorder{
		db:        db,
		batchSize: defaultBatchSize,
	}

	atexit.Register(func() { _ = r.Flush() })

	return r, nil
}

// SetBatchSize sets the number of buffered rows that triggers a flush.
func (r *Recorder) SetBatchSize(n int) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.batchSize = max(n, 1)
}

// Path returns the database file, or "" when the database was supplied.
func (r *Recorder) Path() string {
	return r.path
}

// Func records the access or eviction carried by the hook context.
func (r *Recorder) Func(ctx cache.HookCtx) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}

	switch item := ctx.Item.(type) {
	case cache.AccessInfo:
		r.seq++
		r.accesses = append(r.accesses, accessRow{
			seq:   r.seq,
			kind:  item.Kind.String(),
			tag:   item.Tag,
			index: item.Index,
			hit:   item.Result == cache.Hit,
		})
	case cache.EvictionInfo:
		// The access hook of the evicting access fires afterwards.
		r.evictions = append(r.evictions, evictionRow{
			seq:     r.seq + 1,
			index:   item.Index,
			way:     item.Way,
			oldTag:  item.OldTag,
			newTag:  item.NewTag,
			counter: item.Counter,
		})
	default:
		return
	}

	if len(r.accesses)+len(r.evictions) >= r.batchSize {
		r.flushLocked()
	}
}

// RecordRun stores a run summary and returns its id.
func (r *Recorder) RecordRun(run RunSummary) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := xid.New().String()

	_, err := r.db.Exec(
		`INSERT INTO runs VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id,
		run.Trace,
		int64(run.Config.Size),
		int64(run.Config.BlockSize),
		run.Config.Associativity,
		run.Config.Replacement.String(),
		run.Config.WriteAlloc.String(),
		int64(run.Accesses),
		int64(run.Misses),
		int64(run.Evictions),
	)
	if err != nil {
		return "", fmt.Errorf("failed to record run: %w", err)
	}

	return id, nil
}

// Flush writes all buffered rows. It returns the first error the recorder
// has run into.
func (r *Recorder) Flush() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.closed {
		r.flushLocked()
	}

	return r.err
}

// Close flushes and closes the database.
func (r *Recorder) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return r.err
	}

	r.flushLocked()
	r.closed = true

	if err := r.db.Close(); err != nil && r.err == nil {
		r.err = err
	}

	return r.err
}

func (r *Recorder) flushLocked() {
	if len(r.accesses) == 0 && len(r.evictions) == 0 {
		return
	}

	if err := r.write(); err != nil && r.err == nil {
		r.err = err
	}

	r.accesses = r.accesses[:0]
	r.evictions = r.evictions[:0]
}

func (r *Recorder) write() error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	if err := insertAccesses(tx, r.accesses); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := insertEvictions(tx, r.evictions); err != nil {
		_ = tx.Rollback()
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}

	return nil
}

func insertAccesses(tx *sql.Tx, rows []accessRow) error {
	if len(rows) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(`INSERT INTO accesses VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare access insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		_, err := stmt.Exec(int64(row.seq), row.kind, int64(row.tag), row.index, row.hit)
		if err != nil {
			return fmt.Errorf("failed to insert access: %w", err)
		}
	}

	return nil
}

func insertEvictions(tx *sql.Tx, rows []evictionRow) error {
	if len(rows) == 0 {
		return nil
	}

	stmt, err := tx.Prepare(`INSERT INTO evictions VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare eviction insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, row := range rows {
		_, err := stmt.Exec(int64(row.seq), row.index, row.way,
			int64(row.oldTag), int64(row.newTag), int64(row.counter))
		if err != nil {
			return fmt.Errorf("failed to insert eviction: %w", err)
		}
	}

	return nil
}
