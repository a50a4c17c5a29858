package cache

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/roach88/gqlc/internal/canonical"
	"github.com/roach88/gqlc/internal/config"
	"github.com/roach88/gqlc/internal/diag"
	"github.com/roach88/gqlc/internal/ir"
	"github.com/roach88/gqlc/internal/syntax"
)

//go:embed schema.sql
var schemaSQL string

// Schema version tracking:
// 0 - Initial schema (pre-migration)
// 1 - Added index on entries.run_id
const currentSchemaVersion = 1

// Entry is one cached compile result. A rejected document has
// Diagnostics and no output. Annotated is Output with required metadata
// comments.
type Entry struct {
	Output      string           `msgpack:"output"`
	Annotated   string           `msgpack:"annotated,omitempty"`
	Diagnostics diag.Diagnostics `msgpack:"diagnostics,omitempty"`
}

// Failed reports whether the entry records a rejected document.
func (e Entry) Failed() bool {
	return len(e.Diagnostics) > 0
}

// Row is a stored entry together with its bookkeeping columns.
type Row struct {
	Key    string
	Source diag.SourceKey
	RunID  string
	Seq    int64
	Entry  Entry
}

// Cache is a SQLite-backed compile cache.
type Cache struct {
	db    *sql.DB
	runID string

	mu  sync.Mutex
	seq int64
}

// Open creates or opens a cache database at path.
//
// The database is configured with:
//   - WAL mode so a second CLI process can read while one writes
//   - NORMAL synchronous mode
//   - 5-second busy timeout for lock contention
func Open(path string) (*Cache, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open cache: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to connect to cache: %w", err)
	}

	// SQLite allows one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := applyPragmas(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply pragmas: %w", err)
	}

	if err := applySchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	var seq int64
	if err := db.QueryRow("SELECT COALESCE(MAX(seq), 0) FROM entries").Scan(&seq); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to read sequence: %w", err)
	}

	runID, err := uuid.NewV7()
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create run id: %w", err)
	}

	return &Cache{db: db, runID: runID.String(), seq: seq}, nil
}

// Close closes the database connection.
func (c *Cache) Close() error {
	if c.db == nil {
		return nil
	}
	return c.db.Close()
}

// RunID identifies the writes made through this handle.
func (c *Cache) RunID() string {
	return c.runID
}

// Key derives the cache key for compiling doc against a schema with the
// given fingerprint under flags, through the named pipeline stages in
// order.
func Key(schemaFingerprint string, doc *syntax.Document, flags config.FeatureFlags, stages []string) (string, error) {
	return canonical.Hash(canonical.DomainCacheKey, map[string]any{
		"schema":           schemaFingerprint,
		"stages":           stages,
		"source":           string(doc.Key),
		"text":             doc.Text,
		"flags":            flags.Canonical(),
		"compiler_version": ir.CompilerVersion,
		"ir_version":       ir.IRVersion,
	})
}

// Get returns the entry stored under key. The boolean is false on a miss.
func (c *Cache) Get(ctx context.Context, key string) (Entry, bool, error) {
	var payload []byte
	err := c.db.QueryRowContext(ctx, `SELECT payload FROM entries WHERE key = ?`, key).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("get %s: %w", key, err)
	}

	var e Entry
	if err := msgpack.Unmarshal(payload, &e); err != nil {
		return Entry{}, false, fmt.Errorf("decode %s: %w", key, err)
	}
	return e, true, nil
}

// Put stores e under key, replacing any previous row. Every write takes the
// next sequence number.
func (c *Cache) Put(ctx context.Context, key string, source diag.SourceKey, e Entry) error {
	payload, err := msgpack.Marshal(e)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	next := c.seq + 1
	_, err = c.db.ExecContext(ctx, `
		INSERT INTO entries (key, source, run_id, seq, compiler_version, ir_version, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET
			source = excluded.source,
			run_id = excluded.run_id,
			seq = excluded.seq,
			compiler_version = excluded.compiler_version,
			ir_version = excluded.ir_version,
			payload = excluded.payload
	`, key, string(source), c.runID, next, ir.CompilerVersion, ir.IRVersion, payload)
	if err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}
	c.seq = next
	return nil
}

// Rows lists every stored entry ordered by seq ASC, key ASC.
// Returns an empty slice (not nil) when the cache is empty.
func (c *Cache) Rows(ctx context.Context) ([]Row, error) {
	rows, err := c.db.QueryContext(ctx, `
		SELECT key, source, run_id, seq, payload
		FROM entries
		ORDER BY seq ASC, key COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query entries: %w", err)
	}
	defer rows.Close()

	out := []Row{}
	for rows.Next() {
		var (
			r       Row
			source  string
			payload []byte
		)
		if err := rows.Scan(&r.Key, &source, &r.RunID, &r.Seq, &payload); err != nil {
			return nil, fmt.Errorf("scan entry: %w", err)
		}
		if err := msgpack.Unmarshal(payload, &r.Entry); err != nil {
			return nil, fmt.Errorf("decode %s: %w", r.Key, err)
		}
		r.Source = diag.SourceKey(source)
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate entries: %w", err)
	}
	return out, nil
}

// Prune deletes rows written by a different compiler or IR version and
// returns how many were removed.
func (c *Cache) Prune(ctx context.Context) (int64, error) {
	res, err := c.db.ExecContext(ctx, `
		DELETE FROM entries WHERE compiler_version != ? OR ir_version != ?
	`, ir.CompilerVersion, ir.IRVersion)
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	return res.RowsAffected()
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA synchronous = NORMAL",
		"PRAGMA busy_timeout = 5000",
	}

	for _, pragma := range pragmas {
		if _, err := db.Exec(pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// applySchema creates tables if they don't exist and runs migrations.
func applySchema(db *sql.DB) error {
	if _, err := db.Exec(schemaSQL); err != nil {
		return fmt.Errorf("failed to execute schema: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

// runMigrations applies incremental schema migrations based on user_version.
func runMigrations(db *sql.DB) error {
	var version int
	if err := db.QueryRow("PRAGMA user_version").Scan(&version); err != nil {
		return fmt.Errorf("get user_version: %w", err)
	}

	if version < 1 {
		if _, err := db.Exec("CREATE INDEX IF NOT EXISTS idx_entries_run ON entries(run_id)"); err != nil {
			return fmt.Errorf("migrate to v1: %w", err)
		}
	}

	if _, err := db.Exec(fmt.Sprintf("PRAGMA user_version = %d", currentSchemaVersion)); err != nil {
		return fmt.Errorf("set user_version: %w", err)
	}

	return nil
}
