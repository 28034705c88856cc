package database

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"sync"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

type Dialect string

const (
	DialectSQLite Dialect = "sqlite"
	DialectMySQL  Dialect = "mysql"
)

// SQLLog keeps processed ids in the processed_items table.
// The full id set is loaded at open; the table is the durable copy.
type SQLLog struct {
	db      *sql.DB
	dialect Dialect
	mu      sync.RWMutex
	ids     map[string]struct{}
}

var _ ProcessedLog = (*SQLLog)(nil)

// OpenSQLLog connects, applies migrations and loads all recorded ids.
func OpenSQLLog(ctx context.Context, dialect Dialect, dsn string) (*SQLLog, error) {
	db, err := sql.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", dialect, err)
	}
	if dialect == DialectSQLite {
		// Single writer; avoids SQLITE_BUSY between pooled connections.
		db.SetMaxOpenConns(1)
	}

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping %s database: %w", dialect, err)
	}

	version, dirty, err := RunMigrations(dialect, dsn)
	if err != nil {
		db.Close()
		return nil, err
	}
	slog.Debug("Database migrations applied", "dialect", dialect, "version", version, "dirty", dirty)

	l := &SQLLog{db: db, dialect: dialect, ids: make(map[string]struct{})}
	if err := l.load(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return l, nil
}

func (l *SQLLog) load(ctx context.Context) error {
	rows, err := l.db.QueryContext(ctx, `SELECT item_id FROM processed_items`)
	if err != nil {
		return fmt.Errorf("failed to load processed items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return fmt.Errorf("failed to scan processed item: %w", err)
		}
		l.ids[id] = struct{}{}
	}
	return rows.Err()
}

func (l *SQLLog) Contains(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.ids[id]
	return ok
}

// Record inserts id unless it is already present.
func (l *SQLLog) Record(ctx context.Context, id, channel string) error {
	if err := validateID(id); err != nil {
		return err
	}

	query := `INSERT OR IGNORE INTO processed_items (item_id, channel, recorded_at) VALUES (?, ?, ?)`
	if l.dialect == DialectMySQL {
		query = `INSERT IGNORE INTO processed_items (item_id, channel, recorded_at) VALUES (?, ?, ?)`
	}

	if _, err := l.db.ExecContext(ctx, query, id, channel, time.Now().UTC().Unix()); err != nil {
		return fmt.Errorf("failed to record processed item: %w", err)
	}

	l.mu.Lock()
	l.ids[id] = struct{}{}
	l.mu.Unlock()
	return nil
}

func (l *SQLLog) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.ids)
}

// Recorded returns up to limit entries, newest first.
func (l *SQLLog) Recorded(ctx context.Context, limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = l.Count()
	}

	rows, err := l.db.QueryContext(ctx, `
		SELECT item_id, channel, recorded_at
		FROM processed_items
		ORDER BY recorded_at DESC, item_id
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query processed items: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e        Entry
			recorded int64
		)
		if err := rows.Scan(&e.ItemID, &e.Channel, &recorded); err != nil {
			return nil, fmt.Errorf("failed to scan processed item: %w", err)
		}
		t := time.Unix(recorded, 0).UTC()
		e.RecordedAt = &t
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (l *SQLLog) Close() error {
	return l.db.Close()
}
