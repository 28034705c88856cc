package database

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

const BackendFile = "file"

// Open returns the processed log for the configured backend.
// path is used by the file backend, dsn by the SQL backends.
// An empty sqlite dsn becomes path with a .db extension.
func Open(ctx context.Context, backend, path, dsn string) (ProcessedLog, error) {
	switch backend {
	case BackendFile, "":
		return OpenFileLog(path)
	case string(DialectSQLite):
		if dsn == "" {
			dsn = strings.TrimSuffix(path, filepath.Ext(path)) + ".db"
		}
		return OpenSQLLog(ctx, DialectSQLite, dsn)
	case string(DialectMySQL):
		return OpenSQLLog(ctx, DialectMySQL, dsn)
	default:
		return nil, fmt.Errorf("unknown state backend: %s", backend)
	}
}
