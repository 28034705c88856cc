package database

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
)

// FileLog keeps processed ids in a newline-delimited text file.
type FileLog struct {
	mu           sync.RWMutex
	file         *os.File
	ids          map[string]struct{}
	order        []string
	needsNewline bool // hand-edited file without a trailing newline
}

var _ ProcessedLog = (*FileLog)(nil)

// OpenFileLog opens the log at path, creating it when absent, and loads every id into memory.
func OpenFileLog(path string) (*FileLog, error) {
	file, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open processed log: %w", err)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read processed log: %w", err)
	}

	l := &FileLog{
		file:         file,
		ids:          make(map[string]struct{}),
		needsNewline: len(data) > 0 && data[len(data)-1] != '\n',
	}
	for _, line := range strings.Split(string(data), "\n") {
		id := strings.TrimSpace(line)
		if id == "" {
			continue
		}
		if _, ok := l.ids[id]; ok {
			continue
		}
		l.ids[id] = struct{}{}
		l.order = append(l.order, id)
	}

	return l, nil
}

func (l *FileLog) Contains(id string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.ids[id]
	return ok
}

// Record appends id and syncs the file. Known ids are a no-op.
func (l *FileLog) Record(_ context.Context, id, _ string) error {
	if err := validateID(id); err != nil {
		return err
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.ids[id]; ok {
		return nil
	}

	line := id + "\n"
	if l.needsNewline {
		line = "\n" + line
	}
	if _, err := l.file.WriteString(line); err != nil {
		return fmt.Errorf("failed to append to processed log: %w", err)
	}
	if err := l.file.Sync(); err != nil {
		return fmt.Errorf("failed to sync processed log: %w", err)
	}

	l.needsNewline = false
	l.ids[id] = struct{}{}
	l.order = append(l.order, id)
	return nil
}

func (l *FileLog) Count() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.ids)
}

// Recorded returns up to limit ids, newest first.
func (l *FileLog) Recorded(_ context.Context, limit int) ([]Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	if limit <= 0 || limit > len(l.order) {
		limit = len(l.order)
	}

	entries := make([]Entry, 0, limit)
	for i := len(l.order) - 1; i >= 0 && len(entries) < limit; i-- {
		entries = append(entries, Entry{ItemID: l.order[i]})
	}
	return entries, nil
}

func (l *FileLog) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.file.Close()
}

func validateID(id string) error {
	if id == "" || strings.ContainsAny(id, "\r\n") || strings.TrimSpace(id) != id {
		return fmt.Errorf("invalid item id %q", id)
	}
	return nil
}
