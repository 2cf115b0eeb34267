package rules

import (
	"log/slog"
	"sync"
	"sync/atomic"
)

// Store owns the lazily loaded rule table snapshot for the process lifetime.
//
// The first Table call performs the load; concurrent first callers coalesce
// onto that one in-flight load, and every later caller sees the cached
// result. A failed load stays failed, so requests surface the failure instead
// of quietly running against an empty table.
type Store struct {
	path string
	log  *slog.Logger

	once  sync.Once
	table *Table
	err   error

	ready atomic.Bool
	count atomic.Int64
}

// NewStore builds a store for the rule source at path. Nothing is read until
// the first Table call.
func NewStore(path string, log *slog.Logger) *Store {
	if log == nil {
		log = slog.Default()
	}

	return &Store{path: path, log: log.With("component", "rules.store")}
}

// Table returns the loaded rule table, loading it on first use.
func (s *Store) Table() (*Table, error) {
	s.once.Do(func() {
		s.table, s.err = Load(s.path, s.log)
		if s.err != nil {
			s.log.Error("Failed to load rule table", "path", s.path, "error", s.err)
			return
		}

		s.ready.Store(true)
		s.count.Store(int64(s.table.Len()))
		s.log.Info("Rule table loaded", "path", s.path, "rules", s.table.Len())
	})

	return s.table, s.err
}

// Path returns the configured rule source location.
func (s *Store) Path() string {
	return s.path
}

// Status reports whether a load has completed successfully and how many rules
// it produced. It never triggers a load itself, so health probes stay cheap.
func (s *Store) Status() (loaded bool, count int) {
	return s.ready.Load(), int(s.count.Load())
}
