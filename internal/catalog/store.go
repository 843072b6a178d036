// Package catalog owns the operator-declared mapping of service names to
// expected ports. The store is the only mutable shared state in the program:
// every write goes through validation, every persisted state is one that
// validation accepted, and readers always get a stable copy.
package catalog

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"sync"

	"github.com/noteports/noteports/internal/validate"
	"github.com/noteports/noteports/pkg/model"
)

// ErrNotFound is returned when a remove or lookup names an unknown service.
var ErrNotFound = errors.New("service not found")

// ValidationError reports which field of a write was rejected, so the
// transport can map it to a field-specific client error.
type ValidationError struct {
	Field string // "service_name" or "port"
	Err   error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %v", e.Field, e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Defaults seeds a fresh catalog when no persisted file exists yet.
var Defaults = map[string]int{
	"Remote Login":        22,
	"HTTP":                80,
	"HTTPS":               443,
	"MySQL Database":      3306,
	"PostgreSQL Database": 5432,
	"Redis Cache":         6379,
	"MongoDB Database":    27017,
	"Elasticsearch":       9200,
	"NotePorts":           7577,
}

// Store holds the catalog in memory and mirrors every accepted write to disk.
type Store struct {
	mu      sync.RWMutex
	path    string
	entries map[string]model.CatalogEntry
	logger  *slog.Logger
}

// Open loads the catalog at path, creating it with Defaults when the file
// does not exist yet. Individual malformed entries are skipped and returned;
// only an unreadable or undecodable file is an error.
func Open(path string, logger *slog.Logger) (*Store, []model.SkippedEntry, error) {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{path: path, logger: logger}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		s.entries = make(map[string]model.CatalogEntry, len(Defaults))
		for name, port := range Defaults {
			s.entries[name] = model.CatalogEntry{Name: name, Port: port}
		}
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create catalog dir: %w", err)
		}
		if err := s.persistLocked(); err != nil {
			return nil, nil, err
		}
		logger.Info("catalog created with defaults", "path", path, "services", len(s.entries))
		return s, nil, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read catalog: %w", err)
	}

	entries, skipped, err := decode(data)
	if err != nil {
		return nil, nil, err
	}
	s.entries = entries
	for _, sk := range skipped {
		logger.Warn("catalog entry skipped", "reason", sk.Reason)
	}
	return s, skipped, nil
}

// decode parses the persisted catalog. The on-disk shape is a flat JSON
// object; a value may be a port number, a numeric string, or an object with
// "port" and an optional "note" (older files mixed all three). Entries that
// fail validation are dropped, never fatal.
func decode(data []byte) (map[string]model.CatalogEntry, []model.SkippedEntry, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, nil, fmt.Errorf("decode catalog: %w", err)
	}

	entries := make(map[string]model.CatalogEntry, len(raw))
	var skipped []model.SkippedEntry
	for name, val := range raw {
		if err := validate.ServiceName(name); err != nil {
			skipped = append(skipped, model.SkippedEntry{Name: name, Reason: model.SkipInvalidName})
			continue
		}
		port, note, ok := DecodeValue(val)
		if !ok {
			skipped = append(skipped, model.SkippedEntry{Name: name, Reason: model.SkipInvalidValue})
			continue
		}
		if err := validate.Port(port); err != nil {
			skipped = append(skipped, model.SkippedEntry{Name: name, Reason: model.SkipInvalidPort})
			continue
		}
		entries[name] = model.CatalogEntry{Name: name, Port: port, Note: note}
	}
	return entries, skipped, nil
}

// DecodeValue parses one persisted catalog value: a port number, a numeric
// string, or an object with "port" and an optional "note" (older files mixed
// all three shapes). ok is false only when the value is none of these; range
// checking is the caller's job, so an out-of-range port skips as invalid-port
// regardless of which shape carried it.
func DecodeValue(val json.RawMessage) (port int, note string, ok bool) {
	var n int
	if err := json.Unmarshal(val, &n); err == nil {
		return n, "", true
	}
	var s string
	if err := json.Unmarshal(val, &s); err == nil {
		p, err := strconv.Atoi(s)
		if err != nil {
			return 0, "", false
		}
		return p, "", true
	}
	var obj struct {
		Port *int   `json:"port"`
		Note string `json:"note"`
	}
	if err := json.Unmarshal(val, &obj); err == nil && obj.Port != nil {
		return *obj.Port, obj.Note, true
	}
	return 0, "", false
}

// Upsert validates both fields and then inserts or replaces the entry keyed
// by name. A port can belong to only one declared service, so any other
// service previously declared on the same port is evicted. The change is
// persisted before Upsert returns; a rejected write mutates nothing.
func (s *Store) Upsert(name string, port int, note string) error {
	if err := validate.ServiceName(name); err != nil {
		return &ValidationError{Field: "service_name", Err: err}
	}
	if err := validate.Port(port); err != nil {
		return &ValidationError{Field: "port", Err: err}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := make(map[string]model.CatalogEntry)
	for other, e := range s.entries {
		if other != name && e.Port == port {
			delete(s.entries, other)
			evicted[other] = e
		}
	}
	prev, existed := s.entries[name]
	s.entries[name] = model.CatalogEntry{Name: name, Port: port, Note: note}

	if err := s.persistLocked(); err != nil {
		// Roll back the upsert and any evictions so memory never drifts
		// from what the file still holds.
		if existed {
			s.entries[name] = prev
		} else {
			delete(s.entries, name)
		}
		for other, e := range evicted {
			s.entries[other] = e
		}
		return err
	}
	for other := range evicted {
		s.logger.Info("service evicted, port redeclared", "service", other, "port", port)
	}
	return nil
}

// Remove deletes the named entry. Removing an absent service reports false
// and leaves the catalog untouched.
func (s *Store) Remove(name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev, ok := s.entries[name]
	if !ok {
		return false, nil
	}
	delete(s.entries, name)
	if err := s.persistLocked(); err != nil {
		s.entries[name] = prev
		return false, err
	}
	return true, nil
}

// Replace swaps the whole catalog for the given raw name->port map, the
// batch-update path of the config API. Pairs that fail validation are
// skipped and reported rather than failing the batch.
func (s *Store) Replace(raw map[string]int) ([]model.SkippedEntry, error) {
	next := make(map[string]model.CatalogEntry, len(raw))
	var skipped []model.SkippedEntry
	for name, port := range raw {
		if err := validate.ServiceName(name); err != nil {
			skipped = append(skipped, model.SkippedEntry{Name: name, Reason: model.SkipInvalidName})
			continue
		}
		if err := validate.Port(port); err != nil {
			skipped = append(skipped, model.SkippedEntry{Name: name, Reason: model.SkipInvalidPort})
			continue
		}
		next[name] = model.CatalogEntry{Name: name, Port: port}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.entries
	s.entries = next
	if err := s.persistLocked(); err != nil {
		s.entries = prev
		return skipped, err
	}
	return skipped, nil
}

// Snapshot returns a stable copy of the current entries, sorted by name.
// Reconciliation works on this copy, so a concurrent write can never produce
// a torn read.
func (s *Store) Snapshot() []model.CatalogEntry {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]model.CatalogEntry, 0, len(s.entries))
	for _, e := range s.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len reports the number of declared services.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// persistLocked writes the catalog to disk via a temp file and rename, so a
// crash mid-write cannot leave a truncated file behind. Callers hold s.mu.
func (s *Store) persistLocked() error {
	raw := make(map[string]any, len(s.entries))
	for name, e := range s.entries {
		if e.Note == "" {
			raw[name] = e.Port
		} else {
			raw[name] = map[string]any{"port": e.Port, "note": e.Note}
		}
	}
	data, err := json.MarshalIndent(raw, "", "  ")
	if err != nil {
		return fmt.Errorf("encode catalog: %w", err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(s.path), ".config-*.json")
	if err != nil {
		return fmt.Errorf("persist catalog: %w", err)
	}
	if _, err := tmp.Write(append(data, '\n')); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("persist catalog: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("persist catalog: %w", err)
	}
	if err := os.Rename(tmp.Name(), s.path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("persist catalog: %w", err)
	}
	return nil
}
