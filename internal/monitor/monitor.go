// Package monitor is the surface the transports call: list reconciled status,
// add/update/remove catalog entries, force a refresh. It owns no state of its
// own beyond handles to the catalog store and the socket reader, and it
// returns plain data structures so any transport (HTTP, CLI, TUI, tests) can
// wrap it.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/noteports/noteports/internal/catalog"
	"github.com/noteports/noteports/internal/reconcile"
	"github.com/noteports/noteports/internal/validate"
	"github.com/noteports/noteports/pkg/model"
)

// ErrNotFound is returned by RemoveService for an unknown service.
var ErrNotFound = catalog.ErrNotFound

// Reader produces a fresh socket snapshot. Swappable so tests run without
// touching the operating system.
type Reader func() ([]model.SocketRecord, error)

// EnumerationError wraps a total failure of the OS socket query. Transports
// map it to a server error; the process keeps running and the next call may
// succeed.
type EnumerationError struct {
	Err error
}

func (e *EnumerationError) Error() string {
	return fmt.Sprintf("socket enumeration failed: %v", e.Err)
}

func (e *EnumerationError) Unwrap() error { return e.Err }

// Filter narrows a status listing. The zero value means no filtering.
type Filter struct {
	StartPort int
	EndPort   int
	Search    string // case-insensitive substring over port, service, process, pid, note
}

// normalize clamps the range into [1, 65535] and swaps inverted bounds, the
// same forgiving treatment the web form's raw query params always got.
func (f Filter) normalize() Filter {
	if f.StartPort < 1 {
		f.StartPort = 1
	}
	if f.EndPort < 1 || f.EndPort > 65535 {
		f.EndPort = 65535
	}
	if f.StartPort > f.EndPort {
		f.StartPort, f.EndPort = f.EndPort, f.StartPort
	}
	return f
}

// Monitor glues the catalog store, the socket reader, and the reconciler
// together behind the query operations.
type Monitor struct {
	store  *catalog.Store
	read   Reader
	logger *slog.Logger
}

func New(store *catalog.Store, read Reader, logger *slog.Logger) *Monitor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Monitor{store: store, read: read, logger: logger}
}

// Status takes a fresh socket snapshot, reconciles it against the current
// catalog, and returns the filtered view. It never serves a cached result.
func (m *Monitor) Status(ctx context.Context, f Filter) (model.StatusReport, error) {
	sockets, err := m.read()
	if err != nil {
		m.logger.Error("socket snapshot failed", "error", err)
		return model.StatusReport{}, &EnumerationError{Err: err}
	}
	if err := ctx.Err(); err != nil {
		return model.StatusReport{}, err
	}

	rows := reconcile.Reconcile(m.store.Snapshot(), sockets)

	f = f.normalize()
	search := strings.ToLower(strings.TrimSpace(f.Search))
	filtered := make([]model.ReconciledStatus, 0, len(rows))
	for _, row := range rows {
		if row.Port < f.StartPort || row.Port > f.EndPort {
			continue
		}
		if search != "" && !matches(row, search) {
			continue
		}
		filtered = append(filtered, row)
	}

	report := model.StatusReport{Ports: filtered}
	for _, row := range filtered {
		if row.State == model.StateCatalogOnly {
			continue
		}
		report.TotalUsed++
		if strings.HasPrefix(row.Protocol, "UDP") {
			report.UDPUsed++
		} else {
			report.TCPUsed++
		}
	}
	return report, nil
}

func matches(row model.ReconciledStatus, search string) bool {
	haystack := strings.ToLower(strings.Join([]string{
		strconv.Itoa(row.Port),
		row.Process,
		row.ServiceName,
		strconv.Itoa(row.PID),
		row.Note,
	}, " "))
	return strings.Contains(haystack, search)
}

// AddService validates raw transport input and upserts the entry. The
// returned error identifies the failing field via *catalog.ValidationError.
func (m *Monitor) AddService(rawName, rawPort, note string) error {
	port, err := validate.PortString(rawPort)
	if err != nil {
		return &catalog.ValidationError{Field: "port", Err: err}
	}
	return m.store.Upsert(rawName, port, note)
}

// RemoveService deletes a declared service. Unknown names return ErrNotFound;
// the catalog is untouched either way.
func (m *Monitor) RemoveService(name string) error {
	removed, err := m.store.Remove(name)
	if err != nil {
		return err
	}
	if !removed {
		return ErrNotFound
	}
	return nil
}

// ReplaceCatalog swaps the whole catalog, skipping invalid pairs.
func (m *Monitor) ReplaceCatalog(raw map[string]int) ([]model.SkippedEntry, error) {
	return m.store.Replace(raw)
}

// Catalog returns a stable snapshot of the declared services.
func (m *Monitor) Catalog() []model.CatalogEntry {
	return m.store.Snapshot()
}
