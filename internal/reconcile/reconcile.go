// Package reconcile classifies each port as matched, catalog-only, or
// socket-only by comparing a catalog snapshot against a socket snapshot. It
// is deliberately pure: no I/O, no hidden state, fully deterministic for a
// given pair of inputs, so it tests without touching the operating system.
package reconcile

import (
	"sort"

	"github.com/noteports/noteports/pkg/model"
)

// catalogProtocol is the protocol a catalog-only row reports. The catalog
// declares ports, not protocols; TCP is what an expected-but-down service
// would have been listening on.
const catalogProtocol = "TCP"

// Reconcile merges the two snapshots into one row per (port, protocol) pair
// seen on either side. A port bound by several protocols yields one row per
// protocol; the catalog entry for that port matches every one of them.
// Output is sorted by port ascending, protocol as tiebreaker.
func Reconcile(entries []model.CatalogEntry, sockets []model.SocketRecord) []model.ReconciledStatus {
	byPort := make(map[int]model.CatalogEntry, len(entries))
	for _, e := range entries {
		byPort[e.Port] = e
	}

	type portProto struct {
		port  int
		proto string
	}

	var out []model.ReconciledStatus
	seen := make(map[portProto]bool, len(sockets))
	matched := make(map[int]bool, len(entries))

	for _, s := range sockets {
		key := portProto{s.Port, s.Protocol}
		if seen[key] {
			continue
		}
		seen[key] = true

		row := model.ReconciledStatus{
			Port:     s.Port,
			Protocol: s.Protocol,
			Address:  s.Address,
			PID:      s.PID,
			Process:  s.Process,
		}
		if e, ok := byPort[s.Port]; ok {
			row.State = model.StateMatched
			row.ServiceName = e.Name
			row.Note = e.Note
			row.Declared = true
			matched[s.Port] = true
		} else {
			row.State = model.StateSocketOnly
			row.ServiceName = WellKnown(s.Port)
		}
		out = append(out, row)
	}

	for _, e := range entries {
		if matched[e.Port] {
			continue
		}
		// Two entries declaring the same port collapse to one row, the one
		// the lookup table kept, so the port still appears exactly once.
		if byPort[e.Port].Name != e.Name {
			continue
		}
		out = append(out, model.ReconciledStatus{
			Port:        e.Port,
			Protocol:    catalogProtocol,
			State:       model.StateCatalogOnly,
			ServiceName: e.Name,
			Note:        e.Note,
			Declared:    true,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Port != out[j].Port {
			return out[i].Port < out[j].Port
		}
		return out[i].Protocol < out[j].Protocol
	})
	return out
}
