// Package proc reads the host's bound sockets and the processes that own
// them. Every call to Snapshot re-queries the operating system; nothing is
// cached, so the result is always a point-in-time view. Owner resolution is
// best effort: a socket whose process cannot be identified (permissions, or
// the process exited mid-read) is reported with empty process fields, never
// dropped.
package proc

import (
	"sort"

	"github.com/noteports/noteports/pkg/model"
)

// Snapshot returns all listening TCP sockets and bound UDP sockets on the
// host, sorted by port, protocol, then PID.
func Snapshot() ([]model.SocketRecord, error) {
	records, err := listSockets()
	if err != nil {
		return nil, err
	}
	sort.Slice(records, func(i, j int) bool {
		a, b := records[i], records[j]
		if a.Port != b.Port {
			return a.Port < b.Port
		}
		if a.Protocol != b.Protocol {
			return a.Protocol < b.Protocol
		}
		return a.PID < b.PID
	})
	return records, nil
}
