package model

// SocketRecord is one bound socket observed in a single snapshot. Records are
// never mutated after a snapshot returns; the next refresh replaces the whole
// slice.
type SocketRecord struct {
	Port     int    `json:"port"`
	Protocol string `json:"protocol"` // TCP, TCP6, UDP, UDP6
	Address  string `json:"address"`  // bind address: 0.0.0.0, 127.0.0.1, ::
	PID      int    `json:"pid,omitempty"`
	Process  string `json:"process,omitempty"` // short command name, empty when unresolvable
}

// Known returns whether the owning process could be resolved. PID 0 means the
// kernel did not let us join the socket to a process (permissions, or the
// process exited between enumeration and resolution).
func (s SocketRecord) Known() bool {
	return s.PID > 0
}
