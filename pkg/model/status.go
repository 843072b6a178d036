package model

// PortState classifies one port/protocol row after reconciliation.
type PortState string

const (
	// StateMatched: the port is declared in the catalog and something is
	// listening on it.
	StateMatched PortState = "matched"
	// StateCatalogOnly: declared but nothing listening; the expected service
	// may be down.
	StateCatalogOnly PortState = "catalog-only"
	// StateSocketOnly: something is listening that the operator never
	// declared.
	StateSocketOnly PortState = "socket-only"
)

// ReconciledStatus is one row of the reconciled view: the relationship
// between a catalog entry and a live socket on a single (port, protocol)
// pair. It is recomputed in full on every reconciliation and never stored.
type ReconciledStatus struct {
	Port        int       `json:"port"`
	Protocol    string    `json:"protocol"`
	State       PortState `json:"status"`
	ServiceName string    `json:"service_name,omitempty"` // declared name, or well-known hint for socket-only rows
	Declared    bool      `json:"declared"`               // true when ServiceName comes from the catalog
	Note        string    `json:"note,omitempty"`
	Address     string    `json:"address,omitempty"`
	PID         int       `json:"pid,omitempty"`
	Process     string    `json:"process,omitempty"`
}

// StatusReport is the full reconciled view plus the counters the web page
// renders in its summary strip.
type StatusReport struct {
	Ports     []ReconciledStatus `json:"port_cards"`
	TotalUsed int                `json:"total_used"`
	TCPUsed   int                `json:"tcp_used"`
	UDPUsed   int                `json:"udp_used"`
}
