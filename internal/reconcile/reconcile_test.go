package reconcile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noteports/noteports/pkg/model"
)

func TestReconcileClassification(t *testing.T) {
	entries := []model.CatalogEntry{
		{Name: "api", Port: 9000},
		{Name: "db", Port: 5432, Note: "primary"},
	}
	sockets := []model.SocketRecord{
		{Port: 9000, Protocol: "TCP", Address: "0.0.0.0", PID: 1234, Process: "api-server"},
		{Port: 22, Protocol: "TCP", Address: "0.0.0.0", PID: 801, Process: "sshd"},
	}

	got := Reconcile(entries, sockets)
	require.Len(t, got, 3)

	assert.Equal(t, model.ReconciledStatus{
		Port: 22, Protocol: "TCP", State: model.StateSocketOnly,
		ServiceName: "SSH", Address: "0.0.0.0", PID: 801, Process: "sshd",
	}, got[0])
	assert.Equal(t, model.ReconciledStatus{
		Port: 5432, Protocol: "TCP", State: model.StateCatalogOnly,
		ServiceName: "db", Note: "primary", Declared: true,
	}, got[1])
	assert.Equal(t, model.ReconciledStatus{
		Port: 9000, Protocol: "TCP", State: model.StateMatched,
		ServiceName: "api", Declared: true, Address: "0.0.0.0", PID: 1234, Process: "api-server",
	}, got[2])
}

func TestReconcileDeterministic(t *testing.T) {
	entries := []model.CatalogEntry{
		{Name: "a", Port: 10}, {Name: "b", Port: 20}, {Name: "c", Port: 30},
	}
	sockets := []model.SocketRecord{
		{Port: 30, Protocol: "UDP"}, {Port: 20, Protocol: "TCP", PID: 5},
		{Port: 40, Protocol: "TCP6"}, {Port: 40, Protocol: "TCP"},
	}

	first := Reconcile(entries, sockets)
	second := Reconcile(entries, sockets)
	assert.Equal(t, first, second)
}

func TestReconcileTotalPartition(t *testing.T) {
	entries := []model.CatalogEntry{
		{Name: "a", Port: 10}, {Name: "b", Port: 20},
	}
	sockets := []model.SocketRecord{
		{Port: 20, Protocol: "TCP"}, {Port: 20, Protocol: "TCP6"},
		{Port: 30, Protocol: "UDP"},
	}

	got := Reconcile(entries, sockets)

	seen := map[int]int{}
	for _, row := range got {
		seen[row.Port]++
		assert.Contains(t, []model.PortState{
			model.StateMatched, model.StateCatalogOnly, model.StateSocketOnly,
		}, row.State)
	}
	// Every port from either side appears; port 20 has two protocol rows.
	assert.Equal(t, map[int]int{10: 1, 20: 2, 30: 1}, seen)
}

func TestReconcileMultiProtocolMatch(t *testing.T) {
	entries := []model.CatalogEntry{{Name: "dns", Port: 53}}
	sockets := []model.SocketRecord{
		{Port: 53, Protocol: "TCP", PID: 99, Process: "named"},
		{Port: 53, Protocol: "UDP", PID: 99, Process: "named"},
	}

	got := Reconcile(entries, sockets)
	require.Len(t, got, 2)
	// Both protocol bindings match the one catalog entry, neither is dropped.
	assert.Equal(t, "TCP", got[0].Protocol)
	assert.Equal(t, "UDP", got[1].Protocol)
	for _, row := range got {
		assert.Equal(t, model.StateMatched, row.State)
		assert.Equal(t, "dns", row.ServiceName)
	}
}

func TestReconcileDeduplicatesSocketRows(t *testing.T) {
	// Two binds of the same port/protocol (e.g. two addresses) collapse to
	// one row.
	sockets := []model.SocketRecord{
		{Port: 80, Protocol: "TCP", Address: "127.0.0.1", PID: 1},
		{Port: 80, Protocol: "TCP", Address: "10.0.0.1", PID: 1},
	}

	got := Reconcile(nil, sockets)
	require.Len(t, got, 1)
	assert.Equal(t, "127.0.0.1", got[0].Address)
}

func TestReconcileOrdering(t *testing.T) {
	sockets := []model.SocketRecord{
		{Port: 443, Protocol: "TCP6"},
		{Port: 443, Protocol: "TCP"},
		{Port: 80, Protocol: "TCP"},
	}

	got := Reconcile(nil, sockets)
	require.Len(t, got, 3)
	assert.Equal(t, 80, got[0].Port)
	assert.Equal(t, "TCP", got[1].Protocol)
	assert.Equal(t, "TCP6", got[2].Protocol)
}

func TestReconcileEmptyInputs(t *testing.T) {
	assert.Empty(t, Reconcile(nil, nil))

	got := Reconcile([]model.CatalogEntry{{Name: "web", Port: 8080}}, nil)
	require.Len(t, got, 1)
	assert.Equal(t, model.StateCatalogOnly, got[0].State)
}

func TestWellKnownHint(t *testing.T) {
	got := Reconcile(nil, []model.SocketRecord{
		{Port: 6379, Protocol: "TCP"},
		{Port: 49152, Protocol: "TCP"},
	})
	require.Len(t, got, 2)
	assert.Equal(t, "Redis", got[0].ServiceName)
	assert.False(t, got[0].Declared)
	assert.Empty(t, got[1].ServiceName)
}
