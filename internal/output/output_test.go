package output

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noteports/noteports/pkg/model"
)

func sampleReport() model.StatusReport {
	return model.StatusReport{
		Ports: []model.ReconciledStatus{
			{Port: 22, Protocol: "TCP", State: model.StateSocketOnly, ServiceName: "SSH", PID: 801, Process: "sshd"},
			{Port: 9000, Protocol: "TCP", State: model.StateCatalogOnly, ServiceName: "api", Declared: true, Note: "staging"},
		},
		TotalUsed: 1,
		TCPUsed:   1,
	}
}

func TestToJSON(t *testing.T) {
	s, err := ToJSON(sampleReport())
	require.NoError(t, err)
	assert.Contains(t, s, `"status": "socket-only"`)
	assert.Contains(t, s, `"port": 9000`)
}

func TestRenderTable(t *testing.T) {
	var sb strings.Builder
	require.NoError(t, RenderTable(&sb, sampleReport()))

	out := sb.String()
	assert.Contains(t, out, "PORT")
	assert.Contains(t, out, "sshd")
	assert.Contains(t, out, "catalog-only")
	assert.Contains(t, out, "1 in use (1 TCP, 0 UDP)")
}
