package catalog

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noteports/noteports/pkg/model"
)

func tempStore(t *testing.T, contents string) (*Store, []model.SkippedEntry, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	if contents != "" {
		require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	}
	s, skipped, err := Open(path, nil)
	require.NoError(t, err)
	return s, skipped, path
}

func TestOpenSeedsDefaults(t *testing.T) {
	s, skipped, path := tempStore(t, "")

	assert.Empty(t, skipped)
	assert.Equal(t, len(Defaults), s.Len())

	// The seeded file must be readable on the next start.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var raw map[string]int
	require.NoError(t, json.Unmarshal(data, &raw))
	assert.Equal(t, 22, raw["Remote Login"])
	assert.Equal(t, 7577, raw["NotePorts"])
}

func TestOpenSkipsMalformedEntries(t *testing.T) {
	s, skipped, _ := tempStore(t, `{
		"ok-svc": 80,
		"bad;svc": 81,
		"good": 999999,
		"stringy": "8080",
		"stringy-high": "999999",
		"object": {"port": 9090, "note": "staging"},
		"junk": "not-a-port"
	}`)

	require.Len(t, skipped, 4)
	reasons := map[string]model.SkipReason{}
	for _, sk := range skipped {
		reasons[sk.Name] = sk.Reason
	}
	assert.Equal(t, model.SkipInvalidName, reasons["bad;svc"])
	assert.Equal(t, model.SkipInvalidPort, reasons["good"])
	// An out-of-range port skips as invalid-port whether it arrived as a
	// number or a numeric string.
	assert.Equal(t, model.SkipInvalidPort, reasons["stringy-high"])
	assert.Equal(t, model.SkipInvalidValue, reasons["junk"])

	entries := s.Snapshot()
	require.Len(t, entries, 3)
	byName := map[string]model.CatalogEntry{}
	for _, e := range entries {
		byName[e.Name] = e
	}
	assert.Equal(t, 80, byName["ok-svc"].Port)
	assert.Equal(t, 8080, byName["stringy"].Port)
	assert.Equal(t, 9090, byName["object"].Port)
	assert.Equal(t, "staging", byName["object"].Note)
}

func TestOpenFailsOnUndecodableFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{{{"), 0o644))

	_, _, err := Open(path, nil)
	assert.Error(t, err)
}

func TestUpsertRoundTrip(t *testing.T) {
	s, _, _ := tempStore(t, `{}`)

	require.NoError(t, s.Upsert("web", 8080, ""))

	entries := s.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, "web", entries[0].Name)
	assert.Equal(t, 8080, entries[0].Port)
}

func TestUpsertRejectsInvalidFields(t *testing.T) {
	s, _, _ := tempStore(t, `{"web": 8080}`)
	before := s.Snapshot()

	err := s.Upsert("bad;svc", 80, "")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "service_name", verr.Field)

	err = s.Upsert("fine", 0, "")
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "port", verr.Field)

	assert.Equal(t, before, s.Snapshot())
}

func TestUpsertEvictsPortOwner(t *testing.T) {
	s, _, _ := tempStore(t, `{"old": 9000}`)

	require.NoError(t, s.Upsert("new", 9000, ""))

	entries := s.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, "new", entries[0].Name)
}

func TestUpsertReplacesEntry(t *testing.T) {
	s, _, _ := tempStore(t, `{"api": 9000}`)

	require.NoError(t, s.Upsert("api", 9001, "moved"))

	entries := s.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, 9001, entries[0].Port)
	assert.Equal(t, "moved", entries[0].Note)
}

func TestUpsertPersistFailureRestoresEvicted(t *testing.T) {
	s, _, path := tempStore(t, `{"old": 9000, "web": 80}`)
	before := s.Snapshot()

	// Make the rename in persist fail by putting a directory where the
	// catalog file lives.
	require.NoError(t, os.Remove(path))
	require.NoError(t, os.Mkdir(path, 0o755))

	err := s.Upsert("new", 9000, "")
	require.Error(t, err)

	// The failed write must leave memory exactly as it was: "old" still
	// declared, "new" absent.
	assert.Equal(t, before, s.Snapshot())
}

func TestRemove(t *testing.T) {
	s, _, _ := tempStore(t, `{"api": 9000}`)

	ok, err := s.Remove("api")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Zero(t, s.Len())

	before := s.Snapshot()
	ok, err = s.Remove("nonexistent")
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, before, s.Snapshot())
}

func TestReplaceSkipsInvalidPairs(t *testing.T) {
	s, _, _ := tempStore(t, `{"api": 9000}`)

	skipped, err := s.Replace(map[string]int{
		"web":     80,
		"bad|svc": 81,
		"high":    70000,
	})
	require.NoError(t, err)
	assert.Len(t, skipped, 2)

	entries := s.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, "web", entries[0].Name)
}

func TestPersistSurvivesReopen(t *testing.T) {
	s, _, path := tempStore(t, `{}`)
	require.NoError(t, s.Upsert("web", 8080, "front door"))

	s2, skipped, err := Open(path, nil)
	require.NoError(t, err)
	assert.Empty(t, skipped)
	entries := s2.Snapshot()
	require.Len(t, entries, 1)
	assert.Equal(t, model.CatalogEntry{Name: "web", Port: 8080, Note: "front door"}, entries[0])
}

func TestSnapshotIsStableCopy(t *testing.T) {
	s, _, _ := tempStore(t, `{"api": 9000}`)

	snap := s.Snapshot()
	require.NoError(t, s.Upsert("web", 8080, ""))

	// The earlier snapshot must not observe the later write.
	require.Len(t, snap, 1)
	assert.Equal(t, "api", snap[0].Name)
}
