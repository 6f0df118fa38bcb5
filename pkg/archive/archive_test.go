package archive

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDocument = `{"otherData": {},"traceEvents":[` +
	`{"cat":"function","dur":500,"name":"Load","ph":"X","pid":0,"tid":1,"ts":1000},` +
	`{"cat":"function","dur":200,"name":"Sort","ph":"X","pid":0,"tid":2,"ts":1600},` +
	`{"cat":"function","dur":900,"name":"Sort","ph":"X","pid":0,"tid":1,"ts":2000}]}`

func setupArchive(t *testing.T) (*Archive, string) {
	t.Helper()

	dir := t.TempDir()
	a, err := Open(filepath.Join(dir, "archive.db"))
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, a.Close())
	})

	return a, dir
}

func writeTraceFile(t *testing.T, dir, content string) string {
	t.Helper()

	path := filepath.Join(dir, "trace.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestOpen(t *testing.T) {
	t.Run("creates the database", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "archive.db")

		a, err := Open(path)
		require.NoError(t, err)
		defer a.Close()

		_, err = os.Stat(path)
		assert.NoError(t, err)
	})

	t.Run("requires a path", func(t *testing.T) {
		_, err := Open("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database path is required")
	})
}

func TestArchiveImport(t *testing.T) {
	t.Run("imports a valid document", func(t *testing.T) {
		a, dir := setupArchive(t)
		path := writeTraceFile(t, dir, sampleDocument)

		stats, err := a.Import("bench", path)
		require.NoError(t, err)

		assert.Positive(t, stats.SessionID)
		assert.Equal(t, 3, stats.Events)
		assert.Equal(t, int64(1900), stats.Span)
	})

	t.Run("defaults name to the file base", func(t *testing.T) {
		a, dir := setupArchive(t)
		path := writeTraceFile(t, dir, sampleDocument)

		_, err := a.Import("", path)
		require.NoError(t, err)

		sessions, err := a.Sessions()
		require.NoError(t, err)
		require.Len(t, sessions, 1)
		assert.Equal(t, "trace", sessions[0].Name)
	})

	t.Run("rejects an unterminated document", func(t *testing.T) {
		a, dir := setupArchive(t)
		path := writeTraceFile(t, dir, sampleDocument[:len(sampleDocument)-2])

		_, err := a.Import("bad", path)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "not importable")
	})

	t.Run("fails on missing file", func(t *testing.T) {
		a, dir := setupArchive(t)

		_, err := a.Import("missing", filepath.Join(dir, "missing.json"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to read trace file")
	})
}

func TestArchiveSessions(t *testing.T) {
	a, dir := setupArchive(t)

	first := writeTraceFile(t, dir, sampleDocument)
	_, err := a.Import("first", first)
	require.NoError(t, err)
	_, err = a.Import("second", first)
	require.NoError(t, err)

	sessions, err := a.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)

	// Newest first
	assert.Equal(t, "second", sessions[0].Name)
	assert.Equal(t, "first", sessions[1].Name)
	assert.Equal(t, 3, sessions[0].EventCount)
	assert.Equal(t, int64(1000), sessions[0].StartTs)
	assert.Equal(t, int64(2900), sessions[0].EndTs)
}

func TestArchiveEvents(t *testing.T) {
	a, dir := setupArchive(t)
	path := writeTraceFile(t, dir, sampleDocument)

	stats, err := a.Import("bench", path)
	require.NoError(t, err)

	t.Run("returns all events ordered by start", func(t *testing.T) {
		events, err := a.Events(stats.SessionID, EventFilter{})
		require.NoError(t, err)
		require.Len(t, events, 3)
		assert.Equal(t, "Load", events[0].Name)
		assert.Equal(t, "Sort", events[1].Name)
		assert.Equal(t, int64(2000), events[2].Ts)
	})

	t.Run("filters by name", func(t *testing.T) {
		events, err := a.Events(stats.SessionID, EventFilter{Name: "Sort"})
		require.NoError(t, err)
		require.Len(t, events, 2)
		for _, event := range events {
			assert.Equal(t, "Sort", event.Name)
		}
	})

	t.Run("filters by minimum duration", func(t *testing.T) {
		events, err := a.Events(stats.SessionID, EventFilter{MinDur: 400})
		require.NoError(t, err)
		require.Len(t, events, 2)
		assert.Equal(t, "Load", events[0].Name)
		assert.Equal(t, int64(900), events[1].Dur)
	})

	t.Run("limits results", func(t *testing.T) {
		events, err := a.Events(stats.SessionID, EventFilter{Limit: 1})
		require.NoError(t, err)
		require.Len(t, events, 1)
		assert.Equal(t, "Load", events[0].Name)
	})

	t.Run("unknown session has no events", func(t *testing.T) {
		events, err := a.Events(9999, EventFilter{})
		require.NoError(t, err)
		assert.Empty(t, events)
	})
}
