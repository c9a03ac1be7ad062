package history_test

import (
	"path/filepath"
	"testing"

	"github.com/medqc/stacaudit/internal/adapters/outbound/history"
	"github.com/medqc/stacaudit/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistory_SaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	entry := domain.RunEntry{
		Timestamp:      "2026-02-25T10:00:00Z",
		RunID:          "run-1",
		File:           "scene.pdf",
		DocumentCommit: "abc1234",
		State:          domain.StateSucceeded,
		StatusCode:     200,
		ContentKind:    domain.ContentStructured,
		Violations:     3,
	}

	err := h.Save(dir, entry)
	require.NoError(t, err)

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, entry, entries[0])
}

func TestHistory_AppendMultiple(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	require.NoError(t, h.Save(dir, domain.RunEntry{Timestamp: "t1", State: domain.StateFailed}))
	require.NoError(t, h.Save(dir, domain.RunEntry{Timestamp: "t2", State: domain.StateSucceeded, Violations: 2}))
	require.NoError(t, h.Save(dir, domain.RunEntry{Timestamp: "t3", State: domain.StateSucceeded}))

	entries, err := h.Load(dir)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, domain.StateFailed, entries[0].State)
	assert.Equal(t, "t3", entries[2].Timestamp)
}

func TestHistory_LoadEmpty(t *testing.T) {
	dir := t.TempDir()
	h := history.New()

	entries, err := h.Load(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestHistory_CreatesDirectory(t *testing.T) {
	dir := t.TempDir()
	nestedDir := filepath.Join(dir, "deep", "nested")
	h := history.New()

	err := h.Save(nestedDir, domain.RunEntry{Timestamp: "t1"})
	require.NoError(t, err)

	entries, err := h.Load(nestedDir)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestLast(t *testing.T) {
	entries := []domain.RunEntry{{RunID: "a"}, {RunID: "b"}, {RunID: "c"}}

	assert.Equal(t, entries, history.Last(entries, 0))
	assert.Equal(t, entries, history.Last(entries, 5))
	assert.Equal(t, []domain.RunEntry{{RunID: "b"}, {RunID: "c"}}, history.Last(entries, 2))
}
