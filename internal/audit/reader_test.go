package audit

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmdgate/cmdgate/internal/policy"
	"github.com/cmdgate/cmdgate/pkg/types"
)

func TestList(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{
		"terraform-2026-08-29.log",
		"terraform-2026-08-30.log",
		"helm-2026-08-29.log",
		"my-tool-2026-08-29.log",
		"notes.txt",
		"short.log",
	} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), nil, 0o644))
	}

	parts, err := List(dir)
	require.NoError(t, err)
	require.Len(t, parts, 4)

	assert.Equal(t, "helm", parts[0].Family)
	assert.Equal(t, "my-tool", parts[1].Family)
	assert.Equal(t, "2026-08-29", parts[1].Date)
	assert.Equal(t, "terraform", parts[2].Family)
	assert.Equal(t, "2026-08-29", parts[2].Date)
	assert.Equal(t, "2026-08-30", parts[3].Date)
}

func TestList_MissingDir(t *testing.T) {
	parts, err := List(filepath.Join(t.TempDir(), "nope"))
	require.NoError(t, err)
	assert.Empty(t, parts)
}

func TestReadAndTail(t *testing.T) {
	dir := t.TempDir()
	r := NewRecorder(dir)
	req := policy.Request{Command: "terraform plan", WorkingDir: "/w"}
	res := policy.Result{Decision: types.DecisionAsk, Status: types.StatusPendingApproval}
	for i := 0; i < 5; i++ {
		require.NoError(t, r.RecordPreDecision("terraform", req, res))
	}

	parts, err := List(dir)
	require.NoError(t, err)
	require.Len(t, parts, 1)

	records, err := Read(parts[0].Path)
	require.NoError(t, err)
	assert.Len(t, records, 5)

	tail, err := Tail(parts[0].Path, 2)
	require.NoError(t, err)
	require.Len(t, tail, 2)
	assert.Equal(t, records[3].ID, tail[0].ID)
	assert.Equal(t, records[4].ID, tail[1].ID)
}

func TestRead_CorruptLine(t *testing.T) {
	path := filepath.Join(t.TempDir(), "terraform-2026-08-29.log")
	require.NoError(t, os.WriteFile(path, []byte("{\"id\":\"a\"}\nnot json\n"), 0o644))

	_, err := Read(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}
