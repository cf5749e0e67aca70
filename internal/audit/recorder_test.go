package audit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmdgate/cmdgate/internal/policy"
	"github.com/cmdgate/cmdgate/pkg/types"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestRecordPreDecision_Blocked(t *testing.T) {
	dir := t.TempDir()
	r := NewRecorder(dir)
	r.now = fixedClock(time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC))

	req := policy.Request{Command: "terraform apply", WorkingDir: "/work/infra"}
	res := policy.Result{
		Decision: types.DecisionDeny,
		Status:   types.StatusBlocked,
		Rule:     "terraform apply",
		Reason:   "BLOCKED: terraform apply is not allowed.",
	}
	require.NoError(t, r.RecordPreDecision("terraform", req, res))

	path := filepath.Join(dir, "terraform-2026-08-29.log")
	records, err := Read(path)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.NotEmpty(t, rec.ID)
	assert.Equal(t, types.StatusBlocked, rec.Decision)
	assert.Equal(t, "terraform apply", rec.Command)
	assert.Equal(t, "/work/infra", rec.WorkingDir)
	assert.Equal(t, "terraform apply", rec.Rule)
	assert.Equal(t, "terraform", rec.ToolFamily)
	assert.Nil(t, rec.ExitCode)
}

func TestRecordPreDecision_AllowWritesNothing(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "audit")
	r := NewRecorder(dir)

	req := policy.Request{Command: "ls -la", WorkingDir: "/w"}
	require.NoError(t, r.RecordPreDecision("terraform", req, policy.Result{Decision: types.DecisionAllow}))

	// Nothing to audit: the directory is not even created.
	_, err := os.Stat(dir)
	assert.True(t, os.IsNotExist(err))
}

func TestAskThenCompletion_TwoCorrelatedRecords(t *testing.T) {
	dir := t.TempDir()
	r := NewRecorder(dir)
	r.now = fixedClock(time.Date(2026, 8, 29, 10, 30, 0, 0, time.UTC))

	req := policy.Request{Command: "terraform plan", WorkingDir: "/work/infra"}
	require.NoError(t, r.RecordPreDecision("terraform", req, policy.Result{
		Decision: types.DecisionAsk,
		Status:   types.StatusPendingApproval,
		Rule:     "default-ask",
		Reason:   "Terraform command requires approval",
	}))
	require.NoError(t, r.RecordPostExecution("terraform", req, ExecResult{Success: true, ExitCode: 0}))

	records, err := Read(r.PartitionPath("terraform", r.now()))
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, types.StatusPendingApproval, records[0].Decision)
	assert.Equal(t, types.StatusCompletedSuccess, records[1].Decision)

	// Correlated by command text and working directory.
	assert.Equal(t, records[0].Command, records[1].Command)
	assert.Equal(t, records[0].WorkingDir, records[1].WorkingDir)
	assert.NotEqual(t, records[0].ID, records[1].ID)

	require.NotNil(t, records[1].ExitCode)
	assert.Equal(t, 0, *records[1].ExitCode)
	require.NotNil(t, records[1].Success)
	assert.True(t, *records[1].Success)
}

func TestRecordPostExecution_Failure(t *testing.T) {
	dir := t.TempDir()
	r := NewRecorder(dir)

	req := policy.Request{Command: "helm template ./chart", WorkingDir: "/w"}
	require.NoError(t, r.RecordPostExecution("helm", req, ExecResult{Success: false, ExitCode: 3}))

	records, err := Read(r.PartitionPath("helm", time.Now()))
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, types.StatusCompletedFailure, records[0].Decision)
	require.NotNil(t, records[0].ExitCode)
	assert.Equal(t, 3, *records[0].ExitCode)
}

func TestPartitionRollover(t *testing.T) {
	dir := t.TempDir()
	r := NewRecorder(dir)

	req := policy.Request{Command: "terraform plan", WorkingDir: "/w"}
	res := policy.Result{Decision: types.DecisionAsk, Status: types.StatusPendingApproval}

	r.now = fixedClock(time.Date(2026, 8, 29, 23, 59, 59, 0, time.UTC))
	require.NoError(t, r.RecordPreDecision("terraform", req, res))

	r.now = fixedClock(time.Date(2026, 8, 30, 0, 0, 1, 0, time.UTC))
	require.NoError(t, r.RecordPreDecision("terraform", req, res))

	day1, err := Read(filepath.Join(dir, "terraform-2026-08-29.log"))
	require.NoError(t, err)
	day2, err := Read(filepath.Join(dir, "terraform-2026-08-30.log"))
	require.NoError(t, err)
	assert.Len(t, day1, 1)
	assert.Len(t, day2, 1)
}

func TestPartitionPath_UsesUTC(t *testing.T) {
	r := NewRecorder("/var/log/cmdgate")

	// 23:30 in UTC-5 is already the next day in UTC.
	loc := time.FixedZone("UTC-5", -5*3600)
	local := time.Date(2026, 8, 29, 23, 30, 0, 0, loc)
	assert.Equal(t, "/var/log/cmdgate/terraform-2026-08-30.log", r.PartitionPath("terraform", local))
}

func TestAppend_Failures(t *testing.T) {
	r := NewRecorder("")
	req := policy.Request{Command: "terraform plan", WorkingDir: "/w"}
	res := policy.Result{Decision: types.DecisionAsk, Status: types.StatusPendingApproval}
	require.Error(t, r.RecordPreDecision("terraform", req, res))

	// A regular file where the audit dir should be.
	obstacle := filepath.Join(t.TempDir(), "audit")
	require.NoError(t, os.WriteFile(obstacle, []byte("x"), 0o644))
	r = NewRecorder(obstacle)
	err := r.RecordPreDecision("terraform", req, res)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mkdir")
}
