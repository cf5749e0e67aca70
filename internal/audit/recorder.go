// Package audit appends classification and execution records to an
// append-only log partitioned by UTC calendar day and tool family.
package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/cmdgate/cmdgate/internal/policy"
	"github.com/cmdgate/cmdgate/pkg/types"
)

// ExecResult is the outcome of an executed command, reported by the
// post-execution hook.
type ExecResult struct {
	Success  bool
	ExitCode int
}

// Recorder appends one JSON line per event. Each invocation of the
// engine is a short-lived process, so writes open-append-close per call
// and rely on the O_APPEND guarantee for small writes; there is no
// long-lived in-process writer and no locking across processes.
type Recorder struct {
	dir string
	now func() time.Time
}

// NewRecorder builds a recorder rooted at dir. The directory is created
// lazily on first write, so construction never touches the filesystem.
func NewRecorder(dir string) *Recorder {
	return &Recorder{dir: dir, now: time.Now}
}

// Dir returns the audit directory.
func (r *Recorder) Dir() string { return r.dir }

// PartitionPath derives the destination file for a family at time t:
// <dir>/<family>-<YYYY-MM-DD>.log, date taken in UTC. A new partition
// is selected automatically at UTC midnight because the path is derived
// per write.
func (r *Recorder) PartitionPath(family string, t time.Time) string {
	return filepath.Join(r.dir, fmt.Sprintf("%s-%s.log", family, t.UTC().Format("2006-01-02")))
}

// RecordPreDecision writes the decision-time record: BLOCKED for a
// deny, PENDING_APPROVAL (or its suspicious variant) for an ask. Plain
// allows are not audited; commands that don't reference the protected
// tool leave no trace, matching the engine's advisory scope.
func (r *Recorder) RecordPreDecision(family string, req policy.Request, res policy.Result) error {
	if res.Status == "" {
		return nil
	}
	return r.append(family, types.AuditRecord{
		ID:         uuid.NewString(),
		Timestamp:  r.now().UTC(),
		Command:    req.Command,
		Decision:   res.Status,
		WorkingDir: req.WorkingDir,
		Reason:     res.Reason,
		Rule:       res.Rule,
		ToolFamily: family,
	})
}

// RecordPostExecution writes the completion record after a gated
// command finishes. Only called when the pre-decision was not BLOCKED.
func (r *Recorder) RecordPostExecution(family string, req policy.Request, exec ExecResult) error {
	status := types.StatusCompletedFailure
	if exec.Success {
		status = types.StatusCompletedSuccess
	}
	exitCode := exec.ExitCode
	success := exec.Success
	return r.append(family, types.AuditRecord{
		ID:         uuid.NewString(),
		Timestamp:  r.now().UTC(),
		Command:    req.Command,
		Decision:   status,
		WorkingDir: req.WorkingDir,
		ToolFamily: family,
		ExitCode:   &exitCode,
		Success:    &success,
	})
}

func (r *Recorder) append(family string, rec types.AuditRecord) error {
	if r.dir == "" {
		return fmt.Errorf("audit dir is empty")
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return fmt.Errorf("mkdir audit dir: %w", err)
	}

	b, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("marshal audit record: %w", err)
	}

	path := r.PartitionPath(family, rec.Timestamp)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open audit log: %w", err)
	}
	// One self-contained line per record, written with a single call so
	// concurrent appenders never interleave partial lines.
	if _, err := f.Write(append(b, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("write audit log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close audit log: %w", err)
	}
	return nil
}
