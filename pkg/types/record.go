package types

import "time"

// AuditRecord is one line of the append-only audit log. Records are
// appended, never updated; external retention policy may prune old
// partitions.
type AuditRecord struct {
	ID         string       `json:"id"`
	Timestamp  time.Time    `json:"timestamp"`
	Command    string       `json:"command"`
	Decision   RecordStatus `json:"decision"`
	WorkingDir string       `json:"working_dir"`
	Reason     string       `json:"reason,omitempty"`
	Rule       string       `json:"rule,omitempty"`
	ToolFamily string       `json:"tool_family,omitempty"`

	// Post-execution fields.
	ExitCode *int  `json:"exit_code,omitempty"`
	Success  *bool `json:"success,omitempty"`
}
