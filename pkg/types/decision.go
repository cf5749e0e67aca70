package types

// Decision is the classifier verdict for a command.
type Decision string

const (
	DecisionAllow Decision = "allow"
	DecisionAsk   Decision = "ask"
	DecisionDeny  Decision = "deny"
)

// Restrictiveness orders decisions for merging chained command segments:
// deny > ask > allow.
func (d Decision) Restrictiveness() int {
	switch d {
	case DecisionDeny:
		return 2
	case DecisionAsk:
		return 1
	default:
		return 0
	}
}

// MostRestrictive returns whichever of a and b gates execution harder.
func MostRestrictive(a, b Decision) Decision {
	if b.Restrictiveness() > a.Restrictiveness() {
		return b
	}
	return a
}

// RecordStatus labels an audit record. Pre-execution records carry
// BLOCKED or one of the PENDING_APPROVAL variants; post-execution
// records carry a COMPLETED status.
type RecordStatus string

const (
	StatusPendingApproval   RecordStatus = "PENDING_APPROVAL"
	StatusPendingSuspicious RecordStatus = "PENDING_APPROVAL_SUSPICIOUS"
	StatusBlocked           RecordStatus = "BLOCKED"
	StatusCompletedSuccess  RecordStatus = "COMPLETED_SUCCESS"
	StatusCompletedFailure  RecordStatus = "COMPLETED_FAILURE"
)
