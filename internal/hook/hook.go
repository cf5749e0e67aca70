// Package hook implements the stdin/stdout invocation protocol: decode
// and validate the host runtime's request, classify, audit, and build
// the permission response.
package hook

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/cmdgate/cmdgate/internal/audit"
	"github.com/cmdgate/cmdgate/internal/policy"
	"github.com/cmdgate/cmdgate/internal/sandbox"
	"github.com/cmdgate/cmdgate/pkg/types"
)

// Exit codes of a hook invocation. The decision travels in the JSON
// body; the exit code only signals blocking (2) or invalid input (1).
const (
	ExitOK      = 0
	ExitInvalid = 1
	ExitBlocked = 2
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError marks malformed or incomplete hook input. It is a
// distinct type so callers cannot accidentally treat a parse failure as
// an allow.
type ValidationError struct {
	err error
}

func (e *ValidationError) Error() string { return fmt.Sprintf("invalid hook input: %v", e.err) }
func (e *ValidationError) Unwrap() error { return e.err }

// Decode reads one JSON request from r and validates it. Any failure is
// a *ValidationError: the engine never guesses a decision for missing
// data.
func Decode(r io.Reader) (*types.HookInput, error) {
	var in types.HookInput
	if err := json.NewDecoder(r).Decode(&in); err != nil {
		return nil, &ValidationError{err: err}
	}
	if err := validate.Struct(&in); err != nil {
		return nil, &ValidationError{err: err}
	}
	if in.ToolName == "Bash" && in.ToolInput.Command == "" {
		return nil, &ValidationError{err: fmt.Errorf("tool_input.command is required for Bash")}
	}
	return &in, nil
}

// Engines maps tool family to its compiled classifier.
type Engines map[string]*policy.Engine

// BuildEngines compiles one engine per configured ruleset.
func BuildEngines(sets map[string]*policy.RuleSet) (Engines, error) {
	engines := make(Engines, len(sets))
	for fam, rs := range sets {
		e, err := policy.NewEngine(rs)
		if err != nil {
			return nil, fmt.Errorf("family %q: %w", fam, err)
		}
		engines[fam] = e
	}
	return engines, nil
}

// Families returns the configured family names in sorted order.
func (e Engines) Families() []string {
	sets := make(map[string]*policy.RuleSet, len(e))
	for fam, eng := range e {
		sets[fam] = eng.RuleSet()
	}
	return policy.Families(sets)
}

// FilterFamily narrows the engine set to one family. An unknown family
// fails open to an empty set (which classifies everything as allow):
// the engine's scope is the protected families it knows about. This is
// a deliberate policy choice, not a bug.
func (e Engines) FilterFamily(family string, log *slog.Logger) Engines {
	if family == "" {
		return e
	}
	if eng, ok := e[family]; ok {
		return Engines{family: eng}
	}
	log.Warn("unknown tool family, allowing command (fail open)", "family", family)
	return Engines{}
}

// Outcome is the result of one hook invocation: the JSON body to print
// (nil when the hook has nothing to say) and the process exit code.
type Outcome struct {
	Output   *types.HookOutput
	ExitCode int
}

// RunPre classifies a candidate command before execution. Every
// configured family evaluates the command independently; each ask/deny
// is audited per family; the response carries the most restrictive
// result. Audit failures degrade to warnings and never change the
// decision.
func RunPre(in *types.HookInput, engines Engines, rec *audit.Recorder, env sandbox.Info, log *slog.Logger) Outcome {
	if in.ToolName != "Bash" {
		return Outcome{ExitCode: ExitOK}
	}

	req := policy.Request{Command: in.ToolInput.Command, WorkingDir: in.Cwd}

	best := policy.Result{Decision: types.DecisionAllow}
	for _, fam := range engines.Families() {
		res := engines[fam].Classify(req)
		if res.Status != "" {
			if err := rec.RecordPreDecision(fam, req, res); err != nil {
				log.Warn("audit write failed", "family", fam, "error", err)
			}
		}
		if res.Decision.Restrictiveness() > best.Decision.Restrictiveness() {
			best = res
		}
	}

	reason := best.Reason
	if best.Decision == types.DecisionAllow {
		reason = ""
	}
	// The isolation notice only decorates approval prompts: denied
	// commands never reach a prompt, and allows need none.
	if best.Decision == types.DecisionAsk {
		if adv := env.Advisory(); adv != "" {
			reason += "\n\n" + adv
		}
	}

	out := &types.HookOutput{
		HookSpecificOutput: types.HookSpecificOutput{
			HookEventName:            types.EventPreToolUse,
			PermissionDecision:       best.Decision,
			PermissionDecisionReason: reason,
		},
	}
	code := ExitOK
	if best.Decision == types.DecisionDeny {
		code = ExitBlocked
	}
	return Outcome{Output: out, ExitCode: code}
}

// RunPost records the completion status of a gated command. It emits no
// permission output and always exits 0: logging must never block the
// workflow.
func RunPost(in *types.HookInput, engines Engines, rec *audit.Recorder, log *slog.Logger) Outcome {
	if in.ToolName != "Bash" || in.ToolResponse == nil {
		return Outcome{ExitCode: ExitOK}
	}

	req := policy.Request{Command: in.ToolInput.Command, WorkingDir: in.Cwd}
	exec := audit.ExecResult{Success: in.ToolResponse.Success, ExitCode: in.ToolResponse.ExitCode}

	for _, fam := range engines.Families() {
		res := engines[fam].Classify(req)
		if res.Status == "" {
			// Command doesn't reference this family's tool.
			continue
		}
		if err := rec.RecordPostExecution(fam, req, exec); err != nil {
			log.Warn("audit write failed", "family", fam, "error", err)
		}
	}
	return Outcome{ExitCode: ExitOK}
}
