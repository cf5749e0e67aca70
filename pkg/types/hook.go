package types

// HookInput is the JSON object the host agent runtime writes to stdin,
// once per candidate command. ToolResponse is present only on
// post-execution invocations.
type HookInput struct {
	SessionID     string        `json:"session_id,omitempty"`
	HookEventName string        `json:"hook_event_name,omitempty"`
	ToolName      string        `json:"tool_name" validate:"required"`
	ToolInput     ToolInput     `json:"tool_input"`
	Cwd           string        `json:"cwd" validate:"required"`
	ToolResponse  *ToolResponse `json:"tool_response,omitempty"`
}

// ToolInput carries the command details of a Bash tool call.
type ToolInput struct {
	Command     string `json:"command"`
	Description string `json:"description,omitempty"`
}

// ToolResponse carries the outcome of an executed command.
type ToolResponse struct {
	Success  bool   `json:"success"`
	ExitCode int    `json:"exit_code"`
	Content  string `json:"content,omitempty"`
}

// HookOutput is the JSON object written to stdout. The decision is
// communicated here, not via the process exit code.
type HookOutput struct {
	HookSpecificOutput HookSpecificOutput `json:"hookSpecificOutput"`
}

// HookSpecificOutput carries the permission decision shown to the agent.
type HookSpecificOutput struct {
	HookEventName            string   `json:"hookEventName"`
	PermissionDecision       Decision `json:"permissionDecision"`
	PermissionDecisionReason string   `json:"permissionDecisionReason"`
}

// Hook event names recognized by the engine.
const (
	EventPreToolUse  = "PreToolUse"
	EventPostToolUse = "PostToolUse"
)
