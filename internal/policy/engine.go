package policy

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/gobwas/glob"

	"github.com/cmdgate/cmdgate/pkg/types"
)

// Request is the unit of work submitted to the classifier. Immutable
// once constructed.
type Request struct {
	Command    string
	WorkingDir string
}

// Result is the classifier output: a decision, a human-readable reason,
// the matched rule for audit traceability, and the status the
// pre-execution audit record should carry. Created fresh per request,
// never cached.
type Result struct {
	Decision types.Decision
	Status   types.RecordStatus
	Reason   string
	Rule     string
}

// Synthetic rule identifiers for results not produced by a deny rule.
const (
	ruleIndirection = "indirection"
	ruleSuspicious  = "suspicious-keywords"
	ruleDefaultAsk  = "default-ask"
)

// Engine classifies commands against one compiled RuleSet. Classify is
// a pure function of its inputs: no I/O, no side effects.
type Engine struct {
	rs       *RuleSet
	aliases  map[string]struct{}
	rules    []compiledDenyRule
	keywords []string
}

type compiledDenyRule struct {
	rule DenyRule
	args []glob.Glob
}

// NewEngine validates and compiles a ruleset. The ruleset must not be
// mutated afterwards.
func NewEngine(rs *RuleSet) (*Engine, error) {
	if err := rs.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{rs: rs, aliases: make(map[string]struct{}, len(rs.Aliases))}
	for _, a := range rs.Aliases {
		e.aliases[strings.ToLower(a)] = struct{}{}
	}
	for _, r := range rs.DenyRules {
		cr := compiledDenyRule{rule: r}
		for _, pat := range r.Args {
			g, err := glob.Compile(strings.ToLower(pat))
			if err != nil {
				return nil, fmt.Errorf("compile deny rule %q arg pattern %q: %w", r.Name, pat, err)
			}
			cr.args = append(cr.args, g)
		}
		e.rules = append(e.rules, cr)
	}
	for _, k := range rs.IndirectionKeywords() {
		e.keywords = append(e.keywords, strings.ToLower(k))
	}
	return e, nil
}

// Family returns the tool family this engine guards.
func (e *Engine) Family() string { return e.rs.Family }

// RuleSet returns the (read-only) ruleset backing this engine.
func (e *Engine) RuleSet() *RuleSet { return e.rs }

// Classify evaluates each chained segment of the command independently
// and returns the most restrictive single result (deny beats ask beats
// allow).
func (e *Engine) Classify(req Request) Result {
	best := Result{
		Decision: types.DecisionAllow,
		Reason:   fmt.Sprintf("not a %s command", e.rs.Family),
	}
	for _, seg := range SplitSegments(req.Command) {
		r := e.classifySegment(seg, req)
		if r.Decision.Restrictiveness() > best.Decision.Restrictiveness() {
			best = r
		}
	}
	return best
}

func (e *Engine) classifySegment(seg string, req Request) Result {
	tokens := strings.Fields(seg)

	idx, obfuscated := e.findInvocation(tokens)
	if idx < 0 {
		return Result{
			Decision: types.DecisionAllow,
			Reason:   fmt.Sprintf("not a %s command", e.rs.Family),
		}
	}

	// Conservative fallback: anything the classifier cannot confidently
	// parse must not be silently allowed.
	if obfuscated {
		return e.unverifiable(req, "the invocation is hidden behind escaping or substitution")
	}
	if evaluatorPresent(tokens) {
		return e.unverifiable(req, "the command is passed through a shell evaluator")
	}

	sub, next := subcommandAfter(tokens, idx)
	if sub != "" && hasExpansion(sub) {
		return e.unverifiable(req, "the sub-command comes from variable expansion")
	}
	if sub == "" && expansionAfter(tokens, idx) {
		return e.unverifiable(req, "the command line is built via variable expansion")
	}

	if sub != "" {
		sublc := strings.ToLower(sub)
		nextlc := strings.ToLower(next)
		for _, cr := range e.rules {
			if !strings.EqualFold(cr.rule.Subcommand, sublc) {
				continue
			}
			if len(cr.args) > 0 {
				if next == "" || !matchAny(cr.args, nextlc) {
					continue
				}
			}
			return e.denied(cr.rule, req)
		}
	}

	// The invocation is recognized but no deny rule fired: any such
	// command still requires human approval. A deny keyword lurking
	// outside sub-command position escalates the prompt.
	if kws := e.strayKeywords(tokens, idx, sub); len(kws) > 0 {
		return Result{
			Decision: types.DecisionAsk,
			Status:   types.StatusPendingSuspicious,
			Rule:     ruleSuspicious,
			Reason: fmt.Sprintf(
				"WARNING: Command references blocked operation (%s) but in a form that could not be automatically verified.\n\n"+
					"  Command: %s\n  Working directory: %s\n\n"+
					"This may be using variables, eval, or other indirection to run a blocked operation. Review the full command carefully before approving.",
				strings.Join(kws, ", "), req.Command, req.WorkingDir),
		}
	}

	reason := fmt.Sprintf("%s command requires approval:\n\n  Command: %s\n  Working directory: %s",
		titleCase(e.rs.Family), req.Command, req.WorkingDir)
	if e.rs.AskGuidance != "" {
		reason += "\n\n" + e.rs.AskGuidance
	}
	return Result{
		Decision: types.DecisionAsk,
		Status:   types.StatusPendingApproval,
		Rule:     ruleDefaultAsk,
		Reason:   reason,
	}
}

// findInvocation locates the tool invocation as a whole-word token. A
// token that only matches after stripping escapes or substitution
// syntax is reported as obfuscated.
func (e *Engine) findInvocation(tokens []string) (idx int, obfuscated bool) {
	for i, tok := range tokens {
		if _, ok := e.aliases[normalizeToken(tok)]; ok {
			return i, false
		}
		bare := normalizeToken(stripEscapes(strings.Trim(tok, "$(){}`")))
		if _, ok := e.aliases[bare]; ok {
			return i, true
		}
	}
	return -1, false
}

func (e *Engine) denied(r DenyRule, req Request) Result {
	guidance := r.Message
	if guidance == "" {
		guidance = e.rs.DenyGuidance
	}
	reason := fmt.Sprintf("BLOCKED: %s is not allowed.", r.Name)
	if guidance != "" {
		reason += "\n\n" + guidance
	}
	reason += fmt.Sprintf("\n\nWorking directory: %s", req.WorkingDir)
	return Result{
		Decision: types.DecisionDeny,
		Status:   types.StatusBlocked,
		Rule:     r.Name,
		Reason:   reason,
	}
}

func (e *Engine) unverifiable(req Request, cause string) Result {
	return Result{
		Decision: types.DecisionAsk,
		Status:   types.StatusPendingSuspicious,
		Rule:     ruleIndirection,
		Reason: fmt.Sprintf(
			"Command could not be statically verified; requires manual review (%s).\n\n"+
				"  Command: %s\n  Working directory: %s\n\n"+
				"Review the full command carefully before approving.",
			cause, req.Command, req.WorkingDir),
	}
}

// strayKeywords reports deny keywords appearing outside sub-command
// position. The resolved sub-command itself is excluded: it was already
// given its chance to match a deny rule.
func (e *Engine) strayKeywords(tokens []string, idx int, sub string) []string {
	subSeen := false
	present := make(map[string]struct{})
	for _, tok := range tokens[idx+1:] {
		if !subSeen && tok == sub && !isFlag(tok) && !isAssignment(tok) {
			subSeen = true
			continue
		}
		words := splitWords(tok)
		words = append(words, strings.Trim(tok, `"'`))
		for _, word := range words {
			for _, k := range e.keywords {
				if strings.EqualFold(word, k) {
					present[k] = struct{}{}
				}
			}
		}
	}

	var out []string
	for _, k := range e.keywords {
		if _, ok := present[k]; ok {
			out = append(out, k)
		}
	}
	return out
}

// subcommandAfter returns the first token after the invocation that is
// neither a flag nor a key=value assignment, plus the token after that
// (for deny rules that qualify the sub-command, e.g. `state rm`).
// Global flags preceding the sub-command must not prevent matching.
func subcommandAfter(tokens []string, idx int) (sub, next string) {
	rest := tokens[idx+1:]
	for i, tok := range rest {
		if isFlag(tok) || isAssignment(tok) {
			continue
		}
		sub = tok
		for _, t := range rest[i+1:] {
			if isFlag(t) || isAssignment(t) {
				continue
			}
			next = t
			break
		}
		return sub, next
	}
	return "", ""
}

func expansionAfter(tokens []string, idx int) bool {
	for _, tok := range tokens[idx+1:] {
		if hasExpansion(tok) {
			return true
		}
	}
	return false
}

// evaluatorPresent detects generic command evaluators (`eval`,
// `sh -c`, ...) that feed text into an execution context.
func evaluatorPresent(tokens []string) bool {
	shells := map[string]struct{}{
		"sh": {}, "bash": {}, "zsh": {}, "ksh": {}, "dash": {},
	}
	for i, tok := range tokens {
		norm := normalizeToken(tok)
		if norm == "eval" {
			return true
		}
		if _, ok := shells[norm]; ok {
			for _, t := range tokens[i+1:] {
				if t == "-c" {
					return true
				}
			}
		}
	}
	return false
}

func matchAny(globs []glob.Glob, s string) bool {
	for _, g := range globs {
		if g.Match(s) {
			return true
		}
	}
	return false
}

func splitWords(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_'
	})
}

func titleCase(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
