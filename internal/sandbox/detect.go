// Package sandbox detects whether the engine is running inside the
// designated isolated development environment. The signal is advisory:
// it annotates approval prompts, it never changes a decision.
package sandbox

import (
	"os"
	"strings"
)

// DefaultEnvVar is the process-wide signal for "running in the
// designated isolated environment".
const DefaultEnvVar = "CMDGATE_ISOLATED"

// Info describes the detected environment.
type Info struct {
	Isolated bool
	Source   string // what produced the verdict, for diagnostics
}

// containerMarkers are filesystem paths that only exist inside
// containers.
var containerMarkers = []string{
	"/.dockerenv",
	"/run/.containerenv",
}

// devcontainerEnvVars are set by common devcontainer hosts.
var devcontainerEnvVars = []string{
	"REMOTE_CONTAINERS",
	"CODESPACES",
	"DEVCONTAINER",
}

// Detect checks the explicit environment signal first, then falls back
// to container markers.
func Detect(envVar string) Info {
	if envVar == "" {
		envVar = DefaultEnvVar
	}
	if truthy(os.Getenv(envVar)) {
		return Info{Isolated: true, Source: "env:" + envVar}
	}
	for _, v := range devcontainerEnvVars {
		if truthy(os.Getenv(v)) {
			return Info{Isolated: true, Source: "env:" + v}
		}
	}
	for _, p := range containerMarkers {
		if _, err := os.Stat(p); err == nil {
			return Info{Isolated: true, Source: "marker:" + p}
		}
	}
	return Info{}
}

// Advisory returns the supplementary notice appended to ASK reasons
// when execution is happening outside the isolated environment, or ""
// when no notice is needed.
func (i Info) Advisory() string {
	if i.Isolated {
		return ""
	}
	return "NOTE: This session is running outside the designated isolated environment. Changes affect your host directly."
}

func truthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
