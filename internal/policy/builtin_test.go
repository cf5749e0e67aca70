package policy

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cmdgate/cmdgate/pkg/types"
)

func TestBuiltin_Valid(t *testing.T) {
	sets := Builtin()
	require.Len(t, sets, 2)
	for fam, rs := range sets {
		require.NoError(t, rs.Validate(), fam)
		assert.Equal(t, fam, rs.Family)
	}
}

func TestBuiltin_TerraformBlockedSubcommands(t *testing.T) {
	e, err := NewEngine(Builtin()["terraform"])
	require.NoError(t, err)

	denied := []string{
		"terraform apply",
		"terraform destroy",
		"terraform import x y",
		"terraform state rm x",
		"terraform state mv a b",
		"terraform state push",
		"terraform state pull",
		"terraform taint x",
		"terraform untaint x",
		"terraform force-unlock 123",
	}
	for _, cmd := range denied {
		res := e.Classify(Request{Command: cmd, WorkingDir: "/w"})
		assert.Equal(t, types.DecisionDeny, res.Decision, cmd)
	}

	for _, alias := range []string{"terraform", "tf", "tform"} {
		res := e.Classify(Request{Command: fmt.Sprintf("%s destroy", alias), WorkingDir: "/w"})
		assert.Equal(t, types.DecisionDeny, res.Decision, alias)
	}
}

func TestBuiltin_HelmBlockedSubcommands(t *testing.T) {
	e, err := NewEngine(Builtin()["helm"])
	require.NoError(t, err)

	for _, sub := range []string{"install", "upgrade", "uninstall", "delete", "rollback", "test"} {
		res := e.Classify(Request{Command: "helm " + sub + " rel", WorkingDir: "/w"})
		assert.Equal(t, types.DecisionDeny, res.Decision, sub)
	}

	for _, sub := range []string{"template", "lint", "show", "dependency", "package"} {
		res := e.Classify(Request{Command: "helm " + sub + " ./chart", WorkingDir: "/w"})
		assert.Equal(t, types.DecisionAsk, res.Decision, sub)
	}
}
