package policy

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const terraformYAML = `version: 1
family: terraform
aliases: [terraform, tf]
deny_rules:
  - name: terraform apply
    subcommand: apply
  - name: terraform state manipulation
    subcommand: state
    args: [rm, mv, push, pull]
deny_guidance: "Infra changes go through PR review."
`

func writeRuleset(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeRuleset(t, dir, "terraform.yaml", terraformYAML)

	rs, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "terraform", rs.Family)
	assert.Equal(t, []string{"terraform", "tf"}, rs.Aliases)
	require.Len(t, rs.DenyRules, 2)
	assert.Equal(t, []string{"rm", "mv", "push", "pull"}, rs.DenyRules[1].Args)
}

func TestLoad_UnknownFieldRejected(t *testing.T) {
	dir := t.TempDir()
	path := writeRuleset(t, dir, "bad.yaml", `version: 1
family: x
aliases: [x]
allow_rules: []
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "allow_rules")
}

func TestLoad_InvalidRejected(t *testing.T) {
	dir := t.TempDir()
	path := writeRuleset(t, dir, "bad.yaml", "version: 1\nfamily: x\n")

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "alias")
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeRuleset(t, dir, "terraform.yaml", terraformYAML)
	writeRuleset(t, dir, "helm.yml", `version: 1
family: helm
aliases: [helm]
deny_rules:
  - name: helm install
    subcommand: install
`)
	writeRuleset(t, dir, "notes.txt", "ignored")

	sets, err := LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, sets, 2)
	assert.Equal(t, []string{"helm", "terraform"}, Families(sets))
}

func TestLoadDir_DuplicateFamily(t *testing.T) {
	dir := t.TempDir()
	writeRuleset(t, dir, "a.yaml", terraformYAML)
	writeRuleset(t, dir, "b.yaml", terraformYAML)

	_, err := LoadDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate")
}

func TestLoadDir_Empty(t *testing.T) {
	_, err := LoadDir(t.TempDir())
	require.Error(t, err)
}
