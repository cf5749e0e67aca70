package policy

// Builtin returns the default rulesets for the protected tool families.
// Used when no ruleset directory is configured.
func Builtin() map[string]*RuleSet {
	terraform := &RuleSet{
		Version:     1,
		Family:      "terraform",
		Description: "Guard infrastructure-provisioning commands",
		Aliases:     []string{"terraform", "tf", "tform"},
		DenyRules: []DenyRule{
			{Name: "terraform apply", Subcommand: "apply"},
			{Name: "terraform destroy", Subcommand: "destroy"},
			{Name: "terraform import", Subcommand: "import"},
			{
				Name:       "terraform state manipulation (rm/mv/push/pull)",
				Subcommand: "state",
				Args:       []string{"rm", "mv", "push", "pull"},
			},
			{Name: "terraform taint", Subcommand: "taint"},
			{Name: "terraform untaint", Subcommand: "untaint"},
			{Name: "terraform force-unlock", Subcommand: "force-unlock"},
		},
		DenyGuidance: "This command can modify infrastructure state and must go through your standard PR review workflow.",
		AskGuidance:  "This prompt ensures you review each terraform operation before execution.",
	}

	helm := &RuleSet{
		Version:     1,
		Family:      "helm",
		Description: "Guard package-deployment commands; local chart validation stays interactive",
		Aliases:     []string{"helm"},
		DenyRules: []DenyRule{
			{Name: "helm install", Subcommand: "install"},
			{Name: "helm upgrade", Subcommand: "upgrade"},
			{Name: "helm uninstall", Subcommand: "uninstall"},
			{Name: "helm delete", Subcommand: "delete"},
			{Name: "helm rollback", Subcommand: "rollback"},
			{Name: "helm test", Subcommand: "test"},
		},
		Keywords:     []string{"install", "upgrade", "uninstall", "delete", "rollback"},
		DenyGuidance: "This command deploys to or mutates a cluster and must go through your GitOps workflow (ArgoCD, Flux, or PR-driven CI/CD).\n\nFor local development, use:\n  helm template <chart>    # Render templates locally\n  helm lint <chart>        # Validate chart structure",
		AskGuidance:  "This prompt ensures you review each helm operation before execution.",
	}

	return map[string]*RuleSet{
		terraform.Family: terraform,
		helm.Family:      helm,
	}
}
