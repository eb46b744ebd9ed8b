package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/gnolang/plint/internal/checker"
	"github.com/gnolang/plint/internal/lints"
)

func newRulesCmd(_ *rootOptions) *cobra.Command {
	var all bool
	cmd := &cobra.Command{
		Use:   "rules [code|name...]",
		Short: "List the available rules, or explain the rules matching codes, prefixes or names",
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := lints.NewRegistry()
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				for _, rule := range registry.Rules() {
					if !all && !rule.Default {
						continue
					}
					fmt.Fprintf(out, "%-8s %-34s %s\n", rule.Code, rule.Name, rule.Summary)
				}
				return nil
			}

			var rules []*checker.Rule
			for _, key := range args {
				codes := registry.Expand(key)
				if len(codes) == 0 {
					return fmt.Errorf("unknown rule %q", key)
				}
				for _, code := range codes {
					rule, _ := registry.Lookup(code)
					rules = append(rules, rule)
				}
			}
			for i, rule := range rules {
				if i > 0 {
					fmt.Fprintln(out)
				}
				explain(out, rule)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Include rules that are not enabled by default")
	return cmd
}

func explain(out io.Writer, rule *checker.Rule) {
	var b strings.Builder
	fmt.Fprintf(&b, "%s (%s)\n", rule.Name, rule.Code)
	fmt.Fprintf(&b, "  category: %s\n", rule.Category)
	fmt.Fprintf(&b, "  severity: %s\n", strings.ToLower(rule.Severity.String()))
	fmt.Fprintf(&b, "  default:  %t\n", rule.Default)
	if rule.Summary != "" {
		fmt.Fprintf(&b, "\n%s\n", rule.Summary)
	}
	_, _ = io.WriteString(out, b.String())
}
