package lints

import (
	"fmt"

	"github.com/gnolang/plint/internal/binding"
	"github.com/gnolang/plint/internal/checker"
	tt "github.com/gnolang/plint/internal/types"
)

func newNonlocalWithoutBindingRule() *checker.Rule {
	return &checker.Rule{
		Code:     "PLE0117",
		Name:     "nonlocal-without-binding",
		Category: "pylint",
		Summary:  "Nonlocal name has no binding in an enclosing function",
		Severity: tt.SeverityError,
		Default:  true,
		ScopeExit: func(ctx *checker.Context, scope *binding.Scope) error {
			for _, b := range ctx.Graph().Bindings(scope.ID) {
				if b.Kind != binding.KindNonlocal || b.Shadows.IsValid() {
					continue
				}
				ctx.Reportf(b.Range, fmt.Sprintf("Nonlocal name `%s` found without binding", b.Name))
			}
			return nil
		},
	}
}

func newGlobalVariableNotAssignedRule() *checker.Rule {
	return &checker.Rule{
		Code:     "PLW0602",
		Name:     "global-variable-not-assigned",
		Category: "pylint",
		Summary:  "Global statement for a name never assigned in the scope",
		Severity: tt.SeverityWarning,
		ScopeExit: func(ctx *checker.Context, scope *binding.Scope) error {
			for _, b := range ctx.Graph().Bindings(scope.ID) {
				if b.Kind != binding.KindGlobal || b.Assigned {
					continue
				}
				ctx.Reportf(b.Range, fmt.Sprintf("Using global for `%s` but no assignment is done", b.Name))
			}
			return nil
		},
	}
}
