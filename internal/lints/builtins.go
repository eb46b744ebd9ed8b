package lints

import (
	"fmt"
	"slices"

	"github.com/gnolang/plint/internal/binding"
	"github.com/gnolang/plint/internal/checker"
	tt "github.com/gnolang/plint/internal/types"
)

func newBuiltinVariableShadowingRule() *checker.Rule {
	return &checker.Rule{
		Code:     "A001",
		Name:     "builtin-variable-shadowing",
		Category: "flake8-builtins",
		Summary:  "Variable shadows a Python builtin",
		Severity: tt.SeverityWarning,
		ScopeExit: func(ctx *checker.Context, scope *binding.Scope) error {
			if scope.Kind == binding.ScopeClass {
				return nil
			}
			checkBuiltinShadowing(ctx, scope, "Variable `%s` is shadowing a Python builtin",
				binding.KindAssignment, binding.KindUnpackedAssignment, binding.KindAnnotation,
				binding.KindAugmentedAssignment, binding.KindNamedExpression, binding.KindLoopVariable,
				binding.KindWithItem, binding.KindExceptHandler,
				binding.KindFunctionDefinition, binding.KindClassDefinition)
			return nil
		},
	}
}

func newBuiltinArgumentShadowingRule() *checker.Rule {
	return &checker.Rule{
		Code:     "A002",
		Name:     "builtin-argument-shadowing",
		Category: "flake8-builtins",
		Summary:  "Function argument shadows a Python builtin",
		Severity: tt.SeverityWarning,
		ScopeExit: func(ctx *checker.Context, scope *binding.Scope) error {
			if scope.Kind != binding.ScopeFunction && scope.Kind != binding.ScopeLambda {
				return nil
			}
			checkBuiltinShadowing(ctx, scope, "Function argument `%s` is shadowing a Python builtin",
				binding.KindParameter)
			return nil
		},
	}
}

// checkBuiltinShadowing reports bindings of scope whose name is a builtin.
// Names listed in the rule's ignore option are allowed.
func checkBuiltinShadowing(ctx *checker.Context, scope *binding.Scope, format string, kinds ...binding.BindingKind) {
	ignore := ctx.Config().StringsOption("ignore")
	for _, b := range ctx.Graph().Bindings(scope.ID) {
		if !slices.Contains(kinds, b.Kind) || !binding.IsBuiltin(b.Name) || slices.Contains(ignore, b.Name) {
			continue
		}
		ctx.Reportf(b.Range, fmt.Sprintf(format, b.Name))
	}
}
