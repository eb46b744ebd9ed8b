package lints

import (
	"sort"
	"strings"

	"github.com/gnolang/plint/internal/checker"
	"github.com/gnolang/plint/internal/nolint"
	"github.com/gnolang/plint/internal/trie"
	tt "github.com/gnolang/plint/internal/types"
)

// Codes of the diagnostics produced outside the rule callbacks.
const (
	IOErrorCode     = "E902"
	SyntaxErrorCode = "E999"
)

type ruleConstructor func() *checker.Rule

type ruleMap map[string]ruleConstructor

var allRuleConstructors = ruleMap{
	"E501":    newLineTooLongRule,
	"E711":    newNoneComparisonRule,
	"E741":    newAmbiguousVariableNameRule,
	"W291":    newTrailingWhitespaceRule,
	"W292":    newMissingNewlineRule,
	"W293":    newBlankLineWhitespaceRule,
	"F401":    newUnusedImportRule,
	"F403":    newImportStarUsedRule,
	"F404":    newLateFutureImportRule,
	"F405":    newImportStarUsageRule,
	"F541":    newFStringMissingPlaceholdersRule,
	"F811":    newRedefinedWhileUnusedRule,
	"F821":    newUndefinedNameRule,
	"F822":    newUndefinedExportRule,
	"F841":    newUnusedVariableRule,
	"F842":    newUnusedAnnotationRule,
	"A001":    newBuiltinVariableShadowingRule,
	"A002":    newBuiltinArgumentShadowingRule,
	"B006":    newMutableArgumentDefaultRule,
	"PLE0117": newNonlocalWithoutBindingRule,
	"PLW0602": newGlobalVariableNotAssignedRule,

	// reported by the engine, the suppression filter or the checker itself
	IOErrorCode:               metaRule(IOErrorCode, "io-error", "pycodestyle", "File could not be read", true),
	SyntaxErrorCode:           metaRule(SyntaxErrorCode, "syntax-error", "pycodestyle", "File could not be parsed", true),
	nolint.UnusedCode:         metaRule(nolint.UnusedCode, nolint.UnusedName, "ruff", "Suppression directive that silences nothing", false),
	nolint.InvalidCode:        metaRule(nolint.InvalidCode, nolint.InvalidName, "ruff", "Suppression directive that cannot be parsed", true),
	checker.InternalErrorCode: metaRule(checker.InternalErrorCode, checker.InternalErrorName, "ruff", "A rule failed while checking the file", true),
}

func metaRule(code, name, category, summary string, enabled bool) ruleConstructor {
	return func() *checker.Rule {
		return &checker.Rule{
			Code:     code,
			Name:     name,
			Category: category,
			Summary:  summary,
			Severity: tt.SeverityError,
			Default:  enabled,
		}
	}
}

// codeRedirects maps deprecated codes to their current code.
var codeRedirects = map[string]string{
	"M001": nolint.UnusedCode,
}

// Registry is the catalogue of every rule, built once.
type Registry struct {
	rules  []*checker.Rule
	byCode map[string]*checker.Rule
	byName map[string]*checker.Rule
	// codes indexes rule codes for prefix selectors.
	codes *trie.Trie
}

// NewRegistry instantiates every known rule.
func NewRegistry() *Registry {
	r := &Registry{
		byCode: make(map[string]*checker.Rule, len(allRuleConstructors)),
		byName: make(map[string]*checker.Rule, len(allRuleConstructors)),
		codes:  trie.New(),
	}
	for _, newRule := range allRuleConstructors {
		rule := newRule()
		r.rules = append(r.rules, rule)
		r.byCode[rule.Code] = rule
		r.byName[rule.Name] = rule
		r.codes.Insert(rule.Code)
	}
	sort.Slice(r.rules, func(i, j int) bool { return r.rules[i].Code < r.rules[j].Code })
	return r
}

// Rules returns every rule ordered by code.
func (r *Registry) Rules() []*checker.Rule { return r.rules }

// Lookup finds a rule by code, deprecated code or name.
func (r *Registry) Lookup(key string) (*checker.Rule, bool) {
	if rule, ok := r.byCode[r.Redirect(key)]; ok {
		return rule, true
	}
	rule, ok := r.byName[strings.ToLower(key)]
	return rule, ok
}

// Redirect maps a deprecated code or a rule name to the current code. Other
// keys are returned upper-cased.
func (r *Registry) Redirect(key string) string {
	upper := strings.ToUpper(strings.TrimSpace(key))
	if code, ok := codeRedirects[upper]; ok {
		return code
	}
	if _, ok := r.byCode[upper]; ok {
		return upper
	}
	if rule, ok := r.byName[strings.ToLower(key)]; ok {
		return rule.Code
	}
	return upper
}

// Known reports whether code names a rule of the catalogue.
func (r *Registry) Known(code string) bool {
	_, ok := r.byCode[r.Redirect(code)]
	return ok
}

// Dispatch builds the checker dispatch table for the rule set.
func (r *Registry) Dispatch(set tt.RuleSet) *checker.Dispatch {
	return checker.NewDispatch(r.rules, set)
}

// Selection reports known and enabled rules of one rule set to the
// suppression filter.
type Selection struct {
	registry *Registry
	set      tt.RuleSet
}

// Selection binds the registry to a resolved rule set.
func (r *Registry) Selection(set tt.RuleSet) Selection {
	return Selection{registry: r, set: set}
}

func (s Selection) Known(code string) bool { return s.registry.Known(code) }

func (s Selection) Enabled(code string) bool { return s.set.Enabled(s.registry.Redirect(code)) }
