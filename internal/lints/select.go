package lints

import (
	"strings"

	tt "github.com/gnolang/plint/internal/types"
)

// allSelector selects every rule.
const allSelector = "ALL"

// specificity returns how precisely selector matches code: -1 for no match,
// 0 for ALL, the prefix length for a code prefix and one more than the
// code length for a rule name or full code.
func (r *Registry) specificity(selector, code string) int {
	sel := strings.ToUpper(strings.TrimSpace(selector))
	switch {
	case sel == "":
		return -1
	case sel == allSelector:
		return 0
	case r.Redirect(selector) == code:
		return len(code) + 1
	case strings.HasPrefix(code, sel):
		return len(sel)
	}
	return -1
}

func (r *Registry) bestMatch(selectors []string, code string) int {
	best := -1
	for _, s := range selectors {
		best = max(best, r.specificity(s, code))
	}
	return best
}

// RuleSet resolves the active rule set. With no selectors, the default
// rules are enabled. A rule is enabled when its most specific select entry
// is more specific than its most specific ignore entry. overrides, keyed by
// code or name, then adjust severities and options; a severity of off
// disables the rule and any other severity enables it.
func (r *Registry) RuleSet(selected, ignored []string, overrides map[string]tt.ConfigRule) tt.RuleSet {
	set := make(tt.RuleSet)
	for _, rule := range r.rules {
		sel := -1
		if len(selected) == 0 {
			if rule.Default {
				sel = 0
			}
		} else {
			sel = r.bestMatch(selected, rule.Code)
		}
		if sel < 0 || sel <= r.bestMatch(ignored, rule.Code) {
			continue
		}
		set[rule.Code] = tt.ConfigRule{Severity: rule.Severity}
	}

	for key, cfg := range overrides {
		code := r.Redirect(key)
		if !r.Known(code) {
			continue
		}
		if cfg.Severity == tt.SeverityOff {
			delete(set, code)
			continue
		}
		set[code] = cfg
	}
	return set
}

// Without returns a copy of set with the rules matched by the selectors
// disabled. It implements per-file ignores.
func (r *Registry) Without(set tt.RuleSet, selectors []string) tt.RuleSet {
	if len(selectors) == 0 {
		return set
	}
	out := set.Clone()
	for code := range out {
		if r.bestMatch(selectors, code) >= 0 {
			delete(out, code)
		}
	}
	return out
}

// Expand returns the codes matched by selector, in code order.
func (r *Registry) Expand(selector string) []string {
	sel := strings.ToUpper(strings.TrimSpace(selector))
	switch {
	case sel == "":
		return nil
	case sel == allSelector:
		return r.codes.WithPrefix("")
	}
	if code := r.Redirect(selector); r.codes.Contains(code) {
		return []string{code}
	}
	return r.codes.WithPrefix(sel)
}

// Unknown returns the selectors matching no rule.
func (r *Registry) Unknown(selectors []string) []string {
	var out []string
	for _, s := range selectors {
		if !r.matches(s) {
			out = append(out, s)
		}
	}
	return out
}

// matches reports whether selector names or prefixes at least one rule.
func (r *Registry) matches(selector string) bool {
	sel := strings.ToUpper(strings.TrimSpace(selector))
	switch {
	case sel == "":
		return false
	case sel == allSelector:
		return true
	}
	return r.codes.Contains(r.Redirect(selector)) || r.codes.HasPrefix(sel)
}
