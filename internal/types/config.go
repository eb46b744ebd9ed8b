package types

import (
	"fmt"
	"sort"
	"strings"

	"fortio.org/safecast"
)

type Severity int

const (
	SeverityError Severity = iota
	SeverityWarning
	SeverityInfo
	SeverityOff
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	case SeverityInfo:
		return "INFO"
	case SeverityOff:
		return "OFF"
	default:
		return "UNKNOWN"
	}
}

// ParseSeverity parses a severity name, case-insensitively.
func ParseSeverity(s string) (Severity, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "error", "":
		return SeverityError, nil
	case "warning", "warn":
		return SeverityWarning, nil
	case "info":
		return SeverityInfo, nil
	case "off", "none", "disabled":
		return SeverityOff, nil
	}
	return SeverityError, fmt.Errorf("unknown severity %q", s)
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(strings.ToLower(s.String())), nil
}

func (s *Severity) UnmarshalText(text []byte) error {
	v, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// FixMode selects which fixes the resolver may apply.
type FixMode uint8

const (
	FixNone FixMode = iota
	FixSafe
	FixAll
)

func (m FixMode) String() string {
	switch m {
	case FixSafe:
		return "safe"
	case FixAll:
		return "all"
	default:
		return "none"
	}
}

func (m FixMode) MarshalText() ([]byte, error) { return []byte(m.String()), nil }

func (m *FixMode) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "none", "", "off":
		*m = FixNone
	case "safe":
		*m = FixSafe
	case "all", "unsafe":
		*m = FixAll
	default:
		return fmt.Errorf("unknown fix mode %q", text)
	}
	return nil
}

// Allows reports whether a fix with the given applicability may be applied.
func (m FixMode) Allows(a Applicability) bool {
	switch m {
	case FixSafe:
		return a == ApplicabilitySafe
	case FixAll:
		return true
	default:
		return false
	}
}

// FixPreference decides which candidate fix is tried first when a
// diagnostic carries both a safe and an unsafe fix.
type FixPreference uint8

const (
	PreferSafe FixPreference = iota
	PreferUnsafe
)

func (p FixPreference) String() string {
	if p == PreferUnsafe {
		return "unsafe"
	}
	return "safe"
}

func (p FixPreference) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

func (p *FixPreference) UnmarshalText(text []byte) error {
	switch strings.ToLower(strings.TrimSpace(string(text))) {
	case "safe", "":
		*p = PreferSafe
	case "unsafe":
		*p = PreferUnsafe
	default:
		return fmt.Errorf("unknown fix preference %q", text)
	}
	return nil
}

// ConfigRule is the resolved configuration of a single rule.
type ConfigRule struct {
	Severity Severity       `yaml:"severity" toml:"severity" msgpack:"severity"`
	Options  map[string]any `yaml:"options,omitempty" toml:"options" msgpack:"options"`
	// Fix overrides the applicability of every fix the rule emits
	// ("safe" or "unsafe"). Empty keeps the rule's own classification.
	Fix string `yaml:"fix,omitempty" toml:"fix" msgpack:"fix"`
	// Prefer overrides the global fix preference for this rule.
	Prefer string `yaml:"prefer,omitempty" toml:"prefer" msgpack:"prefer"`
}

func (c ConfigRule) Enabled() bool { return c.Severity != SeverityOff }

// IntOption returns the named option as an int, or def when it is absent,
// not numeric or out of the int range. Floats must hold a whole number.
func (c ConfigRule) IntOption(name string, def int) int {
	v, ok := c.Options[name]
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int8:
		return intOr(n, def)
	case int16:
		return intOr(n, def)
	case int32:
		return intOr(n, def)
	case int64:
		return intOr(n, def)
	case uint:
		return intOr(n, def)
	case uint8:
		return intOr(n, def)
	case uint16:
		return intOr(n, def)
	case uint32:
		return intOr(n, def)
	case uint64:
		return intOr(n, def)
	case float64:
		if i, err := safecast.Convert[int](n); err == nil {
			return i
		}
	}
	return def
}

func intOr[N safecast.Integer](n N, def int) int {
	i, err := safecast.Conv[int](n)
	if err != nil {
		return def
	}
	return i
}

// StringsOption returns the named option as a list of strings.
func (c ConfigRule) StringsOption(name string) []string {
	v, ok := c.Options[name]
	if !ok {
		return nil
	}
	switch list := v.(type) {
	case []string:
		return list
	case []any:
		out := make([]string, 0, len(list))
		for _, item := range list {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		return []string{list}
	}
	return nil
}

// RuleSet is the active rule set resolved for one file path, keyed by rule
// code. Rules that are absent or whose severity is off are disabled.
type RuleSet map[string]ConfigRule

func (rs RuleSet) Enabled(code string) bool {
	r, ok := rs[code]
	return ok && r.Enabled()
}

// Codes returns the enabled rule codes in sorted order.
func (rs RuleSet) Codes() []string {
	codes := make([]string, 0, len(rs))
	for code, r := range rs {
		if r.Enabled() {
			codes = append(codes, code)
		}
	}
	sort.Strings(codes)
	return codes
}

// Clone returns a shallow copy of the rule set.
func (rs RuleSet) Clone() RuleSet {
	out := make(RuleSet, len(rs))
	for k, v := range rs {
		out[k] = v
	}
	return out
}
