package types

import (
	"go/token"
	"sort"
)

// Issue represents a lint issue found in the code base.
//
// Start and End carry 1-based line and character columns; Range carries
// the byte offsets the positions were computed from.
type Issue struct {
	Rule       string
	Name       string
	Category   string
	Filename   string
	Message    string
	Suggestion string
	Note       string
	Severity   Severity
	Range      Range
	Start      token.Position
	End        token.Position
	Fixes      []Fix
}

// Fixability reports how the issue can be resolved mechanically.
func (i Issue) Fixability() Fixability {
	if len(i.Fixes) == 0 {
		return Unfixable
	}
	for _, f := range i.Fixes {
		if f.Applicability == ApplicabilitySafe {
			return FixableSafe
		}
	}
	return FixableUnsafe
}

// Key returns the deduplication identity of the issue.
func (i Issue) Key() IssueKey {
	return IssueKey{Rule: i.Rule, Range: i.Range}
}

// IssueKey is the identity used to deduplicate issues within a file.
type IssueKey struct {
	Rule  string
	Range Range
}

// Fixability classifies an issue by the fixes it carries.
type Fixability uint8

const (
	Unfixable Fixability = iota
	FixableSafe
	FixableUnsafe
)

func (f Fixability) String() string {
	switch f {
	case FixableSafe:
		return "safe"
	case FixableUnsafe:
		return "unsafe"
	default:
		return "unfixable"
	}
}

// SortIssues orders issues by file, primary range and rule code.
func SortIssues(issues []Issue) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		if a.Filename != b.Filename {
			return a.Filename < b.Filename
		}
		if a.Range.Start != b.Range.Start {
			return a.Range.Start < b.Range.Start
		}
		if a.Range.End != b.Range.End {
			return a.Range.End < b.Range.End
		}
		return a.Rule < b.Rule
	})
}
