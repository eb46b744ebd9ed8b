package fixer

import (
	"errors"
	"fmt"
	"sort"

	tt "github.com/gnolang/plint/internal/types"
)

var (
	// ErrOverlappingEdits is returned by Apply for edits that share bytes.
	ErrOverlappingEdits = errors.New("overlapping edits")
	// ErrEditOutOfRange is returned by Apply for edits past the source end.
	ErrEditOutOfRange = errors.New("edit out of range")
)

// Options controls which fixes the resolver considers.
type Options struct {
	Mode       tt.FixMode
	Preference tt.FixPreference
	// Prefer overrides Preference per rule code.
	Prefer map[string]tt.FixPreference
}

func (o Options) preference(rule string) tt.FixPreference {
	if p, ok := o.Prefer[rule]; ok {
		return p
	}
	return o.Preference
}

// Applied pairs an issue with the fix chosen for it.
type Applied struct {
	Issue tt.Issue
	Fix   tt.Fix
}

// Resolution is the outcome of one resolver run.
type Resolution struct {
	// Edits holds every accepted edit ordered by position.
	Edits []tt.Edit
	// Applied lists the issues resolved by an accepted fix, including the
	// ones whose fix duplicated an already accepted fix.
	Applied []Applied
	// Unfixed lists the issues left as they are: no fix allowed by the
	// mode, or every candidate conflicted with an accepted fix.
	Unfixed []tt.Issue
}

// Resolve selects a conflict-free subset of fixes. Issues are visited by
// primary range start, then rule code; the first candidate fix whose edits
// overlap no accepted edit is accepted. Edits that only touch at a boundary
// do not conflict. A fix equal to an accepted one counts as applied. At
// most one fix per isolation group is accepted.
func Resolve(issues []tt.Issue, opts Options) Resolution {
	ordered := make([]tt.Issue, len(issues))
	copy(ordered, issues)
	sort.SliceStable(ordered, func(i, j int) bool {
		a, b := ordered[i], ordered[j]
		if a.Range.Start != b.Range.Start {
			return a.Range.Start < b.Range.Start
		}
		if a.Rule != b.Rule {
			return a.Rule < b.Rule
		}
		return a.Range.End < b.Range.End
	})

	var (
		res      Resolution
		accepted []tt.Fix
		isolated = make(map[int]bool)
	)
	for _, issue := range ordered {
		fix, ok := choose(issue, opts, accepted, res.Edits, isolated)
		if !ok {
			res.Unfixed = append(res.Unfixed, issue)
			continue
		}
		res.Applied = append(res.Applied, Applied{Issue: issue, Fix: fix})
		if containsFix(accepted, fix) {
			continue
		}
		accepted = append(accepted, fix)
		res.Edits = append(res.Edits, fix.Edits...)
		if fix.Isolation != 0 {
			isolated[fix.Isolation] = true
		}
	}
	sortEdits(res.Edits)
	return res
}

func choose(issue tt.Issue, opts Options, accepted []tt.Fix, edits []tt.Edit, isolated map[int]bool) (tt.Fix, bool) {
	for _, fix := range candidates(issue, opts) {
		if len(fix.Edits) == 0 {
			continue
		}
		if containsFix(accepted, fix) {
			return fix, true
		}
		if fix.Isolation != 0 && isolated[fix.Isolation] {
			continue
		}
		if !selfConsistent(fix.Edits) || conflicts(fix.Edits, edits) {
			continue
		}
		return fix, true
	}
	return tt.Fix{}, false
}

// candidates returns the fixes the mode allows, preferred applicability
// first.
func candidates(issue tt.Issue, opts Options) []tt.Fix {
	var first, second []tt.Fix
	want := tt.ApplicabilitySafe
	if opts.preference(issue.Rule) == tt.PreferUnsafe {
		want = tt.ApplicabilityUnsafe
	}
	for _, fix := range issue.Fixes {
		if !opts.Mode.Allows(fix.Applicability) {
			continue
		}
		if fix.Applicability == want {
			first = append(first, fix)
		} else {
			second = append(second, fix)
		}
	}
	return append(first, second...)
}

func containsFix(fixes []tt.Fix, fix tt.Fix) bool {
	for _, f := range fixes {
		if f.Equal(fix) {
			return true
		}
	}
	return false
}

// conflict reports whether two edits cannot both be applied. Two
// insertions at the same offset conflict because their order is undefined.
func conflict(a, b tt.Edit) bool {
	if a.Range.Overlaps(b.Range) {
		return true
	}
	return a.Range.IsEmpty() && a.Range == b.Range
}

func conflicts(edits, against []tt.Edit) bool {
	for _, e := range edits {
		for _, o := range against {
			if conflict(e, o) {
				return true
			}
		}
	}
	return false
}

func selfConsistent(edits []tt.Edit) bool {
	for i := range edits {
		for j := i + 1; j < len(edits); j++ {
			if conflict(edits[i], edits[j]) {
				return false
			}
		}
	}
	return true
}

func sortEdits(edits []tt.Edit) {
	sort.SliceStable(edits, func(i, j int) bool {
		if edits[i].Range.Start != edits[j].Range.Start {
			return edits[i].Range.Start < edits[j].Range.Start
		}
		return edits[i].Range.End < edits[j].Range.End
	})
}

// Apply splices edits into src in one pass and returns the new contents.
// src is left untouched.
func Apply(src []byte, edits []tt.Edit) ([]byte, error) {
	sorted := make([]tt.Edit, len(edits))
	copy(sorted, edits)
	sortEdits(sorted)

	size, end := len(src), 0
	for i, e := range sorted {
		if e.Range.Start < 0 || e.Range.End > len(src) || e.Range.Start > e.Range.End {
			return nil, fmt.Errorf("%w: %s in %d bytes", ErrEditOutOfRange, e.Range, len(src))
		}
		if i > 0 && (e.Range.Start < end || conflict(sorted[i-1], e)) {
			return nil, fmt.Errorf("%w: %s and %s", ErrOverlappingEdits, sorted[i-1].Range, e.Range)
		}
		end = max(end, e.Range.End)
		size += len(e.Content) - e.Range.Len()
	}

	out := make([]byte, 0, size)
	last := 0
	for _, e := range sorted {
		out = append(out, src[last:e.Range.Start]...)
		out = append(out, e.Content...)
		last = e.Range.End
	}
	return append(out, src[last:]...), nil
}
