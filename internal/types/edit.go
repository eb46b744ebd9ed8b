package types

import "fmt"

// Range is a half-open byte range [Start, End) into a source file.
type Range struct {
	Start int
	End   int
}

// NewRange returns the range [start, end).
func NewRange(start, end int) Range {
	return Range{Start: start, End: end}
}

func (r Range) Len() int { return r.End - r.Start }

func (r Range) IsEmpty() bool { return r.Start == r.End }

func (r Range) Contains(offset int) bool {
	return offset >= r.Start && offset < r.End
}

// Overlaps reports whether the two ranges share at least one byte, or an
// empty range lies strictly inside the other. Ranges that only touch at a
// boundary do not overlap.
func (r Range) Overlaps(o Range) bool {
	return r.Start < o.End && o.Start < r.End
}

func (r Range) String() string {
	return fmt.Sprintf("%d..%d", r.Start, r.End)
}

// Edit replaces the bytes in Range with Content. An empty Content deletes,
// an empty Range inserts.
type Edit struct {
	Range   Range
	Content string
}

// Replacement returns an edit replacing [start, end) with content.
func Replacement(start, end int, content string) Edit {
	return Edit{Range: NewRange(start, end), Content: content}
}

// Deletion returns an edit deleting [start, end).
func Deletion(start, end int) Edit {
	return Edit{Range: NewRange(start, end)}
}

// Insertion returns an edit inserting content at offset.
func Insertion(offset int, content string) Edit {
	return Edit{Range: NewRange(offset, offset), Content: content}
}

// Applicability tells whether a fix preserves program behavior.
type Applicability uint8

const (
	ApplicabilitySafe Applicability = iota
	ApplicabilityUnsafe
)

func (a Applicability) String() string {
	if a == ApplicabilityUnsafe {
		return "unsafe"
	}
	return "safe"
}

// Fix is a group of edits applied together or not at all.
type Fix struct {
	Title         string
	Applicability Applicability
	Edits         []Edit
	// Isolation groups fixes that must not be applied in the same pass,
	// such as two deletions that could together empty a block. Zero means
	// the fix is not isolated.
	Isolation int
}

// Isolate returns a copy of f in the given isolation group.
func (f Fix) Isolate(group int) Fix {
	f.Isolation = group
	return f
}

// SafeFix builds a safe fix from the given edits.
func SafeFix(title string, edits ...Edit) Fix {
	return Fix{Title: title, Applicability: ApplicabilitySafe, Edits: edits}
}

// UnsafeFix builds an unsafe fix from the given edits.
func UnsafeFix(title string, edits ...Edit) Fix {
	return Fix{Title: title, Applicability: ApplicabilityUnsafe, Edits: edits}
}

// Equal reports whether both fixes carry the same edits in the same order.
func (f Fix) Equal(o Fix) bool {
	if len(f.Edits) != len(o.Edits) {
		return false
	}
	for i := range f.Edits {
		if f.Edits[i] != o.Edits[i] {
			return false
		}
	}
	return true
}
