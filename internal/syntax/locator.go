package syntax

import (
	"go/token"
	"sort"
	"unicode/utf8"
)

// Locator converts byte offsets into 1-based line and character columns.
type Locator struct {
	src        []byte
	lineStarts []int
}

// NewLocator indexes the lines of src. Lines end with \n, \r\n or a bare \r.
func NewLocator(src []byte) *Locator {
	starts := []int{0}
	for i, b := range src {
		switch {
		case b == '\n':
			starts = append(starts, i+1)
		case b == '\r' && (i+1 == len(src) || src[i+1] != '\n'):
			starts = append(starts, i+1)
		}
	}
	return &Locator{src: src, lineStarts: starts}
}

// LineCount returns the number of lines. A trailing newline does not start
// a new line.
func (l *Locator) LineCount() int {
	n := len(l.lineStarts)
	if n > 1 && l.lineStarts[n-1] == len(l.src) {
		return n - 1
	}
	return n
}

// lineIndex returns the 0-based line containing offset.
func (l *Locator) lineIndex(offset int) int {
	return sort.Search(len(l.lineStarts), func(i int) bool {
		return l.lineStarts[i] > offset
	}) - 1
}

// Position returns the position of offset. Columns count characters.
func (l *Locator) Position(offset int) token.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(l.src) {
		offset = len(l.src)
	}
	line := l.lineIndex(offset)
	start := l.lineStarts[line]
	return token.Position{
		Offset: offset,
		Line:   line + 1,
		Column: utf8.RuneCount(l.src[start:offset]) + 1,
	}
}

// Line returns the byte range of the 1-based line, excluding its line
// terminator.
func (l *Locator) Line(line int) (start, end int) {
	if line < 1 || line > len(l.lineStarts) {
		return len(l.src), len(l.src)
	}
	start = l.lineStarts[line-1]
	end = len(l.src)
	if line < len(l.lineStarts) {
		end = l.lineStarts[line] - 1
	}
	if end > start && l.src[end-1] == '\r' {
		end--
	}
	return start, end
}

// LineText returns the text of the 1-based line without its terminator.
func (l *Locator) LineText(line int) string {
	start, end := l.Line(line)
	return string(l.src[start:end])
}

// LineStart returns the offset of the first byte of the line holding offset.
func (l *Locator) LineStart(offset int) int {
	return l.lineStarts[l.lineIndex(offset)]
}

// FullLineEnd returns the offset just past the line terminator of the line
// holding offset, or the end of the source.
func (l *Locator) FullLineEnd(offset int) int {
	line := l.lineIndex(offset)
	if line+1 < len(l.lineStarts) {
		return l.lineStarts[line+1]
	}
	return len(l.src)
}
