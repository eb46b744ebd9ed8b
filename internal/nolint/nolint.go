package nolint

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gnolang/plint/internal/syntax"
	tt "github.com/gnolang/plint/internal/types"
)

const (
	UnusedCode  = "RUF100"
	UnusedName  = "unused-noqa"
	InvalidCode = "RUF102"
	InvalidName = "invalid-noqa"
)

// keywords that open an inline directive, compared case-insensitively.
var keywords = []string{"noqa", "suppress"}

// file-level directive prefixes.
var fileTools = []string{"plint", "ruff", "flake8"}

// Code is one rule code listed by a directive.
type Code struct {
	Name  string // upper-cased, redirected
	Raw   string // as written
	Range tt.Range
}

// Directive is an inline suppression comment.
type Directive struct {
	Line  int
	Range tt.Range // from the '#' opening the directive to its last code
	// Comment is the range of the whole comment holding the directive.
	Comment tt.Range
	// Codes is empty for a blanket directive.
	Codes []Code

	matched map[string]bool
	blanket bool // blanket directive matched at least one issue
}

// Blanket reports whether the directive suppresses every rule.
func (d *Directive) Blanket() bool { return len(d.Codes) == 0 }

// Malformed is a directive that could not be parsed.
type Malformed struct {
	Range  tt.Range
	Reason string
}

// Manager holds the suppression directives of one file.
type Manager struct {
	src        []byte
	lines      *syntax.Locator
	directives map[int]*Directive
	malformed  []Malformed
	fileAll    bool
	fileCodes  map[string]struct{}
	redirect   func(string) string
}

// Option configures Parse.
type Option func(*Manager)

// WithRedirect maps deprecated codes to their current code before matching.
func WithRedirect(fn func(string) string) Option {
	return func(m *Manager) { m.redirect = fn }
}

// Parse collects the suppression directives of src. comments are the byte
// ranges of the file's comments; when nil, comments are located by a
// lightweight scan that skips string literals.
func Parse(src []byte, comments []tt.Range, opts ...Option) *Manager {
	m := &Manager{
		src:        src,
		lines:      syntax.NewLocator(src),
		directives: make(map[int]*Directive),
		fileCodes:  make(map[string]struct{}),
		redirect:   func(s string) string { return s },
	}
	for _, opt := range opts {
		opt(m)
	}
	if comments == nil {
		comments = scanComments(src)
	}
	for _, c := range comments {
		m.parseComment(c)
	}
	return m
}

func (m *Manager) normalize(code string) string {
	return m.redirect(strings.ToUpper(code))
}

func (m *Manager) parseComment(c tt.Range) {
	text := string(m.src[c.Start:c.End])
	line := m.lines.Position(c.Start).Line

	if m.parseFileDirective(c, text) {
		return
	}

	for i := 0; i < len(text); i++ {
		if text[i] != '#' {
			continue
		}
		j := skipSpaces(text, i+1)
		kw := matchKeyword(text[j:])
		if kw == "" {
			continue
		}
		end := j + len(kw)
		if end < len(text) && isLetter(text[end]) {
			// an ordinary word such as "suppressed"
			continue
		}
		d := &Directive{
			Line:    line,
			Comment: c,
			Range:   tt.NewRange(c.Start+i, c.Start+end),
			matched: make(map[string]bool),
		}
		switch {
		case end == len(text) || text[end] == ' ' || text[end] == '\t' || text[end] == '#':
			// blanket
		case text[end] == ':':
			codes, last, ok := m.parseCodes(text, end+1, c.Start)
			if !ok {
				m.malformed = append(m.malformed, Malformed{
					Range:  tt.NewRange(c.Start+i, c.Start+len(strings.TrimRight(text, " \t"))),
					Reason: fmt.Sprintf("expected a comma-separated list of codes after `%s:`", kw),
				})
				return
			}
			d.Codes = codes
			d.Range.End = c.Start + last
		default:
			m.malformed = append(m.malformed, Malformed{
				Range:  tt.NewRange(c.Start+i, c.Start+len(strings.TrimRight(text, " \t"))),
				Reason: fmt.Sprintf("expected `:` or the end of the comment after `%s`", kw),
			})
			return
		}
		m.directives[line] = d
		return
	}
}

// parseFileDirective handles `# plint: noqa` comments standing on their own
// line.
func (m *Manager) parseFileDirective(c tt.Range, text string) bool {
	lineStart := m.lines.LineStart(c.Start)
	if strings.TrimSpace(string(m.src[lineStart:c.Start])) != "" {
		return false
	}
	rest := strings.TrimSpace(strings.TrimPrefix(text, "#"))
	lower := strings.ToLower(rest)
	for _, tool := range fileTools {
		prefix := tool + ":"
		if !strings.HasPrefix(lower, prefix) {
			continue
		}
		body := strings.TrimSpace(rest[len(prefix):])
		if !strings.HasPrefix(strings.ToLower(body), "noqa") {
			return false
		}
		body = strings.TrimSpace(body[len("noqa"):])
		if body == "" {
			m.fileAll = true
			return true
		}
		if body[0] != ':' {
			return false
		}
		for _, code := range splitCodes(body[1:]) {
			m.fileCodes[m.normalize(code)] = struct{}{}
		}
		return true
	}
	return false
}

func matchKeyword(s string) string {
	for _, kw := range keywords {
		if len(s) >= len(kw) && strings.EqualFold(s[:len(kw)], kw) {
			return s[:len(kw)]
		}
	}
	return ""
}

func skipSpaces(s string, i int) int {
	for i < len(s) && (s[i] == ' ' || s[i] == '\t') {
		i++
	}
	return i
}

// parseCodes reads the list of codes starting at text[i]. Codes are
// separated by commas or whitespace; a rule name such as unused-import may be
// used in place of a code when it follows a comma or opens the list. Parsing
// stops at the first token that is neither, so trailing prose is ignored. It
// returns the offset just past the last code.
func (m *Manager) parseCodes(text string, i, base int) ([]Code, int, bool) {
	var codes []Code
	last := i
	for {
		i = skipSpaces(text, i)
		comma := len(codes) == 0
		for i < len(text) && text[i] == ',' {
			comma = true
			i = skipSpaces(text, i+1)
		}
		start := i
		for i < len(text) && isIdentChar(text[i]) {
			i++
		}
		raw := text[start:i]
		if !isCode(raw) && !(comma && isIdent(raw)) {
			break
		}
		codes = append(codes, Code{
			Name:  m.normalize(raw),
			Raw:   raw,
			Range: tt.NewRange(base+start, base+i),
		})
		last = i
	}
	return codes, last, len(codes) > 0
}

func isLetter(b byte) bool {
	return b >= 'A' && b <= 'Z' || b >= 'a' && b <= 'z'
}

func isIdentChar(b byte) bool {
	return isLetter(b) || b >= '0' && b <= '9' || b == '_' || b == '-'
}

// isCode reports whether s looks like a rule code: letters then digits.
func isCode(s string) bool {
	i := 0
	for i < len(s) && isLetter(s[i]) {
		i++
	}
	if i == 0 || i == len(s) {
		return false
	}
	for ; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// isIdent reports whether s is a code or a rule name.
func isIdent(s string) bool {
	if s == "" || !isLetter(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}

func splitCodes(text string) []string {
	fields := strings.FieldsFunc(text, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	out := fields[:0]
	for _, f := range fields {
		if isIdent(f) {
			out = append(out, f)
		}
	}
	return out
}

// Directives returns the inline directives ordered by line.
func (m *Manager) Directives() []*Directive {
	out := make([]*Directive, 0, len(m.directives))
	for _, d := range m.directives {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Line < out[j].Line })
	return out
}

// Malformed returns the directives that could not be parsed.
func (m *Manager) Malformed() []Malformed { return m.malformed }

// IsSuppressed reports whether an issue of rule on line is silenced. It
// records the match for unused-directive reporting.
func (m *Manager) IsSuppressed(line int, rule string) bool {
	rule = m.normalize(rule)
	if m.fileAll {
		return true
	}
	if _, ok := m.fileCodes[rule]; ok {
		return true
	}
	d, ok := m.directives[line]
	if !ok {
		return false
	}
	if d.Blanket() {
		d.blanket = true
		return true
	}
	for _, code := range d.Codes {
		if code.Name == rule {
			d.matched[code.Name] = true
			return true
		}
	}
	return false
}

// Filter drops the issues silenced by a directive on their starting line.
func (m *Manager) Filter(issues []tt.Issue) []tt.Issue {
	out := make([]tt.Issue, 0, len(issues))
	for _, issue := range issues {
		if m.IsSuppressed(issue.Start.Line, issue.Rule) {
			continue
		}
		out = append(out, issue)
	}
	return out
}
