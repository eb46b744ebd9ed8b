package formatter

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	tt "github.com/gnolang/plint/internal/types"
)

// Format selects how issues are printed.
type Format string

const (
	FormatText    Format = "text"
	FormatConcise Format = "concise"
	FormatJSON    Format = "json"
)

// ParseFormat validates a --format value.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatText, FormatConcise, FormatJSON:
		return f, nil
	case "":
		return FormatText, nil
	}
	return "", fmt.Errorf("unknown output format %q", s)
}

// SourceLoader returns the contents of a file for snippet rendering.
type SourceLoader func(filename string) ([]byte, error)

// ReadFile loads sources from disk.
func ReadFile(filename string) ([]byte, error) { return os.ReadFile(filename) }

// Printer writes issues in one format.
type Printer struct {
	w      io.Writer
	format Format
	load   SourceLoader
	// sources memoizes loaded files by name.
	sources map[string]*SourceCode
}

// NewPrinter creates a printer. load may be nil for the concise and json
// formats.
func NewPrinter(w io.Writer, format Format, load SourceLoader) *Printer {
	if load == nil {
		load = ReadFile
	}
	return &Printer{w: w, format: format, load: load, sources: make(map[string]*SourceCode)}
}

// SetSource registers the text of filename, used instead of loading it.
func (p *Printer) SetSource(filename string, src []byte) {
	p.sources[filename] = NewSourceCode(src)
}

func (p *Printer) source(filename string) *SourceCode {
	if s, ok := p.sources[filename]; ok {
		return s
	}
	s := &SourceCode{}
	if src, err := p.load(filename); err == nil {
		s = NewSourceCode(src)
	}
	p.sources[filename] = s
	return s
}

// Print writes issues, which must be ordered by file.
func (p *Printer) Print(issues []tt.Issue) error {
	switch p.format {
	case FormatJSON:
		return p.printJSON(issues)
	case FormatConcise:
		for _, issue := range issues {
			if _, err := fmt.Fprintln(p.w, Concise(issue)); err != nil {
				return err
			}
		}
		return nil
	default:
		for start := 0; start < len(issues); {
			end := start
			for end < len(issues) && issues[end].Filename == issues[start].Filename {
				end++
			}
			text := GenerateFormattedIssue(issues[start:end], p.source(issues[start].Filename))
			if _, err := io.WriteString(p.w, text); err != nil {
				return err
			}
			start = end
		}
		return nil
	}
}

// Concise renders an issue on one line:
// "path:line:col: CODE [*] message".
func Concise(issue tt.Issue) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s:%d:%d: %s ", issue.Filename, issue.Start.Line, issue.Start.Column, ruleStyle.Sprint(issue.Rule))
	if issue.Fixability() == tt.FixableSafe {
		b.WriteString("[*] ")
	}
	b.WriteString(issue.Message)
	return b.String()
}

type jsonLocation struct {
	Row    int `json:"row"`
	Column int `json:"column"`
}

type jsonEdit struct {
	Content  string       `json:"content"`
	Location jsonLocation `json:"location"`
	End      jsonLocation `json:"end_location"`
}

type jsonFix struct {
	Applicability string     `json:"applicability"`
	Message       string     `json:"message"`
	Edits         []jsonEdit `json:"edits"`
}

type jsonIssue struct {
	Code     string       `json:"code"`
	Name     string       `json:"name"`
	Filename string       `json:"filename"`
	Message  string       `json:"message"`
	Severity string       `json:"severity"`
	Location jsonLocation `json:"location"`
	End      jsonLocation `json:"end_location"`
	Fix      *jsonFix     `json:"fix"`
}

func (p *Printer) printJSON(issues []tt.Issue) error {
	out := make([]jsonIssue, 0, len(issues))
	for _, issue := range issues {
		ji := jsonIssue{
			Code:     issue.Rule,
			Name:     issue.Name,
			Filename: issue.Filename,
			Message:  issue.Message,
			Severity: strings.ToLower(issue.Severity.String()),
			Location: jsonLocation{Row: issue.Start.Line, Column: issue.Start.Column},
			End:      jsonLocation{Row: issue.End.Line, Column: issue.End.Column},
		}
		if len(issue.Fixes) > 0 {
			ji.Fix = p.jsonFix(issue.Filename, issue.Fixes[0])
		}
		out = append(out, ji)
	}
	enc := json.NewEncoder(p.w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func (p *Printer) jsonFix(filename string, fix tt.Fix) *jsonFix {
	jf := &jsonFix{Applicability: fix.Applicability.String(), Message: fix.Title, Edits: []jsonEdit{}}
	src := p.source(filename)
	for _, e := range fix.Edits {
		jf.Edits = append(jf.Edits, jsonEdit{
			Content:  e.Content,
			Location: src.location(e.Range.Start),
			End:      src.location(e.Range.End),
		})
	}
	return jf
}

// location converts a byte offset into a 1-based row and character column,
// assuming \n line terminators.
func (s *SourceCode) location(offset int) jsonLocation {
	row := 1
	for _, line := range s.Lines {
		n := len(line) + 1
		if offset < n {
			return jsonLocation{Row: row, Column: len([]rune(line[:min(offset, len(line))])) + 1}
		}
		offset -= n
		row++
	}
	return jsonLocation{Row: row, Column: offset + 1}
}

// Summary describes the outcome of a run, in the style
// "Found 3 errors (1 fixed, 2 remaining).".
func Summary(remaining, fixed, fixable int, fixing bool) string {
	var b strings.Builder
	total := remaining + fixed
	switch {
	case total == 0:
		b.WriteString("All checks passed!\n")
		return b.String()
	case fixed > 0:
		fmt.Fprintf(&b, "Found %d %s (%d fixed, %d remaining).\n", total, plural(total, "error"), fixed, remaining)
	default:
		fmt.Fprintf(&b, "Found %d %s.\n", total, plural(total, "error"))
	}
	if fixable > 0 && !fixing {
		fmt.Fprintf(&b, "[*] %d fixable with the `fix` command.\n", fixable)
	}
	return b.String()
}

func plural(n int, word string) string {
	if n == 1 {
		return word
	}
	return word + "s"
}
