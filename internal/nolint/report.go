package nolint

import (
	"fmt"
	"strings"

	tt "github.com/gnolang/plint/internal/types"
)

// Rules tells the reporter which codes exist and which are enabled.
type Rules interface {
	Known(code string) bool
	Enabled(code string) bool
}

// Unused re-runs the filter in reporting mode: it returns one issue for
// every directive, or directive code, that silenced nothing. It must be
// called after Filter has seen every issue of the file.
func (m *Manager) Unused(filename string, severity tt.Severity, rules Rules) []tt.Issue {
	var issues []tt.Issue
	for _, d := range m.Directives() {
		if d.Blanket() {
			if d.blanket {
				continue
			}
			issues = append(issues, m.issue(filename, severity, d.Range,
				"unused blanket `noqa` directive",
				tt.SafeFix("Remove unused `noqa` directive", m.removeDirective(d))))
			continue
		}

		var (
			unmatched, disabled, unknown []string
			kept                         []string
		)
		for _, code := range d.Codes {
			switch {
			case code.Name == UnusedCode:
				kept = append(kept, code.Raw)
			case d.matched[code.Name]:
				kept = append(kept, code.Raw)
			case !rules.Known(code.Name):
				unknown = append(unknown, code.Raw)
			case !rules.Enabled(code.Name):
				disabled = append(disabled, code.Raw)
			default:
				unmatched = append(unmatched, code.Raw)
			}
		}
		if len(unmatched)+len(disabled)+len(unknown) == 0 {
			continue
		}
		// A directive naming the unused-directive rule silences it.
		if containsCode(d.Codes, UnusedCode) {
			continue
		}

		var parts []string
		if len(unmatched) > 0 {
			parts = append(parts, "unused: "+quoteCodes(unmatched))
		}
		if len(disabled) > 0 {
			parts = append(parts, "non-enabled: "+quoteCodes(disabled))
		}
		if len(unknown) > 0 {
			parts = append(parts, "unknown: "+quoteCodes(unknown))
		}
		msg := fmt.Sprintf("unused `noqa` directive (%s)", strings.Join(parts, "; "))

		var edit tt.Edit
		if len(kept) == 0 {
			edit = m.removeDirective(d)
		} else {
			codesStart := d.Codes[0].Range.Start
			edit = tt.Replacement(codesStart, d.Range.End, strings.Join(kept, ", "))
		}
		issues = append(issues, m.issue(filename, severity, d.Range, msg,
			tt.SafeFix("Remove unused `noqa` codes", edit)))
	}
	return issues
}

// Invalid returns one issue per malformed directive.
func (m *Manager) Invalid(filename string, severity tt.Severity) []tt.Issue {
	issues := make([]tt.Issue, 0, len(m.malformed))
	for _, bad := range m.malformed {
		issue := m.issue(filename, severity, bad.Range, "invalid suppression directive: "+bad.Reason)
		issue.Rule = InvalidCode
		issue.Name = InvalidName
		issues = append(issues, issue)
	}
	return issues
}

func (m *Manager) issue(filename string, severity tt.Severity, rng tt.Range, msg string, fixes ...tt.Fix) tt.Issue {
	start := m.lines.Position(rng.Start)
	start.Filename = filename
	end := m.lines.Position(rng.End)
	end.Filename = filename
	return tt.Issue{
		Rule:     UnusedCode,
		Name:     UnusedName,
		Category: "suppression",
		Filename: filename,
		Message:  msg,
		Severity: severity,
		Range:    rng,
		Start:    start,
		End:      end,
		Fixes:    fixes,
	}
}

// removeDirective deletes the directive together with the whitespace before
// it. A comment that only held the directive goes entirely, and so does a
// line that only held the comment.
func (m *Manager) removeDirective(d *Directive) tt.Edit {
	start, end := d.Range.Start, d.Range.End
	if strings.TrimSpace(string(m.src[end:d.Comment.End])) == "" {
		end = d.Comment.End
	}
	for start > 0 && (m.src[start-1] == ' ' || m.src[start-1] == '\t') {
		start--
	}
	lineStart := m.lines.LineStart(d.Range.Start)
	if start == lineStart && end == d.Comment.End {
		return tt.Deletion(lineStart, m.lines.FullLineEnd(d.Range.Start))
	}
	return tt.Deletion(start, end)
}

func containsCode(codes []Code, name string) bool {
	for _, c := range codes {
		if c.Name == name {
			return true
		}
	}
	return false
}

func quoteCodes(codes []string) string {
	quoted := make([]string, len(codes))
	for i, c := range codes {
		quoted[i] = "`" + c + "`"
	}
	return strings.Join(quoted, ", ")
}
