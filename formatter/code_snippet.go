package formatter

import (
	"strings"

	tt "github.com/gnolang/plint/internal/types"
)

// SourceCode holds the lines of a file, without line terminators.
type SourceCode struct {
	Lines []string
}

// NewSourceCode splits src on \n, \r\n and \r.
func NewSourceCode(src []byte) *SourceCode {
	text := strings.ReplaceAll(string(src), "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	text = strings.TrimSuffix(text, "\n")
	if text == "" {
		return &SourceCode{}
	}
	return &SourceCode{Lines: strings.Split(text, "\n")}
}

// GetCodeSnippet returns the lines spanned by issue.
func GetCodeSnippet(issue tt.Issue, snippet *SourceCode) string {
	startLine := max(issue.Start.Line-1, 0)
	endLine := min(issue.End.Line, len(snippet.Lines))
	if startLine >= endLine {
		return ""
	}
	return strings.Join(snippet.Lines[startLine:endLine], "\n")
}
