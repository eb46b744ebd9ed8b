package nolint

import (
	"go/token"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tt "github.com/gnolang/plint/internal/types"
)

func issueAt(rule string, line int) tt.Issue {
	return tt.Issue{Rule: rule, Start: token.Position{Line: line, Column: 1}}
}

func rules(issues []tt.Issue) []string {
	out := make([]string, 0, len(issues))
	for _, i := range issues {
		out = append(out, i.Rule)
	}
	return out
}

type fakeRules struct {
	known   map[string]bool
	enabled map[string]bool
}

func (f fakeRules) Known(code string) bool   { return f.known[code] }
func (f fakeRules) Enabled(code string) bool { return f.enabled[code] }

func allRules(codes ...string) fakeRules {
	f := fakeRules{known: map[string]bool{}, enabled: map[string]bool{}}
	for _, c := range codes {
		f.known[c] = true
		f.enabled[c] = true
	}
	return f
}

func TestFilterByCode(t *testing.T) {
	t.Parallel()

	src := []byte("x = 1  # suppress: RULE_A\ny = 2  # suppress\nz = 3\n")
	m := Parse(src, nil)

	issues := []tt.Issue{
		issueAt("RULE_A", 1),
		issueAt("RULE_B", 1),
		issueAt("RULE_A", 2),
		issueAt("RULE_B", 2),
		issueAt("RULE_A", 3),
	}
	kept := m.Filter(issues)
	require.Len(t, kept, 2)
	assert.Equal(t, "RULE_B", kept[0].Rule)
	assert.Equal(t, 1, kept[0].Start.Line)
	assert.Equal(t, "RULE_A", kept[1].Rule)
	assert.Equal(t, 3, kept[1].Start.Line)
}

func TestParseDirectives(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		src     string
		blanket bool
		codes   []string
	}{
		{"blanket", "x = 1  # noqa\n", true, nil},
		{"blanket uppercase", "x = 1  # NOQA\n", true, nil},
		{"blanket with prose", "x = 1  # noqa this is fine\n", true, nil},
		{"single code", "x = 1  # noqa: F401\n", false, []string{"F401"}},
		{"lower case code", "x = 1  # noqa: f401\n", false, []string{"F401"}},
		{"spaces around commas", "x = 1  # noqa:F401 ,  E501,W291\n", false, []string{"F401", "E501", "W291"}},
		{"space separated", "x = 1  # noqa: F401 E501\n", false, []string{"F401", "E501"}},
		{"trailing prose", "x = 1  # noqa: F401 because reasons\n", false, []string{"F401"}},
		{"after another comment", "x = 1  # type: ignore # noqa: E501\n", false, []string{"E501"}},
		{"rule name", "x = 1  # suppress: unused-import\n", false, []string{"UNUSED-IMPORT"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			m := Parse([]byte(tc.src), nil)
			require.Empty(t, m.Malformed())
			ds := m.Directives()
			require.Len(t, ds, 1)
			assert.Equal(t, 1, ds[0].Line)
			assert.Equal(t, tc.blanket, ds[0].Blanket())
			var got []string
			for _, c := range ds[0].Codes {
				got = append(got, c.Name)
			}
			assert.Equal(t, tc.codes, got)
		})
	}
}

func TestNotADirective(t *testing.T) {
	t.Parallel()

	src := []byte(`s = "# noqa"
t = '''
# noqa
'''
# noqanything here
# suppressed warnings are listed below
`)
	m := Parse(src, nil)
	assert.Empty(t, m.Directives())
	assert.Empty(t, m.Malformed())
}

func TestMalformedDirectives(t *testing.T) {
	t.Parallel()

	src := []byte("x = 1  # noqa:\ny = 2  # noqa: ,,\nz = 3  # noqa;F401\n")
	m := Parse(src, nil)
	assert.Empty(t, m.Directives())
	require.Len(t, m.Malformed(), 3)

	issues := m.Invalid("bad.py", tt.SeverityWarning)
	require.Len(t, issues, 3)
	for i, issue := range issues {
		assert.Equal(t, InvalidCode, issue.Rule)
		assert.Equal(t, InvalidName, issue.Name)
		assert.Equal(t, i+1, issue.Start.Line)
		assert.Equal(t, "bad.py", issue.Filename)
	}
	assert.Contains(t, issues[2].Message, "expected `:`")
}

func TestFileLevelDirective(t *testing.T) {
	t.Parallel()

	m := Parse([]byte("# plint: noqa\nimport os\n"), nil)
	assert.Empty(t, m.Filter([]tt.Issue{issueAt("F401", 2), issueAt("E501", 2)}))

	m = Parse([]byte("# ruff: noqa: F401\nimport os\n"), nil)
	assert.Equal(t, []string{"E501"}, rules(m.Filter([]tt.Issue{issueAt("F401", 2), issueAt("E501", 2)})))

	// Not on its own line: an ordinary trailing comment.
	m = Parse([]byte("import os  # plint: noqa\n"), nil)
	assert.Len(t, m.Filter([]tt.Issue{issueAt("F401", 1)}), 1)
}

func TestRedirect(t *testing.T) {
	t.Parallel()

	redirect := func(code string) string {
		switch code {
		case "M001":
			return "RUF100"
		case "UNUSED-IMPORT":
			return "F401"
		}
		return code
	}
	m := Parse([]byte("import os  # noqa: unused-import\nx = 1  # noqa: m001\n"), nil, WithRedirect(redirect))
	assert.True(t, m.IsSuppressed(1, "F401"))
	assert.True(t, m.IsSuppressed(2, "RUF100"))
	assert.False(t, m.IsSuppressed(2, "F401"))
}

func TestUnusedDirectives(t *testing.T) {
	t.Parallel()

	src := "import os  # noqa\n" +
		"import sys  # noqa: F401, E501\n" +
		"x = 1  # noqa: X999, W291\n" +
		"y = 2  # noqa: F401\n" +
		"z = 3  # noqa: E501, RUF100\n" +
		"# noqa: F401\n"
	m := Parse([]byte(src), nil)
	r := allRules("F401", "E501", "W291", "RUF100")
	r.enabled["W291"] = false

	m.Filter([]tt.Issue{issueAt("F401", 2), issueAt("F401", 4)})
	issues := m.Unused("a.py", tt.SeverityWarning, r)

	require.Len(t, issues, 4)
	assert.Equal(t, 1, issues[0].Start.Line)
	assert.Equal(t, "unused blanket `noqa` directive", issues[0].Message)
	assert.Equal(t, 2, issues[1].Start.Line)
	assert.Equal(t, "unused `noqa` directive (unused: `E501`)", issues[1].Message)
	assert.Equal(t, 3, issues[2].Start.Line)
	assert.Equal(t, "unused `noqa` directive (non-enabled: `W291`; unknown: `X999`)", issues[2].Message)
	assert.Equal(t, 6, issues[3].Start.Line)
	for _, issue := range issues {
		assert.Equal(t, UnusedCode, issue.Rule)
		assert.Equal(t, tt.FixableSafe, issue.Fixability())
	}

	// blanket directive after code: strip it with its leading spaces
	edit := issues[0].Fixes[0].Edits[0]
	assert.Equal(t, "", edit.Content)
	assert.Equal(t, "  # noqa", src[edit.Range.Start:edit.Range.End])

	// partially used: keep the used codes
	edit = issues[1].Fixes[0].Edits[0]
	assert.Equal(t, "F401", edit.Content)
	assert.Equal(t, "F401, E501", src[edit.Range.Start:edit.Range.End])

	// directive standing alone: remove the whole line
	edit = issues[3].Fixes[0].Edits[0]
	assert.Equal(t, "# noqa: F401\n", src[edit.Range.Start:edit.Range.End])
}

func TestScanComments(t *testing.T) {
	t.Parallel()

	src := []byte("a = 'x#y'  # one\nb = \"\"\"\n# not\n\"\"\"\nc = \"\\\"#\"  # two\n")
	got := scanComments(src)
	require.Len(t, got, 2)
	assert.Equal(t, "# one", string(src[got[0].Start:got[0].End]))
	assert.Equal(t, "# two", string(src[got[1].Start:got[1].End]))
}

func TestFilterCarriageReturnLines(t *testing.T) {
	t.Parallel()

	m := Parse([]byte("import os\rimport sys  # noqa: F401\r"), nil)
	kept := m.Filter([]tt.Issue{issueAt("F401", 1), issueAt("F401", 2)})
	require.Len(t, kept, 1)
	assert.Equal(t, 1, kept[0].Start.Line)
}
