package formatter

import (
	"bytes"
	"encoding/json"
	"go/token"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	tt "github.com/gnolang/plint/internal/types"
)

func sampleIssues() []tt.Issue {
	return []tt.Issue{
		{
			Rule:     "F401",
			Name:     "unused-import",
			Filename: "a.py",
			Severity: tt.SeverityWarning,
			Range:    tt.NewRange(7, 9),
			Start:    token.Position{Line: 1, Column: 8},
			End:      token.Position{Line: 1, Column: 10},
			Message:  "`os` imported but unused",
			Fixes:    []tt.Fix{tt.SafeFix("Remove unused import: `os`", tt.Deletion(0, 10))},
		},
		{
			Rule:     "F821",
			Name:     "undefined-name",
			Filename: "b.py",
			Range:    tt.NewRange(0, 1),
			Start:    token.Position{Line: 1, Column: 1},
			End:      token.Position{Line: 1, Column: 2},
			Message:  "Undefined name `y`",
		},
	}
}

func TestParseFormat(t *testing.T) {
	t.Parallel()

	for in, want := range map[string]Format{"": FormatText, "TEXT": FormatText, "concise": FormatConcise, "json": FormatJSON} {
		got, err := ParseFormat(in)
		require.NoError(t, err)
		assert.Equal(t, want, got)
	}
	_, err := ParseFormat("xml")
	assert.Error(t, err)
}

func TestPrinterConcise(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, NewPrinter(&buf, FormatConcise, nil).Print(sampleIssues()))
	assert.Equal(t, "a.py:1:8: F401 [*] `os` imported but unused\nb.py:1:1: F821 Undefined name `y`\n", buf.String())
}

func TestPrinterText(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatText, func(string) ([]byte, error) { return nil, os.ErrNotExist })
	p.SetSource("a.py", []byte("import os\n"))
	p.SetSource("b.py", []byte("y\n"))
	require.NoError(t, p.Print(sampleIssues()))

	out := buf.String()
	assert.Contains(t, out, "1 | import os\n")
	assert.Contains(t, out, "1 | y\n")
	assert.Contains(t, out, " --> b.py:1:1")
}

func TestPrinterJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	p := NewPrinter(&buf, FormatJSON, nil)
	p.SetSource("a.py", []byte("import os\n"))
	require.NoError(t, p.Print(sampleIssues()))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Len(t, decoded, 2)
	assert.Equal(t, "F401", decoded[0]["code"])
	assert.Equal(t, "warning", decoded[0]["severity"])
	assert.Equal(t, map[string]any{"row": float64(1), "column": float64(8)}, decoded[0]["location"])

	fix := decoded[0]["fix"].(map[string]any)
	assert.Equal(t, "safe", fix["applicability"])
	edits := fix["edits"].([]any)
	require.Len(t, edits, 1)
	edit := edits[0].(map[string]any)
	assert.Equal(t, map[string]any{"row": float64(1), "column": float64(1)}, edit["location"])
	assert.Equal(t, map[string]any{"row": float64(2), "column": float64(1)}, edit["end_location"])
	assert.Nil(t, decoded[1]["fix"])
}

func TestSummary(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "All checks passed!\n", Summary(0, 0, 0, false))
	assert.Equal(t, "Found 1 error.\n[*] 1 fixable with the `fix` command.\n", Summary(1, 0, 1, false))
	assert.Equal(t, "Found 3 errors (2 fixed, 1 remaining).\n", Summary(1, 2, 0, true))
}
