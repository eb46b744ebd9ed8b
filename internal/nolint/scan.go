package nolint

import (
	tt "github.com/gnolang/plint/internal/types"
)

// scanComments locates `#` comments in Python source without a parser. It
// tracks single, double and triple quoted strings so that a `#` inside a
// literal is not taken for a comment.
func scanComments(src []byte) []tt.Range {
	var (
		out   []tt.Range
		quote byte // active quote character, 0 outside strings
		long  bool // triple quoted
	)
	for i := 0; i < len(src); i++ {
		b := src[i]
		if quote != 0 {
			switch {
			case b == '\\':
				i++
			case b == '\n' && !long:
				quote = 0
			case b == quote:
				if !long {
					quote = 0
				} else if i+2 < len(src) && src[i+1] == quote && src[i+2] == quote {
					quote, long = 0, false
					i += 2
				}
			}
			continue
		}
		switch b {
		case '\'', '"':
			quote = b
			if i+2 < len(src) && src[i+1] == b && src[i+2] == b {
				long = true
				i += 2
			}
		case '#':
			end := i
			for end < len(src) && src[end] != '\n' && src[end] != '\r' {
				end++
			}
			out = append(out, tt.NewRange(i, end))
			i = end
		}
	}
	return out
}
