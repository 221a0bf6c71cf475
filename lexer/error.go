package lexer

import (
	"fmt"
	"strings"
)

// Error is a fatal lexical error: an unknown byte, an unterminated string
// or comment, or a bad escape sequence. Lexing stops at the first Error —
// the source language's compiler never attempts multi-error recovery.
type Error struct {
	Line    int
	Column  int
	Message string
	// SourceLine is the full text of the offending line, used to render
	// the caret-annotated excerpt.
	SourceLine string
}

func (e Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "💥 lex error: line %d, column %d: %s", e.Line, e.Column, e.Message)
	if e.SourceLine != "" {
		b.WriteByte('\n')
		b.WriteString(e.SourceLine)
		b.WriteByte('\n')
		for i := 0; i < e.Column && i < len(e.SourceLine); i++ {
			if e.SourceLine[i] == '\t' {
				b.WriteByte('\t')
			} else {
				b.WriteByte(' ')
			}
		}
		b.WriteByte('^')
	}
	return b.String()
}
