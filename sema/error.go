package sema

import (
	"fmt"
	"strings"

	"crispy/token"
)

// Error is a fatal semantic error: redeclaration (caught earlier, during
// parsing), a forward reference, an illegal assignment target, a
// top-level return, or similar. Analysis never recovers from one; the
// first Error found ends the pass.
type Error struct {
	Line       int
	Column     int
	Message    string
	SourceLine string
}

func (e Error) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "💥 semantic error: line %d, column %d: %s", e.Line, e.Column, e.Message)
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

func (a *Analyzer) fatalf(tok token.Token, format string, args ...any) error {
	return Error{
		Line:       tok.Line,
		Column:     tok.Column,
		Message:    fmt.Sprintf(format, args...),
		SourceLine: a.lineText(tok.Line),
	}
}

func (a *Analyzer) lineText(line int) string {
	idx := line - 1
	if idx < 0 || idx >= len(a.lines) {
		return ""
	}
	return a.lines[idx]
}
