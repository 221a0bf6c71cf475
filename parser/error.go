package parser

import (
	"fmt"
	"strings"

	"crispy/token"
)

// SyntaxError is a fatal parse error anchored to one token. Like the
// lexer, the parser never attempts recovery: the first SyntaxError ends
// the parse.
type SyntaxError struct {
	Line       int
	Column     int
	Message    string
	SourceLine string
}

func (e SyntaxError) Error() string {
	var b strings.Builder
	fmt.Fprintf(&b, "💥 parse error: line %d, column %d: %s", e.Line, e.Column, e.Message)
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

func (p *Parser) errorAt(tok token.Token, format string, args ...any) error {
	return SyntaxError{
		Line:       tok.Line,
		Column:     tok.Column,
		Message:    fmt.Sprintf(format, args...),
		SourceLine: p.lineText(tok.Line),
	}
}

func (p *Parser) lineText(line int) string {
	idx := line - 1
	if idx < 0 || idx >= len(p.lines) {
		return ""
	}
	return p.lines[idx]
}
