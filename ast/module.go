package ast

import "crispy/token"

// Module is one compiled source file: its identity (filename, the
// filesystem-safe path ID the driver derives from it), the raw source
// and token stream it was built from, and the root block whose scope is
// the global scope.
type Module struct {
	Filename string
	PathID   string
	Source   []byte
	Tokens   []token.Token
	Body     *Block
	COutPath string
}
