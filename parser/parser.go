// Package parser implements the recursive-descent parser: it turns a
// token stream into an AST, building the scope tree as it goes and
// constant-folding arithmetic on literals as soon as both operands are
// known, exactly as the language's own compiler does it in a single
// pass rather than as a separate tree rewrite.
package parser

import (
	"strings"

	"crispy/ast"
	"crispy/token"
)

// Parser turns one module's token stream into its AST. It owns the
// scope and function ID counters for the whole module (temporary IDs
// are counted per scope, by ast.Scope.NextTemp): there is one Parser
// per compilation unit.
type Parser struct {
	tokens []token.Token
	pos    int
	lines  []string

	scope *ast.Scope

	nextScopeID int64
	nextFuncID  int64
}

// New creates a Parser over tokens, which must come from lexing src.
func New(src string, tokens []token.Token) *Parser {
	return &Parser{
		tokens: tokens,
		lines:  strings.Split(src, "\n"),
	}
}

// ParseModule parses the whole token stream as a sequence of top-level
// statements in the global scope, returning the resulting block or the
// first SyntaxError encountered.
func (p *Parser) ParseModule() (*ast.Block, error) {
	global := ast.NewScope(nil, p.nextScope())
	p.scope = global

	var stmts []ast.Stmt
	for !p.check(token.EOF) {
		st, err := p.statement()
		if err != nil {
			return nil, err
		}
		stmts = append(stmts, st)
	}
	return &ast.Block{Stmts: stmts, Scope: global}, nil
}

func (p *Parser) nextScope() int64 {
	id := p.nextScopeID
	p.nextScopeID++
	return id
}

func (p *Parser) nextFunc() int64 {
	id := p.nextFuncID
	p.nextFuncID++
	return id
}

// --- token cursor helpers ---

func (p *Parser) cur() token.Token  { return p.tokens[p.pos] }
func (p *Parser) prev() token.Token { return p.tokens[p.pos-1] }

func (p *Parser) advance() token.Token {
	t := p.cur()
	if t.Kind != token.EOF {
		p.pos++
	}
	return t
}

func (p *Parser) check(k token.Kind) bool { return p.cur().Kind == k }

func (p *Parser) checkKeyword(kw token.Keyword) bool {
	return p.check(token.KEYWORD) && p.cur().Keyword == kw
}

func (p *Parser) checkPunct(pn token.Punct) bool {
	return p.check(token.PUNCT) && p.cur().Punct == pn
}

func (p *Parser) matchKeyword(kw token.Keyword) bool {
	if p.checkKeyword(kw) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) matchPunct(pn token.Punct) bool {
	if p.checkPunct(pn) {
		p.advance()
		return true
	}
	return false
}

func (p *Parser) consumePunct(pn token.Punct, msg string) (token.Token, error) {
	if !p.checkPunct(pn) {
		return token.Token{}, p.errorAt(p.cur(), "%s, found %s", msg, p.cur())
	}
	return p.advance(), nil
}

func (p *Parser) consumeKeyword(kw token.Keyword, msg string) (token.Token, error) {
	if !p.checkKeyword(kw) {
		return token.Token{}, p.errorAt(p.cur(), "%s, found %s", msg, p.cur())
	}
	return p.advance(), nil
}

func (p *Parser) consumeIdent(msg string) (token.Token, error) {
	if !p.check(token.IDENT) {
		return token.Token{}, p.errorAt(p.cur(), "%s, found %s", msg, p.cur())
	}
	return p.advance(), nil
}

// --- statements ---

func (p *Parser) statement() (ast.Stmt, error) {
	switch {
	case p.checkKeyword(token.KW_VAR):
		return p.varDeclaration()
	case p.checkKeyword(token.KW_FUNCTION):
		return p.funcDeclaration()
	case p.checkKeyword(token.KW_PRINT):
		return p.printStatement()
	case p.checkKeyword(token.KW_IF):
		return p.ifStatement()
	case p.checkKeyword(token.KW_WHILE):
		return p.whileStatement()
	case p.checkKeyword(token.KW_RETURN):
		return p.returnStatement()
	default:
		return p.assignOrCallStatement()
	}
}

func (p *Parser) blockBody() (*ast.Block, error) {
	if _, err := p.consumePunct(token.LBRACE, "expected '{'"); err != nil {
		return nil, err
	}
	scope := ast.NewScope(p.scope, p.nextScope())
	prev := p.scope
	p.scope = scope

	var stmts []ast.Stmt
	for !p.checkPunct(token.RBRACE) && !p.check(token.EOF) {
		st, err := p.statement()
		if err != nil {
			p.scope = prev
			return nil, err
		}
		stmts = append(stmts, st)
	}
	if _, err := p.consumePunct(token.RBRACE, "expected '}'"); err != nil {
		p.scope = prev
		return nil, err
	}
	p.scope = prev
	return &ast.Block{Stmts: stmts, Scope: scope}, nil
}

func (p *Parser) varDeclaration() (ast.Stmt, error) {
	startTok, _ := p.consumeKeyword(token.KW_VAR, "expected 'var'")
	nameTok, err := p.consumeIdent("expected variable name")
	if err != nil {
		return nil, err
	}

	hadEarlierSideEffect := p.scope.HadSideEffects

	var init ast.Expression
	if p.matchPunct(token.ASSIGN) {
		init, err = p.expression()
		if err != nil {
			return nil, err
		}
	}

	semi, err := p.consumePunct(token.SEMICOLON, "expected ';' after variable declaration")
	if err != nil {
		return nil, err
	}

	decl := &ast.Decl{Ident: nameTok.Ident, IdentTok: nameTok, Init: init, End: semi}
	if !p.scope.Declare(decl) {
		return nil, p.errorAt(nameTok, "%q is already declared in this scope", nameTok.Ident.Name)
	}

	isConst := init == nil || init.Base().IsConst
	decl.InitDeferred = hadEarlierSideEffect || !isConst

	return &ast.VarDeclStmt{StmtBase: ast.StmtBase{Start: startTok, End: semi}, Decl: decl}, nil
}

func (p *Parser) funcDeclaration() (ast.Stmt, error) {
	startTok, _ := p.consumeKeyword(token.KW_FUNCTION, "expected 'function'")
	nameTok, err := p.consumeIdent("expected function name")
	if err != nil {
		return nil, err
	}

	decl := &ast.Decl{
		Ident:        nameTok.Ident,
		IdentTok:     nameTok,
		IsFunction:   true,
		InitDeferred: true,
		FuncID:       p.nextFunc(),
	}
	if !p.scope.Declare(decl) {
		return nil, p.errorAt(nameTok, "%q is already declared in this scope", nameTok.Ident.Name)
	}

	if _, err := p.consumePunct(token.LPAREN, "expected '(' after function name"); err != nil {
		return nil, err
	}

	bodyScope := ast.NewScope(p.scope, p.nextScope())
	bodyScope.HostingFunc = decl

	var params []*ast.Decl
	if !p.checkPunct(token.RPAREN) {
		for {
			pTok, err := p.consumeIdent("expected parameter name")
			if err != nil {
				return nil, err
			}
			pd := &ast.Decl{Ident: pTok.Ident, IdentTok: pTok, IsParameter: true}
			if !bodyScope.Declare(pd) {
				return nil, p.errorAt(pTok, "duplicate parameter name %q", pTok.Ident.Name)
			}
			params = append(params, pd)
			if !p.matchPunct(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.consumePunct(token.RPAREN, "expected ')' after parameter list"); err != nil {
		return nil, err
	}
	decl.Params = params

	// The declaration is complete as of here: the body may call the
	// function recursively without tripping the "declared later" check,
	// since that check only looks at textual position against End.
	decl.End = p.cur()

	prevScope := p.scope
	p.scope = bodyScope
	if _, err := p.consumePunct(token.LBRACE, "expected '{' to start function body"); err != nil {
		p.scope = prevScope
		return nil, err
	}
	var stmts []ast.Stmt
	for !p.checkPunct(token.RBRACE) && !p.check(token.EOF) {
		st, err := p.statement()
		if err != nil {
			p.scope = prevScope
			return nil, err
		}
		stmts = append(stmts, st)
	}
	rbrace, err := p.consumePunct(token.RBRACE, "expected '}' to close function body")
	p.scope = prevScope
	if err != nil {
		return nil, err
	}

	decl.Body = &ast.Block{Stmts: stmts, Scope: bodyScope}

	return &ast.FuncDeclStmt{StmtBase: ast.StmtBase{Start: startTok, End: rbrace}, Decl: decl}, nil
}

func (p *Parser) printStatement() (ast.Stmt, error) {
	startTok, _ := p.consumeKeyword(token.KW_PRINT, "expected 'print'")
	var values []ast.Expression
	for {
		v, err := p.expression()
		if err != nil {
			return nil, err
		}
		values = append(values, v)
		if !p.matchPunct(token.COMMA) {
			break
		}
	}
	semi, err := p.consumePunct(token.SEMICOLON, "expected ';' after print statement")
	if err != nil {
		return nil, err
	}
	return &ast.PrintStmt{StmtBase: ast.StmtBase{Start: startTok, End: semi}, Values: values}, nil
}

func (p *Parser) returnStatement() (ast.Stmt, error) {
	startTok, _ := p.consumeKeyword(token.KW_RETURN, "expected 'return'")
	var value ast.Expression
	if !p.checkPunct(token.SEMICOLON) {
		v, err := p.expression()
		if err != nil {
			return nil, err
		}
		value = v
	}
	semi, err := p.consumePunct(token.SEMICOLON, "expected ';' after return statement")
	if err != nil {
		return nil, err
	}
	return &ast.ReturnStmt{StmtBase: ast.StmtBase{Start: startTok, End: semi}, Value: value}, nil
}

func (p *Parser) ifStatement() (ast.Stmt, error) {
	startTok, _ := p.consumeKeyword(token.KW_IF, "expected 'if'")
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.blockBody()
	if err != nil {
		return nil, err
	}

	end := p.prev()

	var elseBlock *ast.Block
	if p.matchKeyword(token.KW_ELSE) {
		b, err := p.blockBody()
		if err != nil {
			return nil, err
		}
		elseBlock = b
		end = p.prev()
	}

	return &ast.IfStmt{StmtBase: ast.StmtBase{Start: startTok, End: end}, Cond: cond, Body: body, Else: elseBlock}, nil
}

func (p *Parser) whileStatement() (ast.Stmt, error) {
	startTok, _ := p.consumeKeyword(token.KW_WHILE, "expected 'while'")
	cond, err := p.expression()
	if err != nil {
		return nil, err
	}
	body, err := p.blockBody()
	if err != nil {
		return nil, err
	}
	return &ast.WhileStmt{StmtBase: ast.StmtBase{Start: startTok, End: p.prev()}, Cond: cond, Body: body}, nil
}

func (p *Parser) assignOrCallStatement() (ast.Stmt, error) {
	startTok := p.cur()
	target, err := p.expression()
	if err != nil {
		return nil, err
	}

	if p.matchPunct(token.ASSIGN) {
		// Whether target is actually an l-value is an analyzer concern
		// (§4.3), not a parse-time one: the grammar alone can't tell a
		// bad target from a not-yet-resolved one.
		value, err := p.expression()
		if err != nil {
			return nil, err
		}
		semi, err := p.consumePunct(token.SEMICOLON, "expected ';' after assignment")
		if err != nil {
			return nil, err
		}
		return &ast.AssignStmt{StmtBase: ast.StmtBase{Start: startTok, End: semi}, Target: target, Value: value}, nil
	}

	if _, ok := target.(*ast.CallExpr); !ok {
		return nil, p.errorAt(startTok, "expected a statement")
	}
	semi, err := p.consumePunct(token.SEMICOLON, "expected ';' after call statement")
	if err != nil {
		return nil, err
	}
	return &ast.CallStmt{StmtBase: ast.StmtBase{Start: startTok, End: semi}, Call: target}, nil
}
