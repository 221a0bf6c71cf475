package parser

import (
	"crispy/ast"
	"crispy/token"
)

// expression is the entry point of the precedence chain: comparison
// binds loosest, then additive, then multiplicative, matching
// ast.LevelCmp/LevelAdd/LevelMul.
func (p *Parser) expression() (ast.Expression, error) {
	return p.comparison()
}

// comparison parses at most one Cmp-level operator: `a < b < c` is
// fatal rather than left-associating, unlike Add and Mul.
func (p *Parser) comparison() (ast.Expression, error) {
	left, err := p.additive()
	if err != nil {
		return nil, err
	}
	if !p.check(token.PUNCT) || !isCmpOp(p.cur().Punct) {
		return left, nil
	}
	op := p.advance()
	right, err := p.additive()
	if err != nil {
		return nil, err
	}
	result, err := p.makeBinary(op, ast.LevelCmp, left, right)
	if err != nil {
		return nil, err
	}
	if p.check(token.PUNCT) && isCmpOp(p.cur().Punct) {
		return nil, p.errorAt(p.cur(), "comparison operators do not chain")
	}
	return result, nil
}

func isCmpOp(pn token.Punct) bool {
	switch pn {
	case token.EQUAL_EQUAL, token.NOT_EQUAL, token.LESS, token.LESS_EQUAL, token.GREATER, token.GREATER_EQUAL:
		return true
	}
	return false
}

func (p *Parser) additive() (ast.Expression, error) {
	left, err := p.multiplicative()
	if err != nil {
		return nil, err
	}
	for p.check(token.PUNCT) && (p.cur().Punct == token.ADD || p.cur().Punct == token.SUB) {
		op := p.advance()
		right, err := p.multiplicative()
		if err != nil {
			return nil, err
		}
		left, err = p.makeBinary(op, ast.LevelAdd, left, right)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) multiplicative() (ast.Expression, error) {
	left, err := p.unary()
	if err != nil {
		return nil, err
	}
	for p.check(token.PUNCT) && (p.cur().Punct == token.MUL || p.cur().Punct == token.MOD) {
		op := p.advance()
		right, err := p.unary()
		if err != nil {
			return nil, err
		}
		left, err = p.makeBinary(op, ast.LevelMul, left, right)
		if err != nil {
			return nil, err
		}
	}
	return left, nil
}

func (p *Parser) unary() (ast.Expression, error) {
	if p.check(token.PUNCT) && (p.cur().Punct == token.SUB || p.cur().Punct == token.ADD) {
		op := p.advance()
		sub, err := p.unary()
		if err != nil {
			return nil, err
		}
		return p.makeUnary(op, sub), nil
	}
	return p.postfix()
}

func (p *Parser) postfix() (ast.Expression, error) {
	e, err := p.primary()
	if err != nil {
		return nil, err
	}
	for {
		switch {
		case p.checkPunct(token.LPAREN):
			e, err = p.finishCall(e)
		case p.checkPunct(token.LBRACKET):
			e, err = p.finishSubscript(e)
		default:
			return e, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

func (p *Parser) finishCall(callee ast.Expression) (ast.Expression, error) {
	p.advance() // '('
	var args []ast.Expression
	if !p.checkPunct(token.RPAREN) {
		for {
			a, err := p.expression()
			if err != nil {
				return nil, err
			}
			args = append(args, a)
			if !p.matchPunct(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.consumePunct(token.RPAREN, "expected ')' after call arguments"); err != nil {
		return nil, err
	}
	p.scope.HadSideEffects = true
	call := &ast.CallExpr{
		ExprBase: ast.ExprBase{Anchor: callee.Base().Anchor, Scope: p.scope, HasTmps: true, TmpID: p.scope.NextTemp()},
		Callee:   callee,
		Args:     args,
	}
	return call, nil
}

func (p *Parser) finishSubscript(arr ast.Expression) (ast.Expression, error) {
	p.advance() // '['
	idx, err := p.expression()
	if err != nil {
		return nil, err
	}
	if _, err := p.consumePunct(token.RBRACKET, "expected ']' after subscript index"); err != nil {
		return nil, err
	}
	sub := &ast.SubscriptExpr{
		ExprBase: ast.ExprBase{
			Anchor:   arr.Base().Anchor,
			Scope:    p.scope,
			IsLvalue: true,
			HasTmps:  arr.Base().HasTmps || idx.Base().HasTmps,
		},
		Array: arr,
		Index: idx,
	}
	return sub, nil
}

func (p *Parser) primary() (ast.Expression, error) {
	tok := p.cur()
	switch {
	case p.matchKeyword(token.KW_NULL):
		return &ast.NullExpr{ExprBase: ast.ExprBase{Anchor: tok, Scope: p.scope, IsConst: true}}, nil
	case p.matchKeyword(token.KW_TRUE):
		return &ast.BoolExpr{ExprBase: ast.ExprBase{Anchor: tok, Scope: p.scope, IsConst: true}, Value: true}, nil
	case p.matchKeyword(token.KW_FALSE):
		return &ast.BoolExpr{ExprBase: ast.ExprBase{Anchor: tok, Scope: p.scope, IsConst: true}, Value: false}, nil
	case p.check(token.INT):
		p.advance()
		return &ast.IntExpr{ExprBase: ast.ExprBase{Anchor: tok, Scope: p.scope, IsConst: true}, Value: tok.Int}, nil
	case p.check(token.STRING):
		p.advance()
		return &ast.StringExpr{ExprBase: ast.ExprBase{Anchor: tok, Scope: p.scope, IsConst: true}, Value: tok.Str}, nil
	case p.check(token.IDENT):
		p.advance()
		return &ast.VarExpr{
			ExprBase: ast.ExprBase{Anchor: tok, Scope: p.scope, IsLvalue: true},
			Ident:    tok.Ident,
		}, nil
	case p.checkPunct(token.LPAREN):
		p.advance()
		e, err := p.expression()
		if err != nil {
			return nil, err
		}
		if _, err := p.consumePunct(token.RPAREN, "expected ')' after expression"); err != nil {
			return nil, err
		}
		return e, nil
	case p.checkPunct(token.LBRACKET):
		return p.arrayLiteral()
	default:
		return nil, p.errorAt(tok, "expected an expression, found %s", tok)
	}
}

func (p *Parser) arrayLiteral() (ast.Expression, error) {
	startTok := p.advance() // '['
	var items []ast.Expression
	if !p.checkPunct(token.RBRACKET) {
		for {
			item, err := p.expression()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
			if !p.matchPunct(token.COMMA) {
				break
			}
		}
	}
	if _, err := p.consumePunct(token.RBRACKET, "expected ']' after array literal"); err != nil {
		return nil, err
	}
	arr := &ast.ArrayExpr{
		ExprBase: ast.ExprBase{Anchor: startTok, Scope: p.scope, HasTmps: true, TmpID: p.scope.NextTemp()},
		Items:    items,
	}
	return arr, nil
}

// makeUnary builds a UnaryExpr, folding it to a literal immediately when
// the operand is already a constant integer.
func (p *Parser) makeUnary(op token.Token, sub ast.Expression) ast.Expression {
	if sub.Base().IsConst {
		if i, ok := sub.(*ast.IntExpr); ok {
			v := i.Value
			if op.Punct == token.SUB {
				v = -v
			}
			return &ast.IntExpr{ExprBase: ast.ExprBase{Anchor: op, Scope: p.scope, IsConst: true}, Value: v}
		}
	}
	return &ast.UnaryExpr{
		ExprBase: ast.ExprBase{Anchor: op, Scope: p.scope, HasTmps: sub.Base().HasTmps},
		Op:       op,
		Sub:      sub,
	}
}

func isArithmeticOp(pn token.Punct) bool {
	return pn == token.ADD || pn == token.SUB || pn == token.MUL || pn == token.MOD
}

func isStringOrArray(e ast.Expression) bool {
	switch e.(type) {
	case *ast.StringExpr, *ast.ArrayExpr:
		return true
	}
	return false
}

// makeBinary builds a BinaryExpr, folding it to a literal immediately
// when both operands are already constant integers, and rejecting an
// arithmetic operator whose operand is visibly a string or array
// literal at parse time (§7: semantic, not runtime, for this case).
func (p *Parser) makeBinary(op token.Token, level ast.OpLevel, left, right ast.Expression) (ast.Expression, error) {
	if isArithmeticOp(op.Punct) && (isStringOrArray(left) || isStringOrArray(right)) {
		return nil, p.errorAt(op, "string or array operand to arithmetic operator %s", op)
	}

	if left.Base().IsConst && right.Base().IsConst {
		li, lok := left.(*ast.IntExpr)
		ri, rok := right.(*ast.IntExpr)
		if lok && rok {
			if folded, ok := foldIntOp(op.Punct, li.Value, ri.Value); ok {
				return folded(op, p.scope), nil
			}
		}
		if folded, ok := foldEqualityOp(op.Punct, left, right); ok {
			return folded(op, p.scope), nil
		}
	}
	return &ast.BinaryExpr{
		ExprBase: ast.ExprBase{Anchor: op, Scope: p.scope, HasTmps: left.Base().HasTmps || right.Base().HasTmps},
		Op:       op,
		Level:    level,
		Left:     left,
		Right:    right,
	}, nil
}

// foldIntOp evaluates a binary operator over two known integers at
// parse time, returning a constructor for the resulting literal node.
// Division is deliberately absent from the grammar (§ GLOSSARY), so
// there is no constant-fold divide-by-zero case to special-case here.
func foldIntOp(op token.Punct, l, r int64) (func(anchor token.Token, scope *ast.Scope) ast.Expression, bool) {
	switch op {
	case token.ADD:
		return intLit(l + r), true
	case token.SUB:
		return intLit(l - r), true
	case token.MUL:
		return intLit(l * r), true
	case token.MOD:
		if r == 0 {
			return nil, false
		}
		return intLit(l % r), true
	case token.EQUAL_EQUAL:
		return boolLit(l == r), true
	case token.NOT_EQUAL:
		return boolLit(l != r), true
	case token.LESS:
		return boolLit(l < r), true
	case token.LESS_EQUAL:
		return boolLit(l <= r), true
	case token.GREATER:
		return boolLit(l > r), true
	case token.GREATER_EQUAL:
		return boolLit(l >= r), true
	}
	return nil, false
}

// foldEqualityOp handles the constant-equality cases foldIntOp doesn't:
// two Bool or two Null literals compared with == or !=. Strings and
// arrays are never folded here, matching §4.2's "neither is string or
// array" carve-out.
func foldEqualityOp(op token.Punct, left, right ast.Expression) (func(token.Token, *ast.Scope) ast.Expression, bool) {
	if op != token.EQUAL_EQUAL && op != token.NOT_EQUAL {
		return nil, false
	}
	eq := func(v bool) bool {
		if op == token.EQUAL_EQUAL {
			return v
		}
		return !v
	}
	if _, ok := left.(*ast.NullExpr); ok {
		if _, ok := right.(*ast.NullExpr); ok {
			return boolLit(eq(true)), true
		}
		return nil, false
	}
	if lb, ok := left.(*ast.BoolExpr); ok {
		if rb, ok := right.(*ast.BoolExpr); ok {
			return boolLit(eq(lb.Value == rb.Value)), true
		}
	}
	return nil, false
}

func intLit(v int64) func(token.Token, *ast.Scope) ast.Expression {
	return func(anchor token.Token, scope *ast.Scope) ast.Expression {
		return &ast.IntExpr{ExprBase: ast.ExprBase{Anchor: anchor, Scope: scope, IsConst: true}, Value: v}
	}
}

func boolLit(v bool) func(token.Token, *ast.Scope) ast.Expression {
	return func(anchor token.Token, scope *ast.Scope) ast.Expression {
		return &ast.BoolExpr{ExprBase: ast.ExprBase{Anchor: anchor, Scope: scope, IsConst: true}, Value: v}
	}
}
