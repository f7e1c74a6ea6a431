// Package parser is a small hand-written recursive-descent parser over
// pkg/lexer's token stream. It is deliberately the thinnest package in this
// repository: spec.md treats the lexer/parser pair as a replaceable external
// black box whose only contract is "produces the AST shape in spec.md §3".
package parser

import (
	"strconv"

	"github.com/minilang/mlc/pkg/ast"
	"github.com/minilang/mlc/pkg/diagnostics"
	"github.com/minilang/mlc/pkg/lexer"
)

// parseErrorf builds a fatal parse-stage diagnostic anchored to line.
func parseErrorf(line int, format string, args ...any) error {
	return diagnostics.Newf("parse error", line, format, args...)
}

// Parse tokenizes and parses source text, returning the Root AST node.
func Parse(source string) (*ast.Node, error) {
	tokens, err := lexer.Lex(source)
	if err != nil {
		return nil, err
	}
	p := &parser{tokens: tokens}
	return p.parseProgram()
}

type parser struct {
	tokens []lexer.Token
	pos    int
}

func (p *parser) peek() lexer.Token {
	return p.tokens[p.pos]
}

func (p *parser) advance() lexer.Token {
	tok := p.tokens[p.pos]
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *parser) at(typ lexer.TokenType, value string) bool {
	tok := p.peek()
	return tok.Type == typ && tok.Value == value
}

func (p *parser) expect(typ lexer.TokenType, value string) (lexer.Token, error) {
	tok := p.peek()
	if tok.Type != typ || tok.Value != value {
		return tok, parseErrorf(tok.Line, "expected %q, got %q", value, tok.Value)
	}
	return p.advance(), nil
}

func (p *parser) parseProgram() (*ast.Node, error) {
	root := ast.New(ast.Root, 1)
	for p.peek().Type != lexer.TokenEOF {
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		root.Children = append(root.Children, stmt)
	}
	return root, nil
}

// parseBlock parses a `{ stmt* }` body, used by If/While.
func (p *parser) parseBlock() (*ast.Node, error) {
	openTok, err := p.expect(lexer.TokenPunc, "{")
	if err != nil {
		return nil, err
	}
	block := ast.New(ast.Block, openTok.Line)
	for !p.at(lexer.TokenPunc, "}") {
		if p.peek().Type == lexer.TokenEOF {
			return nil, parseErrorf(p.peek().Line, "unexpected end of input, expected '}'")
		}
		stmt, err := p.parseStatement()
		if err != nil {
			return nil, err
		}
		block.Children = append(block.Children, stmt)
	}
	if _, err := p.expect(lexer.TokenPunc, "}"); err != nil {
		return nil, err
	}
	return block, nil
}

func (p *parser) parseStatement() (*ast.Node, error) {
	tok := p.peek()

	switch {
	case tok.Type == lexer.TokenKeyword && tok.Value == "let":
		return p.parseLet()
	case tok.Type == lexer.TokenKeyword && tok.Value == "print_int":
		return p.parsePrintInt()
	case tok.Type == lexer.TokenKeyword && tok.Value == "print_str":
		return p.parsePrintStr()
	case tok.Type == lexer.TokenKeyword && tok.Value == "if":
		return p.parseIf()
	case tok.Type == lexer.TokenKeyword && tok.Value == "while":
		return p.parseWhile()
	case tok.Type == lexer.TokenName:
		return p.parseAssign()
	default:
		return nil, parseErrorf(tok.Line, "unexpected token %q starting a statement", tok.Value)
	}
}

func (p *parser) parseLet() (*ast.Node, error) {
	letTok, err := p.expect(lexer.TokenKeyword, "let")
	if err != nil {
		return nil, err
	}
	nameTok := p.peek()
	if nameTok.Type != lexer.TokenName {
		return nil, parseErrorf(letTok.Line, "expected variable name after 'let'")
	}
	name := p.advance()
	if _, err := p.expect(lexer.TokenOperator, "="); err != nil {
		return nil, err
	}
	operand, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenPunc, ";"); err != nil {
		return nil, err
	}
	nameNode := ast.Leaf(ast.Name, name.Value, name.Line)
	return ast.New(ast.Let, letTok.Line, nameNode, operand), nil
}

func (p *parser) parseAssign() (*ast.Node, error) {
	name := p.advance()
	if _, err := p.expect(lexer.TokenOperator, "="); err != nil {
		return nil, err
	}
	operand, err := p.parseOperand()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenPunc, ";"); err != nil {
		return nil, err
	}
	nameNode := ast.Leaf(ast.Name, name.Value, name.Line)
	return ast.New(ast.Assign, name.Line, nameNode, operand), nil
}

// parseOperand parses the r-value of a Let/Assign: a string literal, a
// read() call, or a math expression.
func (p *parser) parseOperand() (*ast.Node, error) {
	tok := p.peek()
	if tok.Type == lexer.TokenString {
		p.advance()
		return ast.Leaf(ast.String, tok.Value, tok.Line), nil
	}
	if tok.Type == lexer.TokenKeyword && tok.Value == "read" {
		p.advance()
		if _, err := p.expect(lexer.TokenPunc, "("); err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenPunc, ")"); err != nil {
			return nil, err
		}
		return ast.New(ast.Read, tok.Line), nil
	}
	return p.parseMathExpr()
}

func (p *parser) parsePrintInt() (*ast.Node, error) {
	tok := p.advance()
	if _, err := p.expect(lexer.TokenPunc, "("); err != nil {
		return nil, err
	}
	expr, err := p.parseMathExpr()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenPunc, ")"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenPunc, ";"); err != nil {
		return nil, err
	}
	return ast.New(ast.PrintInt, tok.Line, expr), nil
}

func (p *parser) parsePrintStr() (*ast.Node, error) {
	tok := p.advance()
	if _, err := p.expect(lexer.TokenPunc, "("); err != nil {
		return nil, err
	}
	arg := p.peek()
	var argNode *ast.Node
	switch arg.Type {
	case lexer.TokenName:
		p.advance()
		argNode = ast.Leaf(ast.Name, arg.Value, arg.Line)
	case lexer.TokenString:
		p.advance()
		argNode = ast.Leaf(ast.String, arg.Value, arg.Line)
	default:
		return nil, parseErrorf(arg.Line, "print_str() expects a name or a string literal")
	}
	if _, err := p.expect(lexer.TokenPunc, ")"); err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenPunc, ";"); err != nil {
		return nil, err
	}
	return ast.New(ast.PrintStr, tok.Line, argNode), nil
}

func (p *parser) parseIf() (*ast.Node, error) {
	tok := p.advance()
	if _, err := p.expect(lexer.TokenPunc, "("); err != nil {
		return nil, err
	}
	cmp, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenPunc, ")"); err != nil {
		return nil, err
	}
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.New(ast.If, tok.Line, cmp, block), nil
}

func (p *parser) parseWhile() (*ast.Node, error) {
	tok := p.advance()
	if _, err := p.expect(lexer.TokenPunc, "("); err != nil {
		return nil, err
	}
	cmp, err := p.parseComparison()
	if err != nil {
		return nil, err
	}
	if _, err := p.expect(lexer.TokenPunc, ")"); err != nil {
		return nil, err
	}
	block, err := p.parseBlock()
	if err != nil {
		return nil, err
	}
	return ast.New(ast.While, tok.Line, cmp, block), nil
}

var comparisonTags = map[string]ast.Tag{
	"==": ast.Eq, "!=": ast.Ne, "<": ast.Lt, "<=": ast.Le, ">": ast.Gt, ">=": ast.Ge,
}

func (p *parser) parseComparison() (*ast.Node, error) {
	left, err := p.parseMathExpr()
	if err != nil {
		return nil, err
	}
	opTok := p.peek()
	tag, ok := comparisonTags[opTok.Value]
	if opTok.Type != lexer.TokenOperator || !ok {
		return nil, parseErrorf(opTok.Line, "expected a comparison operator, got %q", opTok.Value)
	}
	p.advance()
	right, err := p.parseMathExpr()
	if err != nil {
		return nil, err
	}
	return ast.New(tag, opTok.Line, left, right), nil
}

// parseMathExpr parses `term ((+|-) term)*`.
func (p *parser) parseMathExpr() (*ast.Node, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == lexer.TokenOperator && (p.peek().Value == "+" || p.peek().Value == "-") {
		opTok := p.advance()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		tag := ast.Add
		if opTok.Value == "-" {
			tag = ast.Sub
		}
		left = ast.New(tag, opTok.Line, left, right)
	}
	return left, nil
}

// parseTerm parses `factor ((*|/) factor)*`, binding tighter than +/-.
func (p *parser) parseTerm() (*ast.Node, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}
	for p.peek().Type == lexer.TokenOperator && (p.peek().Value == "*" || p.peek().Value == "/") {
		opTok := p.advance()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		tag := ast.Mul
		if opTok.Value == "/" {
			tag = ast.Div
		}
		left = ast.New(tag, opTok.Line, left, right)
	}
	return left, nil
}

func (p *parser) parseFactor() (*ast.Node, error) {
	tok := p.peek()

	if tok.Type == lexer.TokenPunc && tok.Value == "(" {
		p.advance()
		expr, err := p.parseMathExpr()
		if err != nil {
			return nil, err
		}
		if _, err := p.expect(lexer.TokenPunc, ")"); err != nil {
			return nil, err
		}
		return expr, nil
	}

	if tok.Type == lexer.TokenNumber {
		p.advance()
		if _, err := strconv.ParseInt(tok.Value, 10, 32); err != nil {
			return nil, parseErrorf(tok.Line, "invalid integer literal %q", tok.Value)
		}
		return ast.Leaf(ast.Number, tok.Value, tok.Line), nil
	}

	if tok.Type == lexer.TokenName {
		p.advance()
		return ast.Leaf(ast.Name, tok.Value, tok.Line), nil
	}

	return nil, parseErrorf(tok.Line, "unexpected token %q in expression", tok.Value)
}
