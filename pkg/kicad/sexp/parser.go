package sexp

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Parse reads the first top-level S-expression from data.
func Parse(data []byte) (*Node, error) {
	lex, err := Definition.Lex("", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize lexer: %w", err)
	}

	p := &parser{}
	for {
		tok, err := lex.Next()
		if err != nil {
			return nil, fmt.Errorf("tokenize error: %w", err)
		}
		if tok.EOF() {
			break
		}
		if tok.Type == tokWhitespace {
			continue
		}
		p.tokens = append(p.tokens, tok)
	}

	node, err := p.parseNode()
	if err != nil {
		return nil, err
	}
	if node == nil {
		return nil, fmt.Errorf("empty input")
	}
	return node, nil
}

// ParseString is a convenience wrapper used mostly by tests.
func ParseString(input string) (*Node, error) {
	return Parse([]byte(input))
}

type parser struct {
	tokens []lexer.Token
	pos    int
}

func (p *parser) next() (lexer.Token, bool) {
	if p.pos >= len(p.tokens) {
		return lexer.Token{}, false
	}
	tok := p.tokens[p.pos]
	p.pos++
	return tok, true
}

func (p *parser) parseNode() (*Node, error) {
	tok, ok := p.next()
	if !ok {
		return nil, nil
	}

	switch tok.Type {
	case tokLParen:
		var items []*Node
		for {
			if p.pos >= len(p.tokens) {
				return nil, fmt.Errorf("unbalanced parentheses: missing ')' at offset %d", tok.Pos.Offset)
			}
			if p.tokens[p.pos].Type == tokRParen {
				p.pos++
				return List(items...), nil
			}
			item, err := p.parseNode()
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}

	case tokRParen:
		return nil, fmt.Errorf("unexpected ')' at offset %d", tok.Pos.Offset)

	case tokString:
		return Atom(unquote(tok.Value)), nil

	default:
		return Atom(strings.TrimSpace(tok.Value)), nil
	}
}
