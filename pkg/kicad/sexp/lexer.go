// Package sexp parses the Lisp-like S-expression syntax used by KiCad board
// files into a lightweight tree. The lexer is a participle definition; the
// tree builder is a small recursive-descent parser on top of it.
package sexp

import (
	"strings"

	"github.com/alecthomas/participle/v2/lexer"
)

// Definition is the lexical structure of a KiCad S-expression file.
var Definition = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "LParen", Pattern: `\(`},
	{Name: "RParen", Pattern: `\)`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Symbol", Pattern: `[^\s()"]+`},
})

var (
	tokWhitespace = Definition.Symbols()["Whitespace"]
	tokLParen     = Definition.Symbols()["LParen"]
	tokRParen     = Definition.Symbols()["RParen"]
	tokString     = Definition.Symbols()["String"]
)

// unquote strips the surrounding quotes from a String token and resolves
// the escape sequences KiCad writes.
func unquote(raw string) string {
	body := strings.TrimSuffix(strings.TrimPrefix(raw, `"`), `"`)
	if !strings.Contains(body, `\`) {
		return body
	}
	var sb strings.Builder
	sb.Grow(len(body))
	for i := 0; i < len(body); i++ {
		c := body[i]
		if c != '\\' || i+1 >= len(body) {
			sb.WriteByte(c)
			continue
		}
		i++
		switch body[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		default:
			sb.WriteByte(body[i])
		}
	}
	return sb.String()
}
