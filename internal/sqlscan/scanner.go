/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

// Package sqlscan tokenizes SQL text in the Connect dialect. It is a flat
// scanner, not a parser: the linter and validator only need a reliable
// token stream (identifiers, literals, operators) to apply their rules.
package sqlscan

import (
	"errors"
	"strings"
	"unicode"
)

// ErrUnterminatedString is returned when a single-quoted literal is not
// closed before end of input. The dialect escapes an embedded quote by
// doubling it.
var ErrUnterminatedString = errors.New("unterminated string literal")

// Kind classifies a token
type Kind int

const (
	// EOF marks end of input
	EOF Kind = iota
	// Ident is an identifier or keyword
	Ident
	// Number is a numeric literal
	Number
	// String is a single-quoted literal; Text keeps the quotes
	String
	// Symbol is an operator or punctuation token
	Symbol
)

// Token is one lexical token with its byte offset in the input
type Token struct {
	Kind Kind
	Text string
	Pos  int
}

// Upper returns the token text upper-cased, for keyword comparison
func (t Token) Upper() string {
	return strings.ToUpper(t.Text)
}

// IsKeyword reports whether the token is an identifier matching the given
// keyword, case-insensitively
func (t Token) IsKeyword(kw string) bool {
	return t.Kind == Ident && strings.EqualFold(t.Text, kw)
}

// Unquote returns the string value of a String token with the outer quotes
// removed and doubled quotes collapsed
func (t Token) Unquote() string {
	if t.Kind != String || len(t.Text) < 2 {
		return t.Text
	}
	inner := t.Text[1 : len(t.Text)-1]
	return strings.ReplaceAll(inner, "''", "'")
}

// Tokens scans the whole input. On an unterminated string the tokens
// scanned so far are returned together with ErrUnterminatedString so the
// caller can still inspect the prefix.
func Tokens(src string) ([]Token, error) {
	var tokens []Token
	i := 0
	n := len(src)

	for i < n {
		c := src[i]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			i++

		case c == '-' && i+1 < n && src[i+1] == '-':
			// line comment
			for i < n && src[i] != '\n' {
				i++
			}

		case c == '/' && i+1 < n && src[i+1] == '*':
			// block comment, unterminated one just ends the input
			end := strings.Index(src[i+2:], "*/")
			if end < 0 {
				i = n
			} else {
				i += 2 + end + 2
			}

		case c == '\'':
			start := i
			i++
			closed := false
			for i < n {
				if src[i] == '\'' {
					if i+1 < n && src[i+1] == '\'' {
						i += 2 // doubled quote, stay inside the literal
						continue
					}
					i++
					closed = true
					break
				}
				i++
			}
			tokens = append(tokens, Token{Kind: String, Text: src[start:i], Pos: start})
			if !closed {
				return tokens, ErrUnterminatedString
			}

		case c == '"':
			// quoted identifier
			start := i
			i++
			for i < n && src[i] != '"' {
				i++
			}
			if i < n {
				i++
			}
			tokens = append(tokens, Token{Kind: Ident, Text: src[start:i], Pos: start})

		case isIdentStart(c):
			start := i
			for i < n && isIdentPart(src[i]) {
				i++
			}
			tokens = append(tokens, Token{Kind: Ident, Text: src[start:i], Pos: start})

		case c >= '0' && c <= '9':
			start := i
			for i < n && (src[i] >= '0' && src[i] <= '9' || src[i] == '.') {
				i++
			}
			tokens = append(tokens, Token{Kind: Number, Text: src[start:i], Pos: start})

		default:
			start := i
			// two-character operators first
			if i+1 < n {
				two := src[i : i+2]
				switch two {
				case "<=", ">=", "<>", "!=", "||":
					tokens = append(tokens, Token{Kind: Symbol, Text: two, Pos: start})
					i += 2
					continue
				}
			}
			tokens = append(tokens, Token{Kind: Symbol, Text: string(c), Pos: start})
			i++
		}
	}
	return tokens, nil
}

func isIdentStart(c byte) bool {
	return c == '_' || unicode.IsLetter(rune(c))
}

func isIdentPart(c byte) bool {
	return c == '_' || c == '$' || c == '#' ||
		unicode.IsLetter(rune(c)) || unicode.IsDigit(rune(c))
}
