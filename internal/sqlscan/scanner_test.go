/*-------------------------------------------------------------------------
 *
 * pgEdge NetSuite Connect Agent
 *
 * Portions copyright (c) 2026, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package sqlscan

import (
	"errors"
	"testing"
)

func TestTokensBasic(t *testing.T) {
	toks, err := Tokens("SELECT TOP 10 tranid FROM transaction WHERE foreigntotal >= 100.5")
	if err != nil {
		t.Fatalf("Tokens failed: %v", err)
	}

	want := []struct {
		kind Kind
		text string
	}{
		{Ident, "SELECT"}, {Ident, "TOP"}, {Number, "10"}, {Ident, "tranid"},
		{Ident, "FROM"}, {Ident, "transaction"}, {Ident, "WHERE"},
		{Ident, "foreigntotal"}, {Symbol, ">="}, {Number, "100.5"},
	}
	if len(toks) != len(want) {
		t.Fatalf("got %d tokens, want %d: %+v", len(toks), len(want), toks)
	}
	for i, w := range want {
		if toks[i].Kind != w.kind || toks[i].Text != w.text {
			t.Errorf("token %d = %v %q, want %v %q", i, toks[i].Kind, toks[i].Text, w.kind, w.text)
		}
	}
}

func TestTokenPositions(t *testing.T) {
	src := "SELECT id FROM customer"
	toks, err := Tokens(src)
	if err != nil {
		t.Fatal(err)
	}
	for _, tok := range toks {
		if src[tok.Pos:tok.Pos+len(tok.Text)] != tok.Text {
			t.Errorf("token %q position %d does not match source", tok.Text, tok.Pos)
		}
	}
}

func TestStringLiterals(t *testing.T) {
	toks, err := Tokens("memo = 'it''s overdue'")
	if err != nil {
		t.Fatal(err)
	}
	if len(toks) != 3 {
		t.Fatalf("got %d tokens: %+v", len(toks), toks)
	}
	s := toks[2]
	if s.Kind != String {
		t.Fatalf("expected a string token, got %v", s.Kind)
	}
	if s.Text != "'it''s overdue'" {
		t.Errorf("raw text = %q", s.Text)
	}
	if s.Unquote() != "it's overdue" {
		t.Errorf("Unquote = %q", s.Unquote())
	}
}

func TestUnterminatedString(t *testing.T) {
	toks, err := Tokens("SELECT 'unclosed")
	if !errors.Is(err, ErrUnterminatedString) {
		t.Fatalf("expected ErrUnterminatedString, got %v", err)
	}
	// the scanned prefix is still returned
	if len(toks) != 2 || toks[0].Text != "SELECT" {
		t.Errorf("prefix tokens = %+v", toks)
	}
}

func TestCommentsAreSkipped(t *testing.T) {
	toks, err := Tokens("SELECT id -- trailing note\nFROM /* block */ customer")
	if err != nil {
		t.Fatal(err)
	}
	var texts []string
	for _, tok := range toks {
		texts = append(texts, tok.Text)
	}
	want := []string{"SELECT", "id", "FROM", "customer"}
	if len(texts) != len(want) {
		t.Fatalf("got %v", texts)
	}
	for i := range want {
		if texts[i] != want[i] {
			t.Errorf("token %d = %q, want %q", i, texts[i], want[i])
		}
	}
}

func TestTwoCharOperators(t *testing.T) {
	toks, err := Tokens("a <> b <= c != d || e")
	if err != nil {
		t.Fatal(err)
	}
	var symbols []string
	for _, tok := range toks {
		if tok.Kind == Symbol {
			symbols = append(symbols, tok.Text)
		}
	}
	want := []string{"<>", "<=", "!=", "||"}
	if len(symbols) != len(want) {
		t.Fatalf("symbols = %v", symbols)
	}
	for i := range want {
		if symbols[i] != want[i] {
			t.Errorf("symbol %d = %q, want %q", i, symbols[i], want[i])
		}
	}
}

func TestIsKeyword(t *testing.T) {
	toks, _ := Tokens("select 'SELECT'")
	if !toks[0].IsKeyword("SELECT") {
		t.Error("lower-case select must match the SELECT keyword")
	}
	if toks[1].IsKeyword("SELECT") {
		t.Error("a string literal is never a keyword")
	}
}

func TestQuotedIdentifier(t *testing.T) {
	toks, err := Tokens(`SELECT "Tran Date" FROM transaction`)
	if err != nil {
		t.Fatal(err)
	}
	if toks[1].Kind != Ident || toks[1].Text != `"Tran Date"` {
		t.Errorf("quoted identifier token = %v %q", toks[1].Kind, toks[1].Text)
	}
}
