package lexer

import "testing"

func TestLexBasicProgram(t *testing.T) {
	tokens, err := Lex(`let x = 2; x = (3+4)*5; print_int(x);`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}

	want := []string{
		"let", "x", "=", "2", ";",
		"x", "=", "(", "3", "+", "4", ")", "*", "5", ";",
		"print_int", "(", "x", ")", ";",
	}
	if len(tokens) != len(want)+1 { // +1 for trailing EOF
		t.Fatalf("got %d tokens, want %d (+EOF): %v", len(tokens), len(want), tokens)
	}
	for i, w := range want {
		if tokens[i].Value != w {
			t.Errorf("token %d: got %q, want %q", i, tokens[i].Value, w)
		}
	}
	if tokens[len(tokens)-1].Type != TokenEOF {
		t.Errorf("last token should be EOF, got %v", tokens[len(tokens)-1])
	}
}

func TestLexComparisonOperators(t *testing.T) {
	tokens, err := Lex(`a == b != c <= d >= e < f > g`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	var ops []string
	for _, tok := range tokens {
		if tok.Type == TokenOperator {
			ops = append(ops, tok.Value)
		}
	}
	want := []string{"==", "!=", "<=", ">=", "<", ">"}
	if len(ops) != len(want) {
		t.Fatalf("got operators %v, want %v", ops, want)
	}
	for i, w := range want {
		if ops[i] != w {
			t.Errorf("operator %d: got %q, want %q", i, ops[i], w)
		}
	}
}

func TestLexString(t *testing.T) {
	tokens, err := Lex(`print_str("hello world");`)
	if err != nil {
		t.Fatalf("Lex: %v", err)
	}
	var found bool
	for _, tok := range tokens {
		if tok.Type == TokenString {
			found = true
			if tok.Value != "hello world" {
				t.Errorf("string value = %q, want %q", tok.Value, "hello world")
			}
		}
	}
	if !found {
		t.Fatal("no string token found")
	}
}

func TestLexUnterminatedStringFails(t *testing.T) {
	if _, err := Lex(`print_str("oops);`); err == nil {
		t.Fatal("expected error for unterminated string")
	}
}

func TestLexRejectsInvalidStringAlphabet(t *testing.T) {
	if _, err := Lex(`let s = "not-allowed!";`); err == nil {
		t.Fatal("expected error for punctuation inside string literal")
	}
}
