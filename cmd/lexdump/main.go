// lexdump prints the token stream lexer.Lex produces for a source file, one
// token per line. It exists for debugging the lexer and grammar directly,
// without routing through the parser or code generator.
package main

import (
	"fmt"
	"os"

	"github.com/minilang/mlc/pkg/lexer"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("usage: lexdump <source-file>")
		os.Exit(1)
	}

	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "lexdump: %v\n", err)
		os.Exit(1)
	}

	tokens, err := lexer.Lex(string(data))
	if err != nil {
		fmt.Fprintf(os.Stderr, "lexdump: %v\n", err)
		os.Exit(1)
	}

	for i, tok := range tokens {
		fmt.Printf("%4d: %s\n", i, tok)
	}
}
