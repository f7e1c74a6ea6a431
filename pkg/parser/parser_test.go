package parser

import (
	"testing"

	"github.com/minilang/mlc/pkg/ast"
)

func TestParseHelloString(t *testing.T) {
	root, err := Parse(`let s = "hello"; print_str(s);`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if root.Tag != ast.Root {
		t.Fatalf("root tag = %v, want Root", root.Tag)
	}
	if len(root.Children) != 2 {
		t.Fatalf("got %d statements, want 2", len(root.Children))
	}

	let := root.Children[0]
	if let.Tag != ast.Let || len(let.Children) != 2 {
		t.Fatalf("statement 0 = %v, want Let with 2 children", let)
	}
	if let.Children[0].Tag != ast.Name || let.Children[0].Value != "s" {
		t.Errorf("let name = %v", let.Children[0])
	}
	if let.Children[1].Tag != ast.String || let.Children[1].Value != "hello" {
		t.Errorf("let rvalue = %v", let.Children[1])
	}

	printStr := root.Children[1]
	if printStr.Tag != ast.PrintStr || len(printStr.Children) != 1 {
		t.Fatalf("statement 1 = %v, want PrintStr with 1 child", printStr)
	}
}

func TestParseArithmeticPrecedence(t *testing.T) {
	root, err := Parse(`let x = 2; x = (3+4)*5; print_int(x);`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	assign := root.Children[1]
	if assign.Tag != ast.Assign {
		t.Fatalf("statement 1 tag = %v, want Assign", assign.Tag)
	}
	mul := assign.Children[1]
	if mul.Tag != ast.Mul {
		t.Fatalf("rvalue tag = %v, want Mul (parens * 5 beats + precedence)", mul.Tag)
	}
	add := mul.Children[0]
	if add.Tag != ast.Add {
		t.Fatalf("left operand of Mul = %v, want Add", add.Tag)
	}
}

func TestParseWhileLoop(t *testing.T) {
	root, err := Parse(`let i = 0; while(i < 3){ i = i+1; print_int(i); }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	while := root.Children[1]
	if while.Tag != ast.While || len(while.Children) != 2 {
		t.Fatalf("statement 1 = %v, want While with [cmp, block]", while)
	}
	cmp := while.Children[0]
	if cmp.Tag != ast.Lt {
		t.Fatalf("condition tag = %v, want Lt", cmp.Tag)
	}
	block := while.Children[1]
	if block.Tag != ast.Block || len(block.Children) != 2 {
		t.Fatalf("block = %v, want 2 statements", block)
	}
}

func TestParseReadRvalue(t *testing.T) {
	root, err := Parse(`let s = read(); print_str(s);`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	let := root.Children[0]
	read := let.Children[1]
	if read.Tag != ast.Read || len(read.Children) != 0 {
		t.Fatalf("rvalue = %v, want Read with no children", read)
	}
}

func TestParseIfElseAbsent(t *testing.T) {
	root, err := Parse(`let a = 5; if(a == 5){ let b = "ok"; print_str(b); }`)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	ifNode := root.Children[1]
	if ifNode.Tag != ast.If {
		t.Fatalf("statement 1 = %v, want If", ifNode.Tag)
	}
	if ifNode.Children[0].Tag != ast.Eq {
		t.Fatalf("condition = %v, want Eq", ifNode.Children[0].Tag)
	}
}

func TestParseRejectsMalformedStatement(t *testing.T) {
	if _, err := Parse(`let = 5;`); err == nil {
		t.Fatal("expected parse error for missing variable name")
	}
}

func TestParseRejectsUnclosedBlock(t *testing.T) {
	if _, err := Parse(`while(i<3){ i = i+1;`); err == nil {
		t.Fatal("expected parse error for unterminated block")
	}
}
