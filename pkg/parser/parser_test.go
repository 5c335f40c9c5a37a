package parser

import (
	"strings"
	"testing"

	"kestrel/interpreter-go/pkg/ast"
)

func TestParseLabeledLoopsAndVerbs(t *testing.T) {
	source := `OUTER: while (i < 10) {
  INNER: foreach my x (items) {
    next OUTER if x == 3;
    last;
  }
  redo OUTER unless done;
}
`
	mod := parseSource(t, source)

	expected := ast.Mod(
		ast.While("OUTER", ast.Bin("<", ast.ID("i"), ast.Int(10)),
			ast.Foreach("INNER", "x", ast.ID("items"),
				ast.If(ast.Bin("==", ast.ID("x"), ast.Int(3)), ast.Next("OUTER")),
				ast.Last(""),
			),
			ast.NewIfStatement(ast.ID("done"), true, ast.BlockOf(ast.Redo("OUTER")), nil, nil),
		),
	)
	assertModulesEqual(t, expected, mod)

	loop := mod.Body[0].(*ast.WhileLoop)
	checkSpan(t, "OUTER loop", loop.Span(), 1, 1, 7, 2)
	if loop.LoopLabel() != "OUTER" || !loop.IsLoop() {
		t.Fatalf("unexpected loop metadata: %q %v", loop.LoopLabel(), loop.IsLoop())
	}
}

func TestParseSubroutinesAndTailCalls(t *testing.T) {
	source := `sub count(n, acc) {
  return acc if n == 0;
  goto &count(n - 1, acc + 1);
}
sub again { goto &count; }
my f = sub (a) { a . "!" };
`
	mod := parseSource(t, source)

	expected := ast.Mod(
		ast.Sub("count", []string{"n", "acc"},
			ast.If(ast.Bin("==", ast.ID("n"), ast.Int(0)), ast.Ret(ast.ID("acc"))),
			ast.TailCall("count", ast.Bin("-", ast.ID("n"), ast.Int(1)), ast.Bin("+", ast.ID("acc"), ast.Int(1))),
		),
		ast.Sub("again", nil, ast.TailCallReuse("count")),
		ast.My("f", ast.Lambda([]string{"a"}, ast.Bin(".", ast.ID("a"), ast.Str("!")))),
	)
	assertModulesEqual(t, expected, mod)
}

func TestParseCStyleForAndBareBlock(t *testing.T) {
	source := `for (my i = 0; i < 3; i += 1) { say(i); }
BLOCK: { goto BLOCK if again(); }
{ my tmp = [1, 2][0]; }
`
	mod := parseSource(t, source)

	expected := ast.Mod(
		ast.For("", ast.My("i", ast.Int(0)), ast.Bin("<", ast.ID("i"), ast.Int(3)),
			ast.AssignOp(ast.AssignmentAdd, ast.ID("i"), ast.Int(1)),
			ast.Call("say", ast.ID("i")),
		),
		ast.Bare("BLOCK", ast.If(ast.Call("again"), ast.Goto("BLOCK"))),
		ast.Bare("", ast.My("tmp", ast.Index(ast.Arr(ast.Int(1), ast.Int(2)), ast.Int(0)))),
	)
	assertModulesEqual(t, expected, mod)
}

func TestParsePrecedence(t *testing.T) {
	mod := parseSource(t, `x = 1 + 2 * 3 . "s" == y && !z || 1..4;`)
	expected := ast.Mod(
		ast.Assign(ast.ID("x"),
			ast.Bin("||",
				ast.Bin("&&",
					ast.Bin("==",
						ast.Bin(".", ast.Bin("+", ast.Int(1), ast.Bin("*", ast.Int(2), ast.Int(3))), ast.Str("s")),
						ast.ID("y")),
					ast.Un(ast.UnaryOperatorNot, ast.ID("z"))),
				ast.Bin("..", ast.Int(1), ast.Int(4)))),
	)
	assertModulesEqual(t, expected, mod)
}

func TestParseErrors(t *testing.T) {
	cases := []struct {
		source string
		want   string
		line   int
	}{
		{"goto;", "expected label after 'goto'", 1},
		{"L: say(1);", "label L must precede a loop or block", 1},
		{"while (1) {\n  say(1)\n  say(2);\n}", "expected ';' after statement", 3},
		{"1 = 2;", "invalid assignment target", 1},
	}
	for _, tc := range cases {
		perr := parseError(t, tc.source)
		if !strings.Contains(perr.Message, tc.want) {
			t.Fatalf("%q: expected message containing %q, got %q", tc.source, tc.want, perr.Message)
		}
		if perr.Location.Line != tc.line {
			t.Fatalf("%q: expected line %d, got %d", tc.source, tc.line, perr.Location.Line)
		}
	}
}

func TestParseErrorCarriesOrigin(t *testing.T) {
	p, _ := NewModuleParser()
	_, err := p.WithOrigin("demo.kst").ParseModule([]byte("goto 1;"))
	if err == nil || !strings.HasPrefix(err.Error(), "demo.kst:1:6:") {
		t.Fatalf("expected origin-prefixed error, got %v", err)
	}
}

func TestIsIncomplete(t *testing.T) {
	p, _ := NewModuleParser()
	for _, src := range []string{"while (1) {", "say(\"abc", "my x = ", "sub f("} {
		_, err := p.ParseModule([]byte(src))
		if !IsIncomplete(err) {
			t.Fatalf("%q: expected incomplete input, got %v", src, err)
		}
	}
	_, err := p.ParseModule([]byte("1 = 2;"))
	if err == nil || IsIncomplete(err) {
		t.Fatalf("expected a complete-input error, got %v", err)
	}
}
