package compiler

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kestrel/interpreter-go/pkg/ast"
	"kestrel/interpreter-go/pkg/runtime"
)

func TestResolveUnlabeledTargetsInnermostLoop(t *testing.T) {
	last := ast.Last("")
	inner := ast.While("", ast.Int(1), ast.Bare("BLOCK", last))
	outer := ast.Foreach("OUTER", "x", ast.ID("xs"), inner)

	res, err := Resolve([]ast.Statement{outer}, ResolveOptions{})
	require.NoError(t, err)

	class, ok := res.Classify(last)
	require.True(t, ok)
	assert.Equal(t, Local, class.Kind)
	assert.Equal(t, runtime.MarkerExit, class.Marker)
	assert.Same(t, res.Boundary(inner), class.Boundary, "unlabeled last skips bare blocks and binds the innermost loop")
}

func TestResolveLabeledVerbs(t *testing.T) {
	toOuter := ast.Next("OUTER")
	toBlock := ast.Redo("BLOCK")
	toCaller := ast.Last("ELSEWHERE")
	body := []ast.Statement{
		ast.While("OUTER", ast.Int(1),
			ast.Bare("BLOCK",
				ast.While("", ast.Int(1), toOuter, toBlock, toCaller),
			),
		),
	}

	res, err := Resolve(body, ResolveOptions{})
	require.NoError(t, err)

	outer := body[0].(*ast.WhileLoop)
	block := outer.Body.Body[0].(*ast.BareBlock)

	class, _ := res.Classify(toOuter)
	assert.Equal(t, Local, class.Kind)
	assert.Same(t, res.Boundary(outer), class.Boundary)

	class, _ = res.Classify(toBlock)
	assert.Equal(t, Local, class.Kind)
	assert.Same(t, res.Boundary(block), class.Boundary)

	class, _ = res.Classify(toCaller)
	assert.Equal(t, NonLocal, class.Kind)
	assert.Equal(t, "ELSEWHERE", class.Label)
	assert.Nil(t, class.Boundary)

	assert.Equal(t, []string{"BLOCK", "OUTER"}, res.Labels())
	assert.Equal(t, DispatchPerStatement, res.DispatchMode(outer))
	assert.Equal(t, DispatchPerStatement, res.DispatchMode(block))
	assert.Equal(t, DispatchLoopEnd, res.DispatchMode(block.Body.Body[0].(*ast.WhileLoop)))
}

func TestResolveStatementOutsideLoop(t *testing.T) {
	cases := map[string][]ast.Statement{
		"bare last":            {ast.Last("")},
		"next in bare block":   {ast.Bare("B", ast.Next(""))},
		"redo in if statement": {ast.If(ast.Int(1), ast.Redo(""))},
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			res, err := Resolve(body, ResolveOptions{InSub: true})
			require.Error(t, err)
			assert.Nil(t, res)
			assert.True(t, IsCompileErrorKind(err, ErrStatementOutsideLoop), "got %v", err)
			assert.Contains(t, err.Error(), "statement used outside of a loop")
		})
	}
}

func TestResolveLabeledVerbNeverRejected(t *testing.T) {
	stmt := ast.Goto("SOMEWHERE")
	res, err := Resolve([]ast.Statement{stmt}, ResolveOptions{InSub: true})
	require.NoError(t, err)
	class, _ := res.Classify(stmt)
	assert.Equal(t, NonLocal, class.Kind)
	assert.Equal(t, runtime.MarkerJump, class.Marker)
}

func TestResolveLabelShadowingWarns(t *testing.T) {
	inner := ast.Last("L")
	body := []ast.Statement{
		ast.While("L", ast.Int(1),
			ast.While("L", ast.Int(1), inner),
		),
	}
	res, err := Resolve(body, ResolveOptions{})
	require.NoError(t, err)
	require.Len(t, res.Warnings, 1)
	assert.Contains(t, res.Warnings[0], "label L shadows")

	class, _ := res.Classify(inner)
	innerLoop := body[0].(*ast.WhileLoop).Body.Body[0].(*ast.WhileLoop)
	assert.Same(t, res.Boundary(innerLoop), class.Boundary)

	stats := res.Stats()
	require.Len(t, stats, 1)
	assert.Equal(t, LabelStat{Label: "L", Definitions: 2, Local: 1}, stats[0])
}

func TestResolveSiblingLabelIsNotVisible(t *testing.T) {
	jump := ast.Last("FIRST")
	body := []ast.Statement{
		ast.Bare("FIRST"),
		ast.While("SECOND", ast.Int(1), jump),
	}
	res, err := Resolve(body, ResolveOptions{})
	require.NoError(t, err)
	class, _ := res.Classify(jump)
	assert.Equal(t, NonLocal, class.Kind, "only enclosing labels are lexically visible")
}

func TestResolveTailCallOutsideSub(t *testing.T) {
	_, err := Resolve([]ast.Statement{ast.TailCall("f")}, ResolveOptions{})
	assert.True(t, IsCompileErrorKind(err, ErrTailCallOutsideSub), "got %v", err)

	_, err = Resolve([]ast.Statement{ast.TailCall("f")}, ResolveOptions{InSub: true})
	assert.NoError(t, err)
}
