package ast

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockOfWrapsStatements(t *testing.T) {
	var block *Block = BlockOf(Last(""), Next("OUTER"))
	require.Len(t, block.Body, 2)
	assert.Equal(t, NodeBlock, block.NodeType())

	empty := BlockOf()
	assert.Empty(t, empty.Body)
}

func TestLoopHelpersShareBlockBodies(t *testing.T) {
	loops := []LoopStatement{
		Bare("B", Redo("B")),
		While("W", ID("c"), Last("W")),
		Until("", ID("c"), Next("")),
		For("F", nil, nil, nil, Goto("F")),
		Foreach("E", "x", ID("xs"), Last("E")),
	}
	wantLabels := []string{"B", "W", "", "F", "E"}
	for i, loop := range loops {
		assert.Equal(t, wantLabels[i], loop.LoopLabel())
		require.NotNil(t, loop.LoopBody())
		assert.Len(t, loop.LoopBody().Body, 1)
	}
	assert.False(t, loops[0].IsLoop())
	assert.True(t, loops[1].IsLoop())

	sub := Sub("f", []string{"a"}, Last("OUTER"))
	require.NotNil(t, sub.Body)
	assert.Len(t, sub.Body.Body, 1)
}
