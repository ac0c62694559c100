package canvas_test

import (
	"testing"

	"github.com/meikuraledutech/canvas"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func position(t *testing.T, b *canvas.Board, id string) canvas.Position {
	t.Helper()
	n, ok := b.Node(id)
	require.True(t, ok)
	return n.NodePosition()
}

func TestSlotOffset(t *testing.T) {
	assert.Equal(t, canvas.Position{X: -300, Y: 150}, canvas.SlotOffset(canvas.Vertical, 0))
	assert.Equal(t, canvas.Position{X: 300, Y: 150}, canvas.SlotOffset(canvas.Vertical, 3))
	assert.Equal(t, canvas.Position{X: 150, Y: -300}, canvas.SlotOffset(canvas.Horizontal, 0))
	assert.Equal(t, canvas.Position{X: 200, Y: 100}, canvas.SlotOffset(canvas.Horizontal, 2))
	assert.Panics(t, func() { canvas.SlotOffset(canvas.Vertical, canvas.SlotCount) })
}

func TestLayout_SingleParentFourChildren(t *testing.T) {
	b := newTestBoard()
	root := b.CreateTextNode(canvas.Position{X: 77, Y: 77})
	kids := make([]string, 4)
	for i := range kids {
		kids[i] = b.CreateTextNode(canvas.Position{})
		b.Connect(root, kids[i])
	}

	b.Relayout()

	assert.Equal(t, canvas.Position{}, position(t, b, root))
	for i, x := range []float64{-450, -150, 150, 450} {
		assert.Equal(t, canvas.Position{X: x, Y: 200}, position(t, b, kids[i]), "child %d", i)
	}

	require.Equal(t, canvas.Horizontal, b.ToggleOrientation())

	assert.Equal(t, canvas.Position{}, position(t, b, root))
	for i, y := range []float64{-300, -100, 100, 300} {
		assert.Equal(t, canvas.Position{X: 300, Y: y}, position(t, b, kids[i]), "child %d", i)
	}
}

func TestLayout_RootsStack(t *testing.T) {
	b := newTestBoard()
	r0 := b.CreateTextNode(canvas.Position{X: 5})
	r1 := b.CreateTextNode(canvas.Position{X: 5})
	r2 := b.CreateTextNode(canvas.Position{X: 5})

	b.Relayout()
	assert.Equal(t, canvas.Position{Y: 0}, position(t, b, r0))
	assert.Equal(t, canvas.Position{Y: 200}, position(t, b, r1))
	assert.Equal(t, canvas.Position{Y: 400}, position(t, b, r2))

	b.ToggleOrientation()
	assert.Equal(t, canvas.Position{X: 0}, position(t, b, r0))
	assert.Equal(t, canvas.Position{X: 300}, position(t, b, r1))
	assert.Equal(t, canvas.Position{X: 600}, position(t, b, r2))
}

func TestLayout_MergeNodeTakesLastVisitor(t *testing.T) {
	b := newTestBoard()
	a := b.CreateTextNode(canvas.Position{})
	c := b.CreateTextNode(canvas.Position{})
	shared := b.CreateTextNode(canvas.Position{})
	b.Connect(a, shared)
	b.Connect(c, shared)

	b.Relayout()

	// a is placed first, then c moves shared under itself.
	assert.Equal(t, canvas.Position{Y: 0}, position(t, b, a))
	assert.Equal(t, canvas.Position{Y: 200}, position(t, b, c))
	assert.Equal(t, canvas.Position{Y: 400}, position(t, b, shared))
}

func TestLayout_CycleTerminates(t *testing.T) {
	b := newTestBoard()
	root := b.CreateTextNode(canvas.Position{})
	x := b.CreateTextNode(canvas.Position{})
	y := b.CreateTextNode(canvas.Position{})
	b.Connect(root, x)
	b.Connect(x, y)
	b.Connect(y, x)

	b.Relayout()

	assert.Equal(t, canvas.Position{Y: 0}, position(t, b, root))
	assert.Equal(t, canvas.Position{Y: 200}, position(t, b, x))
	assert.Equal(t, canvas.Position{Y: 400}, position(t, b, y))
}

func TestLayout_UnrootedCycleKeepsPositions(t *testing.T) {
	b := newTestBoard()
	x := b.CreateTextNode(canvas.Position{X: 11, Y: 22})
	y := b.CreateTextNode(canvas.Position{X: 33, Y: 44})
	b.Connect(x, y)
	b.Connect(y, x)

	b.Relayout()

	assert.Equal(t, canvas.Position{X: 11, Y: 22}, position(t, b, x))
	assert.Equal(t, canvas.Position{X: 33, Y: 44}, position(t, b, y))
}

func TestLayout_DuplicateEdgesCollapse(t *testing.T) {
	b := newTestBoard()
	root := b.CreateTextNode(canvas.Position{})
	child := b.CreateTextNode(canvas.Position{})
	b.Connect(root, child)
	b.Connect(root, child)

	b.Relayout()

	// A single child sits straight below its parent.
	assert.Equal(t, canvas.Position{Y: 200}, position(t, b, child))
}

func TestLayout_Apply_IgnoresDanglingEdges(t *testing.T) {
	n := &canvas.TextNode{ID: "a", Position: canvas.Position{X: 9, Y: 9}}
	nodes := []canvas.Node{n}
	edges := []canvas.Edge{{ID: "e", Source: "ghost", Target: "a"}}

	canvas.DefaultLayout.Apply(nodes, edges, canvas.Vertical)

	// With the dangling edge ignored, a is a root.
	assert.Equal(t, canvas.Position{}, n.Position)
}

func TestLayout_CustomSize(t *testing.T) {
	b := canvas.NewBoard(canvas.WithLayout(canvas.Layout{NodeWidth: 100, NodeHeight: 50, Gap: 10}))
	root := b.CreateTextNode(canvas.Position{})
	child := b.CreateTextNode(canvas.Position{})
	b.Connect(root, child)

	b.ToggleOrientation()

	assert.Equal(t, canvas.Position{X: 110}, position(t, b, child))
}

func TestLayout_DiamondChain(t *testing.T) {
	const depth = 10
	b := newTestBoard()
	prev := b.CreateTextNode(canvas.Position{})
	for i := 0; i < depth; i++ {
		left := b.CreateTextNode(canvas.Position{})
		right := b.CreateTextNode(canvas.Position{})
		merge := b.CreateTextNode(canvas.Position{})
		b.Connect(prev, left)
		b.Connect(prev, right)
		b.Connect(left, merge)
		b.Connect(right, merge)
		prev = merge
	}

	b.Relayout()

	// Every merge node is last placed through its right-hand parent.
	assert.Equal(t, canvas.Position{X: 150 * depth, Y: 400 * depth}, position(t, b, prev))
}
