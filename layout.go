package canvas

// SlotCount is the number of fixed child slots around a parent.
const SlotCount = 4

// Slot offsets relative to the parent. Index i is shared by the i-th concept
// category and the i-th persona, so callers can rely on the order.
var slotOffsets = [2][SlotCount]Position{
	Vertical: {
		{X: -300, Y: 150},
		{X: -100, Y: 200},
		{X: 100, Y: 200},
		{X: 300, Y: 150},
	},
	Horizontal: {
		{X: 150, Y: -300},
		{X: 200, Y: -100},
		{X: 200, Y: 100},
		{X: 150, Y: 300},
	},
}

// SlotOffset returns the offset of slot i for orientation o.
// It panics if i is outside [0, SlotCount).
func SlotOffset(o Orientation, i int) Position {
	return slotOffsets[o][i]
}

// Layout places every node of a graph as a set of trees.
// Roots are nodes with no incoming edge; children fan out around their parent
// and the walk is depth-first from each root in node order.
type Layout struct {
	NodeWidth  float64
	NodeHeight float64
	Gap        float64
}

// DefaultLayout matches the size of a rendered note.
var DefaultLayout = Layout{NodeWidth: 250, NodeHeight: 150, Gap: 50}

// Apply repositions nodes in place.
//
// A node reachable from several parents ends up wherever the last visiting
// parent put it. Nodes that are only reachable through a cycle keep their position.
//
// Cost: a merge node's subtree is walked once per visiting parent, so a chain
// of k diamonds costs O(2^k) visits. Mind maps are trees in practice; callers
// hold the board lock for the whole walk.
func (l Layout) Apply(nodes []Node, edges []Edge, o Orientation) {
	index := make(map[string]Node, len(nodes))
	for _, n := range nodes {
		index[n.NodeID()] = n
	}

	children := make(map[string][]string)
	hasParent := make(map[string]bool)
	seen := make(map[[2]string]bool)
	for _, e := range edges {
		if index[e.Source] == nil || index[e.Target] == nil {
			continue
		}
		key := [2]string{e.Source, e.Target}
		if seen[key] {
			continue
		}
		seen[key] = true
		children[e.Source] = append(children[e.Source], e.Target)
		hasParent[e.Target] = true
	}

	onPath := make(map[string]bool)
	var place func(id string, pos Position)
	place = func(id string, pos Position) {
		setPosition(index[id], pos)
		onPath[id] = true
		defer delete(onPath, id)

		kids := children[id]
		for j, child := range kids {
			if onPath[child] {
				continue
			}
			place(child, l.childPosition(pos, j, len(kids), o))
		}
	}

	root := 0
	for _, n := range nodes {
		if hasParent[n.NodeID()] {
			continue
		}
		place(n.NodeID(), l.rootPosition(root, o))
		root++
	}
}

func (l Layout) rootPosition(i int, o Orientation) Position {
	if o == Horizontal {
		return Position{X: float64(i) * (l.NodeWidth + l.Gap)}
	}
	return Position{Y: float64(i) * (l.NodeHeight + l.Gap)}
}

func (l Layout) childPosition(parent Position, j, k int, o Orientation) Position {
	spread := float64(j) - float64(k-1)/2
	if o == Horizontal {
		return Position{
			X: parent.X + l.NodeWidth + l.Gap,
			Y: parent.Y + spread*(l.NodeHeight+l.Gap),
		}
	}
	return Position{
		X: parent.X + spread*(l.NodeWidth+l.Gap),
		Y: parent.Y + l.NodeHeight + l.Gap,
	}
}
