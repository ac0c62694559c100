package canvas

// Position is a point on the canvas in flow coordinates.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Add returns p shifted by off.
func (p Position) Add(off Position) Position {
	return Position{X: p.X + off.X, Y: p.Y + off.Y}
}

// Orientation controls the fan-out axis and which sides of a node hold
// the incoming and outgoing connection points.
type Orientation int

const (
	// Vertical grows children downwards. It is the initial orientation.
	Vertical Orientation = iota
	// Horizontal grows children to the right.
	Horizontal
)

func (o Orientation) String() string {
	if o == Horizontal {
		return "HORIZONTAL"
	}
	return "VERTICAL"
}

// Flip returns the other orientation.
func (o Orientation) Flip() Orientation {
	if o == Horizontal {
		return Vertical
	}
	return Horizontal
}

// Side names a visual side of a node.
type Side string

const (
	SideTop    Side = "top"
	SideBottom Side = "bottom"
	SideLeft   Side = "left"
	SideRight  Side = "right"
)

// Handles returns the sides holding the incoming and outgoing connection points.
func (o Orientation) Handles() (in, out Side) {
	if o == Horizontal {
		return SideLeft, SideRight
	}
	return SideTop, SideBottom
}

// Node is a positioned entity on the canvas: either a *TextNode or a *SkeletonNode.
// The set of variants is closed.
type Node interface {
	NodeID() string
	NodePosition() Position
	isNode()
}

// TextNode is a note. IsAI is fixed at creation.
type TextNode struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	Text     string   `json:"text"`
	IsAI     bool     `json:"isAI"`
	Selected bool     `json:"selected,omitempty"`
}

// SkeletonNode is a placeholder shown while a generation call is outstanding.
// It only exists between dispatch and settlement and is never editable.
type SkeletonNode struct {
	ID       string   `json:"id"`
	Position Position `json:"position"`
	ParentID string   `json:"parentId"`
	Selected bool     `json:"selected,omitempty"`
}

func (n *TextNode) NodeID() string         { return n.ID }
func (n *TextNode) NodePosition() Position { return n.Position }
func (*TextNode) isNode()                  {}

func (n *SkeletonNode) NodeID() string         { return n.ID }
func (n *SkeletonNode) NodePosition() Position { return n.Position }
func (*SkeletonNode) isNode()                  {}

// cloneNode returns a copy of n that shares no memory with it.
func cloneNode(n Node) Node {
	switch v := n.(type) {
	case *TextNode:
		c := *v
		return &c
	case *SkeletonNode:
		c := *v
		return &c
	default:
		panic("canvas: unknown node variant")
	}
}

// setPosition moves n in place.
func setPosition(n Node, p Position) {
	switch v := n.(type) {
	case *TextNode:
		v.Position = p
	case *SkeletonNode:
		v.Position = p
	}
}

// EdgeStyle carries rendering hints for an edge.
type EdgeStyle struct {
	Type     string `json:"type,omitempty"`
	Animated bool   `json:"animated,omitempty"`
	Dashed   bool   `json:"dashed,omitempty"`
}

var (
	placeholderEdgeStyle = EdgeStyle{Type: "smoothstep", Animated: true, Dashed: true}
	resolvedEdgeStyle    = EdgeStyle{Type: "smoothstep"}
)

// Edge is a directed arc between two nodes.
// Several edges may join the same pair.
type Edge struct {
	ID     string    `json:"id"`
	Source string    `json:"source"`
	Target string    `json:"target"`
	Style  EdgeStyle `json:"style"`
}

// Graph is a point-in-time copy of the board for readers.
type Graph struct {
	Nodes       []Node
	Edges       []Edge
	Orientation Orientation
}

// Concept is one of the four branches returned by an expansion.
type Concept struct {
	Category string `json:"type"`
	Title    string `json:"title"`
	Content  string `json:"content"`
}

// Concept categories in slot order.
const (
	CategoryScenario = "scenario"
	CategoryTech     = "tech"
	CategoryVisual   = "visual"
	CategoryCounter  = "counter"
)

// Categories lists the concept categories in the order of the layout slots.
var Categories = [SlotCount]string{CategoryScenario, CategoryTech, CategoryVisual, CategoryCounter}

// Reply is a single persona response.
type Reply struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// noteText joins a title and body the way generated notes are displayed.
func noteText(title, content string) string {
	return title + "\n\n" + content
}
