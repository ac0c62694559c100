package canvas

import (
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"
	"github.com/meikuraledutech/canvas/internal/logging"
)

// Board owns the canvas graph: nodes, edges and the layout orientation.
// All mutation goes through its methods. It is safe for concurrent use and
// every method is applied atomically.
//
// Operations that reference an id check for it first. A missing id is a
// no-op reported through the boolean/empty result, never an error: the user
// may have deleted the node while a generation call was in flight.
type Board struct {
	mu          sync.Mutex
	nodes       []Node
	edges       []Edge
	orientation Orientation
	layout      Layout
	logger      *slog.Logger
	newID       func(prefix string) string
}

// BoardOption configures a Board.
type BoardOption func(*Board)

// WithLayout overrides the layout constants used by Relayout.
func WithLayout(l Layout) BoardOption {
	return func(b *Board) {
		b.layout = l
	}
}

// WithBoardLogger sets the logger for stale-reference and mutation events.
func WithBoardLogger(logger *slog.Logger) BoardOption {
	return func(b *Board) {
		b.logger = logger
	}
}

// WithIDGenerator replaces the id source. Ids must be unique.
func WithIDGenerator(fn func(prefix string) string) BoardOption {
	return func(b *Board) {
		b.newID = fn
	}
}

// NewBoard creates an empty board in Vertical orientation.
func NewBoard(opts ...BoardOption) *Board {
	b := &Board{
		orientation: Vertical,
		layout:      DefaultLayout,
		logger:      logging.NewNop(),
		newID: func(prefix string) string {
			return prefix + "-" + uuid.NewString()
		},
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// CreateTextNode adds an empty user note at pos and returns its id.
func (b *Board) CreateTextNode(pos Position) string {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.newID("node")
	b.nodes = append(b.nodes, &TextNode{ID: id, Position: pos})
	return id
}

// SetNodeText replaces the text of a text node.
// Returns false if id is missing or names a placeholder.
func (b *Board) SetNodeText(id, text string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return false
	}
	switch n := b.nodes[i].(type) {
	case *TextNode:
		n.Text = text
		return true
	case *SkeletonNode:
		return false
	}
	return false
}

// Connect appends an edge from source to target. Duplicates are allowed.
// Returns false if either endpoint is missing.
func (b *Board) Connect(source, target string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.indexOf(source) < 0 || b.indexOf(target) < 0 {
		b.logger.Debug("connect skipped, endpoint missing", "source", source, "target", target)
		return "", false
	}
	id := b.newID("edge")
	b.edges = append(b.edges, Edge{ID: id, Source: source, Target: target})
	return id, true
}

// InsertPlaceholderSet adds one placeholder per slot around parentID, each
// joined to the parent by an animated edge. Returns the placeholder ids in
// slot order, or nil if the parent is missing.
func (b *Board) InsertPlaceholderSet(parentID string) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(parentID)
	if i < 0 {
		return nil
	}
	origin := b.nodes[i].NodePosition()
	ids := make([]string, 0, SlotCount)
	for slot := 0; slot < SlotCount; slot++ {
		ids = append(ids, b.addPlaceholder(parentID, origin, slot))
	}
	return ids
}

// InsertSinglePlaceholder adds one placeholder in the given slot.
// Returns false if the parent is missing or slot is out of range.
func (b *Board) InsertSinglePlaceholder(parentID string, slot int) (string, bool) {
	if slot < 0 || slot >= SlotCount {
		return "", false
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(parentID)
	if i < 0 {
		return "", false
	}
	return b.addPlaceholder(parentID, b.nodes[i].NodePosition(), slot), true
}

func (b *Board) addPlaceholder(parentID string, origin Position, slot int) string {
	id := b.newID("skeleton")
	b.nodes = append(b.nodes, &SkeletonNode{
		ID:       id,
		Position: origin.Add(SlotOffset(b.orientation, slot)),
		ParentID: parentID,
	})
	b.edges = append(b.edges, Edge{
		ID:     b.newID("edge"),
		Source: parentID,
		Target: id,
		Style:  placeholderEdgeStyle,
	})
	return id
}

// DiscardPlaceholders removes the named placeholders and every edge targeting them.
// Ids that are absent or do not name a placeholder are ignored.
func (b *Board) DiscardPlaceholders(ids ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.removePlaceholders(ids)
}

// removePlaceholders returns how many placeholder nodes were removed.
func (b *Board) removePlaceholders(ids []string) int {
	if len(ids) == 0 {
		return 0
	}
	drop := make(map[string]bool, len(ids))
	kept := b.nodes[:0]
	for _, n := range b.nodes {
		if s, ok := n.(*SkeletonNode); ok && slices.Contains(ids, s.ID) {
			drop[s.ID] = true
			continue
		}
		kept = append(kept, n)
	}
	clear(b.nodes[len(kept):])
	b.nodes = kept
	if len(drop) == 0 {
		return 0
	}

	b.edges = filterEdges(b.edges, func(e Edge) bool { return !drop[e.Target] })
	return len(drop)
}

// ResolveExpansion replaces placeholderIDs with one AI note per concept,
// placed in the matching slot around the parent's current position.
// Returns false, leaving the board untouched, if the parent is missing or
// concepts does not hold exactly SlotCount entries.
func (b *Board) ResolveExpansion(parentID string, concepts []Concept, placeholderIDs []string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(parentID)
	if i < 0 {
		b.logger.Debug("expansion resolved after parent removal", "parent_id", parentID)
		return false
	}
	if len(concepts) != SlotCount {
		return false
	}
	origin := b.nodes[i].NodePosition()

	b.removePlaceholders(placeholderIDs)
	for slot, c := range concepts {
		b.addChild(parentID, origin.Add(SlotOffset(b.orientation, slot)), noteText(c.Title, c.Content))
	}
	return true
}

// ResolvePersonaReply swaps a placeholder for an AI note at the placeholder's
// position. Returns false if the parent or the placeholder is missing.
func (b *Board) ResolvePersonaReply(parentID, title, content, placeholderID string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.indexOf(parentID) < 0 {
		b.logger.Debug("persona reply resolved after parent removal", "parent_id", parentID)
		return false
	}
	i := b.indexOf(placeholderID)
	if i < 0 {
		return false
	}
	skel, ok := b.nodes[i].(*SkeletonNode)
	if !ok {
		return false
	}
	pos := skel.Position

	b.removePlaceholders([]string{placeholderID})
	b.addChild(parentID, pos, noteText(title, content))
	return true
}

func (b *Board) addChild(parentID string, pos Position, text string) {
	id := b.newID("node")
	b.nodes = append(b.nodes, &TextNode{ID: id, Position: pos, Text: text, IsAI: true})
	b.edges = append(b.edges, Edge{
		ID:     b.newID("edge"),
		Source: parentID,
		Target: id,
		Style:  resolvedEdgeStyle,
	})
}

// ToggleOrientation flips the orientation and relays out the whole graph.
func (b *Board) ToggleOrientation() Orientation {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.orientation = b.orientation.Flip()
	b.layout.Apply(b.nodes, b.edges, b.orientation)
	b.logger.Debug("orientation toggled", "orientation", b.orientation, "nodes", len(b.nodes))
	return b.orientation
}

// Relayout recomputes every node position for the current orientation.
func (b *Board) Relayout() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.layout.Apply(b.nodes, b.edges, b.orientation)
}

// Orientation returns the current orientation.
func (b *Board) Orientation() Orientation {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.orientation
}

// MoveNode sets a node's position. Returns false if id is missing.
func (b *Board) MoveNode(id string, pos Position) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return false
	}
	setPosition(b.nodes[i], pos)
	return true
}

// SelectNode sets a node's selection flag. Returns false if id is missing.
func (b *Board) SelectNode(id string, selected bool) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return false
	}
	switch n := b.nodes[i].(type) {
	case *TextNode:
		n.Selected = selected
	case *SkeletonNode:
		n.Selected = selected
	}
	return true
}

// RemoveNode deletes a node and every edge touching it.
// Placeholders pointing at a removed parent are left in place.
func (b *Board) RemoveNode(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return false
	}
	b.nodes = slices.Delete(b.nodes, i, i+1)
	b.edges = filterEdges(b.edges, func(e Edge) bool { return e.Source != id && e.Target != id })
	return true
}

// RemoveEdge deletes one edge. Returns false if id is missing.
func (b *Board) RemoveEdge(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, e := range b.edges {
		if e.ID == id {
			b.edges = slices.Delete(b.edges, i, i+1)
			return true
		}
	}
	return false
}

// ReconcilePlaceholders removes placeholders whose parent no longer exists
// and returns their ids. Resolution never does this on its own; callers opt in.
func (b *Board) ReconcilePlaceholders() []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	var orphans []string
	for _, n := range b.nodes {
		if s, ok := n.(*SkeletonNode); ok && b.indexOf(s.ParentID) < 0 {
			orphans = append(orphans, s.ID)
		}
	}
	if b.removePlaceholders(orphans) > 0 {
		b.logger.Debug("orphaned placeholders removed", "count", len(orphans))
	}
	return orphans
}

// Node returns a copy of the node with the given id.
func (b *Board) Node(id string) (Node, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	i := b.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return cloneNode(b.nodes[i]), true
}

// Len returns the number of nodes and edges.
func (b *Board) Len() (nodes, edges int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.nodes), len(b.edges)
}

// Snapshot returns a deep copy of the graph.
func (b *Board) Snapshot() Graph {
	b.mu.Lock()
	defer b.mu.Unlock()

	g := Graph{
		Nodes:       make([]Node, len(b.nodes)),
		Edges:       make([]Edge, len(b.edges)),
		Orientation: b.orientation,
	}
	for i, n := range b.nodes {
		g.Nodes[i] = cloneNode(n)
	}
	copy(g.Edges, b.edges)
	return g
}

func (b *Board) indexOf(id string) int {
	for i, n := range b.nodes {
		if n.NodeID() == id {
			return i
		}
	}
	return -1
}

func filterEdges(edges []Edge, keep func(Edge) bool) []Edge {
	out := edges[:0]
	for _, e := range edges {
		if keep(e) {
			out = append(out, e)
		}
	}
	clear(edges[len(out):])
	return out
}

