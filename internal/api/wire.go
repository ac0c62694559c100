package api

import "github.com/meikuraledutech/canvas"

// Graph as the browser renders it: flow nodes with a type tag and a data
// bag, edges with stroke hints.

type wireGraph struct {
	Orientation string     `json:"orientation"`
	Nodes       []wireNode `json:"nodes"`
	Edges       []wireEdge `json:"edges"`
}

type wireNode struct {
	ID             string          `json:"id"`
	Type           string          `json:"type"`
	Position       canvas.Position `json:"position"`
	Data           wireNodeData    `json:"data"`
	Selected       bool            `json:"selected,omitempty"`
	TargetPosition canvas.Side     `json:"targetPosition"`
	SourcePosition canvas.Side     `json:"sourcePosition"`
}

type wireNodeData struct {
	Text     string `json:"text,omitempty"`
	IsAI     bool   `json:"isAI,omitempty"`
	ParentID string `json:"parentId,omitempty"`
}

type wireEdge struct {
	ID       string         `json:"id"`
	Source   string         `json:"source"`
	Target   string         `json:"target"`
	Type     string         `json:"type,omitempty"`
	Animated bool           `json:"animated,omitempty"`
	Style    wireEdgeStroke `json:"style"`
}

type wireEdgeStroke struct {
	Stroke          string `json:"stroke"`
	StrokeDasharray string `json:"strokeDasharray,omitempty"`
}

const (
	strokeResolved    = "#a3a3a3"
	strokePlaceholder = "#d4d4d8"
)

func toWire(g canvas.Graph) wireGraph {
	in, out := g.Orientation.Handles()
	w := wireGraph{
		Orientation: g.Orientation.String(),
		Nodes:       make([]wireNode, 0, len(g.Nodes)),
		Edges:       make([]wireEdge, 0, len(g.Edges)),
	}

	for _, n := range g.Nodes {
		wn := wireNode{
			ID:             n.NodeID(),
			Position:       n.NodePosition(),
			TargetPosition: in,
			SourcePosition: out,
		}
		switch v := n.(type) {
		case *canvas.TextNode:
			wn.Type = "text"
			wn.Data = wireNodeData{Text: v.Text, IsAI: v.IsAI}
			wn.Selected = v.Selected
		case *canvas.SkeletonNode:
			wn.Type = "skeleton"
			wn.Data = wireNodeData{ParentID: v.ParentID}
			wn.Selected = v.Selected
		}
		w.Nodes = append(w.Nodes, wn)
	}

	for _, e := range g.Edges {
		we := wireEdge{
			ID:       e.ID,
			Source:   e.Source,
			Target:   e.Target,
			Type:     e.Style.Type,
			Animated: e.Style.Animated,
			Style:    wireEdgeStroke{Stroke: strokeResolved},
		}
		if e.Style.Dashed {
			we.Style = wireEdgeStroke{Stroke: strokePlaceholder, StrokeDasharray: "5 5"}
		}
		w.Edges = append(w.Edges, we)
	}
	return w
}
