package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/meikuraledutech/canvas"
	"github.com/meikuraledutech/canvas/anthropic"
	"github.com/meikuraledutech/canvas/memory"
)

// cannedGenerator stands in for the API when no key is configured.
type cannedGenerator struct{}

func (cannedGenerator) Expand(_ context.Context, prompt, _ string) ([]canvas.Concept, error) {
	out := make([]canvas.Concept, canvas.SlotCount)
	for i, cat := range canvas.Categories {
		out[i] = canvas.Concept{
			Category: cat,
			Title:    strings.ToUpper(cat[:1]) + cat[1:],
			Content:  fmt.Sprintf("A %s take on %q.", cat, prompt),
		}
	}
	return out, nil
}

func (cannedGenerator) Persona(_ context.Context, prompt, _ string, p canvas.Persona) (canvas.Reply, error) {
	return canvas.Reply{Title: p.Name, Content: fmt.Sprintf("%s has thoughts on %q.", p.Role, prompt)}, nil
}

func main() {
	ctx := context.Background()

	key := os.Getenv("ANTHROPIC_API_KEY")
	var gen canvas.Generator = cannedGenerator{}
	if key != "" {
		gen = anthropic.New()
	} else {
		key = "offline"
	}

	settings, err := canvas.LoadSettings(ctx, memory.New(), "")
	if err != nil {
		log.Fatalf("settings: %v", err)
	}
	if err := settings.SetAnthropicKey(ctx, key); err != nil {
		log.Fatalf("settings: %v", err)
	}

	board := canvas.NewBoard()
	notices := canvas.NewNoticeQueue(0)
	exp := canvas.NewExpander(board, settings, gen, canvas.WithNotifier(notices.Push))

	// 1. A note to branch from
	root := board.CreateTextNode(canvas.Position{})
	board.SetNodeText(root, "An interactive light installation for a night market")

	// ── Four-way expansion ────────────────────────────────────────────
	placeholders, err := exp.Expand(ctx, root)
	if err != nil {
		log.Fatalf("expand: %v", err)
	}
	fmt.Printf("placeholders while waiting: %d\n", len(placeholders))
	exp.Wait()
	printGraph(board.Snapshot())

	// ── Persona reply ─────────────────────────────────────────────────
	if _, err := exp.AskPersona(ctx, root, canvas.PersonaCritic); err != nil {
		log.Fatalf("persona: %v", err)
	}
	exp.Wait()

	// ── Re-layout sideways ────────────────────────────────────────────
	board.ToggleOrientation()
	printGraph(board.Snapshot())

	for _, n := range notices.Drain() {
		fmt.Printf("notice: %s %s\n", n.Kind, n.Message)
	}
}

func printGraph(g canvas.Graph) {
	fmt.Printf("\n%s: %d nodes, %d edges\n", g.Orientation, len(g.Nodes), len(g.Edges))
	for _, n := range g.Nodes {
		p := n.NodePosition()
		switch v := n.(type) {
		case *canvas.TextNode:
			title, _, _ := strings.Cut(v.Text, "\n")
			fmt.Printf("  (%6.0f,%6.0f) %-12s ai=%-5t %s\n", p.X, p.Y, v.ID[:12], v.IsAI, title)
		case *canvas.SkeletonNode:
			fmt.Printf("  (%6.0f,%6.0f) %-12s loading\n", p.X, p.Y, v.ID[:12])
		}
	}
}
