// Package api exposes a canvas board over HTTP.
package api

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/adaptor"
	recoverer "github.com/gofiber/fiber/v3/middleware/recover"
	"github.com/meikuraledutech/canvas"
	"github.com/meikuraledutech/canvas/internal/logging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Deps is everything the HTTP surface operates on.
// Gatherer is optional; without it /metrics is not mounted.
type Deps struct {
	Board    *canvas.Board
	Settings *canvas.Settings
	Expander *canvas.Expander
	Notices  *canvas.NoticeQueue
	Gatherer prometheus.Gatherer
	Logger   *slog.Logger
}

type textBody struct {
	Text string `json:"text"`
}

type createNodeBody struct {
	Position canvas.Position `json:"position"`
	Text     string          `json:"text"`
}

type selectBody struct {
	Selected bool `json:"selected"`
}

type connectBody struct {
	Source string `json:"source"`
	Target string `json:"target"`
}

// settingsBody updates only the fields that are present.
type settingsBody struct {
	AnthropicKey *string `json:"anthropicKey"`
	StabilityKey *string `json:"stabilityKey"`
	Open         *bool   `json:"open"`
}

// New builds the fiber app.
func New(d Deps) *fiber.App {
	if d.Logger == nil {
		d.Logger = logging.NewNop()
	}
	if d.Notices == nil {
		d.Notices = canvas.NewNoticeQueue(0)
	}

	app := fiber.New(fiber.Config{AppName: "canvas"})
	app.Use(recoverer.New())

	app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})
	if d.Gatherer != nil {
		app.Get("/metrics", adaptor.HTTPHandler(promhttp.HandlerFor(d.Gatherer, promhttp.HandlerOpts{})))
	}

	// ── Canvas ────────────────────────────────────────────────────────
	app.Get("/canvas", func(c fiber.Ctx) error {
		return c.JSON(toWire(d.Board.Snapshot()))
	})

	app.Post("/orientation/toggle", func(c fiber.Ctx) error {
		o := d.Board.ToggleOrientation()
		return c.JSON(fiber.Map{"orientation": o.String()})
	})

	app.Post("/placeholders/reconcile", func(c fiber.Ctx) error {
		removed := d.Board.ReconcilePlaceholders()
		if removed == nil {
			removed = []string{}
		}
		return c.JSON(fiber.Map{"removed": removed})
	})

	// ── Nodes ─────────────────────────────────────────────────────────
	app.Post("/nodes", func(c fiber.Ctx) error {
		var body createNodeBody
		if len(c.Body()) > 0 {
			if err := c.Bind().JSON(&body); err != nil {
				return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
			}
		}
		id := d.Board.CreateTextNode(body.Position)
		if body.Text != "" {
			d.Board.SetNodeText(id, body.Text)
		}
		return c.Status(201).JSON(fiber.Map{"id": id})
	})

	app.Put("/nodes/:id/text", func(c fiber.Ctx) error {
		var body textBody
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		if !d.Board.SetNodeText(c.Params("id"), body.Text) {
			return c.Status(404).JSON(fiber.Map{"error": "text node not found"})
		}
		return c.SendStatus(204)
	})

	app.Put("/nodes/:id/position", func(c fiber.Ctx) error {
		var pos canvas.Position
		if err := c.Bind().JSON(&pos); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		if !d.Board.MoveNode(c.Params("id"), pos) {
			return c.Status(404).JSON(fiber.Map{"error": "node not found"})
		}
		return c.SendStatus(204)
	})

	app.Put("/nodes/:id/selected", func(c fiber.Ctx) error {
		var body selectBody
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		if !d.Board.SelectNode(c.Params("id"), body.Selected) {
			return c.Status(404).JSON(fiber.Map{"error": "node not found"})
		}
		return c.SendStatus(204)
	})

	app.Delete("/nodes/:id", func(c fiber.Ctx) error {
		if !d.Board.RemoveNode(c.Params("id")) {
			return c.Status(404).JSON(fiber.Map{"error": "node not found"})
		}
		return c.SendStatus(204)
	})

	// ── Edges ─────────────────────────────────────────────────────────
	app.Post("/edges", func(c fiber.Ctx) error {
		var body connectBody
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		id, ok := d.Board.Connect(body.Source, body.Target)
		if !ok {
			return c.Status(404).JSON(fiber.Map{"error": "node not found"})
		}
		return c.Status(201).JSON(fiber.Map{"id": id})
	})

	app.Delete("/edges/:id", func(c fiber.Ctx) error {
		if !d.Board.RemoveEdge(c.Params("id")) {
			return c.Status(404).JSON(fiber.Map{"error": "edge not found"})
		}
		return c.SendStatus(204)
	})

	// ── Generation ────────────────────────────────────────────────────
	// fiber recycles the request context when the handler returns, and
	// generation outlives the request.
	app.Post("/nodes/:id/expand", func(c fiber.Ctx) error {
		ids, err := d.Expander.Expand(context.Background(), c.Params("id"))
		if err != nil {
			return guardError(c, err)
		}
		return c.Status(202).JSON(fiber.Map{"placeholders": ids})
	})

	app.Post("/nodes/:id/personas/:persona", func(c fiber.Ctx) error {
		id, err := d.Expander.AskPersona(context.Background(), c.Params("id"), c.Params("persona"))
		if err != nil {
			return guardError(c, err)
		}
		return c.Status(202).JSON(fiber.Map{"placeholder": id})
	})

	app.Get("/personas", func(c fiber.Ctx) error {
		return c.JSON(canvas.Personas())
	})

	app.Get("/notices", func(c fiber.Ctx) error {
		return c.JSON(d.Notices.Drain())
	})

	// ── Settings ──────────────────────────────────────────────────────
	app.Get("/settings", func(c fiber.Ctx) error {
		return c.JSON(settingsView(d.Settings))
	})

	app.Put("/settings", func(c fiber.Ctx) error {
		var body settingsBody
		if err := c.Bind().JSON(&body); err != nil {
			return c.Status(400).JSON(fiber.Map{"error": "invalid body"})
		}
		if body.AnthropicKey != nil || body.StabilityKey != nil {
			creds := d.Settings.Credentials()
			if body.AnthropicKey != nil {
				creds.AnthropicKey = *body.AnthropicKey
			}
			if body.StabilityKey != nil {
				creds.StabilityKey = *body.StabilityKey
			}
			if err := d.Settings.Save(c.Context(), creds); err != nil {
				d.Logger.Error("save settings", "scope", d.Settings.Scope(), "err", err)
				return c.Status(500).JSON(fiber.Map{"error": err.Error()})
			}
		}
		if body.Open != nil {
			d.Settings.SetOpen(*body.Open)
		}
		return c.JSON(settingsView(d.Settings))
	})

	return app
}

// settingsView reports which credentials are set. Key values never leave the server.
func settingsView(s *canvas.Settings) fiber.Map {
	creds := s.Credentials()
	return fiber.Map{
		"scope":           s.Scope(),
		"open":            s.IsOpen(),
		"hasAnthropicKey": creds.AnthropicKey != "",
		"hasStabilityKey": creds.StabilityKey != "",
	}
}

// guardError maps an Expander guard failure to a response.
func guardError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, canvas.ErrCredentialMissing):
		return c.Status(428).JSON(fiber.Map{"error": string(canvas.NoticeSettingsRequired)})
	case errors.Is(err, canvas.ErrNodeNotFound):
		return c.Status(404).JSON(fiber.Map{"error": "node not found"})
	case errors.Is(err, canvas.ErrEmptyPrompt):
		return c.Status(422).JSON(fiber.Map{"error": string(canvas.NoticeEmptyPrompt)})
	case errors.Is(err, canvas.ErrUnknownPersona):
		return c.Status(400).JSON(fiber.Map{"error": "unknown persona"})
	}
	return c.Status(500).JSON(fiber.Map{"error": err.Error()})
}
