package canvas

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/meikuraledutech/canvas/internal/logging"
)

// Expansion kinds and outcomes reported to ExpansionHooks.
const (
	KindExpand  = "expand"
	KindPersona = "persona"

	OutcomeResolved = "resolved"
	OutcomeStale    = "stale"
	OutcomeFailed   = "failed"
)

// ExpansionHooks observe generation calls. Nil fields are skipped.
type ExpansionHooks struct {
	OnDispatch func(kind string)
	OnSettle   func(kind, outcome string, elapsed time.Duration)
}

// Expander runs AI expansion against a Board in three phases: placeholders
// are inserted synchronously, the generator is called in the background,
// and the placeholders are then replaced (success) or discarded (failure).
//
// Every call closes over its own placeholder ids, so concurrent expansions
// settle independently and in whatever order the backend answers.
type Expander struct {
	board     *Board
	settings  *Settings
	gen       Generator
	logger    *slog.Logger
	notify    func(Notice)
	hooks     ExpansionHooks
	timeout   time.Duration
	reconcile bool

	wg sync.WaitGroup
}

// ExpanderOption configures an Expander.
type ExpanderOption func(*Expander)

// WithExpanderLogger sets the logger.
func WithExpanderLogger(logger *slog.Logger) ExpanderOption {
	return func(e *Expander) {
		e.logger = logger
	}
}

// WithNotifier sets where user-facing notices go.
func WithNotifier(fn func(Notice)) ExpanderOption {
	return func(e *Expander) {
		e.notify = fn
	}
}

// WithHooks registers observability hooks.
func WithHooks(h ExpansionHooks) ExpanderOption {
	return func(e *Expander) {
		e.hooks = h
	}
}

// WithTimeout bounds each generation call (default 60s).
func WithTimeout(d time.Duration) ExpanderOption {
	return func(e *Expander) {
		e.timeout = d
	}
}

// WithPlaceholderReconciliation makes a stale resolution discard its own
// placeholders instead of leaving them orphaned on the board.
func WithPlaceholderReconciliation(enabled bool) ExpanderOption {
	return func(e *Expander) {
		e.reconcile = enabled
	}
}

// NewExpander wires a board, its settings and a generator together.
func NewExpander(board *Board, settings *Settings, gen Generator, opts ...ExpanderOption) *Expander {
	e := &Expander{
		board:    board,
		settings: settings,
		gen:      gen,
		logger:   logging.NewNop(),
		notify:   func(Notice) {},
		timeout:  60 * time.Second,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Expand starts a four-way expansion of parentID and returns the placeholder ids.
// Guard failures return an error and leave the board untouched; backend
// failures are reported later as notices.
func (e *Expander) Expand(ctx context.Context, parentID string) ([]string, error) {
	prompt, credential, err := e.preflight(parentID)
	if err != nil {
		return nil, err
	}

	ids := e.board.InsertPlaceholderSet(parentID)
	if ids == nil {
		return nil, ErrNodeNotFound
	}
	e.logger.Info("expansion dispatched", "parent_id", parentID, "placeholders", len(ids))

	e.dispatch(ctx, KindExpand, func(ctx context.Context) string {
		concepts, err := e.gen.Expand(ctx, prompt, credential)
		if err == nil && len(concepts) != SlotCount {
			err = fmt.Errorf("canvas: expected %d concepts, got %d", SlotCount, len(concepts))
		}
		if err != nil {
			e.board.DiscardPlaceholders(ids...)
			e.fail(parentID, err)
			return OutcomeFailed
		}
		if !e.board.ResolveExpansion(parentID, concepts, ids) {
			e.stale(parentID, ids)
			return OutcomeStale
		}
		return OutcomeResolved
	})
	return ids, nil
}

// AskPersona starts a single reply from personaID and returns the placeholder id.
// The placeholder takes the persona's slot.
func (e *Expander) AskPersona(ctx context.Context, parentID, personaID string) (string, error) {
	persona, ok := PersonaByID(personaID)
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownPersona, personaID)
	}
	prompt, credential, err := e.preflight(parentID)
	if err != nil {
		return "", err
	}

	id, ok := e.board.InsertSinglePlaceholder(parentID, PersonaSlot(personaID))
	if !ok {
		return "", ErrNodeNotFound
	}
	e.logger.Info("persona dispatched", "parent_id", parentID, "persona", personaID)

	e.dispatch(ctx, KindPersona, func(ctx context.Context) string {
		reply, err := e.gen.Persona(ctx, prompt, credential, persona)
		if err != nil {
			e.board.DiscardPlaceholders(id)
			e.fail(parentID, err)
			return OutcomeFailed
		}
		if !e.board.ResolvePersonaReply(parentID, reply.Title, reply.Content, id) {
			e.stale(parentID, []string{id})
			return OutcomeStale
		}
		return OutcomeResolved
	})
	return id, nil
}

// Wait blocks until every dispatched call has settled.
func (e *Expander) Wait() {
	e.wg.Wait()
}

// preflight checks the credential and the parent's text before anything is mutated.
func (e *Expander) preflight(parentID string) (prompt, credential string, err error) {
	if !e.settings.HasCredential() {
		e.settings.SetOpen(true)
		e.notify(Notice{
			Kind:    NoticeSettingsRequired,
			NodeID:  parentID,
			Message: "Add your API key in settings to use AI features.",
		})
		return "", "", ErrCredentialMissing
	}

	n, ok := e.board.Node(parentID)
	if !ok {
		return "", "", ErrNodeNotFound
	}
	switch v := n.(type) {
	case *TextNode:
		prompt = v.Text
	case *SkeletonNode:
		prompt = ""
	}
	if prompt == "" {
		e.notify(Notice{
			Kind:    NoticeEmptyPrompt,
			NodeID:  parentID,
			Message: "Write something in the note first.",
		})
		return "", "", ErrEmptyPrompt
	}
	return prompt, e.settings.Credentials().AnthropicKey, nil
}

func (e *Expander) dispatch(ctx context.Context, kind string, run func(context.Context) string) {
	if e.hooks.OnDispatch != nil {
		e.hooks.OnDispatch(kind)
	}
	// The caller's context usually belongs to a request that ends before the
	// backend answers.
	ctx = context.WithoutCancel(ctx)

	e.wg.Add(1)
	go func() {
		defer e.wg.Done()

		ctx, cancel := context.WithTimeout(ctx, e.timeout)
		defer cancel()

		start := time.Now()
		outcome := run(ctx)
		if e.hooks.OnSettle != nil {
			e.hooks.OnSettle(kind, outcome, time.Since(start))
		}
	}()
}

func (e *Expander) fail(parentID string, err error) {
	n := Notice{
		Kind:    NoticeGenerationFailed,
		NodeID:  parentID,
		Message: "Generation failed. Please try again.",
	}
	if IsCredentialError(err) {
		n.Kind = NoticeCredentialRejected
		n.Message = "The API key was rejected. Check it in settings."
	}
	e.logger.Warn("generation failed", "parent_id", parentID, "notice", n.Kind, "err", err)
	e.notify(n)
}

// stale absorbs a resolution whose parent or placeholder disappeared.
func (e *Expander) stale(parentID string, placeholderIDs []string) {
	e.logger.Debug("stale resolution ignored", "parent_id", parentID, "reconcile", e.reconcile)
	if e.reconcile {
		e.board.DiscardPlaceholders(placeholderIDs...)
	}
}
