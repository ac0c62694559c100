package anthropic

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/meikuraledutech/canvas"
)

// ErrMalformedOutput is returned when the model's text is not the expected JSON shape.
var ErrMalformedOutput = errors.New("anthropic: malformed model output")

// outputError is a parse failure. Its text is fixed so that decoder details
// never reach user-facing classification; the decoder error stays reachable
// through Cause for logging.
type outputError struct {
	cause error
}

func (e *outputError) Error() string { return ErrMalformedOutput.Error() }
func (e *outputError) Unwrap() error { return ErrMalformedOutput }
func (e *outputError) Cause() error  { return e.cause }

// decodeJSON parses text strictly, then falls back to the outermost {...}
// span for answers wrapped in prose or code fences.
func decodeJSON(text string, v any) error {
	text = strings.TrimSpace(text)
	if err := json.Unmarshal([]byte(text), v); err == nil {
		return nil
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return &outputError{cause: errors.New("no JSON object found")}
	}
	if err := json.Unmarshal([]byte(text[start:end+1]), v); err != nil {
		return &outputError{cause: err}
	}
	return nil
}

func parseConcepts(text string) ([]canvas.Concept, error) {
	var out struct {
		Concepts []canvas.Concept `json:"concepts"`
	}
	if err := decodeJSON(text, &out); err != nil {
		return nil, err
	}
	if len(out.Concepts) != canvas.SlotCount {
		return nil, &outputError{cause: fmt.Errorf("got %d concepts, want %d", len(out.Concepts), canvas.SlotCount)}
	}
	return slotOrder(out.Concepts), nil
}

// slotOrder puts concepts in canonical category order when every category
// appears exactly once. Otherwise the model's order is kept.
func slotOrder(concepts []canvas.Concept) []canvas.Concept {
	ordered := make([]canvas.Concept, canvas.SlotCount)
	filled := make([]bool, canvas.SlotCount)
	for _, c := range concepts {
		slot := -1
		for i, cat := range canvas.Categories {
			if strings.EqualFold(c.Category, cat) {
				slot = i
				break
			}
		}
		if slot < 0 || filled[slot] {
			return concepts
		}
		ordered[slot] = c
		filled[slot] = true
	}
	return ordered
}

func parseReply(text string) (canvas.Reply, error) {
	var r canvas.Reply
	if err := decodeJSON(text, &r); err != nil {
		return canvas.Reply{}, err
	}
	if r.Title == "" && r.Content == "" {
		return canvas.Reply{}, &outputError{cause: errors.New("empty reply")}
	}
	return r, nil
}
