package canvas

import (
	"errors"
	"net/http"
	"strings"
	"sync"
)

// NoticeKind classifies a user-facing transient message.
type NoticeKind string

const (
	NoticeSettingsRequired   NoticeKind = "settings_required"
	NoticeEmptyPrompt        NoticeKind = "empty_prompt"
	NoticeGenerationFailed   NoticeKind = "generation_failed"
	NoticeCredentialRejected NoticeKind = "credential_rejected"
)

// Notice is a toast-style message for the user.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	NodeID  string     `json:"nodeId,omitempty"`
	Message string     `json:"message"`
}

// statusCoder is implemented by backend errors that carry an HTTP status.
type statusCoder interface {
	StatusCode() int
}

// IsCredentialError reports whether err looks like the backend refused the credential.
// Errors carrying an HTTP status are judged by it alone; anything else falls
// back to a heuristic over the error text.
func IsCredentialError(err error) bool {
	if err == nil {
		return false
	}
	var sc statusCoder
	if errors.As(err, &sc) {
		code := sc.StatusCode()
		return code == http.StatusUnauthorized || code == http.StatusForbidden
	}
	msg := strings.ToLower(err.Error())
	for _, marker := range []string{"401", "403", "unauthorized", "key", "invalid"} {
		if strings.Contains(msg, marker) {
			return true
		}
	}
	return false
}

// NoticeQueue buffers notices until a reader drains them.
// When full, the oldest notice is dropped.
type NoticeQueue struct {
	mu    sync.Mutex
	items []Notice
	limit int
}

// NewNoticeQueue creates a queue holding at most limit notices.
func NewNoticeQueue(limit int) *NoticeQueue {
	if limit <= 0 {
		limit = 32
	}
	return &NoticeQueue{limit: limit}
}

// Push appends n. It has the signature expected by WithNotifier.
func (q *NoticeQueue) Push(n Notice) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == q.limit {
		q.items = q.items[1:]
	}
	q.items = append(q.items, n)
}

// Drain returns every pending notice, oldest first, and empties the queue.
func (q *NoticeQueue) Drain() []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()

	out := q.items
	q.items = nil
	if out == nil {
		out = []Notice{}
	}
	return out
}
