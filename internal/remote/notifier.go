package remote

import (
	"sync"

	"jobdeck/internal/providers"
)

// Notifier receives one message per failed upstream request.
type Notifier interface {
	Notify(kind Kind, message string)
}

type Notification struct {
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
}

// LogNotifier writes notifications to the app log and keeps the latest ones for display.
type LogNotifier struct {
	logger providers.Logger
	keep   int

	mu     sync.Mutex
	recent []Notification
}

func NewLogNotifier(logger providers.Logger) *LogNotifier {
	return &LogNotifier{logger: logger, keep: 50}
}

func (n *LogNotifier) Notify(kind Kind, message string) {
	n.logger.Warnf(providers.TypeApp, "Upstream %s: %s", kind, message)

	n.mu.Lock()
	defer n.mu.Unlock()
	n.recent = append(n.recent, Notification{Kind: kind, Message: message})
	if len(n.recent) > n.keep {
		n.recent = n.recent[len(n.recent)-n.keep:]
	}
}

// Drain returns the pending notifications, oldest first, and forgets them.
func (n *LogNotifier) Drain() []Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := n.recent
	n.recent = nil
	if out == nil {
		out = []Notification{}
	}
	return out
}
