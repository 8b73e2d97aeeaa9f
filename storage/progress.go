package storage

import (
	"sync"

	"github.com/srgchrksv/bitecast/logger"
	"github.com/srgchrksv/bitecast/models"
)

const subscriberBuffer = 64

// ProgressHub fans pipeline progress out to the websocket listeners of a
// session. Slow listeners drop events instead of stalling the pipeline.
type ProgressHub struct {
	mu   sync.Mutex
	subs map[string]map[chan models.ProgressEvent]struct{}
	log  *logger.Logger
}

func NewProgressHub(log *logger.Logger) *ProgressHub {
	if log == nil {
		log = logger.Nop()
	}
	return &ProgressHub{
		subs: make(map[string]map[chan models.ProgressEvent]struct{}),
		log:  log,
	}
}

// Subscribe registers a listener for sessionID. The returned func closes the
// channel and must be called once the listener is done.
func (h *ProgressHub) Subscribe(sessionID string) (<-chan models.ProgressEvent, func()) {
	ch := make(chan models.ProgressEvent, subscriberBuffer)
	h.mu.Lock()
	if h.subs[sessionID] == nil {
		h.subs[sessionID] = make(map[chan models.ProgressEvent]struct{})
	}
	h.subs[sessionID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			delete(h.subs[sessionID], ch)
			if len(h.subs[sessionID]) == 0 {
				delete(h.subs, sessionID)
			}
			close(ch)
		})
	}
}

func (h *ProgressHub) Publish(sessionID string, ev models.ProgressEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for ch := range h.subs[sessionID] {
		select {
		case ch <- ev:
		default:
			h.log.Warn("Dropping progress event for slow listener", "session_id", sessionID, "stage", ev.Stage)
		}
	}
}

// Reporter adapts Publish to the callback shape the pipeline expects.
func (h *ProgressHub) Reporter(sessionID string) func(models.ProgressEvent) {
	return func(ev models.ProgressEvent) { h.Publish(sessionID, ev) }
}
