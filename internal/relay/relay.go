// Package relay forwards the capture agent's live events to every connected
// observer.
//
// One standing connection reads the agent's event stream (see Run). Each
// observer owns a bounded queue; publishing never blocks, so an observer that
// falls behind loses events instead of stalling the others. Observers only
// see events published after they subscribed.
package relay

import (
	"encoding/json"
	"net/url"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/metrics"
	"github.com/ovaphlow/pitchfork/service-enrollment-go/pkg/utilities"
)

// EventKind names one of the agent events that are relayed.
type EventKind string

const (
	LivePreview          EventKind = "live_preview"
	EnrollmentStep       EventKind = "enrollment_step"
	CaptureResult        EventKind = "capture_result"
	IdentificationResult EventKind = "identification_result"
	IdentificationStep   EventKind = "identification_step"
)

// Valid reports whether k is relayed; anything else the agent emits is ignored.
func (k EventKind) Valid() bool {
	switch k {
	case LivePreview, EnrollmentStep, CaptureResult, IdentificationResult, IdentificationStep:
		return true
	}
	return false
}

// Event is one agent event. Data is agent-defined and never inspected.
type Event struct {
	Kind EventKind       `json:"event"`
	Data json.RawMessage `json:"data"`

	frame []byte // the frame as received from the agent
}

// Frame returns the bytes sent to observers: the agent's original frame when
// there is one.
func (e Event) Frame() ([]byte, error) {
	if e.frame != nil {
		return e.frame, nil
	}
	return json.Marshal(e)
}

type Config struct {
	URL            string        // agent event stream, ws:// or wss://
	Buffer         int           // per-observer queue length
	ReconnectMin   time.Duration // first reconnect delay
	ReconnectMax   time.Duration // reconnect delay cap
	ReadLimit      int64         // largest accepted agent frame
	WriteTimeout   time.Duration // per-frame write bound towards an observer
	OriginPatterns []string      // allowed observer origins (host patterns)
}

// ConfigFromEnv reads relay config from environment variables
func ConfigFromEnv() Config {
	cfg := Config{
		URL:          os.Getenv("AGENT_EVENTS_URL"),
		Buffer:       64,
		ReconnectMin: 500 * time.Millisecond,
		ReconnectMax: 15 * time.Second,
		ReadLimit:    16 << 20,
		WriteTimeout: 5 * time.Second,
	}
	if cfg.URL == "" {
		cfg.URL = "ws://127.0.0.1:5000/events"
	}
	if v, err := strconv.Atoi(os.Getenv("RELAY_BUFFER")); err == nil && v > 0 {
		cfg.Buffer = v
	}
	if d, err := time.ParseDuration(os.Getenv("RELAY_RECONNECT_MIN")); err == nil && d > 0 {
		cfg.ReconnectMin = d
	}
	if d, err := time.ParseDuration(os.Getenv("RELAY_RECONNECT_MAX")); err == nil && d > 0 {
		cfg.ReconnectMax = d
	}
	cfg.OriginPatterns = originPatterns(os.Getenv("CORS_ALLOWED_ORIGINS"))
	return cfg
}

// originPatterns turns a comma separated origin list into websocket host
// patterns; an empty list allows any origin, like the CORS default.
func originPatterns(raw string) []string {
	var out []string
	for _, o := range strings.Split(raw, ",") {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			o = u.Host
		}
		out = append(out, o)
	}
	if len(out) == 0 {
		return []string{"*"}
	}
	return out
}

// Observer is one subscriber to the relayed stream.
type Observer struct {
	ID     string
	events chan Event
}

// Events yields relayed events in publish order. It is closed on unsubscribe.
func (o *Observer) Events() <-chan Event { return o.events }

// Relay fans agent events out to observers.
type Relay struct {
	cfg     Config
	logger  *zap.SugaredLogger
	metrics *metrics.Metrics

	mu        sync.RWMutex
	observers []*Observer
	closed    bool
}

func New(cfg Config, logger *zap.SugaredLogger, m *metrics.Metrics) *Relay {
	if cfg.Buffer <= 0 {
		cfg.Buffer = 64
	}
	if cfg.ReconnectMin <= 0 {
		cfg.ReconnectMin = 500 * time.Millisecond
	}
	if cfg.ReconnectMax < cfg.ReconnectMin {
		cfg.ReconnectMax = cfg.ReconnectMin
	}
	if cfg.ReadLimit <= 0 {
		cfg.ReadLimit = 16 << 20
	}
	if cfg.WriteTimeout <= 0 {
		cfg.WriteTimeout = 5 * time.Second
	}
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &Relay{cfg: cfg, logger: logger, metrics: m}
}

// Subscribe registers a new observer. After Close it returns an observer
// whose stream is already closed.
func (r *Relay) Subscribe() *Observer {
	o := &Observer{ID: utilities.NewSnowflakeID(), events: make(chan Event, r.cfg.Buffer)}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		close(o.events)
		return o
	}
	r.observers = append(r.observers, o)
	r.metrics.SetObservers(len(r.observers))
	return o
}

// Unsubscribe removes o and closes its stream. Other observers are unaffected.
func (r *Relay) Unsubscribe(o *Observer) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i, existing := range r.observers {
		if existing == o {
			r.observers = append(r.observers[:i], r.observers[i+1:]...)
			close(o.events)
			break
		}
	}
	r.metrics.SetObservers(len(r.observers))
}

// Publish hands ev to every observer without blocking. Events of unknown
// kind are dropped.
func (r *Relay) Publish(ev Event) {
	if !ev.Kind.Valid() {
		r.logger.Debugw("ignoring unknown agent event", "event", ev.Kind)
		return
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, o := range r.observers {
		select {
		case o.events <- ev:
			r.metrics.IncrementForwarded(string(ev.Kind))
		default:
			r.metrics.IncrementDropped(string(ev.Kind))
		}
	}
}

// Observers reports how many observers are connected.
func (r *Relay) Observers() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.observers)
}

// Close ends every observer stream and refuses new ones.
func (r *Relay) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return
	}
	r.closed = true
	for _, o := range r.observers {
		close(o.events)
	}
	r.observers = nil
	r.metrics.SetObservers(0)
}
