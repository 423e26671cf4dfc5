package relay

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/coder/websocket"
)

// Run keeps one connection to the agent's event stream for as long as ctx
// lives, publishing every frame it reads. A lost connection is redialed with
// exponential backoff; events emitted meanwhile are lost. Run returns nil
// once ctx is done.
func (r *Relay) Run(ctx context.Context) error {
	delay := r.cfg.ReconnectMin
	for {
		connected, err := r.stream(ctx)
		r.metrics.SetAgentConnected(false)
		if ctx.Err() != nil {
			return nil
		}
		if connected {
			delay = r.cfg.ReconnectMin
		}
		r.logger.Warnw("agent event stream unavailable", "url", r.cfg.URL, "err", err, "retry_in", delay.String())

		t := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			t.Stop()
			return nil
		case <-t.C:
		}
		delay = min(delay*2, r.cfg.ReconnectMax)
	}
}

// stream reads one agent session until it fails. connected reports whether
// the dial succeeded.
func (r *Relay) stream(ctx context.Context) (connected bool, err error) {
	conn, _, err := websocket.Dial(ctx, r.cfg.URL, nil)
	if err != nil {
		return false, err
	}
	defer conn.CloseNow()
	conn.SetReadLimit(r.cfg.ReadLimit)

	r.metrics.SetAgentConnected(true)
	r.logger.Infow("agent event stream connected", "url", r.cfg.URL)

	for {
		typ, data, err := conn.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) == websocket.StatusNormalClosure {
				return true, errors.New("agent closed the event stream")
			}
			return true, err
		}
		if typ != websocket.MessageText {
			continue
		}
		var ev Event
		if err := json.Unmarshal(data, &ev); err != nil {
			r.logger.Debugw("ignoring malformed agent event", "bytes", len(data), "err", err)
			continue
		}
		ev.frame = data
		r.Publish(ev)
	}
}
