package relay

import (
	"context"
	"net/http"

	"github.com/coder/websocket"
)

// ServeHTTP upgrades the request to a WebSocket and streams relayed events to
// it, one text frame per event, until either side goes away. Observers send
// nothing; anything they do send is discarded.
func (r *Relay) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	conn, err := websocket.Accept(w, req, &websocket.AcceptOptions{OriginPatterns: r.cfg.OriginPatterns})
	if err != nil {
		r.logger.Debugw("observer upgrade failed", "remote", req.RemoteAddr, "err", err)
		return
	}
	defer conn.CloseNow()

	obs := r.Subscribe()
	defer r.Unsubscribe(obs)
	r.logger.Infow("observer connected", "observer", obs.ID, "remote", req.RemoteAddr)

	ctx := conn.CloseRead(req.Context())
	for {
		select {
		case <-ctx.Done():
			r.logger.Infow("observer disconnected", "observer", obs.ID)
			return
		case ev, ok := <-obs.Events():
			if !ok {
				conn.Close(websocket.StatusGoingAway, "relay shutting down")
				return
			}
			frame, err := ev.Frame()
			if err != nil {
				r.logger.Warnw("unencodable event", "event", ev.Kind, "err", err)
				continue
			}
			wctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
			err = conn.Write(wctx, websocket.MessageText, frame)
			cancel()
			if err != nil {
				r.logger.Infow("observer write failed", "observer", obs.ID, "err", err)
				return
			}
		}
	}
}
