package signal

import (
	"context"
	"errors"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"

	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
	"github.com/dkeye/Meet/internal/protocol"
)

func (ctl *SignalWSController) writePump(ctx context.Context, c *WsSignalConn) {
	ticker := time.NewTicker(ctl.opts.PingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			log.Debug().Str("module", "signal").Msg("writePump ctx done")
			return
		case data, ok := <-c.send:
			if !ok {
				log.Debug().Str("module", "signal").Msg("writePump channel closed")
				return
			}
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump set deadline")
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				log.Error().Err(err).Str("module", "signal").Msg("writePump write error")
				return
			}
		case <-ticker.C:
			if err := c.conn.SetWriteDeadline(time.Now().Add(ctl.opts.WriteWait)); err != nil {
				return
			}
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				log.Debug().Err(err).Str("module", "signal").Msg("writePump ping failed")
				return
			}
		}
	}
}

// readPump feeds inbound frames to the orchestrator until the socket fails,
// then reports the disconnect exactly once.
func (ctl *SignalWSController) readPump(ctx context.Context, sid core.ConnectionID, token string, c *WsSignalConn) {
	defer func() {
		log.Info().Str("module", "signal").Str("sid", string(sid)).Msg("readPump closing")
		c.Close()
		ctl.joins.Prune()

		submitCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), ctl.opts.WriteWait)
		defer cancel()
		if err := ctl.Orch.Submit(submitCtx, core.Disconnect{ID: sid}); err != nil {
			log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("disconnect not delivered")
		}
	}()

	c.conn.SetReadLimit(ctl.opts.ReadLimit)
	_ = c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(ctl.opts.PongWait))
	})

	limiter := rate.NewLimiter(rate.Inf, 0)
	if ctl.opts.RateBurst > 0 && ctl.opts.RateInterval > 0 {
		limiter = rate.NewLimiter(rate.Every(ctl.opts.RateInterval), ctl.opts.RateBurst)
	}
	key := domain.UserID(token)
	if key == "" {
		key = domain.UserID(sid)
	}

	for {
		typ, data, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived) {
				log.Warn().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("readPump read error")
			}
			return
		}
		if ctx.Err() != nil {
			return
		}
		if typ != websocket.TextMessage {
			ctl.sendError(c, "text frames only")
			continue
		}
		if !limiter.Allow() {
			log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("rate limited")
			ctl.sendError(c, "rate_limited")
			continue
		}
		ctl.handleSignal(ctx, sid, key, c, data)
	}
}

func (ctl *SignalWSController) handleSignal(ctx context.Context, sid core.ConnectionID, key domain.UserID, c *WsSignalConn, data []byte) {
	typ, err := protocol.PeekType(data)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad json")
		ctl.sendError(c, "bad_payload")
		return
	}

	switch typ {
	case protocol.TypePing:
		ctl.handlePing(c)
		return
	case string(core.EventJoinRoom):
		if !ctl.joins.Allow(key) {
			log.Warn().Str("module", "signal").Str("sid", string(sid)).Msg("join rate limited")
			ctl.sendError(c, "too_many_joins")
			return
		}
	}

	ev, err := protocol.Decode(sid, data)
	if err != nil {
		switch {
		case errors.Is(err, protocol.ErrUnknownEvent):
			log.Warn().Str("module", "signal").Str("sid", string(sid)).Str("type", typ).Msg("unknown signal")
			ctl.sendError(c, "unknown_event")
		default:
			log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("bad payload")
			ctl.sendError(c, "bad_payload")
		}
		return
	}

	if err := ctl.Orch.Submit(ctx, ev); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Str("type", typ).Msg("submit")
	}
}
