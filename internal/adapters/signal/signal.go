package signal

import (
	"context"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc"

	"github.com/dkeye/Meet/internal/app/orch"
	"github.com/dkeye/Meet/internal/config"
	"github.com/dkeye/Meet/internal/core"
)

type Options struct {
	ReadLimit    int64
	PingPeriod   time.Duration
	PongWait     time.Duration
	WriteWait    time.Duration
	SendBuffer   int
	RateBurst    int
	RateInterval time.Duration
	JoinLimit    int
	JoinInterval time.Duration
	ClientURL    string
}

func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		ReadLimit:    cfg.ReadLimit,
		PingPeriod:   cfg.PingPeriod,
		PongWait:     cfg.PongWait,
		WriteWait:    cfg.WriteWait,
		SendBuffer:   cfg.SendBuffer,
		RateBurst:    cfg.RateLimit.Burst,
		RateInterval: cfg.RateLimit.Interval,
		JoinLimit:    cfg.JoinLimit.Limit,
		JoinInterval: cfg.JoinLimit.Interval,
		ClientURL:    cfg.ClientURL,
	}
}

func (o Options) withDefaults() Options {
	if o.PongWait <= 0 {
		o.PongWait = 60 * time.Second
	}
	if o.PingPeriod <= 0 || o.PingPeriod >= o.PongWait {
		o.PingPeriod = o.PongWait * 9 / 10
	}
	if o.WriteWait <= 0 {
		o.WriteWait = 10 * time.Second
	}
	if o.ReadLimit <= 0 {
		o.ReadLimit = 64 << 10
	}
	return o
}

type SignalWSController struct {
	Orch *orch.Orchestrator

	opts     Options
	joins    *JoinRateLimiter
	upgrader websocket.Upgrader
}

func NewSignalWSController(o *orch.Orchestrator, opts Options) *SignalWSController {
	opts = opts.withDefaults()
	return &SignalWSController{
		Orch:  o,
		opts:  opts,
		joins: NewJoinRateLimiter(opts.JoinLimit, opts.JoinInterval),
		upgrader: websocket.Upgrader{
			CheckOrigin: originChecker(opts.ClientURL),
		},
	}
}

// originChecker admits every origin when clientURL is empty. Requests with
// no Origin header come from non-browser clients and are admitted too.
func originChecker(clientURL string) func(r *http.Request) bool {
	allowed := strings.TrimRight(clientURL, "/")
	return func(r *http.Request) bool {
		if allowed == "" || allowed == "*" {
			return true
		}
		origin := r.Header.Get("Origin")
		return origin == "" || strings.TrimRight(origin, "/") == allowed
	}
}

type WsSignalConn struct {
	conn *websocket.Conn
	send chan core.Frame

	mu     sync.RWMutex
	closed bool
}

func newWsSignalConn(ws *websocket.Conn, buffer int) *WsSignalConn {
	if buffer <= 0 {
		buffer = 1
	}
	return &WsSignalConn{
		conn: ws,
		send: make(chan core.Frame, buffer),
	}
}

func (c *WsSignalConn) TrySend(f core.Frame) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return core.ErrConnClosed
	}
	select {
	case c.send <- f:
	default:
		return core.ErrBackpressure
	}
	return nil
}

// Close never blocks. The orchestrator loop calls it to kick slow peers.
func (c *WsSignalConn) Close() {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	if c.conn != nil {
		_ = c.conn.Close()
	}
}

// HandleSignal upgrades the request and registers a new connection with the
// orchestrator. ctx bounds the connection lifetime.
func (ctl *SignalWSController) HandleSignal(ctx context.Context, c *gin.Context) {
	token := c.GetString("client_token")
	sid := core.ConnectionID(uuid.NewString())

	ws, err := ctl.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error().Err(err).Str("module", "signal").Msg("ws upgrade")
		return
	}
	log.Info().Str("module", "signal").Str("sid", string(sid)).Str("remote", c.ClientIP()).Msg("new WS connection")

	conn := newWsSignalConn(ws, ctl.opts.SendBuffer)
	if err := ctl.Orch.Submit(ctx, core.Connect{ID: sid, Conn: conn, ClientToken: token}); err != nil {
		log.Error().Err(err).Str("module", "signal").Str("sid", string(sid)).Msg("register connection")
		conn.Close()
		return
	}

	ctx, cancel := context.WithCancel(ctx)
	go func() {
		defer cancel()
		var wg conc.WaitGroup
		wg.Go(func() { ctl.writePump(ctx, conn) })
		wg.Go(func() {
			ctl.readPump(ctx, sid, token, conn)
			cancel()
		})
		wg.Wait()
		log.Debug().Str("module", "signal").Str("sid", string(sid)).Msg("pumps stopped")
	}()
}
