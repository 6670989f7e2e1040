// Package orch owns the signaling state. One goroutine (Run) applies every
// inbound event to the registry and room table in arrival order, so the
// state needs no locks and no two events ever interleave.
package orch

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/sourcegraph/conc/panics"

	"github.com/dkeye/Meet/internal/app"
	"github.com/dkeye/Meet/internal/core"
	"github.com/dkeye/Meet/internal/domain"
)

var ErrStopped = errors.New("orchestrator stopped")

const inboxSize = 256

type Orchestrator struct {
	Registry *app.Registry
	Rooms    *app.RoomTable
	Policy   app.Policy
	Now      func() time.Time

	inbox chan item
	done  chan struct{}
}

// item is either an event or a read-only query. Both share one queue so a
// query observes every event submitted before it.
type item struct {
	event core.Event
	query func()
}

func New(reg *app.Registry, rooms *app.RoomTable, policy app.Policy) *Orchestrator {
	return &Orchestrator{
		Registry: reg,
		Rooms:    rooms,
		Policy:   policy,
		Now:      time.Now,
		inbox:    make(chan item, inboxSize),
		done:     make(chan struct{}),
	}
}

// Run processes events until ctx is canceled, then closes every registered
// connection.
func (o *Orchestrator) Run(ctx context.Context) {
	defer close(o.done)
	log.Info().Str("module", "orch").Msg("event loop started")

	for {
		select {
		case <-ctx.Done():
			o.shutdown()
			return
		case it := <-o.inbox:
			if it.query != nil {
				it.query()
				continue
			}
			o.Handle(it.event)
		}
	}
}

// Done is closed once Run has returned.
func (o *Orchestrator) Done() <-chan struct{} { return o.done }

// Submit queues ev for the loop. It blocks while the inbox is full.
func (o *Orchestrator) Submit(ctx context.Context, ev core.Event) error {
	return o.enqueue(ctx, item{event: ev})
}

func (o *Orchestrator) enqueue(ctx context.Context, it item) error {
	select {
	case <-o.done:
		return ErrStopped
	default:
	}
	select {
	case o.inbox <- it:
		return nil
	case <-o.done:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Handle applies one event. A panicking handler is logged and swallowed so
// the other connections keep their state.
func (o *Orchestrator) Handle(ev core.Event) {
	if r := panics.Try(func() { o.dispatch(ev) }); r != nil {
		log.Error().
			Err(r.AsError()).
			Str("module", "orch").
			Str("sid", string(ev.Source())).
			Str("event", string(ev.Kind())).
			Msg("event handler panicked")
	}
}

func (o *Orchestrator) dispatch(ev core.Event) {
	switch e := ev.(type) {
	case core.Connect:
		o.OnConnect(e.ID, e.Conn, e.ClientToken)
	case core.JoinRoom:
		o.OnJoin(e.ID, e.RoomID, e.UserID, e.Username)
	case core.Signal:
		o.Relay(e.Type, e.Target, e.Payload, e.ID)
	case core.ChatMessage:
		o.BroadcastMessage(e.RoomID, e.ID, e.Username, e.Message)
	case core.Disconnect:
		o.OnDisconnect(e.ID)
	default:
		log.Warn().Str("module", "orch").Str("event", string(ev.Kind())).Msg("unhandled event")
	}
}

// Participants is the read-only view of a room used by the HTTP API.
// An unknown room yields an empty list.
func (o *Orchestrator) Participants(ctx context.Context, room domain.RoomID) ([]core.Participant, error) {
	return ask(ctx, o, func() []core.Participant {
		return o.Registry.Describe(o.Rooms.Members(room))
	})
}

func (o *Orchestrator) RoomList(ctx context.Context) ([]core.RoomInfo, error) {
	return ask(ctx, o, o.Rooms.List)
}

// ask runs fn on the loop goroutine and returns its result.
func ask[T any](ctx context.Context, o *Orchestrator, fn func() T) (T, error) {
	var zero T
	reply := make(chan T, 1)
	if err := o.enqueue(ctx, item{query: func() { reply <- fn() }}); err != nil {
		return zero, err
	}
	select {
	case v := <-reply:
		return v, nil
	case <-o.done:
		return zero, ErrStopped
	case <-ctx.Done():
		return zero, ctx.Err()
	}
}

func (o *Orchestrator) shutdown() {
	conns := o.Registry.Conns()
	for _, c := range conns {
		c.Close()
	}
	log.Info().Str("module", "orch").Int("closed", len(conns)).Msg("event loop stopped")
}

func (o *Orchestrator) now() time.Time {
	if o.Now == nil {
		return time.Now()
	}
	return o.Now()
}
