package orch

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pion/webrtc/v4"
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/protocol"
)

// Orchestrator is the coordinator: it owns the registry, the directory and
// the relays, and is the only place that changes them in response to
// client messages.
type Orchestrator struct {
	Registry  *app.Registry
	Rooms     *app.Directory
	Calls     *app.CallTracker
	Signals   *app.SignalRelay
	Transfers *app.TransferRelay
	Policy    app.Policy
	Limiter   *app.RateLimiter

	ICEServers []webrtc.ICEServer

	validate *validator.Validate
	now      func() time.Time
}

func New(policy app.Policy, limiter *app.RateLimiter, iceServers []webrtc.ICEServer) *Orchestrator {
	reg := app.NewRegistry()
	rooms := app.NewDirectory()
	return &Orchestrator{
		Registry:   reg,
		Rooms:      rooms,
		Calls:      app.NewCallTracker(rooms),
		Signals:    app.NewSignalRelay(reg),
		Transfers:  app.NewTransferRelay(rooms),
		Policy:     policy,
		Limiter:    limiter,
		ICEServers: iceServers,
		validate:   validator.New(validator.WithRequiredStructEnabled()),
		now:        time.Now,
	}
}

// Connect registers a freshly accepted session and tells it its id.
// cancel tears the transport down; the backpressure policy uses it to kick.
func (o *Orchestrator) Connect(sess core.MemberSession, cancel context.CancelFunc) {
	o.Registry.Register(sess, cancel)
	o.reply(sess, protocol.EventConnected, protocol.Connected{
		SessionID:  sess.ID(),
		ICEServers: o.ICEServers,
	})
}

// OnDisconnect runs the full teardown for sid: leave the room and the call,
// then forget the session. Only the first call for a sid does anything.
func (o *Orchestrator) OnDisconnect(sid core.SessionID) {
	code, sess, ok := o.Registry.Remove(sid)
	if !ok {
		return
	}
	o.Limiter.Forget(sid)
	if code != "" {
		res := o.Rooms.Leave(sess, code)
		o.handlePublish(res.Publish)
	}
	log.Info().Str("module", "orch").Str("sid", string(sid)).Str("room", string(code)).Msg("session disconnected")
}

// Kick cancels the session's transport; teardown follows through OnDisconnect.
func (o *Orchestrator) Kick(sid core.SessionID) bool {
	return o.Registry.Cancel(sid)
}

func (o *Orchestrator) handlePublish(res core.PublishResult) {
	if o.Policy == nil {
		return
	}
	for _, slow := range res.Dropped {
		switch o.Policy.OnBackPressure(slow) {
		case app.KickMember:
			log.Warn().Str("module", "orch").Str("sid", string(slow)).Msg("outbound queue full, kicking")
			o.Kick(slow)
		case app.NoAction:
			log.Debug().Str("module", "orch").Str("sid", string(slow)).Msg("outbound queue full, frame dropped")
		}
	}
}

func (o *Orchestrator) reply(sess core.MemberSession, t protocol.Event, v any) {
	var res core.PublishResult
	res.Deliver(sess, app.Frame(t, v))
	o.handlePublish(res)
}
