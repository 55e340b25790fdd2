package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/dkeye/Relay/internal/protocol"
)

func (o *Orchestrator) handleJoin(sess core.MemberSession, env protocol.Envelope) {
	var p protocol.JoinRoom
	if !o.bind(sess, env, &p) {
		o.reply(sess, protocol.EventError, protocol.Error{Error: "bad_payload"})
		return
	}
	code, err := domain.ParseRoomCode(p.RoomCode)
	if err != nil {
		o.reply(sess, protocol.EventError, protocol.Error{Error: err.Error()})
		return
	}
	raw := p.DisplayName
	if raw == "" {
		raw = sess.User().DisplayName
	}
	name, err := domain.NormalizeDisplayName(raw)
	if err != nil {
		o.reply(sess, protocol.EventError, protocol.Error{Error: err.Error()})
		return
	}
	o.Join(sess, code, name)
}

// Join moves sess into code under name. A session already in a room leaves
// it first, call included.
func (o *Orchestrator) Join(sess core.MemberSession, code domain.RoomCode, name string) {
	if prev, ok := o.Registry.RoomOf(sess.ID()); ok {
		o.Leave(sess, prev)
		log.Info().Str("module", "orch").Str("sid", string(sess.ID())).Str("from_room", string(prev)).Msg("left previous room")
	}
	o.Registry.SetName(sess.ID(), name)
	o.Registry.BindRoom(sess.ID(), code)
	res := o.Rooms.Join(sess, code)
	o.handlePublish(res.Publish)
}

func (o *Orchestrator) handleLeave(sess core.MemberSession, env protocol.Envelope) {
	var p protocol.RoomRef
	if !o.bind(sess, env, &p) {
		return
	}
	code, ok := o.currentRoom(sess, env.Type, p.RoomCode)
	if !ok {
		return
	}
	o.Leave(sess, code)
}

// Leave is the explicit leave-room: room and call cleanup, the connection stays.
func (o *Orchestrator) Leave(sess core.MemberSession, code domain.RoomCode) {
	o.Registry.ClearRoom(sess.ID())
	res := o.Rooms.Leave(sess, code)
	o.handlePublish(res.Publish)
}

func (o *Orchestrator) handleChat(sess core.MemberSession, env protocol.Envelope) {
	var p protocol.ChatIn
	if !o.bind(sess, env, &p) {
		return
	}
	code, ok := o.currentRoom(sess, env.Type, p.RoomCode)
	if !ok {
		return
	}
	if !o.Limiter.Allow(sess.ID()) {
		log.Debug().Str("module", "orch").Str("sid", string(sess.ID())).Msg("chat rate limited")
		return
	}
	u := sess.User()
	o.broadcast(sess, code, protocol.EventChatMessage, protocol.ChatOut{
		Message:     p.Message,
		DisplayName: u.DisplayName,
		Time:        o.now().Format(protocol.ChatTimeLayout),
		SenderID:    sess.ID(),
	})
}

func (o *Orchestrator) handleTyping(sess core.MemberSession, env protocol.Envelope) {
	var p protocol.RoomRef
	if !o.bind(sess, env, &p) {
		return
	}
	code, ok := o.currentRoom(sess, env.Type, p.RoomCode)
	if !ok {
		return
	}
	out := protocol.EventUserStopTyping
	if env.Type == protocol.EventTyping {
		if !o.Limiter.Allow(sess.ID()) {
			return
		}
		out = protocol.EventUserTyping
	}
	o.broadcast(sess, code, out, protocol.Typing{DisplayName: sess.User().DisplayName})
}

func (o *Orchestrator) handleScreenShare(sess core.MemberSession, env protocol.Envelope) {
	var p protocol.RoomRef
	if !o.bind(sess, env, &p) {
		return
	}
	code, ok := o.currentRoom(sess, env.Type, p.RoomCode)
	if !ok {
		return
	}
	out := protocol.EventScreenShareStopped
	if env.Type == protocol.EventScreenShareStart {
		out = protocol.EventScreenShareStarted
	}
	o.broadcast(sess, code, out, protocol.ScreenShare{
		SessionID:   sess.ID(),
		DisplayName: sess.User().DisplayName,
	})
}

func (o *Orchestrator) broadcast(sess core.MemberSession, code domain.RoomCode, t protocol.Event, v any) {
	res, _ := o.Rooms.BroadcastFrom(sess, code, app.Frame(t, v))
	o.handlePublish(res)
}
