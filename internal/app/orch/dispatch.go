package orch

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/dkeye/Relay/internal/protocol"
)

// Dispatch handles one inbound frame from sid. Malformed, late or misaddressed
// frames are logged and dropped; nothing here fails the connection.
func (o *Orchestrator) Dispatch(sid core.SessionID, data []byte) {
	env, err := protocol.Decode(data)
	if err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sid)).Msg("bad frame")
		return
	}
	sess, ok := o.Registry.Lookup(sid)
	if !ok {
		return
	}
	if env.Type.IsSignal() {
		o.handleSignal(sess, env)
		return
	}

	switch env.Type {
	case protocol.EventJoinRoom:
		o.handleJoin(sess, env)
	case protocol.EventLeaveRoom:
		o.handleLeave(sess, env)
	case protocol.EventChatMessage:
		o.handleChat(sess, env)
	case protocol.EventTyping, protocol.EventStopTyping:
		o.handleTyping(sess, env)
	case protocol.EventScreenShareStart, protocol.EventScreenShareStop:
		o.handleScreenShare(sess, env)
	case protocol.EventCallStart:
		o.handleCallStart(sess, env)
	case protocol.EventCallJoin, protocol.EventCallLeave, protocol.EventEndCall:
		o.handleCallMembership(sess, env)
	case protocol.EventFileInfo:
		o.handleFileInfo(sess, env)
	case protocol.EventFileChunk:
		o.handleFileChunk(sess, env)
	case protocol.EventFileComplete:
		o.handleFileComplete(sess, env)
	case protocol.EventPing:
		o.reply(sess, protocol.EventPong, struct{}{})
	case protocol.EventWhoAmI:
		o.handleWhoAmI(sess)
	default:
		log.Warn().Str("module", "orch").Str("sid", string(sid)).Str("type", string(env.Type)).Msg("unknown message type")
	}
}

// bind decodes and validates the payload of env into v.
func (o *Orchestrator) bind(sess core.MemberSession, env protocol.Envelope, v any) bool {
	if err := env.Bind(v); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sess.ID())).Msg("bad payload")
		return false
	}
	if err := o.validate.Struct(v); err != nil {
		log.Warn().Err(err).Str("module", "orch").Str("sid", string(sess.ID())).Str("type", string(env.Type)).Msg("invalid payload")
		return false
	}
	return true
}

// currentRoom resolves the room a room-scoped message acts on. A roomCode
// naming some other room than the sender's own is dropped.
func (o *Orchestrator) currentRoom(sess core.MemberSession, t protocol.Event, raw string) (domain.RoomCode, bool) {
	code, ok := o.Registry.RoomOf(sess.ID())
	if !ok {
		log.Debug().Str("module", "orch").Str("sid", string(sess.ID())).Str("type", string(t)).Msg("not in a room, dropped")
		return "", false
	}
	if raw == "" {
		return code, true
	}
	if claimed, err := domain.ParseRoomCode(raw); err != nil || claimed != code {
		log.Warn().Str("module", "orch").Str("sid", string(sess.ID())).Str("type", string(t)).
			Str("room", string(code)).Str("claimed", raw).Msg("room mismatch, dropped")
		return "", false
	}
	return code, true
}

func (o *Orchestrator) handleWhoAmI(sess core.MemberSession) {
	code, _ := o.Registry.RoomOf(sess.ID())
	u := sess.User()
	o.reply(sess, protocol.EventWhoAmI, protocol.WhoAmI{
		SessionID:   sess.ID(),
		DisplayName: u.DisplayName,
		RoomCode:    code,
	})
}
