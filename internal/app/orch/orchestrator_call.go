package orch

import (
	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/dkeye/Relay/internal/protocol"
)

func (o *Orchestrator) handleCallStart(sess core.MemberSession, env protocol.Envelope) {
	var p protocol.CallStart
	if !o.bind(sess, env, &p) {
		return
	}
	code, ok := o.currentRoom(sess, env.Type, p.RoomCode)
	if !ok {
		return
	}
	res := o.Calls.StartCall(sess, code, domain.ParseCallType(p.CallType))
	o.handlePublish(res.Publish)
}

func (o *Orchestrator) handleCallMembership(sess core.MemberSession, env protocol.Envelope) {
	var p protocol.RoomRef
	if !o.bind(sess, env, &p) {
		return
	}
	code, ok := o.currentRoom(sess, env.Type, p.RoomCode)
	if !ok {
		return
	}
	var res app.CallResult
	switch env.Type {
	case protocol.EventCallJoin:
		res = o.Calls.JoinCall(sess, code)
	case protocol.EventCallLeave:
		res = o.Calls.LeaveCall(sess, code)
	case protocol.EventEndCall:
		res = o.Calls.EndCall(sess, code)
	}
	o.handlePublish(res.Publish)
}

// handleSignal forwards offer, answer and ice-candidate to the named session.
func (o *Orchestrator) handleSignal(sess core.MemberSession, env protocol.Envelope) {
	var p protocol.SignalIn
	if !o.bind(sess, env, &p) {
		return
	}
	res, _ := o.Signals.Relay(env.Type, p.Payload, sess, p.To)
	o.handlePublish(res)
}
