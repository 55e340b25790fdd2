package orch

import (
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/protocol"
)

func (o *Orchestrator) handleFileInfo(sess core.MemberSession, env protocol.Envelope) {
	var p protocol.FileInfoIn
	if !o.bind(sess, env, &p) {
		return
	}
	code, ok := o.currentRoom(sess, env.Type, p.RoomCode)
	if !ok {
		return
	}
	res, _ := o.Transfers.FileInfo(sess, code, p.FileInfo)
	o.handlePublish(res)
}

func (o *Orchestrator) handleFileChunk(sess core.MemberSession, env protocol.Envelope) {
	var p protocol.FileChunkIn
	if !o.bind(sess, env, &p) {
		return
	}
	code, ok := o.currentRoom(sess, env.Type, p.RoomCode)
	if !ok {
		return
	}
	res, _ := o.Transfers.FileChunk(sess, code, p)
	o.handlePublish(res)
}

func (o *Orchestrator) handleFileComplete(sess core.MemberSession, env protocol.Envelope) {
	var p protocol.FileCompleteIn
	if !o.bind(sess, env, &p) {
		return
	}
	code, ok := o.currentRoom(sess, env.Type, p.RoomCode)
	if !ok {
		return
	}
	res, _ := o.Transfers.FileComplete(sess, code, p)
	o.handlePublish(res)
}
