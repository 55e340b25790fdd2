package main

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Relay/internal/client"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/protocol"
	"github.com/dkeye/Relay/internal/transfer"
)

type probe struct {
	c     *client.Client
	out   string
	files *transfer.Assembler
	self  core.SessionID
}

func (p *probe) run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			if n := p.files.Pending(); n > 0 {
				log.Warn().Str("module", "probe").Int("transfers", n).Msg("unfinished files dropped")
			}
			log.Info().Str("module", "probe").Msg("bye")
			return
		case env, ok := <-p.c.Events():
			if !ok {
				if err := p.c.Err(); err != nil {
					log.Error().Err(err).Str("module", "probe").Msg("connection lost")
				}
				return
			}
			p.handle(env)
		}
	}
}

func (p *probe) handle(env protocol.Envelope) {
	l := log.With().Str("module", "probe").Str("type", string(env.Type)).Logger()

	switch env.Type {
	case protocol.EventConnected:
		var m protocol.Connected
		if err := env.Bind(&m); err == nil {
			p.self = m.SessionID
			l.Info().Str("sid", string(m.SessionID)).Int("ice_servers", len(m.ICEServers)).Msg("connected")
		}
	case protocol.EventRoomJoined:
		var m protocol.RoomJoined
		if err := env.Bind(&m); err == nil {
			l.Info().Str("room", string(m.RoomCode)).Int("members", m.MemberCount).Msg("joined")
			for _, o := range m.OtherMembers {
				l.Info().Str("sid", string(o.SessionID)).Str("name", o.DisplayName).Msg("already here")
			}
		}
	case protocol.EventUserJoined, protocol.EventUserLeft:
		var m protocol.Presence
		if err := env.Bind(&m); err == nil {
			l.Info().Str("sid", string(m.SessionID)).Str("name", m.DisplayName).Int("members", m.MemberCount).Msg("presence")
			if env.Type == protocol.EventUserLeft {
				if n := p.files.Discard(m.SessionID); n > 0 {
					l.Warn().Int("transfers", n).Msg("sender left, partial files dropped")
				}
			}
		}
	case protocol.EventChatMessage:
		var m protocol.ChatOut
		if err := env.Bind(&m); err == nil {
			l.Info().Str("from", m.DisplayName).Str("time", m.Time).Msg(m.Message)
		}
	case protocol.EventCallStarted:
		var m protocol.CallStarted
		if err := env.Bind(&m); err == nil && m.CallerID != p.self {
			l.Info().Str("caller", m.CallerName).Str("call_type", string(m.CallType)).Msg("call started")
		}
	case protocol.EventCallEnded:
		var m protocol.CallEnded
		if err := env.Bind(&m); err == nil {
			l.Info().Str("by", m.EndedBy).Msg("call ended")
		}
	case protocol.EventFileInfo:
		var m protocol.FileInfoOut
		if err := env.Bind(&m); err == nil {
			p.files.Begin(m.SenderID, m.FileInfo)
			l.Info().Str("from", m.SenderName).Str("file", m.FileInfo.Name).Int64("size", m.FileInfo.Size).Msg("incoming file")
		}
	case protocol.EventFileChunk:
		var m protocol.FileChunkOut
		if err := env.Bind(&m); err != nil {
			return
		}
		prog, err := p.files.Append(m.SenderID, m.FileID, m.Chunk, m.ChunkIndex, m.TotalChunks)
		if err != nil {
			l.Warn().Err(err).Str("file", m.FileName).Msg("chunk rejected")
			return
		}
		l.Debug().Str("file", m.FileName).Int("percent", prog.Percent()).Msg("progress")
	case protocol.EventFileComplete:
		var m protocol.FileCompleteOut
		if err := env.Bind(&m); err != nil {
			return
		}
		f, err := p.files.Complete(m.SenderID, m.FileID)
		if err != nil {
			l.Warn().Err(err).Str("file", m.FileName).Msg("transfer failed")
			return
		}
		p.save(f)
	case protocol.EventError:
		var m protocol.Error
		if err := env.Bind(&m); err == nil {
			l.Error().Msg(m.Error)
		}
	default:
		if len(env.Data) > 0 {
			l.Debug().RawJSON("data", env.Data).Msg("event")
		}
	}
}

func (p *probe) save(f transfer.File) {
	l := log.With().Str("module", "probe").Str("file", f.Info.Name).Int("bytes", len(f.Data)).Logger()
	if p.out == "" {
		l.Info().Msg("file received")
		return
	}
	// Base strips any directories a sender put in the name.
	path := filepath.Join(p.out, filepath.Base(f.Info.Name))
	if err := os.WriteFile(path, f.Data, 0o644); err != nil {
		l.Error().Err(err).Msg("save failed")
		return
	}
	l.Info().Str("path", path).Msg("file saved")
}
