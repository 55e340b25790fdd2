package app

import (
	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/dkeye/Relay/internal/protocol"
)

// addParticipant puts sid into the room's call, opening the call if there
// is none. Callers hold r.mu.
func (r *room) addParticipant(sid core.SessionID, ct domain.CallType) (opened bool) {
	if r.call == nil {
		r.call = make(map[core.SessionID]struct{})
		r.callType = ct
		opened = true
	}
	r.call[sid] = struct{}{}
	return opened
}

// removeParticipant takes sid out of the call and closes the call once
// nobody is left. Callers hold r.mu.
func (r *room) removeParticipant(sid core.SessionID) (removed, ended bool) {
	if _, ok := r.call[sid]; !ok {
		return false, false
	}
	delete(r.call, sid)
	if len(r.call) == 0 {
		r.call = nil
		return true, true
	}
	return true, false
}

func (r *room) participantDTOs(exclude core.SessionID) []core.MemberDTO {
	out := lo.FilterMap(lo.Keys(r.call), func(sid core.SessionID, _ int) (core.MemberDTO, bool) {
		ms, ok := r.members[sid]
		if !ok || sid == exclude {
			return core.MemberDTO{}, false
		}
		return core.DTOOf(ms), true
	})
	sortDTOs(out)
	return out
}

// CallTracker tracks, per room, which members are in the room's call.
// A call exists while it has at least one participant.
type CallTracker struct {
	dir *Directory
}

func NewCallTracker(dir *Directory) *CallTracker {
	return &CallTracker{dir: dir}
}

type CallResult struct {
	Applied      bool
	Participants int
	// Roster is what call-join returned to the joiner.
	Roster  []core.MemberDTO
	Publish core.PublishResult
}

// StartCall adds the caller to the room's call and announces call-started to
// every member, the caller included. Starting while a call is running just
// adds the caller: nobody owns a call, and the call keeps the type it was
// opened with. Clients drop the announcement when
// callerId is their own id.
func (t *CallTracker) StartCall(ms core.MemberSession, code domain.RoomCode, ct domain.CallType) CallResult {
	var res CallResult
	sid := ms.ID()
	t.dir.withRoom(code, false, func(r *room) {
		if _, ok := r.members[sid]; !ok {
			return
		}
		r.addParticipant(sid, ct)
		res.Applied = true
		res.Participants = len(r.call)

		u := ms.User()
		res.Publish = r.broadcast("", Frame(protocol.EventCallStarted, protocol.CallStarted{
			CallerID:   sid,
			CallerName: u.DisplayName,
			CallType:   r.callType,
			RoomCode:   code,
		}))
	})
	if res.Applied {
		log.Info().Str("module", "app.calls").Str("sid", string(sid)).Str("room", string(code)).
			Str("call_type", string(ct)).Int("participants", res.Participants).Msg("call started")
	}
	return res
}

// JoinCall adds the joiner, replies with everyone else already in the call
// so the joiner can dial each of them, and tells the rest of the room.
func (t *CallTracker) JoinCall(ms core.MemberSession, code domain.RoomCode) CallResult {
	var res CallResult
	sid := ms.ID()
	t.dir.withRoom(code, false, func(r *room) {
		if _, ok := r.members[sid]; !ok {
			return
		}
		r.addParticipant(sid, domain.CallVideo)
		res.Applied = true
		res.Participants = len(r.call)
		res.Roster = r.participantDTOs(sid)

		res.Publish.Deliver(ms, Frame(protocol.EventCallParticipants, protocol.CallParticipants{
			RoomCode:     code,
			Participants: res.Roster,
		}))
		u := ms.User()
		res.Publish.Merge(r.broadcast(sid, Frame(protocol.EventUserJoinedCall, protocol.CallPeer{
			SessionID:   sid,
			DisplayName: u.DisplayName,
		})))
	})
	if res.Applied {
		log.Info().Str("module", "app.calls").Str("sid", string(sid)).Str("room", string(code)).
			Int("participants", res.Participants).Msg("joined call")
	}
	return res
}

// LeaveCall is a no-op for sessions that are not in the call.
func (t *CallTracker) LeaveCall(ms core.MemberSession, code domain.RoomCode) CallResult {
	var res CallResult
	sid := ms.ID()
	t.dir.withRoom(code, false, func(r *room) {
		removed, _ := r.removeParticipant(sid)
		if !removed {
			return
		}
		res.Applied = true
		res.Participants = len(r.call)
		res.Publish = r.broadcast(sid, Frame(protocol.EventUserLeftCall, protocol.CallPeer{SessionID: sid}))
	})
	if res.Applied {
		log.Info().Str("module", "app.calls").Str("sid", string(sid)).Str("room", string(code)).
			Int("participants", res.Participants).Msg("left call")
	}
	return res
}

// EndCall clears every participant at once and tells the other members who
// ended it. Without a running call nothing is sent.
func (t *CallTracker) EndCall(ms core.MemberSession, code domain.RoomCode) CallResult {
	var res CallResult
	sid := ms.ID()
	t.dir.withRoom(code, false, func(r *room) {
		if _, ok := r.members[sid]; !ok || r.call == nil {
			return
		}
		res.Applied = true
		r.call = nil

		u := ms.User()
		res.Publish = r.broadcast(sid, Frame(protocol.EventCallEnded, protocol.CallEnded{EndedBy: u.DisplayName}))
	})
	if res.Applied {
		log.Info().Str("module", "app.calls").Str("sid", string(sid)).Str("room", string(code)).Msg("call ended")
	}
	return res
}

func (t *CallTracker) Participants(code domain.RoomCode) []core.MemberDTO {
	var out []core.MemberDTO
	t.dir.withRoom(code, false, func(r *room) {
		out = r.participantDTOs("")
	})
	return out
}

func (t *CallTracker) Active(code domain.RoomCode) bool {
	var active bool
	t.dir.withRoom(code, false, func(r *room) {
		active = r.call != nil
	})
	return active
}
