package app

import (
	"cmp"
	"slices"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/samber/lo"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/dkeye/Relay/internal/protocol"
)

// room holds one room's members and its call. Everything in it, the call
// participants included, is guarded by mu, so a join, leave or call change
// and the notifications it produces are atomic for the room.
type room struct {
	code domain.RoomCode

	mu       sync.Mutex
	members  map[core.SessionID]core.MemberSession
	call     map[core.SessionID]struct{} // nil: no call
	callType domain.CallType
	closed   bool // emptied and about to leave the directory
}

func newRoom(code domain.RoomCode) *room {
	return &room{
		code:    code,
		members: make(map[core.SessionID]core.MemberSession),
	}
}

// broadcast sends f to every member except exclude ("" excludes nobody).
func (r *room) broadcast(exclude core.SessionID, f core.Frame) core.PublishResult {
	var res core.PublishResult
	if f == nil {
		return res
	}
	for sid, ms := range r.members {
		if sid == exclude {
			continue
		}
		res.Deliver(ms, f)
	}
	return res
}

func (r *room) memberDTOs(exclude core.SessionID) []core.MemberDTO {
	out := lo.FilterMap(lo.Values(r.members), func(ms core.MemberSession, _ int) (core.MemberDTO, bool) {
		return core.DTOOf(ms), ms.ID() != exclude
	})
	sortDTOs(out)
	return out
}

func (r *room) info() core.RoomInfo {
	info := core.RoomInfo{
		Code:             r.code,
		MemberCount:      len(r.members),
		CallActive:       r.call != nil,
		CallParticipants: len(r.call),
	}
	if r.call != nil {
		info.CallType = r.callType
	}
	return info
}

func sortDTOs(dtos []core.MemberDTO) {
	slices.SortFunc(dtos, func(a, b core.MemberDTO) int {
		return cmp.Or(cmp.Compare(a.DisplayName, b.DisplayName), cmp.Compare(a.SessionID, b.SessionID))
	})
}

// Directory groups sessions into named rooms. Rooms lock independently;
// the directory lock only guards the code -> room map.
type Directory struct {
	mu    sync.RWMutex
	rooms map[domain.RoomCode]*room
}

func NewDirectory() *Directory {
	return &Directory{rooms: make(map[domain.RoomCode]*room)}
}

func (d *Directory) lookup(code domain.RoomCode, create bool) *room {
	d.mu.RLock()
	r, ok := d.rooms[code]
	d.mu.RUnlock()
	if ok || !create {
		return r
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	if r, ok = d.rooms[code]; ok {
		return r
	}
	r = newRoom(code)
	d.rooms[code] = r
	log.Info().Str("module", "app.directory").Str("room", string(code)).Msg("room created")
	return r
}

// withRoom runs fn under the room lock. A room left without members is
// closed under the same lock and then dropped from the map, so no empty room
// stays visible once the call returns. It reports false when there was no
// room to run against.
func (d *Directory) withRoom(code domain.RoomCode, create bool, fn func(r *room)) bool {
	for {
		r := d.lookup(code, create)
		if r == nil {
			return false
		}
		r.mu.Lock()
		if r.closed {
			r.mu.Unlock()
			if !create {
				return false
			}
			// Lost a race with the last leaver; the map entry is on its way out.
			continue
		}
		fn(r)
		empty := len(r.members) == 0
		if empty {
			r.closed = true
			r.call = nil
		}
		r.mu.Unlock()
		if empty {
			d.drop(r)
		}
		return true
	}
}

func (d *Directory) drop(r *room) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.rooms[r.code] == r {
		delete(d.rooms, r.code)
		log.Info().Str("module", "app.directory").Str("room", string(r.code)).Msg("room deleted (empty)")
	}
}

type JoinResult struct {
	RoomCode     domain.RoomCode
	OtherMembers []core.MemberDTO
	MemberCount  int
	Publish      core.PublishResult
}

// Join adds ms to the room, creating it if needed. The joiner gets
// room-joined with the members that were already there; everyone else gets
// user-joined with the new count.
func (d *Directory) Join(ms core.MemberSession, code domain.RoomCode) JoinResult {
	var res JoinResult
	d.withRoom(code, true, func(r *room) {
		sid := ms.ID()
		others := r.memberDTOs(sid)
		r.members[sid] = ms

		res = JoinResult{RoomCode: code, OtherMembers: others, MemberCount: len(r.members)}
		u := ms.User()
		res.Publish.Merge(r.broadcast(sid, Frame(protocol.EventUserJoined, protocol.Presence{
			SessionID:   sid,
			DisplayName: u.DisplayName,
			MemberCount: res.MemberCount,
		})))
		res.Publish.Deliver(ms, Frame(protocol.EventRoomJoined, protocol.RoomJoined{
			RoomCode:     code,
			OtherMembers: others,
			MemberCount:  res.MemberCount,
		}))
	})
	log.Info().
		Str("module", "app.directory").
		Str("sid", string(ms.ID())).
		Str("room", string(code)).
		Int("members", res.MemberCount).
		Msg("joined room")
	return res
}

type LeaveResult struct {
	Left        bool
	LeftCall    bool
	CallEnded   bool
	MemberCount int
	Publish     core.PublishResult
}

// Leave removes sid from the room and from the room's call. Both steps run
// independently: a session that is no longer a member still has its call
// participation cleared. Unknown rooms and non-members are a no-op.
func (d *Directory) Leave(ms core.MemberSession, code domain.RoomCode) LeaveResult {
	var res LeaveResult
	sid := ms.ID()
	d.withRoom(code, false, func(r *room) {
		res.LeftCall, res.CallEnded = r.removeParticipant(sid)

		if _, ok := r.members[sid]; ok {
			delete(r.members, sid)
			res.Left = true
		}
		res.MemberCount = len(r.members)

		if res.Left {
			u := ms.User()
			res.Publish.Merge(r.broadcast(sid, Frame(protocol.EventUserLeft, protocol.Presence{
				SessionID:   sid,
				DisplayName: u.DisplayName,
				MemberCount: res.MemberCount,
			})))
		}
		if res.LeftCall {
			res.Publish.Merge(r.broadcast(sid, Frame(protocol.EventUserLeftCall, protocol.CallPeer{
				SessionID: sid,
			})))
		}
	})
	if res.Left || res.LeftCall {
		log.Info().
			Str("module", "app.directory").
			Str("sid", string(sid)).
			Str("room", string(code)).
			Int("members", res.MemberCount).
			Bool("left_call", res.LeftCall).
			Msg("left room")
	}
	return res
}

// BroadcastFrom relays f to every other member of the room. The sender must
// be a member; otherwise nothing is sent and ok is false.
func (d *Directory) BroadcastFrom(ms core.MemberSession, code domain.RoomCode, f core.Frame) (res core.PublishResult, ok bool) {
	d.withRoom(code, false, func(r *room) {
		if _, ok = r.members[ms.ID()]; !ok {
			return
		}
		res = r.broadcast(ms.ID(), f)
	})
	return res, ok
}

func (d *Directory) IsMember(sid core.SessionID, code domain.RoomCode) bool {
	var ok bool
	d.withRoom(code, false, func(r *room) {
		_, ok = r.members[sid]
	})
	return ok
}

func (d *Directory) Get(code domain.RoomCode) (core.RoomDetail, bool) {
	var detail core.RoomDetail
	found := d.withRoom(code, false, func(r *room) {
		detail = core.RoomDetail{
			RoomInfo:     r.info(),
			Members:      r.memberDTOs(""),
			Participants: r.participantDTOs(""),
		}
	})
	return detail, found
}

func (d *Directory) List() []core.RoomInfo {
	d.mu.RLock()
	rooms := lo.Values(d.rooms)
	d.mu.RUnlock()

	out := make([]core.RoomInfo, 0, len(rooms))
	for _, r := range rooms {
		r.mu.Lock()
		if !r.closed {
			out = append(out, r.info())
		}
		r.mu.Unlock()
	}
	slices.SortFunc(out, func(a, b core.RoomInfo) int { return cmp.Compare(a.Code, b.Code) })
	return out
}

func (d *Directory) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.rooms)
}
