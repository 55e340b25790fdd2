package app

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
)

type sessionEntry struct {
	RoomCode domain.RoomCode
	Session  core.MemberSession
	Cancel   context.CancelFunc
}

// Registry is the connection registry: one live entry per connected session.
type Registry struct {
	mu       sync.RWMutex
	sessions map[core.SessionID]*sessionEntry
}

func NewRegistry() *Registry {
	return &Registry{
		sessions: make(map[core.SessionID]*sessionEntry),
	}
}

func (r *Registry) Register(sess core.MemberSession, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[sess.ID()]; ok {
		log.Warn().Str("module", "app.registry").Str("sid", string(sess.ID())).Msg("replacing session with duplicate id")
	}
	r.sessions[sess.ID()] = &sessionEntry{Session: sess, Cancel: cancel}
	log.Info().Str("module", "app.registry").Str("sid", string(sess.ID())).Msg("registered session")
}

func (r *Registry) Lookup(sid core.SessionID) (core.MemberSession, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if e, ok := r.sessions[sid]; ok {
		return e.Session, true
	}
	return nil, false
}

func (r *Registry) SetName(sid core.SessionID, name string) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	e.Session.SetDisplayName(name)
	log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Str("name", name).Msg("updated display name")
	return true
}

func (r *Registry) RoomOf(sid core.SessionID) (domain.RoomCode, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.sessions[sid]
	if !ok || e.RoomCode == "" {
		return "", false
	}
	return e.RoomCode, true
}

func (r *Registry) BindRoom(sid core.SessionID, code domain.RoomCode) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return false
	}
	e.RoomCode = code
	log.Debug().Str("module", "app.registry").Str("sid", string(sid)).Str("room", string(code)).Msg("bound room")
	return true
}

// ClearRoom unbinds the session from its room and returns the old binding.
func (r *Registry) ClearRoom(sid core.SessionID) (domain.RoomCode, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok || e.RoomCode == "" {
		return "", false
	}
	code := e.RoomCode
	e.RoomCode = ""
	return code, true
}

// Remove deletes the entry. Only the first call for a sid reports ok, which
// is what makes disconnect teardown run exactly once.
func (r *Registry) Remove(sid core.SessionID) (domain.RoomCode, core.MemberSession, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.sessions[sid]
	if !ok {
		return "", nil, false
	}
	delete(r.sessions, sid)
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("removed session")
	return e.RoomCode, e.Session, true
}

func (r *Registry) Cancel(sid core.SessionID) bool {
	r.mu.RLock()
	e, ok := r.sessions[sid]
	r.mu.RUnlock()
	if !ok {
		return false
	}
	if e.Cancel != nil {
		e.Cancel()
	}
	log.Info().Str("module", "app.registry").Str("sid", string(sid)).Msg("canceled session")
	return true
}

func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
