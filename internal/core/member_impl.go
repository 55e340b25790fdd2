package core

import (
	"sync"

	"github.com/dkeye/Relay/internal/domain"
)

// memberSession implements MemberSession by pairing meta + transport.
type memberSession struct {
	id   SessionID
	conn SignalConnection

	mu   sync.RWMutex
	user domain.User
}

func NewMemberSession(id SessionID, displayName string, conn SignalConnection) MemberSession {
	return &memberSession{
		id:   id,
		conn: conn,
		user: domain.User{ID: domain.UserID(id), DisplayName: displayName},
	}
}

func (m *memberSession) ID() SessionID            { return m.id }
func (m *memberSession) Signal() SignalConnection { return m.conn }

func (m *memberSession) User() domain.User {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.user
}

func (m *memberSession) SetDisplayName(name string) {
	m.mu.Lock()
	m.user.DisplayName = name
	m.mu.Unlock()
}
