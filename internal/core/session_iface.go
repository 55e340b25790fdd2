package core

import "github.com/dkeye/Relay/internal/domain"

type SessionID string

// MemberSession binds a session's identity and its transport endpoint.
// This is what a room stores and fans out to.
type MemberSession interface {
	ID() SessionID
	User() domain.User
	SetDisplayName(name string)
	Signal() SignalConnection
}
