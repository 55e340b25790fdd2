package app

import "github.com/dkeye/Relay/internal/core"

type BackpressureAction int

const (
	NoAction BackpressureAction = iota
	KickMember
)

// Policy decides what happens to a session whose outbound queue was full.
// The frame itself is always dropped.
type Policy interface {
	OnBackPressure(sid core.SessionID) BackpressureAction
}

type SimplePolicy struct {
	Action BackpressureAction
}

func (p SimplePolicy) OnBackPressure(core.SessionID) BackpressureAction {
	return p.Action
}

// PolicyFromName maps the config value: "kick" or "drop".
func PolicyFromName(name string) Policy {
	if name == "drop" {
		return SimplePolicy{Action: NoAction}
	}
	return SimplePolicy{Action: KickMember}
}
