package app

import (
	"encoding/json"

	"github.com/rs/zerolog/log"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/protocol"
)

// SignalRelay forwards negotiation payloads between two sessions without
// looking inside them. Delivery is fire-and-forget: an absent target drops
// the message and the sender is not told. Nothing is retried; a stale target
// resolves itself through the call-leave and disconnect paths.
type SignalRelay struct {
	reg *Registry
}

func NewSignalRelay(reg *Registry) *SignalRelay {
	return &SignalRelay{reg: reg}
}

// Relay reports whether the target existed.
func (s *SignalRelay) Relay(kind protocol.Event, payload json.RawMessage, from core.MemberSession, to core.SessionID) (core.PublishResult, bool) {
	var res core.PublishResult
	target, ok := s.reg.Lookup(to)
	if !ok {
		log.Debug().Str("module", "app.signaling").Str("type", string(kind)).
			Str("from", string(from.ID())).Str("to", string(to)).Msg("target absent, dropped")
		return res, false
	}
	u := from.User()
	res.Deliver(target, Frame(kind, protocol.SignalOut{
		Payload:  payload,
		From:     from.ID(),
		FromName: u.DisplayName,
	}))
	log.Debug().Str("module", "app.signaling").Str("type", string(kind)).
		Str("from", string(from.ID())).Str("to", string(to)).Msg("relayed")
	return res, true
}
