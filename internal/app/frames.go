package app

import (
	"github.com/rs/zerolog/log"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/protocol"
)

// Frame encodes an outbound message. Payload types are all plain structs, so
// a failure here is a programming error; it is logged and yields nil.
func Frame(t protocol.Event, v any) core.Frame {
	b, err := protocol.Encode(t, v)
	if err != nil {
		log.Error().Err(err).Str("module", "app").Str("type", string(t)).Msg("encode frame")
		return nil
	}
	return b
}
