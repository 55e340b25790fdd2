// Command probe joins a room as a headless member, logs what happens in it
// and saves files sent to the room.
package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	flag "github.com/spf13/pflag"

	"github.com/dkeye/Relay/internal/client"
	"github.com/dkeye/Relay/internal/protocol"
	"github.com/dkeye/Relay/internal/transfer"
)

func main() {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	if err := godotenv.Load(); err != nil {
		log.Debug().Err(err).Msg(".env not loaded")
	}

	url := flag.StringP("url", "u", envOr("RELAY_PROBE_URL", "ws://localhost:8080/api/ws"), "signaling websocket URL")
	room := flag.StringP("room", "r", "", "room code to join")
	name := flag.StringP("name", "n", "probe", "display name")
	out := flag.StringP("out", "o", "", "directory for received files (empty: don't save)")
	say := flag.String("say", "", "chat message to send after joining")
	timeout := flag.Duration("timeout", 10*time.Second, "connect timeout")
	verbose := flag.BoolP("verbose", "v", false, "debug logging")
	flag.Parse()

	if *room == "" {
		flag.Usage()
		log.Error().Msg("--room is required")
		os.Exit(2)
	}
	if *verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	if *out != "" {
		if err := os.MkdirAll(filepath.Clean(*out), 0o755); err != nil {
			log.Error().Err(err).Msg("output directory")
			os.Exit(1)
		}
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	opts := client.DefaultOptions()
	opts.HandshakeTimeout = *timeout
	c, err := client.Dial(ctx, *url, opts)
	if err != nil {
		log.Error().Err(err).Msg("connect failed")
		os.Exit(1)
	}
	defer func() { _ = c.Close() }()

	p := &probe{c: c, out: *out, files: transfer.NewAssembler()}
	if err := c.Send(protocol.EventJoinRoom, protocol.JoinRoom{RoomCode: *room, DisplayName: *name}); err != nil {
		log.Error().Err(err).Msg("join failed")
		os.Exit(1)
	}
	if *say != "" {
		if err := c.Send(protocol.EventChatMessage, protocol.ChatIn{RoomCode: *room, Message: *say}); err != nil {
			log.Error().Err(err).Msg("chat failed")
		}
	}

	p.run(ctx)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
