package domain

import (
	"errors"
	"strings"
	"unicode/utf8"
)

const MaxRoomCodeLen = 64

var (
	ErrRoomCodeEmpty   = errors.New("room code empty")
	ErrRoomCodeTooLong = errors.New("room code too long")
)

// RoomCode is chosen by clients; the directory treats it as unique.
type RoomCode string

func ParseRoomCode(raw string) (RoomCode, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", ErrRoomCodeEmpty
	}
	if utf8.RuneCountInString(raw) > MaxRoomCodeLen {
		return "", ErrRoomCodeTooLong
	}
	return RoomCode(raw), nil
}
