package protocol

import (
	"encoding/json"

	"github.com/pion/webrtc/v4"

	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
)

// ChatTimeLayout matches the 12-hour clock the web client renders.
const ChatTimeLayout = "03:04 PM"

// RoomRef is the payload of every room-scoped event that carries nothing else.
// An empty RoomCode means the sender's current room.
type RoomRef struct {
	RoomCode string `json:"roomCode" validate:"max=64"`
}

type JoinRoom struct {
	RoomCode    string `json:"roomCode" validate:"required,max=64"`
	DisplayName string `json:"displayName" validate:"max=64"`
}

type ChatIn struct {
	RoomCode string `json:"roomCode" validate:"max=64"`
	Message  string `json:"message" validate:"required,max=8192"`
}

type CallStart struct {
	RoomCode string `json:"roomCode" validate:"max=64"`
	CallType string `json:"callType" validate:"omitempty,oneof=audio video"`
}

type SignalIn struct {
	To      core.SessionID  `json:"to" validate:"required"`
	Payload json.RawMessage `json:"payload" validate:"required"`
}

type FileInfoIn struct {
	RoomCode string          `json:"roomCode" validate:"max=64"`
	FileInfo domain.FileInfo `json:"fileInfo"`
}

// FileChunkIn is relayed as-is: index and total are not checked here.
type FileChunkIn struct {
	RoomCode    string        `json:"roomCode" validate:"max=64"`
	FileID      domain.FileID `json:"fileId" validate:"required,max=128"`
	FileName    string        `json:"fileName"`
	Chunk       string        `json:"chunk"`
	ChunkIndex  int           `json:"chunkIndex"`
	TotalChunks int           `json:"totalChunks"`
}

type FileCompleteIn struct {
	RoomCode string        `json:"roomCode" validate:"max=64"`
	FileID   domain.FileID `json:"fileId" validate:"required,max=128"`
	FileName string        `json:"fileName"`
}

type Connected struct {
	SessionID  core.SessionID     `json:"sessionId"`
	ICEServers []webrtc.ICEServer `json:"iceServers,omitempty"`
}

type RoomJoined struct {
	RoomCode     domain.RoomCode  `json:"roomCode"`
	OtherMembers []core.MemberDTO `json:"otherMembers"`
	MemberCount  int              `json:"memberCount"`
}

// Presence is sent as user-joined and user-left.
type Presence struct {
	SessionID   core.SessionID `json:"sessionId"`
	DisplayName string         `json:"displayName"`
	MemberCount int            `json:"memberCount"`
}

type ChatOut struct {
	Message     string         `json:"message"`
	DisplayName string         `json:"displayName"`
	Time        string         `json:"time"`
	SenderID    core.SessionID `json:"senderId"`
}

type Typing struct {
	DisplayName string `json:"displayName"`
}

type CallStarted struct {
	CallerID   core.SessionID  `json:"callerId"`
	CallerName string          `json:"callerName"`
	CallType   domain.CallType `json:"callType"`
	RoomCode   domain.RoomCode `json:"roomCode"`
}

type CallParticipants struct {
	RoomCode     domain.RoomCode  `json:"roomCode"`
	Participants []core.MemberDTO `json:"participants"`
}

// CallPeer is sent as user-joined-call and user-left-call.
type CallPeer struct {
	SessionID   core.SessionID `json:"sessionId"`
	DisplayName string         `json:"displayName,omitempty"`
}

type CallEnded struct {
	EndedBy string `json:"endedBy"`
}

type SignalOut struct {
	Payload  json.RawMessage `json:"payload"`
	From     core.SessionID  `json:"from"`
	FromName string          `json:"fromName"`
}

type ScreenShare struct {
	SessionID   core.SessionID `json:"sessionId"`
	DisplayName string         `json:"displayName"`
}

type FileInfoOut struct {
	FileInfo   domain.FileInfo `json:"fileInfo"`
	SenderID   core.SessionID  `json:"senderId"`
	SenderName string          `json:"senderName"`
}

type FileChunkOut struct {
	FileID      domain.FileID  `json:"fileId"`
	FileName    string         `json:"fileName"`
	Chunk       string         `json:"chunk"`
	ChunkIndex  int            `json:"chunkIndex"`
	TotalChunks int            `json:"totalChunks"`
	SenderID    core.SessionID `json:"senderId"`
	SenderName  string         `json:"senderName"`
}

type FileCompleteOut struct {
	FileID     domain.FileID  `json:"fileId"`
	FileName   string         `json:"fileName"`
	SenderID   core.SessionID `json:"senderId"`
	SenderName string         `json:"senderName"`
}

type WhoAmI struct {
	SessionID   core.SessionID  `json:"sessionId"`
	DisplayName string          `json:"displayName"`
	RoomCode    domain.RoomCode `json:"roomCode,omitempty"`
}

type Error struct {
	Error string `json:"error"`
}
