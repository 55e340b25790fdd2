// Package protocol defines the JSON frames exchanged over a session's socket.
package protocol

type Event string

// Inbound.
const (
	EventJoinRoom         Event = "join-room"
	EventLeaveRoom        Event = "leave-room"
	EventChatMessage      Event = "chat-message"
	EventTyping           Event = "typing"
	EventStopTyping       Event = "stop-typing"
	EventCallStart        Event = "call-start"
	EventCallJoin         Event = "call-join"
	EventCallLeave        Event = "call-leave"
	EventEndCall          Event = "end-call"
	EventOffer            Event = "offer"
	EventAnswer           Event = "answer"
	EventICECandidate     Event = "ice-candidate"
	EventScreenShareStart Event = "screen-share-start"
	EventScreenShareStop  Event = "screen-share-stop"
	EventFileInfo         Event = "file-info"
	EventFileChunk        Event = "file-chunk"
	EventFileComplete     Event = "file-complete"
	EventPing             Event = "ping"
	EventWhoAmI           Event = "whoami"
)

// Outbound. chat-message, offer, answer, ice-candidate, file-* and whoami
// reuse the inbound names.
const (
	EventConnected          Event = "connected"
	EventRoomJoined         Event = "room-joined"
	EventUserJoined         Event = "user-joined"
	EventUserLeft           Event = "user-left"
	EventUserTyping         Event = "user-typing"
	EventUserStopTyping     Event = "user-stop-typing"
	EventCallStarted        Event = "call-started"
	EventCallParticipants   Event = "call-participants"
	EventUserJoinedCall     Event = "user-joined-call"
	EventUserLeftCall       Event = "user-left-call"
	EventCallEnded          Event = "call-ended"
	EventScreenShareStarted Event = "screen-share-started"
	EventScreenShareStopped Event = "screen-share-stopped"
	EventPong               Event = "pong"
	EventError              Event = "error"
)

// IsSignal reports whether e is a point-to-point negotiation message.
func (e Event) IsSignal() bool {
	return e == EventOffer || e == EventAnswer || e == EventICECandidate
}
