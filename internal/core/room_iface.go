package core

import "github.com/dkeye/Relay/internal/domain"

// PublishResult reports delivery stats/backpressure to orchestrator.
type PublishResult struct {
	SendTo  int
	Dropped []SessionID
}

func (p *PublishResult) Merge(other PublishResult) {
	p.SendTo += other.SendTo
	p.Dropped = append(p.Dropped, other.Dropped...)
}

// Deliver sends one frame to one session and records the outcome.
func (p *PublishResult) Deliver(ms MemberSession, f Frame) {
	if err := ms.Signal().TrySend(f); err != nil {
		p.Dropped = append(p.Dropped, ms.ID())
		return
	}
	p.SendTo++
}

// MemberDTO is a read-only view for APIs (no transport fields).
type MemberDTO struct {
	SessionID   SessionID `json:"sessionId"`
	DisplayName string    `json:"displayName"`
}

func DTOOf(ms MemberSession) MemberDTO {
	u := ms.User()
	return MemberDTO{SessionID: ms.ID(), DisplayName: u.DisplayName}
}

type RoomInfo struct {
	Code             domain.RoomCode `json:"roomCode"`
	MemberCount      int             `json:"memberCount"`
	CallActive       bool            `json:"callActive"`
	CallParticipants int             `json:"callParticipants"`
	CallType         domain.CallType `json:"callType,omitempty"`
}

// RoomDetail is RoomInfo plus the rosters.
type RoomDetail struct {
	RoomInfo
	Members      []MemberDTO `json:"members"`
	Participants []MemberDTO `json:"participants"`
}
