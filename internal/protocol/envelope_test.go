package protocol

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncode_Shape(t *testing.T) {
	req := require.New(t)

	b, err := Encode(EventUserJoined, Presence{SessionID: "s1", DisplayName: "Alice", MemberCount: 2})
	req.NoError(err)
	req.JSONEq(`{"type":"user-joined","data":{"sessionId":"s1","displayName":"Alice","memberCount":2}}`, string(b))

	b, err = Encode(EventPong, nil)
	req.NoError(err)
	req.JSONEq(`{"type":"pong"}`, string(b))
}

func TestDecode_And_Bind(t *testing.T) {
	req := require.New(t)

	env, err := Decode([]byte(`{"type":"offer","data":{"to":"s2","payload":{"sdp":"v=0"}}}`))
	req.NoError(err)
	req.Equal(EventOffer, env.Type)
	req.True(env.Type.IsSignal())

	var in SignalIn
	req.NoError(env.Bind(&in))
	req.EqualValues("s2", in.To)
	req.JSONEq(`{"sdp":"v=0"}`, string(in.Payload))
}

func TestDecode_Rejects(t *testing.T) {
	req := require.New(t)

	_, err := Decode([]byte(`{"data":{}}`))
	req.ErrorIs(err, ErrMissingType)

	_, err = Decode([]byte(`nope`))
	req.Error(err)

	env, err := Decode([]byte(`{"type":"join-room","data":[1,2]}`))
	req.NoError(err)
	var jr JoinRoom
	req.Error(env.Bind(&jr))
}

func TestBind_Without_Data_Leaves_Zero(t *testing.T) {
	req := require.New(t)

	env, err := Decode([]byte(`{"type":"call-join"}`))
	req.NoError(err)
	var ref RoomRef
	req.NoError(env.Bind(&ref))
	req.Empty(ref.RoomCode)
	req.False(env.Type.IsSignal())
}
