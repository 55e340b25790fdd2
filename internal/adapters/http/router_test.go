package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/dkeye/Relay/internal/adapters/rtc"
	"github.com/dkeye/Relay/internal/app"
	"github.com/dkeye/Relay/internal/app/orch"
	"github.com/dkeye/Relay/internal/client"
	"github.com/dkeye/Relay/internal/config"
	"github.com/dkeye/Relay/internal/core"
	"github.com/dkeye/Relay/internal/domain"
	"github.com/dkeye/Relay/internal/protocol"
)

func testConfig(t *testing.T) *config.Config {
	return &config.Config{
		Mode:           "test",
		Port:           0,
		StaticPath:     t.TempDir(),
		Secret:         "test-secret",
		ReadLimit:      1 << 20,
		SendBuffer:     64,
		WriteWait:      time.Second,
		PongWait:       5 * time.Second,
		PingPeriod:     time.Second,
		AllowedOrigins: []string{"https://app.example"},
		ICEServers:     []string{"stun:stun.l.google.com:19302"},
		Backpressure:   "kick",
	}
}

type testServer struct {
	*httptest.Server
	orch *orch.Orchestrator
}

func newTestServer(t *testing.T) *testServer {
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	cfg := testConfig(t)
	o := orch.New(app.PolicyFromName(cfg.Backpressure), nil, rtc.ICEServers(cfg.ICEServers))
	srv := httptest.NewServer(SetupRouter(ctx, cfg, o))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, orch: o}
}

func (s *testServer) wsURL() string {
	return "ws" + strings.TrimPrefix(s.URL, "http") + "/api/ws"
}

func (s *testServer) dial(t *testing.T, header http.Header) *client.Client {
	t.Helper()
	opts := client.DefaultOptions()
	opts.Header = header
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, err := client.Dial(ctx, s.wsURL(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = c.Close() })
	return c
}

func await(t *testing.T, c *client.Client, ev protocol.Event) protocol.Envelope {
	t.Helper()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	env, err := c.Await(ctx, ev)
	require.NoError(t, err)
	return env
}

func TestWS_Join_Chat_Disconnect(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	// Given two clients connected
	a := srv.dial(t, nil)
	b := srv.dial(t, nil)
	var connA protocol.Connected
	req.NoError(await(t, a, protocol.EventConnected).Bind(&connA))
	req.NotEmpty(connA.SessionID)
	req.Len(connA.ICEServers, 1)
	await(t, b, protocol.EventConnected)

	// When both join the same room
	req.NoError(a.Send(protocol.EventJoinRoom, protocol.JoinRoom{RoomCode: "ABCD1234", DisplayName: "Alice"}))
	await(t, a, protocol.EventRoomJoined)
	req.NoError(b.Send(protocol.EventJoinRoom, protocol.JoinRoom{RoomCode: "ABCD1234", DisplayName: "Bob"}))

	// Then B sees A and A hears B arrive
	var rj protocol.RoomJoined
	req.NoError(await(t, b, protocol.EventRoomJoined).Bind(&rj))
	req.Len(rj.OtherMembers, 1)
	req.Equal(connA.SessionID, rj.OtherMembers[0].SessionID)
	var joined protocol.Presence
	req.NoError(await(t, a, protocol.EventUserJoined).Bind(&joined))
	req.Equal(2, joined.MemberCount)

	// When A chats
	req.NoError(a.Send(protocol.EventChatMessage, protocol.ChatIn{Message: "hello"}))
	var chat protocol.ChatOut
	req.NoError(await(t, b, protocol.EventChatMessage).Bind(&chat))
	req.Equal("hello", chat.Message)
	req.Equal(connA.SessionID, chat.SenderID)

	// When A goes away
	req.NoError(a.Close())

	// Then B is told and the registry settles
	var left protocol.Presence
	req.NoError(await(t, b, protocol.EventUserLeft).Bind(&left))
	req.Equal(connA.SessionID, left.SessionID)
	req.Equal(1, left.MemberCount)
	req.Eventually(func() bool { return srv.orch.Registry.Count() == 1 }, 2*time.Second, 20*time.Millisecond)
}

func TestWS_Rejects_Foreign_Origin(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	opts := client.DefaultOptions()
	opts.Header = http.Header{"Origin": []string{"https://evil.example"}}
	_, err := client.Dial(ctx, srv.wsURL(), opts)

	req.Error(err)
	req.Zero(srv.orch.Registry.Count())
}

func TestWS_Allows_Listed_Origin(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	c := srv.dial(t, http.Header{"Origin": []string{"https://app.example"}})

	await(t, c, protocol.EventConnected)
	req.Equal(1, srv.orch.Registry.Count())
}

func TestREST_Rooms_And_Health(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	c := srv.dial(t, nil)
	await(t, c, protocol.EventConnected)
	req.NoError(c.Send(protocol.EventJoinRoom, protocol.JoinRoom{RoomCode: "lobby", DisplayName: "Alice"}))
	await(t, c, protocol.EventRoomJoined)
	req.NoError(c.Send(protocol.EventCallStart, protocol.CallStart{CallType: "audio"}))
	await(t, c, protocol.EventCallStarted)

	// rooms list
	resp, err := http.Get(srv.URL + "/api/rooms")
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)
	var rooms RoomsResponse
	req.NoError(json.NewDecoder(resp.Body).Decode(&rooms))
	req.Equal([]core.RoomInfo{{Code: "lobby", MemberCount: 1, CallActive: true, CallParticipants: 1, CallType: domain.CallAudio}}, rooms.Rooms)

	// room detail
	resp2, err := http.Get(srv.URL + "/api/rooms/lobby")
	req.NoError(err)
	defer resp2.Body.Close()
	var detail core.RoomDetail
	req.NoError(json.NewDecoder(resp2.Body).Decode(&detail))
	req.Len(detail.Members, 1)
	req.Equal("Alice", detail.Members[0].DisplayName)
	req.Len(detail.Participants, 1)

	// unknown room
	resp3, err := http.Get(srv.URL + "/api/rooms/nope")
	req.NoError(err)
	defer resp3.Body.Close()
	req.Equal(http.StatusNotFound, resp3.StatusCode)

	// health
	resp4, err := http.Get(srv.URL + "/healthz")
	req.NoError(err)
	defer resp4.Body.Close()
	var health HealthResponse
	req.NoError(json.NewDecoder(resp4.Body).Decode(&health))
	req.Equal("ok", health.Status)
	req.Equal(1, health.Sessions)
	req.Equal(1, health.Rooms)
}

func TestREST_ICEServers(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	resp, err := http.Get(srv.URL + "/api/ice-servers")
	req.NoError(err)
	defer resp.Body.Close()

	var body struct {
		ICEServers []struct {
			URLs []string `json:"urls"`
		} `json:"iceServers"`
	}
	req.NoError(json.NewDecoder(resp.Body).Decode(&body))
	req.Len(body.ICEServers, 1)
	req.Equal([]string{"stun:stun.l.google.com:19302"}, body.ICEServers[0].URLs)
}

func TestProfile_Name_Carries_Into_Socket(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)
	jar, err := cookiejar.New(nil)
	req.NoError(err)
	httpc := &http.Client{Jar: jar}

	// Given a remembered profile name
	body := bytes.NewBufferString(`{"displayName":"  Remembered  "}`)
	put, err := http.NewRequest(http.MethodPut, srv.URL+"/api/profile", body)
	req.NoError(err)
	put.Header.Set("Content-Type", "application/json")
	resp, err := httpc.Do(put)
	req.NoError(err)
	defer resp.Body.Close()
	req.Equal(http.StatusOK, resp.StatusCode)
	var sessionCookie *http.Cookie
	for _, ck := range resp.Cookies() {
		if ck.Name == "RelaySessions" {
			sessionCookie = ck
		}
	}
	req.NotNil(sessionCookie)
	req.False(sessionCookie.Secure)
	req.Equal(http.SameSiteLaxMode, sessionCookie.SameSite)
	var prof ProfileResponse
	req.NoError(json.NewDecoder(resp.Body).Decode(&prof))
	req.Equal("Remembered", prof.DisplayName)

	// When the same browser opens a socket and joins without a name
	u, err := http.NewRequest(http.MethodGet, srv.URL, nil)
	req.NoError(err)
	header := http.Header{}
	for _, ck := range jar.Cookies(u.URL) {
		header.Add("Cookie", ck.String())
	}
	c := srv.dial(t, header)
	await(t, c, protocol.EventConnected)
	req.NoError(c.Send(protocol.EventJoinRoom, protocol.JoinRoom{RoomCode: "r1"}))
	await(t, c, protocol.EventRoomJoined)

	// Then the room knows the remembered name
	detail, ok := srv.orch.Rooms.Get("r1")
	req.True(ok)
	req.Equal("Remembered", detail.Members[0].DisplayName)
}

func TestProfile_Rejects_Bad_Name(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	for _, body := range []string{`{}`, `{"displayName":"   "}`, `not json`} {
		put, err := http.NewRequest(http.MethodPut, srv.URL+"/api/profile", strings.NewReader(body))
		req.NoError(err)
		put.Header.Set("Content-Type", "application/json")
		resp, err := http.DefaultClient.Do(put)
		req.NoError(err)
		resp.Body.Close()
		req.Equal(http.StatusBadRequest, resp.StatusCode, body)
	}
}

func TestJoin_Error_Frame_Over_Socket(t *testing.T) {
	req := require.New(t)
	srv := newTestServer(t)

	c := srv.dial(t, nil)
	await(t, c, protocol.EventConnected)
	req.NoError(c.Send(protocol.EventJoinRoom, protocol.JoinRoom{RoomCode: "r1"}))

	var e protocol.Error
	req.NoError(await(t, c, protocol.EventError).Bind(&e))
	req.NotEmpty(e.Error)
	req.Zero(srv.orch.Rooms.Count())
}
