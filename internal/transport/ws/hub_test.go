package ws

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwrk-planet/session-service/internal/session"
)

type stubConn struct {
	id     string
	sent   []session.Event
	closed bool
}

func (c *stubConn) Send(ev session.Event) error {
	c.sent = append(c.sent, ev)
	return nil
}

func (c *stubConn) Close() error {
	c.closed = true
	return nil
}

func (c *stubConn) ID() string { return c.id }

func TestHubBroadcastReachesGroupOnly(t *testing.T) {
	h := NewHub()
	a := &stubConn{id: "a"}
	b := &stubConn{id: "b"}
	c := &stubConn{id: "c"}
	for _, s := range []*stubConn{a, b, c} {
		h.Register(s)
	}

	h.JoinGroup("a", "room-1")
	h.JoinGroup("b", "room-1")
	h.JoinGroup("c", "room-2")

	h.Broadcast("room-1", session.Event{Type: session.EvtUserEvent})

	assert.Len(t, a.sent, 1)
	assert.Len(t, b.sent, 1)
	assert.Empty(t, c.sent)
}

func TestHubUnicast(t *testing.T) {
	h := NewHub()
	a := &stubConn{id: "a"}
	h.Register(a)

	h.Unicast("a", session.Event{Type: session.EvtRoomCreated})
	h.Unicast("ghost", session.Event{Type: session.EvtRoomCreated}) // no panic

	require.Len(t, a.sent, 1)
	assert.Equal(t, session.EvtRoomCreated, a.sent[0].Type)
}

func TestHubJoinGroupUnknownConn(t *testing.T) {
	h := NewHub()
	h.JoinGroup("ghost", "room-1")
	h.Broadcast("room-1", session.Event{Type: session.EvtUserEvent}) // пустая группа
}

func TestHubUnregisterLeavesGroup(t *testing.T) {
	h := NewHub()
	a := &stubConn{id: "a"}
	b := &stubConn{id: "b"}
	h.Register(a)
	h.Register(b)
	h.JoinGroup("a", "room-1")
	h.JoinGroup("b", "room-1")

	h.Unregister("a")
	h.Broadcast("room-1", session.Event{Type: session.EvtUserEvent})

	assert.Empty(t, a.sent)
	assert.Len(t, b.sent, 1)
}

func TestHubTearDown(t *testing.T) {
	h := NewHub()
	a := &stubConn{id: "a"}
	h.Register(a)
	h.JoinGroup("a", "room-1")

	h.TearDown("room-1")
	h.Broadcast("room-1", session.Event{Type: session.EvtUserEvent})

	assert.Empty(t, a.sent)
	// соединение живо и доступно для unicast
	h.Unicast("a", session.Event{Type: session.EvtRoomClosed})
	assert.Len(t, a.sent, 1)
}

func TestPayloadValidation(t *testing.T) {
	long := make([]byte, maxRoomIDLen+1)
	for i := range long {
		long[i] = 'x'
	}

	j := JoinRoomPayload{RoomID: "room-1"}
	assert.True(t, j.valid())
	j.RoomID = string(long)
	assert.False(t, j.valid())
	j = JoinRoomPayload{}
	assert.False(t, j.valid())

	s := SendMessagePayload{RoomID: "room-1", Message: "hi"}
	assert.True(t, s.valid())
	s.RoomID = ""
	assert.False(t, s.valid())
}
