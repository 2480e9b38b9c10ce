package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// setIdle rewinds a room's activity clock by the given amount.
func setIdle(t *testing.T, m *Manager, roomID string, idle time.Duration, now time.Time) {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	room, ok := m.rooms[roomID]
	require.True(t, ok)
	room.LastActivity = now.Add(-idle)
}

func TestSweepExpiresIdleRoom(t *testing.T) {
	m, rec, _ := newTestManager(t, Settings{ExpireAfter: 2 * time.Hour})
	roomID, _ := mustCreate(t, m, "owner", "10.0.0.1")

	now := time.Now()
	setIdle(t, m, roomID, 2*time.Hour, now)
	m.sweep(now)

	assert.Equal(t, 1, rec.broadcastCount(roomID, EvtRoomClosed))
	assert.Empty(t, m.Rooms())

	// комната уже удалена, повторный sweep ничего не шлёт
	m.sweep(now)
	assert.Equal(t, 1, rec.broadcastCount(roomID, EvtRoomClosed))
}

func TestSweepWarnsOncePerStage(t *testing.T) {
	m, rec, _ := newTestManager(t, Settings{ExpireAfter: 2 * time.Hour})
	roomID, _ := mustCreate(t, m, "owner", "10.0.0.1")
	base := rec.broadcastCount(roomID, EvtUserEvent) // событие о создании

	now := time.Now()

	// за час до закрытия: одно предупреждение, и только одно
	setIdle(t, m, roomID, 70*time.Minute, now)
	m.sweep(now)
	assert.Equal(t, base+1, rec.broadcastCount(roomID, EvtUserEvent))
	m.sweep(now)
	assert.Equal(t, base+1, rec.broadcastCount(roomID, EvtUserEvent))

	// за полчаса: следующая стадия
	setIdle(t, m, roomID, 95*time.Minute, now)
	m.sweep(now)
	assert.Equal(t, base+2, rec.broadcastCount(roomID, EvtUserEvent))

	// за десять минут: последняя
	setIdle(t, m, roomID, 111*time.Minute, now)
	m.sweep(now)
	assert.Equal(t, base+3, rec.broadcastCount(roomID, EvtUserEvent))
	m.sweep(now)
	assert.Equal(t, base+3, rec.broadcastCount(roomID, EvtUserEvent))
}

func TestSweepSkipsEarlierStagesOnJump(t *testing.T) {
	m, rec, _ := newTestManager(t, Settings{ExpireAfter: 2 * time.Hour})
	roomID, _ := mustCreate(t, m, "owner", "10.0.0.1")
	base := rec.broadcastCount(roomID, EvtUserEvent)

	now := time.Now()

	// сразу в зону «10 минут до закрытия»: ровно одно предупреждение,
	// ранние стадии считаются отправленными
	setIdle(t, m, roomID, 115*time.Minute, now)
	m.sweep(now)
	assert.Equal(t, base+1, rec.broadcastCount(roomID, EvtUserEvent))

	m.sweep(now)
	assert.Equal(t, base+1, rec.broadcastCount(roomID, EvtUserEvent))
}

func TestMessageResetsWarnings(t *testing.T) {
	m, rec, _ := newTestManager(t, Settings{ExpireAfter: 2 * time.Hour})
	roomID, _ := mustCreate(t, m, "owner", "10.0.0.1")
	base := rec.broadcastCount(roomID, EvtUserEvent)

	now := time.Now()
	setIdle(t, m, roomID, 111*time.Minute, now)
	m.sweep(now)
	require.Equal(t, base+1, rec.broadcastCount(roomID, EvtUserEvent))

	// принятое сообщение сбрасывает и часы, и стадии
	require.True(t, m.SendMessage("owner", roomID, "still here"))
	m.sweep(time.Now())
	assert.Equal(t, base+1, rec.broadcastCount(roomID, EvtUserEvent))

	// новый простой снова проходит стадии с начала
	now2 := time.Now()
	setIdle(t, m, roomID, 70*time.Minute, now2)
	m.sweep(now2)
	assert.Equal(t, base+2, rec.broadcastCount(roomID, EvtUserEvent))
}

func TestSweepIgnoresThresholdsWiderThanExpiry(t *testing.T) {
	// короткий expiry: часовые/получасовые пороги не имеют смысла
	m, rec, _ := newTestManager(t, Settings{ExpireAfter: 5 * time.Minute})
	roomID, _ := mustCreate(t, m, "owner", "10.0.0.1")
	base := rec.broadcastCount(roomID, EvtUserEvent)

	now := time.Now()
	setIdle(t, m, roomID, 2*time.Minute, now)
	m.sweep(now)
	assert.Equal(t, base, rec.broadcastCount(roomID, EvtUserEvent))

	setIdle(t, m, roomID, 6*time.Minute, now)
	m.sweep(now)
	assert.Equal(t, 1, rec.broadcastCount(roomID, EvtRoomClosed))
}
