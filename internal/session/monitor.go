package session

import (
	"context"
	"log/slog"
	"time"

	"github.com/cwrk-planet/session-service/internal/domain"
)

// warnStep — порог предупреждения: за сколько до закрытия и какая стадия.
type warnStep struct {
	before time.Duration
	stage  domain.WarningStage
	text   string
}

// Checked most-urgent first; advancing to a later stage implicitly marks the
// earlier ones as sent, so each threshold fires at most once per idle period.
var warnSteps = []warnStep{
	{10 * time.Minute, domain.Warned10m, "room closes in 10 minutes without activity"},
	{30 * time.Minute, domain.Warned30m, "room closes in 30 minutes without activity"},
	{time.Hour, domain.Warned1h, "room closes in 1 hour without activity"},
}

// Run drives the periodic work: the rate-limit window flush and the
// inactivity sweep. Blocks until ctx is done.
func (m *Manager) Run(ctx context.Context) {
	go m.limiter.Run(ctx)

	ticker := time.NewTicker(m.set.SweepEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.sweep(m.now())
		case <-ctx.Done():
			return
		}
	}
}

// sweep expires idle rooms and advances warning stages.
func (m *Manager) sweep(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, room := range m.rooms {
		// комната без участников не может пережить grace period; если такая
		// нашлась, состояние повреждено и комната удаляется
		if len(room.Participants) == 0 {
			slog.Warn("orphaned room in registry", "room_id", room.ID)
			m.closeRoomLocked(room, "Room closed.", "orphaned")
			continue
		}

		idle := now.Sub(room.LastActivity)
		if idle >= m.set.ExpireAfter {
			slog.Info("room idle past expiry", "room_id", room.ID, "idle", idle)
			m.closeRoomLocked(room, "Room closed due to inactivity.", "idle")
			continue
		}

		remaining := m.set.ExpireAfter - idle
		for _, ws := range warnSteps {
			if ws.before >= m.set.ExpireAfter {
				continue // порог не имеет смысла при коротком expiry
			}
			if remaining <= ws.before && room.Warning < ws.stage {
				room.Warning = ws.stage
				m.appendEvent(room, ws.text)
				break
			}
		}
	}
}
