// Package session implements the room session manager: the in-memory
// registry of transient chat rooms, token-based participant identity across
// reconnects, grace-period ownership resolution and inactivity expiry.
//
// Все мутации реестра проходят под одним мьютексом; отложенные проверки
// (grace period, sweep) перед действием перечитывают текущее состояние,
// а не доверяют захваченным ссылкам.
package session

import (
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/cwrk-planet/session-service/internal/domain"
	"github.com/cwrk-planet/session-service/internal/ratelimit"
	"github.com/cwrk-planet/session-service/internal/security"
	"github.com/cwrk-planet/session-service/pkg/metrics"
)

const tokenBytes = 32

type Settings struct {
	MaxRooms      int
	HistoryCap    int
	MaxMessageLen int
	GracePeriod   time.Duration
	ExpireAfter   time.Duration
	SweepEvery    time.Duration
	CreateLimit   int
	CreateWindow  time.Duration
}

func (s *Settings) withDefaults() {
	if s.MaxRooms <= 0 {
		s.MaxRooms = 100
	}
	if s.HistoryCap <= 0 {
		s.HistoryCap = 15
	}
	if s.MaxMessageLen <= 0 {
		s.MaxMessageLen = 500
	}
	if s.GracePeriod <= 0 {
		s.GracePeriod = 2500 * time.Millisecond
	}
	if s.ExpireAfter <= 0 {
		s.ExpireAfter = 2 * time.Hour
	}
	if s.SweepEvery <= 0 {
		s.SweepEvery = time.Minute
	}
	if s.CreateLimit <= 0 {
		s.CreateLimit = 3
	}
	if s.CreateWindow <= 0 {
		s.CreateWindow = time.Minute
	}
}

type Manager struct {
	mu       sync.Mutex
	rooms    map[string]*domain.Room // roomID -> room
	connRoom map[string]string       // connID -> roomID (одно соединение - одна комната)

	limiter *ratelimit.Window
	bc      Broadcaster
	set     Settings

	// подменяются в тестах
	now       func() time.Time
	afterFunc func(time.Duration, func()) *time.Timer
	newRoomID func() string
	newToken  func() (string, error)
}

func NewManager(bc Broadcaster, set Settings) *Manager {
	set.withDefaults()

	return &Manager{
		rooms:     make(map[string]*domain.Room),
		connRoom:  make(map[string]string),
		limiter:   ratelimit.New(set.CreateLimit, set.CreateWindow),
		bc:        bc,
		set:       set,
		now:       time.Now,
		afterFunc: time.AfterFunc,
		newRoomID: uuid.NewString,
		newToken:  func() (string, error) { return security.RandomStringURLSafe(tokenBytes) },
	}
}

// CreateRoom allocates a room with the requesting connection as sole
// participant and owner. The owner token goes only to the creator.
func (m *Manager) CreateRoom(connID, sourceAddr string) (string, string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.connRoom[connID]; ok {
		return "", "", domain.ErrAlreadyInRoom
	}
	if len(m.rooms) >= m.set.MaxRooms {
		return "", "", domain.ErrRoomCapacity
	}
	if !m.limiter.TryConsume(sourceAddr) {
		metrics.RateLimited.Inc()
		return "", "", domain.ErrRateLimited
	}

	token, err := m.newToken()
	if err != nil {
		return "", "", fmt.Errorf("mint owner token: %w", err)
	}

	now := m.now()
	roomID := m.newRoomID()
	owner := &domain.Participant{
		ID:          connID,
		Token:       token,
		DisplayName: domain.DeriveDisplayName(connID),
	}
	room := &domain.Room{
		ID:           roomID,
		OwnerID:      connID,
		Participants: []*domain.Participant{owner},
		History:      domain.NewHistory(m.set.HistoryCap),
		LastActivity: now,
		CreatedAt:    now,
	}
	m.rooms[roomID] = room
	m.connRoom[connID] = roomID

	metrics.RoomsCreated.Inc()
	metrics.ActiveRooms.Set(float64(len(m.rooms)))

	m.bc.JoinGroup(connID, roomID)
	m.bc.Unicast(connID, Event{Type: EvtRoomCreated, Payload: RoomCreatedPayload{RoomID: roomID, Token: token}})
	m.appendEvent(room, fmt.Sprintf("room created, self-destructs after %s of inactivity", m.set.ExpireAfter))
	m.broadcastParticipants(room)

	slog.Info("room created", "room_id", roomID, "owner", connID)
	return roomID, token, nil
}

// Join binds a connection to a room. The resolution order is fixed:
// same conn id -> idempotent replay; matching token -> rebind (reconnect,
// ownership travels with the token holder); otherwise a new participant.
func (m *Manager) Join(connID, roomID, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if cur, ok := m.connRoom[connID]; ok && cur != roomID {
		return domain.ErrAlreadyInRoom
	}

	// Повторный join с того же соединения: ничего не анонсируем, просто
	// переотправляем состояние.
	if p := room.ByConnID(connID); p != nil {
		m.bc.Unicast(connID, loadHistory(room, p.Token))
		m.broadcastParticipants(room)
		return nil
	}

	if p := room.ByToken(token); p != nil {
		// Реконнект: личность и токен сохраняются, меняется только id.
		delete(m.connRoom, p.ID)
		if room.OwnerID == p.ID {
			room.OwnerID = connID
		}
		p.ID = connID
		m.connRoom[connID] = roomID

		m.bc.JoinGroup(connID, roomID)
		m.bc.Unicast(connID, loadHistory(room, p.Token))
		m.broadcastParticipants(room)

		slog.Info("participant reconnected", "room_id", roomID, "conn", connID, "name", p.DisplayName)
		return nil
	}

	token, err := m.newToken()
	if err != nil {
		return fmt.Errorf("mint token: %w", err)
	}
	p := &domain.Participant{
		ID:          connID,
		Token:       token,
		DisplayName: domain.DeriveDisplayName(connID),
	}
	room.Participants = append(room.Participants, p)
	m.connRoom[connID] = roomID

	m.bc.JoinGroup(connID, roomID)
	m.appendEvent(room, p.DisplayName+" joined the room")
	m.bc.Unicast(connID, loadHistory(room, token))
	m.broadcastParticipants(room)

	slog.Info("participant joined", "room_id", roomID, "conn", connID, "name", p.DisplayName)
	return nil
}

// SendMessage accepts a chat message or silently drops it. Acceptance
// resets the inactivity clock and all warning stages.
func (m *Manager) SendMessage(connID, roomID, text string) bool {
	if len(text) > m.set.MaxMessageLen {
		return false
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return false
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return false
	}
	sender := room.ByConnID(connID)
	if sender == nil {
		return false
	}

	room.Touch(m.now())
	// снапшот отправителя по значению: позднейший уход не меняет историю
	ref := sender.Ref()
	room.History.Append(domain.MessageEntry(ref, text))
	m.bc.Broadcast(roomID, Event{Type: EvtReceiveMessage, Payload: ReceiveMessagePayload{Sender: ref, Message: text}})

	metrics.Messages.Inc()
	return true
}

// Disconnect schedules the deferred grace-period check. State is not
// touched synchronously: the same logical participant may reconnect with a
// new conn id and rebind via Join before the check fires.
func (m *Manager) Disconnect(connID string) {
	m.mu.Lock()
	roomID, ok := m.connRoom[connID]
	if !ok {
		m.mu.Unlock()
		return
	}
	delete(m.connRoom, connID)

	var name string
	if room := m.rooms[roomID]; room != nil {
		if p := room.ByConnID(connID); p != nil {
			name = p.DisplayName
		}
	}
	m.mu.Unlock()

	slog.Debug("connection lost, grace period started", "room_id", roomID, "conn", connID)
	m.afterFunc(m.set.GracePeriod, func() {
		m.resolveDeparture(roomID, connID, name)
	})
}

// resolveDeparture fires after the grace period. It re-validates everything:
// the room may be gone, and the stale conn id may already be rebound away by
// a token rejoin, in which case the departure never happened.
func (m *Manager) resolveDeparture(roomID, staleID, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return
	}
	p := room.ByConnID(staleID)
	if p == nil {
		return // реконнект уже перепривязал участника
	}

	if staleID == room.OwnerID {
		m.closeRoomLocked(room, "The host has left the room.", "owner_left")
		return
	}

	room.RemoveByConnID(staleID)
	m.broadcastParticipants(room)
	m.appendEvent(room, name+" left the room")
	slog.Info("participant left", "room_id", roomID, "name", name)
}

// CloseRoom deletes a room explicitly (admin surface).
func (m *Manager) CloseRoom(roomID, reason string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	room, ok := m.rooms[roomID]
	if !ok {
		return domain.ErrRoomNotFound
	}
	if reason == "" {
		reason = "Room closed."
	}
	m.closeRoomLocked(room, reason, "explicit")
	return nil
}

// closeRoomLocked broadcasts room_closed, then deletes the room and tears
// down its group. Broadcast-before-delete is the contract: the group must
// still exist when the notice goes out.
func (m *Manager) closeRoomLocked(room *domain.Room, reason, cause string) {
	m.bc.Broadcast(room.ID, Event{Type: EvtRoomClosed, Payload: reason})
	m.bc.TearDown(room.ID)

	delete(m.rooms, room.ID)
	for _, p := range room.Participants {
		delete(m.connRoom, p.ID)
	}

	metrics.RoomsClosed.WithLabelValues(cause).Inc()
	metrics.ActiveRooms.Set(float64(len(m.rooms)))
	slog.Info("room closed", "room_id", room.ID, "cause", cause)
}

// RoomSummary — снимок для админского листинга.
type RoomSummary struct {
	ID           string    `json:"id"`
	Participants int       `json:"participants"`
	CreatedAt    time.Time `json:"createdAt"`
	LastActivity time.Time `json:"lastActivity"`
}

func (m *Manager) Rooms() []RoomSummary {
	m.mu.Lock()
	defer m.mu.Unlock()

	out := make([]RoomSummary, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, RoomSummary{
			ID:           r.ID,
			Participants: len(r.Participants),
			CreatedAt:    r.CreatedAt,
			LastActivity: r.LastActivity,
		})
	}
	return out
}

// --- helpers, всегда под m.mu ---

func (m *Manager) appendEvent(room *domain.Room, text string) {
	room.History.Append(domain.EventEntry(text))
	m.bc.Broadcast(room.ID, Event{Type: EvtUserEvent, Payload: UserEventPayload{Text: text}})
}

func (m *Manager) broadcastParticipants(room *domain.Room) {
	items := make([]ParticipantItem, 0, len(room.Participants))
	for _, p := range room.Participants {
		items = append(items, ParticipantItem{
			ID:          p.ID,
			DisplayName: p.DisplayName,
			IsOwner:     p.ID == room.OwnerID,
		})
	}
	m.bc.Broadcast(room.ID, Event{Type: EvtUpdateParticipants, Payload: items})
}

func loadHistory(room *domain.Room, token string) Event {
	return Event{Type: EvtLoadHistory, Payload: LoadHistoryPayload{
		History: room.History.Snapshot(),
		Token:   token,
	}}
}
