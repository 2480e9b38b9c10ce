package session

import "github.com/cwrk-planet/session-service/internal/domain"

// Типы исходящих событий (server -> client).
const (
	EvtRoomCreated        = "room_created"        // только создателю
	EvtCreateError        = "create_error"        // только запросившему
	EvtJoinError          = "join_error"          // только подключающемуся
	EvtLoadHistory        = "load_history"        // только подключающемуся
	EvtUpdateParticipants = "update_participants" // всей комнате
	EvtReceiveMessage     = "receive_message"     // всей комнате
	EvtUserEvent          = "user_event"          // всей комнате
	EvtRoomClosed         = "room_closed"         // всей комнате, затем группа снимается
)

type Event struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

type RoomCreatedPayload struct {
	RoomID string `json:"roomId"`
	Token  string `json:"token"`
}

type LoadHistoryPayload struct {
	History []domain.HistoryEntry `json:"history"`
	Token   string                `json:"token"`
}

type ParticipantItem struct {
	ID          string `json:"id"`
	DisplayName string `json:"displayName"`
	IsOwner     bool   `json:"isOwner"`
}

type ReceiveMessagePayload struct {
	Sender  domain.SenderRef `json:"sender"`
	Message string           `json:"message"`
}

type UserEventPayload struct {
	Text string `json:"text"`
}

// Broadcaster — шов к Connection Abstraction. Менеджер шлёт события через
// него и ничего не знает о транспорте; ws.Hub реализует интерфейс.
type Broadcaster interface {
	// JoinGroup attaches a connection to a room group.
	JoinGroup(connID, roomID string)
	// Unicast delivers an event to a single connection, best-effort.
	Unicast(connID string, ev Event)
	// Broadcast delivers an event to every connection in a room group.
	Broadcast(roomID string, ev Event)
	// TearDown drops the whole room group after a room is deleted.
	TearDown(roomID string)
}
