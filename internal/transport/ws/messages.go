package ws

import "encoding/json"

// Типы входящих команд (client -> server).
const (
	CmdCreateRoom  = "create_room"
	CmdJoinRoom    = "join_room"
	CmdSendMessage = "send_message"
)

// Границы валидации полезной нагрузки. Всё, что вне границ, молча
// отбрасывается: битый ввод трактуется как враждебный шум.
const (
	maxRoomIDLen = 64
	maxTokenLen  = 128
)

type Message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type JoinRoomPayload struct {
	RoomID string `json:"roomId"`
	Token  string `json:"token,omitempty"`
}

func (p *JoinRoomPayload) valid() bool {
	return p.RoomID != "" && len(p.RoomID) <= maxRoomIDLen && len(p.Token) <= maxTokenLen
}

type SendMessagePayload struct {
	RoomID  string `json:"roomId"`
	Message string `json:"message"`
}

func (p *SendMessagePayload) valid() bool {
	return p.RoomID != "" && len(p.RoomID) <= maxRoomIDLen
}
