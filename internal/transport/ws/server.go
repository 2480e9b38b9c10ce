package ws

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/jaevor/go-nanoid"

	"github.com/cwrk-planet/session-service/internal/domain"
	"github.com/cwrk-planet/session-service/internal/session"
)

const connIDLen = 16

// Server upgrades HTTP requests to websocket sessions and dispatches the
// inbound command stream into the session manager.
type Server struct {
	upgrader  websocket.Upgrader
	hub       *Hub
	mgr       *session.Manager
	pingEvery time.Duration
	newConnID func() string
}

func NewServer(hub *Hub, mgr *session.Manager) (*Server, error) {
	genID, err := nanoid.Standard(connIDLen)
	if err != nil {
		return nil, fmt.Errorf("conn id generator: %w", err)
	}

	return &Server{
		hub: hub,
		mgr: mgr,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		pingEvery: 15 * time.Second,
		newConnID: genID,
	}, nil
}

// WS endpoint: GET /ws
func (s *Server) HandleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Warn("ws upgrade failed", "err", err)
		return
	}

	// volatile connection id: меняется при каждом подключении
	c := newWsConn(conn, s.newConnID())
	s.hub.Register(c)
	slog.Debug("connection open", "conn", c.id)

	go s.writeLoop(c)
	s.readLoop(c, clientAddr(r))

	// читатель вышел: соединение мертво, дальше решает grace period
	s.hub.Unregister(c.id)
	s.mgr.Disconnect(c.id)

	if err := c.Close(); err != nil {
		slog.Debug("ws close failed", "conn", c.id, "err", err)
	}
}

func (s *Server) readLoop(c *wsConn, addr string) {
	defer func() { _ = c.Close() }()

	c.conn.SetReadLimit(4096)
	c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(2 * s.pingEvery))
		return nil
	})

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			return
		}
		var msg Message
		if err := json.Unmarshal(data, &msg); err != nil {
			continue // malformed input: silent drop
		}

		switch msg.Type {
		case CmdCreateRoom:
			if _, _, err := s.mgr.CreateRoom(c.id, addr); err != nil {
				s.sendError(c, session.EvtCreateError, err)
			}

		case CmdJoinRoom:
			var p JoinRoomPayload
			if json.Unmarshal(msg.Payload, &p) != nil || !p.valid() {
				continue
			}
			if err := s.mgr.Join(c.id, p.RoomID, p.Token); err != nil {
				s.sendError(c, session.EvtJoinError, err)
			}

		case CmdSendMessage:
			var p SendMessagePayload
			if json.Unmarshal(msg.Payload, &p) != nil || !p.valid() {
				continue
			}
			// невалидные сообщения менеджер отбрасывает молча
			s.mgr.SendMessage(c.id, p.RoomID, p.Message)

		default:
			// ignore
		}
	}
}

func (s *Server) writeLoop(c *wsConn) {
	ticker := time.NewTicker(s.pingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			_ = c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(5*time.Second))
		case <-c.closed:
			return
		}
	}
}

// sendError переводит ошибку менеджера в unicast-событие запросившему.
func (s *Server) sendError(c *wsConn, evtType string, err error) {
	reason := err.Error()
	if errors.Is(err, domain.ErrRoomNotFound) {
		reason = "This room does not exist."
	}
	_ = c.Send(session.Event{Type: evtType, Payload: reason})
}

// clientAddr возвращает адрес источника без порта (RealIP уже применён).
func clientAddr(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// --- connection ---

type wsConn struct {
	conn   *websocket.Conn
	id     string
	sendMu chan struct{}
	closed chan struct{}
}

func newWsConn(c *websocket.Conn, id string) *wsConn {
	return &wsConn{
		conn:   c,
		id:     id,
		sendMu: make(chan struct{}, 1),
		closed: make(chan struct{}),
	}
}

func (c *wsConn) Send(ev session.Event) error {
	c.sendMu <- struct{}{}
	defer func() { <-c.sendMu }()
	c.conn.SetWriteDeadline(time.Now().Add(5 * time.Second))

	return c.conn.WriteJSON(ev)
}

func (c *wsConn) Close() error {
	select {
	case <-c.closed:
	default:
		close(c.closed)
	}

	return c.conn.Close()
}

func (c *wsConn) ID() string { return c.id }
