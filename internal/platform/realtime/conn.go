package realtime

import (
	"encoding/json"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096
)

type inbound struct {
	Message string `json:"message"`
}

// Serve pumps hub events to conn and answers client messages with an echo
// envelope. It blocks until the connection or the hub closes.
func Serve(h *Hub, conn *websocket.Conn, ping time.Duration, log *zap.SugaredLogger) {
	c := h.Register()
	if c == nil {
		_ = conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "shutting down"), time.Now().Add(writeWait))
		_ = conn.Close()
		return
	}
	if ping <= 0 {
		ping = 30 * time.Second
	}
	pongWait := ping * 2

	// the echo replies share the write goroutine with hub events
	replies := make(chan []byte, 8)
	done := make(chan struct{})

	go func() {
		defer close(done)
		conn.SetReadLimit(maxMessageSize)
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			_, data, err := conn.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					log.Infow("realtime_read_closed", "err", err)
				}
				return
			}
			var in inbound
			if err := json.Unmarshal(data, &in); err != nil {
				in.Message = string(data)
			}
			raw, _ := json.Marshal(Envelope{Type: "echo", Data: "Received message: " + in.Message})
			select {
			case replies <- raw:
			default:
			}
		}
	}()

	ticker := time.NewTicker(ping)
	defer func() {
		ticker.Stop()
		h.Unregister(c)
		_ = conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.Send():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case msg := <-replies:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-done:
			return
		}
	}
}
