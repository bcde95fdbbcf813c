package web

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

const writeWait = 10 * time.Second

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool { return true },
}

// handleWS attaches a live client. One goroutine reads input into the host;
// this one writes the host's output until either side goes away.
func (s *Server) handleWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger().Printf("web: upgrade: %v", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := s.Host.Attach(ctx)
	defer s.Host.Detach(context.Background(), c.id)
	s.logger().Printf("web: client %s connected (%d live)", c.id, s.Host.Clients())

	go func() {
		defer cancel()
		for {
			msgType, data, err := conn.ReadMessage()
			if err != nil {
				return
			}
			if msgType != websocket.TextMessage {
				s.logger().Printf("web: unsupported websocket message type %d", msgType)
				continue
			}
			var in inboundMessage
			if err := json.Unmarshal(data, &in); err != nil {
				reply(c, "error", map[string]string{"message": "invalid JSON message"})
				continue
			}
			if err := s.Host.Handle(ctx, in); err != nil {
				s.logger().Printf("web: %s from %s: %v", in.Type, c.id, err)
				reply(c, "error", map[string]string{"type": in.Type, "message": err.Error()})
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			s.logger().Printf("web: client %s disconnected", c.id)
			return
		case env := <-c.send:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(env); err != nil {
				s.logger().Printf("web: send %s: %v", env.Type, err)
				return
			}
		}
	}
}

func reply(c *client, typ string, payload any) {
	select {
	case c.send <- Envelope{Type: typ, Payload: payload}:
	default:
	}
}
