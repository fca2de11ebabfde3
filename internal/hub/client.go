package hub

import (
	"encoding/json"
	"errors"
	"time"

	"github.com/gorilla/websocket"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed
	maxMessageSize = 512
)

// Event names on the wire.
const (
	EventJoin            = "join"
	EventLeave           = "leave"
	EventJoined          = "joined"
	EventLeft            = "left"
	EventError           = "error"
	EventNewNotification = "newNotification"
)

// InboundEvent is a frame sent by the client.
type InboundEvent struct {
	Event   string `json:"event"`
	Address string `json:"address,omitempty"`
}

// OutboundEvent is a frame sent to the client.
type OutboundEvent struct {
	Event string `json:"event"`
	Data  any    `json:"data,omitempty"`
}

// Encode marshals an outbound event.
func Encode(event string, data any) ([]byte, error) {
	return json.Marshal(OutboundEvent{Event: event, Data: data})
}

// Handle applies one inbound frame to the hub and returns the reply frame.
func (c *Client) Handle(raw []byte) []byte {
	var in InboundEvent
	if err := json.Unmarshal(raw, &in); err != nil {
		return errorFrame("malformed event")
	}

	switch in.Event {
	case EventJoin:
		if err := c.Hub.Join(c.ID, in.Address); err != nil {
			c.Hub.log.Warn("Join rejected", "conn_id", c.ID, "user_id", c.UserID, "error", err)
			return errorFrame(err.Error())
		}
		address, _ := c.Hub.AddressOf(c.ID)
		frame, _ := Encode(EventJoined, map[string]string{"address": address})
		return frame
	case EventLeave:
		c.Hub.Leave(c.ID)
		frame, _ := Encode(EventLeft, nil)
		return frame
	default:
		return errorFrame("unknown event " + in.Event)
	}
}

func errorFrame(message string) []byte {
	frame, _ := Encode(EventError, map[string]string{"message": message})
	return frame
}

// ReadPump pumps messages from the WebSocket connection to the hub
func (c *Client) ReadPump() {
	defer func() {
		c.Hub.Disconnect(c.ID)
		c.Conn.Close()
	}()

	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error {
		c.Conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.Hub.log.Warn("Unexpected websocket close", "conn_id", c.ID, "error", err)
			}
			break
		}

		if reply := c.Handle(message); reply != nil {
			if !c.Hub.sendTo(c, reply) {
				c.Hub.log.Warn("Reply dropped", "conn_id", c.ID)
			}
		}
	}
}

// WritePump pumps messages from the hub to the WebSocket connection
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				if !errors.Is(err, websocket.ErrCloseSent) {
					c.Hub.log.Debug("Write failed", "conn_id", c.ID, "error", err)
				}
				return
			}
		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
