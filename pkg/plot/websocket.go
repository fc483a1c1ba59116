package plot

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
)

// Message types exchanged over the WebSocket
const (
	MessageOptions = "options"
	MessageState   = "state"
	MessageView    = "view"
	MessageError   = "error"
)

// Transport labels of derive metrics
const (
	transportHTTP      = "http"
	transportWebSocket = "websocket"
)

const (
	pongWait     = 60 * time.Second
	pingPeriod   = pongWait * 9 / 10
	writeWait    = 10 * time.Second
	maxStateSize = 4096
)

// handleWebSocket streams a view for every control change sent by the client.
// Messages of one connection are handled in order, each derive completes
// before the next message is read.
func (d *Dashboard) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := d.upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.log.Error("Failed to upgrade connection to WebSocket: ", err)
		return
	}
	defer conn.Close()

	log := d.log.WithField("remote", r.RemoteAddr)
	log.Debug("WebSocket client connected")

	d.stats.websocket.Inc()
	defer d.stats.websocket.Dec()

	conn.SetReadLimit(maxStateSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go keepAlive(conn, done)

	// initial draw with the default controls
	if err := d.send(conn, Message{Type: MessageOptions, Payload: d.Options()}); err != nil {
		log.Error("Error sending options: ", err)
		return
	}
	if err := d.send(conn, d.reply(inboundMessage{Type: MessageState})); err != nil {
		log.Error("Error sending initial view: ", err)
		return
	}

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("WebSocket read error: ", err)
			}
			return
		}
		_ = conn.SetReadDeadline(time.Now().Add(pongWait))

		reply := d.reply(msg)
		if err := d.send(conn, reply); err != nil {
			log.Error("Error sending WebSocket message: ", err)
			return
		}
	}
}

// reply derives the answer to one inbound message
func (d *Dashboard) reply(msg inboundMessage) Message {
	if msg.Type != MessageState {
		return errorMessage(fmt.Errorf("unsupported message type %q", msg.Type))
	}

	var req StateRequest
	if len(msg.Payload) > 0 {
		if err := json.Unmarshal(msg.Payload, &req); err != nil {
			return errorMessage(fmt.Errorf("invalid state: %w", err))
		}
	}

	view, err := d.deriveFor(transportWebSocket, req)
	if err != nil {
		d.log.WithError(err).Warn("Rejected dashboard state")
		return errorMessage(err)
	}
	return Message{Type: MessageView, Payload: NewViewModel(view)}
}

func (d *Dashboard) send(conn *websocket.Conn, msg Message) error {
	_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
	return conn.WriteJSON(msg)
}

// keepAlive pings the client until done is closed
func keepAlive(conn *websocket.Conn, done <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-done:
			return
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}

func errorMessage(err error) Message {
	return Message{
		Type:    MessageError,
		Payload: map[string]string{"message": err.Error()},
	}
}
