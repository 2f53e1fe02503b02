package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"eventportal/internal/model"
	"eventportal/internal/pubsub"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	// The kiosk front end is served from another origin.
	CheckOrigin: func(r *http.Request) bool { return true },
}

// ThreadMessage is pushed to live chat connections.
type ThreadMessage struct {
	Type  string       `json:"type"`
	Chats []model.Chat `json:"chats,omitempty"`
	Error string       `json:"error,omitempty"`
}

// watchThread streams a ticket's chat thread: the current thread on
// connect, then again whenever it changes. The thread is re-read every
// PollInterval and when a question is posted through this service.
func (d Dependencies) watchThread(w http.ResponseWriter, r *http.Request) {
	id, ok := d.recordID(w, r)
	if !ok {
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		d.Log.Warn("Failed to upgrade connection", zap.Error(err))
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	// The client sends nothing meaningful; reading only detects the close.
	conn.SetReadLimit(512)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	var changed <-chan struct{}
	if d.Watcher != nil {
		var stop func()
		changed, stop = d.Watcher.Subscribe(ctx, pubsub.ThreadChannel(id))
		defer stop()
	}

	interval := d.PollInterval
	if interval <= 0 {
		interval = 10 * time.Second
	}
	poll := time.NewTicker(interval)
	defer poll.Stop()
	ping := time.NewTicker(pingPeriod)
	defer ping.Stop()

	var last []byte
	push := func() error {
		msg := ThreadMessage{Type: "thread"}
		chats, err := d.Chats.Thread(ctx, id)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			d.Log.Warn("Failed to read chat thread", zap.String("ticket_id", id), zap.Error(err))
			msg = ThreadMessage{Type: "error", Error: "Chat is temporarily unavailable"}
		} else {
			msg.Chats = chats
		}

		data, err := json.Marshal(msg)
		if err != nil {
			return err
		}
		if bytes.Equal(data, last) {
			return nil
		}
		last = data

		conn.SetWriteDeadline(time.Now().Add(writeWait))
		return conn.WriteMessage(websocket.TextMessage, data)
	}

	if err := push(); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		case <-poll.C:
			if err := push(); err != nil {
				return
			}
		case <-changed:
			if err := push(); err != nil {
				return
			}
		case <-ping.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
