package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/dmitrijs2005/chatrelay/internal/common"
	"github.com/gorilla/websocket"
)

// Frame is the envelope used on the live connection.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// LiveConn is an authenticated WebSocket session with the relay.
type LiveConn struct {
	conn    *websocket.Conn
	writeMu sync.Mutex
}

// wsURL turns the http(s) base URL into the ws(s) endpoint.
func wsURL(baseURL string) string {
	switch {
	case strings.HasPrefix(baseURL, "https://"):
		return "wss://" + strings.TrimPrefix(baseURL, "https://") + "/ws"
	case strings.HasPrefix(baseURL, "http://"):
		return "ws://" + strings.TrimPrefix(baseURL, "http://") + "/ws"
	default:
		return baseURL + "/ws"
	}
}

// DialLive opens the live connection with the token the client holds.
func (c *HTTPClient) DialLive(ctx context.Context) (*LiveConn, error) {
	header := http.Header{}
	header.Set(common.AuthorizationHeaderName, common.BearerPrefix+c.token)

	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsURL(c.baseURL), header)
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: live connection refused", ErrUnauthorized)
		}
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	return &LiveConn{conn: conn}, nil
}

// Send emits a sendMessage frame.
func (l *LiveConn) Send(text string) error {
	data, err := json.Marshal(text)
	if err != nil {
		return err
	}

	l.writeMu.Lock()
	defer l.writeMu.Unlock()
	return l.conn.WriteJSON(Frame{Event: "sendMessage", Data: data})
}

// Receive blocks until the next frame and returns its event and text.
func (l *LiveConn) Receive() (string, string, error) {
	var f Frame
	if err := l.conn.ReadJSON(&f); err != nil {
		if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
			return "", "", fmt.Errorf("%w: connection closed", ErrUnavailable)
		}
		return "", "", err
	}

	var text string
	if len(f.Data) > 0 {
		if err := json.Unmarshal(f.Data, &text); err != nil {
			return f.Event, "", errors.New("unexpected payload in " + f.Event)
		}
	}
	return f.Event, text, nil
}

func (l *LiveConn) Close() error {
	l.writeMu.Lock()
	_ = l.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
	l.writeMu.Unlock()
	return l.conn.Close()
}
