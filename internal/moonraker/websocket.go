package moonraker

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/valgace/acectl/internal/version"
)

// WebSocket timing.
const (
	HandshakeTimeout = 10 * time.Second
	WriteWait        = 10 * time.Second
	PongWait         = 60 * time.Second
	PingPeriod       = (PongWait * 9) / 10
	MaxMessageSize   = 1 << 20
)

// Dial opens a WebSocket to url. Failures are returned as transport errors.
func Dial(ctx context.Context, url string) (*websocket.Conn, error) {
	dialer := websocket.Dialer{
		Proxy:            http.ProxyFromEnvironment,
		HandshakeTimeout: HandshakeTimeout,
	}

	header := http.Header{}
	header.Set("User-Agent", version.UserAgent())

	conn, resp, err := dialer.DialContext(ctx, url, header)
	if resp != nil && resp.Body != nil {
		_ = resp.Body.Close()
	}
	if err != nil {
		if resp != nil {
			return nil, &Error{
				Type:       ErrTypeHTTP,
				Message:    "WebSocket handshake rejected",
				StatusCode: resp.StatusCode,
				Err:        err,
				Endpoint:   url,
			}
		}
		return nil, NewTransportError("WebSocket dial failed", err, url)
	}

	conn.SetReadLimit(MaxMessageSize)
	return conn, nil
}

// WriteJSON writes v with a write deadline.
func WriteJSON(conn *websocket.Conn, v any) error {
	_ = conn.SetWriteDeadline(time.Now().Add(WriteWait))
	return conn.WriteJSON(v)
}
