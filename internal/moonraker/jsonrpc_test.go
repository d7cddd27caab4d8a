package moonraker

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
)

func TestSubscribeRequestWireFormat(t *testing.T) {
	data, err := json.Marshal(SubscribeRequest())
	if err != nil {
		t.Fatal(err)
	}
	want := `{"jsonrpc":"2.0","method":"printer.objects.subscribe","params":{"objects":{"ace":null}},"id":5434}`
	if string(data) != want {
		t.Errorf("SubscribeRequest() = %s\nwant %s", data, want)
	}
}

func TestDecodeMessage_Malformed(t *testing.T) {
	if _, err := DecodeMessage([]byte(`{"method":`)); !IsMalformedError(err) {
		t.Errorf("expected malformed error, got %v", err)
	}
}

func TestACEStatus(t *testing.T) {
	tests := []struct {
		name  string
		frame string
		want  string
		ok    bool
	}{
		{
			name:  "status update",
			frame: `{"jsonrpc":"2.0","method":"notify_status_update","params":[{"ace":{"status":"busy"}},1234.5]}`,
			want:  `{"status":"busy"}`,
			ok:    true,
		},
		{
			name:  "status update without eventtime",
			frame: `{"jsonrpc":"2.0","method":"notify_status_update","params":[{"ace":{"temp":25}}]}`,
			want:  `{"temp":25}`,
			ok:    true,
		},
		{
			name:  "status update with non-object params",
			frame: `{"jsonrpc":"2.0","method":"notify_status_update","params":[1234.5,{"ace":{"status":"busy"}}]}`,
		},
		{
			name:  "status update for other object",
			frame: `{"jsonrpc":"2.0","method":"notify_status_update","params":[{"extruder":{"temperature":210}},1234.5]}`,
		},
		{
			name:  "subscribe response",
			frame: `{"jsonrpc":"2.0","result":{"eventtime":1.0,"status":{"ace":{"slots":[]}}},"id":5434}`,
			want:  `{"slots":[]}`,
			ok:    true,
		},
		{
			name:  "other response",
			frame: `{"jsonrpc":"2.0","result":{"status":{"ace":{"slots":[]}}},"id":7}`,
		},
		{
			name:  "other method",
			frame: `{"jsonrpc":"2.0","method":"notify_proc_stat_update","params":[{}]}`,
		},
		{
			name:  "empty params",
			frame: `{"jsonrpc":"2.0","method":"notify_status_update","params":[]}`,
		},
		{
			name:  "null ace",
			frame: `{"jsonrpc":"2.0","method":"notify_status_update","params":[{"ace":null}]}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := DecodeMessage([]byte(tt.frame))
			if err != nil {
				t.Fatalf("DecodeMessage() error = %v", err)
			}
			got, ok := msg.ACEStatus()
			if ok != tt.ok {
				t.Fatalf("ACEStatus() ok = %v, want %v", ok, tt.ok)
			}
			if ok && string(got) != tt.want {
				t.Errorf("ACEStatus() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestDialAndSubscribe(t *testing.T) {
	upgrader := websocket.Upgrader{CheckOrigin: func(r *http.Request) bool { return true }}
	received := make(chan string, 1)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasPrefix(r.Header.Get("User-Agent"), "acectl/") {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer func() { _ = conn.Close() }()
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}
		received <- string(data)
	}))
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/websocket"
	conn, err := Dial(context.Background(), url)
	if err != nil {
		t.Fatalf("Dial() error = %v", err)
	}
	defer func() { _ = conn.Close() }()

	if err := WriteJSON(conn, SubscribeRequest()); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}

	select {
	case got := <-received:
		if !strings.Contains(got, `"printer.objects.subscribe"`) {
			t.Errorf("server received %s", got)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for subscribe request")
	}
}

func TestDialRejectedHandshake(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := Dial(context.Background(), "ws"+strings.TrimPrefix(srv.URL, "http")+"/websocket")
	if !IsHTTPError(err) {
		t.Errorf("expected HTTP error, got %v", err)
	}
}

func TestDialRefused(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/websocket"
	srv.Close()

	_, err := Dial(context.Background(), url)
	if !IsTransportError(err) {
		t.Errorf("expected transport error, got %v", err)
	}
}
