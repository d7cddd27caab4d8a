package moonraker

import (
	"encoding/json"
)

const (
	// MethodSubscribe subscribes to printer object updates.
	MethodSubscribe = "printer.objects.subscribe"

	// MethodStatusUpdate is the push notification for subscribed objects.
	MethodStatusUpdate = "notify_status_update"

	// SubscribeID is the request id used for the ace subscription.
	SubscribeID = 5434

	// aceObject is the printer object name of the ACE unit.
	aceObject = "ace"
)

// Request is an outbound JSON-RPC 2.0 request.
type Request struct {
	JSONRPC string `json:"jsonrpc"`
	Method  string `json:"method"`
	Params  any    `json:"params,omitempty"`
	ID      int    `json:"id"`
}

// SubscribeRequest returns the request that subscribes to all fields of the
// ace object.
func SubscribeRequest() Request {
	return Request{
		JSONRPC: "2.0",
		Method:  MethodSubscribe,
		Params: map[string]any{
			"objects": map[string]any{aceObject: nil},
		},
		ID: SubscribeID,
	}
}

// Message is an inbound JSON-RPC frame: a notification, a response or an
// error response.
type Message struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method,omitempty"`
	Params  json.RawMessage `json:"params,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   json.RawMessage `json:"error,omitempty"`
	ID      json.RawMessage `json:"id,omitempty"`
}

// DecodeMessage parses a text frame.
func DecodeMessage(data []byte) (*Message, error) {
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, NewMalformedError("failed to parse WebSocket message", err)
	}
	return &msg, nil
}

// IsSubscribeResponse reports whether msg answers the ace subscription.
func (m *Message) IsSubscribeResponse() bool {
	if m.Method != "" || len(m.ID) == 0 {
		return false
	}
	var id int
	if err := json.Unmarshal(m.ID, &id); err != nil {
		return false
	}
	return id == SubscribeID
}

// ACEStatus extracts the ace object from a status update notification
// (params[0].ace) or from the subscription response (result.status.ace).
// Other frames return false.
func (m *Message) ACEStatus() (json.RawMessage, bool) {
	switch {
	case m.Method == MethodStatusUpdate:
		// params is [status, eventtime]; only the first element is an object.
		var params []json.RawMessage
		if err := json.Unmarshal(m.Params, &params); err != nil || len(params) == 0 {
			return nil, false
		}
		var status map[string]json.RawMessage
		if err := json.Unmarshal(params[0], &status); err != nil {
			return nil, false
		}
		ace, ok := status[aceObject]
		return ace, ok && truthy(ace)

	case m.IsSubscribeResponse() && len(m.Result) > 0:
		var result struct {
			Status map[string]json.RawMessage `json:"status"`
		}
		if err := json.Unmarshal(m.Result, &result); err != nil {
			return nil, false
		}
		ace, ok := result.Status[aceObject]
		return ace, ok && truthy(ace)
	}
	return nil, false
}
