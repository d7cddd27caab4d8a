package moonraker

import (
	"bytes"
	"encoding/json"
)

// CommandResponse is the raw reply to a command POST. Either member may be
// absent.
type CommandResponse struct {
	Error  json.RawMessage `json:"error,omitempty"`
	Result json.RawMessage `json:"result,omitempty"`
}

// commandResult is the optional object form of Result.
type commandResult struct {
	Success json.RawMessage `json:"success"`
	Error   json.RawMessage `json:"error"`
	Message json.RawMessage `json:"message"`
}

// HasError reports a truthy top-level error member.
func (r *CommandResponse) HasError() bool {
	return truthy(r.Error)
}

// HasResult reports a truthy result member.
func (r *CommandResponse) HasResult() bool {
	return truthy(r.Result)
}

// Succeeded reports whether the result signals success: success is not
// literally false and there is no error inside it. A result that is not an
// object counts as success.
func (r *CommandResponse) Succeeded() bool {
	res, ok := r.result()
	if !ok {
		return true
	}
	if isFalse(res.Success) {
		return false
	}
	return !truthy(res.Error)
}

// FailureReason returns the result's error, else its message, else "".
func (r *CommandResponse) FailureReason() string {
	res, ok := r.result()
	if !ok {
		return ""
	}
	if truthy(res.Error) {
		return ErrorText(res.Error)
	}
	if truthy(res.Message) {
		return ErrorText(res.Message)
	}
	return ""
}

func (r *CommandResponse) result() (*commandResult, bool) {
	trimmed := bytes.TrimSpace(r.Result)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, false
	}
	var res commandResult
	if err := json.Unmarshal(trimmed, &res); err != nil {
		return nil, false
	}
	return &res, true
}

// ErrorText renders an error member for display. Strings are returned as
// is, objects with a message use it, anything else is returned as JSON.
func ErrorText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	var obj struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(raw, &obj); err == nil && obj.Message != "" {
		return obj.Message
	}
	return string(bytes.TrimSpace(raw))
}

// truthy mirrors loose JSON truthiness: absent, null, false, 0 and ""
// are false.
func truthy(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return false
	}
	switch string(trimmed) {
	case "null", "false", `""`:
		return false
	}
	var n float64
	if err := json.Unmarshal(trimmed, &n); err == nil {
		return n != 0
	}
	return true
}

func isFalse(raw json.RawMessage) bool {
	return string(bytes.TrimSpace(raw)) == "false"
}
