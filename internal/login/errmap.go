package login

import (
	"bytes"
	"encoding/json"
)

// ErrorMessage derives the message shown for a failed login from the raw
// error body. It never fails: anything unexpected yields MsgNoConnection.
//
// When an "errors" object is present only errors.username[0] is used;
// "message" is consulted only when "errors" is absent; an empty message
// also yields MsgNoConnection.
func ErrorMessage(body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return MsgNoConnection
	}

	var payload map[string]json.RawMessage
	if err := json.Unmarshal(body, &payload); err != nil {
		return MsgNoConnection
	}

	if raw, ok := payload["errors"]; ok {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(raw, &fields); err != nil {
			return MsgNoConnection
		}
		var list []json.RawMessage
		if err := json.Unmarshal(fields["username"], &list); err != nil || len(list) == 0 {
			return MsgNoConnection
		}
		return scalarText(list[0], MsgNoConnection)
	}

	if raw, ok := payload["message"]; ok {
		var msg string
		if err := json.Unmarshal(raw, &msg); err != nil || msg == "" {
			return MsgNoConnection
		}
		return msg
	}

	return MsgNoConnection
}

// scalarText renders a JSON string, number or bool as text
func scalarText(raw json.RawMessage, fallback string) string {
	var v any
	if err := json.Unmarshal(raw, &v); err != nil {
		return fallback
	}
	switch v := v.(type) {
	case string:
		if v == "" {
			return fallback
		}
		return v
	case float64, bool:
		return string(bytes.TrimSpace(raw))
	default:
		return fallback
	}
}
