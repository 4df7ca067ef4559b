package login

import "testing"

func TestErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{"username error", `{"errors":{"username":["taken"]}}`, "taken"},
		{"first of many", `{"errors":{"username":["first","second"]}}`, "first"},
		{"message", `{"message":"locked out"}`, "locked out"},
		{"laravel validation shape", `{"message":"The given data was invalid.","errors":{"username":["These credentials do not match our records."]}}`, "These credentials do not match our records."},
		{"no body", ``, MsgNoConnection},
		{"whitespace body", "  \n", MsgNoConnection},
		{"not json", `Service Unavailable`, MsgNoConnection},
		{"json array", `["taken"]`, MsgNoConnection},
		{"empty username list", `{"errors":{"username":[]}}`, MsgNoConnection},
		{"errors without username ignores message", `{"message":"Too many","errors":{"password":["short"]}}`, MsgNoConnection},
		{"errors not object", `{"errors":"bad"}`, MsgNoConnection},
		{"username not array", `{"errors":{"username":"taken"}}`, MsgNoConnection},
		{"numeric first element", `{"errors":{"username":[42]}}`, "42"},
		{"null first element", `{"errors":{"username":[null]}}`, MsgNoConnection},
		{"message not string", `{"message":{"text":"x"}}`, MsgNoConnection},
		{"empty message", `{"message":""}`, MsgNoConnection},
		{"neither field", `{"status":"error"}`, MsgNoConnection},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ErrorMessage([]byte(tt.body)); got != tt.want {
				t.Errorf("ErrorMessage(%q) = %q, want %q", tt.body, got, tt.want)
			}
		})
	}

	if got := ErrorMessage(nil); got != MsgNoConnection {
		t.Errorf("ErrorMessage(nil) = %q, want %q", got, MsgNoConnection)
	}
}
