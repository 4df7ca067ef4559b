package login

import (
	"bytes"
	"encoding/json"
	"math"

	"github.com/shindakun/campuslogin/internal/models"
)

type wireUser struct {
	ID       *json.Number    `json:"id"`
	Name     json.RawMessage `json:"name"`
	Username json.RawMessage `json:"username"`
	Email    json.RawMessage `json:"email"`
}

type wireLogin struct {
	Token *string   `json:"token"`
	User  *wireUser `json:"user"`
}

// ParseLoginResponse maps a success body to the record to persist.
// It requires a non-empty string token and an object user with an integer
// id. name, username and email default to "" when absent or null; other
// non-string values are kept as their JSON text.
func ParseLoginResponse(body []byte) (models.SessionRecord, error) {
	var w wireLogin
	if err := json.Unmarshal(body, &w); err != nil {
		return models.SessionRecord{}, &MalformedResponseError{Reason: "invalid json", Err: err}
	}

	if w.Token == nil || *w.Token == "" {
		return models.SessionRecord{}, &MalformedResponseError{Reason: "missing token"}
	}
	if w.User == nil {
		return models.SessionRecord{}, &MalformedResponseError{Reason: "missing user"}
	}
	if w.User.ID == nil {
		return models.SessionRecord{}, &MalformedResponseError{Reason: "missing user.id"}
	}

	id, err := integerID(*w.User.ID)
	if err != nil {
		return models.SessionRecord{}, err
	}

	return models.SessionRecord{
		Token:    *w.Token,
		UserID:   id,
		UserName: optionalText(w.User.Name),
		Username: optionalText(w.User.Username),
		Email:    optionalText(w.User.Email),
	}, nil
}

func integerID(n json.Number) (int64, error) {
	if id, err := n.Int64(); err == nil {
		return id, nil
	}

	f, err := n.Float64()
	// float64(math.MaxInt64) rounds up to 2^63, which does not fit
	if err != nil || f != math.Trunc(f) || f >= -math.MinInt64 || f < math.MinInt64 {
		return 0, &MalformedResponseError{Reason: "user.id is not an integer", Err: err}
	}
	return int64(f), nil
}

func optionalText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
