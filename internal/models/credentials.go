package models

// Credentials is the login form payload. It lives only for one submit.
type Credentials struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// LoginResponse is the success body of POST /api/login
type LoginResponse struct {
	Token     string `json:"token"`
	TokenType string `json:"token_type,omitempty"`
	User      User   `json:"user"`
}

// ErrorPayload is the validation error body returned by the API.
// Either field may be absent.
type ErrorPayload struct {
	Message string              `json:"message,omitempty"`
	Errors  map[string][]string `json:"errors,omitempty"`
}
