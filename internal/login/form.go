package login

import (
	"strings"

	"github.com/shindakun/campuslogin/internal/models"
)

// ValidateForm trims both inputs and requires them to be non-empty.
// No other constraint is applied.
func ValidateForm(username, password string) (models.Credentials, error) {
	creds := models.Credentials{
		Username: strings.TrimSpace(username),
		Password: strings.TrimSpace(password),
	}

	var missing []string
	if creds.Username == "" {
		missing = append(missing, "username")
	}
	if creds.Password == "" {
		missing = append(missing, "password")
	}
	if len(missing) > 0 {
		return models.Credentials{}, &ValidationError{Fields: missing}
	}

	return creds, nil
}
