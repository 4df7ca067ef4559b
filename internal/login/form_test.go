package login

import (
	"errors"
	"testing"

	"github.com/shindakun/campuslogin/internal/models"
)

func TestValidateForm(t *testing.T) {
	tests := []struct {
		name     string
		username string
		password string
		want     models.Credentials
		missing  []string
	}{
		{"valid", "ana", "secret", models.Credentials{Username: "ana", Password: "secret"}, nil},
		{"trims", "  ana\t", " secret \n", models.Credentials{Username: "ana", Password: "secret"}, nil},
		{"inner spaces kept", "a na", "s e", models.Credentials{Username: "a na", Password: "s e"}, nil},
		{"empty username", "", "secret", models.Credentials{}, []string{"username"}},
		{"blank password", "ana", "   ", models.Credentials{}, []string{"password"}},
		{"both blank", " ", "", models.Credentials{}, []string{"username", "password"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidateForm(tt.username, tt.password)

			if tt.missing == nil {
				if err != nil {
					t.Fatalf("ValidateForm() error = %v", err)
				}
				if got != tt.want {
					t.Errorf("ValidateForm() = %+v, want %+v", got, tt.want)
				}
				return
			}

			var vErr *ValidationError
			if !errors.As(err, &vErr) {
				t.Fatalf("ValidateForm() error = %v, want *ValidationError", err)
			}
			if len(vErr.Fields) != len(tt.missing) {
				t.Fatalf("Fields = %v, want %v", vErr.Fields, tt.missing)
			}
			for i := range tt.missing {
				if vErr.Fields[i] != tt.missing[i] {
					t.Errorf("Fields = %v, want %v", vErr.Fields, tt.missing)
				}
			}
		})
	}
}
