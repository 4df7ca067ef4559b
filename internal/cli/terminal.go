package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/shindakun/campuslogin/internal/config"
	"github.com/shindakun/campuslogin/internal/login"
	"github.com/shindakun/campuslogin/internal/models"
)

// sessionReader loads the stored session for the dashboard greeting
type sessionReader interface {
	GetSession(ctx context.Context) (*models.SessionRecord, error)
}

// Terminal renders the login screen's notifications and navigation on a
// text console
type Terminal struct {
	out      io.Writer
	errOut   io.Writer
	api      config.APIConfig
	sessions sessionReader
}

// NewTerminal creates a terminal front-end writing to out and errOut
func NewTerminal(out, errOut io.Writer, api config.APIConfig, sessions sessionReader) *Terminal {
	return &Terminal{out: out, errOut: errOut, api: api, sessions: sessions}
}

// Notify prints a notification; errors go to errOut
func (t *Terminal) Notify(n login.Notification) {
	switch n.Kind {
	case login.KindSuccess:
		fmt.Fprintln(t.out, n.Message)
	default:
		fmt.Fprintln(t.errOut, n.Message)
	}
}

// GoToRegistration points the user at the sign-up page
func (t *Terminal) GoToRegistration() {
	t.openLink("Registration", t.api.RegisterURL)
}

// GoToForgotPassword points the user at the password reset page
func (t *Terminal) GoToForgotPassword() {
	t.openLink("Password reset", t.api.ForgotPassword)
}

// GoToDashboard greets the user that just logged in
func (t *Terminal) GoToDashboard() {
	name := "there"
	if t.sessions != nil {
		if rec, err := t.sessions.GetSession(context.Background()); err == nil {
			name = rec.DisplayName()
		}
	}
	fmt.Fprintf(t.out, "Welcome, %s!\n", name)
}

func (t *Terminal) openLink(what, url string) {
	if url == "" {
		fmt.Fprintf(t.errOut, "%s is not available: no URL configured.\n", what)
		return
	}
	fmt.Fprintf(t.out, "%s: %s\n", what, url)
}
