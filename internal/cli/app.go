package cli

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"io"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"

	"github.com/shindakun/campuslogin/internal/api"
	"github.com/shindakun/campuslogin/internal/auth"
	"github.com/shindakun/campuslogin/internal/config"
	"github.com/shindakun/campuslogin/internal/login"
	"github.com/shindakun/campuslogin/internal/storage"
	"github.com/shindakun/campuslogin/internal/version"
)

// maxInteractiveAttempts bounds how often an interactive login re-prompts
const maxInteractiveAttempts = 3

// SecretReader reads a password without echoing it
type SecretReader func() (string, error)

// App is the campuslogin command line front-end
type App struct {
	Config *config.Config
	Logger zerolog.Logger

	In     io.Reader
	Out    io.Writer
	ErrOut io.Writer

	// ReadSecret is used for the password prompt when set; otherwise the
	// password is read as a plain line from In
	ReadSecret SecretReader

	// APIOptions are passed to api.NewClient
	APIOptions []api.Option

	reader *bufio.Reader
}

// Usage prints the command summary
func (a *App) Usage() {
	fmt.Fprint(a.ErrOut, `Usage: campuslogin [global flags] <command> [flags]

Commands:
  login     log in and store the session (default)
  logout    revoke the session on the server and forget it locally
  whoami    show the stored session (-remote asks the server)
  register  show where to create an account
  forgot    show where to reset a password
  version   print version information
`)
}

// Run executes one command and returns the process exit code
func (a *App) Run(ctx context.Context, args []string) int {
	cmd := "login"
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd, args = args[0], args[1:]
	}

	var err error
	switch cmd {
	case "login":
		err = a.runLogin(ctx, args)
	case "logout":
		err = a.runLogout(ctx, args)
	case "whoami":
		err = a.runWhoami(ctx, args)
	case "register":
		a.controller(nil, nil).GoToRegistration()
	case "forgot":
		a.controller(nil, nil).GoToForgotPassword()
	case "version":
		fmt.Fprintln(a.Out, "campuslogin", version.GetFullVersion())
	case "help":
		a.Usage()
	default:
		fmt.Fprintf(a.ErrOut, "unknown command %q\n", cmd)
		a.Usage()
		return 2
	}

	switch {
	case err == nil:
		return 0
	case errors.Is(err, flag.ErrHelp):
		return 2
	case errors.Is(err, errReported):
		return 1
	default:
		fmt.Fprintln(a.ErrOut, "Error:", err)
		return 1
	}
}

// errReported marks failures the user has already been told about
var errReported = errors.New("reported")

func (a *App) runLogin(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("login", flag.ContinueOnError)
	fs.SetOutput(a.ErrOut)
	username := fs.String("username", "", "account username (prompted when empty)")
	password := fs.String("password", "", "account password (prompted when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, sessions, err := a.openSessions()
	if err != nil {
		return err
	}
	defer db.Close()

	client := api.NewClient(a.Config, a.Logger, a.APIOptions...)
	ctrl := a.controller(client, sessions)

	interactive := *username == "" || *password == ""
	attempts := 1
	if interactive {
		attempts = maxInteractiveAttempts
	}

	for i := 0; i < attempts; i++ {
		u, p := *username, *password
		if u == "" {
			if u, err = a.prompt("Username: "); err != nil {
				return err
			}
		}
		if p == "" {
			if p, err = a.promptSecret("Password: "); err != nil {
				return err
			}
		}

		done, err := ctrl.Submit(ctx, u, p)
		var verr *login.ValidationError
		if errors.As(err, &verr) {
			continue
		}
		if err != nil {
			return err
		}

		if outcome := <-done; outcome.State == login.StateSessionEstablished {
			return nil
		}
	}

	return errReported
}

func (a *App) runLogout(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("logout", flag.ContinueOnError)
	fs.SetOutput(a.ErrOut)
	localOnly := fs.Bool("local", false, "forget the session without contacting the server")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, sessions, err := a.openSessions()
	if err != nil {
		return err
	}
	defer db.Close()

	rec, err := sessions.GetSession(ctx)
	if errors.Is(err, auth.ErrNoSession) {
		fmt.Fprintln(a.Out, "Not logged in.")
		return nil
	}
	if err != nil {
		return err
	}

	if !*localOnly {
		client := api.NewClient(a.Config, a.Logger, a.APIOptions...)
		if err := client.Logout(ctx, rec.Token); err != nil {
			// The local session is cleared regardless
			a.Logger.Warn().Err(err).Msg("server logout failed")
			fmt.Fprintln(a.ErrOut, "Server did not confirm logout; forgetting the session locally.")
		}
	}

	if err := sessions.ClearSession(ctx); err != nil {
		return err
	}
	fmt.Fprintln(a.Out, "Logged out.")
	return nil
}

func (a *App) runWhoami(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("whoami", flag.ContinueOnError)
	fs.SetOutput(a.ErrOut)
	remote := fs.Bool("remote", false, "ask the server who the stored token belongs to")
	if err := fs.Parse(args); err != nil {
		return err
	}

	db, sessions, err := a.openSessions()
	if err != nil {
		return err
	}
	defer db.Close()

	rec, err := sessions.GetSession(ctx)
	if errors.Is(err, auth.ErrNoSession) {
		fmt.Fprintln(a.Out, "Not logged in.")
		return errReported
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(a.Out, "%s (@%s) <%s>, user #%d\n", rec.DisplayName(), rec.Username, rec.Email, rec.UserID)
	if !rec.SavedAt.IsZero() {
		fmt.Fprintf(a.Out, "Logged in %s\n", humanize.Time(rec.SavedAt))
	}

	if !*remote {
		return nil
	}

	client := api.NewClient(a.Config, a.Logger, a.APIOptions...)
	user, err := client.CurrentUser(ctx, rec.Token)
	if err != nil {
		var httpErr *api.HTTPError
		if errors.As(err, &httpErr) {
			fmt.Fprintln(a.ErrOut, "Server:", login.ErrorMessage(httpErr.Body))
			return errReported
		}
		return err
	}
	fmt.Fprintf(a.Out, "Server: %s (@%s) <%s>, user #%d\n", user.Name, user.Username, user.Email, user.ID)
	return nil
}

func (a *App) controller(issuer login.Issuer, sessions *auth.SessionManager) *login.Controller {
	var store login.SessionStore
	var reader sessionReader
	if sessions != nil {
		store, reader = sessions, sessions
	}
	term := NewTerminal(a.Out, a.ErrOut, a.Config.API, reader)
	return login.NewController(issuer, store, term, term, a.Logger)
}

func (a *App) openSessions() (*sql.DB, *auth.SessionManager, error) {
	db, err := storage.InitDB(a.Config.Session.DBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open session store: %w", err)
	}
	prefs := storage.NewPrefs(db, a.Config.Session.Namespace)
	return db, auth.NewSessionManager(prefs), nil
}

func (a *App) prompt(label string) (string, error) {
	fmt.Fprint(a.Out, label)
	if a.reader == nil {
		a.reader = bufio.NewReader(a.In)
	}
	line, err := a.reader.ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("failed to read input: %w", err)
	}
	return strings.TrimRight(line, "\r\n"), nil
}

func (a *App) promptSecret(label string) (string, error) {
	if a.ReadSecret == nil {
		return a.prompt(label)
	}
	fmt.Fprint(a.Out, label)
	secret, err := a.ReadSecret()
	fmt.Fprintln(a.Out)
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return secret, nil
}
