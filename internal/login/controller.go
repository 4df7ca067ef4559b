package login

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"github.com/shindakun/campuslogin/internal/api"
	"github.com/shindakun/campuslogin/internal/models"
)

// State is the position of the login screen in its lifecycle
type State int

const (
	StateIdle State = iota
	StateSubmitting
	StateSessionEstablished
	StateErrorShown
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateSubmitting:
		return "submitting"
	case StateSessionEstablished:
		return "session_established"
	case StateErrorShown:
		return "error_shown"
	default:
		return "unknown"
	}
}

// Issuer sends the login request and returns the raw success body
type Issuer interface {
	Login(ctx context.Context, creds models.Credentials) ([]byte, error)
}

// SessionStore persists a session record as one atomic write
type SessionStore interface {
	SaveSession(ctx context.Context, record models.SessionRecord) error
}

// Outcome is delivered once per accepted submit, after side effects ran
type Outcome struct {
	State   State
	Message string
	Record  *models.SessionRecord
	Err     error
}

// Controller drives the login screen: validate, request, map, persist, navigate
type Controller struct {
	issuer   Issuer
	store    SessionStore
	nav      Navigator
	notifier Notifier
	logger   zerolog.Logger
	dispatch func(func())

	mu    sync.Mutex
	state State
}

// ControllerOption customises a Controller
type ControllerOption func(*Controller)

// WithDispatcher sets where completion callbacks run (the UI thread).
// By default they run on the request goroutine.
func WithDispatcher(dispatch func(func())) ControllerOption {
	return func(c *Controller) {
		c.dispatch = dispatch
	}
}

// NewController wires a login screen to its collaborators
func NewController(issuer Issuer, store SessionStore, nav Navigator, notifier Notifier, logger zerolog.Logger, opts ...ControllerOption) *Controller {
	c := &Controller{
		issuer:   issuer,
		store:    store,
		nav:      nav,
		notifier: notifier,
		logger:   logger.With().Str("component", "login").Logger(),
		dispatch: func(fn func()) { fn() },
		state:    StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current screen state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// GoToRegistration opens the registration screen
func (c *Controller) GoToRegistration() {
	c.nav.GoToRegistration()
}

// GoToForgotPassword opens the forgot-password screen
func (c *Controller) GoToForgotPassword() {
	c.nav.GoToForgotPassword()
}

// Submit validates the form and, if valid, starts one login request.
// It does not block; the returned channel yields exactly one Outcome.
// A submit while a request is in flight fails with ErrSubmitInProgress.
func (c *Controller) Submit(ctx context.Context, username, password string) (<-chan Outcome, error) {
	c.mu.Lock()
	switch c.state {
	case StateSubmitting:
		c.mu.Unlock()
		return nil, ErrSubmitInProgress
	case StateSessionEstablished:
		c.mu.Unlock()
		return nil, ErrSessionEstablished
	}

	creds, err := ValidateForm(username, password)
	if err != nil {
		c.mu.Unlock()
		c.notifier.Notify(Notification{Kind: KindValidation, Message: MsgRequired, Duration: Short})
		return nil, err
	}

	c.state = StateSubmitting
	c.mu.Unlock()

	done := make(chan Outcome, 1)
	go func() {
		body, err := c.issuer.Login(ctx, creds)
		c.dispatch(func() {
			done <- c.complete(ctx, body, err)
			close(done)
		})
	}()

	return done, nil
}

func (c *Controller) complete(ctx context.Context, body []byte, err error) Outcome {
	if err != nil {
		return c.fail(err)
	}

	record, err := ParseLoginResponse(body)
	if err != nil {
		c.logger.Error().Err(err).Msg("json parsing")
		return c.showError(err, MsgInvalidResponse, Long)
	}

	// The request already succeeded; a caller cancelling now must not
	// leave the screen without a session it was issued.
	if err := c.store.SaveSession(context.WithoutCancel(ctx), record); err != nil {
		perr := &PersistError{Err: err}
		c.logger.Error().Err(err).Msg("failed to persist session")
		return c.showError(perr, MsgPersistFailed, Long)
	}

	c.setState(StateSessionEstablished)
	c.notifier.Notify(Notification{Kind: KindSuccess, Message: MsgLoggedIn, Duration: Short})
	c.nav.GoToDashboard()

	c.logger.Info().Int64("user_id", record.UserID).Msg("logged in")

	return Outcome{State: StateSessionEstablished, Message: MsgLoggedIn, Record: &record}
}

func (c *Controller) fail(err error) Outcome {
	var buildErr *api.RequestBuildError
	if errors.As(err, &buildErr) {
		c.logger.Error().Err(err).Msg("request build error")
		return c.showError(err, MsgBuildFailed, Short)
	}

	var httpErr *api.HTTPError
	if errors.As(err, &httpErr) {
		ev := c.logger.Error()
		if httpErr.HasResponse() {
			ev = ev.Int("status", httpErr.StatusCode).Bytes("body", httpErr.Body)
		} else {
			ev = ev.Err(httpErr.Err)
		}
		ev.Msg("request error")
		return c.showError(err, ErrorMessage(httpErr.Body), Long)
	}

	c.logger.Error().Err(err).Msg("request error")
	return c.showError(err, MsgNoConnection, Long)
}

func (c *Controller) showError(err error, msg string, d Duration) Outcome {
	c.setState(StateErrorShown)
	c.notifier.Notify(Notification{Kind: KindError, Message: msg, Duration: d})
	return Outcome{State: StateErrorShown, Message: msg, Err: err}
}

func (c *Controller) setState(s State) {
	c.mu.Lock()
	c.state = s
	c.mu.Unlock()
}
