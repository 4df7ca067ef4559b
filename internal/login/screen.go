package login

// Navigator moves the user to the screens around the login form
type Navigator interface {
	GoToRegistration()
	GoToForgotPassword()
	// GoToDashboard leaves the login screen for good
	GoToDashboard()
}

// Kind classifies a notification
type Kind int

const (
	KindValidation Kind = iota
	KindSuccess
	KindError
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation"
	case KindSuccess:
		return "success"
	case KindError:
		return "error"
	default:
		return "unknown"
	}
}

// Duration is how long a notification stays visible
type Duration int

const (
	Short Duration = iota
	Long
)

// Notification is a transient message shown to the user
type Notification struct {
	Kind     Kind
	Message  string
	Duration Duration
}

// Notifier displays notifications
type Notifier interface {
	Notify(n Notification)
}
