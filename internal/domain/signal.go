package domain

// SignalKind is the tri-state outcome of one detection poll.
type SignalKind string

const (
	// SignalNoAccount means the user has no linked credential for the
	// action's provider.
	SignalNoAccount SignalKind = "no_account"
	// SignalUnchanged means the poll succeeded and nothing new was observed.
	SignalUnchanged SignalKind = "unchanged"
	// SignalTriggered means a new event was detected.
	SignalTriggered SignalKind = "triggered"
)

// Signal is the outcome of one detection poll. A triggered signal carries the
// opaque payload handed to the bound reaction.
type Signal struct {
	Kind    SignalKind `json:"kind"`
	Payload string     `json:"payload,omitempty"`
}

// NoAccount builds a no-account signal.
func NoAccount() Signal {
	return Signal{Kind: SignalNoAccount}
}

// Unchanged builds an unchanged signal.
func Unchanged() Signal {
	return Signal{Kind: SignalUnchanged}
}

// Triggered builds a triggered signal carrying the payload.
func Triggered(payload string) Signal {
	return Signal{Kind: SignalTriggered, Payload: payload}
}

// Code returns the numeric wire encoding kept for compatibility with
// existing API clients: -1 no account, 0 triggered, 1 unchanged.
func (s Signal) Code() int {
	switch s.Kind {
	case SignalNoAccount:
		return -1
	case SignalTriggered:
		return 0
	default:
		return 1
	}
}
