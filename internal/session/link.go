// Package session holds the channel-linking dialogue as a pure state
// machine. Callers persist the state between updates.
package session

import "strings"

// State of a linking dialogue.
type State string

// Dialogue states.
const (
	StateIdle             State = "idle"
	StateAwaitingPhone    State = "awaiting_phone"
	StateAwaitingPassword State = "awaiting_password"
)

// Action tells the caller what to do after a transition.
type Action int

// Actions.
const (
	// ActionNone means the input is not part of a linking dialogue.
	ActionNone Action = iota
	// ActionAskPhone asks the user for the phone of their web account.
	ActionAskPhone
	// ActionAskPassword asks for the web account password.
	ActionAskPassword
	// ActionAuthenticate checks phone and password and links the channel.
	ActionAuthenticate
	// ActionCancelled confirms that a dialogue was abandoned.
	ActionCancelled
	// ActionNothingToCancel answers a cancel outside a dialogue.
	ActionNothingToCancel
)

// Input is one event fed into the dialogue.
type Input struct {
	Kind InputKind
	Text string
}

// InputKind distinguishes commands from free text.
type InputKind int

// Input kinds.
const (
	InputText InputKind = iota
	InputStart
	InputCancel
)

// Progress is the persisted part of a dialogue.
type Progress struct {
	State State
	Phone string
}

// Advance applies in to p. It never performs I/O. The returned Progress is
// what must be persisted; on ActionAuthenticate it carries the phone to check
// while the password is in.Text, and the dialogue is already back to idle.
func Advance(p Progress, in Input) (Progress, Action) {
	if p.State == "" {
		p.State = StateIdle
	}

	switch in.Kind {
	case InputStart:
		return Progress{State: StateAwaitingPhone}, ActionAskPhone
	case InputCancel:
		if p.State == StateIdle {
			return Progress{State: StateIdle}, ActionNothingToCancel
		}
		return Progress{State: StateIdle}, ActionCancelled
	}

	switch p.State {
	case StateAwaitingPhone:
		phone := NormalizePhone(in.Text)
		if phone == "" {
			return p, ActionAskPhone
		}
		return Progress{State: StateAwaitingPassword, Phone: phone}, ActionAskPassword
	case StateAwaitingPassword:
		return Progress{State: StateIdle, Phone: p.Phone}, ActionAuthenticate
	default:
		return Progress{State: StateIdle}, ActionNone
	}
}

// NormalizePhone strips spaces, dashes and parentheses and returns "" when
// the rest is not a "+"-prefixed or bare digit string of 10 to 15 digits.
func NormalizePhone(s string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(s) {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
			b.WriteRune(r)
		case r == ' ' || r == '-' || r == '(' || r == ')':
		default:
			return ""
		}
	}

	out := b.String()
	digits := strings.TrimPrefix(out, "+")
	if len(digits) < 10 || len(digits) > 15 {
		return ""
	}
	if !strings.HasPrefix(out, "+") {
		out = "+" + out
	}
	return out
}
