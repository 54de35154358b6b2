package auth

import "github.com/authshell/authshell/internal/validation"

// Credentials is the sign-in form.
type Credentials struct {
	Email    string
	Password string
}

// SignUpInput is the sign-up form.
type SignUpInput struct {
	Name            string
	MobileNumber    string
	Email           string
	Password        string
	ConfirmPassword string
}

// OutcomeKind is the tri-state result of an attempt.
type OutcomeKind int

const (
	Success OutcomeKind = iota + 1
	Invalid
	Failed
)

func (k OutcomeKind) String() string {
	switch k {
	case Success:
		return "success"
	case Invalid:
		return "invalid"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is what the presentation layer renders after a submit.
//
// Errors is set for Invalid, Message for Failed. StorageErr may accompany a
// Success when the remote call worked but local persistence did not.
type Outcome struct {
	Kind       OutcomeKind
	Errors     validation.Errors
	Message    string
	StorageErr error
}

func invalid(errs validation.Errors) Outcome {
	return Outcome{Kind: Invalid, Errors: errs}
}

func failed(msg string) Outcome {
	return Outcome{Kind: Failed, Message: msg}
}
