package console

import (
	"errors"
	"fmt"

	"github.com/user/clawconsole/internal/gateway"
)

// Prompter is the blocking operator dialog: a yes/no confirmation and a
// notice that must be acknowledged.
type Prompter interface {
	Confirm(message string) bool
	Alert(message string)
}

// StaticPrompter answers every confirmation with Answer and passes alerts
// to OnAlert when set.
type StaticPrompter struct {
	Answer  bool
	OnAlert func(message string)
}

func (p StaticPrompter) Confirm(string) bool { return p.Answer }

func (p StaticPrompter) Alert(message string) {
	if p.OnAlert != nil {
		p.OnAlert(message)
	}
}

var (
	// ErrValidation matches every client-side guard that blocked a call.
	ErrValidation = errors.New("validation failed")
	// ErrDeclined is returned when the operator answered no to a confirmation.
	ErrDeclined = errors.New("cancelled")
)

type validationError string

func (e validationError) Error() string        { return string(e) }
func (e validationError) Is(target error) bool { return target == ErrValidation }

// invalid alerts message and returns it as a validation error.
func invalid(p Prompter, message string) error {
	p.Alert(message)
	return validationError(message)
}

// failed alerts "prefix: MSG" for a request failure and returns err
// wrapped. Auth failures are returned untouched since the operator is
// already on the way to the login page.
func failed(p Prompter, prefix string, err error) error {
	if gateway.IsAuthRequired(err) {
		return err
	}
	p.Alert(prefix + ": " + err.Error())
	return fmt.Errorf("%s: %w", prefix, err)
}
