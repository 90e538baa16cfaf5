package postboard

import (
	"context"
	"errors"
	"sync"

	goerrors "github.com/goliatone/go-errors"
)

// FormState is the submission state of a Form.
type FormState string

const (
	FormIdle       FormState = "idle"
	FormSubmitting FormState = "submitting"
	FormSucceeded  FormState = "succeeded"
	FormBlocked    FormState = "blocked"
	FormFailed     FormState = "failed"
)

// Outcome is the terminal state of the last completed submission.
type Outcome = FormState

// ErrInvalidFormTransition is returned when a form state change is not allowed.
var ErrInvalidFormTransition = goerrors.New("invalid form state transition", goerrors.CategoryValidation).
	WithTextCode("INVALID_FORM_STATE_TRANSITION").
	WithCode(goerrors.CodeBadRequest)

// Form serializes submissions of a single form. A submit while another is in
// flight is dropped with ErrSubmissionInFlight and the operation is not run.
type Form struct {
	name        string
	transitions map[FormState]map[FormState]struct{}

	mu    sync.Mutex
	state FormState
	last  Outcome
}

// NewForm creates an idle form.
func NewForm(name string) *Form {
	return &Form{
		name:  name,
		state: FormIdle,
		transitions: map[FormState]map[FormState]struct{}{
			FormIdle: {
				FormSubmitting: {},
			},
			FormSubmitting: {
				FormSucceeded: {},
				FormBlocked:   {},
				FormFailed:    {},
			},
			FormSucceeded: {FormIdle: {}},
			FormBlocked:   {FormIdle: {}},
			FormFailed:    {FormIdle: {}},
		},
	}
}

// Name returns the form name.
func (f *Form) Name() string {
	return f.name
}

// State returns the current state.
func (f *Form) State() FormState {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Submitting reports whether a submission is in flight.
func (f *Form) Submitting() bool {
	return f.State() == FormSubmitting
}

// LastOutcome returns the outcome of the last completed submission, empty
// before the first one.
func (f *Form) LastOutcome() Outcome {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.last
}

// Submit runs op unless a submission is already in flight. The outcome is
// derived from the error op returns and the form is idle again when Submit
// returns.
func (f *Form) Submit(ctx context.Context, op func(ctx context.Context) error) (Outcome, error) {
	if err := f.transition(FormIdle, FormSubmitting); err != nil {
		return "", ErrSubmissionInFlight
	}

	outcome := FormFailed
	defer func() {
		f.mu.Lock()
		f.last = outcome
		f.state = FormIdle
		f.mu.Unlock()
	}()

	err := op(ctx)
	outcome = outcomeOf(err)

	if terr := f.transition(FormSubmitting, outcome); terr != nil {
		return outcome, terr
	}
	return outcome, err
}

func (f *Form) transition(from, to FormState) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.state != from || !f.canTransition(from, to) {
		err := ErrInvalidFormTransition.Clone()
		err.WithMetadata(map[string]any{
			"form": f.name,
			"from": f.state,
			"to":   to,
		})
		return err
	}
	f.state = to
	return nil
}

func (f *Form) canTransition(from, to FormState) bool {
	if allowed, ok := f.transitions[from]; ok {
		_, exists := allowed[to]
		return exists
	}
	return false
}

func outcomeOf(err error) Outcome {
	switch {
	case err == nil:
		return FormSucceeded
	case IsBlocked(err), errors.Is(err, ErrDeleteDeclined):
		return FormBlocked
	default:
		return FormFailed
	}
}
