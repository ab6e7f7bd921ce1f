package service

import (
	"errors"
	"fmt"
	"time"

	"go.uber.org/multierr"
)

// Scope names the unit of work an error belongs to.
type Scope string

const (
	ScopePass    Scope = "pass"
	ScopeSession Scope = "session"
	ScopeChat    Scope = "chat"
	ScopeMessage Scope = "message"
	ScopeNotify  Scope = "notify"
)

// UnitError is a failure of one unit of work inside a pass.
type UnitError struct {
	Scope     Scope
	Session   string
	ChatID    string
	MessageID string
	Err       error
}

func (e *UnitError) Error() string {
	switch {
	case e.MessageID != "":
		return fmt.Sprintf("%s %s/%s/%s: %v", e.Scope, e.Session, e.ChatID, e.MessageID, e.Err)
	case e.ChatID != "":
		return fmt.Sprintf("%s %s/%s: %v", e.Scope, e.Session, e.ChatID, e.Err)
	case e.Session != "":
		return fmt.Sprintf("%s %s: %v", e.Scope, e.Session, e.Err)
	default:
		return fmt.Sprintf("%s: %v", e.Scope, e.Err)
	}
}

func (e *UnitError) Unwrap() error {
	return e.Err
}

// PassReport is the outcome of one reconciliation pass.
type PassReport struct {
	Trigger    string
	StartedAt  time.Time
	FinishedAt time.Time

	// Sessions counts sessions that were live and polled.
	Sessions   int
	Chats      int
	Fetched    int
	Inserted   int
	Duplicates int
	// Skipped counts sessions that were not working and filtered chats.
	Skipped int

	errs error
}

func newPassReport(trigger string) *PassReport {
	return &PassReport{
		Trigger:   trigger,
		StartedAt: time.Now().UTC(),
	}
}

// Record adds a unit failure to the report.
func (r *PassReport) Record(e *UnitError) {
	r.errs = multierr.Append(r.errs, e)
}

func (r *PassReport) finish() {
	r.FinishedAt = time.Now().UTC()
}

// Err returns all recorded unit errors combined, or nil.
func (r *PassReport) Err() error {
	return r.errs
}

// Errors lists the recorded unit errors in the order they happened.
func (r *PassReport) Errors() []*UnitError {
	all := multierr.Errors(r.errs)
	out := make([]*UnitError, 0, len(all))
	for _, err := range all {
		var ue *UnitError
		if errors.As(err, &ue) {
			out = append(out, ue)
		}
	}
	return out
}

// PassErr returns the error that prevented the pass from visiting any
// session, if there was one.
func (r *PassReport) PassErr() error {
	for _, ue := range r.Errors() {
		if ue.Scope == ScopePass {
			return ue
		}
	}
	return nil
}

func (r *PassReport) Duration() time.Duration {
	if r.FinishedAt.IsZero() {
		return 0
	}
	return r.FinishedAt.Sub(r.StartedAt)
}
