package genx

import (
	"errors"
	"fmt"
)

// Status is the way a generation ended. StatusOK marks an ordinary chunk.
type Status int

const (
	StatusOK Status = iota
	StatusDone
	StatusTruncated
	StatusBlocked
	StatusError
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusDone:
		return "done"
	case StatusTruncated:
		return "truncated"
	case StatusBlocked:
		return "blocked"
	case StatusError:
		return "error"
	}
	return fmt.Sprintf("status(%d)", int(s))
}

// ErrDone is matched by the State of a generation that finished normally.
var ErrDone = errors.New("genx: done")

var errTruncated = errors.New("genx: generate truncated")

// State is the terminal error returned by Stream.Next once the model has
// finished. It carries the final usage and the finish reason.
type State struct {
	status  Status
	usage   Usage
	refusal string
	err     error
}

// Done is the State of a generation that stopped on its own.
func Done(usage Usage) *State {
	return &State{status: StatusDone, usage: usage, err: ErrDone}
}

// Truncated is the State of a generation cut off by the output token limit.
func Truncated(usage Usage) *State {
	return &State{status: StatusTruncated, usage: usage, err: errTruncated}
}

// Blocked is the State of a generation stopped by a safety filter.
func Blocked(usage Usage, refusal string) *State {
	return &State{
		status:  StatusBlocked,
		usage:   usage,
		refusal: refusal,
		err:     fmt.Errorf("genx: generate blocked: %s", refusal),
	}
}

// Error is the State of a generation that ended for any other reason.
func Error(usage Usage, err error) *State {
	return &State{status: StatusError, usage: usage, err: fmt.Errorf("genx: generate error: %w", err)}
}

// stateOf converts a terminal stream event to its State.
func stateOf(evt *StreamEvent) error {
	switch evt.Status {
	case StatusDone:
		return Done(evt.Usage)
	case StatusTruncated:
		return Truncated(evt.Usage)
	case StatusBlocked:
		return Blocked(evt.Usage, evt.Refusal)
	case StatusError:
		return Error(evt.Usage, evt.Error)
	}
	return fmt.Errorf("genx: unexpected stream status: %v", evt.Status)
}

func (s *State) Status() Status { return s.status }

func (s *State) Usage() Usage { return s.usage }

// Refusal is the reason given by the model for a blocked generation.
func (s *State) Refusal() string { return s.refusal }

// Normal reports whether the model produced its output without failing,
// possibly cut short by the token limit.
func (s *State) Normal() bool {
	return s.status == StatusDone || s.status == StatusTruncated
}

func (s *State) Unwrap() error { return s.err }

func (s *State) Error() string {
	if s.status == StatusDone {
		return "genx: generate done"
	}
	return s.err.Error()
}
