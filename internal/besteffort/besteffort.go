// Package besteffort holds the result type of secondary writes (audit, change log,
// error capture). Such writes never fail the operation they accompany: callers get
// an Outcome, not an error, and may log or discard it.
package besteffort

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Outcome is the result of a best-effort write.
type Outcome struct {
	// Channel names the side channel, e.g. "audit".
	Channel string
	// Skipped is set when the write was intentionally not performed.
	Skipped bool
	// Err is the swallowed failure, if any.
	Err error
}

// OK returns a successful outcome.
func OK(channel string) Outcome {
	return Outcome{Channel: channel}
}

// Skip returns an outcome for a write that was not attempted.
func Skip(channel string) Outcome {
	return Outcome{Channel: channel, Skipped: true}
}

// Fail returns a failed outcome carrying err.
func Fail(channel string, err error) Outcome {
	return Outcome{Channel: channel, Err: err}
}

// Failed reports whether the write was attempted and failed.
func (o Outcome) Failed() bool {
	return o.Err != nil
}

// Log writes failed outcomes to the diagnostic log at warn level and returns o.
func (o Outcome) Log() Outcome {
	if o.Err != nil {
		o.event(log.Warn()).Msg("best-effort write failed")
	}

	return o
}

func (o Outcome) event(e *zerolog.Event) *zerolog.Event {
	return e.Err(o.Err).Str("channel", o.Channel)
}
