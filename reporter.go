package asynctcp

import (
	"os"

	"github.com/rs/zerolog"
)

// Reporter is the process-wide sink for failures that have no operation
// callback to receive them. Report is fire-and-forget.
type Reporter interface {
	Report(err error)
}

// ReporterFunc adapts a function to the Reporter interface.
type ReporterFunc func(err error)

func (f ReporterFunc) Report(err error) { f(err) }

// NewLogReporter returns a Reporter that logs each failure at error level.
func NewLogReporter(logger zerolog.Logger) Reporter {
	return ReporterFunc(func(err error) {
		logger.Error().Err(err).Msg("asynctcp: background failure")
	})
}

func defaultReporter() Reporter {
	return NewLogReporter(zerolog.New(os.Stderr).With().Timestamp().Logger())
}
