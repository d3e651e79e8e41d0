package proxysdk

import (
	"strings"

	"github.com/rs/zerolog"
)

// hostLogWriter forwards zerolog output through the host's log capability,
// mapping zerolog levels onto the host's severity scale. Output produced
// before a host is bound is dropped.
type hostLogWriter struct{}

func (hostLogWriter) Write(p []byte) (int, error) {
	return hostLogWriter{}.WriteLevel(zerolog.InfoLevel, p)
}

func (hostLogWriter) WriteLevel(level zerolog.Level, p []byte) (int, error) {
	_ = hostLog(hostLevel(level), strings.TrimRight(string(p), "\n"))
	return len(p), nil
}

func hostLevel(level zerolog.Level) LogLevel {
	switch level {
	case zerolog.TraceLevel:
		return LogTrace
	case zerolog.DebugLevel:
		return LogDebug
	case zerolog.InfoLevel:
		return LogInfo
	case zerolog.WarnLevel:
		return LogWarn
	case zerolog.ErrorLevel:
		return LogError
	default:
		return LogCritical
	}
}

var logger = zerolog.New(hostLogWriter{}).Level(zerolog.InfoLevel)

// SetLogLevel adjusts the SDK's log level filter. Messages below the filter
// are never forwarded to the host.
func SetLogLevel(level zerolog.Level) {
	logger = logger.Level(level)
}

// Logger returns the SDK logger. Plugin code may use it for its own output;
// everything written to it is delivered through the host's log capability.
func Logger() *zerolog.Logger {
	return &logger
}

// logConcern absorbs a collaborator failure: the error is logged under the
// given concern label and processing continues.
func logConcern(concern string, err error) {
	if err != nil {
		logger.Warn().Str("concern", concern).Err(err).Msg("host call failed")
	}
}

// checkConcern absorbs a collaborator failure and reports whether the value
// is usable. The caller abandons the affected operation on false.
func checkConcern[T any](concern string, value T, err error) (T, bool) {
	if err != nil {
		logger.Warn().Str("concern", concern).Err(err).Msg("host call failed")
		return value, false
	}
	return value, true
}
