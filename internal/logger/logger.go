package logger

import (
	"fmt"
	"io"
	"os"

	"github.com/op/go-logging"
)

const format = `%{time:2006-01-02 15:04:05} %{level:.5s}     %{message}`

// Init receives the log level as a string (DEBUG, INFO, WARNING, ERROR...)
// and sends every ybtop logger to w at that level.
func Init(logLevel string, w io.Writer) error {
	baseBackend := logging.NewLogBackend(w, "", 0)
	backendFormatter := logging.NewBackendFormatter(baseBackend, logging.MustStringFormatter(format))

	backendLeveled := logging.AddModuleLevel(backendFormatter)
	logLevelCode, err := logging.LogLevel(logLevel)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", logLevel, err)
	}
	backendLeveled.SetLevel(logLevelCode, "")

	logging.SetBackend(backendLeveled)
	return nil
}

// Output opens the destination for log lines. An empty path means stderr,
// unless the terminal is owned by the TUI, in which case logs are dropped.
func Output(path string, tui bool) (io.Writer, func() error, error) {
	if path == "" {
		if tui {
			return io.Discard, func() error { return nil }, nil
		}
		return os.Stderr, func() error { return nil }, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("could not open log file: %w", err)
	}
	return f, f.Close, nil
}
