package match

import (
	"github.com/edaniels/golog"
)

// statusLogger reports lifecycle signals through the session's logger.
type statusLogger struct {
	logger golog.Logger
}

// NewStatusLogger returns a Status sink that logs each signal.
func NewStatusLogger(logger golog.Logger) Status {
	return &statusLogger{logger: logger}
}

func (s *statusLogger) LoadingStarted() {
	s.logger.Info("loading reference pose")
}

func (s *statusLogger) LoadingFinished() {
	s.logger.Info("reference pose ready")
}

func (s *statusLogger) SourceUnavailable(err error) {
	s.logger.Warnw("video source unavailable", "error", err)
}
