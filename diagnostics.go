package ogcsim

import (
	"context"
	"log/slog"
)

type WarningKind int

const (
	WarnInvalidTimeStep WarningKind = iota
	WarnNotInitialized
	WarnConstraintSkipped
	WarnConstraintBroken
	WarnEmptyManifold
	WarnImpulseClamped
	WarnSubStepBudget
	WarnInvalidSetting
)

func (k WarningKind) String() string {
	switch k {
	case WarnInvalidTimeStep:
		return "invalid_time_step"
	case WarnNotInitialized:
		return "not_initialized"
	case WarnConstraintSkipped:
		return "constraint_skipped"
	case WarnConstraintBroken:
		return "constraint_broken"
	case WarnEmptyManifold:
		return "empty_manifold"
	case WarnImpulseClamped:
		return "impulse_clamped"
	case WarnSubStepBudget:
		return "sub_step_budget"
	case WarnInvalidSetting:
		return "invalid_setting"
	}
	return "unknown"
}

// StepWarning is a non fatal problem met while stepping. Subject names the
// body pair, constraint or setting concerned, if any.
type StepWarning struct {
	Kind    WarningKind
	Subject string
	Message string
}

// DiagnosticsSink receives the warnings of every step and the lifecycle
// notices of the engine. It is called synchronously from the engine methods.
type DiagnosticsSink interface {
	Warning(w StepWarning)
	Info(msg string, args ...any)
}

type logSink struct {
	logger *slog.Logger
}

// NewLogSink forwards diagnostics to logger, warnings at warn level
func NewLogSink(logger *slog.Logger) DiagnosticsSink {
	return logSink{logger: logger}
}

func (s logSink) Warning(w StepWarning) {
	s.logger.LogAttrs(context.Background(), slog.LevelWarn, w.Message,
		slog.String("kind", w.Kind.String()),
		slog.String("subject", w.Subject))
}

func (s logSink) Info(msg string, args ...any) {
	s.logger.Info(msg, args...)
}

type discardSink struct{}

func (discardSink) Warning(StepWarning)  {}
func (discardSink) Info(string, ...any) {}

// DiscardSink drops every diagnostic
var DiscardSink DiagnosticsSink = discardSink{}
