package adapters

import (
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"depsentry/internal/types"
)

// ProgressLogAdapter reports scan progress and the final alert detail
// through the structured logger.
type ProgressLogAdapter struct {
	Logger zerolog.Logger
}

func NewProgressLogAdapter() ProgressLogAdapter {
	return ProgressLogAdapter{Logger: log.Logger}
}

func (a ProgressLogAdapter) Start(message string) {
	a.Logger.Info().Msg(message)
}

func (a ProgressLogAdapter) Update(message string) {
	a.Logger.Debug().Msg(message)
}

func (a ProgressLogAdapter) Stop() {}

// Alert logs one retained alert in full detail, identifying the
// offending package.
func (a ProgressLogAdapter) Alert(id string, alert types.Alert) {
	a.Logger.Error().
		Str("package", id).
		Str("purl", alert.Purl).
		Str("type", alert.Type).
		Str("severity", alert.Severity).
		Str("action", string(alert.Action)).
		Bool("blocked", alert.Blocked).
		Str("title", alert.Title).
		Str("description", alert.Description).
		Msg("security alert")
}

func (a ProgressLogAdapter) Warn(message string) {
	a.Logger.Warn().Msg(message)
}
