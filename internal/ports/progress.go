package ports

import "depsentry/internal/types"

type ProgressPort interface {
	Start(message string)
	Update(message string)
	Stop()
	Alert(id string, alert types.Alert)
	Warn(message string)
}
