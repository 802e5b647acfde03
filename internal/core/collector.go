package core

import (
	"context"
	"errors"
	"fmt"

	assert "github.com/ZanzyTHEbar/assert-lib"
	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/rs/zerolog/log"

	"depsentry/internal/ports"
	"depsentry/internal/types"
)

// Collector streams deduplicated package identifiers to the remote
// alert-lookup service in batches and accumulates the results. The
// batch sequence is intentionally serialized: results must be merged
// deterministically before any policy decision, and the upstream
// service applies its own internal rate limiting.
type Collector struct {
	Service  ports.AlertServicePort
	Progress ports.ProgressPort
	Filter   types.AlertFilter
}

func NewCollector(service ports.AlertServicePort, progress ports.ProgressPort, filter types.AlertFilter) Collector {
	return Collector{
		Service:  service,
		Progress: progress,
		Filter:   filter,
	}
}

// Collect fetches alerts for every identifier and returns the merged
// map. Per-item failures are logged and excluded; only a total failure
// to reach the service aborts the remaining batch sequence, surfaced
// as a CodeUnavailable error. A forced-exit signal from deeper in the
// stack propagates unchanged.
func (c Collector) Collect(ctx context.Context, ids []string) (types.AlertsByPackageID, error) {
	accumulated := types.AlertsByPackageID{}
	if len(ids) == 0 {
		return accumulated, nil
	}
	if c.Service == nil {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("alert service port is required")
	}
	for _, id := range ids {
		assert.NotEmpty(ctx, id, "alert lookup id must not be empty")
	}

	remaining := len(ids)
	c.progressStart(fmt.Sprintf("Scanning %d packages for security alerts", remaining))
	defer c.progressStop()

	batchSize := c.Service.BatchSize()
	if batchSize <= 0 {
		batchSize = 1
	}
	for start := 0; start < len(ids); start += batchSize {
		end := start + batchSize
		if end > len(ids) {
			end = len(ids)
		}
		results, err := c.Service.FetchBatch(ctx, ids[start:end], c.Filter)
		if err != nil {
			if errors.Is(err, types.ErrForcedExit) {
				return nil, err
			}
			return nil, errbuilder.New().
				WithCode(errbuilder.CodeUnavailable).
				WithMsg("alert lookup service unreachable").
				WithCause(err)
		}
		for _, result := range results {
			remaining--
			c.progressUpdate(fmt.Sprintf("%d packages remaining", remaining))
			if result.Err != nil {
				log.Ctx(ctx).Warn().
					Str("package", result.ID).
					Err(result.Err).
					Msg("alert lookup failed for package; excluded from results")
				continue
			}
			if len(result.Alerts) == 0 {
				continue
			}
			accumulated[result.ID] = append(accumulated[result.ID], result.Alerts...)
		}
	}
	return accumulated, nil
}

func (c Collector) progressStart(message string) {
	if c.Progress != nil {
		c.Progress.Start(message)
	}
}

func (c Collector) progressUpdate(message string) {
	if c.Progress != nil {
		c.Progress.Update(message)
	}
}

func (c Collector) progressStop() {
	if c.Progress != nil {
		c.Progress.Stop()
	}
}
