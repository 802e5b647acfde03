package core

import (
	"context"
	"errors"
	"testing"

	"github.com/ZanzyTHEbar/errbuilder-go"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"depsentry/internal/types"
)

type fakeAlertService struct {
	batchSize int
	batches   [][]string
	respond   func(purls []string) ([]types.BatchResult, error)
}

func (f *fakeAlertService) BatchSize() int {
	if f.batchSize <= 0 {
		return 2
	}
	return f.batchSize
}

func (f *fakeAlertService) FetchBatch(_ context.Context, purls []string, _ types.AlertFilter) ([]types.BatchResult, error) {
	f.batches = append(f.batches, purls)
	return f.respond(purls)
}

type recordingProgress struct {
	started []string
	updates []string
	stopped int
	alerts  []string
	warns   []string
}

func (r *recordingProgress) Start(message string)  { r.started = append(r.started, message) }
func (r *recordingProgress) Update(message string) { r.updates = append(r.updates, message) }
func (r *recordingProgress) Stop()                 { r.stopped++ }
func (r *recordingProgress) Alert(id string, alert types.Alert) {
	r.alerts = append(r.alerts, id+":"+alert.Type)
}
func (r *recordingProgress) Warn(message string) { r.warns = append(r.warns, message) }

func okResult(id string, alerts ...types.Alert) types.BatchResult {
	return types.BatchResult{ID: id, Alerts: alerts}
}

func TestCollectMergesBatches(t *testing.T) {
	service := &fakeAlertService{
		batchSize: 2,
		respond: func(purls []string) ([]types.BatchResult, error) {
			var results []types.BatchResult
			for _, purl := range purls {
				results = append(results, okResult(purl, types.Alert{Type: "malware", Action: types.PolicyActionError}))
			}
			return results, nil
		},
	}
	progress := &recordingProgress{}
	collector := NewCollector(service, progress, types.AlertFilter{})

	alerts, err := collector.Collect(context.Background(), []string{"a@1", "b@2", "c@3"})
	require.NoError(t, err)
	require.Len(t, alerts, 3)
	require.Len(t, service.batches, 2, "three ids at batch size two should take two round-trips")
	if diff := cmp.Diff([]string{"a@1", "b@2"}, service.batches[0]); diff != "" {
		t.Fatalf("unexpected first batch (-want +got):\n%s", diff)
	}
	require.Equal(t, 3, len(progress.updates))
	require.Equal(t, 1, progress.stopped)
}

func TestCollectSkipsPerItemFailures(t *testing.T) {
	service := &fakeAlertService{
		batchSize: 10,
		respond: func(purls []string) ([]types.BatchResult, error) {
			return []types.BatchResult{
				okResult("a@1", types.Alert{Type: "cve", Action: types.PolicyActionWarn}),
				{ID: "b@2", Err: errors.New("lookup failed")},
				okResult("c@3"),
			}, nil
		},
	}
	collector := NewCollector(service, &recordingProgress{}, types.AlertFilter{})

	alerts, err := collector.Collect(context.Background(), []string{"a@1", "b@2", "c@3"})
	require.NoError(t, err)
	require.Contains(t, alerts, "a@1")
	require.NotContains(t, alerts, "b@2")
	require.NotContains(t, alerts, "c@3", "successful lookups with zero alerts stay out of the map")
}

func TestCollectTotalFailureIsUnavailable(t *testing.T) {
	service := &fakeAlertService{
		respond: func([]string) ([]types.BatchResult, error) {
			return nil, errors.New("connection refused")
		},
	}
	collector := NewCollector(service, &recordingProgress{}, types.AlertFilter{})

	_, err := collector.Collect(context.Background(), []string{"a@1"})
	require.Error(t, err)
	require.Equal(t, errbuilder.CodeUnavailable, errbuilder.CodeOf(err))
}

func TestCollectForcedExitPropagatesUnchanged(t *testing.T) {
	service := &fakeAlertService{
		respond: func([]string) ([]types.BatchResult, error) {
			return nil, types.ErrForcedExit
		},
	}
	collector := NewCollector(service, &recordingProgress{}, types.AlertFilter{})

	_, err := collector.Collect(context.Background(), []string{"a@1"})
	require.ErrorIs(t, err, types.ErrForcedExit)
}

func TestCollectEmptyInputNeverContactsService(t *testing.T) {
	service := &fakeAlertService{
		respond: func([]string) ([]types.BatchResult, error) {
			t.Fatal("service must not be contacted for an empty change set")
			return nil, nil
		},
	}
	collector := NewCollector(service, &recordingProgress{}, types.AlertFilter{})

	alerts, err := collector.Collect(context.Background(), nil)
	require.NoError(t, err)
	require.Empty(t, alerts)
	require.Empty(t, service.batches)
}
