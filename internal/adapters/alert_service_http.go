package adapters

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ZanzyTHEbar/errbuilder-go"

	"depsentry/internal/shared"
	"depsentry/internal/types"
)

// AlertServiceHTTPAdapter talks to the remote alert-lookup service.
// Batches are POSTed as a component list and the response is a stream
// of newline-delimited JSON results, one per component, in order.
type AlertServiceHTTPAdapter struct {
	Endpoint   string
	APIToken   string
	Timeout    time.Duration
	Retries    int
	RetryDelay time.Duration
	Client     *http.Client
}

// alertBatchSize is the maximum component count per lookup request.
// It is a contract of the remote service, not a local tuning knob.
const alertBatchSize = 100

const defaultAlertTimeout = 30 * time.Second
const defaultAlertRetries = 2
const defaultAlertRetryDelay = 200 * time.Millisecond
const maxAlertRetryDelay = 2 * time.Second

func NewAlertServiceHTTPAdapter(endpoint string, apiToken string, timeoutSec int, retries int, retryDelayMs int) AlertServiceHTTPAdapter {
	return AlertServiceHTTPAdapter{
		Endpoint:   strings.TrimRight(endpoint, "/"),
		APIToken:   apiToken,
		Timeout:    normalizeAlertTimeout(timeoutSec),
		Retries:    normalizeAlertRetries(retries),
		RetryDelay: normalizeAlertRetryDelay(retryDelayMs),
	}
}

func (a AlertServiceHTTPAdapter) BatchSize() int {
	return alertBatchSize
}

type batchComponent struct {
	Purl string `json:"purl"`
}

type batchRequest struct {
	Components []batchComponent `json:"components"`
	Filter     batchFilter      `json:"filter"`
}

type batchFilter struct {
	Actions []string `json:"actions,omitempty"`
	Blocked *bool    `json:"blocked,omitempty"`
}

type batchLine struct {
	ID     string          `json:"id"`
	Purl   string          `json:"purl"`
	Alerts []batchAlert    `json:"alerts"`
	Error  *batchLineError `json:"error"`
}

type batchAlert struct {
	Type        string `json:"type"`
	Severity    string `json:"severity"`
	Action      string `json:"action"`
	Blocked     bool   `json:"blocked"`
	Fixable     bool   `json:"fixable"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

type batchLineError struct {
	Message string `json:"message"`
}

func (a AlertServiceHTTPAdapter) FetchBatch(ctx context.Context, purls []string, filter types.AlertFilter) ([]types.BatchResult, error) {
	if strings.TrimSpace(a.Endpoint) == "" {
		return nil, errbuilder.New().
			WithCode(errbuilder.CodeInvalidArgument).
			WithMsg("alert service endpoint is empty")
	}
	if len(purls) == 0 {
		return nil, nil
	}

	payload := batchRequest{
		Filter: batchFilter{Actions: filter.Actions, Blocked: filter.Blocked},
	}
	for _, purl := range purls {
		payload.Components = append(payload.Components, batchComponent{Purl: purl})
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}

	requestURL := a.batchURL(filter)
	var lastErr error
	delay := a.RetryDelay
	for attempt := 0; attempt <= a.Retries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
			delay *= 2
			if delay > maxAlertRetryDelay {
				delay = maxAlertRetryDelay
			}
		}
		results, err := a.doBatch(ctx, requestURL, body, purls)
		if err == nil {
			return results, nil
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, err
		}
		lastErr = err
	}
	return nil, lastErr
}

func (a AlertServiceHTTPAdapter) doBatch(ctx context.Context, requestURL string, body []byte, purls []string) ([]types.BatchResult, error) {
	requestCtx, cancel := context.WithTimeout(ctx, a.Timeout)
	defer cancel()

	request, err := http.NewRequestWithContext(requestCtx, http.MethodPost, requestURL, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	request.Header.Set("Content-Type", "application/json")
	if a.APIToken != "" {
		request.Header.Set("Authorization", "Bearer "+a.APIToken)
	}

	client := a.Client
	if client == nil {
		client = http.DefaultClient
	}
	response, err := client.Do(request)
	if err != nil {
		return nil, err
	}
	defer response.Body.Close()
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return nil, shared.HTTPStatusError(response.StatusCode, requestURL)
	}

	var results []types.BatchResult
	scanner := bufio.NewScanner(response.Body)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	index := 0
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var parsed batchLine
		if err := json.Unmarshal(line, &parsed); err != nil {
			results = append(results, types.BatchResult{
				ID:  lineID(parsed, purls, index),
				Err: fmt.Errorf("malformed batch line: %w", err),
			})
			index++
			continue
		}
		result := types.BatchResult{ID: lineID(parsed, purls, index)}
		if parsed.Error != nil {
			result.Err = errors.New(parsed.Error.Message)
		} else {
			for _, alert := range parsed.Alerts {
				result.Alerts = append(result.Alerts, types.Alert{
					Type:        alert.Type,
					Severity:    alert.Severity,
					Action:      types.PolicyAction(alert.Action),
					Blocked:     alert.Blocked,
					Fixable:     alert.Fixable,
					Title:       alert.Title,
					Description: alert.Description,
					Purl:        parsed.Purl,
				})
			}
		}
		results = append(results, result)
		index++
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return results, nil
}

// batchURL appends the alerts/compact/fixable query mode expected by
// the service.
func (a AlertServiceHTTPAdapter) batchURL(filter types.AlertFilter) string {
	query := url.Values{}
	query.Set("alerts", "true")
	query.Set("compact", "true")
	if filter.Fixable {
		query.Set("fixable", "true")
	}
	return fmt.Sprintf("%s/v0/purl?%s", a.Endpoint, query.Encode())
}

// lineID prefers the service-assigned id, falling back to positional
// pairing with the request batch.
func lineID(parsed batchLine, purls []string, index int) string {
	if parsed.ID != "" {
		return parsed.ID
	}
	if parsed.Purl != "" {
		return parsed.Purl
	}
	if index < len(purls) {
		return purls[index]
	}
	return fmt.Sprintf("item-%d", index)
}

func normalizeAlertTimeout(timeoutSec int) time.Duration {
	if timeoutSec <= 0 {
		return defaultAlertTimeout
	}
	return time.Duration(timeoutSec) * time.Second
}

func normalizeAlertRetries(retries int) int {
	if retries < 0 {
		return defaultAlertRetries
	}
	return retries
}

func normalizeAlertRetryDelay(retryDelayMs int) time.Duration {
	if retryDelayMs <= 0 {
		return defaultAlertRetryDelay
	}
	return time.Duration(retryDelayMs) * time.Millisecond
}
