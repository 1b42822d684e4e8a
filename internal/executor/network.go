package executor

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/pagecheck-labs/pagecheck/pkg/core"
)

// defaultExpectedStatus applies when a case declares no expected result.
const defaultExpectedStatus = http.StatusOK

// NetworkExecutor issues HTTP requests for api and crud level cases and
// compares the response status against the case's expectation.
type NetworkExecutor struct {
	baseURL string
	client  *http.Client
}

// NewNetworkExecutor creates a network executor targeting baseURL.
// Relative endpoints are resolved against it; absolute endpoints are
// used as-is.
func NewNetworkExecutor(baseURL string, timeout time.Duration) *NetworkExecutor {
	return &NetworkExecutor{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
	}
}

// Execute runs the network check for one case. A case without an
// endpoint is skipped: missing configuration is not a defect of the
// system under test. Network failures and status mismatches fail the
// case; the response body is parsed as JSON best-effort.
func (e *NetworkExecutor) Execute(ctx context.Context, tc *core.TestCase) (core.ResultStatus, string, string) {
	if tc.APIEndpoint == "" {
		return core.ResultStatusSkipped, "", "No API endpoint defined"
	}

	method := strings.ToUpper(tc.APIMethod)
	if method == "" {
		method = http.MethodGet
	}

	var body io.Reader
	if tc.TestData != nil && (method == http.MethodPost || method == http.MethodPatch || method == http.MethodPut) {
		data, err := json.Marshal(tc.TestData)
		if err != nil {
			return core.ResultStatusFailed, "", fmt.Sprintf("failed to encode test data: %v", err)
		}
		body = bytes.NewReader(data)
	}

	url := tc.APIEndpoint
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		url = e.baseURL + "/" + strings.TrimLeft(url, "/")
	}

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return core.ResultStatusFailed, "", err.Error()
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := e.client.Do(req)
	if err != nil {
		return core.ResultStatusFailed, "", err.Error()
	}
	defer resp.Body.Close()

	// Best-effort JSON parse: an unparseable body yields data=null, not
	// an error.
	var data any
	raw, err := io.ReadAll(resp.Body)
	if err == nil && len(raw) > 0 {
		if jsonErr := json.Unmarshal(raw, &data); jsonErr != nil {
			data = nil
		}
	}

	actual, _ := json.Marshal(map[string]any{
		"statusCode": resp.StatusCode,
		"data":       data,
	})

	expected := defaultExpectedStatus
	if tc.ExpectedResult != nil && tc.ExpectedResult.StatusCode != 0 {
		expected = tc.ExpectedResult.StatusCode
	}

	if resp.StatusCode != expected {
		return core.ResultStatusFailed, string(actual),
			fmt.Sprintf("Expected status %d, got %d", expected, resp.StatusCode)
	}

	return core.ResultStatusPassed, string(actual), ""
}
