// Package dispatcher implements the supervisor's HTTP client to the central
// work-unit dispatcher: obtaining new assigned processes to fill free slots,
// and reporting finished processes' outcomes.
package dispatcher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	// ResultSuccess is the FinishReport result for a zero exit code.
	ResultSuccess = "success"
	// ResultError is the FinishReport result for a non-zero exit code.
	ResultError = "error"

	connectTimeout = 10 * time.Second
	requestTimeout = 15 * time.Second
)

// Mode enumerates the AssignedProcess execution mode.
type Mode string

const (
	ModeRegular Mode = "Regular"
	ModeSandbox Mode = "Sandbox"
)

// AssignedProcess is the dispatcher's reply to an obtain-process request.
// Only ID is semantically required by the supervisor core; the rest is
// passed through to logs.
type AssignedProcess struct {
	ID           string `json:"id"`
	SourceID     uint32 `json:"source_id"`
	State        string `json:"state"`
	Mode         Mode   `json:"mode"`
	CreatedAt    string `json:"created_at"`
	SupervisorID string `json:"supervisor_id"`
}

// FinishReport is the body PATCHed to the report-finish endpoint.
type FinishReport struct {
	ProcessID string `json:"process_id"`
	Result    string `json:"result"`
}

// ResultFor returns ResultSuccess iff exitCode == 0, else ResultError.
func ResultFor(exitCode int) string {
	if exitCode == 0 {
		return ResultSuccess
	}
	return ResultError
}

// Client talks HTTP to the dispatcher.
type Client struct {
	httpClient             *http.Client
	obtainProcessURL       string
	reportProcessFinishURL string
	supervisorID           string
}

// NewClient builds a Client. obtainURLTemplate and reportURLTemplate carry
// the literal substring "{supervisor_id}" / "{process_id}" to substitute.
func NewClient(obtainURLTemplate, reportURLTemplate, supervisorID string) *Client {
	dialer := &net.Dialer{Timeout: connectTimeout}
	return &Client{
		httpClient: &http.Client{
			Timeout: requestTimeout,
			Transport: &http.Transport{
				DialContext: dialer.DialContext,
			},
		},
		obtainProcessURL:       obtainURLTemplate,
		reportProcessFinishURL: reportURLTemplate,
		supervisorID:           supervisorID,
	}
}

// ObtainNewProcess performs GET against the templated obtain-process URL and
// parses the JSON body into an AssignedProcess.
func (c *Client) ObtainNewProcess() (*AssignedProcess, error) {
	url := strings.ReplaceAll(c.obtainProcessURL, "{supervisor_id}", c.supervisorID)

	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("dispatcher: obtain-process request build failed: %w", err)
	}
	req.Header.Set("X-Request-Id", uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dispatcher: obtain-process request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("dispatcher: obtain-process read body failed: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("dispatcher: obtain-process bad status %d: %s", resp.StatusCode, string(body))
	}

	var proc AssignedProcess
	if err := json.Unmarshal(body, &proc); err != nil {
		return nil, fmt.Errorf("dispatcher: obtain-process parse failed: %w", err)
	}
	return &proc, nil
}

// ReportProcessFinish PATCHes the templated report-finish URL with report.
func (c *Client) ReportProcessFinish(report FinishReport) error {
	url := strings.ReplaceAll(c.reportProcessFinishURL, "{process_id}", report.ProcessID)

	body, err := json.Marshal(report)
	if err != nil {
		return fmt.Errorf("dispatcher: report-finish marshal failed: %w", err)
	}

	req, err := http.NewRequest(http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("dispatcher: report-finish request build failed: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("dispatcher: report-finish request failed: %w", err)
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("dispatcher: report-finish bad status %d", resp.StatusCode)
	}
	return nil
}
