package apiclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout matches the dashboard's long running report queries.
const DefaultTimeout = 200 * time.Second

// StatusError is returned for any non-2xx API response.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("api request failed: %d %s", e.StatusCode, e.Body)
}

// Client is a typed client for the time-series API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

func NewClient(baseURL string, binder *Binder) *Client {
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: &http.Client{Transport: binder, Timeout: DefaultTimeout},
	}
}

type TestResponse struct {
	OK      bool   `json:"ok"`
	Scope   string `json:"scope"`
	Message string `json:"message"`
	Time    string `json:"time"`
}

type ReportLatest struct {
	GeneratedAt string         `json:"generated_at"`
	Devices     []ReportDevice `json:"devices"`
}

type ReportDevice struct {
	Device      string             `json:"device"`
	Serial      string             `json:"serial"`
	DataSources []ReportDataSource `json:"datasources"`
}

type ReportDataSource struct {
	Name      string  `json:"name"`
	LastTime  string  `json:"last_time"`
	LastValue float64 `json:"last_value"`
}

type Device struct {
	DeviceID    string       `json:"device_id"`
	DeviceName  string       `json:"device_name"`
	DataSources []DataSource `json:"datasources"`
}

type DataSource struct {
	Name string `json:"name"`
}

type RefreshResult struct {
	OK bool `json:"ok"`
}

// RestrictedTest calls the API's authenticated test endpoint.
func (c *Client) RestrictedTest(ctx context.Context) (TestResponse, error) {
	var out TestResponse
	if err := c.getJSON(ctx, "test", &out); err != nil {
		return TestResponse{}, err
	}
	return out, nil
}

func (c *Client) ReportLatest(ctx context.Context) (ReportLatest, error) {
	var out ReportLatest
	if err := c.getJSON(ctx, "report/latest", &out); err != nil {
		return ReportLatest{}, err
	}
	return out, nil
}

// RefreshDevices asks the API to rebuild its device database.
func (c *Client) RefreshDevices(ctx context.Context) (RefreshResult, error) {
	var out RefreshResult
	if err := c.getJSON(ctx, "refreshdevices", &out); err != nil {
		return RefreshResult{}, err
	}
	return out, nil
}

func (c *Client) ListDevices(ctx context.Context) ([]Device, error) {
	var out []Device
	if err := c.getJSON(ctx, "getdevices", &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) url(path string) string {
	return c.BaseURL + "/" + strings.TrimLeft(path, "/")
}

func (c *Client) getJSON(ctx context.Context, path string, target any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url(path), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	return decodeJSON(resp, target)
}

func decodeJSON(resp *http.Response, target any) error {
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}
	if err := json.Unmarshal(body, target); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
