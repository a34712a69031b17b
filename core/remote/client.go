package remote

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"kiosk-sync/core/utils"
)

// APIError is the normalized error for any failed remote call, whether the
// failure was transport-level (non-2xx, timeout) or an envelope with
// success:false.
type APIError struct {
	// Message describes the failure.
	Message string `json:"message"`
	// Endpoint is the API path that failed.
	Endpoint string `json:"endpoint"`
	// Status is the HTTP status code, or 0 when the request never completed.
	Status int `json:"status"`
}

func (e *APIError) Error() string {
	if e.Status > 0 {
		return fmt.Sprintf("remote api %s: %s (status %d)", e.Endpoint, e.Message, e.Status)
	}
	return fmt.Sprintf("remote api %s: %s", e.Endpoint, e.Message)
}

// envelope is the wire format of every remote response.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   string          `json:"error"`
}

// Site is a remote production site.
type Site struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location"`
}

// Line is a remote production line. ID is the numeric identifier used to
// scope child lookups; Code is the legacy alphanumeric identifier.
type Line struct {
	ID     int    `json:"id"`
	Code   string `json:"code"`
	Name   string `json:"name"`
	SiteID int    `json:"site_id"`
}

// Machine is a remote station on a line.
type Machine struct {
	ID          int    `json:"id"`
	Code        string `json:"code"`
	Name        string `json:"name"`
	Description string `json:"description"`
	LineID      int    `json:"line_id"`
}

// Document is a remote document reference. MachineCode links the document to
// the machine it belongs to; URL may be empty when the attachment has to be
// resolved through DocumentViewInfo.
type Document struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	URL         string `json:"url"`
	Version     string `json:"version"`
	Category    string `json:"category"`
	MachineCode string `json:"machine_code"`
}

// JobStatus is the state of an async export job.
type JobStatus struct {
	Status      string `json:"status"`
	DownloadURL string `json:"download_url"`
	Error       string `json:"error"`
}

// Client is a GET-only wrapper over the remote MES API.
type Client struct {
	baseURL string
	apiKey  string
	http    *http.Client
}

// NewClient creates a remote API client from configuration.
func NewClient(cfg Config) *Client {
	timeout := cfg.TimeoutSeconds
	if timeout <= 0 {
		timeout = 30
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:  cfg.APIKey,
		http:    &http.Client{Timeout: time.Duration(timeout) * time.Second},
	}
}

// get issues a GET to path with the auth token and params as a query string,
// unwraps the envelope and returns the raw data payload.
func (c *Client) get(ctx context.Context, path string, params url.Values) (json.RawMessage, error) {
	if params == nil {
		params = url.Values{}
	}
	params.Set("auth", c.apiKey)

	endpoint := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"?"+params.Encode(), nil)
	if err != nil {
		return nil, &APIError{Message: err.Error(), Endpoint: path}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &APIError{Message: err.Error(), Endpoint: path}
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Message:  strings.TrimSpace(string(body)),
			Endpoint: path,
			Status:   resp.StatusCode,
		}
	}

	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, &APIError{Message: "invalid response envelope: " + err.Error(), Endpoint: path, Status: resp.StatusCode}
	}
	if !env.Success {
		msg := env.Error
		if msg == "" {
			msg = "remote reported failure"
		}
		return nil, &APIError{Message: msg, Endpoint: path, Status: resp.StatusCode}
	}
	return env.Data, nil
}

// decodeList unmarshals an envelope data payload into a slice, treating an
// absent or null payload as empty.
func decodeList[T any](data json.RawMessage, path string) ([]T, error) {
	if len(data) == 0 || string(data) == "null" {
		return []T{}, nil
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, &APIError{Message: "invalid data payload: " + err.Error(), Endpoint: path}
	}
	if out == nil {
		out = []T{}
	}
	return out, nil
}

// Sites fetches all remote production sites.
func (c *Client) Sites(ctx context.Context) ([]Site, error) {
	data, err := c.get(ctx, "/sites", nil)
	if err != nil {
		return nil, err
	}
	return decodeList[Site](data, "/sites")
}

// Lines fetches remote production lines. A siteID of 0 fetches all lines.
func (c *Client) Lines(ctx context.Context, siteID int) ([]Line, error) {
	params := url.Values{}
	if siteID > 0 {
		params.Set("site", strconv.Itoa(siteID))
	}
	data, err := c.get(ctx, "/lines", params)
	if err != nil {
		return nil, err
	}
	return decodeList[Line](data, "/lines")
}

// Machines fetches the remote machines (stations) of one line.
func (c *Client) Machines(ctx context.Context, lineID int) ([]Machine, error) {
	params := url.Values{}
	params.Set("line", strconv.Itoa(lineID))
	data, err := c.get(ctx, "/machines", params)
	if err != nil {
		return nil, err
	}
	return decodeList[Machine](data, "/machines")
}

// Documents fetches documents of one category for a site. externalID, when
// non-empty, narrows the result to documents of a single machine.
func (c *Client) Documents(ctx context.Context, siteID int, category, externalID string) ([]Document, error) {
	params := url.Values{}
	params.Set("site", strconv.Itoa(siteID))
	params.Set("category", category)
	if externalID != "" {
		params.Set("externalid", externalID)
	}
	data, err := c.get(ctx, "/documents", params)
	if err != nil {
		return nil, err
	}
	return decodeList[Document](data, "/documents")
}

// DocumentViewInfo resolves the attachment URL of one document. An empty
// string is returned when the remote has no attachment for it.
func (c *Client) DocumentViewInfo(ctx context.Context, documentID int) (string, error) {
	params := url.Values{}
	params.Set("document", strconv.Itoa(documentID))
	data, err := c.get(ctx, "/documents/viewinfo", params)
	if err != nil {
		return "", err
	}
	var info struct {
		URL string `json:"url"`
	}
	if len(data) == 0 || string(data) == "null" {
		return "", nil
	}
	if err := json.Unmarshal(data, &info); err != nil {
		return "", &APIError{Message: "invalid viewinfo payload: " + err.Error(), Endpoint: "/documents/viewinfo"}
	}
	return info.URL, nil
}

// EventData fetches arbitrary event records with caller-supplied filters.
func (c *Client) EventData(ctx context.Context, params url.Values) (json.RawMessage, error) {
	return c.get(ctx, "/events", params)
}

// StartExport starts a bulk export job and returns its job id.
func (c *Client) StartExport(ctx context.Context, params url.Values) (string, error) {
	data, err := c.get(ctx, "/exports/start", params)
	if err != nil {
		return "", err
	}
	// Some deployments return jobid as a number, others as a string.
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return "", &APIError{Message: "invalid export payload: " + err.Error(), Endpoint: "/exports/start"}
	}
	jobID := utils.ToString(payload["jobid"])
	if jobID == "" || jobID == "<nil>" {
		return "", &APIError{Message: "export start returned no jobid", Endpoint: "/exports/start"}
	}
	return jobID, nil
}

// AsyncStatus fetches the status of an async export job.
func (c *Client) AsyncStatus(ctx context.Context, jobID string) (JobStatus, error) {
	params := url.Values{}
	params.Set("jobid", jobID)
	data, err := c.get(ctx, "/exports/status", params)
	if err != nil {
		return JobStatus{}, err
	}
	var status JobStatus
	if len(data) > 0 && string(data) != "null" {
		if err := json.Unmarshal(data, &status); err != nil {
			return JobStatus{}, &APIError{Message: "invalid status payload: " + err.Error(), Endpoint: "/exports/status"}
		}
	}
	return status, nil
}
