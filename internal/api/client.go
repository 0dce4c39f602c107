package api

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

// RequestIDHeader carries the client-generated id of every request
const RequestIDHeader = "X-Request-Id"

// Client issues JSON requests and converts failures into *Error
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a client rooted at baseURL
func NewClient(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Do sends body as JSON to path and decodes a successful response into out.
// out may be nil. Every failure is returned as *Error.
func (c *Client) Do(ctx context.Context, method, path string, body, out any) error {
	url := c.baseURL + path
	requestID := uuid.NewString()
	fail := &Error{Method: method, URL: url, RequestID: requestID}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			fail.Message = "failed to encode request body"
			fail.Cause = err
			return fail
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		fail.Message = "failed to build request"
		fail.Cause = err
		return fail
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		fail.Message = err.Error()
		fail.Cause = err
		return fail
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		fail.Message = "failed to read response body"
		fail.Cause = err
		return fail
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		fail.Status = resp.StatusCode
		fail.StatusText = http.StatusText(resp.StatusCode)
		var data ResponseData
		if json.Unmarshal(raw, &data) == nil && (data.Message != "" || data.Code != "") {
			fail.Data = &data
		}
		return fail
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		fail.Status = resp.StatusCode
		fail.Message = "failed to decode response body"
		fail.Cause = err
		return fail
	}
	return nil
}
