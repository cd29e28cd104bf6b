package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"
)

// baseClient carries the HTTP plumbing shared by every adapter. The
// blocking client has a hard timeout, the stream client relies on
// context cancellation because a reply can stream for minutes.
type baseClient struct {
	provider     string
	baseURL      string
	client       *http.Client
	streamClient *http.Client
}

func newBaseClient(provider, baseURL string) baseClient {
	return baseClient{
		provider: provider,
		baseURL:  baseURL,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
		streamClient: &http.Client{},
	}
}

// doRequest posts JSON and returns the raw response. Network failures
// come back transport-classified, status codes are the caller's to
// check via checkStatus.
func (b *baseClient) doRequest(ctx context.Context, method, path string, body any, headers map[string]string, stream bool) (*http.Response, error) {
	var bodyReader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, transportError(b.provider, err)
		}
		bodyReader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, b.baseURL+path, bodyReader)
	if err != nil {
		return nil, transportError(b.provider, err)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}
	req.Header.Set("Content-Type", "application/json")

	client := b.client
	if stream {
		req.Header.Set("Accept", "text/event-stream")
		client = b.streamClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, transportError(b.provider, err)
	}
	return resp, nil
}

// checkStatus drains and classifies a non-2xx response. It closes the
// body only on failure.
func (b *baseClient) checkStatus(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 32<<10))
	return newStatusError(b.provider, resp.StatusCode, data)
}
