package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/dmitrijs2005/gophtasks/internal/validation"
)

const (
	headerAccept      = "Accept"
	headerContentType = "Content-Type"
	contentTypeJSON   = "application/json"
)

// TokenProvider supplies the bearer token for each request; "" sends none.
type TokenProvider interface {
	Token(ctx context.Context) (string, error)
}

type HTTPClient struct {
	baseURL    string
	tokens     TokenProvider
	httpClient *http.Client
}

func NewHTTPClient(baseURL string, tokens TokenProvider, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL:    strings.TrimRight(baseURL, "/"),
		tokens:     tokens,
		httpClient: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPClient) Get(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodGet, path, nil, out)
}

func (c *HTTPClient) Post(ctx context.Context, path string, body, out any) error {
	return c.doRequest(ctx, http.MethodPost, path, body, out)
}

func (c *HTTPClient) Put(ctx context.Context, path string, body, out any) error {
	return c.doRequest(ctx, http.MethodPut, path, body, out)
}

func (c *HTTPClient) Delete(ctx context.Context, path string, out any) error {
	return c.doRequest(ctx, http.MethodDelete, path, nil, out)
}

func (c *HTTPClient) doRequest(ctx context.Context, method, path string, body, out any) error {
	// path is already escaped; joining it with url.JoinPath would unescape
	// segments such as %2F and clean away dot segments.
	reqURL := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if _, err := url.Parse(reqURL); err != nil {
		return fmt.Errorf("failed to build URL: %w", err)
	}

	var bodyReader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, bodyReader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(headerAccept, contentTypeJSON)
	if body != nil {
		req.Header.Set(headerContentType, contentTypeJSON)
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return fmt.Errorf("failed to read token: %w", err)
		}
		if token != "" {
			req.Header.Set(common.AuthorizationHeaderName, common.BearerPrefix+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &NetworkError{Op: method + " " + path, Err: err}
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return &NetworkError{Op: "read " + path, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return parseError(resp.StatusCode, respBody)
	}

	if out != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("failed to parse response: %w", err)
		}
	}

	return nil
}

// parseError reads the {"message", "errors"} body. Anything else keeps the
// status with an empty message.
func parseError(status int, body []byte) error {
	var payload struct {
		Message string            `json:"message"`
		Errors  validation.Errors `json:"errors"`
	}
	if err := json.Unmarshal(body, &payload); err != nil {
		return &APIError{StatusCode: status}
	}
	return &APIError{StatusCode: status, Message: payload.Message, Errors: payload.Errors}
}
