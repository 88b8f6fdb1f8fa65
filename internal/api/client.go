package api

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

const maxResponseBodySize = 1 << 20 // 1MB

// connection pooling limits to prevent resource exhaustion during large
// resource-upload bursts
const (
	defaultMaxIdleConns        = 100
	defaultMaxIdleConnsPerHost = 10
	defaultMaxConnsPerHost     = 10
	defaultIdleConnTimeout     = 60 * time.Second
)

const contentTypeJSONAPI = "application/vnd.api+json"

// APIError is a non-2xx response from the Snapgate API.
//
// Detail carries the first entry of the JSON:API errors array when the
// server provided one, and RequestID the client-generated request ID so
// failures can be correlated server-side.
type APIError struct {
	// Status is the HTTP status code of the response.
	Status int

	// RequestID is the X-Request-Id sent with the failed request.
	RequestID string

	// Detail is the server-provided error detail, if any.
	Detail string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("api: %d %s: %s (request %s)", e.Status, http.StatusText(e.Status), e.Detail, e.RequestID)
	}
	return fmt.Sprintf("api: %d %s (request %s)", e.Status, http.StatusText(e.Status), e.RequestID)
}

// Client is the HTTP client for the Snapgate REST API.
//
// Client owns header assembly and the JSON:API envelope; callers work
// with plain structs. Timeouts are applied per-request via context, not
// as a global client timeout, and response bodies are limited to 1MB.
type Client struct {
	baseURL    string
	token      string
	timeout    time.Duration
	userAgent  string
	logger     *slog.Logger
	httpClient *http.Client
}

// NewClient creates an API [Client] for the given base URL and token.
//
// The underlying transport is configured with connection pooling limits
// suitable for bursts of concurrent resource uploads. The timeout applies
// per request.
func NewClient(baseURL, token string, timeout time.Duration, userAgent string, logger *slog.Logger) *Client {
	return &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		timeout:   timeout,
		userAgent: userAgent,
		logger:    logger,
		httpClient: &http.Client{
			// no default timeout - per-request timeouts via context
			Transport: &http.Transport{
				MaxIdleConns:        defaultMaxIdleConns,
				MaxIdleConnsPerHost: defaultMaxIdleConnsPerHost,
				MaxConnsPerHost:     defaultMaxConnsPerHost,
				IdleConnTimeout:     defaultIdleConnTimeout,
			},
		},
	}
}

// CreateBuild creates a new build and returns its server representation.
func (c *Client) CreateBuild(ctx context.Context, attrs BuildAttributes) (Build, error) {
	buildAttrs := map[string]any{}
	if attrs.Branch != "" {
		buildAttrs["branch"] = attrs.Branch
	}
	if attrs.CommitSHA != "" {
		buildAttrs["commit-sha"] = attrs.CommitSHA
	}
	if attrs.PullRequestNumber != 0 {
		buildAttrs["pull-request-number"] = attrs.PullRequestNumber
	}

	req := &document{Data: &resourceObject{
		Type:       "builds",
		Attributes: buildAttrs,
	}}
	resp, err := c.do(ctx, http.MethodPost, "/builds", req)
	if err != nil {
		return Build{}, err
	}
	return buildFromDocument(resp)
}

// GetBuild fetches the current snapshot of a build's state.
func (c *Client) GetBuild(ctx context.Context, buildID string) (Build, error) {
	resp, err := c.do(ctx, http.MethodGet, "/builds/"+buildID, nil)
	if err != nil {
		return Build{}, err
	}
	return buildFromDocument(resp)
}

// FinalizeBuild marks a build as complete on the server, allowing its
// asynchronous processing to begin.
func (c *Client) FinalizeBuild(ctx context.Context, buildID string) error {
	_, err := c.do(ctx, http.MethodPost, "/builds/"+buildID+"/finalize", nil)
	return err
}

// CreateSnapshot registers a named snapshot within a build, referencing
// previously uploaded resources by digest.
func (c *Client) CreateSnapshot(ctx context.Context, buildID string, attrs SnapshotAttributes, resources []ResourceRef) (Snapshot, error) {
	snapAttrs := map[string]any{"name": attrs.Name}
	if len(attrs.Widths) > 0 {
		snapAttrs["widths"] = attrs.Widths
	}
	if attrs.MinHeight > 0 {
		snapAttrs["minimum-height"] = attrs.MinHeight
	}

	// resource references travel with their attributes inside the
	// relationship data, per the server contract
	type refObject struct {
		identifier
		Attributes map[string]any `json:"attributes"`
	}
	refs := make([]refObject, len(resources))
	for i, r := range resources {
		refs[i] = refObject{
			identifier: identifier{Type: "resources", ID: r.Digest},
			Attributes: map[string]any{
				"resource-url": r.URL,
				"mimetype":     r.Mimetype,
				"is-root":      r.Root,
			},
		}
	}
	relData, err := json.Marshal(refs)
	if err != nil {
		return Snapshot{}, fmt.Errorf("api: encoding resource identifiers: %w", err)
	}

	req := &document{Data: &resourceObject{
		Type:       "snapshots",
		Attributes: snapAttrs,
		Relationships: map[string]relationship{
			"resources": {Data: relData},
		},
	}}
	resp, err := c.do(ctx, http.MethodPost, "/builds/"+buildID+"/snapshots", req)
	if err != nil {
		return Snapshot{}, err
	}
	return snapshotFromDocument(resp)
}

// UploadResource uploads the content of a single resource, identified by
// its SHA-256 digest. Content travels base64-encoded in the JSON:API
// attributes, matching the server contract.
func (c *Client) UploadResource(ctx context.Context, buildID, digest string, content []byte) error {
	req := &document{Data: &resourceObject{
		Type: "resources",
		ID:   digest,
		Attributes: map[string]any{
			"base64-content": base64.StdEncoding.EncodeToString(content),
		},
	}}
	_, err := c.do(ctx, http.MethodPost, "/builds/"+buildID+"/resources", req)
	return err
}

// do performs a single JSON:API request and decodes the response envelope.
//
// Non-2xx responses are returned as *APIError with any server-provided
// detail. A 204 or empty body yields a nil document.
func (c *Client) do(ctx context.Context, method, path string, body *document) (*document, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: encoding request: %w", err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("api: creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Authorization", "Token token="+c.token)
	req.Header.Set("Accept", contentTypeJSONAPI)
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSONAPI)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("api: %s %s: %w", method, path, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBodySize))
	if err != nil {
		return nil, fmt.Errorf("api: reading response: %w", err)
	}

	c.logger.Debug("api request completed",
		"method", method,
		"path", path,
		"status", resp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
		"request_id", requestID,
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Status: resp.StatusCode, RequestID: requestID}
		var errDoc document
		if json.Unmarshal(raw, &errDoc) == nil && len(errDoc.Errors) > 0 {
			apiErr.Detail = errDoc.Errors[0].Detail
			if apiErr.Detail == "" {
				apiErr.Detail = errDoc.Errors[0].Title
			}
		}
		return nil, apiErr
	}

	if len(raw) == 0 {
		return nil, nil
	}
	var doc document
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("api: decoding response: %w", err)
	}
	return &doc, nil
}

// Close releases idle connections in the client's pool.
//
// Safe to call multiple times; the client remains usable afterwards.
func (c *Client) Close() {
	if c == nil || c.httpClient == nil {
		return
	}
	if transport, ok := c.httpClient.Transport.(*http.Transport); ok {
		transport.CloseIdleConnections()
	}
}
