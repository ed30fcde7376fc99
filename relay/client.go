// Package relay forwards analysis requests to the forensic backend. It is the
// single owner of outbound traffic: every proxy endpoint and the submission
// flow re-encode their payloads through here.
package relay

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"strings"

	"github.com/veritaslabs/veritas-gateway/tool"
	"github.com/veritaslabs/veritas-gateway/types"
)

const HealthPath = "/health"

// CombinedPath is the aggregation endpoint on the backend.
const CombinedPath = "/analyze/combined"

// UpstreamError is a backend response with a non-success status. The proxy
// contract propagates its status and body text verbatim to the caller.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return e.Body
}

// Client relays requests to the backend at a fixed base address.
type Client struct {
	baseURL string
	http    *http.Client
}

// NewClient creates a relay client. The shared tuned HTTP client is used when
// httpClient is nil.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = tool.GetHttpClient()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

// BaseURL returns the configured backend base address.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Host returns the backend host without port, for reachability probes.
func (c *Client) Host() string {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return ""
	}
	return u.Hostname()
}

// PostMultipart builds a fresh multipart payload containing exactly the given
// fields (plus the file part, re-wrapped with its original filename and
// content type, when present) and posts it to the backend path. The backend's
// status and raw body come back untouched; only transport failures error.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, file *types.StagedFile) (int, []byte, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for name, value := range fields {
		if err := writer.WriteField(name, value); err != nil {
			return 0, nil, fmt.Errorf("failed to encode field %s: %w", name, err)
		}
	}
	if file != nil {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(file.Filename)))
		contentType := file.ContentType
		if contentType == "" {
			contentType = "application/octet-stream"
		}
		header.Set("Content-Type", contentType)
		part, err := writer.CreatePart(header)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := part.Write(file.Data); err != nil {
			return 0, nil, fmt.Errorf("failed to write file part: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return 0, nil, fmt.Errorf("failed to finalize multipart payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create backend request: %w", err)
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	return c.do(req)
}

// Get issues a plain GET to the backend path, for the health passthrough.
func (c *Client) Get(ctx context.Context, path string) (int, []byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create backend request: %w", err)
	}
	return c.do(req)
}

func (c *Client) do(req *http.Request) (int, []byte, error) {
	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			tool.DefaultLogger.Errorf("Failed to close response body: %v", err)
		}
	}()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read backend response: %w", err)
	}
	return resp.StatusCode, body, nil
}

// AnalyzeCategory runs one category analysis for the submission flow. A
// transport failure, an upstream non-success status, or a response body
// carrying an error field all surface as an error; otherwise the parsed
// result comes back.
func (c *Client) AnalyzeCategory(ctx context.Context, category types.Category, shoeID string, file *types.StagedFile) (*types.AnalysisResult, error) {
	status, body, err := c.PostMultipart(ctx, category.BackendPath(), map[string]string{"shoe_id": shoeID}, file)
	if err != nil {
		return nil, err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, &UpstreamError{Status: status, Body: string(body)}
	}
	return types.ParseAnalysisResult(body)
}

// Combine runs the aggregation call with the three category percentages
// taken verbatim from the category results.
func (c *Client) Combine(ctx context.Context, shoeID string, sneakerPercent, boxPercent, videoPercent float64) (*types.AnalysisResult, error) {
	fields := map[string]string{
		"shoe_id":         shoeID,
		"sneaker_percent": formatPercent(sneakerPercent),
		"box_percent":     formatPercent(boxPercent),
		"video_percent":   formatPercent(videoPercent),
	}
	status, body, err := c.PostMultipart(ctx, CombinedPath, fields, nil)
	if err != nil {
		return nil, err
	}
	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return nil, &UpstreamError{Status: status, Body: string(body)}
	}
	return types.ParseAnalysisResult(body)
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}
