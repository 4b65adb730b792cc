package submission

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// Form field names expected by the inference endpoint.
const (
	FieldFile     = "file"
	FieldQuestion = "question"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 8 << 20

// Submitter performs one submission against the inference endpoint.
type Submitter interface {
	Submit(ctx context.Context, file *File, question string) (string, error)
}

// Client posts multipart submissions to a fixed endpoint. It never retries.
type Client struct {
	mu         sync.RWMutex
	endpoint   string
	httpClient *http.Client
	logger     *zap.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient overrides the HTTP client. The default has no timeout.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithClientLogger sets the logger used for request tracing.
func WithClientLogger(l *zap.Logger) ClientOption {
	return func(c *Client) { c.logger = l }
}

// NewClient creates a client for endpoint.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   endpoint,
		httpClient: &http.Client{},
		logger:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = zap.NewNop()
	}
	return c
}

// Endpoint returns the URL submissions are posted to.
func (c *Client) Endpoint() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.endpoint
}

// SetEndpoint changes the target for subsequent submissions. A request
// already in flight keeps its original URL.
func (c *Client) SetEndpoint(endpoint string) {
	c.mu.Lock()
	c.endpoint = endpoint
	c.mu.Unlock()
}

type answerResponse struct {
	Answer *string `json:"answer"`
	Error  string  `json:"error"`
	Detail any     `json:"detail"`
}

// Submit sends file and question as multipart/form-data and returns the
// answer text. Failures are always *Error.
func (c *Client) Submit(ctx context.Context, file *File, question string) (string, error) {
	if file == nil {
		return "", ErrNoFile
	}
	if strings.TrimSpace(question) == "" {
		return "", ErrEmptyQuestion
	}

	src, err := file.Open()
	if err != nil {
		return "", networkError(fmt.Errorf("open %s: %w", file.Name, err))
	}

	endpoint := c.Endpoint()
	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		defer src.Close()
		pw.CloseWithError(writeForm(mw, file, src, question))
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		pr.CloseWithError(err)
		return "", networkError(fmt.Errorf("build request: %w", err))
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("submitting",
		zap.String("endpoint", endpoint),
		zap.String("file", file.Name),
		zap.String("content_type", file.ContentType),
		zap.Int64("size", file.Size),
		zap.Int("question_len", len(question)),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", networkError(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return "", networkError(fmt.Errorf("read response: %w", err))
	}
	if len(body) > maxResponseBytes {
		return "", serverError(resp.StatusCode, fmt.Errorf("response exceeds %d bytes", maxResponseBytes))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", serverError(resp.StatusCode, errors.New(failureMessage(body)))
	}

	var parsed answerResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return "", serverError(resp.StatusCode, fmt.Errorf("malformed response body: %w", err))
	}
	if parsed.Answer == nil {
		return "", serverError(resp.StatusCode, errors.New("response has no answer field"))
	}

	c.logger.Debug("submission answered",
		zap.Int("status", resp.StatusCode),
		zap.Int("answer_len", len(*parsed.Answer)),
	)
	return *parsed.Answer, nil
}

func writeForm(mw *multipart.Writer, file *File, src io.Reader, question string) error {
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", fmt.Sprintf(`form-data; name="%s"; filename="%s"`,
		quoteEscaper.Replace(FieldFile), quoteEscaper.Replace(file.Name)))
	contentType := file.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	header.Set("Content-Type", contentType)

	part, err := mw.CreatePart(header)
	if err != nil {
		return fmt.Errorf("create file part: %w", err)
	}
	if _, err := io.Copy(part, src); err != nil {
		return fmt.Errorf("write file part: %w", err)
	}
	if err := mw.WriteField(FieldQuestion, question); err != nil {
		return fmt.Errorf("write question field: %w", err)
	}
	return mw.Close()
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// failureMessage extracts something readable from an error response.
func failureMessage(body []byte) string {
	var parsed answerResponse
	if err := json.Unmarshal(body, &parsed); err == nil {
		if parsed.Error != "" {
			return parsed.Error
		}
		if parsed.Detail != nil {
			return fmt.Sprint(parsed.Detail)
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "empty response body"
	}
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return text
}
