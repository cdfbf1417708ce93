package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/go-resty/resty/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-3.5-turbo"
	DefaultTimeout = 20 * time.Second
)

// MaxResponseBytes caps how much of a response body is read into memory.
const MaxResponseBytes = 4 << 20

var defaultHTTPClient = newHTTPClient(logrus.StandardLogger())

func newHTTPClient(log resty.Logger) *resty.Client {
	return resty.New().SetLogger(log).SetResponseBodyLimit(MaxResponseBytes)
}

// Client is a minimal chat completions client. It is safe for concurrent use;
// the only state shared between calls is the HTTP transport.
type Client struct {
	Credentials oauth2.TokenSource
	HTTPClient  *resty.Client
	BaseURL     string
	Model       string
	// Timeout bounds one whole call, from sending the request to parsing the
	// body. Zero means DefaultTimeout.
	Timeout time.Duration
	Log     logrus.FieldLogger
}

func NewClient(creds oauth2.TokenSource) *Client {
	log := logrus.StandardLogger()
	return &Client{
		Credentials: creds,
		HTTPClient:  newHTTPClient(log),
		BaseURL:     DefaultBaseURL,
		Model:       DefaultModel,
		Timeout:     DefaultTimeout,
		Log:         log,
	}
}

// Complete sends prompt as a single user message and returns the content of
// the first choice. It blocks until the answer is parsed or the call fails;
// every failure is an *Error.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	resp, err := c.CompleteResponse(ctx, prompt)
	if err != nil {
		return "", err
	}
	return resp.Choices[0].Message.Content, nil
}

// CompleteResponse is Complete but returns the whole parsed response. On
// success the first choice is guaranteed to carry a message.
func (c *Client) CompleteResponse(ctx context.Context, prompt string) (*ChatCompletionResponse, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req := ChatCompletionRequest{
		Model:    c.model(),
		Messages: []Message{{Role: "user", Content: prompt}},
	}
	bodyBytes, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	key, err := bearer(c.Credentials)
	if err != nil {
		return nil, err
	}

	endpoint := c.endpoint()
	log := c.logger().WithFields(logrus.Fields{"endpoint": endpoint, "model": req.Model})
	log.Debug("sending chat completion request")

	resp, err := c.httpClient().R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetHeader("Authorization", "Bearer "+key).
		SetBody(bodyBytes).
		Post(endpoint)
	if err != nil {
		log.WithError(err).Debug("chat completion request failed")
		return nil, transportError(ctx, err)
	}
	log = log.WithFields(logrus.Fields{"status": resp.StatusCode(), "elapsed": resp.Time()})
	if id := resp.Header().Get("X-Request-Id"); id != "" {
		log = log.WithField("request_id", id)
	}
	log.Debug("received chat completion response")

	respBody := resp.Body()
	if !resp.IsSuccess() {
		return nil, &Error{Kind: KindStatus, StatusCode: resp.StatusCode(), Message: apiMessage(respBody)}
	}
	if !utf8.Valid(respBody) {
		return nil, &Error{Kind: KindDecode, Err: errors.New("response body is not valid UTF-8")}
	}
	var completion ChatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		return nil, &Error{Kind: KindDecode, Err: err}
	}
	if completion.Error != nil && completion.Error.Message != "" {
		return nil, &Error{Kind: KindStatus, StatusCode: resp.StatusCode(), Message: completion.Error.Message}
	}
	if err := checkFirstChoice(&completion); err != nil {
		return nil, err
	}
	return &completion, nil
}

func checkFirstChoice(resp *ChatCompletionResponse) error {
	if len(resp.Choices) == 0 {
		return &Error{Kind: KindEmpty}
	}
	msg := resp.Choices[0].Message
	if msg == nil {
		return &Error{Kind: KindEmpty, Message: "first choice has no message"}
	}
	// Empty content is a valid answer unless the model refused instead.
	if msg.Content == "" && msg.Refusal != nil && strings.TrimSpace(*msg.Refusal) != "" {
		return &Error{Kind: KindRefused, Message: *msg.Refusal}
	}
	return nil
}

// transportError tells a deadline apart from any other transport failure.
func transportError(ctx context.Context, err error) error {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) ||
		(errors.As(err, &netErr) && netErr.Timeout()) {
		return &Error{Kind: KindTimeout, Err: err}
	}
	return &Error{Kind: KindNetwork, Err: err}
}

// apiMessage extracts error.message from a failed response, falling back to
// the start of the raw body.
func apiMessage(body []byte) string {
	var wrapper struct {
		Error *APIError `json:"error"`
	}
	if err := json.Unmarshal(body, &wrapper); err == nil && wrapper.Error != nil && wrapper.Error.Message != "" {
		return wrapper.Error.Message
	}
	s := strings.TrimSpace(string(body))
	if len(s) > 200 {
		s = s[:200] + "..."
	}
	return s
}

func (c *Client) endpoint() string {
	base := c.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	return strings.TrimRight(base, "/") + "/chat/completions"
}

func (c *Client) model() string {
	if m := strings.TrimSpace(c.Model); m != "" {
		return m
	}
	return DefaultModel
}

func (c *Client) httpClient() *resty.Client {
	if c.HTTPClient == nil {
		return defaultHTTPClient
	}
	return c.HTTPClient
}

func (c *Client) logger() logrus.FieldLogger {
	if c.Log == nil {
		return logrus.StandardLogger()
	}
	return c.Log
}
