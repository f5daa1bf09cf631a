// Package httpstore implements the service.Store interface over the Board Store REST API.
package httpstore

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/sony/gobreaker"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"

	"kboard/internal/logging"
	"kboard/internal/service"
)

const (
	// APITimeout is the default timeout for a single API call.
	APITimeout = 5 * time.Second

	// RequestIDHeader carries a per-request uuid.
	RequestIDHeader = "X-Request-ID"

	breakerName     = "board-store"
	breakerTrips    = 3
	breakerCooldown = 10 * time.Second

	tracerName = "kboard/internal/backend/httpstore"
)

// Options configures a Client.
type Options struct {
	// BaseURL is the root of the Board Store API, e.g. https://host/api/.
	BaseURL string

	// TokenSource supplies bearer tokens. Nil sends no Authorization header.
	TokenSource oauth2.TokenSource

	// Timeout bounds each call. Zero means APITimeout.
	Timeout time.Duration

	// HTTPClient is the underlying client. Nil means a fresh http.Client.
	HTTPClient *http.Client

	// Logger receives circuit breaker state changes.
	Logger logrus.FieldLogger
}

// Client implements service.Store over HTTP.
type Client struct {
	base    *url.URL
	http    *http.Client
	timeout time.Duration
	breaker *gobreaker.CircuitBreaker
	tracer  trace.Tracer
	log     logrus.FieldLogger
}

// New creates a Board Store client.
func New(ctx context.Context, opts Options) (*Client, error) {
	if strings.TrimSpace(opts.BaseURL) == "" {
		return nil, fmt.Errorf("board store base url not configured")
	}
	base, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("invalid base url: unsupported scheme %q", base.Scheme)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	if opts.TokenSource != nil {
		// oauth2.NewClient builds on the client stored in the context.
		ctx = context.WithValue(ctx, oauth2.HTTPClient, httpClient)
		httpClient = oauth2.NewClient(ctx, opts.TokenSource)
	}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = APITimeout
	}

	var logger logrus.FieldLogger = logging.Discard()
	if opts.Logger != nil {
		logger = opts.Logger
	}

	c := &Client{
		base:    base,
		http:    httpClient,
		timeout: timeout,
		tracer:  otel.Tracer(tracerName),
		log:     logger,
	}
	c.breaker = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: 1,
		Timeout:     breakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= breakerTrips
		},
		IsSuccessful: func(err error) bool {
			return err == nil || isClientError(err)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.WithFields(logrus.Fields{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			}).Warn("circuit breaker state changed")
		},
	})
	return c, nil
}

// FetchBoard returns the whole board.
func (c *Client) FetchBoard(ctx context.Context) (service.Snapshot, error) {
	var snap service.Snapshot
	if err := c.do(ctx, "fetch_board", http.MethodGet, "board", nil, nil, &snap); err != nil {
		return service.Snapshot{}, err
	}
	return snap, nil
}

// InitializeBoard creates an empty board.
func (c *Client) InitializeBoard(ctx context.Context) error {
	return c.do(ctx, "initialize_board", http.MethodPost, "board/initialize", nil, nil, nil)
}

// CreateTask creates a task in the given column.
func (c *Client) CreateTask(ctx context.Context, columnID string, fields service.TaskFields) (service.Task, error) {
	fields.ID = ""
	var task service.Task
	query := url.Values{"columnId": []string{columnID}}
	if err := c.do(ctx, "create_task", http.MethodPost, "tasks", query, fields, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// UpdateTask replaces the fields of a task.
func (c *Client) UpdateTask(ctx context.Context, taskID string, fields service.TaskFields) (service.Task, error) {
	fields.ID = taskID
	var task service.Task
	if err := c.do(ctx, "update_task", http.MethodPut, "tasks/"+url.PathEscape(taskID), nil, fields, &task); err != nil {
		return service.Task{}, err
	}
	return task, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, taskID string) error {
	return c.do(ctx, "delete_task", http.MethodDelete, "tasks/"+url.PathEscape(taskID), nil, nil, nil)
}

type titleBody struct {
	Title string `json:"title"`
}

// CreateColumn creates an empty column.
func (c *Client) CreateColumn(ctx context.Context, title string) (service.Column, error) {
	var col service.Column
	if err := c.do(ctx, "create_column", http.MethodPost, "columns", nil, titleBody{Title: title}, &col); err != nil {
		return service.Column{}, err
	}
	return col, nil
}

// UpdateColumn renames a column.
func (c *Client) UpdateColumn(ctx context.Context, columnID, title string) (service.Column, error) {
	var col service.Column
	if err := c.do(ctx, "update_column", http.MethodPut, "columns/"+url.PathEscape(columnID), nil, titleBody{Title: title}, &col); err != nil {
		return service.Column{}, err
	}
	return col, nil
}

// DeleteColumn deletes a column.
func (c *Client) DeleteColumn(ctx context.Context, columnID string) error {
	return c.do(ctx, "delete_column", http.MethodDelete, "columns/"+url.PathEscape(columnID), nil, nil, nil)
}

// MoveTask sends a drag-and-drop reorder.
func (c *Client) MoveTask(ctx context.Context, move service.Move) error {
	return c.do(ctx, "move_task", http.MethodPost, "move-task", nil, move, nil)
}

// do runs one API call through the timeout, the tracer and the circuit breaker.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	ctx, span := c.tracer.Start(ctx, "boardstore."+op,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", method),
			attribute.String("url.path", path),
		),
	)
	defer span.End()

	requestID := uuid.NewString()
	span.SetAttributes(attribute.String("kboard.request_id", requestID))

	_, err := c.breaker.Execute(func() (interface{}, error) {
		return nil, c.roundTrip(ctx, span, requestID, method, path, query, body, out)
	})
	if err != nil {
		err = wrapError(op, err)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, span trace.Span, requestID, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := sonic.ConfigStd.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	u := c.base.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer googleapi.CloseBody(res)
	span.SetAttributes(attribute.Int("http.response.status_code", res.StatusCode))

	if err := googleapi.CheckResponse(res); err != nil {
		return err
	}
	if out == nil || res.StatusCode == http.StatusNoContent {
		return nil
	}

	data, err := io.ReadAll(res.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if err := sonic.ConfigStd.Unmarshal(data, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
