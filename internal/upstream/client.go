// Package upstream is the gateway's HTTP client for the user and listing services.
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/listhub/listhub/internal/metrics"
	"github.com/listhub/listhub/internal/middleware"
	"github.com/listhub/listhub/internal/model"
)

const (
	// DialTimeout is the connection timeout.
	DialTimeout = 5 * time.Second
	// ResponseHeaderTimeout is time to wait for response headers.
	ResponseHeaderTimeout = 10 * time.Second
	// MaxResponseBytes caps how much of a backend response is read.
	MaxResponseBytes = 16 << 20

	userAgent = "listhub-gateway/1.0"
)

// NewHTTPClient creates an HTTP client for backend calls.
// timeout bounds every call end to end.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			DialContext: (&net.Dialer{
				Timeout:   DialTimeout,
				KeepAlive: 30 * time.Second,
			}).DialContext,
			ResponseHeaderTimeout: ResponseHeaderTimeout,
			MaxIdleConns:          100,
			MaxIdleConnsPerHost:   20,
			IdleConnTimeout:       90 * time.Second,
		},
		// Backends are internal; a redirect means misconfiguration.
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}
}

// Options configures a Client.
type Options struct {
	UserServiceURL    string
	ListingServiceURL string
	HTTPClient        *http.Client
	Logger            *slog.Logger
	Metrics           metrics.Recorder
}

// Client issues one outbound request per call and reports failures as *Error.
type Client struct {
	httpClient  *http.Client
	usersURL    string
	listingsURL string
	logger      *slog.Logger
	metrics     metrics.Recorder
}

// NewClient creates a new Client.
func NewClient(opts Options) *Client {
	httpClient := opts.HTTPClient
	if httpClient == nil {
		httpClient = NewHTTPClient(10 * time.Second)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	recorder := opts.Metrics
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &Client{
		httpClient:  httpClient,
		usersURL:    strings.TrimRight(opts.UserServiceURL, "/"),
		listingsURL: strings.TrimRight(opts.ListingServiceURL, "/"),
		logger:      logger.With("component", "upstream.client"),
		metrics:     recorder,
	}
}

// Response is a successful backend answer.
type Response struct {
	StatusCode int
	Body       json.RawMessage
}

// FetchListings forwards rawQuery verbatim to the listing service's list endpoint.
func (c *Client) FetchListings(ctx context.Context, rawQuery string) (*model.ListingsPayload, error) {
	var payload *model.ListingsPayload
	_, err := c.call(ctx, request{
		service:   ServiceListings,
		operation: OpList,
		method:    http.MethodGet,
		url:       withQuery(c.listingsURL+"/listings", rawQuery),
	}, func(body []byte) error {
		p, err := model.DecodeListingsPayload(body)
		if err != nil {
			return err
		}
		payload = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

// FetchAllUsers fetches the complete user set. No pagination parameters are
// sent, which the user service answers with every record.
func (c *Client) FetchAllUsers(ctx context.Context) ([]model.User, error) {
	var users []model.User
	_, err := c.call(ctx, request{
		service:   ServiceUsers,
		operation: OpListAll,
		method:    http.MethodGet,
		url:       c.usersURL + "/users",
	}, func(body []byte) error {
		var payload model.UsersPayload
		if err := json.Unmarshal(body, &payload); err != nil {
			return err
		}
		users = payload.Users
		return nil
	})
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

// ListUsers proxies a user list request with the caller's query string.
func (c *Client) ListUsers(ctx context.Context, rawQuery string) (*Response, error) {
	return c.call(ctx, request{
		service:   ServiceUsers,
		operation: OpList,
		method:    http.MethodGet,
		url:       withQuery(c.usersURL+"/users", rawQuery),
	}, validJSON)
}

// CreateUser proxies a user creation.
func (c *Client) CreateUser(ctx context.Context, name string) (*Response, error) {
	form := url.Values{}
	form.Set("name", name)
	return c.call(ctx, request{
		service:   ServiceUsers,
		operation: OpCreate,
		method:    http.MethodPost,
		url:       c.usersURL + "/users",
		form:      form,
	}, validJSON)
}

// CreateListing proxies a listing creation.
func (c *Client) CreateListing(ctx context.Context, in model.NewListing) (*Response, error) {
	form := url.Values{}
	form.Set("user_id", strconv.FormatInt(in.UserID, 10))
	form.Set("listing_type", in.ListingType)
	form.Set("price", strconv.FormatInt(in.Price, 10))
	return c.call(ctx, request{
		service:   ServiceListings,
		operation: OpCreate,
		method:    http.MethodPost,
		url:       c.listingsURL + "/listings",
		form:      form,
	}, validJSON)
}

// PingUsers checks that the user service answers its ping route.
func (c *Client) PingUsers(ctx context.Context) error {
	_, err := c.call(ctx, request{
		service:   ServiceUsers,
		operation: OpPing,
		method:    http.MethodGet,
		url:       c.usersURL + "/users/ping",
	}, nil)
	return err
}

// PingListings checks that the listing service answers its ping route.
func (c *Client) PingListings(ctx context.Context) error {
	_, err := c.call(ctx, request{
		service:   ServiceListings,
		operation: OpPing,
		method:    http.MethodGet,
		url:       c.listingsURL + "/listings/ping",
	}, nil)
	return err
}

type request struct {
	service   string
	operation string
	method    string
	url       string
	form      url.Values
}

// call performs one request. decode runs on 2xx bodies; a decode error marks
// the body as malformed. A nil decode accepts any body.
func (c *Client) call(ctx context.Context, r request, decode func(body []byte) error) (*Response, error) {
	callID := ulid.Make().String()
	start := time.Now()

	fail := func(outcome string, status int, body []byte, cause error) error {
		c.metrics.ObserveUpstreamCall(r.service, r.operation, outcome, time.Since(start))
		uerr := &Error{
			Service:    r.service,
			Operation:  r.operation,
			CallID:     callID,
			StatusCode: status,
			Body:       body,
			Err:        cause,
		}
		c.logFailure(ctx, uerr, outcome)
		return uerr
	}

	var reqBody io.Reader
	if r.form != nil {
		reqBody = strings.NewReader(r.form.Encode())
	}

	req, err := http.NewRequestWithContext(ctx, r.method, r.url, reqBody)
	if err != nil {
		return nil, fail(metrics.OutcomeTransportError, 0, nil, fmt.Errorf("create request: %w", err))
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if r.form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	if requestID := middleware.GetRequestID(ctx); requestID != "" {
		req.Header.Set(middleware.RequestIDHeader, requestID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fail(metrics.OutcomeTransportError, 0, nil, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseBytes))
	if err != nil {
		return nil, fail(metrics.OutcomeTransportError, 0, nil, fmt.Errorf("read body: %w", err))
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fail(metrics.OutcomeStatusError, resp.StatusCode, body, ErrUnexpectedStatus)
	}

	if decode != nil {
		if err := decode(body); err != nil {
			return nil, fail(metrics.OutcomeMalformed, 0, nil, fmt.Errorf("%w: %v", ErrMalformedBody, err))
		}
	}

	c.metrics.ObserveUpstreamCall(r.service, r.operation, metrics.OutcomeSuccess, time.Since(start))
	c.logger.DebugContext(ctx, "upstream call succeeded",
		slog.String("service", r.service),
		slog.String("operation", r.operation),
		slog.String("call_id", callID),
		slog.Int("status_code", resp.StatusCode),
		slog.Float64("duration_ms", float64(time.Since(start).Microseconds())/1000),
	)

	return &Response{StatusCode: resp.StatusCode, Body: body}, nil
}

func (c *Client) logFailure(ctx context.Context, err *Error, outcome string) {
	attrs := []slog.Attr{
		slog.String("request_id", middleware.GetRequestID(ctx)),
		slog.String("service", err.Service),
		slog.String("operation", err.Operation),
		slog.String("call_id", err.CallID),
		slog.String("outcome", outcome),
		slog.String("error", err.Err.Error()),
	}
	if err.StatusCode != 0 {
		attrs = append(attrs, slog.Int("status_code", err.StatusCode))
	}

	// A sibling call failing cancels this one; that is not a backend problem.
	level := slog.LevelError
	if errors.Is(err.Err, context.Canceled) {
		level = slog.LevelWarn
	}
	c.logger.LogAttrs(ctx, level, "upstream call failed", attrs...)
}

func withQuery(base, rawQuery string) string {
	if rawQuery == "" {
		return base
	}
	return base + "?" + rawQuery
}

func validJSON(body []byte) error {
	if !json.Valid(bytes.TrimSpace(body)) {
		return errors.New("body is not valid JSON")
	}
	return nil
}
