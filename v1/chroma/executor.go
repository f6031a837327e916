package chroma

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/propagation"

	"github.com/Aleph-Alpha/agentmem/v1/vectorstore"
)

// Response is the status and raw body of a completed HTTP exchange.
type Response struct {
	StatusCode int
	Body       []byte
}

// Executor performs one blocking request/response round trip against the
// Chroma API. Implementations must be safe for concurrent use.
type Executor interface {
	// Do sends body, JSON-encoded, to path relative to the API base URL.
	// A nil body sends no payload. Any received status is returned as a
	// Response; only exchanges that produced no response yield an error.
	Do(ctx context.Context, method, path string, body any) (*Response, error)

	// Close releases pooled connections.
	Close()
}

// HTTPExecutor is the default Executor. It owns one http.Client with a
// keep-alive connection pool and performs no retries.
type HTTPExecutor struct {
	baseURL     string
	bearerToken string
	client      *http.Client
	transport   *http.Transport
}

// NewHTTPExecutor builds an executor for cfg. Connection establishment is
// bounded by cfg.ConnectTimeout and the wait for response headers by
// cfg.ReadTimeout.
func NewHTTPExecutor(cfg Config) *HTTPExecutor {
	cfg = cfg.withDefaults()

	transport := &http.Transport{
		Proxy: http.ProxyFromEnvironment,
		DialContext: (&net.Dialer{
			Timeout:   cfg.ConnectTimeout,
			KeepAlive: 30 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout:   cfg.ConnectTimeout,
		ResponseHeaderTimeout: cfg.ReadTimeout,
		MaxIdleConns:          cfg.MaxIdleConns,
		MaxIdleConnsPerHost:   cfg.MaxIdleConns,
		IdleConnTimeout:       90 * time.Second,
	}

	return &HTTPExecutor{
		baseURL:     cfg.BaseURL(),
		bearerToken: cfg.BearerToken,
		client:      &http.Client{Transport: transport},
		transport:   transport,
	}
}

func (e *HTTPExecutor) Do(ctx context.Context, method, path string, body any) (*Response, error) {
	op := "chroma: " + method + " " + path

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, &vectorstore.CodecError{Op: op, Err: err}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, e.baseURL+path, reader)
	if err != nil {
		return nil, &vectorstore.TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if e.bearerToken != "" {
		req.Header.Set("Authorization", "Bearer "+e.bearerToken)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, &vectorstore.TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &vectorstore.TransportError{Op: op, Err: err}
	}

	return &Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// Close drops idle pooled connections.
func (e *HTTPExecutor) Close() {
	e.transport.CloseIdleConnections()
}
