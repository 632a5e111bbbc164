package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/moadamda/tracker/internal/config"
	"github.com/moadamda/tracker/internal/errorwrapper"
	"github.com/moadamda/tracker/internal/event"
)

// HTTPClient posts batches to the collector endpoint. It implements
// both channels: Send is the confirmable path, Enqueue the durable one.
type HTTPClient struct {
	client       *http.Client
	collectorURL string
	logger       zerolog.Logger
}

// NewHTTPClient creates an HTTP transport for the collector URL
func NewHTTPClient(collectorURL string, cfg config.TransportConfig, logger zerolog.Logger) *HTTPClient {
	return &HTTPClient{
		client: &http.Client{
			Timeout: cfg.RequestTimeout(),
		},
		collectorURL: collectorURL,
		logger:       logger.With().Str("component", "HTTPTransport").Logger(),
	}
}

// Send posts the batch and confirms the collector's verdict. The
// response body is never consumed beyond draining; only the status
// matters.
func (hc *HTTPClient) Send(ctx context.Context, batch event.Batch) error {
	body, err := json.Marshal(batch)
	if err != nil {
		return errorwrapper.WrapError(err, "failed to encode batch")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, hc.collectorURL, bytes.NewReader(body))
	if err != nil {
		return errorwrapper.WrapError(err, "failed to build collector request")
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := hc.client.Do(req)
	if err != nil {
		return errorwrapper.NewNetworkError(hc.collectorURL, 0, "request failed", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errorwrapper.NewNetworkError(hc.collectorURL, resp.StatusCode, resp.Status, errorwrapper.ErrTransportFailure)
	}
	return nil
}

// Enqueue fires the batch on a detached goroutine and reports only
// whether it was accepted for sending. The request outlives the
// caller's context; its outcome is deliberately not observed.
func (hc *HTTPClient) Enqueue(batch event.Batch) bool {
	body, err := json.Marshal(batch)
	if err != nil {
		hc.logger.Warn().Err(err).Msg("Durable enqueue rejected: encode failed")
		return false
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), hc.client.Timeout)
		defer cancel()

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, hc.collectorURL, bytes.NewReader(body))
		if err != nil {
			return
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := hc.client.Do(req)
		if err != nil {
			return
		}
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	return true
}
