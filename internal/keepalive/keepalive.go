// Package keepalive pings the service's own public URL on an interval so
// idle-sleeping hosts keep it warm.
package keepalive

import (
	"context"
	"io"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"
)

// DefaultInterval is used when the configured interval is not positive
const DefaultInterval = 20 * time.Minute

// Pinger issues periodic GET requests against a fixed URL
type Pinger struct {
	url      string
	interval time.Duration
	client   *http.Client
	logger   *zap.Logger
}

// New creates a Pinger for url
func New(url string, interval time.Duration, logger *zap.Logger) *Pinger {
	if interval <= 0 {
		interval = DefaultInterval
	}
	return &Pinger{
		url:      url,
		interval: interval,
		client: &http.Client{
			Timeout:   30 * time.Second,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		logger: logger,
	}
}

// Run pings until ctx is cancelled. The first ping waits a full interval.
func (p *Pinger) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.logger.Info("Keep-alive started", zap.String("url", p.url), zap.Duration("interval", p.interval))

	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Keep-alive stopped")
			return
		case <-ticker.C:
			p.ping(ctx)
		}
	}
}

func (p *Pinger) ping(ctx context.Context) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		p.logger.Error("Keep-alive request invalid", zap.Error(err))
		return
	}

	resp, err := p.client.Do(req)
	if err != nil {
		if ctx.Err() == nil {
			p.logger.Warn("Keep-alive ping failed", zap.String("url", p.url), zap.Error(err))
		}
		return
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= http.StatusBadRequest {
		p.logger.Warn("Keep-alive ping returned error status", zap.String("url", p.url), zap.Int("status", resp.StatusCode))
		return
	}
	p.logger.Debug("Keep-alive ping ok", zap.Int("status", resp.StatusCode))
}
