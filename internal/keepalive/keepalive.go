// Package keepalive pings a URL on an interval so hosting platforms that
// idle unused instances keep this one awake.
package keepalive

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gogotex/docshare/pkg/logger"
)

type Pinger struct {
	url      string
	interval time.Duration
	client   *http.Client
}

func New(url string, interval time.Duration) *Pinger {
	if interval <= 0 {
		interval = 2 * time.Minute
	}
	return &Pinger{url: url, interval: interval, client: &http.Client{Timeout: 10 * time.Second}}
}

// Ping issues one GET and returns the status code.
func (p *Pinger) Ping(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return 0, fmt.Errorf("keepalive request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, err
	}
	resp.Body.Close()
	return resp.StatusCode, nil
}

// Run pings until ctx is done. Failures are logged only.
func (p *Pinger) Run(ctx context.Context) {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			status, err := p.Ping(ctx)
			if err != nil {
				if ctx.Err() == nil {
					logger.Warnf("keep-alive ping %s failed: %v", p.url, err)
				}
				continue
			}
			logger.Debugf("keep-alive ping %s: %d", p.url, status)
		}
	}
}
