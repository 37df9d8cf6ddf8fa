// Package health reports provider reachability and quota status: one
// status per configured directory/catalog provider.
package health

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/mediadirectory/searchcore/internal/catalog"
	"github.com/mediadirectory/searchcore/internal/ratelimiter"
)

// CheckProvider issues a GET against baseURL and reports whether it
// responded with a 2xx status. Used as a lightweight reachability probe;
// it does not validate the response body.
func CheckProvider(ctx context.Context, baseURL string) error {
	if baseURL == "" {
		return fmt.Errorf("no base URL configured")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL, nil)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("provider unreachable: %w", err)
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("provider returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// CheckFeedURL issues a GET against a podcast feed URL and reports whether
// it responded with a 2xx status: the counterpart of CheckProvider for a
// single podcast feed URL.
func CheckFeedURL(ctx context.Context, feedURL string) error {
	if feedURL == "" {
		return fmt.Errorf("no feed URL given")
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, feedURL, nil)
	if err != nil {
		return err
	}
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("feed unreachable: %w", err)
	}
	resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("feed returned HTTP %d", resp.StatusCode)
	}
	return nil
}

// ProviderStatus is one provider's entry in a Snapshot.
type ProviderStatus struct {
	Name      catalog.ProviderName
	Enabled   bool
	Reachable bool
	Error     string
	RateLimit ratelimiter.Stats
}

// Snapshot is the aggregate health report returned by a status endpoint.
type Snapshot struct {
	CheckedAt time.Time
	Providers []ProviderStatus
}

// Checker probes configured providers and reports a Snapshot.
type Checker struct {
	configs []catalog.ProviderConfig
	limiter *ratelimiter.Limiter
	now     func() time.Time
}

// NewChecker builds a Checker over configs, reporting quota usage from
// limiter. Disabled providers are still listed (Enabled=false, not probed).
func NewChecker(configs []catalog.ProviderConfig, limiter *ratelimiter.Limiter) *Checker {
	return &Checker{configs: configs, limiter: limiter, now: time.Now}
}

// Check probes every enabled provider's BaseURL and returns a Snapshot.
// Providers without a BaseURL (e.g. adapters that only ever call a
// third-party SDK endpoint) are reported reachable without a live probe.
func (c *Checker) Check(ctx context.Context) Snapshot {
	snap := Snapshot{CheckedAt: c.now()}
	for _, cfg := range c.configs {
		status := ProviderStatus{
			Name:      cfg.Name,
			Enabled:   cfg.Enabled,
			RateLimit: c.limiter.StatsFor(cfg.Name),
		}
		switch {
		case !cfg.Enabled:
			status.Reachable = false
			status.Error = "disabled"
		case cfg.BaseURL == "":
			status.Reachable = true
		default:
			if err := CheckProvider(ctx, cfg.BaseURL); err != nil {
				status.Reachable = false
				status.Error = err.Error()
			} else {
				status.Reachable = true
			}
		}
		snap.Providers = append(snap.Providers, status)
	}
	return snap
}
