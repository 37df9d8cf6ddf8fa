package httpclient

import (
	"net/http"
	"time"
)

// Default returns an HTTP client tuned for interactive catalog search: every
// call sits inside a per-provider request deadline set by the orchestrator,
// so the client's own timeouts only need to keep a dead upstream from idling
// past that deadline, not bound it on their own.
func Default() *http.Client {
	return &http.Client{
		Timeout: 20 * time.Second,
		Transport: &http.Transport{
			ResponseHeaderTimeout: 8 * time.Second,
			ExpectContinueTimeout: 2 * time.Second,
			IdleConnTimeout:       30 * time.Second,
		},
	}
}
