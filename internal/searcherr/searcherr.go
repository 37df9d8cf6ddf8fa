// Package searcherr defines the sentinel errors shared across provider
// adapters, the cache, and the orchestrator. Adapters wrap
// these with fmt.Errorf("%w: ...") so callers can still use errors.Is.
package searcherr

import "errors"

var (
	// ErrProviderUnavailable: upstream refused connection, timed out, or returned 5xx.
	ErrProviderUnavailable = errors.New("provider unavailable")

	// ErrProviderAuthMissing: credentials required by the provider are absent.
	ErrProviderAuthMissing = errors.New("provider auth missing")

	// ErrProviderRateLimited: quota exhausted, no request issued.
	ErrProviderRateLimited = errors.New("provider rate limited")

	// ErrProviderMalformed: upstream returned 2xx with an unparseable body.
	ErrProviderMalformed = errors.New("provider returned malformed response")

	// ErrFeedInvalid: XML parse failed or no channel element was found.
	ErrFeedInvalid = errors.New("feed is not a well-formed podcast feed")

	// ErrCacheError: cache backing store failure; always swallowed by callers.
	ErrCacheError = errors.New("cache backing store error")

	// ErrCancelledByCaller: request deadline passed or explicit cancel.
	ErrCancelledByCaller = errors.New("search cancelled by caller")
)
