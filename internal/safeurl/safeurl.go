package safeurl

import "net/url"

// IsHTTPOrHTTPS reports whether u is a parseable http(s) URL with a
// non-empty host. Station stream URLs and podcast feed URLs are fetched or
// handed to a player by a remote caller, so anything else — file://,
// ftp://, javascript:, or a scheme-only URL with no host — is rejected
// before it ever reaches a canonical item.
func IsHTTPOrHTTPS(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return false
	}
	return parsed.Host != ""
}
