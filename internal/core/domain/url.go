package domain

import (
	"net/url"
	"strings"
)

// NormalizeURL canonicalizes a URL for visited-set and dedup keys.
// It drops the fragment and a leading "www.", lowercases the host,
// defaults the scheme to https and trims a trailing slash from the path.
func NormalizeURL(raw string) string {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return raw
	}

	parsed.Fragment = ""
	parsed.RawFragment = ""
	parsed.Host = strings.TrimPrefix(strings.ToLower(parsed.Host), "www.")

	if parsed.Scheme == "" {
		parsed.Scheme = "https"
	}
	parsed.Scheme = strings.ToLower(parsed.Scheme)

	parsed.Path = strings.TrimRight(parsed.Path, "/")
	parsed.RawPath = ""

	return parsed.String()
}

// SameHost reports whether a and b point at the same host once normalized.
func SameHost(a, b string) bool {
	pa, err := url.Parse(NormalizeURL(a))
	if err != nil {
		return false
	}
	pb, err := url.Parse(NormalizeURL(b))
	if err != nil {
		return false
	}
	return pa.Host != "" && pa.Host == pb.Host
}
