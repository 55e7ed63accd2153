package analyzer

import (
	"net/url"
	"strings"
)

// Normalize parses a target that may be a full URL or a bare hostname.
// Bare hostnames default to the https scheme.
func Normalize(target string) (*url.URL, error) {
	target = strings.TrimSpace(target)
	if target == "" {
		return nil, ErrInvalidURL
	}

	u, err := url.Parse(target)
	// A bare "example.com:8080" parses with scheme "example.com"; treat any
	// scheme containing a dot as a missing scheme.
	if err != nil || u.Scheme == "" || strings.Contains(u.Scheme, ".") {
		u, err = url.Parse("https://" + target)
	}
	if err != nil {
		return nil, ErrInvalidURL
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, ErrInvalidURL
	}
	if u.Hostname() == "" {
		return nil, ErrInvalidURL
	}
	return u, nil
}
