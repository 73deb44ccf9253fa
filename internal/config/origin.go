package config

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidOrigin wraps every rejection from SanitizeTrustedDomain.
var ErrInvalidOrigin = errors.New("invalid dashboard origin")

func invalidOrigin(raw, reason string) error {
	return fmt.Errorf("%w %q: %s", ErrInvalidOrigin, raw, reason)
}

// SanitizeTrustedDomain reduces a dashboard origin such as
// "https://Portal.Clinic.Example/" to its lowercase host[:port].
// Paths, queries, fragments and wildcards are rejected.
func SanitizeTrustedDomain(raw string) (string, error) {
	host := strings.ToLower(strings.TrimSpace(raw))
	if host == "" {
		return "", invalidOrigin(raw, "empty")
	}

	for _, scheme := range []string{"https://", "http://"} {
		if rest, ok := strings.CutPrefix(host, scheme); ok {
			host = rest
			break
		}
	}
	host = strings.TrimSuffix(host, "/")

	switch {
	case strings.ContainsAny(host, " \t\r\n"):
		return "", invalidOrigin(raw, "contains whitespace")
	case strings.Contains(host, "*"):
		return "", invalidOrigin(raw, "wildcards are not supported, list each dashboard host")
	}

	u, err := url.Parse("http://" + host)
	if err != nil || u.Host == "" {
		return "", invalidOrigin(raw, "not a host name")
	}
	if u.Path != "" || u.RawQuery != "" || u.Fragment != "" {
		return "", invalidOrigin(raw, "must be a bare host without path, query or fragment")
	}

	return u.Host, nil
}
