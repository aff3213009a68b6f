package server

import (
	"log/slog"
	"net/http"
	"net/url"
	"strings"
)

func normalizeOrigins(origins []string, logger *slog.Logger) (map[string]struct{}, bool) {
	normalized := make(map[string]struct{}, len(origins))
	allowAll := false

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed == "" {
			continue
		}

		if trimmed == "*" {
			allowAll = true
			continue
		}

		normalizedOrigin, ok := normalizeOrigin(trimmed)
		if !ok {
			logger.Warn("ignoring invalid origin in configuration", slog.String("origin", origin))
			continue
		}

		normalized[normalizedOrigin] = struct{}{}
	}

	return normalized, allowAll
}

func normalizeOrigin(origin string) (string, bool) {
	parsed, err := url.Parse(origin)
	if err != nil {
		return "", false
	}

	if parsed.Scheme == "" || parsed.Host == "" {
		return "", false
	}

	normalized := strings.ToLower(parsed.Scheme) + "://" + strings.ToLower(parsed.Host)
	return normalized, true
}

// NewOriginChecker returns the WebSocket origin policy for origins.
//
// An empty list returns nil, which keeps gorilla's same-host check. "*"
// allows every origin. Otherwise a request is accepted only when its
// normalized Origin header is listed.
func NewOriginChecker(origins []string, logger *slog.Logger) func(*http.Request) bool {
	allowed, allowAll := normalizeOrigins(origins, logger)
	if allowAll {
		return func(*http.Request) bool { return true }
	}
	if len(allowed) == 0 {
		return nil
	}

	return func(r *http.Request) bool {
		originHeader := r.Header.Get("Origin")
		normalizedOrigin, ok := normalizeOrigin(originHeader)
		if ok {
			if _, exists := allowed[normalizedOrigin]; exists {
				return true
			}
		}

		logger.Warn("blocked websocket connection from disallowed origin", slog.String("origin", originHeader))
		return false
	}
}
