package notehub

import (
	"fmt"
	"net/http"
	"sort"
	"strings"
)

func isSensitiveHeader(key string) bool {
	k := strings.ToLower(strings.TrimSpace(key))
	k = strings.ReplaceAll(k, "-", "")
	k = strings.ReplaceAll(k, "_", "")
	switch {
	case k == "authorization":
		return true
	case strings.Contains(k, "token"), strings.Contains(k, "cookie"), strings.Contains(k, "secret"):
		return true
	default:
		return false
	}
}

// formatHeaders returns stable, redacted header text for logs.
func formatHeaders(h http.Header) string {
	if len(h) == 0 {
		return "{}"
	}
	keys := make([]string, 0, len(h))
	for k := range h {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		v := strings.Join(h.Values(k), ", ")
		if isSensitiveHeader(k) {
			v = "[REDACTED]"
		}
		parts = append(parts, fmt.Sprintf("%s=%q", strings.ToLower(k), v))
	}
	return strings.Join(parts, "; ")
}
