package logging

import (
	"log/slog"
	"strings"
)

// RedactedValue is the canonical placeholder used for sensitive fields
// in logs: the AoC session cookie and the Slack tokens must never leak
// into the log stream, file sink included.
const RedactedValue = "[REDACTED]"

var sensitiveKeys = map[string]struct{}{
	"session_cookie": {},
	"bot_token":      {},
	"app_token":      {},
	"dsn":            {},
}

// IsSensitive reports whether a log key carries a credential.
func IsSensitive(key string) bool {
	normalized := strings.ToLower(strings.TrimSpace(key))
	_, ok := sensitiveKeys[normalized]
	return ok
}

// MaskField returns a slog.Attr with the value replaced by the redaction
// placeholder when the key is sensitive and the value non-empty. Empty
// values stay empty so "not configured" remains visible.
func MaskField(key, value string) slog.Attr {
	if strings.TrimSpace(value) == "" || !IsSensitive(key) {
		return slog.String(key, value)
	}
	return slog.String(key, RedactedValue)
}
