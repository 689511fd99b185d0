package utils

import (
	"strings"

	"github.com/sirupsen/logrus"
)

var sensitiveKeys = []string{"password", "token", "authorization", "secret", "ticket", "credential"}

// Redact masks values of sensitive keys in a log context before it is
// written. The input map is not modified.
func Redact(fields logrus.Fields) logrus.Fields {
	out := make(logrus.Fields, len(fields))
	for k, v := range fields {
		if isSensitive(k) {
			out[k] = "[REDACTED]"
			continue
		}
		out[k] = v
	}
	return out
}

func isSensitive(key string) bool {
	lower := strings.ToLower(key)
	for _, s := range sensitiveKeys {
		if strings.Contains(lower, s) {
			return true
		}
	}
	return false
}
