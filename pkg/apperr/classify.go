package apperr

import "strings"

// classifyMessage buckets an untagged error by substring-matching its
// lowercased message. This is the legacy shortcut kept only for errors
// raised outside our code (driver errors, gateway SDK errors that slip
// through unwrapped); everything raised in this codebase is tagged at the
// source and never reaches this path.
//
// Order matters: more specific markers are checked before generic ones so
// a message like "payment lookup timeout" classifies as a timeout, not a
// payment failure.
func classifyMessage(msg string) Kind {
	m := strings.ToLower(msg)

	switch {
	case strings.Contains(m, "timeout") || strings.Contains(m, "timed out") ||
		strings.Contains(m, "deadline exceeded") || strings.Contains(m, "connection refused"):
		return KindTimeout
	case strings.Contains(m, "not found") || strings.Contains(m, "no rows") ||
		strings.Contains(m, "record not found"):
		return KindNotFound
	case strings.Contains(m, "unauthorized") || strings.Contains(m, "invalid token") ||
		strings.Contains(m, "authentication"):
		return KindAuth
	case strings.Contains(m, "secret key") || strings.Contains(m, "api key") ||
		strings.Contains(m, "environment variable"):
		return KindConfig
	case strings.Contains(m, "stripe") || strings.Contains(m, "card") ||
		strings.Contains(m, "declined") || strings.Contains(m, "payment method"):
		return KindPayment
	case strings.Contains(m, "invalid") || strings.Contains(m, "required") ||
		strings.Contains(m, "must be"):
		return KindValidation
	default:
		return KindServer
	}
}
