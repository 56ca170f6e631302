package provider

import (
	"errors"
	"strings"
)

// ProviderError is a delivery failure reported by a provider, classified as
// permanent (never retry) or transient.
type ProviderError struct {
	Provider string
	// StatusCode is the HTTP status or SMTP reply code; 0 for network errors.
	StatusCode int
	Message    string
	Permanent  bool
}

func (e *ProviderError) Error() string {
	return e.Provider + ": " + e.Message
}

// IsPermanent reports whether err is a ProviderError marked permanent.
func IsPermanent(err error) bool {
	var pe *ProviderError
	return errors.As(err, &pe) && pe.Permanent
}

// IsTransient reports whether err may succeed on retry. Unclassified errors
// count as transient.
func IsTransient(err error) bool {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return !pe.Permanent
	}
	return true
}

var (
	permanentClientPatterns = []string{
		"invalid recipient",
		"invalid email",
		"invalid address",
		"does not exist",
		"mailbox not found",
		"recipient rejected",
		"bad request",
		"validation error",
	}
	permanentServerPatterns = []string{
		"invalid api key",
		"authentication failed",
		"account suspended",
		"account disabled",
		"unauthorized",
	}
)

// ClassifyHTTPError builds a ProviderError from an HTTP status and body.
// It returns nil for 2xx statuses.
func ClassifyHTTPError(providerName string, statusCode int, body string) *ProviderError {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	pe := &ProviderError{Provider: providerName, StatusCode: statusCode, Message: body}
	switch {
	case statusCode == 400:
		pe.Permanent = containsAny(body, permanentClientPatterns)
	case statusCode == 408, statusCode == 429:
		pe.Permanent = false
	case statusCode >= 500:
		pe.Permanent = containsAny(body, permanentServerPatterns)
	default:
		pe.Permanent = statusCode >= 400 && statusCode < 500
	}
	return pe
}

func containsAny(body string, patterns []string) bool {
	lower := strings.ToLower(body)
	for _, p := range patterns {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}
