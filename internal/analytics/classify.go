package analytics

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"
)

// Cause is the stable machine-readable failure class reported to callers
// when a reporting query fails. Failures never surface as transport errors
// upstream; they degrade into an unsuccessful overview carrying one of
// these values.
type Cause string

const (
	CauseRateLimit          Cause = "rate-limit"
	CausePermissionDenied   Cause = "permission-denied"
	CauseAuthentication     Cause = "authentication-failed"
	CauseInvalidConfig      Cause = "invalid-configuration"
	CauseServiceUnavailable Cause = "service-unavailable"
)

// SourceError carries the upstream API failure detail needed for
// classification. Status is the API's symbolic status when the error body
// could be decoded.
type SourceError struct {
	StatusCode int
	Status     string
	Message    string
	Cause      error
}

func (e *SourceError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("analytics source returned status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("analytics source error: %s", e.Message)
}

func (e *SourceError) Unwrap() error {
	return e.Cause
}

// Classify maps a reporting failure to its stable cause. Unknown failures
// fall through to service-unavailable.
func Classify(err error) Cause {
	if err == nil {
		return CauseServiceUnavailable
	}

	var srcErr *SourceError
	if errors.As(err, &srcErr) {
		switch srcErr.StatusCode {
		case http.StatusTooManyRequests:
			return CauseRateLimit
		case http.StatusForbidden:
			return CausePermissionDenied
		case http.StatusUnauthorized:
			return CauseAuthentication
		case http.StatusBadRequest:
			return CauseInvalidConfig
		}
		if srcErr.Status != "" {
			switch strings.ToUpper(srcErr.Status) {
			case "RESOURCE_EXHAUSTED":
				return CauseRateLimit
			case "PERMISSION_DENIED":
				return CausePermissionDenied
			case "UNAUTHENTICATED":
				return CauseAuthentication
			case "INVALID_ARGUMENT":
				return CauseInvalidConfig
			}
		}
		return CauseServiceUnavailable
	}

	if errors.Is(err, context.DeadlineExceeded) {
		return CauseServiceUnavailable
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return CauseServiceUnavailable
	}

	return CauseServiceUnavailable
}

// DegradedMessage is the operator-facing explanation attached to an
// unsuccessful overview for a given cause.
func DegradedMessage(cause Cause) string {
	switch cause {
	case CauseRateLimit:
		return "Analytics API quota exceeded, data temporarily unavailable"
	case CausePermissionDenied:
		return "Analytics service account lacks access to the reporting property"
	case CauseAuthentication:
		return "Analytics credentials rejected by the reporting API"
	case CauseInvalidConfig:
		return "Analytics property configuration is invalid"
	default:
		return "Analytics service temporarily unavailable"
	}
}
