package oaipmh

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"fmt"
	"net"
	"net/url"
	"syscall"
)

// Canonical error codes produced by Classify.
const (
	CodeValidationError   = "VALIDATION_ERROR"
	CodeConnectionRefused = "CONNECTION_REFUSED"
	CodeDNSLookupFailed   = "DNS_LOOKUP_FAILED"
	CodeTimeout           = "TIMEOUT"
	CodeConnectionReset   = "CONNECTION_RESET"
	CodeRequestTimeout    = "REQUEST_TIMEOUT"
	CodeNetworkError      = "NETWORK_ERROR"
	CodeRequestFailed     = "REQUEST_FAILED"
	CodeSyntaxError       = "SYNTAX_ERROR"
	CodeTypeError         = "TYPE_ERROR"
	CodeUnknownError      = "UNKNOWN_ERROR"

	CodeEmptyResponse     = "EMPTY_RESPONSE"
	CodeMalformedResponse = "MALFORMED_RESPONSE"

	// CodeProcessingError marks a page-handler failure inside the
	// ListRecords loop; pages delivered before the failure stay delivered.
	CodeProcessingError = "LISTRECORDS_PROCESSING_ERROR"
)

// ValidationError reports a bad or missing base URL. It is raised before
// any network call is made.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// ProtocolError reports an OAI-PMH level failure: an empty body or a
// response missing the expected root element.
type ProtocolError struct {
	Code string
	Msg  string
}

func (e *ProtocolError) Error() string { return e.Msg }

// HTTPStatusError reports a non-200 response. 4xx responses are returned
// as errors rather than thrown by the transport so every status classifies
// through the same path.
type HTTPStatusError struct {
	StatusCode int
	URL        string
}

func (e *HTTPStatusError) Error() string {
	return fmt.Sprintf("unexpected HTTP status %d from %s", e.StatusCode, e.URL)
}

// Classify maps any failure to a canonical error code. The bucket order is
// fixed and first-match-wins, because several inputs can match more than
// one bucket (a syscall timeout also satisfies url.Error.Timeout).
// Buckets: app-typed errors, OS/network errno, HTTP status, transport
// client, runtime decode kinds, then UNKNOWN_ERROR (including nil).
func Classify(err error) string {
	if err == nil {
		return CodeUnknownError
	}

	var vErr *ValidationError
	if errors.As(err, &vErr) {
		return CodeValidationError
	}
	var pErr *ProtocolError
	if errors.As(err, &pErr) {
		return pErr.Code
	}

	// OS and network errno codes.
	if errors.Is(err, syscall.ECONNREFUSED) {
		return CodeConnectionRefused
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return CodeDNSLookupFailed
	}
	if errors.Is(err, syscall.ETIMEDOUT) || errors.Is(err, context.DeadlineExceeded) {
		return CodeTimeout
	}
	if errors.Is(err, syscall.ECONNRESET) {
		return CodeConnectionReset
	}

	// HTTP status derived codes.
	var hErr *HTTPStatusError
	if errors.As(err, &hErr) {
		switch {
		case hErr.StatusCode >= 400 && hErr.StatusCode < 500:
			return fmt.Sprintf("HTTP_CLIENT_ERROR_%d", hErr.StatusCode)
		case hErr.StatusCode >= 500 && hErr.StatusCode < 600:
			return fmt.Sprintf("HTTP_SERVER_ERROR_%d", hErr.StatusCode)
		default:
			return fmt.Sprintf("HTTP_ERROR_%d", hErr.StatusCode)
		}
	}

	// Transport-client failures that carried no recognizable errno.
	var uErr *url.Error
	if errors.As(err, &uErr) {
		if uErr.Timeout() {
			return CodeRequestTimeout
		}
		var opErr *net.OpError
		if errors.As(err, &opErr) {
			return CodeNetworkError
		}
		return CodeRequestFailed
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return CodeRequestTimeout
		}
		return CodeNetworkError
	}

	// Runtime decode kinds.
	var xmlErr *xml.SyntaxError
	if errors.As(err, &xmlErr) {
		return CodeSyntaxError
	}
	var jsonErr *json.UnmarshalTypeError
	if errors.As(err, &jsonErr) {
		return CodeTypeError
	}

	return CodeUnknownError
}
