package webpush

import (
	"net/http"

	"github.com/google/uuid"
)

// MessageSentReport is the immutable outcome of dispatching one
// notification. Endpoint is read from the request's URL so callers can
// correlate a report with the subscription it came from without holding
// onto the original Notification. Response is nil when the transport
// itself failed (DNS, timeout, connection refused, ...); Reason carries
// the transport error's message in that case. When no request could be
// built for the notification, Endpoint is the subscription's endpoint,
// Request and Response are nil, and Reason carries the build error.
//
// A response with an HTTP status code >= 400 is still Success: true —
// the dispatcher only turns off Success when the transport call itself
// returned an error. Status-code interpretation is the caller's.
type MessageSentReport struct {
	endpoint      string
	correlationID uuid.UUID
	request       *http.Request
	response      *http.Response
	success       bool
	reason        string
}

// Endpoint returns the push service endpoint this report describes.
func (r MessageSentReport) Endpoint() string { return r.endpoint }

// Request returns the HTTP request that was issued, or nil if none
// could be built.
func (r MessageSentReport) Request() *http.Request { return r.request }

// Response returns the HTTP response, or nil if the transport call
// failed before a response was received.
func (r MessageSentReport) Response() *http.Response { return r.response }

// Success reports whether the transport call returned without error.
func (r MessageSentReport) Success() bool { return r.success }

// Reason returns the failure message (the transport error, or the error
// that kept the request from being built), or "" on success.
func (r MessageSentReport) Reason() string { return r.reason }

// CorrelationID returns the notification's correlation ID, stable
// across log lines and the report regardless of completion order.
func (r MessageSentReport) CorrelationID() uuid.UUID { return r.correlationID }

func newSuccessReport(req *http.Request, resp *http.Response, correlationID uuid.UUID) MessageSentReport {
	return MessageSentReport{
		endpoint:      req.URL.String(),
		correlationID: correlationID,
		request:       req,
		response:      resp,
		success:       true,
	}
}

func newFailureReport(req *http.Request, resp *http.Response, correlationID uuid.UUID, reason string) MessageSentReport {
	return MessageSentReport{
		endpoint:      req.URL.String(),
		correlationID: correlationID,
		request:       req,
		response:      resp,
		success:       false,
		reason:        reason,
	}
}

// newPrepareFailureReport builds a failure report for a notification
// that never became an HTTP request (e.g. an invalid endpoint URL or a
// malformed subscription key) — endpoint comes from the notification
// itself rather than a request, and Request()/Response() are nil.
func newPrepareFailureReport(endpoint string, correlationID uuid.UUID, reason string) MessageSentReport {
	return MessageSentReport{
		endpoint:      endpoint,
		correlationID: correlationID,
		success:       false,
		reason:        reason,
	}
}
