package webpush

import "net/http"

// HTTPClient is the external transport collaborator this library
// depends on (spec §6): submit a POST and get back a response or a
// transport error. *http.Client satisfies this directly; per-request
// timeouts, retries, and TLS configuration are the transport's concern,
// not this library's. Grounded on
// other_examples/SherClockHolmes-webpush-go__webpush.go's HTTPClient
// interface.
type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}
