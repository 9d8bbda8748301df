// Package httpclient wraps outbound HTTP behind a small interface so crawlers
// and resolvers can be tested against canned responses.
package httpclient

import "context"

// Response exposes the parts of an HTTP response the crawlers read.
type Response interface {
	Body() []byte
	StatusCode() int
}

// Client issues GET requests with per-request headers. Implementations own
// timeouts and default headers.
type Client interface {
	Get(ctx context.Context, url string, headers map[string]string) (Response, error)
}
