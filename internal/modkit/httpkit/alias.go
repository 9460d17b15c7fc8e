// Package httpkit re-exports the platform http surface for service modules,
// so handler code pulls one kit instead of internal/platform/net/http
package httpkit

import (
	"net/http"

	phttp "ghstats/internal/platform/net/http"
)

type (
	// Envelope aliases the response envelope
	Envelope = phttp.Envelope

	// Page aliases the pagination block
	Page = phttp.Page

	// Response aliases the return-style handler response
	Response = phttp.Response

	// Handler aliases the platform handler func
	Handler = phttp.Handler

	// Router aliases the platform router seam
	Router = phttp.Router
)

// Handle adapts a Response-returning function directly
func Handle(fn func(*http.Request) Response) Handler {
	return phttp.Handle(fn)
}

// Call adapts a plain (value, error) handler: an error maps through the
// envelope, a Response passes through untouched, anything else becomes a 200
func Call(fn func(*http.Request) (any, error)) Handler {
	return Handle(func(r *http.Request) Response {
		out, err := fn(r)
		if err != nil {
			return phttp.Error(err)
		}
		if resp, ok := out.(Response); ok {
			return resp
		}
		return phttp.OK(out)
	})
}

// List builds a paged list response that Call passes through unchanged
func List(items any, total, page, size int, cursor string) Response {
	return phttp.List(items, total, page, size, cursor)
}
