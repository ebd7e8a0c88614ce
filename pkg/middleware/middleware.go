// Package middleware holds the HTTP middleware shared by the API module:
// request logging, CORS and per-client rate limiting.
package middleware

import (
	"net/http"
	"slices"
)

// Middleware wraps an http.Handler.
type Middleware = func(http.Handler) http.Handler

// System is an ordered middleware stack. The first middleware added is the
// outermost.
type System interface {
	Use(mw ...Middleware)
	Apply(handler http.Handler) http.Handler
}

type stack struct {
	items []Middleware
}

// New creates a System holding mws in order.
func New(mws ...Middleware) System {
	return &stack{items: slices.Clone(mws)}
}

func (s *stack) Use(mws ...Middleware) {
	s.items = append(s.items, mws...)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	return Chain(handler, s.items...)
}

// Chain wraps handler so that mws[0] sees the request first. Nil entries are
// skipped.
func Chain(handler http.Handler, mws ...Middleware) http.Handler {
	for _, mw := range slices.Backward(mws) {
		if mw != nil {
			handler = mw(handler)
		}
	}
	return handler
}
