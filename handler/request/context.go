package request

import (
	"context"
	"net/http"
	"strings"
)

// HeaderCaller caller identity header, set by the fronting gateway
const HeaderCaller = "X-Caller-Id"

type key int

const (
	callerKey key = iota
)

type ContextX struct {
	context.Context
}

// NewContext context extension
func NewContext(ctx context.Context) ContextX {
	return ContextX{
		Context: ctx,
	}
}

// WithCaller context with caller identity
func (c ContextX) WithCaller(caller string) context.Context {
	return context.WithValue(c, callerKey, caller)
}

// GetCaller get caller identity from context
func (c ContextX) GetCaller() (string, bool) {
	caller, ok := c.Value(callerKey).(string)
	return caller, ok && caller != ""
}

// CallerFrom caller identity of the request, empty if anonymous
func CallerFrom(ctx context.Context) string {
	caller, _ := NewContext(ctx).GetCaller()
	return caller
}

// WithCallerID middleware reading the caller identity header
func WithCallerID(next http.Handler) http.Handler {
	fn := func(w http.ResponseWriter, r *http.Request) {
		caller := strings.TrimSpace(r.Header.Get(HeaderCaller))
		if caller != "" {
			ctx := NewContext(r.Context()).WithCaller(caller)
			r = r.WithContext(ctx)
		}

		next.ServeHTTP(w, r)
	}

	return http.HandlerFunc(fn)
}
