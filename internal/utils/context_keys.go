package utils

// contextKey is a type used for context keys to avoid conflicts with other packages' context keys.
type contextKey struct {
	name string
}

// Returns string representation of the context key.
func (c *contextKey) String() string {
	return c.name
}

// UserIdKey is the context key used for storing the authenticated user ID in a request context.
var UserIdKey = &contextKey{"userId"}

// TraceIdKey is the context key used for storing the request trace ID.
var TraceIdKey = &contextKey{"traceId"}

// SanitizedPayloadKey is the context key used for storing the validated request payload.
var SanitizedPayloadKey = &contextKey{"sanitizedPayload"}
