// Package http holds the request/response types of the engine: the
// request-line parser and the connection-bound response sink.
package http

// HandlerFunc handles one dispatched request. Handlers may close over
// caller-owned shared state; the engine never synchronizes that state.
type HandlerFunc func(*Request, *Response)

// Request carries the data sent by the caller, built fresh per connection.
// The maps must not be mutated after parsing.
type Request struct {
	Method string
	Path   string

	// Query holds the parameters of the path's trailing "?..." part.
	Query map[string]string

	// PostForm holds the parameters of the request body.
	PostForm map[string]string
}
