package http

import (
	"fmt"
	"io"
)

// flusher is the optional flush hook of a transport.
type flusher interface {
	Flush() error
}

// Response is the write side of one connection for the lifetime of one job.
// Writes pass straight through to the transport with no buffering across
// calls; Flush runs at most once regardless of how the job exits.
type Response struct {
	w       io.Writer
	flushed bool
}

// NewResponse binds a response to a connection's write side.
func NewResponse(w io.Writer) *Response {
	return &Response{w: w}
}

// SetStatus writes the status line followed by a blank line. The reason
// phrase is always "OK" regardless of code, and a second call emits a
// second status line; both match the reference wire behavior.
func (r *Response) SetStatus(code int) error {
	_, err := fmt.Fprintf(r.w, "HTTP/1.1 %d OK\r\n\r\n", code)
	return err
}

// Write appends body bytes verbatim. Each call is an independent transport
// write.
func (r *Response) Write(b []byte) (int, error) {
	return r.w.Write(b)
}

// WriteString appends a string body verbatim.
func (r *Response) WriteString(s string) (int, error) {
	return io.WriteString(r.w, s)
}

// Flush flushes any unflushed transport state exactly once; subsequent
// calls are no-ops. The connection handler defers it so every exit path,
// including a handler panic, flushes.
func (r *Response) Flush() error {
	if r.flushed {
		return nil
	}
	r.flushed = true
	if f, ok := r.w.(flusher); ok {
		return f.Flush()
	}
	return nil
}
