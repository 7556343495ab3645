package http

import (
	"errors"
	"strings"
)

// DefaultReadBufferSize is the size of the single read taken from a
// connection. Requests larger than the buffer are truncated; there is no
// accumulation loop.
const DefaultReadBufferSize = 1024

// ErrMalformedRequest reports a request line with fewer than two tokens.
// Such connections produce no response at all.
var ErrMalformedRequest = errors.New("malformed request line")

// Parse decodes one raw read buffer into a Request.
//
// The buffer is decoded as text with NUL padding stripped and split on CRLF.
// The first line is tokenized on spaces: token 0 is the method, token 1 is
// path-plus-query. The body is taken to be the last line of the buffer and
// parsed as post parameters; there is no Content-Length handling.
func Parse(data []byte) (*Request, error) {
	text := strings.ReplaceAll(string(data), "\x00", "")
	lines := strings.Split(text, "\r\n")

	fields := strings.Split(lines[0], " ")
	if len(fields) < 2 {
		return nil, ErrMalformedRequest
	}

	path, rawQuery, _ := strings.Cut(fields[1], "?")

	return &Request{
		Method:   fields[0],
		Path:     path,
		Query:    ParseParams(rawQuery),
		PostForm: ParseParams(lines[len(lines)-1]),
	}, nil
}

// ParseParams parses an "a=1&b=2" string into a map. An empty string yields
// an empty map, a key without "=" maps to the empty string, and duplicate
// keys keep the last occurrence.
func ParseParams(s string) map[string]string {
	params := make(map[string]string)
	if s == "" {
		return params
	}
	for _, pair := range strings.Split(s, "&") {
		kv := strings.SplitN(pair, "=", 2)
		if len(kv) == 2 {
			params[kv[0]] = kv[1]
		} else {
			params[kv[0]] = ""
		}
	}
	return params
}
