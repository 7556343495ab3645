// Package router provides the exact-match dispatch table of the engine.
package router

import (
	"sync"

	"github.com/forgewebtools/forge-server/core/http"
)

type key struct {
	path   string
	method string
}

// Table maps (path, method) pairs to handlers. It is safe for concurrent
// use; registration can race with serving. Readers and writers take the
// same lock, there is no reader/writer distinction.
type Table struct {
	mu     sync.Mutex
	routes map[key]http.HandlerFunc
}

// NewTable returns an empty dispatch table.
func NewTable() *Table {
	return &Table{routes: make(map[key]http.HandlerFunc)}
}

// Register binds a handler to a (path, method) pair. Re-registering the
// same pair replaces the prior handler.
func (t *Table) Register(path, method string, h http.HandlerFunc) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes[key{path: path, method: method}] = h
}

// Lookup returns the handler for an exact (path, method) match, or nil.
// No wildcard, prefix, or trailing-slash normalization is applied.
func (t *Table) Lookup(path, method string) http.HandlerFunc {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.routes[key{path: path, method: method}]
}

// Len reports the number of registered routes.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.routes)
}
