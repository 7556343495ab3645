/*
Package forge provides a minimal concurrent HTTP server engine.

The engine accepts TCP connections, parses a single request per connection
with one fixed-size read, dispatches to user-registered handlers by exact
(path, method) match, and falls back to serving files from a configured
document root. Connection jobs run on a fixed-size worker pool; one worker
serves one connection at a time.

Quick start:

	package main

	import (
	    "github.com/forgewebtools/forge-server/core"
	    "github.com/forgewebtools/forge-server/core/http"
	)

	func main() {
	    srv := core.New()
	    srv.SetLogger("server.log")
	    srv.SetDocumentRoot("./www/")
	    srv.UseIndexOf(true)

	    srv.Get("/hello/", func(req *http.Request, resp *http.Response) {
	        resp.SetStatus(200)
	        resp.WriteString("hello " + req.Query["name"])
	    })

	    srv.Start(7878)
	}

Modules:

  - config: YAML/default configuration loading
  - app: application lifecycle (config to running server)
  - core: acceptor and per-connection jobs
  - core/http: request parsing and the response sink
  - core/router: exact-match dispatch table
  - core/static: document-root file fallback
  - core/pools: fixed-size worker pool
  - logging: serialized append-only file logger

The wire contract is deliberately small: only the request line is parsed,
responses carry no Content-Length or Content-Type, there is no keep-alive,
and exactly one response is written per accepted connection.
*/
package forge
