package core

import (
	"fmt"
	"net"

	"github.com/forgewebtools/forge-server/core/http"
	"github.com/forgewebtools/forge-server/core/router"
	"github.com/forgewebtools/forge-server/core/static"
	"github.com/forgewebtools/forge-server/logging"
)

// serveConfig is the read-mostly configuration snapshot carried by one
// connection job: the route table handle, the static fallback settings,
// and the logger.
type serveConfig struct {
	routes      *router.Table
	docRoot     string
	indexOf     bool
	log         *logging.Logger
	readBufSize int
}

// handle runs the full lifecycle of one accepted connection: one fixed-size
// read, parse, dispatch or static fallback, respond, close. The connection
// is exclusively owned by the worker executing this job.
func (c serveConfig) handle(conn net.Conn) {
	defer conn.Close()

	buf := make([]byte, c.readBufSize)
	if _, err := conn.Read(buf); err != nil {
		c.log.Warning(fmt.Sprintf("error: %v", err))
	}

	req, err := http.Parse(buf)
	if err != nil {
		// Malformed request line: dropped, no response is produced.
		return
	}

	c.log.Debug(fmt.Sprintf("method: %s, request: %s", req.Method, req.Path))

	if h := c.routes.Lookup(req.Path, req.Method); h != nil {
		c.log.Info("user route hit")
		c.invoke(h, req, conn)
		return
	}

	if c.docRoot != "" {
		static.NewResolver(c.docRoot, c.indexOf, c.log).Serve(conn, req.Path)
	}
}

// invoke runs a registered handler with a response bound to the connection.
// The deferred Flush is the flush-on-scope-exit guarantee: it runs on
// normal return, early return, and panic alike, and at most once.
func (c serveConfig) invoke(h http.HandlerFunc, req *http.Request, conn net.Conn) {
	resp := http.NewResponse(conn)
	defer resp.Flush()
	h(req, resp)
}
