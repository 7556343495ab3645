// Package core implements the server engine: the acceptor, the per-connection
// job, and the wiring between the worker pool, the dispatch table, and the
// static-file fallback.
package core

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"golang.org/x/net/netutil"
	"golang.org/x/sys/unix"

	"github.com/forgewebtools/forge-server/core/http"
	"github.com/forgewebtools/forge-server/core/pools"
	"github.com/forgewebtools/forge-server/core/router"
	"github.com/forgewebtools/forge-server/logging"
)

// DefaultHost is the listen address used when none is configured.
const DefaultHost = "127.0.0.1"

// Server is the engine's configuration surface and acceptor. Configure it,
// register routes, then call Start; the accept loop runs forever. One
// request is served per accepted connection.
type Server struct {
	routes  *router.Table
	docRoot string
	indexOf bool
	log     *logging.Logger

	host        string
	workers     int
	queueDepth  int
	readBufSize int
	maxConns    int

	pool *pools.Pool
}

// New returns a server with default settings and an empty route table.
func New() *Server {
	return &Server{
		routes:      router.NewTable(),
		host:        DefaultHost,
		workers:     pools.DefaultWorkers,
		queueDepth:  pools.DefaultQueueDepth,
		readBufSize: http.DefaultReadBufferSize,
	}
}

// SetLogger opens the log file at path and attaches it to the server. All
// engine logging is a no-op until this is called.
func (s *Server) SetLogger(path string) error {
	l, err := logging.New(path)
	if err != nil {
		return err
	}
	s.log = l
	return nil
}

// SetDocumentRoot validates root and enables the static-file fallback.
// It reports false, without blocking a later Start, when the path does not
// exist.
func (s *Server) SetDocumentRoot(root string) bool {
	if _, err := os.Stat(root); err != nil {
		s.log.Warning(fmt.Sprintf("document root %s is not valid", root))
		return false
	}
	s.docRoot = root
	s.log.Info(fmt.Sprintf("new document root was set to %s", root))
	return true
}

// DocumentRoot returns the configured document root, or "" when unset.
func (s *Server) DocumentRoot() string {
	return s.docRoot
}

// UseIndexOf toggles directory listings for the static-file fallback.
func (s *Server) UseIndexOf(enabled bool) {
	s.indexOf = enabled
}

// SetHost sets the listen address for Start.
func (s *Server) SetHost(host string) {
	if host != "" {
		s.host = host
	}
}

// SetWorkers sets the worker count of the pool created at Start.
func (s *Server) SetWorkers(n int) {
	if n > 0 {
		s.workers = n
	}
}

// SetQueueDepth sets the capacity of the shared job queue.
func (s *Server) SetQueueDepth(n int) {
	if n > 0 {
		s.queueDepth = n
	}
}

// SetReadBufferSize sets the size of the single read taken per connection.
func (s *Server) SetReadBufferSize(n int) {
	if n > 0 {
		s.readBufSize = n
	}
}

// SetMaxConns caps concurrently accepted connections. Zero means no cap.
func (s *Server) SetMaxConns(n int) {
	if n >= 0 {
		s.maxConns = n
	}
}

// Get registers a handler for GET requests to path.
func (s *Server) Get(path string, h http.HandlerFunc) {
	s.Handle("GET", path, h)
}

// Post registers a handler for POST requests to path.
func (s *Server) Post(path string, h http.HandlerFunc) {
	s.Handle("POST", path, h)
}

// Handle registers a handler for an exact (path, method) pair.
// Re-registering the same pair replaces the prior handler.
func (s *Server) Handle(method, path string, h http.HandlerFunc) {
	s.routes.Register(path, method, h)
	s.log.Info(fmt.Sprintf("registered route: %s, method: %s", path, method))
}

// Start binds a TCP listener on the configured host and port and serves on
// it. A bind failure is logged and returned; nothing else ever causes Start
// to return.
func (s *Server) Start(port int) error {
	ln, err := net.Listen("tcp", net.JoinHostPort(s.host, strconv.Itoa(port)))
	if err != nil {
		s.log.Warning(fmt.Sprintf("bind on port %d failed: %v", port, err))
		return err
	}
	s.log.Info(fmt.Sprintf("open TCP port %d for incoming connections", port))
	return s.Serve(ln)
}

// Serve runs the accept loop over ln. Each accepted connection becomes one
// pool job carrying a snapshot of the read-mostly serve configuration.
// Accept errors are logged and survived; the loop has no termination
// signal.
func (s *Server) Serve(ln net.Listener) error {
	if s.maxConns > 0 {
		ln = netutil.LimitListener(ln, s.maxConns)
	}

	s.pool = pools.New(s.workers, s.queueDepth)

	for {
		conn, err := ln.Accept()
		if err != nil {
			s.log.Warning(fmt.Sprintf("accept: %v", err))
			continue
		}
		tuneConn(conn)

		snap := s.snapshot()
		s.pool.Execute(func() {
			snap.handle(conn)
		})
	}
}

// Pool exposes the worker pool backing Serve, nil before serving starts.
func (s *Server) Pool() *pools.Pool {
	return s.pool
}

// snapshot clones the lightweight serve configuration handed to one job.
func (s *Server) snapshot() serveConfig {
	return serveConfig{
		routes:      s.routes,
		docRoot:     s.docRoot,
		indexOf:     s.indexOf,
		log:         s.log,
		readBufSize: s.readBufSize,
	}
}

// tuneConn disables Nagle batching and enables keepalive probes on an
// accepted socket. Failures are ignored; the connection still works with
// default socket options.
func tuneConn(conn net.Conn) {
	tcp, ok := conn.(*net.TCPConn)
	if !ok {
		return
	}
	raw, err := tcp.SyscallConn()
	if err != nil {
		return
	}
	raw.Control(func(fd uintptr) {
		unix.SetsockoptInt(int(fd), unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
		unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1)
	})
}
