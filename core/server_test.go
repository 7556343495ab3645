package core

import (
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/forgewebtools/forge-server/core/http"
)

// startServer runs srv on an ephemeral listener and returns its address.
// The accept loop has no shutdown signal; the goroutine lives until the
// test binary exits.
func startServer(t *testing.T, srv *Server) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	go srv.Serve(ln)
	return ln.Addr().String()
}

// roundTrip writes one raw request and reads the connection to EOF.
func roundTrip(t *testing.T, addr, raw string) string {
	t.Helper()
	conn, err := net.DialTimeout("tcp", addr, 2*time.Second)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer conn.Close()

	if _, err := conn.Write([]byte(raw)); err != nil {
		t.Fatalf("write: %v", err)
	}
	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	resp, err := io.ReadAll(conn)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(resp)
}

func TestServer_DispatchesRegisteredRoute(t *testing.T) {
	srv := New()
	srv.Get("/hello/", func(req *http.Request, resp *http.Response) {
		resp.SetStatus(200)
		resp.WriteString("hello " + req.Query["name"])
	})
	addr := startServer(t, srv)

	got := roundTrip(t, addr, "GET /hello/?name=ada HTTP/1.1\r\nHost: x\r\n\r\n")
	if got != "HTTP/1.1 200 OK\r\n\r\nhello ada" {
		t.Errorf("wire = %q", got)
	}
}

func TestServer_PostParamsReachHandler(t *testing.T) {
	srv := New()
	srv.Post("/form/", func(req *http.Request, resp *http.Response) {
		resp.SetStatus(200)
		resp.WriteString(req.PostForm["fname"] + " " + req.PostForm["lname"])
	})
	addr := startServer(t, srv)

	got := roundTrip(t, addr, "POST /form/ HTTP/1.1\r\nHost: x\r\n\r\nfname=ada&lname=lovelace")
	if !strings.HasSuffix(got, "ada lovelace") {
		t.Errorf("wire = %q", got)
	}
}

func TestServer_MethodsAreDistinct(t *testing.T) {
	srv := New()
	srv.Get("/r/", func(_ *http.Request, resp *http.Response) {
		resp.SetStatus(200)
		resp.WriteString("get")
	})
	srv.Post("/r/", func(_ *http.Request, resp *http.Response) {
		resp.SetStatus(200)
		resp.WriteString("post")
	})
	addr := startServer(t, srv)

	if got := roundTrip(t, addr, "GET /r/ HTTP/1.1\r\n\r\n"); !strings.HasSuffix(got, "get") {
		t.Errorf("GET wire = %q", got)
	}
	if got := roundTrip(t, addr, "POST /r/ HTTP/1.1\r\n\r\n"); !strings.HasSuffix(got, "post") {
		t.Errorf("POST wire = %q", got)
	}
}

func TestServer_HandlerClosureSharesCallerState(t *testing.T) {
	var counter atomic.Int64

	srv := New()
	srv.Get("/counter/", func(_ *http.Request, resp *http.Response) {
		resp.SetStatus(200)
		resp.WriteString(fmt.Sprintf("%d", counter.Add(1)))
	})
	addr := startServer(t, srv)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			roundTrip(t, addr, "GET /counter/ HTTP/1.1\r\n\r\n")
		}()
	}
	wg.Wait()

	if counter.Load() != 10 {
		t.Errorf("expected 10 handler invocations, got %d", counter.Load())
	}
}

func TestServer_StaticFileFallback(t *testing.T) {
	root := t.TempDir()
	content := []byte("static body bytes")
	if err := os.WriteFile(filepath.Join(root, "f.txt"), content, 0o644); err != nil {
		t.Fatal(err)
	}

	srv := New()
	if !srv.SetDocumentRoot(root) {
		t.Fatal("SetDocumentRoot returned false for an existing directory")
	}
	addr := startServer(t, srv)

	got := roundTrip(t, addr, "GET /f.txt HTTP/1.1\r\n\r\n")
	if got != "HTTP/1.1 200 OK\r\n\r\nstatic body bytes" {
		t.Errorf("wire = %q", got)
	}
}

func TestServer_RouteTakesPrecedenceOverFile(t *testing.T) {
	root := t.TempDir()
	if err := os.WriteFile(filepath.Join(root, "f.txt"), []byte("file"), 0o644); err != nil {
		t.Fatal(err)
	}

	srv := New()
	srv.SetDocumentRoot(root)
	srv.Get("/f.txt", func(_ *http.Request, resp *http.Response) {
		resp.SetStatus(200)
		resp.WriteString("handler")
	})
	addr := startServer(t, srv)

	if got := roundTrip(t, addr, "GET /f.txt HTTP/1.1\r\n\r\n"); !strings.HasSuffix(got, "handler") {
		t.Errorf("wire = %q", got)
	}
}

func TestServer_NoRouteNoFileIs404(t *testing.T) {
	srv := New()
	srv.SetDocumentRoot(t.TempDir())
	addr := startServer(t, srv)

	got := roundTrip(t, addr, "GET /missing HTTP/1.1\r\n\r\n")
	if !strings.HasPrefix(got, "HTTP/1.1 404 NOT FOUND\r\n\r\n<html><h1>404 not found</h1>") {
		t.Errorf("wire = %q", got)
	}
}

func TestServer_NoRouteNoDocRootProducesNothing(t *testing.T) {
	srv := New()
	addr := startServer(t, srv)

	if got := roundTrip(t, addr, "GET /missing HTTP/1.1\r\n\r\n"); got != "" {
		t.Errorf("expected empty response without routes or document root, got %q", got)
	}
}

func TestServer_MalformedRequestLineIsDropped(t *testing.T) {
	srv := New()
	srv.Get("/x/", func(_ *http.Request, resp *http.Response) {
		resp.SetStatus(200)
	})
	addr := startServer(t, srv)

	if got := roundTrip(t, addr, "GARBAGE\r\n\r\n"); got != "" {
		t.Errorf("expected silent drop, got %q", got)
	}
}

func TestServer_HandlerPanicDoesNotKillService(t *testing.T) {
	srv := New()
	srv.Get("/boom/", func(*http.Request, *http.Response) {
		panic("handler fault")
	})
	srv.Get("/ok/", func(_ *http.Request, resp *http.Response) {
		resp.SetStatus(200)
		resp.WriteString("still alive")
	})
	addr := startServer(t, srv)

	roundTrip(t, addr, "GET /boom/ HTTP/1.1\r\n\r\n")

	if got := roundTrip(t, addr, "GET /ok/ HTTP/1.1\r\n\r\n"); !strings.HasSuffix(got, "still alive") {
		t.Errorf("service did not survive a handler panic, wire = %q", got)
	}
}

func TestServer_SetDocumentRootRejectsMissingPath(t *testing.T) {
	srv := New()
	if srv.SetDocumentRoot(filepath.Join(t.TempDir(), "absent")) {
		t.Error("SetDocumentRoot accepted a nonexistent path")
	}
	if srv.DocumentRoot() != "" {
		t.Errorf("document root set despite rejection: %q", srv.DocumentRoot())
	}
}

func TestServer_ConcurrentSlowHandlers(t *testing.T) {
	const workers = 4

	release := make(chan struct{})
	var inFlight atomic.Int64

	srv := New()
	srv.SetWorkers(workers)
	srv.Get("/slow/", func(_ *http.Request, resp *http.Response) {
		inFlight.Add(1)
		<-release
		resp.SetStatus(200)
	})
	addr := startServer(t, srv)

	var wg sync.WaitGroup
	for i := 0; i < workers+1; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			roundTrip(t, addr, "GET /slow/ HTTP/1.1\r\n\r\n")
		}()
	}

	// All workers fill up; the extra request waits in the queue.
	deadline := time.Now().Add(2 * time.Second)
	for inFlight.Load() < workers && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if got := inFlight.Load(); got != workers {
		t.Fatalf("expected %d handlers in flight, got %d", workers, got)
	}

	close(release)
	wg.Wait()

	// The queued request was eventually served too.
	if got := inFlight.Load(); got != workers+1 {
		t.Errorf("expected %d handlers served in total, got %d", workers+1, got)
	}
}
