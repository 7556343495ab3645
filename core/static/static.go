// Package static serves the document-root fallback for requests no route
// matched.
package static

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/forgewebtools/forge-server/logging"
)

const (
	statusOK       = "HTTP/1.1 200 OK\r\n\r\n"
	statusNotFound = "HTTP/1.1 404 NOT FOUND\r\n\r\n"

	notFoundBody = "<html><h1>404 not found</h1><hr> powered by forge</html>"
)

// Resolver maps virtual paths onto a document root. Resolved paths are
// normalized and contained within the root, so parent-directory segments
// cannot escape it; traversal attempts resolve inside the root and usually
// end in a 404.
type Resolver struct {
	root    string
	indexOf bool
	log     *logging.Logger
}

// NewResolver returns a resolver over root. indexOf enables directory
// listings.
func NewResolver(root string, indexOf bool, log *logging.Logger) *Resolver {
	return &Resolver{root: root, indexOf: indexOf, log: log}
}

// Serve writes the complete wire response for vpath to w.
//
// A regular file is read fully and sent as a 200 with its raw bytes; no
// Content-Type or Content-Length is emitted. A directory produces a listing
// when enabled and nothing at all when disabled. A missing path produces
// the fixed 404 body unconditionally.
func (r *Resolver) Serve(w io.Writer, vpath string) {
	requested := r.resolve(vpath)

	info, err := os.Stat(requested)
	switch {
	case err == nil && info.Mode().IsRegular():
		r.log.Info(fmt.Sprintf("requested file %s exists", requested))
		body, err := os.ReadFile(requested)
		if err != nil {
			r.log.Warning(fmt.Sprintf("error: %v", err))
		} else {
			r.log.Info(fmt.Sprintf("\t%d bytes were read", len(body)))
		}
		r.write(w, append([]byte(statusOK), body...))

	case err == nil && info.IsDir() && r.indexOf:
		r.log.Info(fmt.Sprintf("requested path %s is directory", requested))
		index, err := r.indexPage(requested, strings.TrimLeft(vpath, "/"))
		if err != nil {
			r.log.Warning(fmt.Sprintf("error: %v", err))
			return
		}
		r.write(w, []byte(statusOK+index))

	case err == nil && info.IsDir():
		// Listing disabled: a bare directory request produces no response.

	default:
		r.log.Info("status 404: not found")
		r.write(w, []byte(statusNotFound+notFoundBody))
	}
}

// resolve joins vpath onto the root. The leading-slash prepend before Clean
// keeps ".." segments from climbing above the document root.
func (r *Resolver) resolve(vpath string) string {
	trimmed := strings.TrimLeft(vpath, "/")
	return filepath.Join(r.root, filepath.Clean("/"+trimmed))
}

// indexPage renders the immediate entries of dir plus a parent link.
func (r *Resolver) indexPage(dir, vpath string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	fmt.Fprintf(&b, "<html>Index of <b>/%s</b><br><br><ul>", vpath)
	b.WriteString("<li><a href='..'>..</li>")
	for _, e := range entries {
		fmt.Fprintf(&b, "<li><a href='%s/%s'>%s</li>", vpath, e.Name(), e.Name())
	}
	b.WriteString("</ul></html>")
	return b.String(), nil
}

func (r *Resolver) write(w io.Writer, b []byte) {
	if _, err := w.Write(b); err != nil {
		r.log.Warning(fmt.Sprintf("error: %v", err))
	}
}
