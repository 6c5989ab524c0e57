package sitehandler

import (
	"io/fs"
	"net/http"
)

// Handler serves the landing page from the active content snapshot. It is
// mounted as the router's NotFound and MethodNotAllowed handler, so it sees
// every request the avatar API does not claim.
type Handler struct {
	opts Options
}

func New(opts Options) (*Handler, error) {
	opts.setDefaults()
	if err := opts.validate(); err != nil {
		return nil, err
	}
	return &Handler{opts: opts}, nil
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	snap, ok := h.opts.Content.Get()
	if !ok || snap == nil || snap.FS == nil {
		h.serveMaintenance(w, r)
		return
	}

	res := resolvePath(r.URL.Path, snap.FS)
	switch {
	case res.redirect != "":
		http.Redirect(w, r, res.redirect, http.StatusPermanentRedirect)
	case res.file == "":
		h.serveNotFound(w, r, snap.FS)
	default:
		if cc := cacheControlForFile(res.file, h.opts); cc != "" {
			w.Header().Set("Cache-Control", cc)
		}
		http.ServeFileFS(w, r, snap.FS, res.file)
	}
}

func (h *Handler) serveMaintenance(w http.ResponseWriter, r *http.Request) {
	h.opts.Logger.Warn(r.Context(), "no landing snapshot, serving maintenance page")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Retry-After", "60")
	serveFileWithStatus(w, r, http.StatusServiceUnavailable, h.opts.FallbackFS, h.opts.MaintenanceFile)
}

// serveNotFound prefers the snapshot's own 404 page, then the embedded one,
// then plain text.
func (h *Handler) serveNotFound(w http.ResponseWriter, r *http.Request, siteFS fs.FS) {
	w.Header().Set("Cache-Control", "no-store")

	switch {
	case existsFile(siteFS, h.opts.Site404File):
		serveFileWithStatus(w, r, http.StatusNotFound, siteFS, h.opts.Site404File)
	case existsFile(h.opts.FallbackFS, h.opts.Fallback404File):
		serveFileWithStatus(w, r, http.StatusNotFound, h.opts.FallbackFS, h.opts.Fallback404File)
	default:
		http.Error(w, "404 page not found", http.StatusNotFound)
	}
}

// statusOverrideWriter replaces the 200 that http.ServeFileFS writes with a
// fixed status.
type statusOverrideWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusOverrideWriter) WriteHeader(code int) {
	if !w.wroteHeader {
		w.wroteHeader = true
		code = w.status
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusOverrideWriter) Write(p []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(w.status)
	}
	return w.ResponseWriter.Write(p)
}

func serveFileWithStatus(w http.ResponseWriter, r *http.Request, status int, fsys fs.FS, name string) {
	// conditional headers would turn a 404 or 503 into a 304
	r.Header.Del("If-Modified-Since")
	r.Header.Del("If-None-Match")
	http.ServeFileFS(&statusOverrideWriter{ResponseWriter: w, status: status}, r, fsys, name)
}
