// Package server exposes the exports over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	htmlexport "github.com/porticus-lab/go-html-export"
)

// maxBody bounds request bodies.
const maxBody = 16 << 20

// Exporter is the subset of [htmlexport.Exporter] the server needs.
type Exporter interface {
	ExportPDF(ctx context.Context, src htmlexport.Source, opts *htmlexport.ExportOptions) (*htmlexport.Result, error)
	ExportText(ctx context.Context, src htmlexport.Source, opts *htmlexport.ExportOptions) (*htmlexport.Result, error)
	ExportMarkdown(ctx context.Context, src htmlexport.Source, opts *htmlexport.ExportOptions) (*htmlexport.Result, error)
	ExportTable(rows []htmlexport.Row, columns []htmlexport.Column, opts *htmlexport.ExportOptions) (*htmlexport.Result, error)
}

// Server handles export requests.
type Server struct {
	exp      Exporter
	logger   *slog.Logger
	defaults htmlexport.ExportOptions
	router   chi.Router
	lookup   func(host string) ([]string, error)
}

// New returns a Server. defaults, which may be nil, are the options that
// request options are applied over.
func New(exp Exporter, logger *slog.Logger, defaults *htmlexport.ExportOptions) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Server{exp: exp, logger: logger, lookup: net.LookupHost}
	if defaults != nil {
		s.defaults = *defaults
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	r.Route("/v1/export", func(r chi.Router) {
		r.Post("/pdf", s.document(exp.ExportPDF))
		r.Post("/text", s.document(exp.ExportText))
		r.Post("/markdown", s.document(exp.ExportMarkdown))
		r.Post("/table", s.table)
	})
	s.router = r
	return s
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		start := time.Now()
		next.ServeHTTP(ww, r)
		s.logger.Info("request",
			"request_id", middleware.GetReqID(r.Context()),
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"elapsed", time.Since(start),
		)
	})
}

// documentRequest selects the content of a PDF, text or Markdown export.
// Local files cannot be read through the server, and URLs must point
// outside the server's own network.
type documentRequest struct {
	HTML     string          `json:"html"`
	URL      string          `json:"url"`
	Markdown string          `json:"markdown"`
	Selector string          `json:"selector"`
	Options  json.RawMessage `json:"options"`
}

type tableRequest struct {
	Rows    []htmlexport.Row    `json:"rows"`
	Columns []htmlexport.Column `json:"columns"`
	Options json.RawMessage     `json:"options"`
}

type exportFunc func(context.Context, htmlexport.Source, *htmlexport.ExportOptions) (*htmlexport.Result, error)

func (s *Server) document(export exportFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req documentRequest
		if err := decode(w, r, &req); err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		opts, err := s.options(req.Options)
		if err != nil {
			writeError(w, http.StatusBadRequest, err)
			return
		}
		if req.URL != "" {
			if err := s.checkRemoteURL(req.URL); err != nil {
				writeError(w, http.StatusBadRequest, err)
				return
			}
		}
		src := htmlexport.Source{HTML: req.HTML, URL: req.URL, Markdown: req.Markdown, Selector: req.Selector}
		res, err := export(r.Context(), src, opts)
		if err != nil {
			writeError(w, statusOf(err), err)
			return
		}
		writeResult(w, res)
	}
}

func (s *Server) table(w http.ResponseWriter, r *http.Request) {
	var req tableRequest
	if err := decode(w, r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	opts, err := s.options(req.Options)
	if err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	res, err := s.exp.ExportTable(req.Rows, req.Columns, opts)
	if err != nil {
		writeError(w, statusOf(err), err)
		return
	}
	writeResult(w, res)
}

// options applies the request's options over the server defaults.
func (s *Server) options(raw json.RawMessage) (*htmlexport.ExportOptions, error) {
	opts := s.defaults
	if opts.IncludeDate != nil {
		v := *opts.IncludeDate
		opts.IncludeDate = &v
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &opts); err != nil {
			return nil, fmt.Errorf("invalid options: %w", err)
		}
	}
	return &opts, nil
}

// checkRemoteURL accepts http and https URLs whose host does not resolve
// to a loopback, private, link-local or unspecified address. Hosts that do
// not resolve are let through; the fetch fails later.
func (s *Server) checkRemoteURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: invalid URL: %v", htmlexport.ErrInvalidSource, err)
	}
	switch strings.ToLower(u.Scheme) {
	case "http", "https":
	default:
		return fmt.Errorf("%w: only http and https URLs are allowed", htmlexport.ErrInvalidSource)
	}
	host := u.Hostname()
	if host == "" {
		return fmt.Errorf("%w: URL has no host", htmlexport.ErrInvalidSource)
	}

	addrs := []string{host}
	if net.ParseIP(host) == nil {
		if addrs, err = s.lookup(host); err != nil {
			return nil
		}
	}
	for _, a := range addrs {
		if ip := net.ParseIP(a); ip != nil && internalIP(ip) {
			return fmt.Errorf("%w: URL targets a private or loopback address", htmlexport.ErrInvalidSource)
		}
	}
	return nil
}

func internalIP(ip net.IP) bool {
	return ip.IsLoopback() || ip.IsPrivate() || ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast()
}

func decode(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBody)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("invalid request body: %w", err)
	}
	return nil
}

// statusOf maps an export failure to an HTTP status.
func statusOf(err error) int {
	switch {
	case errors.Is(err, htmlexport.ErrMissingData), errors.Is(err, htmlexport.ErrInvalidSource):
		return http.StatusBadRequest
	case errors.Is(err, htmlexport.ErrDetachedNode), errors.Is(err, htmlexport.ErrEmptyContent):
		return http.StatusUnprocessableEntity
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

func contentType(filename string) string {
	switch filepath.Ext(filename) {
	case ".txt":
		return "text/plain; charset=utf-8"
	case ".md":
		return "text/markdown; charset=utf-8"
	default:
		return "application/pdf"
	}
}

func writeResult(w http.ResponseWriter, res *htmlexport.Result) {
	w.Header().Set("Content-Type", contentType(res.Filename()))
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": res.Filename()}))
	w.WriteHeader(http.StatusOK)
	res.WriteTo(w)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}

// Run serves h on addr until ctx is done, then shuts down gracefully.
func Run(ctx context.Context, addr string, h http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("server: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 10*time.Second)
	defer cancel()
	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server: shutdown: %w", err)
	}
	return nil
}
