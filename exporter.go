package htmlexport

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/google/uuid"

	"github.com/porticus-lab/go-html-export/internal/normalize"
	"github.com/porticus-lab/go-html-export/internal/paginate"
	"github.com/porticus-lab/go-html-export/internal/pdfdoc"
	"github.com/porticus-lab/go-html-export/internal/raster"
)

// Exporter turns rendered HTML into PDF, plain-text and Markdown
// documents.
//
// An Exporter manages a headless browser instance that is reused across
// exports. It is safe for concurrent use: every export runs in its own
// tab and works on its own copy of the selected element.
//
// Call [Exporter.Close] when the Exporter is no longer needed to release
// browser resources.
type Exporter struct {
	cfg           exporterConfig
	allocCtx      context.Context
	allocCancel   context.CancelFunc
	browserCtx    context.Context
	browserCancel context.CancelFunc

	mu     sync.Mutex
	closed bool
}

// NewExporter creates an Exporter with the given options.
//
// It starts a headless browser in the background. The caller must call
// [Exporter.Close] when finished.
func NewExporter(opts ...Option) (*Exporter, error) {
	cfg := defaultConfig()
	for _, o := range opts {
		o(&cfg)
	}

	if cfg.chromePath == "" && cfg.autoDownload {
		path, err := resolveBrowser()
		if err != nil {
			return nil, err
		}
		cfg.chromePath = path
	}

	allocOpts := append(
		chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("disable-translate", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("hide-scrollbars", true),
		chromedp.Flag("headless", cfg.headless),
		chromedp.WindowSize(cfg.viewportWidth, 1024),
	)
	if cfg.chromePath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.chromePath))
	}
	if cfg.noSandbox {
		allocOpts = append(allocOpts, chromedp.Flag("no-sandbox", true))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), allocOpts...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)

	// Start the browser eagerly so errors surface at creation time.
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("htmlexport: starting browser: %w", err)
	}

	cfg.logger.Debug("browser started", "chrome", cfg.chromePath, "viewport_width", cfg.viewportWidth)
	return &Exporter{
		cfg:           cfg,
		allocCtx:      allocCtx,
		allocCancel:   allocCancel,
		browserCtx:    browserCtx,
		browserCancel: browserCancel,
	}, nil
}

// Close releases all resources held by the Exporter, including the
// browser process. Close is idempotent.
func (e *Exporter) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true
	e.browserCancel()
	e.allocCancel()
	return nil
}

func (e *Exporter) checkClosed() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return ErrClosed
	}
	return nil
}

// call carries the diagnostics of one export.
type call struct {
	id    string
	op    string
	log   *slog.Logger
	start time.Time
}

func begin(logger *slog.Logger, op, selector string) *call {
	id := uuid.NewString()
	return &call{
		id:    id,
		op:    op,
		log:   logger.With("call_id", id, "op", op, "selector", selector),
		start: time.Now(),
	}
}

// fail logs err with attrs and wraps it for the caller.
func (c *call) fail(err error, attrs ...any) error {
	attrs = append(attrs, "error", err, "elapsed", time.Since(c.start))
	c.log.Error("export failed", attrs...)
	return &ExportError{Op: c.op, Err: err}
}

func (c *call) done(attrs ...any) {
	attrs = append(attrs, "elapsed", time.Since(c.start))
	c.log.Info("export done", attrs...)
}

// cloneAttrs describes the element an export worked on.
func cloneAttrs(c *normalize.Clone) []any {
	if c == nil {
		return nil
	}
	return []any{
		"node", c.Kind,
		"children", c.Children,
		"width", c.Box.Width,
		"height", c.Box.Height,
	}
}

// session loads src in a new tab and runs fn with the tab context. The tab
// is closed when fn returns or ctx is done.
func (e *Exporter) session(ctx context.Context, src Source, fn func(tab context.Context) error) error {
	target, doc, err := src.target()
	if err != nil {
		return err
	}

	if e.cfg.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, e.cfg.timeout)
		defer cancel()
	}

	tabCtx, tabCancel := chromedp.NewContext(e.browserCtx)
	defer tabCancel()
	stop := context.AfterFunc(ctx, tabCancel)
	defer stop()

	actions := []chromedp.Action{chromedp.Navigate(target)}
	if doc != "" {
		actions = append(actions, setContent(doc))
	}
	actions = append(actions, chromedp.WaitReady("body", chromedp.ByQuery))
	if err := chromedp.Run(tabCtx, actions...); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			err = ctxErr
		}
		return fmt.Errorf("htmlexport: loading page: %w", err)
	}
	return fn(tabCtx)
}

// setContent replaces the document of the tab's main frame.
func setContent(doc string) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		tree, err := page.GetFrameTree().Do(ctx)
		if err != nil {
			return err
		}
		return page.SetDocumentContent(tree.Frame.ID, doc).Do(ctx)
	})
}

// ExportPDF captures the element selected by src and lays it out across
// PDF pages. If opts is nil, [DefaultExportOptions] values are used.
//
// The element is copied and restyled with fixed font sizes and plain
// colours before capture; the page itself is left untouched. The result
// is only returned once the whole document has been assembled.
func (e *Exporter) ExportPDF(ctx context.Context, src Source, opts *ExportOptions) (*Result, error) {
	c := begin(e.cfg.logger, "pdf", src.selector())
	if err := e.checkClosed(); err != nil {
		return nil, c.fail(err)
	}

	o := opts.resolved()
	now := e.cfg.now()
	g := o.geometry(now)
	if err := g.Validate(); err != nil {
		return nil, c.fail(err)
	}

	hostID := "htmlexport-" + c.id
	var (
		img   *raster.Image
		clone *normalize.Clone
	)
	err := e.session(ctx, src, func(tab context.Context) error {
		var err error
		clone, err = normalize.With(tab, src.selector(), hostID, e.cfg.table, func(cl *normalize.Clone) error {
			c.log.Debug("normalized", cloneAttrs(cl)...)
			var err error
			img, err = raster.Capture(tab, raster.Region(cl.Box), raster.Options{Scale: e.cfg.scale})
			return err
		})
		return err
	})
	if err != nil {
		return nil, c.fail(err, cloneAttrs(clone)...)
	}

	plan, err := paginate.Compose(img.Width, img.Height, g)
	if errors.Is(err, paginate.ErrTooFewRows) {
		err = fmt.Errorf("%w: %v", ErrEmptyContent, err)
	}
	if err != nil {
		return nil, c.fail(err, cloneAttrs(clone)...)
	}
	data, err := pdfdoc.Produce(img, plan, paginate.Decorate(plan, o.decorations(now)), g, o.metadata(now))
	if err != nil {
		return nil, c.fail(err, cloneAttrs(clone)...)
	}
	if err := verify(data, plan.Total()); err != nil {
		return nil, c.fail(err, cloneAttrs(clone)...)
	}

	c.done(append(cloneAttrs(clone), "pages", plan.Total(), "bytes", len(data))...)
	return newResult(data, o.Filename, ".pdf"), nil
}

// verify parses a produced PDF and checks its page count.
func verify(data []byte, pages int) error {
	info, err := pdfdoc.Inspect(bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	if info.Pages != pages {
		return fmt.Errorf("%w: wrote %d pages, planned %d", ErrSerialization, info.Pages, pages)
	}
	return nil
}

// subtreeScript returns the markup of the element matched by selector.
const subtreeScript = `(selector) => {
	const el = document.querySelector(selector);
	if (!el) {
		return { status: "missing" };
	}
	const res = { kind: el.tagName.toLowerCase(), children: el.childElementCount };
	if (!el.isConnected || el.getClientRects().length === 0) {
		return Object.assign({ status: "detached" }, res);
	}
	return Object.assign({ status: "ok", html: el.outerHTML }, res);
}`

type subtree struct {
	Status   string `json:"status"`
	Kind     string `json:"kind"`
	Children int    `json:"children"`
	HTML     string `json:"html"`
}

func (s subtree) attrs() []any {
	if s.Kind == "" {
		return nil
	}
	return []any{"node", s.Kind, "children", s.Children}
}

// subtreeHTML loads src and returns the outer HTML of the selected
// element.
func (e *Exporter) subtreeHTML(ctx context.Context, src Source) (subtree, error) {
	sel, err := json.Marshal(src.selector())
	if err != nil {
		return subtree{}, fmt.Errorf("htmlexport: encoding selector: %w", err)
	}
	expr := "(" + subtreeScript + ")(" + string(sel) + ")"

	var res subtree
	err = e.session(ctx, src, func(tab context.Context) error {
		return chromedp.Run(tab, chromedp.Evaluate(expr, &res))
	})
	if err != nil {
		return res, err
	}
	switch res.Status {
	case "ok":
		return res, nil
	case "missing":
		return res, fmt.Errorf("%w: no element matches %q", ErrDetachedNode, src.selector())
	default:
		return res, fmt.Errorf("%w: <%s> matched by %q is not rendered", ErrDetachedNode, res.Kind, src.selector())
	}
}

// ExportText reconstructs the element selected by src as plain text:
// headings are underlined, paragraphs wrapped at 80 columns and tables
// laid out in fixed-width columns. If opts is nil, [DefaultExportOptions]
// values are used.
func (e *Exporter) ExportText(ctx context.Context, src Source, opts *ExportOptions) (*Result, error) {
	c := begin(e.cfg.logger, "text", src.selector())
	if err := e.checkClosed(); err != nil {
		return nil, c.fail(err)
	}
	o := opts.resolved()

	st, err := e.subtreeHTML(ctx, src)
	if err != nil {
		return nil, c.fail(err, st.attrs()...)
	}
	text, err := formatText(st.HTML, o, e.cfg.now())
	if err != nil {
		return nil, c.fail(err, st.attrs()...)
	}

	c.done(append(st.attrs(), "bytes", len(text))...)
	return newResult([]byte(text), o.Filename, ".txt"), nil
}

// ExportMarkdown converts the element selected by src to Markdown. If
// opts is nil, [DefaultExportOptions] values are used.
func (e *Exporter) ExportMarkdown(ctx context.Context, src Source, opts *ExportOptions) (*Result, error) {
	c := begin(e.cfg.logger, "markdown", src.selector())
	if err := e.checkClosed(); err != nil {
		return nil, c.fail(err)
	}
	o := opts.resolved()

	st, err := e.subtreeHTML(ctx, src)
	if err != nil {
		return nil, c.fail(err, st.attrs()...)
	}
	md, err := toMarkdown(st.HTML, o)
	if err != nil {
		return nil, c.fail(err, st.attrs()...)
	}

	c.done(append(st.attrs(), "bytes", len(md))...)
	return newResult([]byte(md), o.Filename, ".md"), nil
}

// ExportTable lays rows out as a paginated PDF grid, using the
// Exporter's clock and logger. It does not use the browser.
func (e *Exporter) ExportTable(rows []Row, columns []Column, opts *ExportOptions) (*Result, error) {
	return exportTable(e.cfg.logger, e.cfg.now(), rows, columns, opts)
}

// --- Package-level convenience functions ---

// ExportPDF exports src to PDF using a temporary [Exporter].
// This is convenient for one-off exports. For repeated use, create an
// [Exporter] with [NewExporter] to reuse the browser instance.
func ExportPDF(ctx context.Context, src Source, opts *ExportOptions, options ...Option) (*Result, error) {
	e, err := NewExporter(options...)
	if err != nil {
		return nil, err
	}
	defer e.Close()
	return e.ExportPDF(ctx, src, opts)
}

// ExportText exports src to plain text using a temporary [Exporter].
func ExportText(ctx context.Context, src Source, opts *ExportOptions, options ...Option) (*Result, error) {
	e, err := NewExporter(options...)
	if err != nil {
		return nil, err
	}
	defer e.Close()
	return e.ExportText(ctx, src, opts)
}

// ExportMarkdown exports src to Markdown using a temporary [Exporter].
func ExportMarkdown(ctx context.Context, src Source, opts *ExportOptions, options ...Option) (*Result, error) {
	e, err := NewExporter(options...)
	if err != nil {
		return nil, err
	}
	defer e.Close()
	return e.ExportMarkdown(ctx, src, opts)
}
