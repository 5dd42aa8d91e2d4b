package normalize

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"
)

// ErrDetachedNode is returned when the selector does not resolve to an
// element attached to a rendered surface.
var ErrDetachedNode = errors.New("normalize: node is not attached to a rendered surface")

// releaseTimeout bounds the detach call, which runs even after the
// caller's context is done.
const releaseTimeout = 5 * time.Second

// acquireScript clones the element matched by selector into an off-screen
// host placed below the document, and reports the computed font size of
// every element of the copy in document order.
const acquireScript = `(selector, hostID) => {
	const src = document.querySelector(selector);
	if (!src) {
		return { status: "missing" };
	}
	const info = { kind: src.tagName.toLowerCase(), children: src.childElementCount };
	if (!src.isConnected || src.getClientRects().length === 0) {
		return Object.assign({ status: "detached" }, info);
	}
	const doc = document.documentElement;
	const host = document.createElement("div");
	host.id = hostID;
	host.setAttribute("style", [
		"position:absolute",
		"left:0",
		"top:" + (Math.ceil(doc.scrollHeight) + 64) + "px",
		"width:" + Math.ceil(src.getBoundingClientRect().width) + "px",
		"margin:0",
		"padding:16px",
		"box-sizing:border-box",
		"background:#ffffff",
		"color:#000000",
		"z-index:2147483647",
	].join(";"));
	host.appendChild(src.cloneNode(true));
	document.body.appendChild(host);
	const nodes = [];
	host.querySelectorAll("*").forEach((el) => {
		nodes.push({ tag: el.tagName.toLowerCase(), fontSize: parseFloat(getComputedStyle(el).fontSize) || 0 });
	});
	return Object.assign({ status: "ok", nodes: nodes }, info);
}`

// applyScript sets the inline style of every element of the host, in
// document order, and measures the host. An empty copy measures zero
// even though the host is padded.
const applyScript = `(hostID, styles) => {
	const host = document.getElementById(hostID);
	if (!host || !host.firstElementChild) {
		return null;
	}
	const els = host.querySelectorAll("*");
	styles.forEach((css, i) => {
		if (css && els[i]) {
			els[i].style.cssText += ";" + css;
		}
	});
	const r = host.getBoundingClientRect();
	const box = { x: r.left + window.scrollX, y: r.top + window.scrollY, width: r.width, height: r.height };
	const inner = host.firstElementChild.getBoundingClientRect();
	if (inner.width === 0 || inner.height === 0) {
		box.width = inner.width;
		box.height = inner.height;
	}
	return box;
}`

const releaseScript = `(hostID) => {
	const host = document.getElementById(hostID);
	if (host) {
		host.remove();
	}
	return true;
}`

// Box is the measured position of the normalized copy, in CSS pixels and
// document coordinates.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Clone is a normalized copy of an element, attached off-screen in the
// tab it was acquired in.
type Clone struct {
	HostID string

	// Kind is the tag name of the source element.
	Kind string

	// Children is the number of element children of the source element.
	Children int

	// Elements is the number of elements styled in the copy.
	Elements int

	Box Box

	released bool
}

type nodeInfo struct {
	Tag      string  `json:"tag"`
	FontSize float64 `json:"fontSize"`
}

type acquireResult struct {
	Status   string     `json:"status"`
	Kind     string     `json:"kind"`
	Children int        `json:"children"`
	Nodes    []nodeInfo `json:"nodes"`
}

// call builds an expression invoking fn with JSON-encoded args.
func call(fn string, args ...any) (string, error) {
	expr := "(" + fn + ")("
	for i, a := range args {
		b, err := json.Marshal(a)
		if err != nil {
			return "", err
		}
		if i > 0 {
			expr += ", "
		}
		expr += string(b)
	}
	return expr + ")", nil
}

// Acquire clones the element matched by selector, attaches the copy
// off-screen under hostID, applies table to it and measures it. ctx must
// be a chromedp tab context. The returned Clone must be released; prefer
// [With], which guarantees it.
//
// On failure after the copy was attached, Acquire detaches it before
// returning.
func Acquire(ctx context.Context, selector, hostID string, table Table) (*Clone, error) {
	expr, err := call(acquireScript, selector, hostID)
	if err != nil {
		return nil, fmt.Errorf("normalize: encoding arguments: %w", err)
	}
	var res acquireResult
	if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &res)); err != nil {
		return nil, fmt.Errorf("normalize: cloning %q: %w", selector, err)
	}

	switch res.Status {
	case "missing":
		return nil, fmt.Errorf("%w: no element matches %q", ErrDetachedNode, selector)
	case "detached":
		return &Clone{Kind: res.Kind, Children: res.Children, released: true},
			fmt.Errorf("%w: <%s> matched by %q is not rendered", ErrDetachedNode, res.Kind, selector)
	case "ok":
	default:
		return nil, fmt.Errorf("normalize: unexpected clone status %q", res.Status)
	}

	c := &Clone{
		HostID:   hostID,
		Kind:     res.Kind,
		Children: res.Children,
		Elements: len(res.Nodes),
	}

	styles := make([]string, len(res.Nodes))
	for i, n := range res.Nodes {
		styles[i] = table.Resolve(n.Tag, n.FontSize).CSS()
	}
	expr, err = call(applyScript, hostID, styles)
	if err != nil {
		c.Release(ctx)
		return c, fmt.Errorf("normalize: encoding styles: %w", err)
	}
	var box *Box
	if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &box)); err != nil {
		c.Release(ctx)
		return c, fmt.Errorf("normalize: styling copy of %q: %w", selector, err)
	}
	if box == nil {
		c.Release(ctx)
		return c, fmt.Errorf("%w: copy of %q vanished before it was measured", ErrDetachedNode, selector)
	}
	c.Box = *box
	return c, nil
}

// Release detaches the copy. It is safe to call more than once and runs
// even when ctx is already done.
func (c *Clone) Release(ctx context.Context) error {
	if c == nil || c.released {
		return nil
	}
	c.released = true

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), releaseTimeout)
	defer cancel()

	expr, err := call(releaseScript, c.HostID)
	if err != nil {
		return err
	}
	var ok bool
	if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &ok)); err != nil {
		return fmt.Errorf("normalize: detaching %s: %w", c.HostID, err)
	}
	return nil
}

// With acquires a normalized copy, runs fn with it and detaches the copy
// on every exit path, including a panic in fn. The Clone passed to fn is
// also returned so callers can log its diagnostics on failure.
func With(ctx context.Context, selector, hostID string, table Table, fn func(*Clone) error) (c *Clone, err error) {
	c, err = Acquire(ctx, selector, hostID, table)
	if err != nil {
		return c, err
	}
	defer func() {
		if rerr := c.Release(ctx); rerr != nil && err == nil {
			err = rerr
		}
	}()
	return c, fn(c)
}
