package normalize

import (
	"context"
	"errors"
	"os/exec"
	"testing"

	"github.com/chromedp/chromedp"
)

func chromeAvailable() bool {
	for _, name := range []string{
		"chromium-browser", "chromium", "google-chrome",
		"google-chrome-stable", "chrome",
	} {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}

// newTab starts a headless browser on a page holding html.
func newTab(t *testing.T, html string) context.Context {
	t.Helper()
	if !chromeAvailable() {
		t.Skip("skipping: Chrome/Chromium not found in PATH")
	}
	opts := append(chromedp.DefaultExecAllocatorOptions[:], chromedp.Flag("no-sandbox", true))
	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	t.Cleanup(allocCancel)
	ctx, cancel := chromedp.NewContext(allocCtx)
	t.Cleanup(cancel)

	var ok bool
	if err := chromedp.Run(ctx,
		chromedp.Navigate("about:blank"),
		chromedp.Evaluate(`document.body.innerHTML = `+quote(html)+`; true`, &ok),
	); err != nil {
		t.Fatalf("loading page: %v", err)
	}
	return ctx
}

func quote(s string) string {
	expr, _ := call("(s) => s", s)
	return expr
}

func hostCount(t *testing.T, ctx context.Context, id string) int {
	t.Helper()
	var n int
	if err := chromedp.Run(ctx, chromedp.Evaluate(`document.querySelectorAll("#`+id+`").length`, &n)); err != nil {
		t.Fatal(err)
	}
	return n
}

func TestWith_AttachesAndReleases(t *testing.T) {
	ctx := newTab(t, `<main id="doc"><h1>Title</h1><p>Body text</p><ul><li>a</li><li>b</li></ul></main>`)

	var seen *Clone
	c, err := With(ctx, "#doc", "htmlexport-test-host", DefaultTable(), func(c *Clone) error {
		seen = c
		if n := hostCount(t, ctx, c.HostID); n != 1 {
			t.Errorf("host attached %d times during fn, want 1", n)
		}
		var size string
		if err := chromedp.Run(ctx, chromedp.Evaluate(
			`getComputedStyle(document.querySelector("#htmlexport-test-host h1")).fontSize`, &size)); err != nil {
			return err
		}
		if size != "32px" {
			t.Errorf("normalized h1 font size = %s, want 32px", size)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	if c != seen {
		t.Error("With returned a different clone than the one passed to fn")
	}
	if c.Kind != "main" || c.Children != 3 {
		t.Errorf("diagnostics = %s/%d, want main/3", c.Kind, c.Children)
	}
	if c.Box.Width <= 0 || c.Box.Height <= 0 {
		t.Errorf("box = %+v, want positive size", c.Box)
	}
	if n := hostCount(t, ctx, "htmlexport-test-host"); n != 0 {
		t.Errorf("host still attached %d times after With", n)
	}
}

func TestWith_ReleasesOnError(t *testing.T) {
	ctx := newTab(t, `<div id="doc"><p>x</p></div>`)
	boom := errors.New("boom")
	_, err := With(ctx, "#doc", "htmlexport-err-host", DefaultTable(), func(*Clone) error { return boom })
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}
	if n := hostCount(t, ctx, "htmlexport-err-host"); n != 0 {
		t.Errorf("host still attached after failing fn")
	}
}

func TestAcquire_Detached(t *testing.T) {
	ctx := newTab(t, `<div id="hidden" style="display:none"><p>x</p></div>`)
	for _, sel := range []string{"#missing", "#hidden"} {
		_, err := Acquire(ctx, sel, "htmlexport-detached", DefaultTable())
		if !errors.Is(err, ErrDetachedNode) {
			t.Errorf("Acquire(%q) err = %v, want ErrDetachedNode", sel, err)
		}
	}
}

func TestAcquire_EmptyMeasuresZero(t *testing.T) {
	ctx := newTab(t, `<div id="empty" style="height:0"></div>`)
	c, err := With(ctx, "#empty", "htmlexport-empty-host", DefaultTable(), func(*Clone) error { return nil })
	if err != nil {
		t.Fatalf("With: %v", err)
	}
	if c.Box.Height != 0 {
		t.Errorf("box = %+v, want zero height", c.Box)
	}
}
