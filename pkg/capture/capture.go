// Package capture drives a long-lived headless browser and produces
// single-viewport screenshots of web pages. One Capturer owns one browser
// and reuses one page (tab) across captures, creating a fresh page only
// when the current one has gone away.
package capture

import (
	"context"
	"fmt"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"
	"github.com/root4loot/goutils/log"
)

// Options contains the options for capturing screenshots.
type Options struct {
	CaptureHeight            int           // Height of the capture viewport
	CaptureWidth             int           // Width of the capture viewport
	LoadTimeout              time.Duration // Upper bound on the wait for page load
	SettleDelay              time.Duration // Delay between load and capture
	RespectCertificateErrors bool          // Respect certificate errors
	UseHTTP2                 bool          // Use HTTP2
	UserAgent                string        // User agent
	Headless                 bool          // Run the browser headless
}

// NewOptions returns an Options struct initialized with default values.
func NewOptions() Options {
	return Options{
		CaptureHeight:            768,
		CaptureWidth:             1366,
		LoadTimeout:              15 * time.Second,
		SettleDelay:              time.Second,
		RespectCertificateErrors: false,
		UseHTTP2:                 false,
		Headless:                 true,
		UserAgent:                "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/129.0.0.0 Safari/537.36",
	}
}

// Capturer owns a browser instance and captures screenshots with it.
// It is intended to be driven from a single goroutine.
type Capturer struct {
	Options Options

	browser *rod.Browser
	page    *rod.Page
}

// New launches a browser with the given options and returns a Capturer
// connected to it. Call Close when done.
func New(options Options) (*Capturer, error) {
	path, _ := launcher.LookPath()

	l := launcher.New().
		Headless(options.Headless).
		Bin(path).
		NoSandbox(true)

	if options.UserAgent != "" {
		l.Set("user-agent", options.UserAgent)
	}

	if !options.RespectCertificateErrors {
		l.Set("ignore-certificate-errors", "true")
	}

	if !options.UseHTTP2 {
		l.Set("disable-http2", "true")
	}

	browserURL, err := l.Launch()
	if err != nil {
		return nil, fmt.Errorf("error launching browser: %w", err)
	}

	browser := rod.New().ControlURL(browserURL)
	if err := browser.Connect(); err != nil {
		return nil, fmt.Errorf("error connecting to browser: %w", err)
	}

	return &Capturer{Options: options, browser: browser}, nil
}

// Close shuts down the browser and releases its pages.
func (c *Capturer) Close() error {
	if c.browser == nil {
		return nil
	}
	c.page = nil
	return c.browser.Close()
}

// Capture navigates the current page to captureURL, waits for the page to
// load (bounded by LoadTimeout), and returns a PNG screenshot of the
// visible viewport. A load timeout is not an error; the capture proceeds
// with whatever has rendered.
func (c *Capturer) Capture(ctx context.Context, captureURL string) (*Result, error) {
	page, err := c.surface()
	if err != nil {
		return nil, &NavigationError{URL: captureURL, Err: err}
	}

	if c.Options.CaptureWidth != 0 && c.Options.CaptureHeight != 0 {
		viewport := &proto.EmulationSetDeviceMetricsOverride{
			Width:             c.Options.CaptureWidth,
			Height:            c.Options.CaptureHeight,
			DeviceScaleFactor: 1,
			Mobile:            false,
		}

		if err := page.SetViewport(viewport); err != nil {
			log.Warnf("Error setting viewport: %v", err)
		}
	}

	// The load-event subscription is registered before navigating so the
	// event cannot be missed, and it is scoped to this page only. The
	// deferred cancel releases whichever side of the load-wait race loses,
	// on every exit path.
	waitCtx, cancelWait := context.WithTimeout(ctx, c.Options.LoadTimeout)
	defer cancelWait()

	var loaded proto.PageLoadEventFired
	wait := page.Context(waitCtx).WaitEvent(&loaded)

	if err := page.Context(ctx).Navigate(captureURL); err != nil {
		return nil, &NavigationError{URL: captureURL, Err: err}
	}

	if c.readyState(page) == "complete" {
		// Already loaded; drop the subscription without waiting.
		cancelWait()
	} else {
		wait()
		if waitCtx.Err() == context.DeadlineExceeded {
			log.Warnf("%s did not finish loading within %v; capturing anyway", captureURL, c.Options.LoadTimeout)
		}
	}

	if c.Options.SettleDelay > 0 {
		time.Sleep(c.Options.SettleDelay)
	}

	// Re-assert that the page is the foreground one before capturing.
	if _, err := page.Activate(); err != nil {
		log.Debugf("Could not bring page to foreground: %v", err)
	}

	taken := time.Now().UTC()

	image, err := page.Screenshot(false, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, &CaptureError{URL: captureURL, Err: err}
	}

	return &Result{Image: image, URL: captureURL, Taken: taken}, nil
}

// surface returns the page to navigate, preferring the one already open
// and falling back to creating a new one.
func (c *Capturer) surface() (*rod.Page, error) {
	if c.page != nil {
		if _, err := c.page.Info(); err == nil {
			return c.page, nil
		}
		log.Debug("Current page is gone, opening a new one")
		c.page = nil
	}

	page, err := c.browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fmt.Errorf("error creating page: %w", err)
	}

	c.page = page
	return page, nil
}

func (c *Capturer) readyState(page *rod.Page) string {
	obj, err := page.Eval(`() => document.readyState`)
	if err != nil {
		return ""
	}
	return obj.Value.Str()
}
