// Package browser manages the automated browser session shared by one
// scraper: a single Chrome allocator, one tab per page load, and the
// navigation, readiness and snapshot primitives the orchestrator composes.
package browser

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"
	"github.com/rs/zerolog"

	"travel-content-scraper/internal/config"
	"travel-content-scraper/internal/models"
)

const (
	selectorWaitTimeout = 10 * time.Second

	scrollStepPx   = 1200
	scrollStepWait = 300 * time.Millisecond
	maxScrollSteps = 15
	scrollSettle   = 500 * time.Millisecond
)

// Session owns the Chrome process for one scraper. The process starts
// lazily on the first NavigateTo and lives until Dispose.
type Session struct {
	cfg config.BrowserConfig
	log zerolog.Logger

	mu            sync.Mutex
	browserCtx    context.Context
	browserCancel context.CancelFunc
	allocCancel   context.CancelFunc
	uaIndex       int
	disposed      bool
}

func NewSession(cfg config.BrowserConfig, log zerolog.Logger) *Session {
	return &Session{cfg: cfg, log: log}
}

// ensureStarted launches Chrome on first use. Callers hold no lock.
func (s *Session) ensureStarted() (context.Context, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return nil, fmt.Errorf("browser session is disposed")
	}
	if s.browserCtx != nil {
		return s.browserCtx, nil
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), BuildChromeOptions(s.cfg)...)
	browserCtx, browserCancel := chromedp.NewContext(allocCtx)
	if err := chromedp.Run(browserCtx); err != nil {
		browserCancel()
		allocCancel()
		return nil, fmt.Errorf("failed to start browser: %w", err)
	}

	s.browserCtx = browserCtx
	s.browserCancel = browserCancel
	s.allocCancel = allocCancel
	s.log.Debug().Bool("headless", s.cfg.Headless).Msg("browser started")
	return s.browserCtx, nil
}

func (s *Session) nextUserAgent() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.cfg.UserAgents) == 0 {
		return ""
	}
	ua := s.cfg.UserAgents[s.uaIndex%len(s.cfg.UserAgents)]
	s.uaIndex++
	return ua
}

// NavigateTo opens a new tab, loads the URL and waits for it to be ready.
// The caller's context bounds the whole load; its deadline expiring is
// reported as a timeout NavigationError. The returned page must be closed.
func (s *Session) NavigateTo(ctx context.Context, pageURL string) (*Page, error) {
	browserCtx, err := s.ensureStarted()
	if err != nil {
		return nil, &models.NavigationError{URL: pageURL, Err: err}
	}

	tabCtx, tabCancel := chromedp.NewContext(browserCtx)
	stop := context.AfterFunc(ctx, tabCancel)
	p := &Page{ctx: tabCtx, cancel: tabCancel, stop: stop, url: pageURL, log: s.log}

	prep := chromedp.Tasks{
		network.Enable(),
		chromedp.ActionFunc(func(ctx context.Context) error {
			_, err := page.AddScriptToEvaluateOnNewDocument(requestBlockingScript).Do(ctx)
			return err
		}),
	}
	if ua := s.nextUserAgent(); ua != "" {
		prep = append(prep, emulation.SetUserAgentOverride(ua))
	}
	if patterns := blockedURLPatterns(s.cfg.BlockedResources); len(patterns) > 0 {
		prep = append(prep, network.SetBlockedURLS(patterns))
	}
	if err := chromedp.Run(tabCtx, prep); err != nil {
		p.Close()
		return nil, &models.NavigationError{URL: pageURL, Err: fmt.Errorf("tab setup failed: %w", err)}
	}

	resp, err := chromedp.RunResponse(tabCtx, chromedp.Navigate(pageURL))
	if err != nil {
		if ctx.Err() != nil {
			p.Close()
			return nil, &models.NavigationError{URL: pageURL, Err: fmt.Errorf("page took too long to load")}
		}
		s.captureFailure(p, pageURL)
		p.Close()
		return nil, &models.NavigationError{URL: pageURL, Err: err}
	}
	if resp == nil {
		s.captureFailure(p, pageURL)
		p.Close()
		return nil, &models.NavigationError{URL: pageURL, Err: fmt.Errorf("no response received")}
	}
	status := int(resp.Status)
	if (status < 200 || status >= 300) && status != 304 {
		s.captureFailure(p, pageURL)
		p.Close()
		return nil, &models.NavigationError{URL: pageURL, StatusCode: status}
	}

	if err := s.waitReady(tabCtx, pageURL); err != nil {
		if ctx.Err() != nil {
			p.Close()
			return nil, &models.NavigationError{URL: pageURL, Err: fmt.Errorf("page took too long to load")}
		}
		// Content may still be usable without the readiness marker.
		s.log.Warn().Err(err).Str("url", pageURL).Msg("readiness wait failed")
	}
	return p, nil
}

// waitReady waits for the configured readiness selector, then the fixed
// settle delay.
func (s *Session) waitReady(tabCtx context.Context, pageURL string) error {
	if s.cfg.WaitSelector != "" {
		waitCtx, cancel := context.WithTimeout(tabCtx, selectorWaitTimeout)
		err := chromedp.Run(waitCtx, chromedp.WaitVisible(s.cfg.WaitSelector, chromedp.ByQuery))
		cancel()
		if err != nil {
			return fmt.Errorf("selector %q not ready: %w", s.cfg.WaitSelector, err)
		}
	}
	if s.cfg.WaitTime > 0 {
		select {
		case <-time.After(s.cfg.WaitTime):
		case <-tabCtx.Done():
			return tabCtx.Err()
		}
	}
	return nil
}

// captureFailure writes a diagnostic screenshot. Best effort; the
// navigation error is what the caller sees regardless.
func (s *Session) captureFailure(p *Page, pageURL string) {
	if s.cfg.ScreenshotDir == "" {
		return
	}
	var shot []byte
	if err := chromedp.Run(p.ctx, chromedp.CaptureScreenshot(&shot)); err != nil {
		s.log.Debug().Err(err).Str("url", pageURL).Msg("failure screenshot not captured")
		return
	}
	if err := os.MkdirAll(s.cfg.ScreenshotDir, 0o755); err != nil {
		s.log.Debug().Err(err).Msg("screenshot dir not created")
		return
	}
	name := fmt.Sprintf("nav-failure-%s.png", time.Now().Format("20060102-150405.000"))
	path := filepath.Join(s.cfg.ScreenshotDir, name)
	if err := os.WriteFile(path, shot, 0o644); err != nil {
		s.log.Debug().Err(err).Str("path", path).Msg("screenshot not written")
		return
	}
	s.log.Info().Str("url", pageURL).Str("screenshot", path).Msg("failure screenshot saved")
}

// Dispose shuts the browser down. Safe to call more than once and before
// the first navigation.
func (s *Session) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.disposed = true
	if s.browserCancel != nil {
		s.browserCancel()
		s.allocCancel()
		s.browserCtx = nil
		s.log.Debug().Msg("browser disposed")
	}
}

// Page is one loaded tab.
type Page struct {
	ctx    context.Context
	cancel context.CancelFunc
	stop   func() bool
	url    string
	log    zerolog.Logger
	closed atomic.Bool
}

func (p *Page) URL() string { return p.url }

// Location returns the tab's current URL after any redirects.
func (p *Page) Location() (string, error) {
	var loc string
	if err := chromedp.Run(p.ctx, chromedp.Location(&loc)); err != nil {
		return "", err
	}
	return loc, nil
}

// ScrollToBottom walks the page down in fixed steps to trigger lazy-loaded
// content, then returns to the top. The step cap bounds infinite-scroll
// pages.
func (p *Page) ScrollToBottom(ctx context.Context) error {
	for i := 0; i < maxScrollSteps; i++ {
		var atBottom bool
		script := fmt.Sprintf(
			`window.scrollBy(0, %d); (window.innerHeight + window.scrollY) >= document.body.scrollHeight - 2`,
			scrollStepPx,
		)
		if err := chromedp.Run(p.ctx, chromedp.Evaluate(script, &atBottom)); err != nil {
			return err
		}
		if atBottom {
			break
		}
		select {
		case <-time.After(scrollStepWait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	if err := chromedp.Run(p.ctx, chromedp.Evaluate(`window.scrollTo(0, 0)`, nil)); err != nil {
		return err
	}
	select {
	case <-time.After(scrollSettle):
	case <-ctx.Done():
		return ctx.Err()
	}
	return nil
}

// HTML snapshots the full document markup.
func (p *Page) HTML() (string, error) {
	var html string
	if err := chromedp.Run(p.ctx, chromedp.OuterHTML("html", &html)); err != nil {
		return "", fmt.Errorf("failed to snapshot page: %w", err)
	}
	return html, nil
}

// Close releases the tab. Safe to call more than once.
func (p *Page) Close() {
	if !p.closed.CompareAndSwap(false, true) {
		return
	}
	p.stop()
	p.cancel()
}
