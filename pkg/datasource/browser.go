package datasource

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chromedp/chromedp"
	"github.com/playwright-community/playwright-go"
	"github.com/richard-senior/pronosticos/internal/logger"
)

// fixtureSelector is present once the fixture list has rendered
const fixtureSelector = "div.module-gameplan"

// defaultBrowserTimeout bounds a page load when the context has no deadline
const defaultBrowserTimeout = 45 * time.Second

/////////////////////////////////////////////////////////////////////////
////// Playwright
/////////////////////////////////////////////////////////////////////////

// PlaywrightFetcher renders pages in headless Chromium driven by Playwright.
// The browser is started on first use and kept until Close.
type PlaywrightFetcher struct {
	UserAgent string

	mu      sync.Mutex
	pw      *playwright.Playwright
	browser playwright.Browser
}

// NewPlaywrightFetcher creates a fetcher; no browser is started yet
func NewPlaywrightFetcher(userAgent string) *PlaywrightFetcher {
	return &PlaywrightFetcher{UserAgent: userAgent}
}

func (f *PlaywrightFetcher) ensureBrowser() (playwright.Browser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil && f.browser.IsConnected() {
		return f.browser, nil
	}

	if f.pw == nil {
		pw, err := playwright.Run()
		if err != nil {
			return nil, fmt.Errorf("failed to start playwright: %w", err)
		}
		f.pw = pw
	}

	browser, err := f.pw.Chromium.Launch(playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to launch chromium: %w", err)
	}
	f.browser = browser
	logger.Info("Started headless chromium via playwright")
	return browser, nil
}

// FetchPage implements Fetcher
func (f *PlaywrightFetcher) FetchPage(ctx context.Context, url string) ([]byte, error) {
	browser, err := f.ensureBrowser()
	if err != nil {
		return nil, err
	}

	pageOptions := playwright.BrowserNewPageOptions{}
	if f.UserAgent != "" {
		pageOptions.UserAgent = playwright.String(f.UserAgent)
	}
	page, err := browser.NewPage(pageOptions)
	if err != nil {
		return nil, fmt.Errorf("failed to open page: %w", err)
	}
	defer page.Close()

	timeoutMs := float64(remaining(ctx).Milliseconds())
	if _, err := page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateNetworkidle,
		Timeout:   playwright.Float(timeoutMs),
	}); err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", url, err)
	}

	if err := page.Locator(fixtureSelector).First().WaitFor(playwright.LocatorWaitForOptions{
		Timeout: playwright.Float(timeoutMs),
	}); err != nil {
		logger.Warn("Fixture list did not render, returning page as is", url, err)
	}

	content, err := page.Content()
	if err != nil {
		return nil, fmt.Errorf("failed to read page content: %w", err)
	}
	return []byte(content), nil
}

// Close stops the browser and the playwright driver
func (f *PlaywrightFetcher) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.browser != nil {
		if err := f.browser.Close(); err != nil {
			logger.Warn("Failed to close browser", err)
		}
		f.browser = nil
	}
	if f.pw != nil {
		if err := f.pw.Stop(); err != nil {
			return fmt.Errorf("failed to stop playwright: %w", err)
		}
		f.pw = nil
	}
	return nil
}

/////////////////////////////////////////////////////////////////////////
////// chromedp
/////////////////////////////////////////////////////////////////////////

// ChromedpFetcher renders pages in a local Chrome over the DevTools protocol.
// Unlike Playwright it needs no driver install, only a Chrome binary.
type ChromedpFetcher struct {
	allocCtx context.Context
	cancel   context.CancelFunc
}

// NewChromedpFetcher creates the Chrome allocator; Chrome itself starts on first fetch
func NewChromedpFetcher(userAgent string) *ChromedpFetcher {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
	)
	if userAgent != "" {
		opts = append(opts, chromedp.UserAgent(userAgent))
	}
	allocCtx, cancel := chromedp.NewExecAllocator(context.Background(), opts...)
	return &ChromedpFetcher{allocCtx: allocCtx, cancel: cancel}
}

// FetchPage implements Fetcher
func (f *ChromedpFetcher) FetchPage(ctx context.Context, url string) ([]byte, error) {
	browserCtx, cancel := chromedp.NewContext(f.allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, remaining(ctx))
	defer cancel()

	var htmlContent string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(url),
		chromedp.WaitReady(fixtureSelector, chromedp.ByQuery),
		chromedp.OuterHTML("html", &htmlContent, chromedp.ByQuery),
	)
	if err != nil {
		return nil, fmt.Errorf("chromedp error: %w", err)
	}
	if htmlContent == "" {
		return nil, fmt.Errorf("empty HTML content returned")
	}
	return []byte(htmlContent), nil
}

// Close shuts down Chrome
func (f *ChromedpFetcher) Close() error {
	if f.cancel != nil {
		f.cancel()
	}
	return nil
}

// remaining is the time left before ctx expires, or the default browser timeout
func remaining(ctx context.Context) time.Duration {
	if deadline, ok := ctx.Deadline(); ok {
		if d := time.Until(deadline); d > 0 {
			return d
		}
		return time.Millisecond
	}
	return defaultBrowserTimeout
}
