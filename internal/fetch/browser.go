package fetch

import (
	"context"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/chromedp/chromedp"
)

// MinContentLength is the shortest extracted text accepted from a plain HTTP
// fetch. Anything below it usually means the posting is rendered client-side.
const MinContentLength = 500

// DefaultRenderTimeout bounds a headless browser render.
const DefaultRenderTimeout = 30 * time.Second

// NeedsBrowser reports whether the extracted text is too short to be a real
// posting, which is the signal to re-fetch with a headless browser.
func NeedsBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < MinContentLength
}

// Render loads the URL in headless Chrome and returns the rendered HTML.
// Requires a Chrome or Chromium install on the machine.
func Render(ctx context.Context, urlStr string, timeout time.Duration) (string, error) {
	if timeout <= 0 {
		timeout = DefaultRenderTimeout
	}
	log.Printf("[fetch] rendering %s in headless browser", urlStr)

	allocCtx, cancel := chromedp.NewExecAllocator(ctx,
		append(chromedp.DefaultExecAllocatorOptions[:],
			chromedp.Flag("headless", true),
			chromedp.Flag("disable-gpu", true),
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)...,
	)
	defer cancel()

	browserCtx, cancel := chromedp.NewContext(allocCtx)
	defer cancel()

	browserCtx, cancel = context.WithTimeout(browserCtx, timeout)
	defer cancel()

	var html string
	err := chromedp.Run(browserCtx,
		chromedp.Navigate(urlStr),
		chromedp.WaitReady("body"),
		// Give client-side frameworks a moment to fill the page in.
		chromedp.Sleep(3*time.Second),
		chromedp.ActionFunc(func(ctx context.Context) error {
			// Dismiss consent banners when present; absence is fine.
			_ = chromedp.Click(`button[id*="accept"], button[class*="accept"]`, chromedp.NodeVisible).Do(ctx)
			return nil
		}),
		chromedp.Sleep(1*time.Second),
		chromedp.OuterHTML("html", &html),
	)
	if err != nil {
		return "", fmt.Errorf("browser rendering failed: %w", err)
	}
	return html, nil
}
