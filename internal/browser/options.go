package browser

import (
	"github.com/chromedp/chromedp"

	"travel-content-scraper/internal/config"
)

// BuildChromeOptions translates the browser configuration into Chrome
// allocator options.
func BuildChromeOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("disable-gpu", true),
		chromedp.Flag("disable-plugins", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-features", "VizDisplayCompositor"),
		chromedp.WindowSize(cfg.ViewportWidth, cfg.ViewportHeight),
	)
	for _, resource := range cfg.BlockedResources {
		if resource == "image" {
			opts = append(opts, chromedp.Flag("blink-settings", "imagesEnabled=false"))
		}
	}
	return opts
}

// blockedURLPatterns maps the configured resource types to network-level URL
// block patterns.
func blockedURLPatterns(resources []string) []string {
	var patterns []string
	for _, resource := range resources {
		switch resource {
		case "image":
			patterns = append(patterns, "*.png", "*.jpg", "*.jpeg", "*.gif", "*.webp", "*.svg", "*.ico")
		case "font":
			patterns = append(patterns, "*.woff", "*.woff2", "*.ttf", "*.otf", "*.eot")
		case "media":
			patterns = append(patterns, "*.mp4", "*.webm", "*.mp3", "*.m3u8", "*.avi")
		case "stylesheet":
			patterns = append(patterns, "*.css")
		}
	}
	return patterns
}

// requestBlockingScript runs before every page script and rejects requests
// to common ad and tracking hosts, plus hides the webdriver flag.
const requestBlockingScript = `
(() => {
	const blockedDomains = [
		'doubleclick', 'googlesyndication', 'google-analytics',
		'googletagmanager', 'facebook.com/tr', 'taboola', 'outbrain',
		'scorecardresearch', 'chartbeat', 'amazon-adsystem', 'hotjar',
		'criteo', 'adnxs'
	];
	const blocked = url =>
		typeof url === 'string' && blockedDomains.some(d => url.includes(d));

	const originalFetch = window.fetch;
	window.fetch = function(...args) {
		if (blocked(args[0])) {
			return Promise.reject(new Error('Blocked'));
		}
		return originalFetch.apply(this, args);
	};

	const originalOpen = XMLHttpRequest.prototype.open;
	XMLHttpRequest.prototype.open = function(method, url, ...args) {
		if (blocked(url)) {
			throw new Error('Blocked');
		}
		return originalOpen.apply(this, [method, url, ...args]);
	};

	Object.defineProperty(navigator, 'webdriver', { get: () => false });
})();
`
