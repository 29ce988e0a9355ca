// internal/browser/allocator.go
package browser

import (
	"runtime"
	"strings"

	"github.com/chromedp/chromedp"

	"github.com/xkilldash9x/matrixctl/internal/config"
)

// AllocatorOptions assembles the Chrome launch flags for an operator-visible browser.
// Later options override earlier ones with the same flag name.
func AllocatorOptions(cfg config.BrowserConfig) []chromedp.ExecAllocatorOption {
	opts := append([]chromedp.ExecAllocatorOption(nil), chromedp.DefaultExecAllocatorOptions[:]...)

	opts = append(opts,
		// The "Chrome is being controlled" infobar eats vertical space the app needs.
		chromedp.Flag("enable-automation", false),
		chromedp.Flag("headless", cfg.Headless),
		chromedp.Flag("disable-gpu", cfg.Headless),
		chromedp.Flag("disable-extensions", true),
	)

	if cfg.IgnoreTLSErrors {
		opts = append(opts,
			chromedp.Flag("ignore-certificate-errors", true),
			chromedp.Flag("allow-insecure-localhost", true),
		)
	}

	if width, height, ok := viewportSize(cfg); ok {
		opts = append(opts, chromedp.WindowSize(width, height))
	}

	// Custom arguments from config, "--name=value" or "--name".
	for _, arg := range cfg.Args {
		parts := strings.SplitN(arg, "=", 2)
		flagName := strings.TrimPrefix(parts[0], "--")
		if flagName == "" {
			continue
		}
		if len(parts) == 2 {
			opts = append(opts, chromedp.Flag(flagName, parts[1]))
		} else {
			opts = append(opts, chromedp.Flag(flagName, true))
		}
	}

	if runtime.GOOS == "linux" {
		opts = append(opts,
			chromedp.Flag("no-sandbox", true),
			chromedp.Flag("disable-dev-shm-usage", true),
		)
	}

	return opts
}

func viewportSize(cfg config.BrowserConfig) (int, int, bool) {
	width, height := cfg.Viewport["width"], cfg.Viewport["height"]
	if width <= 0 || height <= 0 {
		return 0, 0, false
	}
	return width, height, true
}
