// internal/browser/chrome.go
package browser

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/chromedp/cdproto/emulation"
	"github.com/chromedp/chromedp"
	"go.uber.org/zap"

	"github.com/xkilldash9x/matrixctl/internal/browser/shim"
	"github.com/xkilldash9x/matrixctl/internal/config"
)

const (
	defaultActionTimeout     = 30 * time.Second
	defaultNavigationTimeout = 60 * time.Second
)

// ChromePage drives a single Chrome tab through chromedp.
type ChromePage struct {
	// ctx is the tab context; it carries the chromedp target for every action.
	ctx         context.Context
	tabCancel   context.CancelFunc
	allocCancel context.CancelFunc
	cfg         config.BrowserConfig
	logger      *zap.Logger
}

var _ Page = (*ChromePage)(nil)

// NewChromeLauncher returns a Launcher that starts Chrome with the configured
// flags, opens one tab and loads the start URL relative to appBaseURL.
func NewChromeLauncher(cfg config.BrowserConfig, appBaseURL string, logger *zap.Logger) Launcher {
	return func(ctx context.Context) (Page, error) {
		log := logger.Named("chrome")
		log.Info("Launching browser", zap.Bool("headless", cfg.Headless))

		allocCtx, allocCancel := chromedp.NewExecAllocator(Detach(ctx), AllocatorOptions(cfg)...)
		tabCtx, tabCancel := chromedp.NewContext(allocCtx,
			chromedp.WithLogf(log.Sugar().Debugf),
			chromedp.WithErrorf(log.Sugar().Debugf),
		)

		p := &ChromePage{
			ctx:         tabCtx,
			tabCancel:   tabCancel,
			allocCancel: allocCancel,
			cfg:         cfg,
			logger:      log,
		}

		if err := p.start(ctx); err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("browser failed to start: %w", err)
		}
		if width, height, ok := viewportSize(cfg); ok {
			err := p.run(ctx, p.actionTimeout(),
				emulation.SetDeviceMetricsOverride(int64(width), int64(height), 1, false))
			if err != nil {
				_ = p.Close()
				return nil, fmt.Errorf("failed to set viewport: %w", err)
			}
		}

		startURL := ResolveURL(appBaseURL, cfg.StartURL)
		if err := p.Navigate(ctx, startURL); err != nil {
			_ = p.Close()
			return nil, err
		}
		return p, nil
	}
}

// start allocates the browser process and its first tab. The first Run binds
// the process to its context, so it runs on the tab context itself; ctx and
// the navigation timeout only bound the wait.
func (p *ChromePage) start(ctx context.Context) error {
	errc := make(chan error, 1)
	go func() { errc <- chromedp.Run(p.ctx) }()

	timer := time.NewTimer(p.navigationTimeout())
	defer timer.Stop()
	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
		p.tabCancel()
		<-errc
		return fmt.Errorf("canceled: %w", ctx.Err())
	case <-timer.C:
		p.tabCancel()
		<-errc
		return fmt.Errorf("timed out after %s", p.navigationTimeout())
	}
}

func (p *ChromePage) actionTimeout() time.Duration {
	if p.cfg.ActionTimeout > 0 {
		return p.cfg.ActionTimeout
	}
	return defaultActionTimeout
}

func (p *ChromePage) navigationTimeout() time.Duration {
	if p.cfg.NavigationTimeout > 0 {
		return p.cfg.NavigationTimeout
	}
	return defaultNavigationTimeout
}

// run executes actions on the tab, bounded by both the caller's ctx and timeout.
func (p *ChromePage) run(ctx context.Context, timeout time.Duration, actions ...chromedp.Action) error {
	opCtx, opCancel := CombineContext(p.ctx, ctx)
	defer opCancel()
	runCtx, cancel := context.WithTimeout(opCtx, timeout)
	defer cancel()

	err := chromedp.Run(runCtx, actions...)
	if err == nil {
		return nil
	}
	if ctx.Err() != nil {
		return fmt.Errorf("canceled: %w", ctx.Err())
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("timed out after %s: %w", timeout, err)
	}
	return err
}

// slowMo pauses after mutating actions so the operator can follow along.
func (p *ChromePage) slowMo() chromedp.Action {
	if p.cfg.SlowMo <= 0 {
		return chromedp.ActionFunc(func(context.Context) error { return nil })
	}
	return chromedp.Sleep(p.cfg.SlowMo)
}

func (p *ChromePage) Count(ctx context.Context, loc Locator) (int, error) {
	script, err := loc.Script()
	if err != nil {
		return 0, err
	}
	var n int
	if err := p.run(ctx, p.actionTimeout(), chromedp.Evaluate("("+script+").length", &n)); err != nil {
		return 0, fmt.Errorf("probe %s: %w", loc, err)
	}
	p.logger.Debug("Probe", zap.Stringer("locator", loc), zap.Int("count", n))
	return n, nil
}

func (p *ChromePage) Click(ctx context.Context, loc Locator, pick Pick) error {
	script, err := loc.Script()
	if err != nil {
		return err
	}
	el := elementExpr(script, pick)
	p.logger.Debug("Click", zap.Stringer("locator", loc), zap.Stringer("pick", pick))
	return p.run(ctx, p.actionTimeout(),
		chromedp.ScrollIntoView(el, chromedp.ByJSPath),
		chromedp.Click(el, chromedp.ByJSPath),
		p.slowMo(),
	)
}

func (p *ChromePage) Fill(ctx context.Context, loc Locator, value string) error {
	return p.callOnElement(ctx, loc, shim.FillFunction(), value)
}

func (p *ChromePage) SelectOption(ctx context.Context, loc Locator, value string) error {
	return p.callOnElement(ctx, loc, shim.SelectFunction(), value)
}

// callOnElement applies an embedded (el, value) function to the first match.
// The function reports refusal by returning a non-empty reason.
func (p *ChromePage) callOnElement(ctx context.Context, loc Locator, fn, value string) error {
	script, err := loc.Script()
	if err != nil {
		return err
	}
	valueJSON, err := json.MarshalToString(value)
	if err != nil {
		return fmt.Errorf("failed to encode value: %w", err)
	}
	el := elementExpr(script, PickFirst)
	call := strings.TrimSpace(fn) + "(" + el + ", " + valueJSON + ")"

	var reason string
	err = p.run(ctx, p.actionTimeout(),
		chromedp.ScrollIntoView(el, chromedp.ByJSPath),
		chromedp.Evaluate(call, &reason),
		p.slowMo(),
	)
	if err != nil {
		return err
	}
	if reason != "" {
		return errors.New(reason)
	}
	return nil
}

// Navigate loads url and waits until the document body is ready.
func (p *ChromePage) Navigate(ctx context.Context, url string) error {
	p.logger.Debug("Navigating", zap.String("url", url))
	return p.run(ctx, p.navigationTimeout(),
		chromedp.Navigate(url),
		chromedp.WaitReady("body", chromedp.ByQuery),
		p.slowMo(),
	)
}

func (p *ChromePage) Reload(ctx context.Context) error {
	return p.run(ctx, p.navigationTimeout(),
		chromedp.Reload(),
		chromedp.WaitReady("body", chromedp.ByQuery),
	)
}

func (p *ChromePage) URL(ctx context.Context) (string, error) {
	var url string
	if err := p.run(ctx, p.actionTimeout(), chromedp.Location(&url)); err != nil {
		return "", err
	}
	return url, nil
}

func (p *ChromePage) Screenshot(ctx context.Context) ([]byte, error) {
	var buf []byte
	if err := p.run(ctx, p.actionTimeout(), chromedp.FullScreenshot(&buf, 100)); err != nil {
		return nil, err
	}
	return buf, nil
}

// Close shuts the tab down gracefully, then kills the browser process.
func (p *ChromePage) Close() error {
	err := chromedp.Cancel(p.ctx)
	p.tabCancel()
	p.allocCancel()
	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("failed to close browser: %w", err)
	}
	return nil
}
