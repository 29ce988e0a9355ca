// internal/workflow/runner.go
package workflow

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/xkilldash9x/matrixctl/internal/browser"
	"github.com/xkilldash9x/matrixctl/internal/config"
	"github.com/xkilldash9x/matrixctl/internal/console"
	"github.com/xkilldash9x/matrixctl/internal/patients"
	"github.com/xkilldash9x/matrixctl/internal/resolver"
)

const defaultSettleTimeout = 5 * time.Second

// PageSource hands out the live page, starting the browser if needed.
// (*browser.Session).Page satisfies it.
type PageSource func(ctx context.Context) (browser.Page, error)

// PatientDirectory is the part of the patient API workflows rely on.
type PatientDirectory interface {
	Resolve(ctx context.Context, id patients.Identifier) (patients.Resolution, error)
	List(ctx context.Context) ([]patients.Patient, error)
}

// Runner executes multi-step scripts against the application.
type Runner struct {
	pages      PageSource
	directory  PatientDirectory
	out        *console.Console
	appBaseURL string
	settle     time.Duration
	poll       time.Duration
	logger     *zap.Logger
	now        func() time.Time
}

func NewRunner(pages PageSource, directory PatientDirectory, out *console.Console, cfg *config.Config, logger *zap.Logger) *Runner {
	settle := cfg.Workflow.SettleTimeout
	if settle <= 0 {
		settle = defaultSettleTimeout
	}
	return &Runner{
		pages:      pages,
		directory:  directory,
		out:        out,
		appBaseURL: cfg.App.BaseURL,
		settle:     settle,
		poll:       cfg.Workflow.PollInterval,
		logger:     logger.Named("workflow"),
		now:        time.Now,
	}
}

// ui returns the page together with a resolver bound to it.
func (r *Runner) ui(ctx context.Context) (browser.Page, *resolver.Resolver, error) {
	page, err := r.pages(ctx)
	if err != nil {
		return nil, nil, err
	}
	return page, resolver.New(page, r.logger, r.poll), nil
}

func (r *Runner) appURL(path string) string {
	return browser.ResolveURL(r.appBaseURL, path)
}

// settleOn waits for loc to appear. Timing out is not an error; the next step
// reports whatever is actually missing.
func (r *Runner) settleOn(ctx context.Context, res *resolver.Resolver, loc browser.Locator, atLeast int) error {
	err := res.WaitFor(ctx, loc, atLeast, r.settle)
	if err == resolver.ErrWaitTimeout {
		r.logger.Debug("Readiness wait timed out", zap.Stringer("locator", loc), zap.Duration("timeout", r.settle))
		return nil
	}
	return err
}

// settleGone waits up to the settle timeout for loc to stop matching. Like
// settleOn, running out of time is not an error.
func (r *Runner) settleGone(ctx context.Context, res *resolver.Resolver, loc browser.Locator) error {
	err := res.WaitGone(ctx, loc, r.settle)
	if err == resolver.ErrWaitTimeout {
		r.logger.Debug("Element still present after settle timeout", zap.Stringer("locator", loc), zap.Duration("timeout", r.settle))
		return nil
	}
	return err
}
