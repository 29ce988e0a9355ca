// internal/resolver/resolver.go
package resolver

import (
	"context"
	"errors"
	"time"

	"github.com/cenkalti/backoff/v4"
	"go.uber.org/zap"

	"github.com/xkilldash9x/matrixctl/internal/browser"
	"github.com/xkilldash9x/matrixctl/internal/failure"
)

const defaultPollInterval = 100 * time.Millisecond

// Resolver evaluates resolution plans against a page: probe in order, commit
// to the first hit, act on it once.
type Resolver struct {
	page         browser.Page
	logger       *zap.Logger
	pollInterval time.Duration
}

// New binds a resolver to a page. A non-positive pollInterval uses the default.
func New(page browser.Page, logger *zap.Logger, pollInterval time.Duration) *Resolver {
	if pollInterval <= 0 {
		pollInterval = defaultPollInterval
	}
	return &Resolver{page: page, logger: logger.Named("resolver"), pollInterval: pollInterval}
}

// Resolve returns the first locator of plan with a non-zero probe. A probe
// error counts as zero matches. ok is false when nothing matched.
func (r *Resolver) Resolve(ctx context.Context, plan Plan) (browser.Locator, bool, error) {
	for i, loc := range plan.Locators {
		if err := ctx.Err(); err != nil {
			return browser.Locator{}, false, err
		}
		n, err := r.page.Count(ctx, loc)
		if err != nil {
			r.logger.Debug("Probe failed, treating as no match",
				zap.String("target", plan.Target), zap.Stringer("locator", loc), zap.Error(err))
			continue
		}
		if n > 0 {
			r.logger.Debug("Strategy matched",
				zap.String("target", plan.Target), zap.Int("step", i), zap.Stringer("locator", loc), zap.Int("count", n))
			return loc, true, nil
		}
	}
	r.logger.Debug("No strategy matched", zap.String("target", plan.Target), zap.Int("strategies", len(plan.Locators)))
	return browser.Locator{}, false, nil
}

// Click resolves plan and clicks the picked match of the winning locator.
func (r *Resolver) Click(ctx context.Context, plan Plan, pick browser.Pick) error {
	loc, ok, err := r.Resolve(ctx, plan)
	if err != nil {
		return err
	}
	if !ok {
		return failure.ElementNotFound(plan.Target)
	}
	if err := r.page.Click(ctx, loc, pick); err != nil {
		return failure.ActionFailed(plan.Target, err)
	}
	return nil
}

// ClickText clicks the first element matching free text.
func (r *Resolver) ClickText(ctx context.Context, text string) error {
	return r.Click(ctx, ClickPlan(text), browser.PickFirst)
}

// ClickRole clicks the first element with role whose accessible name contains name.
func (r *Resolver) ClickRole(ctx context.Context, role, name string) error {
	return r.Click(ctx, RolePlan(role, name), browser.PickFirst)
}

// Fill resolves a field and replaces its value.
func (r *Resolver) Fill(ctx context.Context, field, value string) error {
	return r.FillPlan(ctx, FieldPlan(field), value)
}

// FillPlan fills the first match of plan, failing with FieldNotFound when nothing matches.
func (r *Resolver) FillPlan(ctx context.Context, plan Plan, value string) error {
	loc, ok, err := r.Resolve(ctx, plan)
	if err != nil {
		return err
	}
	if !ok {
		return failure.FieldNotFound(plan.Target)
	}
	if err := r.page.Fill(ctx, loc, value); err != nil {
		return failure.ActionFailed(plan.Target, err)
	}
	return nil
}

// Select resolves a dropdown and chooses value by option value or label.
func (r *Resolver) Select(ctx context.Context, field, value string) error {
	plan := DropdownPlan(field)
	loc, ok, err := r.Resolve(ctx, plan)
	if err != nil {
		return err
	}
	if !ok {
		return failure.FieldNotFound(field)
	}
	if err := r.page.SelectOption(ctx, loc, value); err != nil {
		return failure.ActionFailed(field, err)
	}
	return nil
}

// ErrWaitTimeout is wrapped by WaitFor when the condition never held.
var ErrWaitTimeout = errors.New("timed out waiting for element")

// WaitFor polls until loc matches at least atLeast elements or timeout elapses.
func (r *Resolver) WaitFor(ctx context.Context, loc browser.Locator, atLeast int, timeout time.Duration) error {
	return r.Poll(ctx, timeout, func(ctx context.Context) (bool, error) {
		n, err := r.page.Count(ctx, loc)
		if err != nil {
			return false, nil
		}
		return n >= atLeast, nil
	})
}

// WaitGone polls until loc matches nothing or timeout elapses. A failing probe
// keeps the wait going, since pages are often mid-navigation here.
func (r *Resolver) WaitGone(ctx context.Context, loc browser.Locator, timeout time.Duration) error {
	return r.Poll(ctx, timeout, func(ctx context.Context) (bool, error) {
		n, err := r.page.Count(ctx, loc)
		return err == nil && n == 0, nil
	})
}

// Poll runs check at the resolver's poll interval until it reports done,
// returns an error, or timeout elapses. Timing out yields ErrWaitTimeout.
func (r *Resolver) Poll(ctx context.Context, timeout time.Duration, check func(context.Context) (bool, error)) error {
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	errPending := errors.New("pending")
	op := func() error {
		done, err := check(waitCtx)
		if err != nil {
			return backoff.Permanent(err)
		}
		if !done {
			return errPending
		}
		return nil
	}

	b := backoff.WithContext(backoff.NewConstantBackOff(r.pollInterval), waitCtx)
	err := backoff.Retry(op, b)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, errPending) || errors.Is(err, context.DeadlineExceeded):
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return ErrWaitTimeout
	default:
		return err
	}
}
