// internal/workflow/account.go
package workflow

import (
	"context"
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/matrixctl/internal/browser"
	"github.com/xkilldash9x/matrixctl/internal/failure"
	"github.com/xkilldash9x/matrixctl/internal/resolver"
)

// Login signs in through the login form and waits for the dashboard.
func (r *Runner) Login(ctx context.Context, email, password string) error {
	r.out.Info("Attempting to login with %s...", email)

	page, ui, err := r.ui(ctx)
	if err != nil {
		return err
	}

	current, err := page.URL(ctx)
	if err != nil {
		r.logger.Debug("Could not read current URL", zap.Error(err))
	}
	if !strings.Contains(current, "/login") {
		target := r.appURL("/login")
		if err := page.Navigate(ctx, target); err != nil {
			return failure.NavigationFailed(target, err)
		}
	}

	if err := ui.FillPlan(ctx, resolver.NamedFieldPlan("email"), email); err != nil {
		return err
	}
	if err := ui.FillPlan(ctx, resolver.NamedFieldPlan("password"), password); err != nil {
		return err
	}
	if err := ui.Click(ctx, resolver.SelectorPlan("Sign in", `button[type="submit"]`), browser.PickFirst); err != nil {
		return err
	}

	err = ui.Poll(ctx, r.settle, func(ctx context.Context) (bool, error) {
		u, err := page.URL(ctx)
		return err == nil && strings.Contains(u, "/dashboard"), nil
	})
	if errors.Is(err, resolver.ErrWaitTimeout) {
		return failure.New(failure.CodeNavigationFailed, r.appURL("/dashboard"), errors.New("login did not reach the dashboard"))
	}
	if err != nil {
		return err
	}
	r.out.Success("Logged in as %s", email)
	return nil
}

// Logout returns to the login page; the application has no logout endpoint.
func (r *Runner) Logout(ctx context.Context) error {
	page, err := r.pages(ctx)
	if err != nil {
		return err
	}
	target := r.appURL("/login")
	if err := page.Navigate(ctx, target); err != nil {
		return failure.NavigationFailed(target, err)
	}
	r.out.Success("Navigated to login page")
	return nil
}
