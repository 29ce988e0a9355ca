// internal/browser/page.go
package browser

import "context"

// Page is the browser surface the resolver and workflows drive. Count is a pure
// probe; every other method mutates or reads the live page.
type Page interface {
	// Count returns how many elements the locator currently matches.
	Count(ctx context.Context, loc Locator) (int, error)
	// Click scrolls to and clicks the picked match.
	Click(ctx context.Context, loc Locator, pick Pick) error
	// Fill clears the first match and sets its value, firing input and change events.
	Fill(ctx context.Context, loc Locator, value string) error
	// SelectOption chooses the option of the first matching <select> whose value
	// or label equals value.
	SelectOption(ctx context.Context, loc Locator, value string) error
	Navigate(ctx context.Context, url string) error
	Reload(ctx context.Context) error
	URL(ctx context.Context) (string, error)
	// Screenshot captures the full page as PNG.
	Screenshot(ctx context.Context) ([]byte, error)
	Close() error
}

// Launcher starts a browser and returns its page, already showing the start URL.
type Launcher func(ctx context.Context) (Page, error)
