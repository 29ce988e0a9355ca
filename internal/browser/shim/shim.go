// internal/browser/shim/shim.go
package shim

import (
	"fmt"
	"strings"
)

const (
	// LocatorPlaceholder is replaced in the locator template with the JSON locator query.
	LocatorPlaceholder = "/*{{MATRIXCTL_LOCATOR}}*/"
)

// BuildLocatorScript injects a locator query into the template. The resulting
// expression evaluates to an array of matching elements in document order.
func BuildLocatorScript(template, queryJSON string) (string, error) {
	if template == "" {
		return "", fmt.Errorf("template is empty")
	}

	if !strings.Contains(template, LocatorPlaceholder) {
		return "", fmt.Errorf("template does not contain the required placeholder: %s", LocatorPlaceholder)
	}

	queryJSON = strings.TrimSpace(queryJSON)
	if queryJSON == "" || !strings.HasPrefix(queryJSON, "{") {
		return "", fmt.Errorf("locator query must be a JSON object, got %q", queryJSON)
	}

	return strings.Replace(template, LocatorPlaceholder, queryJSON, 1), nil
}
