// internal/browser/shim/embed.go
package shim

import (
	_ "embed"
	"fmt"
)

//go:embed locator.js
var locatorTemplate string

//go:embed fill.js
var fillFunction string

//go:embed select.js
var selectFunction string

// GetLocatorTemplate returns the embedded locator engine with its query placeholder intact.
func GetLocatorTemplate() (string, error) {
	if locatorTemplate == "" {
		return "", fmt.Errorf("embedded locator.js template is empty or failed to load")
	}
	return locatorTemplate, nil
}

// FillFunction is a JS function declaration taking (element, value). It returns
// an empty string on success or a reason the element could not be filled.
func FillFunction() string { return fillFunction }

// SelectFunction is a JS function declaration taking (selectElement, valueOrLabel)
// with the same return convention as FillFunction.
func SelectFunction() string { return selectFunction }
