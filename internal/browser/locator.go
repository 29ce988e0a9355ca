// internal/browser/locator.go
package browser

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"github.com/xkilldash9x/matrixctl/internal/browser/shim"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Strategy names one way of locating elements on the page.
type Strategy string

const (
	// StrategyFuzzyText matches the innermost elements whose visible text contains
	// the value, ignoring case and collapsing whitespace.
	StrategyFuzzyText Strategy = "fuzzy-text"
	// StrategyExactText matches the innermost elements whose visible text equals the value.
	StrategyExactText Strategy = "exact-text"
	// StrategyTextPseudo is the `text=X` form: case-insensitive containment that
	// also considers the value of input buttons.
	StrategyTextPseudo Strategy = "text-pseudo-selector"
	// StrategyQuoted is the `"X"` form: exact text that also considers input button values.
	StrategyQuoted Strategy = "quoted-selector"
	// StrategyRaw treats the value as a CSS selector. An invalid selector fails the probe.
	StrategyRaw       Strategy = "raw-selector"
	StrategyAttribute Strategy = "attribute-selector"
	// StrategyLabel matches form controls by <label>, aria-label or aria-labelledby text.
	StrategyLabel       Strategy = "label"
	StrategyPlaceholder Strategy = "placeholder"
	// StrategyRole matches by ARIA role, explicit or implicit, and accessible name.
	StrategyRole Strategy = "role"
)

// Locator is one strategy applied to one value. It is evaluated in the page by
// the embedded locator engine and always yields elements in document order.
type Locator struct {
	Strategy Strategy `json:"strategy"`
	Value    string   `json:"value,omitempty"`
	Attr     string   `json:"attr,omitempty"`
	Role     string   `json:"role,omitempty"`
	// HasText keeps only elements whose text contains at least one of these strings.
	HasText []string `json:"hasText,omitempty"`
}

func FuzzyText(text string) Locator   { return Locator{Strategy: StrategyFuzzyText, Value: text} }
func ExactText(text string) Locator   { return Locator{Strategy: StrategyExactText, Value: text} }
func TextPseudo(text string) Locator  { return Locator{Strategy: StrategyTextPseudo, Value: text} }
func Quoted(text string) Locator      { return Locator{Strategy: StrategyQuoted, Value: text} }
func CSS(selector string) Locator     { return Locator{Strategy: StrategyRaw, Value: selector} }
func Label(text string) Locator       { return Locator{Strategy: StrategyLabel, Value: text} }
func Placeholder(text string) Locator { return Locator{Strategy: StrategyPlaceholder, Value: text} }

// Attribute matches elements whose attribute attr equals value exactly.
func Attribute(attr, value string) Locator {
	return Locator{Strategy: StrategyAttribute, Attr: attr, Value: value}
}

// Role matches elements with the given ARIA role whose accessible name contains name.
// An empty name matches every element with the role.
func Role(role, name string) Locator {
	return Locator{Strategy: StrategyRole, Role: role, Value: name}
}

// WithText returns a copy of l restricted to elements containing any of texts.
func (l Locator) WithText(texts ...string) Locator {
	l.HasText = append(append([]string(nil), l.HasText...), texts...)
	return l
}

// String renders the locator the way it appears in debug logs.
func (l Locator) String() string {
	var b strings.Builder
	b.WriteString(string(l.Strategy))
	b.WriteByte('(')
	switch l.Strategy {
	case StrategyAttribute:
		fmt.Fprintf(&b, "%s=%q", l.Attr, l.Value)
	case StrategyRole:
		fmt.Fprintf(&b, "%s, %q", l.Role, l.Value)
	default:
		fmt.Fprintf(&b, "%q", l.Value)
	}
	if len(l.HasText) > 0 {
		fmt.Fprintf(&b, " has %q", l.HasText)
	}
	b.WriteByte(')')
	return b.String()
}

// Script returns a JS expression evaluating to the array of elements matched by l.
func (l Locator) Script() (string, error) {
	if l.Strategy == "" {
		return "", fmt.Errorf("locator has no strategy")
	}
	if l.Strategy == StrategyAttribute && l.Attr == "" {
		return "", fmt.Errorf("attribute locator for %q has no attribute name", l.Value)
	}
	if l.Strategy == StrategyRole && l.Role == "" {
		return "", fmt.Errorf("role locator for %q has no role", l.Value)
	}

	queryJSON, err := json.MarshalToString(l)
	if err != nil {
		return "", fmt.Errorf("failed to encode locator: %w", err)
	}
	template, err := shim.GetLocatorTemplate()
	if err != nil {
		return "", err
	}
	script, err := shim.BuildLocatorScript(template, queryJSON)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(script), nil
}

// Pick selects which match of a committed locator an action applies to.
type Pick int

const (
	PickFirst Pick = iota
	PickLast
)

func (p Pick) String() string {
	if p == PickLast {
		return "last"
	}
	return "first"
}

// elementExpr narrows a locator script to a single element expression.
func elementExpr(script string, pick Pick) string {
	if pick == PickLast {
		return "((els) => els[els.length - 1])(" + script + ")"
	}
	return "(" + script + ")[0]"
}
