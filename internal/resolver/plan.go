// internal/resolver/plan.go
package resolver

import (
	"strings"

	"github.com/xkilldash9x/matrixctl/internal/browser"
)

// Plan is an ordered list of locators for one semantic target. The first
// locator with at least one match wins.
type Plan struct {
	// Target is what the operator asked for; it is the only thing failures name.
	Target   string
	Locators []browser.Locator
}

// ClickPlan covers free-text click targets.
func ClickPlan(text string) Plan {
	return Plan{
		Target: text,
		Locators: []browser.Locator{
			browser.FuzzyText(text),
			browser.ExactText(text),
			browser.TextPseudo(text),
			browser.Quoted(text),
		},
	}
}

// FieldPlan covers a generic form field named by the operator.
func FieldPlan(field string) Plan {
	if loc, ok := fastPathField(field); ok {
		return Plan{Target: field, Locators: []browser.Locator{loc}}
	}
	return Plan{
		Target: field,
		Locators: []browser.Locator{
			browser.Label(field),
			browser.Placeholder(field),
			browser.Attribute("name", field),
			browser.Attribute("id", field),
			browser.CSS(field),
		},
	}
}

// NamedFieldPlan targets a form control strictly by its name attribute.
func NamedFieldPlan(name string) Plan {
	return Plan{Target: name, Locators: []browser.Locator{browser.Attribute("name", name)}}
}

// SelectorPlan wraps fixed CSS selectors, tried in order, under one target name.
func SelectorPlan(target string, selectors ...string) Plan {
	plan := Plan{Target: target}
	for _, sel := range selectors {
		plan.Locators = append(plan.Locators, browser.CSS(sel))
	}
	return plan
}

// DropdownPlan covers a <select> named by the operator.
func DropdownPlan(field string) Plan {
	if field == "temperatureUnit" {
		return Plan{Target: field, Locators: []browser.Locator{temperatureUnitSelect}}
	}
	return Plan{
		Target: field,
		Locators: []browser.Locator{
			browser.Label(field),
			browser.Attribute("name", field),
			browser.Attribute("id", field),
			browser.CSS(`select[name="` + cssEscape(field) + `"]`),
			browser.CSS(field),
		},
	}
}

// RolePlan clicks by ARIA role and accessible name.
func RolePlan(role, name string) Plan {
	return Plan{Target: role + " " + name, Locators: []browser.Locator{browser.Role(role, name)}}
}

// Semantic vitals fields resolve to the one placeholder the vitals form uses.
var fastPath = map[string]browser.Locator{
	"bloodPressureSystolic":  browser.CSS(`input[placeholder="120"]`),
	"bloodPressureDiastolic": browser.CSS(`input[placeholder="80"]`),
	"temperature":            browser.CSS(`input[placeholder="98.6"]`),
	"pulse":                  browser.CSS(`input[placeholder="72"]`),
	"respiration":            browser.CSS(`input[placeholder="16"]`),
	"oxygenSaturation":       browser.CSS(`input[placeholder="98"]`),
	"painLevel":              browser.CSS(`input[placeholder="0"]`),
	"notes":                  browser.CSS(`textarea[placeholder*="Additional notes"]`),
}

var temperatureUnitSelect = browser.CSS("select").WithText("°F", "°C")

func fastPathField(field string) (browser.Locator, bool) {
	loc, ok := fastPath[field]
	return loc, ok
}

// cssEscape escapes a value for use inside a double-quoted CSS attribute selector.
func cssEscape(s string) string {
	return strings.NewReplacer(`\`, `\\`, `"`, `\"`).Replace(s)
}
