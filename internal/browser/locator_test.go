// internal/browser/locator_test.go
package browser

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocatorScript(t *testing.T) {
	t.Parallel()

	t.Run("embeds the encoded locator", func(t *testing.T) {
		t.Parallel()
		script, err := Attribute("name", `first"Name`).Script()
		require.NoError(t, err)
		assert.Contains(t, script, `{"strategy":"attribute-selector","value":"first\"Name","attr":"name"}`)
		assert.True(t, strings.HasSuffix(script, ")()"), "script must be a single evaluable expression")
	})

	t.Run("carries the text filter", func(t *testing.T) {
		t.Parallel()
		script, err := CSS("select").WithText("°F", "°C").Script()
		require.NoError(t, err)
		assert.Contains(t, script, `"hasText":["°F","°C"]`)
	})

	t.Run("rejects incomplete locators", func(t *testing.T) {
		t.Parallel()
		_, err := Locator{}.Script()
		assert.Error(t, err)
		_, err = Locator{Strategy: StrategyAttribute, Value: "x"}.Script()
		assert.Error(t, err)
		_, err = Locator{Strategy: StrategyRole, Value: "Add Entry"}.Script()
		assert.Error(t, err)
	})
}

func TestLocatorWithTextDoesNotAlias(t *testing.T) {
	base := CSS("select").WithText("°F")
	a := base.WithText("°C")
	b := base.WithText("K")
	assert.Equal(t, []string{"°F", "°C"}, a.HasText)
	assert.Equal(t, []string{"°F", "K"}, b.HasText)
	assert.Equal(t, []string{"°F"}, base.HasText)
}

func TestLocatorString(t *testing.T) {
	assert.Equal(t, `fuzzy-text("Add Entry")`, FuzzyText("Add Entry").String())
	assert.Equal(t, `attribute-selector(id="temperature")`, Attribute("id", "temperature").String())
	assert.Equal(t, `role(button, "Add Patient")`, Role("button", "Add Patient").String())
}

func TestElementExpr(t *testing.T) {
	assert.Equal(t, "(S)[0]", elementExpr("S", PickFirst))
	assert.Equal(t, "((els) => els[els.length - 1])(S)", elementExpr("S", PickLast))
}

func TestResolveURL(t *testing.T) {
	tests := []struct {
		base, target, want string
	}{
		{"http://localhost:3000", "/patients", "http://localhost:3000/patients"},
		{"http://localhost:3000/", "patients", "http://localhost:3000/patients"},
		{"http://localhost:3000", "https://example.org/x", "https://example.org/x"},
		{"http://localhost:3000", "", "http://localhost:3000"},
		{"http://localhost:3000", " /login ", "http://localhost:3000/login"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ResolveURL(tt.base, tt.target), "ResolveURL(%q, %q)", tt.base, tt.target)
	}
}
