// internal/resolver/resolver_test.go
package resolver

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/matrixctl/internal/browser"
	"github.com/xkilldash9x/matrixctl/internal/failure"
	"github.com/xkilldash9x/matrixctl/internal/mocks"
)

func newTestResolver(t *testing.T) (*Resolver, *mocks.MockPage) {
	t.Helper()
	page := new(mocks.MockPage)
	t.Cleanup(func() { page.AssertExpectations(t) })
	return New(page, zaptest.NewLogger(t), 5*time.Millisecond), page
}

func TestClickTextProbesInOrderAndStopsAtFirstHit(t *testing.T) {
	ctx := context.Background()
	r, page := newTestResolver(t)

	var probed []browser.Strategy
	record := func(args mock.Arguments) { probed = append(probed, args.Get(1).(browser.Locator).Strategy) }

	page.On("Count", ctx, browser.FuzzyText("Add Entry")).Return(0, nil).Run(record).Once()
	page.On("Count", ctx, browser.ExactText("Add Entry")).Return(0, errors.New("evaluation failed")).Run(record).Once()
	page.On("Count", ctx, browser.TextPseudo("Add Entry")).Return(2, nil).Run(record).Once()
	page.On("Click", ctx, browser.TextPseudo("Add Entry"), browser.PickFirst).Return(nil).Once()

	require.NoError(t, r.ClickText(ctx, "Add Entry"))
	assert.Equal(t, []browser.Strategy{browser.StrategyFuzzyText, browser.StrategyExactText, browser.StrategyTextPseudo}, probed)
	page.AssertNotCalled(t, "Count", ctx, browser.Quoted("Add Entry"))
}

func TestClickAllZeroPlanTakesNoAction(t *testing.T) {
	ctx := context.Background()
	r, page := newTestResolver(t)
	page.On("Count", ctx, mock.Anything).Return(0, nil).Times(4)

	err := r.ClickText(ctx, "Discharge")
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.CodeElementNotFound))
	assert.Equal(t, "could not find element: Discharge", err.Error())
	page.AssertNotCalled(t, "Click", mock.Anything, mock.Anything, mock.Anything)
}

func TestCommittedActionFailureIsNotRetried(t *testing.T) {
	ctx := context.Background()
	r, page := newTestResolver(t)
	page.On("Count", ctx, browser.FuzzyText("Save")).Return(1, nil).Once()
	page.On("Click", ctx, browser.FuzzyText("Save"), browser.PickFirst).Return(errors.New("node detached")).Once()

	err := r.ClickText(ctx, "Save")
	require.Error(t, err)
	assert.True(t, failure.Is(err, failure.CodeActionFailed))
	assert.Contains(t, err.Error(), "node detached")
	page.AssertNumberOfCalls(t, "Count", 1)
}

func TestFill(t *testing.T) {
	ctx := context.Background()

	t.Run("generic field walks label, placeholder, name", func(t *testing.T) {
		r, page := newTestResolver(t)
		page.On("Count", ctx, browser.Label("firstName")).Return(0, nil).Once()
		page.On("Count", ctx, browser.Placeholder("firstName")).Return(0, nil).Once()
		page.On("Count", ctx, browser.Attribute("name", "firstName")).Return(1, nil).Once()
		page.On("Fill", ctx, browser.Attribute("name", "firstName"), "John").Return(nil).Once()

		require.NoError(t, r.Fill(ctx, "firstName", "John"))
	})

	t.Run("semantic field uses only its placeholder", func(t *testing.T) {
		r, page := newTestResolver(t)
		loc := browser.CSS(`input[placeholder="120"]`)
		page.On("Count", ctx, loc).Return(1, nil).Once()
		page.On("Fill", ctx, loc, "130").Return(nil).Once()

		require.NoError(t, r.Fill(ctx, "bloodPressureSystolic", "130"))
	})

	t.Run("missing field names only the field", func(t *testing.T) {
		r, page := newTestResolver(t)
		page.On("Count", ctx, mock.Anything).Return(0, nil).Times(5)

		err := r.Fill(ctx, "allergies", "None")
		assert.True(t, failure.Is(err, failure.CodeFieldNotFound))
		assert.Equal(t, "could not find field: allergies", err.Error())
	})
}

func TestSelect(t *testing.T) {
	ctx := context.Background()

	t.Run("temperature unit targets the select holding degree options", func(t *testing.T) {
		r, page := newTestResolver(t)
		loc := browser.CSS("select").WithText("°F", "°C")
		page.On("Count", ctx, loc).Return(1, nil).Once()
		page.On("SelectOption", ctx, loc, "C").Return(nil).Once()

		require.NoError(t, r.Select(ctx, "temperatureUnit", "C"))
	})

	t.Run("generic dropdown falls through to select by name", func(t *testing.T) {
		r, page := newTestResolver(t)
		page.On("Count", ctx, browser.Label("sex")).Return(0, nil).Once()
		page.On("Count", ctx, browser.Attribute("name", "sex")).Return(0, nil).Once()
		page.On("Count", ctx, browser.Attribute("id", "sex")).Return(0, nil).Once()
		page.On("Count", ctx, browser.CSS(`select[name="sex"]`)).Return(1, nil).Once()
		page.On("SelectOption", ctx, browser.CSS(`select[name="sex"]`), "F").Return(errors.New("no option")).Once()

		err := r.Select(ctx, "sex", "F")
		assert.True(t, failure.Is(err, failure.CodeActionFailed))
	})
}

func TestClickRole(t *testing.T) {
	ctx := context.Background()
	r, page := newTestResolver(t)
	loc := browser.Role("button", "Add Patient")
	page.On("Count", ctx, loc).Return(1, nil).Once()
	page.On("Click", ctx, loc, browser.PickFirst).Return(nil).Once()

	require.NoError(t, r.ClickRole(ctx, "button", "Add Patient"))
}

func TestWaitFor(t *testing.T) {
	ctx := context.Background()
	loc := browser.FuzzyText("Add Entry")

	t.Run("returns once the count is reached", func(t *testing.T) {
		r, page := newTestResolver(t)
		page.On("Count", mock.Anything, loc).Return(1, nil).Twice()
		page.On("Count", mock.Anything, loc).Return(2, nil).Once()

		require.NoError(t, r.WaitFor(ctx, loc, 2, time.Second))
	})

	t.Run("times out", func(t *testing.T) {
		r, page := newTestResolver(t)
		page.On("Count", mock.Anything, loc).Return(0, nil)

		err := r.WaitFor(ctx, loc, 1, 30*time.Millisecond)
		assert.ErrorIs(t, err, ErrWaitTimeout)
	})

	t.Run("honors caller cancellation", func(t *testing.T) {
		r, page := newTestResolver(t)
		page.On("Count", mock.Anything, loc).Return(0, nil).Maybe()
		cctx, cancel := context.WithCancel(ctx)
		cancel()

		err := r.WaitFor(cctx, loc, 1, time.Second)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestWaitGone(t *testing.T) {
	ctx := context.Background()
	loc := browser.Attribute("name", "firstName")

	t.Run("returns once nothing matches", func(t *testing.T) {
		r, page := newTestResolver(t)
		page.On("Count", mock.Anything, loc).Return(1, nil).Once()
		page.On("Count", mock.Anything, loc).Return(0, errors.New("navigating")).Once()
		page.On("Count", mock.Anything, loc).Return(0, nil).Once()

		require.NoError(t, r.WaitGone(ctx, loc, time.Second))
		page.AssertNumberOfCalls(t, "Count", 3)
	})

	t.Run("times out while still present", func(t *testing.T) {
		r, page := newTestResolver(t)
		page.On("Count", mock.Anything, loc).Return(1, nil)

		assert.ErrorIs(t, r.WaitGone(ctx, loc, 30*time.Millisecond), ErrWaitTimeout)
	})
}

func TestPlans(t *testing.T) {
	assert.Len(t, ClickPlan("x").Locators, 4)
	assert.Len(t, FieldPlan("x").Locators, 5)
	assert.Len(t, DropdownPlan("x").Locators, 5)
	assert.Equal(t, browser.CSS(`select[name="a\"b"]`), DropdownPlan(`a"b`).Locators[3])
	for field := range fastPath {
		assert.Len(t, FieldPlan(field).Locators, 1, field)
	}
}
