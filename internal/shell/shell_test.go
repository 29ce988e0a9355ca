// internal/shell/shell_test.go
package shell

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap/zaptest"

	"github.com/xkilldash9x/matrixctl/internal/browser"
	"github.com/xkilldash9x/matrixctl/internal/config"
	"github.com/xkilldash9x/matrixctl/internal/console"
	"github.com/xkilldash9x/matrixctl/internal/mocks"
	"github.com/xkilldash9x/matrixctl/internal/patients"
)

type harness struct {
	shell     *Shell
	session   *browser.Session
	page      *mocks.MockPage
	directory *mocks.MockPatientDirectory
	out       *bytes.Buffer
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	cfg := config.NewDefaultConfig()
	cfg.Workflow.SettleTimeout = 20 * time.Millisecond
	cfg.Workflow.PollInterval = time.Millisecond

	h := &harness{
		page:      new(mocks.MockPage),
		directory: new(mocks.MockPatientDirectory),
		out:       &bytes.Buffer{},
	}
	logger := zaptest.NewLogger(t)
	h.session = browser.NewSession(h.page.Launcher(), logger)
	h.shell = New(h.session, h.directory, console.New(h.out, false), cfg, logger)
	t.Cleanup(func() {
		h.page.AssertExpectations(t)
		h.directory.AssertExpectations(t)
	})
	return h
}

// neverLaunch swaps in a session whose browser must not start.
func (h *harness) neverLaunch(t *testing.T) {
	h.session = browser.NewSession(func(context.Context) (browser.Page, error) {
		t.Error("browser launched unexpectedly")
		return nil, errors.New("unexpected launch")
	}, zaptest.NewLogger(t))
	h.shell.session = h.session
}

func TestParse(t *testing.T) {
	verbs := []string{"click", "click_role", "add_vitals", "add_vitals_auto", "help", "goto"}
	tests := []struct {
		line string
		want Command
	}{
		{"help", Command{Verb: "help"}},
		{"HELP", Command{Verb: "help"}},
		{"click Add Entry", Command{Verb: "click", Args: []string{"Add", "Entry"}, Raw: "Add Entry"}},
		{"CLICK  Save", Command{Verb: "click", Args: []string{"", "Save"}, Raw: " Save"}},
		{"click_role button Add Patient", Command{Verb: "click_role", Args: []string{"button", "Add", "Patient"}, Raw: "button Add Patient"}},
		{"add_vitals_auto 1 120/80", Command{Verb: "add_vitals_auto", Args: []string{"1", "120/80"}, Raw: "1 120/80"}},
		{"add_vitals MRN1 120/80", Command{Verb: "add_vitals", Args: []string{"MRN1", "120/80"}, Raw: "MRN1 120/80"}},
		{`goto /patient/1 "quoted"`, Command{Verb: "goto", Args: []string{"/patient/1", `"quoted"`}, Raw: `/patient/1 "quoted"`}},
		{"clicker", Command{}},
		{"dance", Command{}},
	}
	for _, tt := range tests {
		got := Parse(tt.line, verbs)
		if diff := cmp.Diff(tt.want, got, cmpopts.EquateEmpty()); diff != "" {
			t.Errorf("Parse(%q) mismatch (-want +got):\n%s", tt.line, diff)
		}
	}
}

func TestCommandHelpers(t *testing.T) {
	cmd := Parse("fill notes Patient  stable", []string{"fill"})
	assert.Equal(t, "notes", cmd.Arg(0, "x"))
	assert.Equal(t, "Patient  stable", cmd.Tail(1))
	assert.Equal(t, "fallback", cmd.Arg(9, "fallback"))
	assert.Equal(t, "", cmd.Tail(9))
}

func TestDispatchRoutesEveryVerb(t *testing.T) {
	h := newHarness(t)
	h.neverLaunch(t)

	var called []string
	recorders := map[string]handler{}
	for verb := range h.shell.defaultHandlers() {
		verb := verb
		recorders[verb] = func(_ context.Context, cmd Command) error {
			called = append(called, cmd.Verb)
			return nil
		}
	}
	h.shell.setHandlers(recorders)

	lines := map[string]string{
		"help":                       "help",
		"click Add Entry":            "click",
		"click_role button Save":     "click_role",
		"fill firstName John":        "fill",
		"type lastName Doe":          "type",
		"select sex F":               "select",
		"goto /dashboard":            "goto",
		"screenshot shot.png":        "screenshot",
		"wait 1":                     "wait",
		"login a@b.c pw":             "login",
		"logout":                     "logout",
		"add_patient John Doe":       "add_patient",
		"save_patient":               "save_patient",
		"save_vitals":                "save_vitals",
		"add_vitals 1":               "add_vitals",
		"add_vitals_auto 1 120/80":   "add_vitals_auto",
		"patient_fields":             "patient_fields",
		"vital_fields":               "vital_fields",
		"list_patients":              "list_patients",
		"refresh":                    "refresh",
		"  Click_Role link Home   ":  "click_role",
	}
	for line, verb := range lines {
		called = nil
		quit := h.shell.Dispatch(context.Background(), line)
		assert.False(t, quit, line)
		assert.Equal(t, []string{verb}, called, "line %q", line)
	}

	assert.True(t, h.shell.Dispatch(context.Background(), "quit"))
	assert.True(t, h.shell.Dispatch(context.Background(), "EXIT"))
}

func TestDispatchUnknownVerb(t *testing.T) {
	h := newHarness(t)
	h.neverLaunch(t)

	assert.False(t, h.shell.Dispatch(context.Background(), "dance wildly"))
	assert.Equal(t, unknownCommand+"\n", h.out.String())
}

func TestHelpNeverTouchesSession(t *testing.T) {
	h := newHarness(t)
	h.neverLaunch(t)

	for i := 0; i < 3; i++ {
		h.shell.Dispatch(context.Background(), "help")
		h.shell.Dispatch(context.Background(), "patient_fields")
		h.shell.Dispatch(context.Background(), "vital_fields")
	}
	assert.Equal(t, browser.StateUninitialized, h.session.State())
	assert.Contains(t, h.out.String(), "'add_vitals_auto [patientId/MRN]")
	assert.Contains(t, h.out.String(), "oxygenSaturation (O2 Saturation - %)")
}

func TestDispatchRecoversPanics(t *testing.T) {
	h := newHarness(t)
	h.shell.setHandlers(map[string]handler{
		"boom": func(context.Context, Command) error { panic("nil map") },
	})

	assert.False(t, h.shell.Dispatch(context.Background(), "boom"))
	assert.Contains(t, h.out.String(), `Error: command "boom" panicked: nil map`)
}

func TestUsageErrorsPerformNothing(t *testing.T) {
	h := newHarness(t)
	h.neverLaunch(t)

	for _, line := range []string{"fill firstName", "select sex", "click_role button", "login only@email", "add_patient John", "wait soon", "goto", "click"} {
		h.out.Reset()
		h.shell.Dispatch(context.Background(), line)
		assert.True(t, strings.HasPrefix(h.out.String(), "Usage: "), "line %q printed %q", line, h.out.String())
	}
}

func TestClickHandler(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		h := newHarness(t)
		h.page.On("Count", ctx, browser.FuzzyText("Add Entry")).Return(1, nil).Once()
		h.page.On("Click", ctx, browser.FuzzyText("Add Entry"), browser.PickFirst).Return(nil).Once()

		h.shell.Dispatch(ctx, "click Add Entry")
		assert.Equal(t, "Clicked element with text: Add Entry\n", h.out.String())
	})

	t.Run("not found names the target", func(t *testing.T) {
		h := newHarness(t)
		h.page.On("Count", ctx, mock.Anything).Return(0, nil).Times(4)

		h.shell.Dispatch(ctx, "click Discharge")
		assert.Equal(t, "Error: could not find element: Discharge\n", h.out.String())
		h.page.AssertNotCalled(t, "Click", mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestGotoJoinsRelativeURLs(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.page.On("Navigate", ctx, "http://localhost:3000/patient/7").Return(nil).Once()
	h.page.On("Navigate", ctx, "https://example.org").Return(errors.New("net::ERR_NAME_NOT_RESOLVED")).Once()

	h.shell.Dispatch(ctx, "goto /patient/7")
	h.shell.Dispatch(ctx, "goto https://example.org")
	assert.Contains(t, h.out.String(), "Navigated to: http://localhost:3000/patient/7")
	assert.Contains(t, h.out.String(), "Error: navigation failed (https://example.org): net::ERR_NAME_NOT_RESOLVED")
}

func TestScreenshotDefaultName(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.shell.now = func() time.Time { return time.Unix(1700000000, 0) }

	var written string
	h.shell.writeFile = func(name string, data []byte, _ os.FileMode) error {
		written = name
		assert.Equal(t, []byte("png"), data)
		return nil
	}
	h.page.On("Screenshot", ctx).Return([]byte("png"), nil).Once()

	h.shell.Dispatch(ctx, "screenshot")
	assert.Equal(t, "screenshot-1700000000.png", written)
}

func TestListPatients(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)
	h.neverLaunch(t)
	h.directory.On("List", ctx).Return([]patients.Patient{
		{ID: "1", MedicalRecordNumber: "MRN1", FirstName: "John", LastName: "Doe", RoomNumber: "101"},
		{ID: "2", MedicalRecordNumber: "MRN2", FirstName: "Jane", LastName: "Roe"},
	}, nil).Once()

	h.shell.Dispatch(ctx, "list_patients")
	out := h.out.String()
	assert.Contains(t, out, "ID: 1 | MRN: MRN1 | Name: John Doe | Room: 101")
	assert.Contains(t, out, "ID: 2 | MRN: MRN2 | Name: Jane Roe | Room: N/A")
	assert.Contains(t, out, "Total patients: 2")
}

func TestWaitHonorsCancellation(t *testing.T) {
	h := newHarness(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	h.shell.Dispatch(ctx, "wait 30")
	assert.Less(t, time.Since(start), time.Second)
	assert.Contains(t, h.out.String(), "context canceled")
}

func TestWaitRejectsUnrepresentableDurations(t *testing.T) {
	h := newHarness(t)
	h.neverLaunch(t)

	for _, line := range []string{"wait 1e10", "wait 9223372036.9", "wait NaN", "wait Inf", "wait -Inf", "wait -1"} {
		h.out.Reset()
		start := time.Now()
		h.shell.Dispatch(context.Background(), line)
		assert.Less(t, time.Since(start), time.Second, line)
		assert.Equal(t, "Usage: wait [seconds]\n", h.out.String(), line)
	}
}

func TestRun(t *testing.T) {
	defer goleak.VerifyNone(t, goleak.IgnoreCurrent())

	t.Run("quit closes the session", func(t *testing.T) {
		h := newHarness(t)
		h.page.On("Count", mock.Anything, mock.Anything).Return(1, nil)
		h.page.On("Click", mock.Anything, mock.Anything, mock.Anything).Return(nil).Once()
		h.page.On("Close").Return(nil).Once()

		err := h.shell.Run(context.Background(), strings.NewReader("help\n\nbogus\nclick Save\nquit\nclick never\n"))
		require.NoError(t, err)
		assert.Equal(t, browser.StateClosed, h.session.State())
		assert.Contains(t, h.out.String(), unknownCommand)
		assert.Contains(t, h.out.String(), "Closing browser...")
	})

	t.Run("EOF ends the loop", func(t *testing.T) {
		h := newHarness(t)
		require.NoError(t, h.shell.Run(context.Background(), strings.NewReader("help")))
		assert.Equal(t, browser.StateClosed, h.session.State())
	})

	t.Run("cancellation abandons the blocking read", func(t *testing.T) {
		h := newHarness(t)
		r, w := io.Pipe()
		ctx, cancel := context.WithCancel(context.Background())

		done := make(chan error, 1)
		go func() { done <- h.shell.Run(ctx, r) }()
		cancel()

		select {
		case err := <-done:
			require.NoError(t, err)
		case <-time.After(2 * time.Second):
			t.Fatal("Run did not return after cancellation")
		}
		assert.Equal(t, browser.StateClosed, h.session.State())
		require.NoError(t, w.Close())
	})
}
