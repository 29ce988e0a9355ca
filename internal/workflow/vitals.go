// internal/workflow/vitals.go
package workflow

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/matrixctl/internal/browser"
	"github.com/xkilldash9x/matrixctl/internal/failure"
	"github.com/xkilldash9x/matrixctl/internal/patients"
	"github.com/xkilldash9x/matrixctl/internal/resolver"
)

// VitalsState tracks how far a vitals entry got.
type VitalsState int

const (
	VitalsIdle VitalsState = iota
	VitalsResolved
	VitalsFormFilled
	VitalsSaveClicked
	VitalsConfirmClicked
	VitalsAwaitingManualConfirm
	VitalsAborted
)

func (s VitalsState) String() string {
	switch s {
	case VitalsIdle:
		return "idle"
	case VitalsResolved:
		return "resolved"
	case VitalsFormFilled:
		return "form-filled"
	case VitalsSaveClicked:
		return "save-clicked"
	case VitalsConfirmClicked:
		return "confirm-clicked"
	case VitalsAwaitingManualConfirm:
		return "awaiting-manual-confirm"
	case VitalsAborted:
		return "aborted"
	default:
		return fmt.Sprintf("VitalsState(%d)", int(s))
	}
}

// VitalsNote is written into the notes field of every scripted entry.
const VitalsNote = "Added via automation"

// VitalsInput is one vital-signs entry as typed by the operator.
type VitalsInput struct {
	Patient          string
	BloodPressure    string
	HeartRate        string
	Temperature      string
	TemperatureUnit  string
	Respiration      string
	OxygenSaturation string
	// AutoConfirm clicks through the confirmation modal as well.
	AutoConfirm bool
}

// DefaultVitalsInput holds the values used for omitted arguments.
func DefaultVitalsInput() VitalsInput {
	return VitalsInput{
		Patient:          "1",
		BloodPressure:    "120/80",
		HeartRate:        "72",
		Temperature:      "98.6",
		TemperatureUnit:  "F",
		Respiration:      "16",
		OxygenSaturation: "98",
	}
}

// BloodPressure is a parsed "systolic/diastolic" reading.
type BloodPressure struct {
	Systolic  string
	Diastolic string
}

var bpReading = regexp.MustCompile(`^[0-9]+(\.[0-9]+)?$`)

// ParseBloodPressure requires exactly two plain decimal readings separated by "/".
func ParseBloodPressure(s string) (BloodPressure, error) {
	parts := strings.Split(s, "/")
	if len(parts) != 2 {
		return BloodPressure{}, failure.InvalidInput("blood pressure %q must look like 120/80", s)
	}
	for _, p := range parts {
		if !bpReading.MatchString(p) {
			return BloodPressure{}, failure.InvalidInput("blood pressure %q must be numeric on both sides of /", s)
		}
	}
	return BloodPressure{Systolic: parts[0], Diastolic: parts[1]}, nil
}

// VitalsResult reports where the workflow stopped.
type VitalsResult struct {
	State    VitalsState
	RecordID string
	Patient  *patients.Patient
}

var (
	saveButton    = browser.CSS("button").WithText("Save")
	confirmButton = browser.CSS("button").WithText("Add Entry")
)

// AddVitals opens the patient's vitals form, fills it and saves. With
// AutoConfirm it also clicks the confirmation modal's "Add Entry" button.
func (r *Runner) AddVitals(ctx context.Context, in VitalsInput) (VitalsResult, error) {
	res := VitalsResult{State: VitalsIdle}

	bp, err := ParseBloodPressure(in.BloodPressure)
	if err != nil {
		res.State = VitalsAborted
		return res, err
	}

	r.out.Info("Adding vital signs for patient %s: BP=%s, HR=%s, Temp=%s°%s, Resp=%s, O2=%s...",
		in.Patient, in.BloodPressure, in.HeartRate, in.Temperature, in.TemperatureUnit, in.Respiration, in.OxygenSaturation)

	id := patients.ParseIdentifier(in.Patient)
	if id.IsMRN() {
		r.out.Info("Looking up patient by MRN: %s", id)
	}
	resolution, err := r.directory.Resolve(ctx, id)
	if err != nil {
		res.State = VitalsAborted
		return res, err
	}
	res.RecordID, res.Patient = resolution.RecordID, resolution.Patient
	res.State = VitalsResolved
	if p := resolution.Patient; p != nil {
		r.out.Success("Found patient: %s (ID: %s)", p.Name(), resolution.RecordID)
	}

	page, ui, err := r.ui(ctx)
	if err != nil {
		res.State = VitalsAborted
		return res, err
	}
	if err := r.fillVitals(ctx, page, ui, res.RecordID, bp, in); err != nil {
		res.State = VitalsAborted
		r.recoveryHint(res.RecordID, bp, in)
		return res, err
	}
	res.State = VitalsFormFilled

	if err := ui.Click(ctx, resolver.Plan{Target: "Save", Locators: []browser.Locator{saveButton}}, browser.PickFirst); err != nil {
		res.State = VitalsAborted
		r.recoveryHint(res.RecordID, bp, in)
		return res, err
	}
	res.State = VitalsSaveClicked

	if !in.AutoConfirm {
		res.State = VitalsAwaitingManualConfirm
		r.out.Success("Triggered vital signs entry for patient %s (ID: %s)", in.Patient, res.RecordID)
		r.out.Hint("Confirm the entry by clicking 'Add Entry' in the modal.")
		return res, nil
	}

	// The modal adds a second "Add Entry" button after the card's own.
	if err := ui.WaitFor(ctx, confirmButton, 2, r.settle); err != nil {
		if ctx.Err() != nil {
			return res, ctx.Err()
		}
		r.out.Hint("Auto-confirmation failed; click 'Add Entry' in the confirmation modal manually.")
		return res, failure.ElementNotFound("Add Entry")
	}
	if err := ui.Click(ctx, resolver.Plan{Target: "Add Entry", Locators: []browser.Locator{confirmButton}}, browser.PickLast); err != nil {
		r.out.Hint("Auto-confirmation failed; click 'Add Entry' in the confirmation modal manually.")
		return res, err
	}
	res.State = VitalsConfirmClicked
	r.out.Success("Added vital signs for patient %s (ID: %s)", in.Patient, res.RecordID)
	return res, nil
}

// fillVitals navigates to the patient, opens the entry form and fills it.
func (r *Runner) fillVitals(ctx context.Context, page browser.Page, ui *resolver.Resolver, recordID string, bp BloodPressure, in VitalsInput) error {
	current, err := page.URL(ctx)
	if err != nil {
		r.logger.Debug("Could not read current URL", zap.Error(err))
	}
	if !onPatientPage(current, recordID) {
		target := r.appURL("/patient/" + url.PathEscape(recordID))
		if err := page.Navigate(ctx, target); err != nil {
			return failure.NavigationFailed(target, err)
		}
		if err := r.settleOn(ctx, ui, browser.FuzzyText("Add Entry"), 1); err != nil {
			return err
		}
	}

	if err := ui.ClickText(ctx, "Add Entry"); err != nil {
		r.logger.Debug("Text click on Add Entry failed, trying role", zap.Error(err))
		if err := ui.ClickRole(ctx, "button", "Add Entry"); err != nil {
			return err
		}
	}

	systolic := resolver.FieldPlan("bloodPressureSystolic").Locators[0]
	if err := r.settleOn(ctx, ui, systolic, 1); err != nil {
		return err
	}

	steps := []struct {
		field, value string
		dropdown     bool
	}{
		{field: "bloodPressureSystolic", value: bp.Systolic},
		{field: "bloodPressureDiastolic", value: bp.Diastolic},
		{field: "temperature", value: in.Temperature},
		{field: "temperatureUnit", value: in.TemperatureUnit, dropdown: true},
		{field: "pulse", value: in.HeartRate},
		{field: "respiration", value: in.Respiration},
		{field: "oxygenSaturation", value: in.OxygenSaturation},
		{field: "notes", value: VitalsNote},
	}
	for _, step := range steps {
		var err error
		if step.dropdown {
			err = ui.Select(ctx, step.field, step.value)
		} else {
			err = ui.Fill(ctx, step.field, step.value)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// onPatientPage reports whether rawURL is the detail page of recordID.
func onPatientPage(rawURL, recordID string) bool {
	u, err := url.Parse(rawURL)
	if err != nil || u.Path == "" {
		return false
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := 0; i+1 < len(segments); i++ {
		if segments[i] == "patient" && segments[i+1] == recordID {
			return true
		}
	}
	return false
}

func (r *Runner) recoveryHint(recordID string, bp BloodPressure, in VitalsInput) {
	r.out.Hint("Try the individual commands:")
	r.out.Hint("   goto /patient/%s", recordID)
	r.out.Hint("   click Add Entry")
	r.out.Hint("   fill bloodPressureSystolic %s", bp.Systolic)
	r.out.Hint("   fill bloodPressureDiastolic %s", bp.Diastolic)
	r.out.Hint("   fill pulse %s", in.HeartRate)
}
