// internal/workflow/patient.go
package workflow

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/xkilldash9x/matrixctl/internal/browser"
	"github.com/xkilldash9x/matrixctl/internal/failure"
	"github.com/xkilldash9x/matrixctl/internal/resolver"
)

// PatientInput is a new patient as typed by the operator.
type PatientInput struct {
	FirstName string
	LastName  string
	Age       string
	Sex       string
	Room      string
	Physician string
	// DOB overrides the birth date derived from Age when set.
	DOB string
}

// WithDefaults fills omitted optional fields.
func (in PatientInput) WithDefaults() PatientInput {
	if in.Age == "" {
		in.Age = "30"
	}
	if in.Sex == "" {
		in.Sex = "M"
	}
	if in.Room == "" {
		in.Room = "101"
	}
	if in.Physician == "" {
		in.Physician = "Dr. Smith"
	}
	return in
}

// NormalizeSex maps anything other than F to M.
func NormalizeSex(sex string) string {
	if strings.EqualFold(sex, "F") {
		return "F"
	}
	return "M"
}

// BirthDate approximates a date of birth as January 1st of (year - age).
func BirthDate(age string, year int) (string, error) {
	n, err := strconv.Atoi(age)
	if err != nil || n < 0 {
		return "", failure.InvalidInput("age %q must be a whole number", age)
	}
	return fmt.Sprintf("%04d-01-01", year-n), nil
}

// Fields the patient form is prefilled with.
var patientFormDefaults = []struct{ field, value string }{
	{"allergies", "None"},
	{"diagnoses", "General Care"},
	{"diet", "Regular"},
	{"adminInstructions", "Standard care protocols"},
}

// AddPatient opens the Add Patient modal, fills it and submits once. Whether
// the record was actually created is not verified.
func (r *Runner) AddPatient(ctx context.Context, in PatientInput) error {
	in = in.WithDefaults()

	dob := in.DOB
	if dob == "" {
		var err error
		if dob, err = BirthDate(in.Age, r.now().Year()); err != nil {
			return err
		}
		r.out.Info("Adding patient: %s %s, Age: %s (DOB: %s), Sex: %s, Room: %s, Physician: %s...",
			in.FirstName, in.LastName, in.Age, dob, in.Sex, in.Room, in.Physician)
	} else {
		r.out.Info("Adding patient: %s %s, DOB: %s, Sex: %s, Room: %s, Physician: %s...",
			in.FirstName, in.LastName, dob, in.Sex, in.Room, in.Physician)
	}

	_, ui, err := r.ui(ctx)
	if err != nil {
		return err
	}

	if err := ui.ClickRole(ctx, "button", "Add Patient"); err != nil {
		return err
	}
	if err := r.settleOn(ctx, ui, browser.Attribute("name", "firstName"), 1); err != nil {
		return err
	}

	fill := func(field, value string) error {
		return ui.FillPlan(ctx, resolver.NamedFieldPlan(field), value)
	}
	for _, f := range []struct{ field, value string }{
		{"firstName", in.FirstName},
		{"lastName", in.LastName},
		{"dob", dob},
	} {
		if err := fill(f.field, f.value); err != nil {
			return err
		}
	}
	// Not every form revision has an age input.
	if err := fill("age", in.Age); err != nil {
		r.logger.Debug("Skipping age field", zap.Error(err))
	}
	for _, f := range append([]struct{ field, value string }{
		{"sex", NormalizeSex(in.Sex)},
		{"room", in.Room},
		{"physician", in.Physician},
	}, patientFormDefaults...) {
		if err := fill(f.field, f.value); err != nil {
			return err
		}
	}

	submit := resolver.SelectorPlan("Submit", `button[type="submit"]`)
	if err := ui.Click(ctx, submit, browser.PickFirst); err != nil {
		return err
	}
	// The form closes once the app accepts the patient.
	if err := r.settleGone(ctx, ui, browser.Attribute("name", "firstName")); err != nil {
		return err
	}
	r.out.Success("Added patient: %s %s", in.FirstName, in.LastName)
	return nil
}
