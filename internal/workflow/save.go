// internal/workflow/save.go
package workflow

import (
	"context"

	"github.com/xkilldash9x/matrixctl/internal/browser"
	"github.com/xkilldash9x/matrixctl/internal/resolver"
)

// SavePatientPlan finds the save button of the patient modal.
func SavePatientPlan() resolver.Plan {
	return resolver.Plan{
		Target: "Save Patient",
		Locators: []browser.Locator{
			browser.Quoted("Save Patient"),
			browser.Quoted("Save Changes"),
			browser.CSS("button").WithText("Save Patient"),
			browser.CSS("button").WithText("Save Changes"),
			browser.CSS(".btn-primary"),
			browser.CSS(`form button[type="submit"]`),
		},
	}
}

// SaveVitalsPlan finds the save button of the vital-signs card.
func SaveVitalsPlan() resolver.Plan {
	return resolver.Plan{
		Target: "Save Entry",
		Locators: []browser.Locator{
			browser.Quoted("Save Entry"),
			browser.CSS("button").WithText("Save Entry"),
			browser.CSS("button").WithText("Save"),
			browser.CSS(".bg-blue-600"),
		},
	}
}

func (r *Runner) SavePatient(ctx context.Context) error {
	return r.clickSave(ctx, SavePatientPlan())
}

func (r *Runner) SaveVitals(ctx context.Context) error {
	return r.clickSave(ctx, SaveVitalsPlan())
}

func (r *Runner) clickSave(ctx context.Context, plan resolver.Plan) error {
	r.out.Info("Clicking %s button...", plan.Target)
	_, ui, err := r.ui(ctx)
	if err != nil {
		return err
	}
	if err := ui.Click(ctx, plan, browser.PickFirst); err != nil {
		return err
	}
	r.out.Success("%s button clicked", plan.Target)
	return nil
}
