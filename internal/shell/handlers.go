// internal/shell/handlers.go
package shell

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-homedir"

	"github.com/xkilldash9x/matrixctl/internal/browser"
	"github.com/xkilldash9x/matrixctl/internal/failure"
	"github.com/xkilldash9x/matrixctl/internal/resolver"
	"github.com/xkilldash9x/matrixctl/internal/workflow"
)

func trimLine(line string) string { return strings.TrimSpace(line) }

func (s *Shell) defaultHandlers() map[string]handler {
	return map[string]handler{
		"help":            s.help,
		"click":           s.click,
		"click_role":      s.clickRole,
		"fill":            s.fill,
		"type":            s.fill,
		"select":          s.selectOption,
		"goto":            s.gotoURL,
		"screenshot":      s.screenshot,
		"wait":            s.wait,
		"login":           s.login,
		"logout":          s.logout,
		"add_patient":     s.addPatient,
		"save_patient":    s.savePatient,
		"save_vitals":     s.saveVitals,
		"add_vitals":      s.addVitals(false),
		"add_vitals_auto": s.addVitals(true),
		"patient_fields":  s.patientFields,
		"vital_fields":    s.vitalFields,
		"list_patients":   s.listPatients,
		"refresh":         s.refresh,
		// Recognized so they parse; Dispatch ends the loop before calling them.
		"quit": noop,
		"exit": noop,
	}
}

func noop(context.Context, Command) error { return nil }

// usage prints usage lines and performs nothing.
func (s *Shell) usage(lines ...string) error {
	for _, l := range lines {
		s.out.Println("%s", l)
	}
	return nil
}

// ui starts or reuses the browser and binds a resolver to its page.
func (s *Shell) ui(ctx context.Context) (browser.Page, *resolver.Resolver, error) {
	page, err := s.session.Page(ctx)
	if err != nil {
		return nil, nil, err
	}
	return page, resolver.New(page, s.logger, s.cfg.Workflow.PollInterval), nil
}

func (s *Shell) help(context.Context, Command) error {
	s.printHelp()
	return nil
}

func (s *Shell) patientFields(context.Context, Command) error {
	s.printLines(patientFieldsText)
	return nil
}

func (s *Shell) vitalFields(context.Context, Command) error {
	s.printLines(vitalFieldsText)
	return nil
}

func (s *Shell) click(ctx context.Context, cmd Command) error {
	if cmd.Raw == "" {
		return s.usage("Usage: click [text]")
	}
	_, ui, err := s.ui(ctx)
	if err != nil {
		return err
	}
	if err := ui.ClickText(ctx, cmd.Raw); err != nil {
		return err
	}
	s.out.Success("Clicked element with text: %s", cmd.Raw)
	return nil
}

func (s *Shell) clickRole(ctx context.Context, cmd Command) error {
	if len(cmd.Args) < 2 {
		return s.usage("Usage: click_role [role] [name]")
	}
	role, name := cmd.Args[0], cmd.Tail(1)
	_, ui, err := s.ui(ctx)
	if err != nil {
		return err
	}
	if err := ui.ClickRole(ctx, role, name); err != nil {
		return err
	}
	s.out.Success("Clicked %s with name: %s", role, name)
	return nil
}

func (s *Shell) fill(ctx context.Context, cmd Command) error {
	if len(cmd.Args) < 2 {
		return s.usage("Usage: fill [field] [text]")
	}
	field, text := cmd.Args[0], cmd.Tail(1)
	_, ui, err := s.ui(ctx)
	if err != nil {
		return err
	}
	if err := ui.Fill(ctx, field, text); err != nil {
		return err
	}
	s.out.Success("Filled '%s' with '%s'", field, text)
	return nil
}

func (s *Shell) selectOption(ctx context.Context, cmd Command) error {
	if len(cmd.Args) < 2 {
		return s.usage("Usage: select [field] [value]")
	}
	field, value := cmd.Args[0], cmd.Tail(1)
	_, ui, err := s.ui(ctx)
	if err != nil {
		return err
	}
	if err := ui.Select(ctx, field, value); err != nil {
		return err
	}
	s.out.Success("Selected '%s' in '%s'", value, field)
	return nil
}

func (s *Shell) gotoURL(ctx context.Context, cmd Command) error {
	target := strings.TrimSpace(cmd.Raw)
	if target == "" {
		return s.usage("Usage: goto [url]")
	}
	page, err := s.session.Page(ctx)
	if err != nil {
		return err
	}
	full := browser.ResolveURL(s.cfg.App.BaseURL, target)
	if err := page.Navigate(ctx, full); err != nil {
		return failure.NavigationFailed(full, err)
	}
	s.out.Success("Navigated to: %s", full)
	return nil
}

func (s *Shell) screenshot(ctx context.Context, cmd Command) error {
	name := strings.TrimSpace(cmd.Raw)
	if name == "" {
		name = fmt.Sprintf("screenshot-%d.png", s.now().Unix())
	}
	path, err := homedir.Expand(name)
	if err != nil {
		return failure.InvalidInput("cannot expand %q: %v", name, err)
	}

	page, err := s.session.Page(ctx)
	if err != nil {
		return err
	}
	png, err := page.Screenshot(ctx)
	if err != nil {
		return failure.ActionFailed("screenshot", err)
	}
	if err := s.writeFile(path, png, 0o644); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	s.out.Success("Screenshot saved as: %s", path)
	return nil
}

// maxWaitSeconds bounds wait so the duration fits in a time.Duration.
const maxWaitSeconds = float64(math.MaxInt64) / float64(time.Second)

func (s *Shell) wait(ctx context.Context, cmd Command) error {
	seconds, err := strconv.ParseFloat(strings.TrimSpace(cmd.Raw), 64)
	if err != nil || math.IsNaN(seconds) || seconds < 0 || seconds >= maxWaitSeconds {
		return s.usage("Usage: wait [seconds]")
	}
	timer := time.NewTimer(time.Duration(seconds * float64(time.Second)))
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
	}
	s.out.Success("Waited %s seconds", strconv.FormatFloat(seconds, 'f', -1, 64))
	return nil
}

func (s *Shell) login(ctx context.Context, cmd Command) error {
	if len(cmd.Args) < 2 {
		return s.usage("Usage: login [email] [password]")
	}
	return s.runner.Login(ctx, cmd.Args[0], cmd.Args[1])
}

func (s *Shell) logout(ctx context.Context, _ Command) error {
	s.out.Info("Logging out...")
	return s.runner.Logout(ctx)
}

func (s *Shell) addPatient(ctx context.Context, cmd Command) error {
	if len(cmd.Args) < 2 {
		return s.usage(
			"Usage: add_patient [firstName] [lastName] [age] [sex] [room] [physician] [dob]",
			"Example: add_patient John Doe 45 M 101 Dr.Smith 1979-05-15",
		)
	}
	in := workflow.PatientInput{
		FirstName: cmd.Args[0],
		LastName:  cmd.Args[1],
		Age:       cmd.Arg(2, ""),
		Sex:       cmd.Arg(3, ""),
		Room:      cmd.Arg(4, ""),
		Physician: cmd.Arg(5, ""),
		DOB:       cmd.Arg(6, ""),
	}
	return s.runner.AddPatient(ctx, in)
}

func (s *Shell) savePatient(ctx context.Context, _ Command) error {
	return s.runner.SavePatient(ctx)
}

func (s *Shell) saveVitals(ctx context.Context, _ Command) error {
	return s.runner.SaveVitals(ctx)
}

func (s *Shell) addVitals(auto bool) handler {
	verb := "add_vitals"
	if auto {
		verb = "add_vitals_auto"
	}
	return func(ctx context.Context, cmd Command) error {
		if len(cmd.Args) < 1 {
			return s.usage(
				"Usage: "+verb+" [patientId/MRN] [bp] [hr] [temp] [tempUnit] [resp] [o2sat]",
				"Example: "+verb+" 1 120/80 72 98.6 F 16 98",
				"Example: "+verb+" MRN1234567 120/80 72 37.0 C 16 98",
			)
		}
		def := workflow.DefaultVitalsInput()
		in := workflow.VitalsInput{
			Patient:          cmd.Arg(0, def.Patient),
			BloodPressure:    cmd.Arg(1, def.BloodPressure),
			HeartRate:        cmd.Arg(2, def.HeartRate),
			Temperature:      cmd.Arg(3, def.Temperature),
			TemperatureUnit:  cmd.Arg(4, def.TemperatureUnit),
			Respiration:      cmd.Arg(5, def.Respiration),
			OxygenSaturation: cmd.Arg(6, def.OxygenSaturation),
			AutoConfirm:      auto,
		}
		_, err := s.runner.AddVitals(ctx, in)
		return err
	}
}

func (s *Shell) listPatients(ctx context.Context, _ Command) error {
	s.out.Info("Fetching patient list...")
	list, err := s.directory.List(ctx)
	if err != nil {
		return err
	}
	s.out.Heading("Patient List:")
	s.out.Println("=====================================")
	for _, p := range list {
		room := string(p.RoomNumber)
		if room == "" {
			room = "N/A"
		}
		s.out.Println("ID: %s | MRN: %s | Name: %s | Room: %s", p.ID, p.MedicalRecordNumber, p.Name(), room)
	}
	s.out.Println("=====================================")
	s.out.Println("Total patients: %d", len(list))
	return nil
}

func (s *Shell) refresh(ctx context.Context, _ Command) error {
	page, err := s.session.Page(ctx)
	if err != nil {
		return err
	}
	s.out.Info("Refreshing page...")
	if err := page.Reload(ctx); err != nil {
		return failure.ActionFailed("refresh", err)
	}
	s.out.Success("Page refreshed")
	return nil
}
