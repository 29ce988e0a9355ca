// internal/shell/help.go
package shell

import "strings"

const helpText = `Available commands:
- 'click [text]' - Click element with text
- 'click_role [role] [name]' - Click element by role and name
- 'fill [field] [text]' - Fill text into a field
- 'type [field] [text]' - Same as fill
- 'select [field] [value]' - Select option from dropdown
- 'goto [url]' - Navigate to URL (relative paths use the app base URL)
- 'screenshot [filename]' - Take a full-page screenshot
- 'wait [seconds]' - Wait for specified seconds
- 'login [email] [password]' - Quick login
- 'logout' - Quick logout
- 'add_patient [firstName] [lastName] [age] [sex] [room] [physician] [dob]' - Quick add patient
- 'save_patient' - Click Save Patient button in modal
- 'save_vitals' - Click Save Entry button in vital signs
- 'add_vitals [patientId/MRN] [bp] [hr] [temp] [tempUnit] [resp] [o2sat]' - Add vital signs (stops at confirmation)
- 'add_vitals_auto [patientId/MRN] [bp] [hr] [temp] [tempUnit] [resp] [o2sat]' - Add vital signs (auto-confirms)
- 'patient_fields' - Show all patient form field names
- 'vital_fields' - Show all vital signs field names
- 'list_patients' - Show all patients with their IDs and MRNs
- 'refresh' - Refresh the current page
- 'quit' or 'exit' - Close browser
- 'help' - Show this help`

const patientFieldsText = `Patient Form Field Names:
Basic Information:
  - firstName (First Name)
  - lastName (Last Name)
  - age (Age - number)
  - dob (Date of Birth - YYYY-MM-DD format)
  - sex (Sex - M/F)
  - room (Room Number)
  - physician (Primary Physician)

Additional Information:
  - allergies (Allergies)
  - diagnoses (Diagnoses)
  - diet (Diet)
  - adminInstructions (Administration Instructions)

Examples:
  fill firstName John
  fill lastName Doe
  fill age 45
  fill dob 1979-05-15
  fill sex M
  fill room 205
  fill physician Dr. Johnson`

const vitalFieldsText = `Vital Signs Field Names:
  - bloodPressureSystolic (BP Systolic - e.g., 120)
  - bloodPressureDiastolic (BP Diastolic - e.g., 80)
  - temperature (Temperature - e.g., 98.6)
  - temperatureUnit (Temperature Unit - F or C)
  - pulse (Pulse - BPM)
  - respiration (Respiration - per minute)
  - oxygenSaturation (O2 Saturation - %)
  - painLevel (Pain Level - 0-10)
  - notes (Additional Notes)

Examples:
  fill bloodPressureSystolic 120
  fill bloodPressureDiastolic 80
  fill temperature 98.6
  select temperatureUnit F
  fill pulse 72
  fill respiration 16
  fill oxygenSaturation 98
  fill painLevel 3
  fill notes Patient stable`

func (s *Shell) printHelp() { s.printLines(helpText) }

// printLines writes a block verbatim; Println would treat '%' as a verb.
func (s *Shell) printLines(block string) {
	for _, line := range strings.Split(block, "\n") {
		s.out.Println("%s", line)
	}
}
