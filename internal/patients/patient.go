// internal/patients/patient.go
package patients

import (
	"fmt"
	"strings"

	jsoniter "github.com/json-iterator/go"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// Patient is the read-only view of a patient record from the REST API.
type Patient struct {
	ID                  FlexString `json:"id"`
	MedicalRecordNumber string     `json:"medicalRecordNumber"`
	FirstName           string     `json:"firstName"`
	LastName            string     `json:"lastName"`
	RoomNumber          FlexString `json:"roomNumber"`
}

// Name is "First Last", trimmed when either half is missing.
func (p Patient) Name() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// FlexString accepts a JSON string or number and keeps its text form.
type FlexString string

func (f *FlexString) UnmarshalJSON(data []byte) error {
	raw := strings.TrimSpace(string(data))
	switch {
	case raw == "null":
		*f = ""
		return nil
	case strings.HasPrefix(raw, `"`):
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = FlexString(s)
		return nil
	}
	var n float64
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("expected string or number, got %s", raw)
	}
	*f = FlexString(raw)
	return nil
}
