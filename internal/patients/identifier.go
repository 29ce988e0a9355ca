// internal/patients/identifier.go
package patients

import "strings"

// Kind tells an internal record id apart from an externally issued MRN.
type Kind int

const (
	KindRecordID Kind = iota
	KindMRN
)

// mrnPrefix marks medical record numbers. Matching is case-sensitive.
const mrnPrefix = "MRN"

// Identifier is what the operator typed to name a patient.
type Identifier struct {
	Kind  Kind
	Value string
}

// ParseIdentifier classifies s by its literal MRN prefix.
func ParseIdentifier(s string) Identifier {
	if strings.HasPrefix(s, mrnPrefix) {
		return Identifier{Kind: KindMRN, Value: s}
	}
	return Identifier{Kind: KindRecordID, Value: s}
}

func (id Identifier) IsMRN() bool { return id.Kind == KindMRN }

func (id Identifier) String() string { return id.Value }

// Resolution is the record id an Identifier maps to. Patient is set only when
// a lookup actually happened.
type Resolution struct {
	RecordID string
	Patient  *Patient
}
