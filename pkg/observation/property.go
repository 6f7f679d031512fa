package observation

import (
	"github.com/vango-dev/observation/internal/errors"
)

// PropertyID names one property of one observable type.
//
// Identifiers have identity semantics: a PropertyID is equal only to copies
// of itself, so two calls to NewProperty with the same name yield distinct
// identifiers. Declare each property once and use that value for both reads
// and writes:
//
//	var (
//	    NameProperty = observation.NewProperty("Suspect.name")
//	    AgeProperty  = observation.NewProperty("Suspect.age")
//	)
//
// The zero PropertyID is invalid.
type PropertyID struct {
	key *propertyKey
}

type propertyKey struct {
	name string
}

// NewProperty mints a new property identifier. The name is only used for
// diagnostics.
func NewProperty(name string) PropertyID {
	return PropertyID{key: &propertyKey{name: name}}
}

// Name returns the diagnostic name given to NewProperty.
func (p PropertyID) Name() string {
	if p.key == nil {
		return ""
	}
	return p.key.name
}

// String implements fmt.Stringer.
func (p PropertyID) String() string {
	if p.key == nil {
		return "<invalid property>"
	}
	return p.key.name
}

// IsValid reports whether p was created by NewProperty.
func (p PropertyID) IsValid() bool {
	return p.key != nil
}

func mustBeValid(p PropertyID) {
	if p.key == nil {
		panic(errors.New("E001"))
	}
}
