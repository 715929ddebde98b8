// README: Tier editor view types and errors.
package tiereditor

import (
	"errors"

	"guava/internal/modules/pricing"
)

var (
	ErrRowNotFound  = errors.New("tier row not found")
	ErrNotConfirmed = errors.New("deletion requires confirmation")
	ErrUnknownField = errors.New("unknown tier field")
	ErrInvalidValue = errors.New("value is required for this field")
)

// Field names an editable numeric column of a tier row.
type Field string

const (
	FieldDistanceFrom Field = "distanceFromKm"
	FieldDistanceTo   Field = "distanceToKm"
	FieldRatePerKm    Field = "ratePerKm"
	FieldBaseFare     Field = "baseFare"
)

func ParseField(s string) (Field, error) {
	switch f := Field(s); f {
	case FieldDistanceFrom, FieldDistanceTo, FieldRatePerKm, FieldBaseFare:
		return f, nil
	}
	return "", ErrUnknownField
}

// Row is one tier as displayed, with its derived range label and any validation message.
type Row struct {
	Index int          `json:"index"`
	Tier  pricing.Tier `json:"tier"`
	Range string       `json:"range"`
	Error string       `json:"error,omitempty"`
}

// View is the editor's display state for one service type.
type View struct {
	ServiceType pricing.ServiceType `json:"serviceType"`
	Active      bool                `json:"active"`
	Rows        []Row               `json:"rows"`
}
