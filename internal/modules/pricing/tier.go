// README: Tier validation, contiguity checks, range labels and built-in defaults.
package pricing

import (
	"fmt"
	"sort"
	"strconv"
)

// Field-level messages shown to the operator; the request is never sent when one applies.
const (
	MsgDistanceFrom     = "Distance from must be 0 or greater"
	MsgDistanceTo       = "Distance to must be greater than distance from"
	MsgRatePerKm        = "Rate per km must be 0 or greater"
	MsgBaseFareRequired = "Base fare is required for 0-2km tier"
	MsgNoTiers          = "No tiers to save"
)

// ValidationError names the offending field and carries the operator-facing message.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ValidateTier applies the single-tier checks in order and reports the first failure.
func ValidateTier(t Tier) error {
	if t.DistanceFromKm < 0 {
		return &ValidationError{Field: "distanceFromKm", Message: MsgDistanceFrom}
	}
	if t.DistanceToKm != nil && *t.DistanceToKm <= t.DistanceFromKm {
		return &ValidationError{Field: "distanceToKm", Message: MsgDistanceTo}
	}
	if t.RatePerKm < 0 {
		return &ValidationError{Field: "ratePerKm", Message: MsgRatePerKm}
	}
	if t.DistanceFromKm == 0 && t.BaseFare == nil {
		return &ValidationError{Field: "baseFare", Message: MsgBaseFareRequired}
	}
	return nil
}

// SortTiers orders tiers by starting distance, then display order.
func SortTiers(tiers []Tier) {
	sort.SliceStable(tiers, func(i, j int) bool {
		if tiers[i].DistanceFromKm != tiers[j].DistanceFromKm {
			return tiers[i].DistanceFromKm < tiers[j].DistanceFromKm
		}
		return tiers[i].DisplayOrder < tiers[j].DisplayOrder
	})
}

// CheckContiguity verifies a full tier set partitions [0, inf) without gaps or overlaps:
// adjacent tiers meet exactly, exactly one tier starts at 0 and carries a base fare,
// and only the last tier may be open-ended.
func CheckContiguity(tiers []Tier) error {
	if len(tiers) == 0 {
		return &ValidationError{Field: "tiers", Message: MsgNoTiers}
	}
	sorted := CloneTiers(tiers)
	SortTiers(sorted)

	zeroStarts := 0
	for i, t := range sorted {
		if err := ValidateTier(t); err != nil {
			return err
		}
		if t.DistanceFromKm == 0 {
			zeroStarts++
		}
		if i == len(sorted)-1 {
			break
		}
		next := sorted[i+1]
		if t.DistanceToKm == nil {
			return &ValidationError{Field: "distanceToKm", Message: "Only the last tier can be open-ended"}
		}
		if *t.DistanceToKm != next.DistanceFromKm {
			return &ValidationError{
				Field:   "distanceFromKm",
				Message: fmt.Sprintf("Tier %s must start where %s ends", RangeLabel(next), RangeLabel(t)),
			}
		}
	}
	if zeroStarts != 1 {
		return &ValidationError{Field: "distanceFromKm", Message: "Exactly one tier must start at 0 km"}
	}
	return nil
}

// RangeLabel renders "{from}-{to} km", or "Above {from} km" for the open-ended tier.
func RangeLabel(t Tier) string {
	if t.DistanceToKm == nil {
		return "Above " + formatKm(t.DistanceFromKm) + " km"
	}
	return formatKm(t.DistanceFromKm) + "-" + formatKm(*t.DistanceToKm) + " km"
}

func formatKm(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

type tierDefaults struct {
	baseFare float64
	rates    [4]float64
}

var defaultsByType = map[ServiceType]tierDefaults{
	ServiceBike:  {baseFare: 25, rates: [4]float64{8, 7, 6, 5}},
	ServiceAuto:  {baseFare: 35, rates: [4]float64{12, 11, 10, 9}},
	ServiceCar:   {baseFare: 50, rates: [4]float64{15, 14, 13, 12}},
	ServiceCarXL: {baseFare: 80, rates: [4]float64{20, 18, 16, 15}},
}

// defaultBounds are the 0-2, 2-5, 5-10 and 10+ km ranges of the built-in tier sets.
var defaultBounds = [4][2]float64{{0, 2}, {2, 5}, {5, 10}, {10, -1}}

// DefaultTiers returns the built-in four-tier set used when the backend has none for st.
func DefaultTiers(st ServiceType) []Tier {
	d, ok := defaultsByType[st]
	if !ok {
		return nil
	}
	tiers := make([]Tier, 0, len(defaultBounds))
	for i, b := range defaultBounds {
		t := Tier{
			ServiceType:    st,
			DistanceFromKm: b[0],
			RatePerKm:      d.rates[i],
			DisplayOrder:   i + 1,
			IsActive:       true,
		}
		if b[1] >= 0 {
			t.DistanceToKm = Float(b[1])
		}
		if i == 0 {
			t.BaseFare = Float(d.baseFare)
		}
		tiers = append(tiers, t)
	}
	return tiers
}
