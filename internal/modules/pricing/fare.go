// README: Pure fare helpers: breakdown synthesis, fallback formula and rounding.
package pricing

import "math"

// Fallback formula constants, applied when the fare service gives no usable total.
const (
	FallbackBaseFare  = 50.0
	FallbackPerKmRate = 15.0
)

// FallbackFare approximates a fare locally as round(50 + 15*distanceKm).
func FallbackFare(distanceKm float64) int64 {
	return int64(math.Round(FallbackBaseFare + distanceKm*FallbackPerKmRate))
}

// DisplayFare is the whole-rupee amount shown for a fare-service total.
func DisplayFare(finalTotal float64) int64 {
	return int64(math.Round(finalTotal))
}

// SynthesizeBreakdown builds a breakdown from whatever components the fare service
// returned. Missing components are 0 and FinalTotal comes from the top-level total.
func SynthesizeBreakdown(f FareFields, finalTotal float64) Breakdown {
	return Breakdown{
		BaseFare:       valueOr0(f.BaseFare),
		DistanceFare:   valueOr0(f.DistanceFare),
		TimeFare:       valueOr0(f.TimeFare),
		PlatformFee:    valueOr0(f.PlatformFee),
		GST:            valueOr0(f.GST),
		Commission:     valueOr0(f.Commission),
		NightSurcharge: valueOr0(f.NightSurcharge),
		Subtotal:       valueOr0(f.Subtotal),
		Discount:       valueOr0(f.Discount),
		FinalTotal:     finalTotal,
	}
}

// ComputedSubtotal is baseFare + distanceFare + timeFare + platformFee + nightSurcharge.
func (b Breakdown) ComputedSubtotal() float64 {
	return b.BaseFare + b.DistanceFare + b.TimeFare + b.PlatformFee + b.NightSurcharge
}

// ComputedTotal is subtotal + gst - discount.
func (b Breakdown) ComputedTotal() float64 {
	return b.Subtotal + b.GST - b.Discount
}

// Consistent reports whether the breakdown's totals agree with its components within tol.
func (b Breakdown) Consistent(tol float64) bool {
	return math.Abs(b.Subtotal-b.ComputedSubtotal()) <= tol &&
		math.Abs(b.FinalTotal-b.ComputedTotal()) <= tol
}

// KmFromMeters converts a route length to kilometres rounded half-up to one decimal.
// Integer arithmetic keeps 12345 m at exactly 12.3 km.
func KmFromMeters(meters int) float64 {
	if meters <= 0 {
		return 0
	}
	return float64((meters+50)/100) / 10
}

// MinutesFromSeconds rounds a duration in seconds to the nearest whole minute.
func MinutesFromSeconds(seconds int) int {
	if seconds <= 0 {
		return 0
	}
	return (seconds + 30) / 60
}

func valueOr0(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
