// README: Pricing domain types: service types, fare breakdowns and distance tiers.
package pricing

import "errors"

type ServiceType string

const (
	ServiceBike  ServiceType = "BIKE"
	ServiceAuto  ServiceType = "AUTO"
	ServiceCar   ServiceType = "CAR"
	ServiceCarXL ServiceType = "CAR_XL"
)

// DefaultServiceType is used for fare estimation when the rider has not picked one.
const DefaultServiceType = ServiceCar

// ServiceTypes lists the four fixed service types in console order.
var ServiceTypes = []ServiceType{ServiceBike, ServiceAuto, ServiceCar, ServiceCarXL}

var (
	ErrUnknownServiceType = errors.New("unknown service type")
	ErrNotFound           = errors.New("tier not found")
	ErrBadRequest         = errors.New("bad request")
)

func ParseServiceType(s string) (ServiceType, error) {
	for _, t := range ServiceTypes {
		if string(t) == s {
			return t, nil
		}
	}
	return "", ErrUnknownServiceType
}

// Breakdown is the itemised fare. Commission is informational and is not part of FinalTotal.
type Breakdown struct {
	BaseFare       float64 `json:"baseFare"`
	DistanceFare   float64 `json:"distanceFare"`
	TimeFare       float64 `json:"timeFare"`
	PlatformFee    float64 `json:"platformFee"`
	GST            float64 `json:"gst"`
	Commission     float64 `json:"commission"`
	NightSurcharge float64 `json:"nightSurcharge"`
	Subtotal       float64 `json:"subtotal"`
	Discount       float64 `json:"discount"`
	FinalTotal     float64 `json:"finalTotal"`
}

// FareFields holds the individually optional components a fare service may return.
type FareFields struct {
	BaseFare       *float64 `json:"baseFare,omitempty"`
	DistanceFare   *float64 `json:"distanceFare,omitempty"`
	TimeFare       *float64 `json:"timeFare,omitempty"`
	PlatformFee    *float64 `json:"platformFee,omitempty"`
	GST            *float64 `json:"gst,omitempty"`
	Commission     *float64 `json:"commission,omitempty"`
	NightSurcharge *float64 `json:"nightSurcharge,omitempty"`
	Subtotal       *float64 `json:"subtotal,omitempty"`
	Discount       *float64 `json:"discount,omitempty"`
}

// FareEstimateRequest is the body of POST /api/fare/estimate.
type FareEstimateRequest struct {
	ServiceType ServiceType `json:"serviceType"`
	DistanceKm  float64     `json:"distanceKm"`
	DurationMin int         `json:"durationMin"`
	PickupLat   float64     `json:"pickupLat"`
	PickupLng   float64     `json:"pickupLng"`
	DropLat     float64     `json:"dropLat"`
	DropLng     float64     `json:"dropLng"`
}

// FareQuote is a usable fare-service answer: a total plus the breakdown to display.
type FareQuote struct {
	FinalTotal float64
	Breakdown  Breakdown
}

// Tier is one distance range of a service type's tiered pricing.
// DistanceToKm nil means "and above"; BaseFare is required on the tier starting at 0.
type Tier struct {
	ID             *int64      `json:"id"`
	ServiceType    ServiceType `json:"serviceType"`
	DistanceFromKm float64     `json:"distanceFromKm"`
	DistanceToKm   *float64    `json:"distanceToKm"`
	RatePerKm      float64     `json:"ratePerKm"`
	BaseFare       *float64    `json:"baseFare"`
	DisplayOrder   int         `json:"displayOrder"`
	IsActive       bool        `json:"isActive"`
}

// Clone returns a deep copy so callers never share pointer fields.
func (t Tier) Clone() Tier {
	c := t
	if t.ID != nil {
		v := *t.ID
		c.ID = &v
	}
	if t.DistanceToKm != nil {
		v := *t.DistanceToKm
		c.DistanceToKm = &v
	}
	if t.BaseFare != nil {
		v := *t.BaseFare
		c.BaseFare = &v
	}
	return c
}

func CloneTiers(tiers []Tier) []Tier {
	if tiers == nil {
		return nil
	}
	out := make([]Tier, len(tiers))
	for i, t := range tiers {
		out[i] = t.Clone()
	}
	return out
}

func Float(v float64) *float64 { return &v }
