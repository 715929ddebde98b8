// README: Trip estimate value types and rider-facing notices.
package trip

import (
	"errors"

	"guava/internal/modules/pricing"
	"guava/internal/types"
)

var (
	ErrIncompleteRoute  = errors.New("pickup and destination are required")
	ErrRouteUnavailable = errors.New("could not calculate route")
	ErrRouteFailed      = errors.New("failed to fetch route")
)

type NoticeKind string

const (
	NoticeRouteUnavailable NoticeKind = "route_unavailable"
	NoticeTransportFailure NoticeKind = "transport_failure"
)

// Notice is a user-visible message about the last estimate attempt.
// Fare-service failures never produce one.
type Notice struct {
	Kind    NoticeKind `json:"kind"`
	Message string     `json:"message"`
}

var (
	routeUnavailableNotice = Notice{Kind: NoticeRouteUnavailable, Message: "Could not calculate route"}
	transportFailureNotice = Notice{Kind: NoticeTransportFailure, Message: "Failed to calculate route. Please try again."}
)

type FareSource string

const (
	FareFromBackend  FareSource = "backend"
	FareFromFallback FareSource = "fallback"
)

// Request asks for an estimate between two points.
type Request struct {
	Pickup      types.Point         `json:"pickup"`
	Destination types.Point         `json:"destination"`
	ServiceType pricing.ServiceType `json:"serviceType"`
}

// Valid reports whether both endpoints are set.
func (r Request) Valid() bool {
	return r.Pickup.IsSet() && r.Destination.IsSet()
}

// Result is one estimate. Fare and Breakdown stay nil until the fare lookup resolves;
// Breakdown also stays nil when the fare came from the fallback formula.
type Result struct {
	DistanceKm      float64            `json:"distanceKm"`
	DurationMinutes int                `json:"durationMinutes"`
	Fare            *types.Money       `json:"fare"`
	FareSource      FareSource         `json:"fareSource,omitempty"`
	Breakdown       *pricing.Breakdown `json:"fareBreakdown"`
}

func (r Result) clone() Result {
	c := r
	if r.Fare != nil {
		f := *r.Fare
		c.Fare = &f
	}
	if r.Breakdown != nil {
		b := *r.Breakdown
		c.Breakdown = &b
	}
	return c
}

// State is the estimator's read-only display state.
type State struct {
	Pickup      types.Point         `json:"pickup"`
	Destination types.Point         `json:"destination"`
	ServiceType pricing.ServiceType `json:"serviceType"`
	Estimate    *Result             `json:"estimate"`
	Notice      *Notice             `json:"notice"`
	Loading     bool                `json:"loading"`
}
